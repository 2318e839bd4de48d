package completion

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrStoreNotFound  = errors.New("store not found")
	ErrUnavailable    = errors.New("survey unavailable")
	ErrNoQuestions    = errors.New("survey has no questions")
	ErrNotRecorded    = errors.New("responses not recorded")
	ErrInvalidAnswers = errors.New("answers must map question ids to option ids")
)

// UnansweredError names the first question without an eligible option.
// Index is the question's zero-based position on the page.
type UnansweredError struct {
	Index      int
	QuestionID uuid.UUID
}

func (e *UnansweredError) Error() string {
	return fmt.Sprintf("question %d is unanswered", e.Index+1)
}
