package completion

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/qrsurvey/qrs-api/internal/domain/store"
	"github.com/qrsurvey/qrs-api/internal/domain/survey"
	"github.com/qrsurvey/qrs-api/internal/middleware"
	"github.com/qrsurvey/qrs-api/internal/pkg/errorhandler"
	"github.com/qrsurvey/qrs-api/internal/pkg/response"
)

const answerFieldPrefix = "q_"

// Handler serves the public survey pages and their JSON API
type Handler struct {
	service *Service
	pages   *pages
}

// NewHandler creates completion handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, pages: newPages()}
}

type formData struct {
	QRKey         string
	Survey        *survey.Survey
	Questions     []*QuestionView
	Selected      map[uuid.UUID]string
	Missing       bool
	MissingIndex  int
	MissingNumber int
}

// Page handles GET /s/{qrKey}
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	qrKey := chi.URLParam(r, "qrKey")

	view, ok := h.loadPage(w, r, qrKey)
	if !ok {
		return
	}
	h.renderForm(w, http.StatusOK, qrKey, view, nil, nil)
}

// Submit handles POST /s/{qrKey}
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	qrKey := chi.URLParam(r, "qrKey")

	if err := r.ParseForm(); err != nil {
		h.pages.render(w, http.StatusBadRequest, "terminal", layout{Title: "Bad Request"}, terminalData{
			Heading: "Bad Request",
			Message: "The submitted form could not be read.",
		})
		return
	}
	answers, selected := formAnswers(r)

	_, err := h.service.Submit(r.Context(), qrKey, &SubmitRequest{Answers: answers}, clientInfo(r))
	if err == nil {
		http.Redirect(w, r, "/s/"+qrKey+"/complete", http.StatusSeeOther)
		return
	}

	var unanswered *UnansweredError
	switch {
	case errors.As(err, &unanswered):
		view, ok := h.loadPage(w, r, qrKey)
		if !ok {
			return
		}
		h.renderForm(w, http.StatusUnprocessableEntity, qrKey, view, selected, unanswered)
	case errors.Is(err, ErrStoreNotFound):
		h.pages.notFound(w)
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrNoQuestions):
		view, ok := h.loadPage(w, r, qrKey)
		if ok {
			h.pages.unavailable(w, view)
		}
	default:
		errorhandler.LogFailure(r.Context(), "completion.submit", err)
		h.pages.failure(w)
	}
}

// Complete handles GET /s/{qrKey}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	qrKey := chi.URLParam(r, "qrKey")

	st, err := h.service.stores.GetByQRKey(r.Context(), qrKey)
	if err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			h.pages.notFound(w)
			return
		}
		errorhandler.LogFailure(r.Context(), "completion.complete", err)
		h.pages.failure(w)
		return
	}

	html := strings.TrimSpace(st.SurveyCompleteHTML.String)
	if html == "" {
		html = defaultCompleteHTML
	}
	redirect := strings.TrimSpace(st.RedirectURL.String)
	if redirect == "" {
		redirect = "/"
	}

	h.pages.render(w, http.StatusOK, "complete", storeLayout(&View{Store: st}, "Thank You"), struct {
		HTML        string
		RedirectURL string
	}{HTML: html, RedirectURL: redirect})
}

// loadPage writes the terminal page itself and returns false unless the
// survey can be answered. A survey without active questions counts as
// unavailable.
func (h *Handler) loadPage(w http.ResponseWriter, r *http.Request, qrKey string) (*View, bool) {
	view, err := h.service.Load(r.Context(), qrKey)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			h.pages.notFound(w)
		} else {
			errorhandler.LogFailure(r.Context(), "completion.load", err)
			h.pages.failure(w)
		}
		return nil, false
	}
	if view.Kind != KindOK || len(view.Questions) == 0 {
		h.pages.unavailable(w, view)
		return nil, false
	}
	return view, true
}

func (h *Handler) renderForm(w http.ResponseWriter, status int, qrKey string, view *View, selected map[uuid.UUID]string, missing *UnansweredError) {
	if selected == nil {
		selected = map[uuid.UUID]string{}
	}
	data := formData{
		QRKey:        qrKey,
		Survey:       view.Survey,
		Questions:    view.Questions,
		Selected:     selected,
		MissingIndex: -1,
	}
	if missing != nil {
		data.Missing = true
		data.MissingIndex = missing.Index
		data.MissingNumber = missing.Index + 1
	}
	h.pages.render(w, status, "form", storeLayout(view, view.Survey.Name), data)
}

// formAnswers reads q_<questionID>=<optionID> fields. Unparseable ids are
// dropped so they count as unanswered.
func formAnswers(r *http.Request) (map[uuid.UUID]uuid.UUID, map[uuid.UUID]string) {
	answers := make(map[uuid.UUID]uuid.UUID)
	selected := make(map[uuid.UUID]string)
	for field, values := range r.PostForm {
		if !strings.HasPrefix(field, answerFieldPrefix) || len(values) == 0 {
			continue
		}
		questionID, err := uuid.Parse(strings.TrimPrefix(field, answerFieldPrefix))
		if err != nil {
			continue
		}
		optionID, err := uuid.Parse(values[0])
		if err != nil {
			continue
		}
		answers[questionID] = optionID
		selected[questionID] = optionID.String()
	}
	return answers, selected
}

func clientInfo(r *http.Request) ClientInfo {
	return ClientInfo{IP: middleware.ClientIP(r), UserAgent: r.UserAgent()}
}

// --- JSON API ---

// PublicOptionResponse is one answer choice
type PublicOptionResponse struct {
	ID     string `json:"id"`
	Option string `json:"option"`
}

// PublicQuestionResponse is one question with its choices
type PublicQuestionResponse struct {
	ID          string                 `json:"id"`
	Question    string                 `json:"question"`
	Description *string                `json:"description,omitempty"`
	Options     []PublicOptionResponse `json:"options"`
}

// PublicSurveyResponse is the JSON form of a survey page
type PublicSurveyResponse struct {
	Status      Kind                     `json:"status"`
	StoreName   string                   `json:"store_name"`
	LogoURL     *string                  `json:"logo_url,omitempty"`
	SurveyID    *string                  `json:"survey_id,omitempty"`
	Name        string                   `json:"name,omitempty"`
	Description *string                  `json:"description,omitempty"`
	Questions   []PublicQuestionResponse `json:"questions"`
}

// PublicReceiptResponse is returned after a JSON submission
type PublicReceiptResponse struct {
	Receipt
	CompleteHTML string `json:"complete_html"`
	RedirectURL  string `json:"redirect_url"`
}

func publicSurveyResponse(v *View) PublicSurveyResponse {
	resp := PublicSurveyResponse{
		Status:    v.Kind,
		StoreName: v.Store.Name,
		Questions: []PublicQuestionResponse{},
	}
	if v.Store.LogoURL.Valid {
		resp.LogoURL = &v.Store.LogoURL.String
	}
	if v.Kind != KindOK {
		return resp
	}

	id := v.Survey.ID.String()
	resp.SurveyID = &id
	resp.Name = v.Survey.Name
	if v.Survey.Description.Valid {
		resp.Description = &v.Survey.Description.String
	}
	resp.Questions = lo.Map(v.Questions, func(q *QuestionView, _ int) PublicQuestionResponse {
		qr := PublicQuestionResponse{
			ID:       q.ID.String(),
			Question: q.Question.Question,
			Options: lo.Map(q.Options, func(o *survey.Option, _ int) PublicOptionResponse {
				return PublicOptionResponse{ID: o.ID.String(), Option: o.Option}
			}),
		}
		if q.Description.Valid {
			qr.Description = &q.Description.String
		}
		return qr
	})
	return resp
}

// GetSurvey handles GET /api/v1/public/s/{qrKey}
func (h *Handler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Load(r.Context(), chi.URLParam(r, "qrKey"))
	if err != nil {
		h.writeError(w, r, "completion.load", err)
		return
	}
	response.OK(w, publicSurveyResponse(view))
}

// SubmitResponses handles POST /api/v1/public/s/{qrKey}/responses
func (h *Handler) SubmitResponses(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, ErrInvalidAnswers.Error())
		return
	}

	qrKey := chi.URLParam(r, "qrKey")
	receipt, err := h.service.Submit(r.Context(), qrKey, &req, clientInfo(r))
	if err != nil {
		h.writeError(w, r, "completion.submit", err)
		return
	}

	resp := PublicReceiptResponse{Receipt: *receipt, CompleteHTML: defaultCompleteHTML, RedirectURL: "/"}
	if st, err := h.service.stores.GetByQRKey(r.Context(), qrKey); err == nil {
		if html := strings.TrimSpace(st.SurveyCompleteHTML.String); html != "" {
			resp.CompleteHTML = html
		}
		if redirect := strings.TrimSpace(st.RedirectURL.String); redirect != "" {
			resp.RedirectURL = redirect
		}
	}
	response.Created(w, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var unanswered *UnansweredError
	switch {
	case errors.As(err, &unanswered):
		response.ErrorWithData(w, http.StatusUnprocessableEntity, "UNANSWERED", unanswered.Error(), map[string]interface{}{
			"index":       unanswered.Index,
			"question_id": unanswered.QuestionID,
		})
	case errors.Is(err, ErrStoreNotFound):
		response.NotFound(w, "Survey not found")
	case errors.Is(err, ErrUnavailable):
		response.Error(w, http.StatusConflict, "SURVEY_UNAVAILABLE", "This location does not have an active survey at the moment.")
	case errors.Is(err, ErrNoQuestions):
		response.Error(w, http.StatusUnprocessableEntity, "NO_QUESTIONS", err.Error())
	default:
		errorhandler.StoreFailure(r.Context(), w, op, err)
	}
}
