package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/qrsurvey/qrs-api/internal/domain/customer"
	"github.com/qrsurvey/qrs-api/internal/domain/status"
	"github.com/qrsurvey/qrs-api/internal/domain/survey"
	"github.com/qrsurvey/qrs-api/internal/pkg/imaging"
	"github.com/qrsurvey/qrs-api/internal/pkg/storage"
)

// CustomerLookup is the part of the customer service stores depend on.
type CustomerLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error)
}

// SurveyLookup is the part of the survey service stores depend on.
type SurveyLookup interface {
	GetSurvey(ctx context.Context, customerID, id uuid.UUID) (*survey.Survey, error)
	ListAssignable(ctx context.Context, customerID uuid.UUID) ([]*survey.Survey, error)
}

// Logos stores uploaded logos. A nil Logos disables uploads.
type Logos struct {
	Files     storage.Storage
	Processor *imaging.Processor
	MaxBytes  int64
}

// Service handles store locations for admins and the store panel
type Service struct {
	repo      Repository
	customers CustomerLookup
	surveys   SurveyLookup
	logos     *Logos
	newKey    func() string
}

// NewService creates store service
func NewService(repo Repository, customers CustomerLookup, surveys SurveyLookup, logos *Logos) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
		surveys:   surveys,
		logos:     logos,
		newKey:    newQRKey,
	}
}

// newQRKey returns the first 8 hex characters of a random UUID.
func newQRKey() string {
	return uuid.NewString()[:8]
}

func (s *Service) List(ctx context.Context, customerID uuid.UUID) ([]*Store, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// Get returns a store owned by customerID.
func (s *Service) Get(ctx context.Context, customerID, id uuid.UUID) (*Store, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil || st.CustomerID != customerID {
		return nil, ErrStoreNotFound
	}
	return st, nil
}

// GetByQRKey returns the store a QR code points at, in any status.
func (s *Service) GetByQRKey(ctx context.Context, qrKey string) (*Store, error) {
	st, err := s.repo.GetByQRKey(ctx, qrKey)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrStoreNotFound
	}
	return st, nil
}

// Create inserts a store with a fresh qr_key. A key collision is retried
// once with a new key before giving up with ErrQRKeyConflict.
func (s *Service) Create(ctx context.Context, customerID uuid.UUID, req *CreateStoreRequest) (*Store, error) {
	if err := s.ensureCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	now := time.Now()
	st := &Store{
		ID:                 uuid.New(),
		CustomerID:         customerID,
		Name:               strings.TrimSpace(req.Name),
		LogoURL:            nullString(req.LogoURL),
		SurveyCompleteHTML: nullString(req.SurveyCompleteHTML),
		RedirectURL:        nullString(req.RedirectURL),
		Status:             status.Active,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if req.Status != nil {
		st.Status = status.Status(*req.Status)
	}

	for attempt := 1; attempt <= 2; attempt++ {
		st.QRKey = s.newKey()
		err := s.repo.Create(ctx, st)
		if err == nil {
			log.Info().
				Str("customer_id", customerID.String()).
				Str("store_id", st.ID.String()).
				Str("qr_key", st.QRKey).
				Msg("store created")
			return st, nil
		}
		if !errors.Is(err, errQRKeyTaken) {
			return nil, err
		}
		log.Warn().Str("qr_key", st.QRKey).Int("attempt", attempt).Msg("qr key collision")
	}
	return nil, ErrQRKeyConflict
}

func (s *Service) Update(ctx context.Context, customerID, id uuid.UUID, req *UpdateStoreRequest) (*Store, error) {
	st, err := s.Get(ctx, customerID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		st.Name = strings.TrimSpace(*req.Name)
	}
	if req.LogoURL != nil {
		st.LogoURL = nullString(*req.LogoURL)
	}
	if req.SurveyCompleteHTML != nil {
		st.SurveyCompleteHTML = nullString(*req.SurveyCompleteHTML)
	}
	if req.RedirectURL != nil {
		st.RedirectURL = nullString(*req.RedirectURL)
	}
	if req.Status != nil {
		st.Status = status.Status(*req.Status)
	}
	st.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// AssignSurvey points the store at surveyID, or clears it when surveyID is
// nil. The survey must belong to the same customer and be active now;
// later status changes are caught when the public page loads.
func (s *Service) AssignSurvey(ctx context.Context, customerID, storeID uuid.UUID, surveyID *uuid.UUID) (*Store, error) {
	st, err := s.Get(ctx, customerID, storeID)
	if err != nil {
		return nil, err
	}

	var assigned uuid.NullUUID
	if surveyID != nil {
		sv, err := s.surveys.GetSurvey(ctx, customerID, *surveyID)
		if err != nil {
			if errors.Is(err, survey.ErrSurveyNotFound) {
				return nil, ErrSurveyNotAvailable
			}
			return nil, err
		}
		if !sv.IsAssignable() {
			return nil, ErrSurveyNotAvailable
		}
		assigned = uuid.NullUUID{UUID: sv.ID, Valid: true}
	}

	if err := s.repo.SetSurvey(ctx, st.ID, assigned); err != nil {
		return nil, err
	}
	st.SurveyID = assigned
	return st, nil
}

// SurveyCandidates lists the surveys AssignSurvey would accept.
func (s *Service) SurveyCandidates(ctx context.Context, customerID uuid.UUID) ([]*survey.Survey, error) {
	return s.surveys.ListAssignable(ctx, customerID)
}

// UploadLogo normalises the image, stores it and points logo_url at it.
// The previous logo is removed when it lives in the same bucket.
func (s *Service) UploadLogo(ctx context.Context, customerID, storeID uuid.UUID, file io.Reader) (*Store, error) {
	if s.logos == nil || s.logos.Files == nil {
		return nil, ErrLogoUploadDisabled
	}

	st, err := s.Get(ctx, customerID, storeID)
	if err != nil {
		return nil, err
	}

	data, _, err := storage.ReadImage(file, s.logos.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLogo, err)
	}
	logo, err := s.logos.Processor.NormalizeLogo(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLogo, err)
	}

	key := fmt.Sprintf("logos/%s/%s-%d.png", customerID, storeID, time.Now().UnixNano())
	if err := s.logos.Files.Put(ctx, key, bytes.NewReader(logo.Data), imaging.ContentType); err != nil {
		return nil, err
	}

	url := s.logos.Files.GetURL(key)
	if err := s.repo.SetLogo(ctx, st.ID, url); err != nil {
		return nil, err
	}

	if old, ok := s.ownedKey(st.LogoURL.String); ok {
		if err := s.logos.Files.Delete(ctx, old); err != nil {
			log.Warn().Err(err).Str("key", old).Msg("old logo not removed")
		}
	}

	st.LogoURL = sql.NullString{String: url, Valid: true}
	log.Info().Str("store_id", st.ID.String()).Int("width", logo.Width).Int("height", logo.Height).Msg("logo uploaded")
	return st, nil
}

// ownedKey recovers the object key from a URL produced by GetURL.
func (s *Service) ownedKey(url string) (string, bool) {
	prefix := s.logos.Files.GetURL("")
	if url == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, strings.HasPrefix(key, "logos/")
}

func (s *Service) ensureCustomer(ctx context.Context, customerID uuid.UUID) error {
	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, customer.ErrCustomerNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}
	if c == nil {
		return ErrCustomerNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
