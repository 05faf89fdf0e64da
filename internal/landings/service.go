package landings

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chokistore/backend/pkg/db"
	"github.com/chokistore/backend/pkg/db/models"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
)

const (
	maxSlugLen       = 60
	maxNameLen       = 80
	maxMessageLen    = 280
	maxButtonTextLen = 40
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Service manages invitation landings. Shoppers only ever see active ones,
// by slug.
type Service interface {
	List(ctx context.Context) ([]LandingDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*LandingDTO, error)
	GetBySlug(ctx context.Context, slug string) (*PublicLandingDTO, error)
	Create(ctx context.Context, input CreateInput) (*LandingDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*LandingDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("landings repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]LandingDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list landings")
	}
	out := make([]LandingDTO, 0, len(rows))
	for i := range rows {
		out = append(out, NewLandingDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*LandingDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewLandingDTO(row)
	return &dto, nil
}

// GetBySlug treats an inactive landing as missing.
func (s *service) GetBySlug(ctx context.Context, slug string) (*PublicLandingDTO, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !slugPattern.MatchString(slug) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "landing not found")
	}
	row, err := s.repo.FindBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !row.IsActive) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "landing not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load landing")
	}
	dto := newPublicLandingDTO(row)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*LandingDTO, error) {
	row := &models.Landing{
		Slug:           strings.ToLower(strings.TrimSpace(input.Slug)),
		Name:           strings.TrimSpace(input.Name),
		WelcomeMessage: strings.TrimSpace(input.WelcomeMessage),
		ButtonText:     strings.TrimSpace(input.ButtonText),
		IsActive:       input.Active,
	}
	if err := validateLanding(row); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, s.writeError(err, "insert landing")
	}
	dto := NewLandingDTO(row)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*LandingDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Slug != nil {
		row.Slug = strings.ToLower(strings.TrimSpace(*input.Slug))
	}
	if input.Name != nil {
		row.Name = strings.TrimSpace(*input.Name)
	}
	if input.WelcomeMessage != nil {
		row.WelcomeMessage = strings.TrimSpace(*input.WelcomeMessage)
	}
	if input.ButtonText != nil {
		row.ButtonText = strings.TrimSpace(*input.ButtonText)
	}
	if input.Active != nil {
		row.IsActive = *input.Active
	}
	if err := validateLanding(row); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, row); err != nil {
		return nil, s.writeError(err, "update landing")
	}
	dto := NewLandingDTO(row)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete landing")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "landing not found")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Landing, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "landing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load landing")
	}
	return row, nil
}

func (s *service) writeError(err error, op string) error {
	if db.IsUniqueViolation(err, "landings_slug_unique") {
		return pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func validateLanding(row *models.Landing) error {
	switch {
	case row.Slug == "" || len(row.Slug) > maxSlugLen || !slugPattern.MatchString(row.Slug):
		return pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase letters, digits and single dashes").
			WithDetails(map[string]any{"field": "slug", "max": maxSlugLen})
	case row.Name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case len([]rune(row.Name)) > maxNameLen:
		return pkgerrors.Newf(pkgerrors.CodeValidation, "name exceeds %d characters", maxNameLen)
	case len([]rune(row.WelcomeMessage)) > maxMessageLen:
		return pkgerrors.Newf(pkgerrors.CodeValidation, "welcome message exceeds %d characters", maxMessageLen)
	case len([]rune(row.ButtonText)) > maxButtonTextLen:
		return pkgerrors.Newf(pkgerrors.CodeValidation, "button text exceeds %d characters", maxButtonTextLen)
	}
	return nil
}
