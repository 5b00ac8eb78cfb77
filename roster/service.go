package roster

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warp/tip-engine/allocation"
)

// Input is the caller-editable part of a template.
type Input struct {
	Name      string                     `json:"templateName"`
	Location  string                     `json:"location,omitempty"`
	TimeSpan  allocation.TimeSpan        `json:"timeSpan"`
	Employees []Member                   `json:"employees"`
	Scenario  allocation.Scenario        `json:"scenario"`
	Details   allocation.ScenarioDetails `json:"scenarioDetails"`
}

// Service applies ownership and validation on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the UUID generator, for tests.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the backend, e.g. for health checks.
func (s *Service) Store() Store {
	return s.store
}

func (s *Service) Create(ctx context.Context, ownerID string, in Input) (*Template, error) {
	now := s.now()
	t := Template{
		ID:        s.newID(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.apply(&t)
	if err := Validate(t); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Get returns the template if ownerID owns it.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*Template, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Template, error) {
	templates, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []Template{}
	}
	return templates, nil
}

// Update replaces the editable fields; ID, owner and CreatedAt are kept.
func (s *Service) Update(ctx context.Context, ownerID, id string, in Input) (*Template, error) {
	t, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	in.apply(t)
	t.UpdatedAt = s.now()
	if err := Validate(*t); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, *t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (in Input) apply(t *Template) {
	t.Name = strings.TrimSpace(in.Name)
	t.Location = strings.TrimSpace(in.Location)
	t.TimeSpan = in.TimeSpan
	t.Employees = append([]Member{}, in.Employees...)
	t.Scenario = in.Scenario
	t.Details = in.Details
}
