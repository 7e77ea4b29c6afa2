package layout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pkgerrors "github.com/osoriodev/tablebook-backend/pkg/errors"
	"github.com/osoriodev/tablebook-backend/pkg/logger"
)

// tableLayoutKey is where the serialized floor plan lives. The blob itself is
// opaque to the backend; only its shape is validated.
const tableLayoutKey = "tables.layout"

// Service persists and serves the floor plan drawn by the host UI.
type Service interface {
	GetLayout(ctx context.Context) (json.RawMessage, error)
	SaveLayout(ctx context.Context, layout json.RawMessage) error
}

type Params struct {
	Logger *logger.Logger
	Repo   Repository
	Now    func() time.Time
}

type service struct {
	logg *logger.Logger
	repo Repository
	now  func() time.Time
}

func NewService(p Params) (Service, error) {
	if p.Logger == nil {
		return nil, fmt.Errorf("layout service requires a logger")
	}
	if p.Repo == nil {
		return nil, fmt.Errorf("layout service requires a repository")
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &service{logg: p.Logger, repo: p.Repo, now: p.Now}, nil
}

// GetLayout returns the stored floor plan, or an empty array when none has
// been saved yet.
func (s *service) GetLayout(ctx context.Context) (json.RawMessage, error) {
	value, err := s.repo.Get(ctx, tableLayoutKey)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return json.RawMessage("[]"), nil
		}
		return nil, err
	}
	return json.RawMessage(value), nil
}

// SaveLayout overwrites the stored floor plan. The payload must be a JSON
// array; its element shape is left to the UI.
func (s *service) SaveLayout(ctx context.Context, layout json.RawMessage) error {
	var decoded []json.RawMessage
	if err := json.Unmarshal(layout, &decoded); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "layout must be a JSON array")
	}
	return s.repo.Set(ctx, tableLayoutKey, string(layout), s.now().UTC())
}
