package menu

import (
	"context"
	"strings"

	pkgerrors "github.com/angelmondragon/tableorder/pkg/errors"
	"github.com/angelmondragon/tableorder/pkg/orderapi"
)

// Backend is the slice of the ordering API the catalog reads.
type Backend interface {
	ListMenus(ctx context.Context) ([]orderapi.Category, error)
	GetMenu(ctx context.Context, id orderapi.ID) (*orderapi.MenuItem, error)
}

// Service reads the menu from the backend on every call; the backend stays the
// source of truth for prices.
type Service struct {
	backend Backend
}

func NewService(backend Backend) (*Service, error) {
	if backend == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "menu backend required")
	}
	return &Service{backend: backend}, nil
}

// Search lists categories narrowed by query.
func (s *Service) Search(ctx context.Context, query string) ([]orderapi.Category, error) {
	categories, err := s.backend.ListMenus(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(categories, query), nil
}

// Get returns one menu item.
func (s *Service) Get(ctx context.Context, id string) (*orderapi.MenuItem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu id is required")
	}
	return s.backend.GetMenu(ctx, orderapi.ID(id))
}
