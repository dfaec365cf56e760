package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ixnv/anon-fl-api/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type CategoryStore interface {
	CreateCategory(ctx context.Context, category *models.OrderCategory) error
	GetCategory(ctx context.Context, categoryID string) (*models.OrderCategory, error)
	UpdateCategory(ctx context.Context, category *models.OrderCategory) error
	DeleteCategory(ctx context.Context, categoryID string) error
	ListCategories(ctx context.Context) ([]*models.OrderCategory, error)
}

// CategoryService manages the flat category table; writes are admin only.
type CategoryService struct {
	store CategoryStore
	log   zerolog.Logger
}

func NewCategoryService(store CategoryStore, log zerolog.Logger) *CategoryService {
	return &CategoryService{store: store, log: log}
}

// CategoryNode is a root category with its direct children.
type CategoryNode struct {
	Category      *models.OrderCategory
	Subcategories []*models.OrderCategory
}

// Tree lists categories one level deep: roots with their children nested.
func (s *CategoryService) Tree(ctx context.Context) ([]*CategoryNode, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make([]*CategoryNode, 0, len(categories))
	byID := make(map[string]*CategoryNode)
	for _, category := range categories {
		if category.ParentID == nil {
			node := &CategoryNode{Category: category, Subcategories: []*models.OrderCategory{}}
			nodes = append(nodes, node)
			byID[category.ID] = node
		}
	}
	for _, category := range categories {
		if category.ParentID == nil {
			continue
		}
		if parent, ok := byID[*category.ParentID]; ok {
			parent.Subcategories = append(parent.Subcategories, category)
		}
	}
	return nodes, nil
}

func (s *CategoryService) Get(ctx context.Context, categoryID string) (*models.OrderCategory, error) {
	return s.store.GetCategory(ctx, categoryID)
}

func (s *CategoryService) Create(ctx context.Context, actor *models.User, parentID *string, title string) (*models.OrderCategory, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrNotAcceptable)
	}
	if parentID != nil {
		if uuid.Validate(*parentID) != nil {
			return nil, fmt.Errorf("%w: parent category", models.ErrNotFound)
		}
		if _, err := s.store.GetCategory(ctx, *parentID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	category := &models.OrderCategory{
		ID:        uuid.NewString(),
		ParentID:  parentID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, actor *models.User, categoryID string, parentID *string, title string) (*models.OrderCategory, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrNotAcceptable)
	}

	if parentID != nil && uuid.Validate(*parentID) != nil {
		return nil, fmt.Errorf("%w: parent category", models.ErrNotFound)
	}
	category, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	category.ParentID = parentID
	category.Title = title
	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, actor *models.User, categoryID string) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}
	return s.store.DeleteCategory(ctx, categoryID)
}

func (s *CategoryService) requireAdmin(actor *models.User) error {
	if actor == nil || !actor.IsAdmin {
		return fmt.Errorf("%w: admin only", models.ErrPermissionDenied)
	}
	return nil
}
