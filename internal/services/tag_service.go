package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ixnv/anon-fl-api/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type TagStore interface {
	GetOrCreateTag(ctx context.Context, tag *models.Tag) (*models.Tag, bool, error)
	SearchTags(ctx context.Context, query string, limit int) ([]*models.Tag, error)
}

type TagService struct {
	store TagStore
	log   zerolog.Logger
}

func NewTagService(store TagStore, log zerolog.Logger) *TagService {
	return &TagService{store: store, log: log}
}

// GetOrCreate returns the caller's tag with the given text, creating it on
// first use. Calling twice with the same text yields the same tag; the bool
// reports whether this call created it.
func (s *TagService) GetOrCreate(ctx context.Context, userID, text string) (*models.Tag, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false, fmt.Errorf("%w: tag text is required", models.ErrNotAcceptable)
	}
	return s.store.GetOrCreateTag(ctx, &models.Tag{
		ID:        uuid.NewString(),
		Tag:       text,
		CreatedBy: userID,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *TagService) Search(ctx context.Context, query string, limit int) ([]*models.Tag, error) {
	return s.store.SearchTags(ctx, strings.TrimSpace(query), limit)
}
