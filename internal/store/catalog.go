package store

import (
	"context"

	"github.com/ixnv/anon-fl-api/internal/models"
)

const categoryColumns = `id, parent_id, title, created_at, updated_at`

func (s *Store) CreateCategory(ctx context.Context, category *models.OrderCategory) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO order_categories (id, parent_id, title, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		category.ID,
		category.ParentID,
		category.Title,
		category.CreatedAt,
		category.UpdatedAt,
	)
	return mapErr(err)
}

func (s *Store) GetCategory(ctx context.Context, categoryID string) (*models.OrderCategory, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM order_categories WHERE id=$1`, categoryID)
	category, err := scanCategory(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return category, nil
}

func (s *Store) UpdateCategory(ctx context.Context, category *models.OrderCategory) error {
	res, err := s.Pool.Exec(ctx, `
		UPDATE order_categories
		SET parent_id=$2, title=$3, updated_at=now()
		WHERE id=$1
	`, category.ID, category.ParentID, category.Title)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, categoryID string) error {
	res, err := s.Pool.Exec(ctx, `DELETE FROM order_categories WHERE id=$1`, categoryID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*models.OrderCategory, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+categoryColumns+` FROM order_categories ORDER BY created_at, id`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var categories []*models.OrderCategory
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		categories = append(categories, category)
	}
	return categories, mapErr(rows.Err())
}

// GetOrCreateTag inserts the tag unless the creator already has one with the
// same text, and returns the surviving row either way. The bool reports
// whether this call inserted the row.
func (s *Store) GetOrCreateTag(ctx context.Context, tag *models.Tag) (*models.Tag, bool, error) {
	res, err := s.Pool.Exec(ctx, `
		INSERT INTO tags (id, tag, created_by, created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (created_by, tag) DO NOTHING
	`, tag.ID, tag.Tag, tag.CreatedBy, tag.CreatedAt)
	if err != nil {
		return nil, false, mapErr(err)
	}
	created := res.RowsAffected() == 1

	row := s.Pool.QueryRow(ctx, `
		SELECT id, tag, created_by, created_at
		FROM tags WHERE created_by=$1 AND tag=$2
	`, tag.CreatedBy, tag.Tag)
	var out models.Tag
	if err := row.Scan(&out.ID, &out.Tag, &out.CreatedBy, &out.CreatedAt); err != nil {
		return nil, false, mapErr(err)
	}
	return &out, created, nil
}

func (s *Store) GetTag(ctx context.Context, tagID string) (*models.Tag, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT id, tag, created_by, created_at FROM tags WHERE id=$1`, tagID)
	var tag models.Tag
	if err := row.Scan(&tag.ID, &tag.Tag, &tag.CreatedBy, &tag.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &tag, nil
}

// SearchTags lists tags whose text starts with the query, or all tags when
// the query is empty.
func (s *Store) SearchTags(ctx context.Context, query string, limit int) ([]*models.Tag, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, tag, created_by, created_at
		FROM tags
		WHERE $1 = '' OR tag LIKE $1 || '%'
		ORDER BY tag
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Tag, &tag.CreatedBy, &tag.CreatedAt); err != nil {
			return nil, mapErr(err)
		}
		tags = append(tags, &tag)
	}
	return tags, mapErr(rows.Err())
}

func scanCategory(row rowScanner) (*models.OrderCategory, error) {
	var category models.OrderCategory
	err := row.Scan(
		&category.ID,
		&category.ParentID,
		&category.Title,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &category, nil
}
