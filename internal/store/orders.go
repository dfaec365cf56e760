package store

import (
	"context"
	"strconv"

	"github.com/ixnv/anon-fl-api/internal/models"
)

type OrderFilter struct {
	CategoryID   string
	TagID        string
	CustomerID   string
	ContractorID string
	Limit        int
	Offset       int
}

func (s *Store) CreateOrder(ctx context.Context, order *models.Order, tagIDs []string) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return mapErr(err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (
			id, category_id, title, description, price,
			customer_id, contractor_id, status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		order.ID,
		order.CategoryID,
		order.Title,
		order.Description,
		order.Price,
		order.CustomerID,
		order.ContractorID,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return mapErr(err)
	}

	for _, tagID := range tagIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_tags (order_id, tag_id)
			VALUES ($1, $2)
			ON CONFLICT (order_id, tag_id) DO NOTHING
		`, order.ID, tagID)
		if err != nil {
			return mapErr(err)
		}
	}
	return mapErr(tx.Commit(ctx))
}

const orderColumns = `
	id, category_id, title, description, price,
	customer_id, contractor_id, status, created_at, updated_at`

func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	row := s.Pool.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE id=$1`, orderID)
	order, err := scanOrder(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return order, nil
}

func (s *Store) UpdateOrder(ctx context.Context, order *models.Order) error {
	res, err := s.Pool.Exec(ctx, `
		UPDATE orders
		SET category_id=$2, title=$3, description=$4, price=$5, updated_at=now()
		WHERE id=$1
	`, order.ID, order.CategoryID, order.Title, order.Description, order.Price)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteOrder(ctx context.Context, orderID string) error {
	res, err := s.Pool.Exec(ctx, `DELETE FROM orders WHERE id=$1`, orderID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) ListOrders(ctx context.Context, filter OrderFilter) ([]*models.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += ` AND category_id=$` + strconv.Itoa(len(args))
	}
	if filter.TagID != "" {
		args = append(args, filter.TagID)
		query += ` AND id IN (SELECT order_id FROM order_tags WHERE tag_id=$` + strconv.Itoa(len(args)) + `)`
	}
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		query += ` AND customer_id=$` + strconv.Itoa(len(args))
	}
	if filter.ContractorID != "" {
		args = append(args, filter.ContractorID)
		query += ` AND contractor_id=$` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		orders = append(orders, order)
	}
	return orders, mapErr(rows.Err())
}

func (s *Store) ListOrderTags(ctx context.Context, orderID string) ([]*models.Tag, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT t.id, t.tag, t.created_by, t.created_at
		FROM tags t
		JOIN order_tags ot ON ot.tag_id = t.id
		WHERE ot.order_id = $1
		ORDER BY t.tag
	`, orderID)
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

func (s *Store) CreateAttachment(ctx context.Context, att *models.OrderAttachment) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO order_attachments (
			id, order_id, customer_id, filename, hash, url, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		att.ID,
		att.OrderID,
		att.CustomerID,
		att.Filename,
		att.Hash,
		att.URL,
		att.CreatedAt,
		att.UpdatedAt,
	)
	return mapErr(err)
}

func (s *Store) ListAttachments(ctx context.Context, orderID string) ([]*models.OrderAttachment, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, order_id, customer_id, filename, hash, url, created_at, updated_at
		FROM order_attachments
		WHERE order_id=$1
		ORDER BY created_at
	`, orderID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var atts []*models.OrderAttachment
	for rows.Next() {
		var att models.OrderAttachment
		err := rows.Scan(
			&att.ID,
			&att.OrderID,
			&att.CustomerID,
			&att.Filename,
			&att.Hash,
			&att.URL,
			&att.CreatedAt,
			&att.UpdatedAt,
		)
		if err != nil {
			return nil, mapErr(err)
		}
		atts = append(atts, &att)
	}
	return atts, mapErr(rows.Err())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID,
		&order.CategoryID,
		&order.Title,
		&order.Description,
		&order.Price,
		&order.CustomerID,
		&order.ContractorID,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
