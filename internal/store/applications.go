package store

import (
	"context"

	"github.com/ixnv/anon-fl-api/internal/models"
)

const applicationColumns = `id, order_id, applicant_id, status, created_at, updated_at`

// CreateApplication inserts the application unless a non-withdrawn one
// already exists for the (order, applicant) pair. The partial unique index
// makes the check-and-insert atomic under concurrent applies.
func (s *Store) CreateApplication(ctx context.Context, app *models.OrderApplication) error {
	res, err := s.Pool.Exec(ctx, `
		INSERT INTO order_applications (
			id, order_id, applicant_id, status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (order_id, applicant_id) WHERE status <> 'withdrawn' DO NOTHING
	`,
		app.ID,
		app.OrderID,
		app.ApplicantID,
		app.Status,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return models.ErrAlreadyApplied
	}
	return nil
}

func (s *Store) GetApplication(ctx context.Context, applicationID string) (*models.OrderApplication, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM order_applications WHERE id=$1`, applicationID)
	app, err := scanApplication(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return app, nil
}

// GetActiveApplication returns the applicant's non-withdrawn application for
// the order, if any.
func (s *Store) GetActiveApplication(ctx context.Context, orderID, applicantID string) (*models.OrderApplication, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT `+applicationColumns+`
		FROM order_applications
		WHERE order_id=$1 AND applicant_id=$2 AND status <> 'withdrawn'
	`, orderID, applicantID)
	app, err := scanApplication(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return app, nil
}

// UpdateApplicationStatus moves the application to the given status when its
// current status is one of allowedFrom. Returns false when the guard did not
// match, so concurrent transitions lose cleanly instead of overwriting.
func (s *Store) UpdateApplicationStatus(ctx context.Context, applicationID string, to models.ApplicationStatus, allowedFrom ...models.ApplicationStatus) (bool, error) {
	from := make([]string, 0, len(allowedFrom))
	for _, st := range allowedFrom {
		from = append(from, string(st))
	}
	res, err := s.Pool.Exec(ctx, `
		UPDATE order_applications
		SET status=$2, updated_at=now()
		WHERE id=$1 AND status = ANY($3)
	`, applicationID, to, from)
	if err != nil {
		return false, mapErr(err)
	}
	return res.RowsAffected() > 0, nil
}

func (s *Store) ListApplications(ctx context.Context, orderID string, excludeWithdrawn bool) ([]*models.OrderApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM order_applications WHERE order_id=$1`
	if excludeWithdrawn {
		query += ` AND status <> 'withdrawn'`
	}
	query += ` ORDER BY created_at`

	rows, err := s.Pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var apps []*models.OrderApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		apps = append(apps, app)
	}
	return apps, mapErr(rows.Err())
}

// AcceptApplication performs the accept transition in one transaction: the
// order gains its contractor (only if it has none), the application moves to
// accepted, and the order's chat is created if it does not exist yet. Exactly
// one of N concurrent accepts can win the conditional order update; the rest
// get ErrInvalidState.
func (s *Store) AcceptApplication(ctx context.Context, orderID, applicationID, applicantID, chatID string) (*models.OrderChat, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `
		UPDATE orders
		SET status=$3, contractor_id=$2, updated_at=now()
		WHERE id=$1 AND contractor_id IS NULL
	`, orderID, applicantID, models.OrderInProcess)
	if err != nil {
		return nil, mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return nil, models.ErrInvalidState
	}

	res, err = tx.Exec(ctx, `
		UPDATE order_applications
		SET status=$3, updated_at=now()
		WHERE id=$1 AND order_id=$2 AND status='new'
	`, applicationID, orderID, models.ApplicationAccepted)
	if err != nil {
		return nil, mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return nil, models.ErrInvalidState
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO order_chats (id, order_id, messages_count, created_at, updated_at)
		VALUES ($1, $2, 0, now(), now())
		ON CONFLICT (order_id) DO NOTHING
	`, chatID, orderID)
	if err != nil {
		return nil, mapErr(err)
	}

	row := tx.QueryRow(ctx, `
		SELECT id, order_id, messages_count, created_at, updated_at
		FROM order_chats WHERE order_id=$1
	`, orderID)
	var chat models.OrderChat
	if err := row.Scan(&chat.ID, &chat.OrderID, &chat.MessagesCount, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapErr(err)
	}
	return &chat, nil
}

func scanApplication(row rowScanner) (*models.OrderApplication, error) {
	var app models.OrderApplication
	err := row.Scan(
		&app.ID,
		&app.OrderID,
		&app.ApplicantID,
		&app.Status,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}
