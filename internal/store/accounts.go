package store

import (
	"context"

	"github.com/ixnv/anon-fl-api/internal/models"
)

const userColumns = `id, username, email, password_hash, is_admin, created_at`

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, is_admin, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsAdmin,
		user.CreatedAt,
	)
	return mapErr(err)
}

func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	return scanUser(row)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
	return scanUser(row)
}

func (s *Store) CreateToken(ctx context.Context, token *models.AuthToken) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO auth_tokens (key, user_id, created_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id) DO NOTHING
	`, token.Key, token.UserID, token.CreatedAt)
	return mapErr(err)
}

func (s *Store) GetToken(ctx context.Context, key string) (*models.AuthToken, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT key, user_id, created_at FROM auth_tokens WHERE key=$1`, key)
	var token models.AuthToken
	if err := row.Scan(&token.Key, &token.UserID, &token.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &token, nil
}

func (s *Store) GetTokenByUser(ctx context.Context, userID string) (*models.AuthToken, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT key, user_id, created_at FROM auth_tokens WHERE user_id=$1`, userID)
	var token models.AuthToken
	if err := row.Scan(&token.Key, &token.UserID, &token.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &token, nil
}

func (s *Store) CreateNotificationSettings(ctx context.Context, settings *models.NotificationSettings) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO user_notification_settings (user_id, categories, notify_on_email)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id) DO NOTHING
	`, settings.UserID, settings.Categories, settings.NotifyOnEmail)
	return mapErr(err)
}

func (s *Store) GetNotificationSettings(ctx context.Context, userID string) (*models.NotificationSettings, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT user_id, categories, notify_on_email
		FROM user_notification_settings WHERE user_id=$1
	`, userID)
	var settings models.NotificationSettings
	if err := row.Scan(&settings.UserID, &settings.Categories, &settings.NotifyOnEmail); err != nil {
		return nil, mapErr(err)
	}
	return &settings, nil
}

func (s *Store) UpdateNotificationSettings(ctx context.Context, settings *models.NotificationSettings) error {
	res, err := s.Pool.Exec(ctx, `
		UPDATE user_notification_settings
		SET categories=$2, notify_on_email=$3
		WHERE user_id=$1
	`, settings.UserID, settings.Categories, settings.NotifyOnEmail)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}
