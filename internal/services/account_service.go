package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ixnv/anon-fl-api/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type AccountStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateToken(ctx context.Context, token *models.AuthToken) error
	GetToken(ctx context.Context, key string) (*models.AuthToken, error)
	GetTokenByUser(ctx context.Context, userID string) (*models.AuthToken, error)
	CreateNotificationSettings(ctx context.Context, settings *models.NotificationSettings) error
	GetNotificationSettings(ctx context.Context, userID string) (*models.NotificationSettings, error)
	UpdateNotificationSettings(ctx context.Context, settings *models.NotificationSettings) error
}

type AccountService struct {
	store     AccountStore
	notifier  Notifier
	jwtSecret []byte
	log       zerolog.Logger
}

func NewAccountService(store AccountStore, notifier Notifier, jwtSecret string, log zerolog.Logger) *AccountService {
	return &AccountService{store: store, notifier: notifier, jwtSecret: []byte(jwtSecret), log: log}
}

// Account is the authenticated view returned by Register and Login: the user
// plus their opaque API token and a JWT carrying the user id.
type Account struct {
	User  *models.User
	Token string
	JWT   string
}

func (s *AccountService) Register(ctx context.Context, username, email, password string) (*Account, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", models.ErrNotAcceptable)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: user with this username or email already exists", models.ErrNotAcceptable)
		}
		return nil, err
	}

	token := &models.AuthToken{Key: uuid.NewString(), UserID: user.ID, CreatedAt: time.Now().UTC()}
	if err := s.store.CreateToken(ctx, token); err != nil {
		return nil, err
	}
	err = s.store.CreateNotificationSettings(ctx, &models.NotificationSettings{
		UserID:        user.ID,
		NotifyOnEmail: true,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Email(ctx, email, "registration", map[string]string{"username": username})

	signed, err := s.signJWT(user.ID)
	if err != nil {
		return nil, err
	}
	return &Account{User: user, Token: token.Key, JWT: signed}, nil
}

func (s *AccountService) Login(ctx context.Context, username, password string) (*Account, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", models.ErrPermissionDenied)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%w: invalid credentials", models.ErrPermissionDenied)
	}

	token, err := s.store.GetTokenByUser(ctx, user.ID)
	if errors.Is(err, models.ErrNotFound) {
		token = &models.AuthToken{Key: uuid.NewString(), UserID: user.ID, CreatedAt: time.Now().UTC()}
		err = s.store.CreateToken(ctx, token)
	}
	if err != nil {
		return nil, err
	}

	signed, err := s.signJWT(user.ID)
	if err != nil {
		return nil, err
	}
	return &Account{User: user, Token: token.Key, JWT: signed}, nil
}

// Authenticate resolves an opaque token key to its user.
func (s *AccountService) Authenticate(ctx context.Context, key string) (*models.User, error) {
	token, err := s.store.GetToken(ctx, key)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid token", models.ErrPermissionDenied)
		}
		return nil, err
	}
	return s.store.GetUser(ctx, token.UserID)
}

func (s *AccountService) NotificationSettings(ctx context.Context, userID string) (*models.NotificationSettings, error) {
	return s.store.GetNotificationSettings(ctx, userID)
}

func (s *AccountService) UpdateNotificationSettings(ctx context.Context, userID string, categories []string, notifyOnEmail bool) (*models.NotificationSettings, error) {
	settings := &models.NotificationSettings{
		UserID:        userID,
		Categories:    categories,
		NotifyOnEmail: notifyOnEmail,
	}
	if err := s.store.UpdateNotificationSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// MarkNotificationsRead forwards to the gateway; best effort.
func (s *AccountService) MarkNotificationsRead(ctx context.Context, userID string) {
	s.notifier.MarkRead(ctx, userID)
}

func (s *AccountService) signJWT(userID string) (string, error) {
	claims := jwt.MapClaims{"user_id": userID}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}
