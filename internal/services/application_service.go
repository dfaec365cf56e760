package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ixnv/anon-fl-api/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ApplicationStore interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	CreateApplication(ctx context.Context, app *models.OrderApplication) error
	GetApplication(ctx context.Context, applicationID string) (*models.OrderApplication, error)
	GetActiveApplication(ctx context.Context, orderID, applicantID string) (*models.OrderApplication, error)
	UpdateApplicationStatus(ctx context.Context, applicationID string, to models.ApplicationStatus, allowedFrom ...models.ApplicationStatus) (bool, error)
	ListApplications(ctx context.Context, orderID string, excludeWithdrawn bool) ([]*models.OrderApplication, error)
	AcceptApplication(ctx context.Context, orderID, applicationID, applicantID, chatID string) (*models.OrderChat, error)
}

// ApplicationService coordinates the application state machine with the
// order it targets: exclusivity of acceptance, one application per
// applicant, ownership checks, and the chat spawned on accept.
type ApplicationService struct {
	store    ApplicationStore
	notifier Notifier
	log      zerolog.Logger
}

func NewApplicationService(store ApplicationStore, notifier Notifier, log zerolog.Logger) *ApplicationService {
	return &ApplicationService{store: store, notifier: notifier, log: log}
}

// ApplicationInfo pairs an application with its applicant's public profile.
type ApplicationInfo struct {
	Application *models.OrderApplication
	Applicant   Profile
}

// Apply creates a new application from applicantID on the order. A second
// apply without an intervening withdraw fails with ErrAlreadyApplied and
// leaves the existing row untouched.
func (s *ApplicationService) Apply(ctx context.Context, orderID, applicantID string) (*models.OrderApplication, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if applicantID == order.CustomerID {
		return nil, fmt.Errorf("%w: cannot apply to own order", models.ErrConflict)
	}
	if order.ContractorID != nil {
		return nil, fmt.Errorf("%w: applications no longer accepted", models.ErrInvalidState)
	}

	now := time.Now().UTC()
	app := &models.OrderApplication{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		ApplicantID: applicantID,
		Status:      models.ApplicationNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateApplication(ctx, app); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, []string{order.CustomerID}, order.ID, models.NotifyApplicationRequestReceived, map[string]any{
		"order_id":       order.ID,
		"order_title":    order.Title,
		"application_id": app.ID,
		"applicant_id":   applicantID,
	})
	return app, nil
}

// Withdraw moves the caller's own pending application to withdrawn.
// Accepted and declined applications are settled and stay as they are.
func (s *ApplicationService) Withdraw(ctx context.Context, orderID, applicantID string) (*models.OrderApplication, error) {
	app, err := s.store.GetActiveApplication(ctx, orderID, applicantID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationNew {
		return nil, fmt.Errorf("%w: only a pending application can be withdrawn", models.ErrNotAcceptable)
	}

	ok, err := s.store.UpdateApplicationStatus(ctx, app.ID, models.ApplicationWithdrawn,
		models.ApplicationNew)
	if err != nil {
		return nil, err
	}
	if !ok {
		// lost a race with an accept or decline
		return nil, fmt.Errorf("%w: only a pending application can be withdrawn", models.ErrNotAcceptable)
	}
	app.Status = models.ApplicationWithdrawn
	return app, nil
}

// SetStatus is the accept/decline decision, restricted to the order's
// customer. Accept atomically moves the order to in_process, fixes the
// contractor, creates the chat, and marks the application accepted. Decline
// only touches the application.
func (s *ApplicationService) SetStatus(ctx context.Context, orderID, applicationID string, status models.ApplicationStatus, actorID string) (*models.OrderApplication, error) {
	if status != models.ApplicationAccepted && status != models.ApplicationDeclined {
		return nil, fmt.Errorf("%w: status not permitted", models.ErrPermissionDenied)
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actorID != order.CustomerID {
		return nil, fmt.Errorf("%w: only the customer decides applications", models.ErrPermissionDenied)
	}
	if order.ContractorID != nil {
		return nil, fmt.Errorf("%w: order already has a contractor", models.ErrPermissionDenied)
	}

	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.OrderID != orderID {
		return nil, models.ErrNotFound
	}

	switch status {
	case models.ApplicationAccepted:
		if _, err := s.store.AcceptApplication(ctx, orderID, app.ID, app.ApplicantID, uuid.NewString()); err != nil {
			return nil, err
		}
		app.Status = models.ApplicationAccepted
		s.notifier.Notify(ctx, []string{app.ApplicantID}, order.ID, models.NotifyApplicationApproved, map[string]any{
			"order_id":       order.ID,
			"order_title":    order.Title,
			"application_id": app.ID,
		})
	case models.ApplicationDeclined:
		ok, err := s.store.UpdateApplicationStatus(ctx, app.ID, models.ApplicationDeclined, models.ApplicationNew)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: application is not pending", models.ErrInvalidState)
		}
		app.Status = models.ApplicationDeclined
		s.notifier.Notify(ctx, []string{app.ApplicantID}, order.ID, models.NotifyApplicationDeclined, map[string]any{
			"order_id":       order.ID,
			"order_title":    order.Title,
			"application_id": app.ID,
		})
	}
	return app, nil
}

// List returns the order's non-withdrawn applications with applicant
// profiles. Customer only.
func (s *ApplicationService) List(ctx context.Context, orderID, requesterID string) ([]ApplicationInfo, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if requesterID != order.CustomerID {
		return nil, models.ErrPermissionDenied
	}

	apps, err := s.store.ListApplications(ctx, orderID, true)
	if err != nil {
		return nil, err
	}
	out := make([]ApplicationInfo, 0, len(apps))
	for _, app := range apps {
		info := ApplicationInfo{Application: app}
		if user, err := s.store.GetUser(ctx, app.ApplicantID); err == nil {
			info.Applicant = Profile{ID: user.ID, Username: user.Username}
		}
		out = append(out, info)
	}
	return out, nil
}
