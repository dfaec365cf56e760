package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ixnv/anon-fl-api/internal/models"
	"github.com/ixnv/anon-fl-api/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order, tagIDs []string) error
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	UpdateOrder(ctx context.Context, order *models.Order) error
	DeleteOrder(ctx context.Context, orderID string) error
	ListOrders(ctx context.Context, filter store.OrderFilter) ([]*models.Order, error)
	ListOrderTags(ctx context.Context, orderID string) ([]*models.Tag, error)
	CreateAttachment(ctx context.Context, att *models.OrderAttachment) error
	ListAttachments(ctx context.Context, orderID string) ([]*models.OrderAttachment, error)
	GetCategory(ctx context.Context, categoryID string) (*models.OrderCategory, error)
	GetTag(ctx context.Context, tagID string) (*models.Tag, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetActiveApplication(ctx context.Context, orderID, applicantID string) (*models.OrderApplication, error)
	ListApplications(ctx context.Context, orderID string, excludeWithdrawn bool) ([]*models.OrderApplication, error)
}

type OrderService struct {
	store    OrderStore
	pageSize int
	log      zerolog.Logger
}

func NewOrderService(st OrderStore, pageSize int, log zerolog.Logger) *OrderService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &OrderService{store: st, pageSize: pageSize, log: log}
}

type CreateOrderInput struct {
	CategoryID  string
	Title       string
	Description string
	Price       int64
	TagIDs      []string
}

type UpdateOrderInput struct {
	CategoryID  string
	Title       string
	Description string
	Price       int64
}

type ListOrdersInput struct {
	CategoryID string
	TagID      string
	Page       int
}

// OrderSummary is an order with its denormalized category, tags and
// profiles. The contractor profile is present only when the requester
// participates in the order.
type OrderSummary struct {
	Order      *models.Order
	Category   *models.OrderCategory
	Tags       []*models.Tag
	Customer   Profile
	Contractor *Profile
}

type OrderDetail struct {
	OrderSummary
	Attachments []*models.OrderAttachment
	// Application is the requester's own non-withdrawn application, if any.
	Application *models.OrderApplication
	// Applications is the pending list, visible to the customer only.
	Applications []ApplicationInfo
}

func (s *OrderService) Create(ctx context.Context, customerID string, input CreateOrderInput) (*models.Order, error) {
	if input.Title == "" || input.Description == "" || input.Price <= 0 {
		return nil, fmt.Errorf("%w: title, description and a positive price are required", models.ErrNotAcceptable)
	}
	if uuid.Validate(input.CategoryID) != nil {
		return nil, fmt.Errorf("%w: category", models.ErrNotFound)
	}
	if _, err := s.store.GetCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	for _, tagID := range input.TagIDs {
		if uuid.Validate(tagID) != nil {
			return nil, fmt.Errorf("%w: tag", models.ErrNotFound)
		}
		if _, err := s.store.GetTag(ctx, tagID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:          uuid.NewString(),
		CategoryID:  input.CategoryID,
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		CustomerID:  customerID,
		Status:      models.OrderNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateOrder(ctx, order, input.TagIDs); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, orderID, requesterID string) (*OrderDetail, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	summary, err := s.summarize(ctx, order, requesterID)
	if err != nil {
		return nil, err
	}
	detail := &OrderDetail{OrderSummary: *summary}

	detail.Attachments, err = s.store.ListAttachments(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if app, err := s.store.GetActiveApplication(ctx, orderID, requesterID); err == nil {
		detail.Application = app
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	if requesterID == order.CustomerID {
		apps, err := s.store.ListApplications(ctx, orderID, true)
		if err != nil {
			return nil, err
		}
		for _, app := range apps {
			info := ApplicationInfo{Application: app}
			if user, err := s.store.GetUser(ctx, app.ApplicantID); err == nil {
				info.Applicant = Profile{ID: user.ID, Username: user.Username}
			}
			detail.Applications = append(detail.Applications, info)
		}
	}
	return detail, nil
}

func (s *OrderService) Update(ctx context.Context, orderID, requesterID string, input UpdateOrderInput) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if requesterID != order.CustomerID {
		return nil, fmt.Errorf("%w: only the customer can edit the order", models.ErrPermissionDenied)
	}
	if input.Title == "" || input.Description == "" || input.Price <= 0 {
		return nil, fmt.Errorf("%w: title, description and a positive price are required", models.ErrNotAcceptable)
	}
	if input.CategoryID != order.CategoryID {
		if uuid.Validate(input.CategoryID) != nil {
			return nil, fmt.Errorf("%w: category", models.ErrNotFound)
		}
		if _, err := s.store.GetCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}

	order.CategoryID = input.CategoryID
	order.Title = input.Title
	order.Description = input.Description
	order.Price = input.Price
	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) Delete(ctx context.Context, orderID, requesterID string) error {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if requesterID != order.CustomerID {
		return fmt.Errorf("%w: only the customer can delete the order", models.ErrPermissionDenied)
	}
	return s.store.DeleteOrder(ctx, orderID)
}

func (s *OrderService) List(ctx context.Context, requesterID string, input ListOrdersInput) ([]*OrderSummary, error) {
	// A malformed id filter matches nothing.
	if input.CategoryID != "" && uuid.Validate(input.CategoryID) != nil {
		return nil, nil
	}
	if input.TagID != "" && uuid.Validate(input.TagID) != nil {
		return nil, nil
	}
	filter := store.OrderFilter{
		CategoryID: input.CategoryID,
		TagID:      input.TagID,
	}
	return s.list(ctx, requesterID, filter, input.Page)
}

func (s *OrderService) ListByCustomer(ctx context.Context, userID string, page int) ([]*OrderSummary, error) {
	return s.list(ctx, userID, store.OrderFilter{CustomerID: userID}, page)
}

func (s *OrderService) ListByContractor(ctx context.Context, userID string, page int) ([]*OrderSummary, error) {
	return s.list(ctx, userID, store.OrderFilter{ContractorID: userID}, page)
}

func (s *OrderService) AddAttachment(ctx context.Context, orderID, requesterID, filename, url, hash string) (*models.OrderAttachment, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if requesterID != order.CustomerID {
		return nil, fmt.Errorf("%w: only the customer can attach files", models.ErrPermissionDenied)
	}
	if filename == "" || url == "" {
		return nil, fmt.Errorf("%w: filename and url are required", models.ErrNotAcceptable)
	}

	now := time.Now().UTC()
	att := &models.OrderAttachment{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		CustomerID: requesterID,
		Filename:   filename,
		Hash:       hash,
		URL:        url,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateAttachment(ctx, att); err != nil {
		return nil, err
	}
	return att, nil
}

func (s *OrderService) list(ctx context.Context, requesterID string, filter store.OrderFilter, page int) ([]*OrderSummary, error) {
	if page < 1 {
		page = 1
	}
	filter.Limit = s.pageSize
	filter.Offset = (page - 1) * s.pageSize

	orders, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]*OrderSummary, 0, len(orders))
	for _, order := range orders {
		summary, err := s.summarize(ctx, order, requesterID)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *OrderService) summarize(ctx context.Context, order *models.Order, requesterID string) (*OrderSummary, error) {
	summary := &OrderSummary{Order: order}

	category, err := s.store.GetCategory(ctx, order.CategoryID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	summary.Category = category

	summary.Tags, err = s.store.ListOrderTags(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	if customer, err := s.store.GetUser(ctx, order.CustomerID); err == nil {
		summary.Customer = Profile{ID: customer.ID, Username: customer.Username}
	}

	// contractor profile is hidden from everyone but the two participants
	if order.ContractorID != nil && order.IsParticipant(requesterID) {
		if contractor, err := s.store.GetUser(ctx, *order.ContractorID); err == nil {
			summary.Contractor = &Profile{ID: contractor.ID, Username: contractor.Username}
		}
	}
	return summary, nil
}
