package http

import (
	"time"

	"github.com/ixnv/anon-fl-api/internal/models"
	"github.com/ixnv/anon-fl-api/internal/services"

	"github.com/rs/zerolog"
)

type Handler struct {
	Accounts     *services.AccountService
	Orders       *services.OrderService
	Applications *services.ApplicationService
	Chats        *services.ChatService
	Categories   *services.CategoryService
	Tags         *services.TagService
	Feed         *services.ChatFeed
	Log          zerolog.Logger
}

func NewHandler(
	accounts *services.AccountService,
	orders *services.OrderService,
	applications *services.ApplicationService,
	chats *services.ChatService,
	categories *services.CategoryService,
	tags *services.TagService,
	feed *services.ChatFeed,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		Accounts:     accounts,
		Orders:       orders,
		Applications: applications,
		Chats:        chats,
		Categories:   categories,
		Tags:         tags,
		Feed:         feed,
		Log:          log,
	}
}

// Response shapes. One explicit struct per contract; nothing is inferred
// from model introspection.

type profileResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type categoryResponse struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ParentID *string `json:"parent_id"`
}

type categoryTreeResponse struct {
	categoryResponse
	Subcategories []categoryResponse `json:"subcategories"`
}

type tagResponse struct {
	ID  string `json:"id"`
	Tag string `json:"tag"`
}

type attachmentResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Hash     string `json:"hash,omitempty"`
}

type applicationResponse struct {
	ID          string           `json:"id"`
	OrderID     string           `json:"order_id"`
	ApplicantID string           `json:"applicant_id"`
	Status      string           `json:"status"`
	CreatedAt   string           `json:"created_at"`
	Applicant   *profileResponse `json:"applicant,omitempty"`
}

type orderResponse struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Price        int64                 `json:"price"`
	Status       string                `json:"status"`
	CreatedAt    string                `json:"created_at"`
	UpdatedAt    string                `json:"updated_at"`
	Category     *categoryResponse     `json:"category"`
	Tags         []string              `json:"tags"`
	CustomerID   string                `json:"customer_id"`
	Customer     profileResponse       `json:"customer"`
	Contractor   *profileResponse      `json:"contractor,omitempty"`
	Attachments  []attachmentResponse  `json:"attachments,omitempty"`
	Application  *applicationResponse  `json:"application,omitempty"`
	Applications []applicationResponse `json:"application_list,omitempty"`
}

type chatResponse struct {
	ID            string `json:"id"`
	MessagesCount int64  `json:"messages_count"`
}

type messageResponse struct {
	ID         string `json:"id"`
	ChatID     string `json:"chat_id"`
	Message    string `json:"message"`
	IsRead     bool   `json:"is_read"`
	SenderID   string `json:"sender_id"`
	CreatedAt  string `json:"created_at"`
	OrderID    string `json:"order_id,omitempty"`
	OrderTitle string `json:"order_title,omitempty"`
}

type pageResponse struct {
	Results any `json:"results"`
	Page    int `json:"page"`
}

func toCategoryResponse(category *models.OrderCategory) *categoryResponse {
	if category == nil {
		return nil
	}
	return &categoryResponse{ID: category.ID, Title: category.Title, ParentID: category.ParentID}
}

func toApplicationResponse(app *models.OrderApplication, applicant *services.Profile) applicationResponse {
	resp := applicationResponse{
		ID:          app.ID,
		OrderID:     app.OrderID,
		ApplicantID: app.ApplicantID,
		Status:      string(app.Status),
		CreatedAt:   app.CreatedAt.Format(time.RFC3339),
	}
	if applicant != nil {
		resp.Applicant = &profileResponse{ID: applicant.ID, Username: applicant.Username}
	}
	return resp
}

func toOrderResponse(summary *services.OrderSummary) orderResponse {
	order := summary.Order
	resp := orderResponse{
		ID:          order.ID,
		Title:       order.Title,
		Description: order.Description,
		Price:       order.Price,
		Status:      string(order.Status),
		CreatedAt:   order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   order.UpdatedAt.Format(time.RFC3339),
		Category:    toCategoryResponse(summary.Category),
		Tags:        []string{},
		CustomerID:  order.CustomerID,
		Customer:    profileResponse{ID: summary.Customer.ID, Username: summary.Customer.Username},
	}
	for _, tag := range summary.Tags {
		resp.Tags = append(resp.Tags, tag.Tag)
	}
	if summary.Contractor != nil {
		resp.Contractor = &profileResponse{ID: summary.Contractor.ID, Username: summary.Contractor.Username}
	}
	return resp
}

func toOrderDetailResponse(detail *services.OrderDetail) orderResponse {
	resp := toOrderResponse(&detail.OrderSummary)
	for _, att := range detail.Attachments {
		resp.Attachments = append(resp.Attachments, attachmentResponse{
			ID:       att.ID,
			Filename: att.Filename,
			URL:      att.URL,
			Hash:     att.Hash,
		})
	}
	if detail.Application != nil {
		app := toApplicationResponse(detail.Application, nil)
		resp.Application = &app
	}
	for _, info := range detail.Applications {
		applicant := info.Applicant
		resp.Applications = append(resp.Applications, toApplicationResponse(info.Application, &applicant))
	}
	return resp
}

func toMessageResponse(msg *models.OrderChatMessage) messageResponse {
	return messageResponse{
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		Message:   msg.Message,
		IsRead:    msg.IsRead,
		SenderID:  msg.SenderID,
		CreatedAt: msg.CreatedAt.Format(time.RFC3339),
	}
}
