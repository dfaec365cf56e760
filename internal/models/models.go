package models

import "time"

type OrderStatus string

const (
	OrderNew                  OrderStatus = "new"
	OrderPublished            OrderStatus = "published"
	OrderInProcess            OrderStatus = "in_process"
	OrderCompletedWithSuccess OrderStatus = "completed_with_success"
	OrderCompletedWithFail    OrderStatus = "completed_with_fail"
)

type ApplicationStatus string

const (
	ApplicationNew       ApplicationStatus = "new"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationDeclined  ApplicationStatus = "declined"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

type NotificationKey string

const (
	NotifyChatNewMessage             NotificationKey = "ORDER_CHAT_NEW_MESSAGE"
	NotifyApplicationRequestReceived NotificationKey = "ORDER_APPLICATION_REQUEST_RECEIVED"
	NotifyApplicationApproved        NotificationKey = "ORDER_APPLICATION_APPROVED"
	NotifyApplicationDeclined        NotificationKey = "ORDER_APPLICATION_DECLINED"
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

type AuthToken struct {
	Key       string
	UserID    string
	CreatedAt time.Time
}

type OrderCategory struct {
	ID        string
	ParentID  *string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Tag struct {
	ID        string
	Tag       string
	CreatedBy string
	CreatedAt time.Time
}

type Order struct {
	ID           string
	CategoryID   string
	Title        string
	Description  string
	Price        int64
	CustomerID   string
	ContractorID *string
	Status       OrderStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsParticipant reports whether userID is the order's customer or its
// accepted contractor.
func (o *Order) IsParticipant(userID string) bool {
	if userID == o.CustomerID {
		return true
	}
	return o.ContractorID != nil && *o.ContractorID == userID
}

type OrderAttachment struct {
	ID         string
	OrderID    string
	CustomerID string
	Filename   string
	Hash       string
	URL        string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type OrderApplication struct {
	ID          string
	OrderID     string
	ApplicantID string
	Status      ApplicationStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type OrderChat struct {
	ID            string
	OrderID       string
	MessagesCount int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type OrderChatMessage struct {
	ID        string
	ChatID    string
	SenderID  string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

type NotificationSettings struct {
	UserID        string
	Categories    []string
	NotifyOnEmail bool
}
