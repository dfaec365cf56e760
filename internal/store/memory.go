package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ixnv/anon-fl-api/internal/models"
)

// Memory is an in-process implementation of the same operations as Store,
// with the same atomicity guarantees under a single mutex. Tests run the
// service layer against it.
type Memory struct {
	mu sync.Mutex

	users        map[string]*models.User
	tokens       map[string]*models.AuthToken
	settings     map[string]*models.NotificationSettings
	categories   map[string]*models.OrderCategory
	tags         map[string]*models.Tag
	orders       map[string]*models.Order
	orderTags    map[string][]string
	attachments  map[string][]*models.OrderAttachment
	applications map[string]*models.OrderApplication
	chats        map[string]*models.OrderChat // keyed by order id
	messages     map[string][]*models.OrderChatMessage
}

func NewMemory() *Memory {
	return &Memory{
		users:        make(map[string]*models.User),
		tokens:       make(map[string]*models.AuthToken),
		settings:     make(map[string]*models.NotificationSettings),
		categories:   make(map[string]*models.OrderCategory),
		tags:         make(map[string]*models.Tag),
		orders:       make(map[string]*models.Order),
		orderTags:    make(map[string][]string),
		attachments:  make(map[string][]*models.OrderAttachment),
		applications: make(map[string]*models.OrderApplication),
		chats:        make(map[string]*models.OrderChat),
		messages:     make(map[string][]*models.OrderChatMessage),
	}
}

func (m *Memory) CreateOrder(_ context.Context, order *models.Order, tagIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *order
	m.orders[order.ID] = &cp
	m.orderTags[order.ID] = append([]string(nil), tagIDs...)
	return nil
}

func (m *Memory) GetOrder(_ context.Context, orderID string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *Memory) UpdateOrder(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.orders[order.ID]
	if !ok {
		return models.ErrNotFound
	}
	existing.CategoryID = order.CategoryID
	existing.Title = order.Title
	existing.Description = order.Description
	existing.Price = order.Price
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Memory) DeleteOrder(_ context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[orderID]; !ok {
		return models.ErrNotFound
	}
	delete(m.orders, orderID)
	delete(m.orderTags, orderID)
	return nil
}

func (m *Memory) ListOrders(_ context.Context, filter OrderFilter) ([]*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Order
	for _, order := range m.orders {
		if filter.CategoryID != "" && order.CategoryID != filter.CategoryID {
			continue
		}
		if filter.CustomerID != "" && order.CustomerID != filter.CustomerID {
			continue
		}
		if filter.ContractorID != "" && (order.ContractorID == nil || *order.ContractorID != filter.ContractorID) {
			continue
		}
		if filter.TagID != "" && !contains(m.orderTags[order.ID], filter.TagID) {
			continue
		}
		cp := *order
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (m *Memory) ListOrderTags(_ context.Context, orderID string) ([]*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Tag
	for _, tagID := range m.orderTags[orderID] {
		if tag, ok := m.tags[tagID]; ok {
			cp := *tag
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out, nil
}

func (m *Memory) CreateAttachment(_ context.Context, att *models.OrderAttachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *att
	m.attachments[att.OrderID] = append(m.attachments[att.OrderID], &cp)
	return nil
}

func (m *Memory) ListAttachments(_ context.Context, orderID string) ([]*models.OrderAttachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.OrderAttachment
	for _, att := range m.attachments[orderID] {
		cp := *att
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) CreateApplication(_ context.Context, app *models.OrderApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.applications {
		if existing.OrderID == app.OrderID && existing.ApplicantID == app.ApplicantID &&
			existing.Status != models.ApplicationWithdrawn {
			return models.ErrAlreadyApplied
		}
	}
	cp := *app
	m.applications[app.ID] = &cp
	return nil
}

func (m *Memory) GetApplication(_ context.Context, applicationID string) (*models.OrderApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.applications[applicationID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *app
	return &cp, nil
}

func (m *Memory) GetActiveApplication(_ context.Context, orderID, applicantID string) (*models.OrderApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, app := range m.applications {
		if app.OrderID == orderID && app.ApplicantID == applicantID &&
			app.Status != models.ApplicationWithdrawn {
			cp := *app
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *Memory) UpdateApplicationStatus(_ context.Context, applicationID string, to models.ApplicationStatus, allowedFrom ...models.ApplicationStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.applications[applicationID]
	if !ok {
		return false, nil
	}
	for _, from := range allowedFrom {
		if app.Status == from {
			app.Status = to
			app.UpdatedAt = time.Now().UTC()
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) ListApplications(_ context.Context, orderID string, excludeWithdrawn bool) ([]*models.OrderApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.OrderApplication
	for _, app := range m.applications {
		if app.OrderID != orderID {
			continue
		}
		if excludeWithdrawn && app.Status == models.ApplicationWithdrawn {
			continue
		}
		cp := *app
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) AcceptApplication(_ context.Context, orderID, applicationID, applicantID, chatID string) (*models.OrderChat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if order.ContractorID != nil {
		return nil, models.ErrInvalidState
	}
	app, ok := m.applications[applicationID]
	if !ok || app.OrderID != orderID || app.Status != models.ApplicationNew {
		return nil, models.ErrInvalidState
	}

	now := time.Now().UTC()
	contractor := applicantID
	order.ContractorID = &contractor
	order.Status = models.OrderInProcess
	order.UpdatedAt = now
	app.Status = models.ApplicationAccepted
	app.UpdatedAt = now

	chat, ok := m.chats[orderID]
	if !ok {
		chat = &models.OrderChat{ID: chatID, OrderID: orderID, CreatedAt: now, UpdatedAt: now}
		m.chats[orderID] = chat
	}
	cp := *chat
	return &cp, nil
}

func (m *Memory) GetChatByOrder(_ context.Context, orderID string) (*models.OrderChat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat, ok := m.chats[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *chat
	return &cp, nil
}

func (m *Memory) GetOrCreateChat(_ context.Context, orderID, chatID string) (*models.OrderChat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat, ok := m.chats[orderID]
	if !ok {
		now := time.Now().UTC()
		chat = &models.OrderChat{ID: chatID, OrderID: orderID, CreatedAt: now, UpdatedAt: now}
		m.chats[orderID] = chat
	}
	cp := *chat
	return &cp, nil
}

func (m *Memory) AppendMessage(_ context.Context, msg *models.OrderChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var chat *models.OrderChat
	for _, c := range m.chats {
		if c.ID == msg.ChatID {
			chat = c
			break
		}
	}
	if chat == nil {
		return models.ErrNotFound
	}
	cp := *msg
	m.messages[msg.ChatID] = append(m.messages[msg.ChatID], &cp)
	chat.MessagesCount++
	chat.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Memory) ListMessages(_ context.Context, chatID string, limit, offset int) ([]*models.OrderChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.messages[chatID]
	out := make([]*models.OrderChatMessage, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		cp := *msgs[i]
		out = append(out, &cp)
	}
	return paginate(out, limit, offset), nil
}

func (m *Memory) MarkAllRead(_ context.Context, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages[chatID] {
		msg.IsRead = true
	}
	return nil
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return models.ErrConflict
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *Memory) GetUser(_ context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *Memory) CreateToken(_ context.Context, token *models.AuthToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tokens {
		if existing.UserID == token.UserID {
			return nil
		}
	}
	cp := *token
	m.tokens[token.Key] = &cp
	return nil
}

func (m *Memory) GetToken(_ context.Context, key string) (*models.AuthToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[key]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *token
	return &cp, nil
}

func (m *Memory) GetTokenByUser(_ context.Context, userID string) (*models.AuthToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, token := range m.tokens {
		if token.UserID == userID {
			cp := *token
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *Memory) CreateNotificationSettings(_ context.Context, settings *models.NotificationSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.settings[settings.UserID]; ok {
		return nil
	}
	cp := *settings
	m.settings[settings.UserID] = &cp
	return nil
}

func (m *Memory) GetNotificationSettings(_ context.Context, userID string) (*models.NotificationSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	settings, ok := m.settings[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *settings
	cp.Categories = append([]string(nil), settings.Categories...)
	return &cp, nil
}

func (m *Memory) UpdateNotificationSettings(_ context.Context, settings *models.NotificationSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.settings[settings.UserID]
	if !ok {
		return models.ErrNotFound
	}
	existing.Categories = append([]string(nil), settings.Categories...)
	existing.NotifyOnEmail = settings.NotifyOnEmail
	return nil
}

func (m *Memory) CreateCategory(_ context.Context, category *models.OrderCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *category
	m.categories[category.ID] = &cp
	return nil
}

func (m *Memory) GetCategory(_ context.Context, categoryID string) (*models.OrderCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	category, ok := m.categories[categoryID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *category
	return &cp, nil
}

func (m *Memory) UpdateCategory(_ context.Context, category *models.OrderCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.categories[category.ID]
	if !ok {
		return models.ErrNotFound
	}
	existing.ParentID = category.ParentID
	existing.Title = category.Title
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Memory) DeleteCategory(_ context.Context, categoryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[categoryID]; !ok {
		return models.ErrNotFound
	}
	delete(m.categories, categoryID)
	return nil
}

func (m *Memory) ListCategories(_ context.Context) ([]*models.OrderCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.OrderCategory
	for _, category := range m.categories {
		cp := *category
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) GetOrCreateTag(_ context.Context, tag *models.Tag) (*models.Tag, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tags {
		if existing.CreatedBy == tag.CreatedBy && existing.Tag == tag.Tag {
			cp := *existing
			return &cp, false, nil
		}
	}
	cp := *tag
	m.tags[tag.ID] = &cp
	out := cp
	return &out, true, nil
}

func (m *Memory) GetTag(_ context.Context, tagID string) (*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tag, ok := m.tags[tagID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *tag
	return &cp, nil
}

func (m *Memory) SearchTags(_ context.Context, query string, limit int) ([]*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	var out []*models.Tag
	for _, tag := range m.tags {
		if query == "" || strings.HasPrefix(tag.Tag, query) {
			cp := *tag
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
