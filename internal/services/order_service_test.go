package services

import (
	"context"
	"testing"
	"time"

	"github.com/ixnv/anon-fl-api/internal/models"
	"github.com/ixnv/anon-fl-api/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTag(t *testing.T, m *store.Memory, userID, text string) *models.Tag {
	t.Helper()
	tag, _, err := m.GetOrCreateTag(context.Background(), &models.Tag{
		ID:        uuid.NewString(),
		Tag:       text,
		CreatedBy: userID,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return tag
}

func TestCreateOrderValidation(t *testing.T) {
	m := store.NewMemory()
	svc := NewOrderService(m, 20, testLogger())
	customer := seedUser(t, m, "customer")
	category := seedCategory(t, m, "devops")

	_, err := svc.Create(context.Background(), customer.ID, CreateOrderInput{
		CategoryID: category.ID, Title: "", Description: "d", Price: 100,
	})
	assert.ErrorIs(t, err, models.ErrNotAcceptable)

	_, err = svc.Create(context.Background(), customer.ID, CreateOrderInput{
		CategoryID: category.ID, Title: "t", Description: "d", Price: 0,
	})
	assert.ErrorIs(t, err, models.ErrNotAcceptable)

	_, err = svc.Create(context.Background(), customer.ID, CreateOrderInput{
		CategoryID: "missing", Title: "t", Description: "d", Price: 100,
	})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.Create(context.Background(), customer.ID, CreateOrderInput{
		CategoryID: category.ID, Title: "t", Description: "d", Price: 100,
		TagIDs: []string{"missing"},
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateAndGetOrder(t *testing.T) {
	m := store.NewMemory()
	svc := NewOrderService(m, 20, testLogger())
	customer := seedUser(t, m, "customer")
	category := seedCategory(t, m, "devops")
	tag := seedTag(t, m, customer.ID, "kubernetes")

	order, err := svc.Create(context.Background(), customer.ID, CreateOrderInput{
		CategoryID:  category.ID,
		Title:       "set up the cluster",
		Description: "three nodes",
		Price:       42000,
		TagIDs:      []string{tag.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderNew, order.Status)

	detail, err := svc.Get(context.Background(), order.ID, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, detail.Order.ID)
	require.NotNil(t, detail.Category)
	assert.Equal(t, category.ID, detail.Category.ID)
	require.Len(t, detail.Tags, 1)
	assert.Equal(t, "kubernetes", detail.Tags[0].Tag)
	assert.Equal(t, "customer", detail.Customer.Username)
}

func TestGetOrderIncludesOwnApplication(t *testing.T) {
	m := store.NewMemory()
	svc := NewOrderService(m, 20, testLogger())
	apps := NewApplicationService(m, &fakeNotifier{}, testLogger())
	customer := seedUser(t, m, "customer")
	applicant := seedUser(t, m, "applicant")
	order := seedOrder(t, m, customer.ID, "")

	app, err := apps.Apply(context.Background(), order.ID, applicant.ID)
	require.NoError(t, err)

	// applicant sees their own application but not the full list
	detail, err := svc.Get(context.Background(), order.ID, applicant.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Application)
	assert.Equal(t, app.ID, detail.Application.ID)
	assert.Empty(t, detail.Applications)

	// customer sees the pending list
	detail, err = svc.Get(context.Background(), order.ID, customer.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Application)
	require.Len(t, detail.Applications, 1)
	assert.Equal(t, applicant.ID, detail.Applications[0].Application.ApplicantID)
}

func TestContractorHiddenFromOutsiders(t *testing.T) {
	m := store.NewMemory()
	svc := NewOrderService(m, 20, testLogger())
	apps := NewApplicationService(m, &fakeNotifier{}, testLogger())
	customer := seedUser(t, m, "customer")
	contractor := seedUser(t, m, "contractor")
	outsider := seedUser(t, m, "outsider")
	order := seedOrder(t, m, customer.ID, "")

	app, err := apps.Apply(context.Background(), order.ID, contractor.ID)
	require.NoError(t, err)
	_, err = apps.SetStatus(context.Background(), order.ID, app.ID, models.ApplicationAccepted, customer.ID)
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), order.ID, outsider.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Contractor)

	detail, err = svc.Get(context.Background(), order.ID, customer.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Contractor)
	assert.Equal(t, contractor.ID, detail.Contractor.ID)

	detail, err = svc.Get(context.Background(), order.ID, contractor.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Contractor)
}

func TestUpdateAndDeleteRequireCustomer(t *testing.T) {
	m := store.NewMemory()
	svc := NewOrderService(m, 20, testLogger())
	customer := seedUser(t, m, "customer")
	stranger := seedUser(t, m, "stranger")
	category := seedCategory(t, m, "devops")
	order := seedOrder(t, m, customer.ID, category.ID)

	input := UpdateOrderInput{CategoryID: category.ID, Title: "new title", Description: "new desc", Price: 500}

	_, err := svc.Update(context.Background(), order.ID, stranger.ID, input)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	updated, err := svc.Update(context.Background(), order.ID, customer.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)

	err = svc.Delete(context.Background(), order.ID, stranger.ID)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	require.NoError(t, svc.Delete(context.Background(), order.ID, customer.ID))
	_, err = svc.Get(context.Background(), order.ID, customer.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListOrdersFilters(t *testing.T) {
	m := store.NewMemory()
	svc := NewOrderService(m, 20, testLogger())
	customer := seedUser(t, m, "customer")
	devops := seedCategory(t, m, "devops")
	design := seedCategory(t, m, "design")
	tag := seedTag(t, m, customer.ID, "ansible")

	_, err := svc.Create(context.Background(), customer.ID, CreateOrderInput{
		CategoryID: devops.ID, Title: "a", Description: "d", Price: 100, TagIDs: []string{tag.ID},
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), customer.ID, CreateOrderInput{
		CategoryID: design.ID, Title: "b", Description: "d", Price: 100,
	})
	require.NoError(t, err)

	all, err := svc.List(context.Background(), customer.ID, ListOrdersInput{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byCategory, err := svc.List(context.Background(), customer.ID, ListOrdersInput{CategoryID: devops.ID})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "a", byCategory[0].Order.Title)

	byTag, err := svc.List(context.Background(), customer.ID, ListOrdersInput{TagID: tag.ID})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "a", byTag[0].Order.Title)
}

func TestListByCustomerAndContractor(t *testing.T) {
	m := store.NewMemory()
	svc := NewOrderService(m, 20, testLogger())
	apps := NewApplicationService(m, &fakeNotifier{}, testLogger())
	customer := seedUser(t, m, "customer")
	contractor := seedUser(t, m, "contractor")
	order := seedOrder(t, m, customer.ID, "")
	seedOrder(t, m, contractor.ID, "")

	app, err := apps.Apply(context.Background(), order.ID, contractor.ID)
	require.NoError(t, err)
	_, err = apps.SetStatus(context.Background(), order.ID, app.ID, models.ApplicationAccepted, customer.ID)
	require.NoError(t, err)

	mine, err := svc.ListByCustomer(context.Background(), customer.ID, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, order.ID, mine[0].Order.ID)

	assigned, err := svc.ListByContractor(context.Background(), contractor.ID, 1)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, order.ID, assigned[0].Order.ID)
}

func TestAddAttachmentCustomerOnly(t *testing.T) {
	m := store.NewMemory()
	svc := NewOrderService(m, 20, testLogger())
	customer := seedUser(t, m, "customer")
	stranger := seedUser(t, m, "stranger")
	order := seedOrder(t, m, customer.ID, "")

	_, err := svc.AddAttachment(context.Background(), order.ID, stranger.ID, "brief.pdf", "https://files/brief.pdf", "")
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	_, err = svc.AddAttachment(context.Background(), order.ID, customer.ID, "", "", "")
	assert.ErrorIs(t, err, models.ErrNotAcceptable)

	att, err := svc.AddAttachment(context.Background(), order.ID, customer.ID, "brief.pdf", "https://files/brief.pdf", "abc123")
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), order.ID, customer.ID)
	require.NoError(t, err)
	require.Len(t, detail.Attachments, 1)
	assert.Equal(t, att.ID, detail.Attachments[0].ID)
}
