package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/josemp10/ventas-api/internal/domain/entity"
	"github.com/josemp10/ventas-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSaleRepository reports a fixed number of sales per client
type countingSaleRepository struct {
	fakeSaleRepository
	countByClient map[uuid.UUID]int64
}

func (f *countingSaleRepository) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	return f.countByClient[clientID], nil
}

func newTestClientService() (*ClientService, *fakeClientRepository, *countingSaleRepository) {
	clientRepo := &fakeClientRepository{clients: make(map[uuid.UUID]*entity.Client)}
	saleRepo := &countingSaleRepository{countByClient: make(map[uuid.UUID]int64)}
	return NewClientService(clientRepo, saleRepo), clientRepo, saleRepo
}

func strPtr(s string) *string { return &s }

func TestCreateClient(t *testing.T) {
	svc, _, _ := newTestClientService()

	client, err := svc.CreateClient(context.Background(), &CreateClientInput{
		Name:             "Maria Lopez",
		Email:            strPtr("maria@example.com"),
		IdentityDocument: strPtr("45678912"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria Lopez", client.Name)
	assert.True(t, client.Active)
}

func TestCreateClientDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestClientService()

	_, err := svc.CreateClient(context.Background(), &CreateClientInput{
		Name:  "Maria Lopez",
		Email: strPtr("maria@example.com"),
	})
	require.NoError(t, err)

	_, err = svc.CreateClient(context.Background(), &CreateClientInput{
		Name:  "Other Maria",
		Email: strPtr("maria@example.com"),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)
}

func TestCreateClientDuplicateIdentityDocument(t *testing.T) {
	svc, _, _ := newTestClientService()

	_, err := svc.CreateClient(context.Background(), &CreateClientInput{
		Name:             "Maria Lopez",
		IdentityDocument: strPtr("45678912"),
	})
	require.NoError(t, err)

	_, err = svc.CreateClient(context.Background(), &CreateClientInput{
		Name:             "Juan Perez",
		IdentityDocument: strPtr("45678912"),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)
}

func TestUpdateClientConflictWithOtherClient(t *testing.T) {
	svc, _, _ := newTestClientService()

	first, err := svc.CreateClient(context.Background(), &CreateClientInput{
		Name:  "Maria Lopez",
		Email: strPtr("maria@example.com"),
	})
	require.NoError(t, err)

	second, err := svc.CreateClient(context.Background(), &CreateClientInput{
		Name:  "Juan Perez",
		Email: strPtr("juan@example.com"),
	})
	require.NoError(t, err)

	// Taking the first client's email is a conflict
	_, err = svc.UpdateClient(context.Background(), second.ID, &UpdateClientInput{
		Email: strPtr("maria@example.com"),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)

	// Re-submitting its own email is not
	updated, err := svc.UpdateClient(context.Background(), first.ID, &UpdateClientInput{
		Email: strPtr("maria@example.com"),
		Name:  strPtr("Maria L. Lopez"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria L. Lopez", updated.Name)
}

func TestDeleteClientBlockedBySales(t *testing.T) {
	svc, _, saleRepo := newTestClientService()

	client, err := svc.CreateClient(context.Background(), &CreateClientInput{Name: "Maria Lopez"})
	require.NoError(t, err)

	saleRepo.countByClient[client.ID] = 3

	err = svc.DeleteClient(context.Background(), client.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)
}

func TestDeleteClientWithoutSales(t *testing.T) {
	svc, clientRepo, _ := newTestClientService()

	client, err := svc.CreateClient(context.Background(), &CreateClientInput{Name: "Maria Lopez"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteClient(context.Background(), client.ID))
	assert.NotContains(t, clientRepo.clients, client.ID)
}

func TestGetClientNotFound(t *testing.T) {
	svc, _, _ := newTestClientService()

	_, err := svc.GetClient(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
