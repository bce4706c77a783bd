package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/josemp10/ventas-api/internal/domain/entity"
	"github.com/josemp10/ventas-api/internal/domain/repository"
	"github.com/josemp10/ventas-api/pkg/apperror"
	"github.com/josemp10/ventas-api/pkg/pagination"
)

// ClientService handles client-related operations
type ClientService struct {
	clientRepo repository.ClientRepository
	saleRepo   repository.SaleRepository
}

// NewClientService creates a new client service
func NewClientService(clientRepo repository.ClientRepository, saleRepo repository.SaleRepository) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		saleRepo:   saleRepo,
	}
}

// CreateClientInput represents the create client input
type CreateClientInput struct {
	Name             string
	Email            *string
	Phone            *string
	IdentityDocument *string
	Address          *string
}

// UpdateClientInput represents the update client input; nil fields are left unchanged
type UpdateClientInput struct {
	Name             *string
	Email            *string
	Phone            *string
	IdentityDocument *string
	Address          *string
	Active           *bool
}

// CreateClient creates a new client. Email and identity document must be
// unique when provided.
func (s *ClientService) CreateClient(ctx context.Context, input *CreateClientInput) (*entity.Client, error) {
	if input.IdentityDocument != nil && *input.IdentityDocument != "" {
		existing, err := s.clientRepo.GetByIdentityDocument(ctx, *input.IdentityDocument)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperror.NewConflictError(fmt.Sprintf("A client with identity document %q already exists", *input.IdentityDocument))
		}
	}
	if input.Email != nil && *input.Email != "" {
		existing, err := s.clientRepo.GetByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperror.NewConflictError(fmt.Sprintf("A client with email %q already exists", *input.Email))
		}
	}

	client := &entity.Client{
		Name:             input.Name,
		Email:            input.Email,
		Phone:            input.Phone,
		IdentityDocument: input.IdentityDocument,
		Address:          input.Address,
		Active:           true,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// GetClient retrieves a client by ID
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

// ListClients lists clients with filtering
func (s *ClientService) ListClients(ctx context.Context, params *repository.ClientFilterParams) (*pagination.PaginatedResult[entity.Client], error) {
	clients, total, err := s.clientRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(clients, pag), nil
}

// UpdateClient updates a client, enforcing email and identity document
// uniqueness against other clients.
func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, input *UpdateClientInput) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	if input.Email != nil && *input.Email != "" {
		existing, err := s.clientRepo.GetByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, apperror.NewConflictError(fmt.Sprintf("A client with email %q already exists", *input.Email))
		}
	}
	if input.IdentityDocument != nil && *input.IdentityDocument != "" {
		existing, err := s.clientRepo.GetByIdentityDocument(ctx, *input.IdentityDocument)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, apperror.NewConflictError(fmt.Sprintf("A client with identity document %q already exists", *input.IdentityDocument))
		}
	}

	if input.Name != nil {
		client.Name = *input.Name
	}
	if input.Email != nil {
		client.Email = input.Email
	}
	if input.Phone != nil {
		client.Phone = input.Phone
	}
	if input.IdentityDocument != nil {
		client.IdentityDocument = input.IdentityDocument
	}
	if input.Address != nil {
		client.Address = input.Address
	}
	if input.Active != nil {
		client.Active = *input.Active
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// DeleteClient deletes a client. Clients with recorded sales cannot be
// deleted; their history backs reporting and forecasting.
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if client == nil {
		return apperror.NewNotFoundError("Client")
	}

	saleCount, err := s.saleRepo.CountByClient(ctx, id)
	if err != nil {
		return err
	}
	if saleCount > 0 {
		return apperror.NewConflictError("Cannot delete a client with associated sales")
	}

	return s.clientRepo.Delete(ctx, id)
}
