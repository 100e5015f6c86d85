package service

import (
	"context"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/apperror"
	"github.com/fretline/buildtrack-api/pkg/pagination"
	"github.com/google/uuid"
)

// FactoryService handles factory-related operations
type FactoryService struct {
	factoryRepo repository.FactoryRepository
}

// NewFactoryService creates a new factory service
func NewFactoryService(factoryRepo repository.FactoryRepository) *FactoryService {
	return &FactoryService{factoryRepo: factoryRepo}
}

// CreateFactoryInput represents the create factory input
type CreateFactoryInput struct {
	Name         string
	Location     *string
	ContactName  *string
	ContactEmail *string
	ContactPhone *string
	Notes        *string
}

// CreateFactory creates a new factory
func (s *FactoryService) CreateFactory(ctx context.Context, input *CreateFactoryInput) (*entity.Factory, error) {
	factory := &entity.Factory{
		Name:         input.Name,
		Location:     input.Location,
		ContactName:  input.ContactName,
		ContactEmail: input.ContactEmail,
		ContactPhone: input.ContactPhone,
		Notes:        input.Notes,
	}

	if err := s.factoryRepo.Create(ctx, factory); err != nil {
		return nil, err
	}

	return factory, nil
}

// GetFactory retrieves a factory by ID
func (s *FactoryService) GetFactory(ctx context.Context, id uuid.UUID) (*entity.Factory, error) {
	factory, err := s.factoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, apperror.NewNotFoundError("Factory")
	}
	return factory, nil
}

// ListFactories lists factories with optional search
func (s *FactoryService) ListFactories(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Factory], error) {
	factories, total, err := s.factoryRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(factories, pag), nil
}

// UpdateFactoryInput represents the update factory input
type UpdateFactoryInput struct {
	ID           uuid.UUID
	Name         *string
	Location     *string
	ContactName  *string
	ContactEmail *string
	ContactPhone *string
	Notes        *string
}

// UpdateFactory updates a factory
func (s *FactoryService) UpdateFactory(ctx context.Context, input *UpdateFactoryInput) (*entity.Factory, error) {
	factory, err := s.factoryRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, apperror.NewNotFoundError("Factory")
	}

	if input.Name != nil {
		factory.Name = *input.Name
	}
	if input.Location != nil {
		factory.Location = input.Location
	}
	if input.ContactName != nil {
		factory.ContactName = input.ContactName
	}
	if input.ContactEmail != nil {
		factory.ContactEmail = input.ContactEmail
	}
	if input.ContactPhone != nil {
		factory.ContactPhone = input.ContactPhone
	}
	if input.Notes != nil {
		factory.Notes = input.Notes
	}

	if err := s.factoryRepo.Update(ctx, factory); err != nil {
		return nil, err
	}

	return factory, nil
}

// DeleteFactory deletes a factory
func (s *FactoryService) DeleteFactory(ctx context.Context, id uuid.UUID) error {
	factory, err := s.factoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if factory == nil {
		return apperror.NewNotFoundError("Factory")
	}

	return s.factoryRepo.Delete(ctx, id)
}
