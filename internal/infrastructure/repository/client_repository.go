package repository

import (
	"context"
	"errors"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	domainRepo "github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) domainRepo.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *entity.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	var client entity.Client
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Runs").
		First(&client, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &client, err
}

func (r *clientRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Client, error) {
	var client entity.Client
	err := r.db.WithContext(ctx).First(&client, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &client, err
}

func (r *clientRepository) GetByEmail(ctx context.Context, email string) (*entity.Client, error) {
	var client entity.Client
	err := r.db.WithContext(ctx).First(&client, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &client, err
}

func (r *clientRepository) Update(ctx context.Context, client *entity.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Client{}, "id = ?", id).Error
}

func (r *clientRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Client, int64, error) {
	var clients []entity.Client
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Client{})

	if search != "" {
		query = query.Where("name ILIKE ? OR email ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("User").
		Order("created_at DESC").
		Find(&clients).Error

	return clients, total, err
}

func (r *clientRepository) AssignRun(ctx context.Context, clientID, runID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		"INSERT INTO client_runs (client_id, run_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		clientID, runID,
	).Error
}

func (r *clientRepository) RemoveRun(ctx context.Context, clientID, runID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		"DELETE FROM client_runs WHERE client_id = ? AND run_id = ?",
		clientID, runID,
	).Error
}

func (r *clientRepository) ListWithBuildInRun(ctx context.Context, runID uuid.UUID) ([]entity.Client, error) {
	var clients []entity.Client
	err := r.db.WithContext(ctx).
		Distinct("clients.*").
		Joins("JOIN guitars ON guitars.client_id = clients.id").
		Where("guitars.run_id = ? AND guitars.archived = ? AND guitars.deleted_at IS NULL", runID, false).
		Find(&clients).Error
	return clients, err
}
