package repository

import (
	"context"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
)

// SettingsRepository defines the interface for the app settings singleton
type SettingsRepository interface {
	// Get returns the singleton settings row, creating the default row on
	// first access.
	Get(ctx context.Context) (*entity.AppSettings, error)
	Update(ctx context.Context, settings *entity.AppSettings) error
}
