package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/fretline/buildtrack-api/internal/domain/entity"
)

// StageCount is the number of unarchived guitars sitting on one stage
type StageCount struct {
	StageID uuid.UUID `json:"stage_id"`
	Label   string    `json:"label"`
	Order   int       `json:"order"`
	Count   int64     `json:"count"`
}

// AnalyticsRepository defines aggregate queries for the dashboard
type AnalyticsRepository interface {
	StageDistribution(ctx context.Context, runID uuid.UUID) ([]StageCount, error)
	CountActiveRuns(ctx context.Context) (int64, error)
	CountGuitarsInProgress(ctx context.Context) (int64, error)
	CountClients(ctx context.Context) (int64, error)
	RecentTransitions(ctx context.Context, limit int) ([]entity.StageTransition, error)
}
