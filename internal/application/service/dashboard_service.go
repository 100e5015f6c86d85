package service

import (
	"context"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/google/uuid"
)

const recentTransitionLimit = 10

// DashboardService aggregates workshop-wide numbers for the staff dashboard
type DashboardService struct {
	analyticsRepo repository.AnalyticsRepository
	invoiceRepo   repository.InvoiceRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(analyticsRepo repository.AnalyticsRepository, invoiceRepo repository.InvoiceRepository) *DashboardService {
	return &DashboardService{
		analyticsRepo: analyticsRepo,
		invoiceRepo:   invoiceRepo,
	}
}

// Overview is the dashboard headline payload
type Overview struct {
	ActiveRuns        int64                    `json:"active_runs"`
	GuitarsInProgress int64                    `json:"guitars_in_progress"`
	Clients           int64                    `json:"clients"`
	OpenInvoices      int64                    `json:"open_invoices"`
	RecentTransitions []entity.StageTransition `json:"recent_transitions"`
}

// GetOverview returns the headline counts and the latest stage movements
func (s *DashboardService) GetOverview(ctx context.Context) (*Overview, error) {
	activeRuns, err := s.analyticsRepo.CountActiveRuns(ctx)
	if err != nil {
		return nil, err
	}

	inProgress, err := s.analyticsRepo.CountGuitarsInProgress(ctx)
	if err != nil {
		return nil, err
	}

	clients, err := s.analyticsRepo.CountClients(ctx)
	if err != nil {
		return nil, err
	}

	openInvoices, err := s.invoiceRepo.CountOpen(ctx)
	if err != nil {
		return nil, err
	}

	transitions, err := s.analyticsRepo.RecentTransitions(ctx, recentTransitionLimit)
	if err != nil {
		return nil, err
	}
	if transitions == nil {
		transitions = []entity.StageTransition{}
	}

	return &Overview{
		ActiveRuns:        activeRuns,
		GuitarsInProgress: inProgress,
		Clients:           clients,
		OpenInvoices:      openInvoices,
		RecentTransitions: transitions,
	}, nil
}

// GetStageDistribution returns how many unarchived guitars sit on each stage
// of a run, ordered by stage order
func (s *DashboardService) GetStageDistribution(ctx context.Context, runID uuid.UUID) ([]repository.StageCount, error) {
	return s.analyticsRepo.StageDistribution(ctx, runID)
}
