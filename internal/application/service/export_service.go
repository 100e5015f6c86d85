package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/apperror"
	"github.com/fretline/buildtrack-api/pkg/pagination"
	"github.com/fretline/buildtrack-api/pkg/utils"
	"github.com/xuri/excelize/v2"
)

const exportPageSize = 100

// ExportService builds spreadsheet exports of run data
type ExportService struct {
	runRepo    repository.RunRepository
	guitarRepo repository.GuitarRepository
}

// NewExportService creates a new export service
func NewExportService(runRepo repository.RunRepository, guitarRepo repository.GuitarRepository) *ExportService {
	return &ExportService{
		runRepo:    runRepo,
		guitarRepo: guitarRepo,
	}
}

// ExportRunGuitars renders a run's build sheet as an xlsx workbook and
// returns it with a suggested download filename
func (s *ExportService) ExportRunGuitars(ctx context.Context, runID string) (*excelize.File, string, error) {
	id, err := utils.ParseUUID(runID)
	if err != nil {
		return nil, "", apperror.NewInvalidArgumentError("Invalid run ID")
	}

	run, err := s.runRepo.GetWithStages(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if run == nil {
		return nil, "", apperror.NewNotFoundError("Run")
	}

	guitars, err := s.collectGuitars(ctx, run)
	if err != nil {
		return nil, "", err
	}

	stageLabels := make(map[string]string, len(run.Stages))
	for _, stage := range run.Stages {
		stageLabels[stage.ID.String()] = stage.Label
	}

	f := excelize.NewFile()
	sheet := "Build Sheet"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Order #", "Model", "Finish", "Customer", "Email", "Stage", "Specs", "Photos", "Created"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, "", err
		}
		f.SetCellValue(sheet, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		lastCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheet, "A1", lastCell, headerStyle)
	}

	for i, guitar := range guitars {
		row := i + 2
		values := []interface{}{
			guitar.OrderNumber,
			guitar.Model,
			guitar.Finish,
			guitar.CustomerName,
			guitar.CustomerEmail,
			stageLabels[guitar.StageID.String()],
			formatSpecs(guitar.Specs),
			guitar.PhotoCount,
			guitar.CreatedAt.Format("2006-01-02"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, "", err
			}
			f.SetCellValue(sheet, cell, value)
		}
	}

	filename := fmt.Sprintf("%s-build-sheet.xlsx", utils.Slugify(run.Name))
	return f, filename, nil
}

func (s *ExportService) collectGuitars(ctx context.Context, run *entity.Run) ([]entity.Guitar, error) {
	var all []entity.Guitar
	for page := 1; ; page++ {
		params := &repository.GuitarFilterParams{
			Pagination: &pagination.PaginationParams{Page: page, PerPage: exportPageSize},
			RunID:      &run.ID,
			SortBy:     "created_at",
			SortOrder:  "asc",
		}
		guitars, total, err := s.guitarRepo.List(ctx, params)
		if err != nil {
			return nil, err
		}
		all = append(all, guitars...)
		if int64(len(all)) >= total || len(guitars) == 0 {
			break
		}
	}
	return all, nil
}

func formatSpecs(specs entity.SpecMap) string {
	if len(specs) == 0 {
		return ""
	}
	categories := make([]string, 0, len(specs))
	for category := range specs {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	parts := make([]string, 0, len(categories))
	for _, category := range categories {
		parts = append(parts, category+": "+specs[category])
	}
	return strings.Join(parts, "; ")
}
