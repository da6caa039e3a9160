package timesheet

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"go-timeoff/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var (
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid work_date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrHoursOutOfRange = apperror.New(
		apperror.CodeInvalidInput,
		"total_hours must be between 0 and 24",
		http.StatusBadRequest,
	)
	ErrDuplicateEntry = apperror.New(
		apperror.CodeConflict,
		"a timesheet entry already exists for this employee and date",
		http.StatusConflict,
	)
)

//go:generate mockgen -source=timesheet_service.go -destination=mock/timesheet_service_mock.go -package=mock
type Service interface {
	Record(ctx context.Context, companyID, actorID string, req RecordTimesheetRequest) (TimesheetResponse, error)
	ListByEmployee(ctx context.Context, companyID, employeeID string) ([]TimesheetResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("timesheet.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("timesheet.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Record(ctx context.Context, companyID, actorID string, req RecordTimesheetRequest) (TimesheetResponse, error) {
	s.logger.Debug("record timesheet requested",
		zap.String("company_id", companyID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("work_date", req.WorkDate),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return TimesheetResponse{}, apperror.InvalidField("company id")
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return TimesheetResponse{}, apperror.InvalidField("employee id")
	}
	workDate, err := time.Parse("2006-01-02", req.WorkDate)
	if err != nil {
		return TimesheetResponse{}, ErrInvalidDateFormat
	}
	if req.TotalHours <= 0 || req.TotalHours > 24 {
		return TimesheetResponse{}, ErrHoursOutOfRange
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("record timesheet begin tx failed", zap.Error(err))
		return TimesheetResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	t := &Timesheet{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		EmployeeID: employeeUUID,
		WorkDate:   workDate,
		TotalHours: req.TotalHours,
		Source:     "MANUAL",
		Notes:      req.Notes,
	}
	if err := qtx.Create(ctx, t); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return TimesheetResponse{}, ErrDuplicateEntry
		}
		s.logger.Error("record timesheet persist failed", zap.Error(err))
		return TimesheetResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("record timesheet commit failed", zap.Error(err))
		return TimesheetResponse{}, err
	}
	s.logger.Info("record timesheet success",
		zap.String("timesheet_id", t.ID.String()),
		zap.String("employee_id", req.EmployeeID),
	)

	return mapToResponse(*t), nil
}

func (s *service) ListByEmployee(ctx context.Context, companyID, employeeID string) ([]TimesheetResponse, error) {
	rows, err := s.repo.FindAllByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	resp := make([]TimesheetResponse, len(rows))
	for i, t := range rows {
		resp[i] = mapToResponse(t)
	}
	return resp, nil
}

func mapToResponse(t Timesheet) TimesheetResponse {
	return TimesheetResponse{
		ID:         t.ID.String(),
		CompanyID:  t.CompanyID.String(),
		EmployeeID: t.EmployeeID.String(),
		WorkDate:   t.WorkDate.Format("2006-01-02"),
		TotalHours: t.TotalHours,
		Source:     t.Source,
		Notes:      t.Notes,
	}
}
