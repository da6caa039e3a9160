package compoff

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-timeoff/internal/balance"
	"go-timeoff/internal/calendar"
	compofferrors "go-timeoff/internal/compoff/errors"
	"go-timeoff/internal/domain"
	"go-timeoff/internal/employee"
	"go-timeoff/internal/events"
	"go-timeoff/internal/leavetype"
	"go-timeoff/internal/messaging/kafka"
	"go-timeoff/internal/shared/contextutil"
	"go-timeoff/internal/timesheet"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=compoff_service.go -destination=mock/compoff_service_mock.go -package=mock
type Service interface {
	Grant(ctx context.Context, companyID, actorID, role string, req GrantCompOffRequest) (*CompOffCreditResponse, error)
	Revoke(ctx context.Context, companyID, actorID, role, creditID string, req RevokeCompOffRequest) (*CompOffCreditResponse, error)
	ListByEmployee(ctx context.Context, companyID, employeeID string) ([]CompOffCreditResponse, error)
	// ExpireForEmployee satisfies the sweeper contract used by balance reads.
	ExpireForEmployee(ctx context.Context, companyID, employeeID string, asOf time.Time) error
	// SweepAll expires stale credits for every holder, one employee per
	// transaction, so a single bad row cannot wedge the whole sweep.
	SweepAll(ctx context.Context, asOf time.Time) error
}

type service struct {
	db         *sql.DB
	repo       Repository
	balances   balance.Repository
	types      leavetype.Repository
	employees  employee.Repository
	timesheets timesheet.Repository
	oracle     calendar.Oracle
	outbox     kafka.OutboxRepository
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	balances balance.Repository,
	types leavetype.Repository,
	employees employee.Repository,
	timesheets timesheet.Repository,
	oracle calendar.Oracle,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("compoff.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("compoff.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		balances:   balances,
		types:      types,
		employees:  employees,
		timesheets: timesheets,
		oracle:     oracle,
		outbox:     outbox,
		logger:     l,
	}
}

func (s *service) Grant(ctx context.Context, companyID, actorID, role string, req GrantCompOffRequest) (*CompOffCreditResponse, error) {
	workDate, err := time.Parse(dateLayout, req.WorkDate)
	if err != nil {
		return nil, compofferrors.ErrInvalidWorkDate
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if workDate.After(today) {
		return nil, compofferrors.ErrFutureWorkDate
	}

	target, err := s.employees.FindByIDAndCompany(ctx, companyID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, compofferrors.ErrEmployeeNotFound
		}
		return nil, err
	}
	if err := authorizeActor(target, actorID, role); err != nil {
		return nil, err
	}

	working, err := s.oracle.IsWorkingDay(ctx, companyID, workDate)
	if err != nil {
		return nil, err
	}
	if working {
		return nil, compofferrors.ErrWorkingDay
	}

	creditHours := hoursFor(req.DurationType)
	sheet, err := s.timesheets.FindByEmployeeAndDate(ctx, companyID, req.EmployeeID, workDate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, compofferrors.ErrNoTimesheetEntry
		}
		return nil, err
	}
	if sheet.TotalHours+balance.Tolerance < creditHours {
		return nil, compofferrors.ErrInsufficientWorkedHours
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	txRepo := s.repo.WithTx(tx)
	txBalances := s.balances.WithTx(tx)

	typeID, err := s.types.WithTx(tx).EnsureCompOff(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if _, err := txBalances.EnsureRow(ctx, companyID, req.EmployeeID, typeID); err != nil {
		return nil, err
	}

	// Stale credits must lapse before the new hours land, otherwise the
	// snapshot below would credit on top of hours already past their window.
	if err := s.expireLocked(ctx, tx, companyID, req.EmployeeID, time.Now().UTC()); err != nil {
		return nil, err
	}

	snapshot, err := txBalances.FindSnapshotForUpdate(ctx, req.EmployeeID, typeID)
	if err != nil {
		return nil, err
	}

	// The daily cap is read only after the balance row lock is held, so two
	// grants for the same employee serialize and the second sees the first's
	// insert instead of a pre-insert sum.
	granted, err := txRepo.SumGrantedForDate(ctx, companyID, req.EmployeeID, workDate)
	if err != nil {
		return nil, err
	}
	if granted+creditHours > MaxHoursPerDate+balance.Tolerance {
		return nil, compofferrors.ErrDailyCapExceeded
	}

	if err := balance.Apply(snapshot, balance.Delta{Balance: +creditHours}); err != nil {
		return nil, err
	}
	if err := txBalances.SaveHours(ctx, snapshot); err != nil {
		return nil, err
	}

	credit := &CompOffCredit{
		ID:             uuid.New(),
		CompanyID:      uuid.MustParse(companyID),
		EmployeeID:     target.ID,
		LeaveTypeID:    uuid.MustParse(typeID),
		TimesheetID:    &sheet.ID,
		WorkDate:       workDate,
		DurationType:   req.DurationType,
		CreditedHours:  creditHours,
		TimesheetHours: sheet.TotalHours,
		Status:         StatusGranted,
		ExpiresAt:      workDate.AddDate(0, 0, ExpiryDays),
		CreatedBy:      uuid.MustParse(actorID),
		Notes:          req.Notes,
	}
	if err := txRepo.Create(ctx, credit); err != nil {
		return nil, err
	}

	event := events.CompOffGrantedEvent{
		EventType:     "compoff.granted",
		CreditID:      credit.ID.String(),
		CompanyID:     companyID,
		EmployeeID:    req.EmployeeID,
		WorkDate:      req.WorkDate,
		CreditedHours: creditHours,
		ExpiresAt:     credit.ExpiresAt.Format(dateLayout),
		GrantedBy:     actorID,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.appendEvent(ctx, tx, companyID, credit.ID.String(), event.EventType, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("comp-off credit granted",
		zap.String("credit_id", credit.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.Float64("hours", creditHours),
	)

	resp := creditToResponse(credit)
	return &resp, nil
}

func (s *service) Revoke(ctx context.Context, companyID, actorID, role, creditID string, req RevokeCompOffRequest) (*CompOffCreditResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	txRepo := s.repo.WithTx(tx)
	credit, err := txRepo.FindByIDForUpdate(ctx, companyID, creditID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, compofferrors.ErrCreditNotFound
		}
		return nil, err
	}
	if credit.Status != StatusGranted {
		return nil, compofferrors.ErrCreditNotGranted
	}

	target, err := s.employees.FindByIDAndCompany(ctx, companyID, credit.EmployeeID.String())
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := authorizeActor(target, actorID, role); err != nil {
		return nil, err
	}

	clawedBack, err := s.clawBack(ctx, tx, credit)
	if err != nil {
		return nil, err
	}
	if err := txRepo.UpdateStatus(ctx, creditID, StatusRevoked, req.Reason); err != nil {
		return nil, err
	}

	event := events.CompOffRevokedEvent{
		EventType:  "compoff.revoked",
		CreditID:   creditID,
		CompanyID:  companyID,
		EmployeeID: credit.EmployeeID.String(),
		ClawedBack: clawedBack,
		RevokedBy:  actorID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.appendEvent(ctx, tx, companyID, creditID, event.EventType, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("comp-off credit revoked",
		zap.String("credit_id", creditID),
		zap.Float64("clawed_back_hours", clawedBack),
	)

	credit.Status = StatusRevoked
	resp := creditToResponse(credit)
	return &resp, nil
}

func (s *service) ListByEmployee(ctx context.Context, companyID, employeeID string) ([]CompOffCreditResponse, error) {
	rows, err := s.repo.FindAllByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	resp := make([]CompOffCreditResponse, len(rows))
	for i := range rows {
		resp[i] = creditToResponse(&rows[i])
	}
	return resp, nil
}

func (s *service) ExpireForEmployee(ctx context.Context, companyID, employeeID string, asOf time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.expireLocked(ctx, tx, companyID, employeeID, asOf); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) SweepAll(ctx context.Context, asOf time.Time) error {
	owners, err := s.repo.FindStaleCreditOwners(ctx, asOf)
	if err != nil {
		return err
	}
	var failed int
	for _, o := range owners {
		if err := s.ExpireForEmployee(ctx, o.CompanyID, o.EmployeeID, asOf); err != nil {
			failed++
			s.logger.Error("expiry sweep failed for employee",
				zap.String("company_id", o.CompanyID),
				zap.String("employee_id", o.EmployeeID),
				zap.Error(err),
			)
		}
	}
	if failed > 0 {
		return fmt.Errorf("expiry sweep: %d of %d employees failed", failed, len(owners))
	}
	return nil
}

// expireLocked marks every lapsed granted credit expired and deducts what is
// still deductible. Re-running after all lapsed credits are processed finds
// nothing and changes nothing.
func (s *service) expireLocked(ctx context.Context, tx *sql.Tx, companyID, employeeID string, asOf time.Time) error {
	txRepo := s.repo.WithTx(tx)
	stale, err := txRepo.FindExpiredGrantedForUpdate(ctx, companyID, employeeID, asOf)
	if err != nil {
		return err
	}
	for i := range stale {
		if _, err := s.clawBack(ctx, tx, &stale[i]); err != nil {
			return err
		}
		if err := txRepo.UpdateStatus(ctx, stale[i].ID.String(), StatusExpired, nil); err != nil {
			return err
		}
	}
	if len(stale) > 0 {
		s.logger.Info("comp-off credits expired",
			zap.String("employee_id", employeeID),
			zap.Int("count", len(stale)),
		)
	}
	return nil
}

// clawBack deducts as much of the credit as the balance still holds. A credit
// partly spent on booked leave only gives back what is left; the balance
// never goes negative.
func (s *service) clawBack(ctx context.Context, tx *sql.Tx, credit *CompOffCredit) (float64, error) {
	txBalances := s.balances.WithTx(tx)
	if _, err := txBalances.EnsureRow(ctx, credit.CompanyID.String(), credit.EmployeeID.String(), credit.LeaveTypeID.String()); err != nil {
		return 0, err
	}
	snapshot, err := txBalances.FindSnapshotForUpdate(ctx, credit.EmployeeID.String(), credit.LeaveTypeID.String())
	if err != nil {
		return 0, err
	}
	deduct := balance.Round2(math.Min(snapshot.BalanceHours, credit.CreditedHours))
	if deduct <= 0 {
		return 0, nil
	}
	if err := balance.Apply(snapshot, balance.Delta{Balance: -deduct}); err != nil {
		return 0, err
	}
	if err := txBalances.SaveHours(ctx, snapshot); err != nil {
		return 0, err
	}
	return deduct, nil
}

func (s *service) appendEvent(ctx context.Context, tx *sql.Tx, companyID, creditID, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		CompanyID:     companyID,
		AggregateType: "comp_off_credit",
		AggregateID:   creditID,
		EventType:     eventType,
		Topic:         events.CompOffLifecycleTopic,
		Payload:       body,
		Status:        kafka.OutboxStatusPending,
	})
}

func authorizeActor(target *employee.Employee, actorID, role string) error {
	if domain.IsAdminTier(role) {
		return nil
	}
	if target == nil || target.ManagerID == nil || target.ManagerID.String() != actorID {
		return compofferrors.ErrNotAuthorizedToGrant
	}
	return nil
}

func creditToResponse(c *CompOffCredit) CompOffCreditResponse {
	return CompOffCreditResponse{
		ID:             c.ID.String(),
		EmployeeID:     c.EmployeeID.String(),
		LeaveTypeID:    c.LeaveTypeID.String(),
		WorkDate:       c.WorkDate.Format(dateLayout),
		DurationType:   c.DurationType,
		CreditedHours:  c.CreditedHours,
		TimesheetHours: c.TimesheetHours,
		Status:         c.Status,
		ExpiresAt:      c.ExpiresAt.Format(dateLayout),
		CreatedBy:      c.CreatedBy.String(),
		Notes:          c.Notes,
	}
}
