package compoff_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-timeoff/internal/balance"
	"go-timeoff/internal/calendar"
	"go-timeoff/internal/compoff"
	compofferrors "go-timeoff/internal/compoff/errors"
	"go-timeoff/internal/employee"
	"go-timeoff/internal/leavetype"
	"go-timeoff/internal/messaging/kafka"
	"go-timeoff/internal/timesheet"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeCreditRepository struct {
	credits       map[string]*compoff.CompOffCredit
	created       []*compoff.CompOffCredit
	grantedForDay float64
	onSum         func()
}

func (f *fakeCreditRepository) WithTx(tx *sql.Tx) compoff.Repository { return f }

func (f *fakeCreditRepository) Create(ctx context.Context, c *compoff.CompOffCredit) error {
	f.created = append(f.created, c)
	f.credits[c.ID.String()] = c
	return nil
}

func (f *fakeCreditRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*compoff.CompOffCredit, error) {
	if c, ok := f.credits[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCreditRepository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*compoff.CompOffCredit, error) {
	if c, ok := f.credits[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCreditRepository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]compoff.CompOffCredit, error) {
	var out []compoff.CompOffCredit
	for _, c := range f.credits {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCreditRepository) SumGrantedForDate(ctx context.Context, companyID, employeeID string, workDate time.Time) (float64, error) {
	if f.onSum != nil {
		f.onSum()
	}
	total := f.grantedForDay
	for _, c := range f.credits {
		if c.Status == compoff.StatusGranted && c.EmployeeID.String() == employeeID && c.WorkDate.Equal(workDate) {
			total += c.CreditedHours
		}
	}
	return total, nil
}

func (f *fakeCreditRepository) FindExpiredGrantedForUpdate(ctx context.Context, companyID, employeeID string, asOf time.Time) ([]compoff.CompOffCredit, error) {
	var out []compoff.CompOffCredit
	for _, c := range f.credits {
		if c.Status == compoff.StatusGranted && c.ExpiresAt.Before(asOf) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCreditRepository) FindStaleCreditOwners(ctx context.Context, asOf time.Time) ([]compoff.StaleCreditOwner, error) {
	seen := map[string]bool{}
	var out []compoff.StaleCreditOwner
	for _, c := range f.credits {
		if c.Status == compoff.StatusGranted && c.ExpiresAt.Before(asOf) && !seen[c.EmployeeID.String()] {
			seen[c.EmployeeID.String()] = true
			out = append(out, compoff.StaleCreditOwner{
				CompanyID:  c.CompanyID.String(),
				EmployeeID: c.EmployeeID.String(),
			})
		}
	}
	return out, nil
}

func (f *fakeCreditRepository) UpdateStatus(ctx context.Context, id, status string, notes *string) error {
	if c, ok := f.credits[id]; ok {
		c.Status = status
	}
	return nil
}

type fakeBalanceRepository struct {
	snapshot *balance.LeaveBalance
	saved    []balance.LeaveBalance
	onLock   func()
}

func (f *fakeBalanceRepository) WithTx(tx *sql.Tx) balance.Repository { return f }

func (f *fakeBalanceRepository) FindSnapshot(ctx context.Context, employeeID, leaveTypeID string) (*balance.LeaveBalance, error) {
	return f.snapshot, nil
}

func (f *fakeBalanceRepository) FindSnapshotForUpdate(ctx context.Context, employeeID, leaveTypeID string) (*balance.LeaveBalance, error) {
	if f.onLock != nil {
		f.onLock()
	}
	return f.snapshot, nil
}

func (f *fakeBalanceRepository) EnsureRow(ctx context.Context, companyID, employeeID, leaveTypeID string) (*balance.LeaveBalance, error) {
	return f.snapshot, nil
}

func (f *fakeBalanceRepository) SaveHours(ctx context.Context, b *balance.LeaveBalance) error {
	f.saved = append(f.saved, *b)
	return nil
}

func (f *fakeBalanceRepository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]balance.LeaveBalance, error) {
	return nil, nil
}

type fakeTypeRepository struct {
	compOffTypeID string
}

func (f *fakeTypeRepository) WithTx(tx *sql.Tx) leavetype.Repository { return f }

func (f *fakeTypeRepository) Create(ctx context.Context, t *leavetype.LeaveType) error { return nil }

func (f *fakeTypeRepository) CreatePolicy(ctx context.Context, p *leavetype.LeavePolicy) error {
	return nil
}

func (f *fakeTypeRepository) FindAllByCompany(ctx context.Context, companyID string) ([]leavetype.LeaveType, error) {
	return nil, nil
}

func (f *fakeTypeRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*leavetype.LeaveType, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTypeRepository) FindPolicy(ctx context.Context, companyID, leaveTypeID string) (*leavetype.LeavePolicy, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTypeRepository) EnsureCompOff(ctx context.Context, companyID string) (string, error) {
	return f.compOffTypeID, nil
}

type fakeEmployeeRepository struct {
	employees map[string]*employee.Employee
}

func (f *fakeEmployeeRepository) WithTx(tx *sql.Tx) employee.Repository { return f }

func (f *fakeEmployeeRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*employee.Employee, error) {
	if e, ok := f.employees[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) BelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	_, ok := f.employees[employeeID]
	return ok, nil
}

type fakeTimesheetRepository struct {
	sheet *timesheet.Timesheet
}

func (f *fakeTimesheetRepository) WithTx(tx *sql.Tx) timesheet.Repository { return f }

func (f *fakeTimesheetRepository) Create(ctx context.Context, t *timesheet.Timesheet) error {
	return nil
}

func (f *fakeTimesheetRepository) FindByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*timesheet.Timesheet, error) {
	if f.sheet == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.sheet, nil
}

func (f *fakeTimesheetRepository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]timesheet.Timesheet, error) {
	return nil, nil
}

// Sundays are always off, so past Sundays make stable non-working work dates.
type fakeOracle struct{}

func (fakeOracle) IsWorkingDay(ctx context.Context, companyID string, date time.Time) (bool, error) {
	return date.Weekday() != time.Sunday, nil
}

func (fakeOracle) DayInfo(ctx context.Context, companyID string, date time.Time) (calendar.DayInfo, error) {
	working := date.Weekday() != time.Sunday
	return calendar.DayInfo{Date: date.Format("2006-01-02"), IsWorkingDay: working, IsWeekend: !working}, nil
}

func (f fakeOracle) HolidayMap(ctx context.Context, companyID string, start, end time.Time) (map[string]calendar.DayInfo, error) {
	result := map[string]calendar.DayInfo{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		info, _ := f.DayInfo(ctx, companyID, d)
		result[d.Format("2006-01-02")] = info
	}
	return result, nil
}

type fakeOutboxRepository struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type compoffServiceDeps struct {
	db         *sql.DB
	sqlMock    sqlmock.Sqlmock
	service    compoff.Service
	repo       *fakeCreditRepository
	balances   *fakeBalanceRepository
	types      *fakeTypeRepository
	employees  *fakeEmployeeRepository
	timesheets *fakeTimesheetRepository
	outbox     *fakeOutboxRepository
}

func setupCompoffServiceTest(t *testing.T) *compoffServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	deps := &compoffServiceDeps{
		db:         db,
		sqlMock:    sqlMock,
		repo:       &fakeCreditRepository{credits: map[string]*compoff.CompOffCredit{}},
		balances:   &fakeBalanceRepository{},
		types:      &fakeTypeRepository{compOffTypeID: uuid.NewString()},
		employees:  &fakeEmployeeRepository{employees: map[string]*employee.Employee{}},
		timesheets: &fakeTimesheetRepository{},
		outbox:     &fakeOutboxRepository{},
	}
	deps.service = compoff.NewService(
		db, deps.repo, deps.balances, deps.types, deps.employees, deps.timesheets, fakeOracle{}, deps.outbox,
	)
	return deps
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestCompOffService_Grant(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	employeeID := uuid.New()
	managerID := uuid.New()

	// 2025-06-08 is a Sunday.
	workDate := "2025-06-08"

	setupGrant := func(deps *compoffServiceDeps, totalHours float64) {
		deps.employees.employees[employeeID.String()] = &employee.Employee{
			ID: employeeID, CompanyID: companyID, ManagerID: &managerID,
		}
		deps.timesheets.sheet = &timesheet.Timesheet{
			ID:         uuid.New(),
			CompanyID:  companyID,
			EmployeeID: employeeID,
			WorkDate:   time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
			TotalHours: totalHours,
		}
		deps.balances.snapshot = &balance.LeaveBalance{
			ID: uuid.New(), CompanyID: companyID, EmployeeID: employeeID,
		}
	}

	t.Run("success full day grant credits eight hours", func(t *testing.T) {
		deps := setupCompoffServiceTest(t)
		defer deps.db.Close()
		setupGrant(deps, 8)

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Grant(ctx, companyID.String(), managerID.String(), "manager", compoff.GrantCompOffRequest{
			EmployeeID:   employeeID.String(),
			WorkDate:     workDate,
			DurationType: compoff.DurationFullDay,
		})

		assert.NoError(t, err)
		assert.Equal(t, 8.0, resp.CreditedHours)
		assert.Equal(t, compoff.StatusGranted, resp.Status)
		assert.Equal(t, "2025-07-08", resp.ExpiresAt)

		assert.Len(t, deps.balances.saved, 1)
		assert.Equal(t, 8.0, deps.balances.saved[0].BalanceHours)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "compoff.granted", deps.outbox.created[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success half day grant needs only four worked hours", func(t *testing.T) {
		deps := setupCompoffServiceTest(t)
		defer deps.db.Close()
		setupGrant(deps, 5)

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Grant(ctx, companyID.String(), managerID.String(), "manager", compoff.GrantCompOffRequest{
			EmployeeID:   employeeID.String(),
			WorkDate:     workDate,
			DurationType: compoff.DurationHalfDay,
		})

		assert.NoError(t, err)
		assert.Equal(t, 4.0, resp.CreditedHours)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative future work date", func(t *testing.T) {
		deps := setupCompoffServiceTest(t)
		defer deps.db.Close()

		future := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")

		_, err := deps.service.Grant(ctx, companyID.String(), managerID.String(), "admin", compoff.GrantCompOffRequest{
			EmployeeID:   employeeID.String(),
			WorkDate:     future,
			DurationType: compoff.DurationFullDay,
		})

		assert.ErrorIs(t, err, compofferrors.ErrFutureWorkDate)
	})

	t.Run("negative working day work date", func(t *testing.T) {
		deps := setupCompoffServiceTest(t)
		defer deps.db.Close()
		setupGrant(deps, 8)

		_, err := deps.service.Grant(ctx, companyID.String(), managerID.String(), "manager", compoff.GrantCompOffRequest{
			EmployeeID:   employeeID.String(),
			WorkDate:     "2025-06-09", // Monday
			DurationType: compoff.DurationFullDay,
		})

		assert.ErrorIs(t, err, compofferrors.ErrWorkingDay)
	})

	t.Run("negative missing timesheet entry", func(t *testing.T) {
		deps := setupCompoffServiceTest(t)
		defer deps.db.Close()
		setupGrant(deps, 8)
		deps.timesheets.sheet = nil

		_, err := deps.service.Grant(ctx, companyID.String(), managerID.String(), "manager", compoff.GrantCompOffRequest{
			EmployeeID:   employeeID.String(),
			WorkDate:     workDate,
			DurationType: compoff.DurationFullDay,
		})

		assert.ErrorIs(t, err, compofferrors.ErrNoTimesheetEntry)
	})

	t.Run("negative worked hours below requested duration", func(t *testing.T) {
		deps := setupCompoffServiceTest(t)
		defer deps.db.Close()
		setupGrant(deps, 5)

		_, err := deps.service.Grant(ctx, companyID.String(), managerID.String(), "manager", compoff.GrantCompOffRequest{
			EmployeeID:   employeeID.String(),
			WorkDate:     workDate,
			DurationType: compoff.DurationFullDay,
		})

		assert.ErrorIs(t, err, compofferrors.ErrInsufficientWorkedHours)
	})

	t.Run("negative daily cap exceeded", func(t *testing.T) {
		deps := setupCompoffServiceTest(t)
		defer deps.db.Close()
		setupGrant(deps, 8)
		deps.repo.grantedForDay = 4

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Grant(ctx, companyID.String(), managerID.String(), "manager", compoff.GrantCompOffRequest{
			EmployeeID:   employeeID.String(),
			WorkDate:     workDate,
			DurationType: compoff.DurationFullDay,
		})

		assert.ErrorIs(t, err, compofferrors.ErrDailyCapExceeded)
		assert.Empty(t, deps.repo.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success second grant lands exactly at the daily cap", func(t *testing.T) {
		deps := setupCompoffServiceTest(t)
		defer deps.db.Close()
		setupGrant(deps, 5)
		deps.repo.grantedForDay = 4

		expectTx(t, deps.sqlMock, true)

		// 4 already granted plus a half day totals exactly MaxHoursPerDate.
		resp, err := deps.service.Grant(ctx, companyID.String(), managerID.String(), "manager", compoff.GrantCompOffRequest{
			EmployeeID:   employeeID.String(),
			WorkDate:     workDate,
			DurationType: compoff.DurationHalfDay,
		})

		assert.NoError(t, err)
		assert.Equal(t, 4.0, resp.CreditedHours)
		assert.Len(t, deps.repo.created, 1)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("cap is read after the balance row lock", func(t *testing.T) {
		deps := setupCompoffServiceTest(t)
		defer deps.db.Close()
		setupGrant(deps, 8)

		var calls []string
		deps.balances.onLock = func() { calls = append(calls, "lock") }
		deps.repo.onSum = func() { calls = append(calls, "sum") }

		expectTx(t, deps.sqlMock, true)

		_, err := deps.service.Grant(ctx, companyID.String(), managerID.String(), "manager", compoff.GrantCompOffRequest{
			EmployeeID:   employeeID.String(),
			WorkDate:     workDate,
			DurationType: compoff.DurationFullDay,
		})

		assert.NoError(t, err)
		assert.Equal(t, []string{"lock", "sum"}, calls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative actor is neither manager nor admin", func(t *testing.T) {
		deps := setupCompoffServiceTest(t)
		defer deps.db.Close()
		setupGrant(deps, 8)

		_, err := deps.service.Grant(ctx, companyID.String(), uuid.NewString(), "employee", compoff.GrantCompOffRequest{
			EmployeeID:   employeeID.String(),
			WorkDate:     workDate,
			DurationType: compoff.DurationFullDay,
		})

		assert.ErrorIs(t, err, compofferrors.ErrNotAuthorizedToGrant)
	})
}

func TestCompOffService_Revoke(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	employeeID := uuid.New()
	managerID := uuid.New()

	grantedCredit := func() *compoff.CompOffCredit {
		return &compoff.CompOffCredit{
			ID:            uuid.New(),
			CompanyID:     companyID,
			EmployeeID:    employeeID,
			LeaveTypeID:   uuid.New(),
			WorkDate:      time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
			DurationType:  compoff.DurationFullDay,
			CreditedHours: 8,
			Status:        compoff.StatusGranted,
			ExpiresAt:     time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC),
			CreatedBy:     managerID,
		}
	}

	t.Run("success partial clawback when credit partly spent", func(t *testing.T) {
		deps := setupCompoffServiceTest(t)
		defer deps.db.Close()

		credit := grantedCredit()
		deps.repo.credits[credit.ID.String()] = credit
		deps.employees.employees[employeeID.String()] = &employee.Employee{
			ID: employeeID, CompanyID: companyID, ManagerID: &managerID,
		}
		// Only 2 of the 8 credited hours are still unspent.
		deps.balances.snapshot = &balance.LeaveBalance{ID: uuid.New(), BalanceHours: 2, BookedHours: 6}

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Revoke(ctx, companyID.String(), managerID.String(), "manager", credit.ID.String(), compoff.RevokeCompOffRequest{})

		assert.NoError(t, err)
		assert.Equal(t, compoff.StatusRevoked, resp.Status)
		assert.Equal(t, compoff.StatusRevoked, credit.Status)

		assert.Len(t, deps.balances.saved, 1)
		assert.Equal(t, 0.0, deps.balances.saved[0].BalanceHours)
		assert.Equal(t, 6.0, deps.balances.saved[0].BookedHours)
		assert.Len(t, deps.outbox.created, 1)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success grant then revoke restores the balance exactly", func(t *testing.T) {
		deps := setupCompoffServiceTest(t)
		defer deps.db.Close()

		deps.employees.employees[employeeID.String()] = &employee.Employee{
			ID: employeeID, CompanyID: companyID, ManagerID: &managerID,
		}
		deps.timesheets.sheet = &timesheet.Timesheet{
			ID:         uuid.New(),
			CompanyID:  companyID,
			EmployeeID: employeeID,
			WorkDate:   time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
			TotalHours: 8,
		}
		deps.balances.snapshot = &balance.LeaveBalance{
			ID: uuid.New(), CompanyID: companyID, EmployeeID: employeeID, BalanceHours: 1.5,
		}

		expectTx(t, deps.sqlMock, true)
		expectTx(t, deps.sqlMock, true)

		_, err := deps.service.Grant(ctx, companyID.String(), managerID.String(), "manager", compoff.GrantCompOffRequest{
			EmployeeID:   employeeID.String(),
			WorkDate:     "2025-06-08",
			DurationType: compoff.DurationFullDay,
		})
		assert.NoError(t, err)
		assert.Len(t, deps.repo.created, 1)

		resp, err := deps.service.Revoke(ctx, companyID.String(), managerID.String(), "manager", deps.repo.created[0].ID.String(), compoff.RevokeCompOffRequest{})

		assert.NoError(t, err)
		assert.Equal(t, compoff.StatusRevoked, resp.Status)
		assert.Len(t, deps.balances.saved, 2)
		assert.Equal(t, 9.5, deps.balances.saved[0].BalanceHours)
		assert.Equal(t, 1.5, deps.balances.saved[1].BalanceHours)
		assert.Equal(t, 1.5, deps.balances.snapshot.BalanceHours)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success revoked credit frees its daily cap headroom", func(t *testing.T) {
		deps := setupCompoffServiceTest(t)
		defer deps.db.Close()

		deps.employees.employees[employeeID.String()] = &employee.Employee{
			ID: employeeID, CompanyID: companyID, ManagerID: &managerID,
		}
		deps.timesheets.sheet = &timesheet.Timesheet{
			ID:         uuid.New(),
			CompanyID:  companyID,
			EmployeeID: employeeID,
			WorkDate:   time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
			TotalHours: 8,
		}
		deps.balances.snapshot = &balance.LeaveBalance{
			ID: uuid.New(), CompanyID: companyID, EmployeeID: employeeID,
		}

		grant := compoff.GrantCompOffRequest{
			EmployeeID:   employeeID.String(),
			WorkDate:     "2025-06-08",
			DurationType: compoff.DurationFullDay,
		}

		expectTx(t, deps.sqlMock, true)
		expectTx(t, deps.sqlMock, true)
		expectTx(t, deps.sqlMock, true)

		_, err := deps.service.Grant(ctx, companyID.String(), managerID.String(), "manager", grant)
		assert.NoError(t, err)

		_, err = deps.service.Revoke(ctx, companyID.String(), managerID.String(), "manager", deps.repo.created[0].ID.String(), compoff.RevokeCompOffRequest{})
		assert.NoError(t, err)

		// A full day was granted and revoked for the same date. The cap only
		// counts credits still in granted status, so a corrected grant fits.
		resp, err := deps.service.Grant(ctx, companyID.String(), managerID.String(), "manager", grant)

		assert.NoError(t, err)
		assert.Equal(t, 8.0, resp.CreditedHours)
		assert.Len(t, deps.repo.created, 2)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative credit not found", func(t *testing.T) {
		deps := setupCompoffServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Revoke(ctx, companyID.String(), managerID.String(), "admin", uuid.NewString(), compoff.RevokeCompOffRequest{})

		assert.ErrorIs(t, err, compofferrors.ErrCreditNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative already revoked", func(t *testing.T) {
		deps := setupCompoffServiceTest(t)
		defer deps.db.Close()

		credit := grantedCredit()
		credit.Status = compoff.StatusRevoked
		deps.repo.credits[credit.ID.String()] = credit

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Revoke(ctx, companyID.String(), managerID.String(), "admin", credit.ID.String(), compoff.RevokeCompOffRequest{})

		assert.ErrorIs(t, err, compofferrors.ErrCreditNotGranted)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestCompOffService_ExpireForEmployee(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	employeeID := uuid.New()

	t.Run("success expires lapsed credits and is idempotent", func(t *testing.T) {
		deps := setupCompoffServiceTest(t)
		defer deps.db.Close()

		credit := &compoff.CompOffCredit{
			ID:            uuid.New(),
			CompanyID:     companyID,
			EmployeeID:    employeeID,
			LeaveTypeID:   uuid.New(),
			CreditedHours: 8,
			Status:        compoff.StatusGranted,
			ExpiresAt:     time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC),
		}
		deps.repo.credits[credit.ID.String()] = credit
		deps.balances.snapshot = &balance.LeaveBalance{ID: uuid.New(), BalanceHours: 8}

		asOf := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

		expectTx(t, deps.sqlMock, true)
		assert.NoError(t, deps.service.ExpireForEmployee(ctx, companyID.String(), employeeID.String(), asOf))

		assert.Equal(t, compoff.StatusExpired, credit.Status)
		assert.Len(t, deps.balances.saved, 1)
		assert.Equal(t, 0.0, deps.balances.saved[0].BalanceHours)

		// Second pass finds nothing to do.
		expectTx(t, deps.sqlMock, true)
		assert.NoError(t, deps.service.ExpireForEmployee(ctx, companyID.String(), employeeID.String(), asOf))
		assert.Len(t, deps.balances.saved, 1)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success partially spent credit only deducts what is left", func(t *testing.T) {
		deps := setupCompoffServiceTest(t)
		defer deps.db.Close()

		credit := &compoff.CompOffCredit{
			ID:            uuid.New(),
			CompanyID:     companyID,
			EmployeeID:    employeeID,
			LeaveTypeID:   uuid.New(),
			CreditedHours: 8,
			Status:        compoff.StatusGranted,
			ExpiresAt:     time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC),
		}
		deps.repo.credits[credit.ID.String()] = credit
		deps.balances.snapshot = &balance.LeaveBalance{ID: uuid.New(), BalanceHours: 3}

		expectTx(t, deps.sqlMock, true)
		assert.NoError(t, deps.service.ExpireForEmployee(ctx, companyID.String(), employeeID.String(), time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)))

		assert.Equal(t, compoff.StatusExpired, credit.Status)
		assert.Equal(t, 0.0, deps.balances.saved[0].BalanceHours)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
