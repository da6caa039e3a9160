package balance

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go-timeoff/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindSnapshot(ctx context.Context, employeeID, leaveTypeID string) (*LeaveBalance, error)
	// FindSnapshotForUpdate takes the row lock for the read-modify-write cycle.
	// Callers must be inside a transaction; the lock is held until commit.
	FindSnapshotForUpdate(ctx context.Context, employeeID, leaveTypeID string) (*LeaveBalance, error)
	// EnsureRow creates a zeroed row if none exists and returns the current
	// one, racing on the unique constraint rather than check-then-insert.
	EnsureRow(ctx context.Context, companyID, employeeID, leaveTypeID string) (*LeaveBalance, error)
	SaveHours(ctx context.Context, b *LeaveBalance) error
	FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]LeaveBalance, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) FindSnapshot(ctx context.Context, employeeID, leaveTypeID string) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("leave_type_id = ?", leaveTypeID).
		First(&b).Error
	return &b, err
}

const snapshotColumns = `
	id::text, company_id::text, employee_id::text, leave_type_id::text,
	balance_hours, pending_hours, booked_hours, as_of_date
`

func (r *repository) FindSnapshotForUpdate(ctx context.Context, employeeID, leaveTypeID string) (*LeaveBalance, error) {
	row := r.queryRower().QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM leave_balances
		WHERE employee_id = $1 AND leave_type_id = $2
		FOR UPDATE
	`, employeeID, leaveTypeID)
	return scanSnapshot(row)
}

func (r *repository) EnsureRow(ctx context.Context, companyID, employeeID, leaveTypeID string) (*LeaveBalance, error) {
	row := r.queryRower().QueryRowContext(ctx, `
		INSERT INTO leave_balances (
			company_id, employee_id, leave_type_id,
			balance_hours, pending_hours, booked_hours, as_of_date, created_at, updated_at
		) VALUES ($1, $2, $3, 0, 0, 0, CURRENT_DATE, now(), now())
		ON CONFLICT (employee_id, leave_type_id) DO UPDATE
		SET updated_at = now()
		RETURNING `+snapshotColumns+`
	`, companyID, employeeID, leaveTypeID)
	return scanSnapshot(row)
}

func (r *repository) SaveHours(ctx context.Context, b *LeaveBalance) error {
	_, err := r.execer().ExecContext(ctx, `
		UPDATE leave_balances
		SET balance_hours = $2, pending_hours = $3, booked_hours = $4,
		    as_of_date = CURRENT_DATE, updated_at = now()
		WHERE id = $1
	`, b.ID.String(), b.BalanceHours, b.PendingHours, b.BookedHours)
	return err
}

func (r *repository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]LeaveBalance, error) {
	var rows []LeaveBalance
	err := r.db.WithContext(ctx).
		Scopes(tenant.EmployeeScope(companyID, employeeID)).
		Find(&rows).Error
	return rows, err
}

func scanSnapshot(row *sql.Row) (*LeaveBalance, error) {
	var (
		b                             LeaveBalance
		id, company, employee, ltype  string
		asOf                          time.Time
	)
	if err := row.Scan(
		&id, &company, &employee, &ltype,
		&b.BalanceHours, &b.PendingHours, &b.BookedHours, &asOf,
	); err != nil {
		return nil, err
	}
	b.ID = uuid.MustParse(id)
	b.CompanyID = uuid.MustParse(company)
	b.EmployeeID = uuid.MustParse(employee)
	b.LeaveTypeID = uuid.MustParse(ltype)
	b.AsOfDate = asOf
	return &b, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	db, _ := r.db.DB()
	return db
}

func (r *repository) queryRower() interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	db, _ := r.db.DB()
	return db
}
