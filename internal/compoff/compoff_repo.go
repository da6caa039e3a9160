package compoff

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-timeoff/internal/tenant"
)

//go:generate mockgen -source=compoff_repo.go -destination=mock/compoff_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, c *CompOffCredit) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*CompOffCredit, error)
	// FindByIDForUpdate locks the credit row so revoke and the expiry sweep
	// cannot both claw back the same credit.
	FindByIDForUpdate(ctx context.Context, companyID, id string) (*CompOffCredit, error)
	FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]CompOffCredit, error)
	// SumGrantedForDate totals credited hours still in granted status for one
	// work date. Revoked and expired credits give their headroom back, so a
	// mistaken grant can be revoked and corrected.
	SumGrantedForDate(ctx context.Context, companyID, employeeID string, workDate time.Time) (float64, error)
	// FindExpiredGrantedForUpdate locks and returns every granted credit
	// whose expires_at has passed as of the given instant.
	FindExpiredGrantedForUpdate(ctx context.Context, companyID, employeeID string, asOf time.Time) ([]CompOffCredit, error)
	// FindStaleCreditOwners lists every employee across all companies still
	// holding a granted credit past its expiry, for the background sweep.
	FindStaleCreditOwners(ctx context.Context, asOf time.Time) ([]StaleCreditOwner, error)
	UpdateStatus(ctx context.Context, id, status string, notes *string) error
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

func (r *repository) Create(ctx context.Context, c *CompOffCredit) error {
	var timesheetID *string
	if c.TimesheetID != nil {
		v := c.TimesheetID.String()
		timesheetID = &v
	}
	_, err := r.execer().ExecContext(ctx, `
		INSERT INTO comp_off_credits (
			id, company_id, employee_id, leave_type_id, timesheet_id,
			work_date, duration_type, credited_hours, timesheet_hours,
			status, expires_at, created_by, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
	`,
		c.ID.String(), c.CompanyID.String(), c.EmployeeID.String(), c.LeaveTypeID.String(), timesheetID,
		c.WorkDate.Format("2006-01-02"), c.DurationType, c.CreditedHours, c.TimesheetHours,
		c.Status, c.ExpiresAt.Format("2006-01-02"), c.CreatedBy.String(), c.Notes,
	)
	return err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*CompOffCredit, error) {
	var c CompOffCredit
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&c, "id = ?", id).Error
	return &c, err
}

const creditColumns = `
	id::text, company_id::text, employee_id::text, leave_type_id::text, timesheet_id::text,
	work_date, duration_type, credited_hours, timesheet_hours,
	status, expires_at, created_by::text, notes
`

func (r *repository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*CompOffCredit, error) {
	row := r.queryRower().QueryRowContext(ctx, `
		SELECT `+creditColumns+`
		FROM comp_off_credits
		WHERE company_id = $1 AND id = $2
		FOR UPDATE
	`, companyID, id)
	return scanCredit(row.Scan)
}

func (r *repository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]CompOffCredit, error) {
	var rows []CompOffCredit
	err := r.db.WithContext(ctx).
		Scopes(tenant.EmployeeScope(companyID, employeeID)).
		Order("work_date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) SumGrantedForDate(ctx context.Context, companyID, employeeID string, workDate time.Time) (float64, error) {
	var total sql.NullFloat64
	err := r.queryRower().QueryRowContext(ctx, `
		SELECT COALESCE(SUM(credited_hours), 0)
		FROM comp_off_credits
		WHERE company_id = $1 AND employee_id = $2 AND work_date = $3 AND status = $4
	`, companyID, employeeID, workDate.Format("2006-01-02"), StatusGranted).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Float64, nil
}

func (r *repository) FindExpiredGrantedForUpdate(ctx context.Context, companyID, employeeID string, asOf time.Time) ([]CompOffCredit, error) {
	rows, err := r.querier().QueryContext(ctx, `
		SELECT `+creditColumns+`
		FROM comp_off_credits
		WHERE company_id = $1 AND employee_id = $2
			AND status = $3 AND expires_at < $4
		ORDER BY expires_at ASC
		FOR UPDATE
	`, companyID, employeeID, StatusGranted, asOf.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var credits []CompOffCredit
	for rows.Next() {
		c, err := scanCredit(rows.Scan)
		if err != nil {
			return nil, err
		}
		credits = append(credits, *c)
	}
	return credits, rows.Err()
}

type StaleCreditOwner struct {
	CompanyID  string
	EmployeeID string
}

func (r *repository) FindStaleCreditOwners(ctx context.Context, asOf time.Time) ([]StaleCreditOwner, error) {
	var owners []StaleCreditOwner
	err := r.db.WithContext(ctx).
		Model(&CompOffCredit{}).
		Distinct("company_id::text AS company_id", "employee_id::text AS employee_id").
		Where("status = ?", StatusGranted).
		Where("expires_at < ?", asOf.Format("2006-01-02")).
		Scan(&owners).Error
	return owners, err
}

func (r *repository) UpdateStatus(ctx context.Context, id, status string, notes *string) error {
	_, err := r.execer().ExecContext(ctx, `
		UPDATE comp_off_credits
		SET status = $2,
		    notes = CASE WHEN $3::text IS NULL THEN notes
		                 ELSE COALESCE(notes || E'\n', '') || $3 END,
		    updated_at = now()
		WHERE id = $1
	`, id, status, notes)
	return err
}

func scanCredit(scan func(dest ...any) error) (*CompOffCredit, error) {
	var (
		c                                  CompOffCredit
		id, company, emp, ltype, createdBy string
		timesheetID                        *string
	)
	if err := scan(
		&id, &company, &emp, &ltype, &timesheetID,
		&c.WorkDate, &c.DurationType, &c.CreditedHours, &c.TimesheetHours,
		&c.Status, &c.ExpiresAt, &createdBy, &c.Notes,
	); err != nil {
		return nil, err
	}
	c.ID = uuid.MustParse(id)
	c.CompanyID = uuid.MustParse(company)
	c.EmployeeID = uuid.MustParse(emp)
	c.LeaveTypeID = uuid.MustParse(ltype)
	c.CreatedBy = uuid.MustParse(createdBy)
	if timesheetID != nil {
		v := uuid.MustParse(*timesheetID)
		c.TimesheetID = &v
	}
	return &c, nil
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

func (r *repository) querier() interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
} {
	if r.tx != nil {
		return r.tx
	}
	db, _ := r.db.DB()
	return db
}
