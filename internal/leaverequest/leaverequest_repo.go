package leaverequest

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-timeoff/internal/tenant"
)

//go:generate mockgen -source=leaverequest_repo.go -destination=mock/leaverequest_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error)
	// FindByIDForUpdate locks the request row so concurrent reviews of the
	// same request serialize; the loser re-reads a terminal state and fails
	// the state precondition.
	FindByIDForUpdate(ctx context.Context, companyID, id string) (*LeaveRequest, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]LeaveRequest, error)
	FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]LeaveRequest, error)
	FindByIDs(ctx context.Context, companyID string, ids []string) ([]LeaveRequest, error)
	FindByMonth(ctx context.Context, companyID, employeeID string, year, month int) ([]LeaveRequest, error)
	HasOverlappingRequest(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time) (bool, error)
	UpdateDecision(ctx context.Context, id, status, decidedBy string, decidedAt time.Time) error
	CreateApproval(ctx context.Context, a *Approval) error
	UpdateApprovalDecision(ctx context.Context, subjectID, decision string, comment *string, decidedAt time.Time) error
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

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	var decidedBy *string
	if l.DecidedBy != nil {
		v := l.DecidedBy.String()
		decidedBy = &v
	}
	_, err := r.execer().ExecContext(ctx, `
		INSERT INTO leave_requests (
			id, company_id, employee_id, leave_type_id,
			start_date, end_date, duration_type, half_day_segment,
			hours, reason, status, decided_by, decided_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
	`,
		l.ID.String(), l.CompanyID.String(), l.EmployeeID.String(), l.LeaveTypeID.String(),
		l.StartDate.Format("2006-01-02"), l.EndDate.Format("2006-01-02"),
		l.DurationType, l.HalfDaySegment,
		l.Hours, l.Reason, l.Status, decidedBy, l.DecidedAt,
	)
	return err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&l, "id = ?", id).Error
	return &l, err
}

const requestColumns = `
	id::text, company_id::text, employee_id::text, leave_type_id::text,
	start_date, end_date, duration_type, half_day_segment,
	hours, reason, status, decided_by::text, decided_at
`

func (r *repository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*LeaveRequest, error) {
	row := r.queryRower().QueryRowContext(ctx, `
		SELECT `+requestColumns+`
		FROM leave_requests
		WHERE company_id = $1 AND id = $2
		FOR UPDATE
	`, companyID, id)
	return scanRequest(row)
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]LeaveRequest, error) {
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("start_date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]LeaveRequest, error) {
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Scopes(tenant.EmployeeScope(companyID, employeeID)).
		Order("start_date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByIDs(ctx context.Context, companyID string, ids []string) ([]LeaveRequest, error) {
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id IN ?", ids).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByMonth(ctx context.Context, companyID, employeeID string, year, month int) ([]LeaveRequest, error) {
	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Scopes(tenant.EmployeeScope(companyID, employeeID)).
		Where("start_date BETWEEN ? AND ?", monthStart.Format("2006-01-02"), monthEnd.Format("2006-01-02")).
		Find(&rows).Error
	return rows, err
}

// HasOverlappingRequest runs through the transaction when one is attached, so
// the create path sees rows inserted under the same balance row lock.
func (r *repository) HasOverlappingRequest(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time) (bool, error) {
	var count int64
	err := r.queryRower().QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM leave_requests
		WHERE company_id = $1 AND employee_id = $2
			AND status IN ($3, $4)
			AND NOT (end_date < $5 OR start_date > $6)
	`, companyID, employeeID, StatusPending, StatusApproved,
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"),
	).Scan(&count)
	return count > 0, err
}

func (r *repository) UpdateDecision(ctx context.Context, id, status, decidedBy string, decidedAt time.Time) error {
	_, err := r.execer().ExecContext(ctx, `
		UPDATE leave_requests
		SET status = $2, decided_by = $3, decided_at = $4, updated_at = now()
		WHERE id = $1
	`, id, status, decidedBy, decidedAt)
	return err
}

func (r *repository) CreateApproval(ctx context.Context, a *Approval) error {
	_, err := r.execer().ExecContext(ctx, `
		INSERT INTO approvals (
			id, company_id, subject_type, subject_id, approver_id,
			decision, comment, decided_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
	`,
		a.ID.String(), a.CompanyID.String(), a.SubjectType, a.SubjectID.String(),
		a.ApproverID.String(), a.Decision, a.Comment, a.DecidedAt,
	)
	return err
}

func (r *repository) UpdateApprovalDecision(ctx context.Context, subjectID, decision string, comment *string, decidedAt time.Time) error {
	_, err := r.execer().ExecContext(ctx, `
		UPDATE approvals
		SET decision = $2, comment = COALESCE($3, comment), decided_at = $4, updated_at = now()
		WHERE subject_type = $5 AND subject_id = $1
	`, subjectID, decision, comment, decidedAt, SubjectLeaveRequest)
	return err
}

func scanRequest(row *sql.Row) (*LeaveRequest, error) {
	var (
		l                       LeaveRequest
		id, company, emp, ltype string
		decidedBy               *string
	)
	if err := row.Scan(
		&id, &company, &emp, &ltype,
		&l.StartDate, &l.EndDate, &l.DurationType, &l.HalfDaySegment,
		&l.Hours, &l.Reason, &l.Status, &decidedBy, &l.DecidedAt,
	); err != nil {
		return nil, err
	}
	l.ID = uuid.MustParse(id)
	l.CompanyID = uuid.MustParse(company)
	l.EmployeeID = uuid.MustParse(emp)
	l.LeaveTypeID = uuid.MustParse(ltype)
	if decidedBy != nil {
		v := uuid.MustParse(*decidedBy)
		l.DecidedBy = &v
	}
	return &l, nil
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
