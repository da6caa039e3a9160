package app

import (
	"database/sql"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"go-timeoff/internal/balance"
	"go-timeoff/internal/calendar"
	"go-timeoff/internal/compoff"
	"go-timeoff/internal/employee"
	"go-timeoff/internal/leaverequest"
	"go-timeoff/internal/leavetype"
	"go-timeoff/internal/messaging/kafka"
	"go-timeoff/internal/middleware"
	"go-timeoff/internal/rbac"
	"go-timeoff/internal/rbac/infra"
	"go-timeoff/internal/timesheet"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	calendarRepo := calendar.NewRepository(gormDB)
	compoffRepo := compoff.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveRequestRepo := leaverequest.NewRepository(gormDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	timesheetRepo := timesheet.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	calendarOracle := calendar.NewService(calendarRepo)
	leaveTypeService := leavetype.NewService(db, leaveTypeRepo, rdb)
	timesheetService := timesheet.NewService(db, timesheetRepo)
	compoffService := compoff.NewService(db, compoffRepo, balanceRepo, leaveTypeRepo, employeeRepo, timesheetRepo, calendarOracle, outboxRepo)
	// Balance reads sweep expired comp-off credits first.
	balanceService := balance.NewService(balanceRepo, compoffService)
	leaveRequestService := leaverequest.NewService(db, leaveRequestRepo, balanceRepo, leaveTypeRepo, employeeRepo, calendarOracle, outboxRepo)

	// --- Handlers ---
	balanceHandler := balance.NewHandler(balanceService)
	calendarHandler := calendar.NewHandler(calendarOracle)
	compoffHandler := compoff.NewHandler(compoffService)
	leaveRequestHandler := leaverequest.NewHandler(leaveRequestService)
	leaveTypeHandler := leavetype.NewHandler(leaveTypeService)
	timesheetHandler := timesheet.NewHandler(timesheetService)

	// --- Routes Registration ---
	router.Use(middleware.RequestID())

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitByIP(50, 100))
	{
		balance.RegisterRoutes(api, balanceHandler, rbacService)
		calendar.RegisterRoutes(api, calendarHandler)
		compoff.RegisterRoutes(api, compoffHandler, rbacService, rdb)
		leaverequest.RegisterRoutes(api, leaveRequestHandler, rbacService, rdb)
		leavetype.RegisterRoutes(api, leaveTypeHandler, rbacService)
		timesheet.RegisterRoutes(api, timesheetHandler, rbacService)
	}

	return nil
}
