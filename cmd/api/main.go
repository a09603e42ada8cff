package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/config"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/shift"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/staff"
	appHTTP "github.com/cmlabs-hris/hris-workforce/internal/handler/http"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/database"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-workforce/internal/repository/memory"
	"github.com/cmlabs-hris/hris-workforce/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-workforce/internal/repository/redis"
	attendanceService "github.com/cmlabs-hris/hris-workforce/internal/service/attendance"
	"github.com/cmlabs-hris/hris-workforce/internal/service/file"
	leaveService "github.com/cmlabs-hris/hris-workforce/internal/service/leave"
	payrollService "github.com/cmlabs-hris/hris-workforce/internal/service/payroll"
)

// repositories is the set of stores the services are built on.
type repositories struct {
	tx           database.Transactor
	staff        staff.StaffRepository
	shifts       shift.ShiftRepository
	attendance   attendance.AttendanceRepository
	balances     leave.BalanceRepository
	applications leave.ApplicationRepository
	payroll      payroll.PayrollRepository
	close        func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	shifts := repos.shifts
	if cfg.UseRedis() {
		rdb, err := redis.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Warn("Redis unavailable, shift cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer rdb.Close()
			shifts = redis.NewShiftCache(repos.shifts, rdb, cfg.Redis.TTL)
			slog.Info("Shift cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
		}
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("failed to initialize jwt service: %w", err)
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize local storage: %w", err)
	}
	fileService := file.NewFileService(fileStorage)

	clk := clock.New(cfg.App.Location)

	attendanceSvc := attendanceService.NewAttendanceService(
		repos.tx,
		repos.attendance,
		repos.staff,
		shifts,
		clk,
		cfg.Policy,
	)
	leaveSvc := leaveService.NewLeaveService(
		repos.tx,
		repos.balances,
		repos.applications,
		repos.staff,
		shifts,
		fileService,
		clk,
		cfg.Policy,
	)
	payrollSvc := payrollService.NewPayrollService(
		repos.tx,
		repos.payroll,
		repos.staff,
		shifts,
		repos.applications,
		attendanceSvc,
		clk,
		cfg.Policy,
	)

	scheduler := cron.NewScheduler()
	cron.NewLeaveJobs(leaveSvc, time.Hour).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Logger:         logger,
			LogLevel:       cfg.SlogLevel(),
			AllowedOrigins: cfg.App.AllowedOrigins,
		},
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewLeaveHandler(leaveSvc),
		appHTTP.NewPayrollHandler(payrollSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "timezone", cfg.App.Timezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// openRepositories connects to PostgreSQL when configured and falls back to
// the in-memory store otherwise.
func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if !cfg.UseDatabase() {
		slog.Warn("No database configured, using in-memory store; data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			tx:           store,
			staff:        store.Staff(),
			shifts:       store.Shifts(),
			attendance:   store.Attendance(),
			balances:     store.Balances(),
			applications: store.Applications(),
			payroll:      store.Payroll(),
			close:        func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := postgresql.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &repositories{
		tx:           postgresql.NewTransactor(db),
		staff:        postgresql.NewStaffRepository(db),
		shifts:       postgresql.NewShiftRepository(db),
		attendance:   postgresql.NewAttendanceRepository(db),
		balances:     postgresql.NewLeaveBalanceRepository(db),
		applications: postgresql.NewLeaveApplicationRepository(db),
		payroll:      postgresql.NewPayrollRepository(db),
		close:        db.Close,
	}, nil
}
