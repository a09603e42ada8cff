package http

import (
	"log/slog"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	leaveHandler LeaveHandler,
	payrollHandler PayrollHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired)

		r.Route("/attendance", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff)
				r.With(middleware.RequirePermission(user.PermissionAttendanceRecord)).Post("/check-in", attendanceHandler.CheckIn)
				r.With(middleware.RequirePermission(user.PermissionAttendanceRecord)).Post("/check-out", attendanceHandler.CheckOut)
				r.Get("/today", attendanceHandler.GetToday)
				r.Get("/history", attendanceHandler.GetHistory)
				r.Get("/stats", attendanceHandler.GetStats)
			})

			// Manager only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionAttendanceManage))
				r.Put("/{id}/status", attendanceHandler.UpdateStatus)
				r.Post("/grace", attendanceHandler.Grace)
			})
		})

		r.Route("/leave", func(r chi.Router) {
			r.Route("/applications", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireStaff)
					r.With(middleware.RequirePermission(user.PermissionLeaveApply)).Post("/", leaveHandler.Apply)
					r.Get("/my", leaveHandler.ListMine)
					r.Post("/{id}/cancel", leaveHandler.Cancel)
					r.Post("/{id}/documents", leaveHandler.UploadDocument)
				})

				r.Get("/{id}", leaveHandler.Get)

				// Manager only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.With(middleware.RequirePermission(user.PermissionLeaveViewAll)).Get("/", leaveHandler.List)
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
						r.Post("/{id}/approve", leaveHandler.Approve)
						r.Post("/{id}/reject", leaveHandler.Reject)
						r.Post("/{id}/revoke", leaveHandler.Revoke)
					})
				})
			})

			r.Route("/balance", func(r chi.Router) {
				r.With(middleware.RequireStaff).Get("/", leaveHandler.GetMyBalance)
				r.With(middleware.RequireManager).Get("/{staffID}", leaveHandler.GetBalance)
			})
		})

		r.Route("/payroll", func(r chi.Router) {
			r.Use(middleware.RequireManager)

			r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/preview", payrollHandler.GetPreview)
			r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/preview/export", payrollHandler.ExportPreview)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionPayrollProcess))
				r.Post("/process", payrollHandler.Process)
				r.Post("/bulk", payrollHandler.BulkProcess)
				r.Post("/grace", payrollHandler.Grace)
			})
		})
	})

	return r
}
