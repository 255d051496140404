package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	"github.com/BruksfildServices01/clinic-scheduler/internal/config"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/handlers"
	"github.com/BruksfildServices01/clinic-scheduler/internal/metrics"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/ratelimit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/usecase/account"
	usecaseAppointment "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/usecase/directory"
	"github.com/BruksfildServices01/clinic-scheduler/internal/usecase/schedule"
)

// Deps is everything the router needs that outlives a request.
type Deps struct {
	Config *config.Config
	Logger zerolog.Logger

	Users        user.Repository
	Slots        slot.Registry
	Appointments domain.Repository
	AuditSink    audit.Sink

	Audit    *audit.Dispatcher
	Tokens   *auth.TokenService
	Throttle ratelimit.LoginThrottle
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	// Health, when set, backs GET /health.
	Health func(ctx context.Context) error
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logger(d.Logger),
		middleware.Recovery(d.Logger),
		middleware.CORSMiddleware(),
		middleware.Metrics(d.Metrics),
	)

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// INFRA (singletons)
	// ======================================================
	authMW := middleware.AuthMiddleware(d.Tokens)
	authLimiter := middleware.NewRateLimiter(d.Config.AuthRatePerSecond, d.Config.AuthRateBurst)

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// ======================================================
	// USE CASES
	// ======================================================
	signupUC := account.NewSignup(d.Users, d.Tokens, d.Audit, d.Config.AllowAdminSignup)
	loginUC := account.NewLogin(d.Users, d.Tokens, d.Throttle)
	resetPasswordUC := account.NewResetPassword(d.Users, d.Audit)
	listUsersUC := account.NewListUsers(d.Users)
	deleteUserUC := account.NewDeleteUser(d.Users, d.Audit, d.Metrics)
	meUC := account.NewMe(d.Users)

	createSlotUC := schedule.NewCreateSlot(d.Users, d.Slots, d.Audit, d.Config.Timezone)
	listAvailableUC := schedule.NewListAvailable(d.Slots)

	bookUC := usecaseAppointment.NewBookAppointment(d.Users, d.Slots, d.Appointments, d.Audit, d.Metrics)
	listAppointmentsUC := usecaseAppointment.NewListAppointments(d.Users, d.Appointments)
	cancelUC := usecaseAppointment.NewCancelAppointment(d.Appointments, d.Audit, d.Metrics)
	completeUC := usecaseAppointment.NewCompleteAppointment(d.Appointments, d.Audit, d.Metrics)

	dir := directory.New(d.Users)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.Tokens, signupUC, loginUC, resetPasswordUC, listUsersUC, deleteUserUC)
	meHandler := handlers.NewMeHandler(meUC)
	slotHandler := handlers.NewSlotHandler(createSlotUC, listAvailableUC)
	appointmentHandler := handlers.NewAppointmentHandler(bookUC, listAppointmentsUC, cancelUC, completeUC)
	directoryHandler := handlers.NewDirectoryHandler(dir)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.AuditSink)

	admin := middleware.RequireRole(role.Requires(role.Admin))
	staff := middleware.RequireRole(role.Requires(role.Doctor, role.Admin))

	// ======================================================
	// INFRA ROUTES
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")

	// ======================================================
	// AUTH
	// ======================================================
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", middleware.RateLimit(authLimiter), authHandler.Signup)
		authGroup.POST("/login", middleware.RateLimit(authLimiter), authHandler.Login)
		authGroup.GET("/verify", authHandler.Verify)

		authGroup.POST("/password-reset", authMW, authHandler.ResetPassword)
		authGroup.GET("/users", authMW, admin, authHandler.ListUsers)
		authGroup.DELETE("/users/:id", authMW, admin, authHandler.DeleteUser)
	}

	// ======================================================
	// PUBLIC
	// ======================================================
	api.GET("/slots/doctor/:doctorId", slotHandler.ListForDoctor)
	api.GET("/doctors", directoryHandler.Doctors)

	// ======================================================
	// SECURED
	// ======================================================
	secured := api.Group("")
	secured.Use(authMW)
	{
		secured.GET("/me", meHandler.GetMe)

		// Slots
		secured.POST("/slots", staff, slotHandler.Create)

		// Appointments
		secured.POST("/appointments",
			middleware.RequireRole(role.Requires(role.Patient, role.Admin)),
			appointmentHandler.Create,
		)
		secured.GET("/appointments", appointmentHandler.List)
		secured.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
		secured.PATCH("/appointments/:id/complete", staff, appointmentHandler.Complete)

		// Directory
		secured.GET("/patients", staff, directoryHandler.Patients)
		secured.PATCH("/doctors/me",
			middleware.RequireRole(role.Requires(role.Doctor)),
			directoryHandler.UpdateMyProfile,
		)

		// Audit
		secured.GET("/audit-logs", admin, auditLogsHandler.List)
	}
}
