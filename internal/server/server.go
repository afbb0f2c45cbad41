package server

import (
	"log/slog"
	"net/http"

	"labbooking/internal/config"
	"labbooking/internal/middleware"
	"labbooking/internal/modules/auth"
	"labbooking/internal/modules/availability"
	"labbooking/internal/modules/booking"
	"labbooking/internal/modules/catalog"
	jwtsvc "labbooking/internal/pkg/jwt"
	"labbooking/internal/pkg/password"
	"labbooking/internal/pkg/response"
	"labbooking/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App holds the wired services behind the HTTP router.
type App struct {
	Router       *gin.Engine
	Auth         *auth.Service
	Catalog      *catalog.Service
	Booking      *booking.Service
	Availability *availability.Service
}

// New wires repositories, services and handlers on top of db.
func New(cfg *config.Config, db *gorm.DB, log *slog.Logger) *App {
	userRepo := repository.NewUserRepository(db)
	labRepo := repository.NewLabRepository(db)
	instrumentRepo := repository.NewInstrumentRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	tx := repository.NewTransactor(db)

	loc := cfg.Booking.Location()

	j := jwtsvc.New(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	hasher := password.NewHasher(cfg.Auth.BcryptCost)

	authService := auth.NewService(userRepo, j, hasher)
	availabilityService := availability.NewService(labRepo, instrumentRepo, bookingRepo, loc, cfg.Booking.AvailabilityTTL)
	catalogService := catalog.NewService(labRepo, instrumentRepo, bookingRepo, tx, availabilityService)
	bookingService := booking.NewService(bookingRepo, instrumentRepo, userRepo, tx, availabilityService, booking.Options{
		Location:     loc,
		DefaultLimit: cfg.Booking.DefaultPageLimit,
	})

	authHandler := auth.NewHandler(authService)
	catalogHandler := catalog.NewHandler(catalogService)
	bookingHandler := booking.NewHandler(bookingService)
	availabilityHandler := availability.NewHandler(availabilityService)

	r := gin.New()
	r.Use(middleware.RequestID())
	// Access log wraps the recovery, so panicking requests are logged with their 500.
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.ErrorLogger(log))
	r.Use(middleware.CORS(cfg.HTTP.CORSAllowedOrigins))

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", health(db))

		// public
		authHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(authService))
		{
			authHandler.RegisterProtectedRoutes(protected)
			catalogHandler.RegisterRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
			availabilityHandler.RegisterRoutes(protected)
		}
	}

	return &App{
		Router:       r,
		Auth:         authService,
		Catalog:      catalogService,
		Booking:      bookingService,
		Availability: availabilityService,
	}
}

// NewHTTPServer applies the configured timeouts to handler.
func NewHTTPServer(cfg config.HTTPServer, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			_ = c.Error(err)
			response.Error(c, http.StatusServiceUnavailable, "UNAVAILABLE", "Database unreachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
