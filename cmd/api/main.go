package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"labbooking/internal/config"
	"labbooking/internal/database"
	"labbooking/internal/pkg/logger"
	"labbooking/internal/repository"
	"labbooking/internal/server"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.MustLoad()

	log := logger.New(cfg.AppEnv)
	log.Info("starting lab booking api", slog.String("env", cfg.AppEnv))
	log.Debug("debug messages are enabled")

	if config.IsProdLike(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.Database.URL, log)
	if err != nil {
		log.Error("failed to connect database", logger.Err(err))
		os.Exit(1)
	}

	if err := repository.Migrate(context.Background(), db); err != nil {
		log.Error("failed to migrate database", logger.Err(err))
		os.Exit(1)
	}

	app := server.New(cfg, db, log)
	srv := server.NewHTTPServer(cfg.HTTP, app.Router)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", logger.Err(err))
			stop <- syscall.SIGTERM
		}
	}()

	sign := <-stop
	log.Info("application stopping", slog.String("signal", sign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server", logger.Err(err))
	}
	log.Info("application stopped")

	if err := database.Close(db); err != nil {
		log.Error("failed to close database", logger.Err(err))
	}
	log.Info("database connection closed")
}
