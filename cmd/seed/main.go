package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"labbooking/internal/config"
	"labbooking/internal/database"
	"labbooking/internal/domain"
	"labbooking/internal/modules/auth"
	"labbooking/internal/modules/booking"
	"labbooking/internal/modules/catalog"
	"labbooking/internal/pkg/apperr"
	"labbooking/internal/pkg/logger"
	"labbooking/internal/repository"
	"labbooking/internal/server"

	"gorm.io/gorm"
)

func main() {
	reset := flag.Bool("reset", false, "delete existing rows before seeding")
	flag.Parse()

	cfg := config.MustLoad()
	log := logger.New(cfg.AppEnv)
	ctx := context.Background()

	db, err := database.Connect(cfg.Database.URL, log)
	if err != nil {
		log.Error("DB connection failed", logger.Err(err))
		os.Exit(1)
	}
	defer func() { _ = database.Close(db) }()

	log.Info("running migrations")
	if err := repository.Migrate(ctx, db); err != nil {
		log.Error("migration failed", logger.Err(err))
		os.Exit(1)
	}

	if *reset {
		// Cleanup old data (in safe order to avoid foreign key errors)
		log.Info("cleaning old data")
		for _, table := range []string{"bookings", "instruments", "labs", "users"} {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				log.Error("cleanup failed", slog.String("table", table), logger.Err(err))
				os.Exit(1)
			}
		}
	}

	app := server.New(cfg, db, log)

	// ================== USERS ==================
	admin := ensureUser(ctx, log, app.Auth, db, "prof", "admin123", domain.RoleAdmin)
	students := []*domain.User{
		ensureUser(ctx, log, app.Auth, db, "alice", "student123", domain.RoleUser),
		ensureUser(ctx, log, app.Auth, db, "bob", "student123", domain.RoleUser),
	}

	// ================== LABS & INSTRUMENTS ==================
	catalogue := map[string][]string{
		"Optics":       {"Spectrometer", "Spectrometer", "Laser"},
		"Biochemistry": {"Centrifuge", "PCR Machine"},
	}
	for labName, instruments := range catalogue {
		if _, err := app.Catalog.CreateLab(ctx, catalog.CreateLabRequest{Name: labName}); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				log.Info("lab exists, skipping", slog.String("lab", labName))
				continue
			}
			log.Error("create lab failed", slog.String("lab", labName), logger.Err(err))
			os.Exit(1)
		}
		for _, name := range instruments {
			if _, err := app.Catalog.CreateInstrument(ctx, catalog.CreateInstrumentRequest{Name: name, LabName: labName}); err != nil {
				log.Error("create instrument failed", slog.String("instrument", name), logger.Err(err))
				os.Exit(1)
			}
		}
		log.Info("lab seeded", slog.String("lab", labName), slog.Int("instruments", len(instruments)))
	}

	// ================== BOOKINGS ==================
	all, err := app.Catalog.ListInstruments(ctx)
	if err != nil {
		log.Error("list instruments failed", logger.Err(err))
		os.Exit(1)
	}

	now := time.Now().In(cfg.Booking.Location())
	tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 10, 0, 0, 0, now.Location())
	created := 0
	for i, inst := range all {
		requester := students[i%len(students)]
		slot := tomorrow.Add(time.Duration(i%4) * 2 * time.Hour)

		b, err := app.Booking.CreateBooking(ctx, requester, booking.CreateBookingRequest{
			InstrumentID:  inst.ID,
			Slot:          slot,
			RequestedToID: admin.ID,
		})
		if err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				continue
			}
			log.Error("create booking failed", slog.Int64("instrument_id", inst.ID), logger.Err(err))
			os.Exit(1)
		}
		created++

		if i%2 == 0 {
			if _, err := app.Booking.Decide(ctx, admin, b.ID, string(domain.BookingApproved)); err != nil {
				log.Error("approve booking failed", slog.Int64("booking_id", b.ID), logger.Err(err))
				os.Exit(1)
			}
		}
	}

	log.Info("seed completed",
		slog.Int("bookings", created),
		slog.String("admin", "prof / admin123"),
		slog.String("students", "alice, bob / student123"),
	)
}

func ensureUser(ctx context.Context, log *slog.Logger, svc *auth.Service, db *gorm.DB, username, password string, role domain.UserRole) *domain.User {
	u, err := svc.Signup(ctx, auth.SignupRequest{Username: username, Password: password, PrivilegeLevel: string(role)})
	if err == nil {
		log.Info("user created", slog.String("username", username), slog.String("role", string(role)))
		return u
	}
	if !errors.Is(err, auth.ErrUsernameTaken) {
		log.Error("create user failed", slog.String("username", username), logger.Err(err))
		os.Exit(1)
	}

	existing, err := repository.NewUserRepository(db).GetByUsername(ctx, username)
	if err != nil {
		log.Error("load user failed", slog.String("username", username), logger.Err(err))
		os.Exit(1)
	}
	return existing
}
