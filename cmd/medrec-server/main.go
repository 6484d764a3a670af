package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medrec/medrec/internal/config"
	"github.com/medrec/medrec/internal/domain/appointment"
	"github.com/medrec/medrec/internal/domain/medication"
	"github.com/medrec/medrec/internal/domain/patient"
	"github.com/medrec/medrec/internal/domain/portal"
	"github.com/medrec/medrec/internal/domain/prescription"
	"github.com/medrec/medrec/internal/domain/staff"
	"github.com/medrec/medrec/internal/platform/auth"
	"github.com/medrec/medrec/internal/platform/db"
	"github.com/medrec/medrec/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medrec-server",
		Short: "Clinical records API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed demo patients, records and a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			return seed(ctx, pool, cfg.BcryptCost)
		},
	}
}

func seed(ctx context.Context, pool *pgxpool.Pool, bcryptCost int) error {
	patientRepo := patient.NewRepoPG(pool)
	apptRepo := appointment.NewRepoPG(pool)
	rxRepo := prescription.NewRepoPG(pool)
	staffRepo := staff.NewRepoPG(pool)

	runTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}
	patients := patient.NewService(patientRepo, apptRepo, rxRepo, runTx, bcryptCost)
	appts := appointment.NewService(apptRepo, patientRepo)
	rxs := prescription.NewService(rxRepo, patientRepo)
	staffSvc := staff.NewService(staffRepo, bcryptCost)

	strPtr := func(s string) *string { return &s }

	john, err := patients.Create(ctx, patient.CreateRequest{
		FirstName:   "John",
		LastName:    "Doe",
		Email:       "john.doe@example.com",
		Password:    "password123",
		DateOfBirth: "1985-05-15",
		Phone:       strPtr("555-0101"),
		Address:     strPtr("123 Main St, Springfield, IL 62701"),
	})
	if err != nil {
		return fmt.Errorf("seed patient: %w", err)
	}
	jane, err := patients.Create(ctx, patient.CreateRequest{
		FirstName:   "Jane",
		LastName:    "Smith",
		Email:       "jane.smith@example.com",
		Password:    "password123",
		DateOfBirth: "1990-08-22",
		Phone:       strPtr("555-0102"),
		Address:     strPtr("456 Oak Ave, Springfield, IL 62702"),
	})
	if err != nil {
		return fmt.Errorf("seed patient: %w", err)
	}

	seedAppts := []appointment.CreateRequest{
		{
			PatientID:      john.ID.String(),
			ProviderName:   "Dr. Sarah Johnson",
			DateTime:       "2026-12-20T10:00",
			RepeatSchedule: strPtr("Monthly"),
			EndDate:        strPtr("2027-06-20"),
			Reason:         strPtr("Regular checkup"),
		},
		{
			PatientID:    john.ID.String(),
			ProviderName: "Dr. Michael Chen",
			DateTime:     "2026-12-25T14:30",
			Reason:       strPtr("Follow-up consultation"),
		},
		{
			PatientID:      jane.ID.String(),
			ProviderName:   "Dr. Emily Rodriguez",
			DateTime:       "2026-12-22T09:00",
			RepeatSchedule: strPtr("Weekly"),
			EndDate:        strPtr("2027-03-22"),
			Reason:         strPtr("Physical therapy"),
		},
	}
	for _, req := range seedAppts {
		if _, err := appts.Create(ctx, req); err != nil {
			return fmt.Errorf("seed appointment: %w", err)
		}
	}

	seedRxs := []prescription.CreateRequest{
		{PatientID: john.ID.String(), MedicationName: "Lisinopril", Dosage: "10mg", Quantity: 30, RefillDate: "2026-12-18", RefillSchedule: "Monthly"},
		{PatientID: john.ID.String(), MedicationName: "Metformin", Dosage: "500mg", Quantity: 60, RefillDate: "2026-12-21", RefillSchedule: "Monthly"},
		{PatientID: jane.ID.String(), MedicationName: "Levothyroxine", Dosage: "75mcg", Quantity: 30, RefillDate: "2026-12-19", RefillSchedule: "Monthly"},
		{PatientID: jane.ID.String(), MedicationName: "Atorvastatin", Dosage: "20mg", Quantity: 30, RefillDate: "2027-01-15", RefillSchedule: "Monthly"},
	}
	for _, req := range seedRxs {
		if _, err := rxs.Create(ctx, req); err != nil {
			return fmt.Errorf("seed prescription: %w", err)
		}
	}

	if _, err := staffSvc.Create(ctx, staff.CreateRequest{
		Name:     "Admin User",
		Email:    "admin@example.com",
		Password: "admin123!seed",
	}); err != nil {
		return fmt.Errorf("seed staff account: %w", err)
	}

	fmt.Println("Database seeded successfully.")
	fmt.Println("Patient logins: john.doe@example.com / jane.smith@example.com (password123)")
	fmt.Println("Staff login: admin@example.com (admin123!seed)")
	return nil
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	sessions := auth.NewSessions(cfg.SessionSecret, time.Duration(cfg.SessionTTLMinutes)*time.Minute)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))
	e.Use(auth.Middleware(sessions))

	e.GET("/health", db.HealthHandler(pool))

	// Repositories and services
	patientRepo := patient.NewRepoPG(pool)
	apptRepo := appointment.NewRepoPG(pool)
	rxRepo := prescription.NewRepoPG(pool)
	staffRepo := staff.NewRepoPG(pool)

	runTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}
	patientSvc := patient.NewService(patientRepo, apptRepo, rxRepo, runTx, cfg.BcryptCost)
	apptSvc := appointment.NewService(apptRepo, patientRepo)
	rxSvc := prescription.NewService(rxRepo, patientRepo)
	staffSvc := staff.NewService(staffRepo, cfg.BcryptCost)
	catalog := medication.NewCatalog(cfg.MedicationCatalogURL, time.Duration(cfg.MedicationCacheTTLSec)*time.Second)

	// Routes
	apiV1 := e.Group("/api/v1")
	portal.NewHandler(patientSvc, staffSvc, sessions).RegisterRoutes(apiV1)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	appointment.NewHandler(apptSvc).RegisterRoutes(apiV1)
	prescription.NewHandler(rxSvc).RegisterRoutes(apiV1)
	medication.NewHandler(catalog).RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	return nil
}
