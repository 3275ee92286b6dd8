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

	"github.com/cmlabs-hris/field-attendance/internal/config"
	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
	appHTTP "github.com/cmlabs-hris/field-attendance/internal/handler/http"
	"github.com/cmlabs-hris/field-attendance/internal/pkg/cron"
	"github.com/cmlabs-hris/field-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/field-attendance/internal/pkg/metrics"
	"github.com/cmlabs-hris/field-attendance/internal/pkg/sse"
	"github.com/cmlabs-hris/field-attendance/internal/pkg/storage"
	"github.com/cmlabs-hris/field-attendance/internal/repository/file"
	"github.com/cmlabs-hris/field-attendance/internal/repository/memory"
	"github.com/cmlabs-hris/field-attendance/internal/repository/postgresql"
	"github.com/cmlabs-hris/field-attendance/internal/repository/remote"
	attendanceService "github.com/cmlabs-hris/field-attendance/internal/service/attendance"
	"github.com/go-chi/httplog/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Agent stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "field-attendance"),
		slog.String("env", cfg.App.Env),
		slog.String("employee_id", cfg.Employee.ID),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slot, closeSlot, err := openSlot(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSlot()

	locations, err := config.LoadWorkLocations(cfg.Geofence.LocationsFile)
	if err != nil {
		return fmt.Errorf("error loading work locations: %w", err)
	}
	workLocation := config.FindWorkLocation(locations, cfg.Employee.BranchID)
	if workLocation == nil {
		slog.Warn("No work location for branch, every reading counts as outside", "branch_id", cfg.Employee.BranchID)
	}

	store := attendanceService.NewStateStore(slot, cfg.SlotKey(), attendanceService.WithLocation(cfg.Location()))
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("error loading attendance state: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	hub := sse.NewHub(10)
	client := remote.NewClient(cfg.Remote).WithMetrics(m)
	service := attendanceService.NewAttendanceService(store, client, hub, attendanceService.Options{
		EmployeeID:   cfg.Employee.ID,
		BranchID:     cfg.Employee.BranchID,
		WorkLocation: workLocation,
		RadiusMeters: cfg.Geofence.RadiusMeters,
		WeekStart:    cfg.App.WeekStart,
		Metrics:      m,
	})

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(service, cfg.Cron.RolloverInterval).RegisterJobs(scheduler)

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	router := appHTTP.NewRouter(cfg, logger, appHTTP.NewAttendanceHandler(service, m), metricsHandler)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		scheduler.Start(gCtx)
		<-gCtx.Done()
		scheduler.Stop()
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("Shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openSlot picks the persistence backend for the attendance record.
func openSlot(ctx context.Context, cfg *config.Config) (attendance.SlotRepository, func(), error) {
	switch cfg.Slot.Driver {
	case config.SlotDriverMemory:
		slog.Info("Using in-memory attendance slot")
		return memory.NewSlotRepository(), func() {}, nil
	case config.SlotDriverFile:
		files, err := storage.NewLocalStorage(cfg.Slot.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening slot directory: %w", err)
		}
		slog.Info("Using file attendance slot", "dir", cfg.Slot.Dir)
		return file.NewSlotRepository(files), func() {}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := postgresql.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("error migrating slot table: %w", err)
	}

	slog.Info("Using PostgreSQL attendance slot", "host", cfg.Database.Host, "database", cfg.Database.Name)
	return postgresql.NewSlotRepository(db), db.Close, nil
}
