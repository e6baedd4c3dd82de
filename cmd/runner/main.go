// Command runner is the long-running process that drains the durable job
// queue: it wakes on NOTIFY (debounced) or a periodic tick, picks the
// newest queued job (superseding older ones), and executes the pipeline for
// the calendar month of that job's params timestamp, with parameters read
// from the forms file named by ENERGY_CORE_PARAMS_FILE.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"energy-core/internal/backtest"
	"energy-core/internal/config"
	"energy-core/internal/ingest"
	"energy-core/internal/logging"
	"energy-core/internal/model"
	"energy-core/internal/params"
	"energy-core/internal/storage"
)

func main() {
	log := logging.New("runner")

	cfgPath := os.Getenv("ENERGY_CORE_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Errorf("load config: %v", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Database.DSN(), cfg.Database.MaxOpenConns)
	if err != nil {
		log.Errorf("open database: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Infof("shutdown signal received")
		cancel()
	}()

	migrateCtx, migrateCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := store.Migrate(migrateCtx); err != nil {
		migrateCancel()
		log.Errorf("migrate schema: %v", err)
		os.Exit(1)
	}
	migrateCancel()

	wake, closeListener, err := storage.Listen(ctx, cfg.Database.DSN(), cfg.Run.DebounceWindow, log)
	if err != nil {
		log.Errorf("listen on calc_queue: %v", err)
		os.Exit(1)
	}
	defer closeListener()

	log.Infof("runner started, debounce window %s", cfg.Run.DebounceWindow)

	// Drain anything already queued from before this process started.
	drainQueue(ctx, store, cfg, log)

	for {
		select {
		case <-ctx.Done():
			log.Infof("runner stopped")
			return
		case <-wake:
			drainQueue(ctx, store, cfg, log)
		}
	}
}

// drainQueue pops and runs jobs until the queue is empty, since a single
// wakeup may coalesce several supersessions at once.
func drainQueue(ctx context.Context, store *storage.Store, cfg *config.Config, log *logging.Logger) {
	for {
		job, err := store.PickAndCoalesce(ctx)
		if err != nil {
			log.Errorf("pick job: %v", err)
			return
		}
		if job == nil {
			return
		}
		log.Infof("picked job %d calc %d params_ts %s", job.JobID, job.CalcID, job.ParamsTS)
		if err := runOne(ctx, store, cfg, job); err != nil {
			log.Errorf("job %d failed: %v", job.JobID, err)
			_ = store.MarkRunFailed(ctx, job.CalcID, err.Error())
			_ = store.MarkJobFailed(ctx, job.JobID)
			continue
		}
		_ = store.MarkJobDone(ctx, job.JobID)
	}
}

func runOne(ctx context.Context, store *storage.Store, cfg *config.Config, job *storage.Job) error {
	if err := store.MarkRunRunning(ctx, job.CalcID); err != nil {
		return err
	}

	// Parameter snapshot retrieval is left to the forms store (not yet
	// wired here); this runner executes against the most recently loaded
	// on-disk forms file as a stand-in for a forms-table read, since the
	// forms-table schema and snapshot-versioning are an open item (see
	// DESIGN.md).
	forms, err := params.LoadForms(os.Getenv("ENERGY_CORE_PARAMS_FILE"))
	if err != nil {
		return err
	}
	cons, err := params.Consolidate(forms)
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(cfg.Run.TimeZone)
	if err != nil {
		return err
	}

	seriesDir := os.Getenv("ENERGY_CORE_SERIES_DIR")
	calendar, priceSeries, prodSeries, err := loadSeriesFor(job.ParamsTS, loc, seriesDir)
	if err != nil {
		return err
	}

	engine := backtest.New()
	res, err := engine.Run(backtest.Inputs{
		Calendar: calendar,
		Prices:   priceSeries,
		Prod:     prodSeries,
	}, cons)
	if err != nil {
		return err
	}

	if err := store.PersistAll(ctx, storage.RunOutputs{
		CalcID:       job.CalcID,
		SnapshotRaw:  map[string]any{"forms": forms},
		SnapshotNorm: cons,
		Hours:        res.Hours,
		Proposals:    res.Proposals,
		Commit:       res.Commit,
		Pricing:      res.Pricing,
	}); err != nil {
		return err
	}

	return store.MarkRunDone(ctx, job.CalcID)
}

// loadSeriesFor builds the calendar axis and aligned series for a run. The
// params timestamp's month defines the run window: one full calendar month
// of hours, matching the monthly cadence the forms are versioned at.
func loadSeriesFor(paramsTS time.Time, loc *time.Location, seriesDir string) ([]model.HourStamp, ingest.PriceSeries, ingest.ProductionSeries, error) {
	local := paramsTS.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)

	calendar := model.NewCalendarAxis(start, end, loc,
		func(string) bool { return true },
		func(string) bool { return false },
	)

	priceImport, err := ingest.LoadAndAlign(filepath.Join(seriesDir, "price_import.csv"), calendar)
	if err != nil {
		return nil, ingest.PriceSeries{}, ingest.ProductionSeries{}, err
	}
	priceExport, err := ingest.LoadAndAlign(filepath.Join(seriesDir, "price_export.csv"), calendar)
	if err != nil {
		return nil, ingest.PriceSeries{}, ingest.ProductionSeries{}, err
	}
	pv1, err := ingest.LoadAndAlign(filepath.Join(seriesDir, "pv1.csv"), calendar)
	if err != nil {
		return nil, ingest.PriceSeries{}, ingest.ProductionSeries{}, err
	}
	pv2, err := ingest.LoadAndAlign(filepath.Join(seriesDir, "pv2.csv"), calendar)
	if err != nil {
		return nil, ingest.PriceSeries{}, ingest.ProductionSeries{}, err
	}
	wind, err := ingest.LoadAndAlign(filepath.Join(seriesDir, "wind.csv"), calendar)
	if err != nil {
		return nil, ingest.PriceSeries{}, ingest.ProductionSeries{}, err
	}
	load, err := ingest.LoadAndAlign(filepath.Join(seriesDir, "load.csv"), calendar)
	if err != nil {
		return nil, ingest.PriceSeries{}, ingest.ProductionSeries{}, err
	}

	return calendar,
		ingest.PriceSeries{Import: priceImport, Export: priceExport},
		ingest.ProductionSeries{PV1: pv1, PV2: pv2, Wind: wind, Load: load},
		nil
}
