package orchestrator

import (
	"context"
	"io"
	"log"

	"helpsync/ada"
	"helpsync/archive"
	"helpsync/calllog"
	"helpsync/config"
	"helpsync/events"
	"helpsync/history"
	"helpsync/metrics"
	"helpsync/state"
	"helpsync/workflow"
)

// App is one fully wired helpsync session
type App struct {
	Settings *config.Settings
	State    *state.Manager
	Runner   *workflow.Runner
	Ada      *ada.Client
	Calls    *calllog.Log
	History  history.Store
	Archiver *archive.Archiver

	closers []io.Closer
}

// New wires the runner and every report sink the settings enable.
// Optional backends that fail to initialize are logged and skipped.
func New(ctx context.Context, settings *config.Settings) *App {
	calls := calllog.NewLog(settings.Sync.CallLogSize)
	sink := calllog.Multi(calls, calllog.SinkFunc(metrics.RecordCall))

	app := &App{
		Settings: settings,
		State:    state.NewManager(),
		Calls:    calls,
	}

	sinks := []workflow.ReportSink{metrics.Reports{}}
	app.History = initializeHistory(settings.Redis, app)
	sinks = append(sinks, app.History)

	if a := initializeArchive(ctx, settings.S3); a != nil {
		app.Archiver = a
		sinks = append(sinks, a)
	}
	if p := initializePublisher(settings.Kafka, app); p != nil {
		sinks = append(sinks, p)
	}

	app.Runner, app.Ada = workflow.NewRunnerFromSettings(app.State, settings, sink, sinks...)
	if app.Archiver != nil {
		app.Runner.WithComparisonArchive(app.Archiver)
	}
	return app
}

// Close releases every backend connection
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			log.Printf("Warning: close failed: %v", err)
		}
	}
}

// initializeHistory returns the redis store when configured, the in-memory store otherwise
func initializeHistory(cfg config.RedisConfig, app *App) history.Store {
	if cfg.Addr == "" {
		return history.NewMemoryStore(cfg.MaxEntries)
	}
	store, err := history.NewRedisStore(cfg)
	if err != nil {
		log.Printf("Warning: %v (using in-memory history)", err)
		return history.NewMemoryStore(cfg.MaxEntries)
	}
	app.closers = append(app.closers, store)
	log.Printf("✅ Report history stored in redis at %s", cfg.Addr)
	return store
}

// initializeArchive returns an S3 archiver when a bucket is configured
func initializeArchive(ctx context.Context, cfg config.S3Config) *archive.Archiver {
	if cfg.Bucket == "" {
		return nil
	}
	s3c, err := archive.NewS3(ctx, cfg)
	if err != nil {
		log.Printf("Warning: failed to init S3 client: %v (archiving disabled)", err)
		return nil
	}
	log.Printf("✅ Archiving reports to s3://%s/%s", cfg.Bucket, cfg.Prefix)
	return archive.NewArchiver(s3c, cfg.Bucket, cfg.Prefix)
}

// initializePublisher returns a Kafka report publisher when brokers are configured
func initializePublisher(cfg config.KafkaConfig, app *App) *events.Publisher {
	if len(cfg.Brokers) == 0 {
		return nil
	}
	p, err := events.NewPublisher(cfg.Brokers, cfg.ReportTopic)
	if err != nil {
		log.Printf("Warning: %v (report publishing disabled)", err)
		return nil
	}
	app.closers = append(app.closers, p)
	log.Printf("✅ Publishing reports to Kafka topic %s", cfg.ReportTopic)
	return p
}
