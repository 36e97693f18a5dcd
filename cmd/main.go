// Command keiba-features runs one feature-matrix batch: it loads a race
// card, assembles point-in-time-safe histories, runs the extraction
// pipeline, and writes the matrix CSV and the run report.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	historystore "github.com/yoshikawa-river/keiba-features/internal/adapters/history"
	"github.com/yoshikawa-river/keiba-features/internal/adapters/pedigree"
	"github.com/yoshikawa-river/keiba-features/internal/adapters/sink"
	"github.com/yoshikawa-river/keiba-features/internal/config"
	"github.com/yoshikawa-river/keiba-features/internal/domain/history"
	"github.com/yoshikawa-river/keiba-features/internal/pipeline"
	"github.com/yoshikawa-river/keiba-features/internal/racegen"
	"github.com/yoshikawa-river/keiba-features/pkg/logger"
)

const (
	demoSeed      = 1
	demoRaces     = 3
	demoFieldSize = 12
	demoStarts    = 8
)

var errNoCard = errors.New("no card: pass -card <file> or -demo")

func main() {
	card := flag.String("card", "", "Path to a race-card JSON file (see gen-races)")
	demo := flag.Bool("demo", false, "Run on a generated demo card instead of -card")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log, *card, *demo); err != nil {
		log.Error(ctx, "batch failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger, cardPath string, demo bool) error {
	file, err := loadCard(cardPath, demo)
	if err != nil {
		return err
	}
	in, err := file.Input()
	if err != nil {
		return err
	}

	store, cleanup, err := buildStore(ctx, cfg, log, file)
	if err != nil {
		return err
	}
	defer cleanup()

	provider, err := buildPedigreeProvider(cfg, log, file)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{
		pipeline.WithWorkerCount(cfg.WorkerCount),
		pipeline.WithLogger(log.Named("pipeline")),
	}
	if provider != nil {
		opts = append(opts, pipeline.WithPedigreeProvider(provider))
	}
	orch, err := pipeline.New(store,
		pipeline.DefaultSchedule(cfg.Lookup, cfg.Windows, cfg.RecentFormDays), opts...)
	if err != nil {
		return err
	}

	res, err := orch.Run(ctx, in)
	if err != nil {
		return err
	}

	if err := sink.WriteMatrixFile(cfg.Output.MatrixPath, res.Table); err != nil {
		return err
	}
	if cfg.Output.ReportPath != "" {
		if err := sink.WriteReportFile(cfg.Output.ReportPath, res.Report); err != nil {
			return err
		}
	}
	if len(cfg.Kafka.Brokers) > 0 {
		reporter, err := sink.NewKafkaReporter(cfg.Kafka.Brokers, cfg.Kafka.Topic,
			sink.WithReporterLogger(log.Named("kafka")))
		if err != nil {
			return err
		}
		defer reporter.Close()
		if err := reporter.Publish(ctx, res.Report.RunID, res.Report); err != nil {
			// The matrix is already on disk; a lost report is not fatal.
			log.Warn(ctx, "report publish failed", logger.Error(err))
		}
	}

	log.Info(ctx, "matrix written",
		logger.String("path", cfg.Output.MatrixPath),
		logger.Int("rows", res.Report.Rows),
		logger.Int("columns", res.Report.ColumnCount))
	return nil
}

func loadCard(path string, demo bool) (*racegen.CardFile, error) {
	if demo {
		g := racegen.New(demoSeed)
		in := g.Card(time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 1), demoRaces, demoFieldSize)
		return racegen.Build(g, in, demoStarts), nil
	}
	if path == "" {
		return nil, errNoCard
	}
	return racegen.ReadCardFile(path)
}

// buildStore wires the history source: Postgres when a DSN is configured,
// otherwise an in-memory store fed from the card file.
func buildStore(ctx context.Context, cfg *config.Config, log logger.Logger, file *racegen.CardFile) (history.Accessor, func(), error) {
	if cfg.Postgres.DSN != "" {
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		acc, err := historystore.NewPostgresAccessor(pool,
			historystore.WithLogger(log.Named("postgres")),
			historystore.WithTable(cfg.Postgres.Table))
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return acc, pool.Close, nil
	}

	store := historystore.NewMemoryStore(historystore.WithShardCount(cfg.ShardCount))
	store.AddAll(file.History)
	return store, func() {}, nil
}

// buildPedigreeProvider serves the card's pedigree data, fronted by Redis
// when a cache address is configured. A card without pedigree data leaves
// the pedigree columns at their defaults.
func buildPedigreeProvider(cfg *config.Config, log logger.Logger, file *racegen.CardFile) (pedigree.Provider, error) {
	if len(file.Pedigrees) == 0 && len(file.SireStats) == 0 {
		return nil, nil
	}
	var p pedigree.Provider = pedigree.NewStaticProvider(file.Pedigrees, file.SireStats)
	if cfg.Redis.Addr == "" {
		return p, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return pedigree.NewCachedProvider(p, client,
		pedigree.WithTTL(time.Duration(cfg.Redis.TTLMinutes)*time.Minute),
		pedigree.WithCacheLogger(log.Named("pedigree-cache")))
}
