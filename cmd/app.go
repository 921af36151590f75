package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/ai/gemini"
	"github.com/spigell/cv-screener/internal/evaluation"
	"github.com/spigell/cv-screener/internal/kvstore"
	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/pdftext"
	"github.com/spigell/cv-screener/internal/queue"
	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/secrets"
	"github.com/spigell/cv-screener/internal/store"
	"github.com/spigell/cv-screener/internal/store/memory"
	"github.com/spigell/cv-screener/internal/store/postgres"
	"github.com/spigell/cv-screener/internal/store/postgrest"
	"go.uber.org/zap"
)

const (
	queueKey   = "cv-screener:queue"
	summaryKey = "cv-screener:postings-summary"
	summaryTTL = 5 * time.Minute
)

// application holds the wired components shared by the commands.
type application struct {
	config    *Config
	logger    *zap.Logger
	store     store.Store
	extractor *pdftext.Extractor
	fields    ai.FieldExtractor
	scorer    ai.Scorer
	drafter   ai.PostingDrafter
	summary   kvstore.Cache[recruiting.PostingSummary]
	queue     *queue.Queue
	pipeline  *evaluation.Pipeline

	closers []func()
}

// newLogger builds the logger from the persistent flags.
func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// setup reads the config and wires every component. Failures are fatal.
func setup(ctx context.Context, log *zap.Logger) *application {
	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	log.Info("starting the cv-screener", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	a := &application{config: config, logger: log}

	a.store, err = newStore(ctx, config.Database, log)
	if err != nil {
		log.Fatal("connecting to the database", zap.String("driver", config.Database.Driver), zap.Error(err))
	}
	a.closers = append(a.closers, a.store.Close)

	list, summary, closeKV, err := newKV(ctx, config.Redis, log)
	if err != nil {
		log.Fatal("connecting to redis", zap.Error(err))
	}
	a.closers = append(a.closers, closeKV)
	a.summary = summary

	a.extractor = newExtractor(config.Extraction, log)

	if err := a.setupAI(ctx); err != nil {
		log.Fatal(
			"configuring the ai service",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or ai.gemini.api-key-file in the configuration file"),
		)
	}

	a.queue = queue.New(list, a.extractor, a.fields, a.store, a.summary, config.Queue, log)
	a.pipeline = evaluation.New(a.store, a.extractor, a.scorer, a.summary, log)

	recovered, err := a.queue.Recover(ctx)
	if err != nil {
		log.Fatal("recovering the queue", zap.Error(err))
	}
	if recovered > 0 {
		log.Warn("queue items were interrupted by a restart", zap.Int("count", recovered))
	}

	return a
}

func (a *application) setupAI(ctx context.Context) error {
	cfg := a.config.AI
	if cfg.Gemini == nil {
		return fmt.Errorf("ai.gemini section is required")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return err
	}

	genLogger := a.logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return err
	}

	aiLogger := logger.WithCommonFields(a.logger, "gemini", cfg.Gemini.Model)
	a.fields = gemini.NewFieldExtractor(generator, cfg.Gemini.MaxLogLength, aiLogger)
	a.scorer = gemini.NewScorer(generator, cfg.Language, cfg.Gemini.MaxLogLength, aiLogger)
	a.drafter = gemini.NewDrafter(generator, cfg.Language, cfg.Gemini.MaxLogLength, aiLogger)
	return nil
}

func newExtractor(cfg pdftext.Config, log *zap.Logger) *pdftext.Extractor {
	return pdftext.New(
		pdftext.DocconvTextLayer{},
		pdftext.PdftoppmRasterizer{},
		pdftext.TesseractRecognizer{},
		cfg,
		log.Named("pdftext"),
	)
}

// Close releases the database and redis connections.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}

func newStore(ctx context.Context, cfg *DatabaseConfig, log *zap.Logger) (store.Store, error) {
	switch cfg.Driver {
	case DriverPostgres:
		url, err := secrets.Load(secrets.Source{
			Name:  "database url",
			Value: cfg.URL,
			Env:   "DATABASE_URL",
			File:  cfg.URLFile,
		})
		if err != nil {
			return nil, err
		}

		st, err := postgres.Connect(ctx, url, log.Named("postgres"))
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			if err := st.Migrate(ctx); err != nil {
				st.Close()
				return nil, err
			}
		}
		return st, nil
	case DriverPostgREST:
		if cfg.PostgREST == nil || strings.TrimSpace(cfg.PostgREST.URL) == "" {
			return nil, fmt.Errorf("database.postgrest.url is required for the postgrest driver")
		}

		key, err := secrets.Load(secrets.Source{
			Name:  "postgrest api key",
			Value: cfg.PostgREST.APIKey,
			Env:   "POSTGREST_API_KEY",
			File:  cfg.PostgREST.APIKeyFile,
		})
		if err != nil {
			return nil, err
		}
		return postgrest.New(cfg.PostgREST.URL, key, log.Named("postgrest")), nil
	default:
		log.Warn("using the in-memory store, data is lost on exit")
		return memory.New(), nil
	}
}

// newKV returns the queue list and the postings summary cache. Redis backs
// both when configured, otherwise they live in process memory.
func newKV(ctx context.Context, cfg *RedisConfig, log *zap.Logger) (kvstore.List[queue.Item], kvstore.Cache[recruiting.PostingSummary], func(), error) {
	if cfg == nil || strings.TrimSpace(cfg.URL) == "" {
		log.Debug("redis is not configured, the queue will not survive restarts")
		return kvstore.NewMemoryList[queue.Item](),
			kvstore.NewMemoryCache[recruiting.PostingSummary](summaryTTL),
			func() {},
			nil
	}

	client, err := kvstore.NewRedisClient(ctx, cfg.URL)
	if err != nil {
		return nil, nil, nil, err
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn("closing redis", zap.Error(err))
		}
	}
	return kvstore.NewRedisList[queue.Item](client, queueKey),
		kvstore.NewRedisCache[recruiting.PostingSummary](client, summaryKey, summaryTTL),
		closeFn,
		nil
}

// redacted returns a copy of cfg without inline secrets, for debug output.
func redacted(cfg *Config) Config {
	out := *cfg
	if cfg.Database != nil {
		db := *cfg.Database
		if db.URL != "" {
			db.URL = "***"
		}
		if db.PostgREST != nil {
			pr := *db.PostgREST
			if pr.APIKey != "" {
				pr.APIKey = "***"
			}
			db.PostgREST = &pr
		}
		out.Database = &db
	}
	if cfg.AI != nil && cfg.AI.Gemini != nil {
		aiCfg := *cfg.AI
		g := *cfg.AI.Gemini
		if g.APIKey != "" {
			g.APIKey = "***"
		}
		aiCfg.Gemini = &g
		out.AI = &aiCfg
	}
	return out
}
