package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"docanalysis-backend/internal/analyses"
	"docanalysis-backend/internal/classification"
	"docanalysis-backend/internal/compliance"
	"docanalysis-backend/internal/documents"
	"docanalysis-backend/internal/llm"
	openai "docanalysis-backend/internal/llm/openai"
	"docanalysis-backend/internal/paragraphs"
	"docanalysis-backend/internal/services/health"
	"docanalysis-backend/internal/shared/config"
	"docanalysis-backend/internal/shared/server"
	"docanalysis-backend/internal/shared/storage/db"
	"docanalysis-backend/internal/shared/storage/object"
	localstore "docanalysis-backend/internal/shared/storage/object/local"
	s3store "docanalysis-backend/internal/shared/storage/object/s3"
	"docanalysis-backend/internal/textanalysis"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Redis            *redis.Client
	Store            object.ObjectStore
	DocumentsRepo    documents.DocumentsRepo
	AnalysesRepo     analyses.Repo
	Evaluator        *compliance.Evaluator
	Classifier       classification.Classifier
	DocumentsService *documents.Service
	AnalysesService  *analyses.Service
	DocumentsHandler *documents.Handler
	AnalysisHandler  *analyses.Handler
}

// Build prepares shared dependencies and the HTTP router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	app, err := BuildCore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   app.Config,
		Handlers: []server.RouteRegistrar{app.DocumentsHandler, app.AnalysisHandler},
		Health:   health.NewService(app.DB, app.Redis).Status,
	})
	return app, nil
}

// BuildCore wires storage, repositories and services without HTTP.
func BuildCore(ctx context.Context, cfg config.Config) (*App, error) {
	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}

	if err := buildServices(ctx, app); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

// Close releases pooled connections.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, s3store.Options{
			Region:   cfg.AWSRegion,
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			KMSKeyID: cfg.SSEKMSKeyID,
			Endpoint: cfg.S3Endpoint,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}

func buildEvaluator(cfg config.Config) (*compliance.Evaluator, error) {
	rules := compliance.DefaultRules()
	if cfg.MinWords > 0 {
		rules.MinWords = cfg.MinWords
	}
	if cfg.RequiredParagraphs > 0 {
		rules.RequiredParagraphs = cfg.RequiredParagraphs
	}
	if strings.TrimSpace(cfg.ReportTemplatePath) != "" {
		return compliance.NewEvaluator(rules, cfg.ReportTemplatePath)
	}
	return compliance.NewEvaluatorFromTemplate(rules, compliance.DefaultTemplate)
}

// buildClassifier returns nil when classification is disabled.
func buildClassifier(ctx context.Context, app *App) (classification.Classifier, error) {
	cfg := app.Config
	var base classification.Classifier
	switch cfg.LLMProvider {
	case "none":
		return nil, nil
	case "openai":
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, openai.Options{BaseURL: cfg.OpenAIBaseURL, Timeout: cfg.OpenAITimeout})
		if err != nil {
			return nil, err
		}
		base = classification.NewLLMClassifier(llm.WithRetry(client, llm.DefaultRetryDelay), cfg.ClassificationThreshold)
	default:
		base = classification.NewHeuristicClassifier(cfg.ClassificationThreshold)
	}

	if !cfg.EnableCache {
		return base, nil
	}

	var cache classification.Cache
	client, err := classification.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("bootstrap: redis unavailable, using in-memory classification cache: %v", err)
		cache = classification.NewMemoryCache()
	} else {
		app.Redis = client
		cache = classification.NewRedisCache(client)
	}
	return classification.NewCachedClassifier(base, cache, cfg.CacheTTL), nil
}

func buildServices(ctx context.Context, app *App) error {
	var docRepo documents.DocumentsRepo
	var analysisRepo analyses.Repo

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		analysisRepo = &analyses.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
	}

	evaluator, err := buildEvaluator(app.Config)
	if err != nil {
		return fmt.Errorf("load report template: %w", err)
	}

	classifier, err := buildClassifier(ctx, app)
	if err != nil {
		return fmt.Errorf("build classifier: %w", err)
	}

	docSvc := &documents.Service{
		Store:             app.Store,
		Repo:              docRepo,
		StorageProvider:   app.Config.ObjectStoreType,
		AllowedExtensions: app.Config.AllowedExtensions,
		MaxSizeBytes:      app.Config.MaxFileSizeBytes,
	}

	analysisSvc := &analyses.Service{
		Repo:       analysisRepo,
		DocRepo:    docRepo,
		Store:      app.Store,
		Evaluator:  evaluator,
		Analyzer:   textanalysis.NewAnalyzer(),
		Classifier: classifier,
		Paragraphs: paragraphs.Options{MinWords: app.Config.MinParagraphWords},
		TopN:       app.Config.TopNWords,
	}

	app.DocumentsRepo = docRepo
	app.AnalysesRepo = analysisRepo
	app.Evaluator = evaluator
	app.Classifier = classifier
	app.DocumentsService = docSvc
	app.AnalysesService = analysisSvc
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.AnalysisHandler = analyses.NewHandler(analysisSvc, docSvc)

	return nil
}
