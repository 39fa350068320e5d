package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hairalyzer-backend/internal/admin"
	"hairalyzer-backend/internal/chats"
	"hairalyzer-backend/internal/llm"
	openai "hairalyzer-backend/internal/llm/openai"
	"hairalyzer-backend/internal/services/health"
	"hairalyzer-backend/internal/shared/auth"
	"hairalyzer-backend/internal/shared/config"
	"hairalyzer-backend/internal/shared/server"
	"hairalyzer-backend/internal/shared/server/middleware"
	"hairalyzer-backend/internal/shared/storage/db"
	"hairalyzer-backend/internal/shared/storage/object"
	localstore "hairalyzer-backend/internal/shared/storage/object/local"
	miniostore "hairalyzer-backend/internal/shared/storage/object/minio"
	s3store "hairalyzer-backend/internal/shared/storage/object/s3"
	"hairalyzer-backend/internal/shared/telemetry"
	"hairalyzer-backend/internal/submissions"
)

const connectTimeout = 10 * time.Second

// App holds shared dependencies and the configured router.
type App struct {
	Config config.Config
	Router *gin.Engine

	DB    *sql.DB
	Mongo *mongo.Client
	Redis *redis.Client
	Store object.Store

	SubmissionsRepo    submissions.Repo
	ChatsRepo          chats.Repo
	SubmissionsService *submissions.Service
	ChatsService       *chats.Service
	AdminService       *admin.Service
	Health             *health.Service
	Verifier           auth.Verifier
	LLM                llm.Client

	SubmissionHandler *submissions.Handler
	ChatHandler       *chats.Handler
}

// Build wires configuration into repositories, services and the router.
func Build(cfg config.Config) (*App, error) {
	telemetry.Configure(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	app := &App{Config: cfg}
	if err := app.buildRepos(ctx); err != nil {
		app.Close(ctx)
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.Store = store

	if err := app.buildRedis(ctx); err != nil {
		app.Close(ctx)
		return nil, err
	}

	verifier, err := buildVerifier(ctx, cfg, app.tokenCache())
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.Verifier = verifier

	client, err := buildLLM(cfg)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.LLM = client

	app.buildServices()

	var uploadsDir string
	if local, ok := store.(*localstore.Store); ok {
		uploadsDir = local.Dir()
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		Verifier:          app.Verifier,
		Health:            app.Health,
		SubmissionHandler: app.SubmissionHandler,
		ChatHandler:       app.ChatHandler,
		UploadsDir:        uploadsDir,
		RateLimiter:       middleware.NewRateLimiter(nil),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":              cfg.Env,
		"submission_store": cfg.SubmissionStore,
		"object_store":     cfg.ObjectStoreType,
		"health_checks":    app.Health.Names(),
	})
	return app, nil
}

// BuildAdmin connects only the submission store for maintenance commands.
func BuildAdmin(cfg config.Config) (*App, error) {
	telemetry.Configure(cfg.LogLevel, cfg.LogFormat)
	app := &App{Config: cfg}
	if err := app.buildRepos(context.Background()); err != nil {
		app.Close(context.Background())
		return nil, err
	}
	app.AdminService = admin.NewService(app.SubmissionsRepo)
	return app, nil
}

// Close releases database and cache connections.
func (a *App) Close(ctx context.Context) {
	if a.Mongo != nil {
		_ = a.Mongo.Disconnect(ctx)
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil && !db.IsLambdaRuntime() {
		_ = a.DB.Close()
	}
}

func (a *App) buildRepos(ctx context.Context) error {
	cfg := a.Config
	switch cfg.SubmissionStore {
	case "memory":
		a.useMemoryRepos("SUBMISSION_STORE=memory")
		return nil
	case "mongo":
		return a.buildMongo(ctx)
	default:
		return a.buildPostgres(ctx)
	}
}

func (a *App) buildPostgres(ctx context.Context) error {
	cfg := a.Config
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			a.useMemoryRepos("DATABASE_URL empty")
			return nil
		}
		return fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err != nil {
		if cfg.IsDevLike() {
			a.useMemoryRepos("database connect failed: " + err.Error())
			return nil
		}
		return err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		if !db.IsLambdaRuntime() {
			_ = sqlDB.Close()
		}
		return err
	}

	a.DB = sqlDB
	a.SubmissionsRepo = &submissions.PGRepo{DB: sqlDB}
	a.ChatsRepo = &chats.PGRepo{DB: sqlDB}
	return nil
}

func (a *App) buildMongo(ctx context.Context) error {
	cfg := a.Config
	if strings.TrimSpace(cfg.MongoURI) == "" {
		if cfg.IsDevLike() {
			a.useMemoryRepos("MONGODB_URI empty")
			return nil
		}
		return fmt.Errorf("MONGODB_URI is required when SUBMISSION_STORE=mongo")
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return a.mongoUnavailable(fmt.Errorf("connect mongo: %w", err))
	}

	database := client.Database(cfg.MongoDatabase)
	subRepo := submissions.NewMongoRepo(database)
	chatRepo := chats.NewMongoRepo(database)
	if err := subRepo.EnsureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(ctx)
		return a.mongoUnavailable(fmt.Errorf("ensure submission indexes: %w", err))
	}
	if err := chatRepo.EnsureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(ctx)
		return a.mongoUnavailable(fmt.Errorf("ensure chat indexes: %w", err))
	}
	a.Mongo = client
	a.SubmissionsRepo = subRepo
	a.ChatsRepo = chatRepo
	return nil
}

// mongoUnavailable falls back to memory in dev, like an unreachable Postgres.
func (a *App) mongoUnavailable(err error) error {
	if a.Config.IsDevLike() {
		a.useMemoryRepos("mongo unavailable: " + err.Error())
		return nil
	}
	return err
}

func (a *App) useMemoryRepos(reason string) {
	telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": reason})
	a.SubmissionsRepo = submissions.NewMemoryRepo()
	a.ChatsRepo = chats.NewMemoryRepo()
}

func (a *App) buildRedis(ctx context.Context) error {
	if strings.TrimSpace(a.Config.RedisURL) == "" {
		return nil
	}
	opts, err := redis.ParseURL(a.Config.RedisURL)
	if err != nil {
		return fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if a.Config.IsDevLike() {
			telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"error": err.Error()})
			return nil
		}
		return fmt.Errorf("ping redis: %w", err)
	}
	a.Redis = client
	return nil
}

func (a *App) tokenCache() auth.TokenCache {
	if a.Redis != nil {
		return auth.NewRedisCache(a.Redis)
	}
	return auth.NewMemoryCache()
}

func (a *App) buildServices() {
	subSvc := submissions.NewService(a.SubmissionsRepo, a.Store, a.LLM)
	chatSvc := chats.NewService(subSvc, a.ChatsRepo, a.LLM)

	a.SubmissionsService = subSvc
	a.ChatsService = chatSvc
	a.AdminService = admin.NewService(a.SubmissionsRepo)
	a.SubmissionHandler = submissions.NewHandler(subSvc)
	a.ChatHandler = chats.NewHandler(chatSvc)
	a.Health = health.NewService(a.healthCheckers()...)
}

func (a *App) healthCheckers() []health.Checker {
	var checks []health.Checker
	switch {
	case a.DB != nil:
		checks = append(checks, health.SQL("database", a.DB))
	case a.Mongo != nil:
		checks = append(checks, health.Mongo("database", a.Mongo))
	default:
		checks = append(checks, health.Disabled("database"))
	}
	if a.Redis != nil {
		checks = append(checks, health.Redis("cache", a.Redis))
	} else {
		checks = append(checks, health.Disabled("cache"))
	}
	return checks
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:        cfg.AWSRegion,
			Bucket:        cfg.S3Bucket,
			Prefix:        cfg.S3Prefix,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	case "minio":
		return miniostore.New(ctx, miniostore.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL), nil
	}
}

func buildVerifier(ctx context.Context, cfg config.Config, cache auth.TokenCache) (auth.Verifier, error) {
	var chain auth.Chain
	for _, provider := range cfg.AuthProviders {
		switch provider {
		case "supabase":
			if strings.TrimSpace(cfg.SupabaseJWTSecret) != "" {
				v, err := auth.NewJWTVerifier(cfg.SupabaseJWTSecret)
				if err != nil {
					return nil, err
				}
				chain = append(chain, v)
			}
			if strings.TrimSpace(cfg.SupabaseURL) != "" {
				chain = append(chain, auth.NewSupabaseVerifier(cfg.SupabaseURL, cfg.SupabaseAnonKey, cache, cfg.AuthCacheTTL))
			}
		case "firebase":
			if strings.TrimSpace(cfg.FirebaseProjectID) == "" {
				telemetry.Warn("bootstrap.firebase_skipped", map[string]any{"reason": "FIREBASE_PROJECT_ID empty"})
				continue
			}
			v, err := auth.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
			if err != nil {
				return nil, err
			}
			chain = append(chain, v)
		default:
			telemetry.Warn("bootstrap.unknown_auth_provider", map[string]any{"provider": provider})
		}
	}
	if len(chain) == 0 {
		return nil, auth.ErrNoVerifiers
	}
	return chain, nil
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		if !cfg.IsDevLike() {
			return nil, errors.New("OPENAI_API_KEY is required")
		}
		telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"reason": "OPENAI_API_KEY empty"})
		return llm.PlaceholderClient{}, nil
	}
	return openai.NewClient(openai.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		VisionModel: cfg.VisionModel,
		ChatModel:   cfg.ChatModel,
		Timeout:     cfg.OpenAITimeout,
	})
}
