package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"devconnector/internal/cache"
	"devconnector/internal/config"
	"devconnector/internal/database"
	"devconnector/internal/docstore"
	"devconnector/internal/handler"
	"devconnector/internal/logging"
	"devconnector/internal/queue"
	"devconnector/internal/ratelimit"
	"devconnector/internal/redis"
	"devconnector/internal/repository"
	"devconnector/internal/repository/mongostore"
	"devconnector/internal/service"
	"devconnector/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// stores is the repository set selected by STORE_DRIVER.
type stores struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	posts    repository.PostRepository
	close    func(ctx context.Context) error
}

// Run starts the API server and blocks until ctx is cancelled, then drains
// in-flight requests.
func Run(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(cfg.Env, cfg.LogLevel)
	logger := logging.For("server")
	if !cfg.EnvFileLoaded {
		logger.Info().Msg("no .env file loaded, using environment variables")
	}

	// 2. Connect to the document or relational store
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			logger.Error().Err(err).Msg("close store")
		}
	}()

	// 3. Optional Redis: event stream, GitHub cache, shared rate limit
	var (
		publisher   queue.Publisher
		githubCache cache.GithubCache
		limiter     ratelimit.Limiter
	)
	window := time.Duration(cfg.RateLimitWindow) * time.Second
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		publisher = queue.NewPublisher(rdb)
		githubCache = cache.NewGithubCache(rdb)
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimitAuth, window)
		logger.Info().Msg("redis connected")
	} else {
		limiter = ratelimit.NewLocalLimiter(cfg.RateLimitAuth, window)
		logger.Warn().Msg("REDIS_URL not set, using in-process rate limit without cache or event stream")
	}

	// 4. Optional object storage for avatars
	var avatars service.Avatars
	if cfg.MediaEnabled() {
		bucket, err := storage.NewBucket(ctx, storage.R2Options(cfg))
		if err != nil {
			return fmt.Errorf("failed to init object storage: %w", err)
		}
		avatars = service.NewAvatarService(bucket)
	} else {
		logger.Warn().Msg("R2 not configured, avatar uploads disabled")
	}

	var mailer service.Mailer
	if cfg.SendGridAPIKey != "" {
		mailer = service.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom, cfg.MailFromName)
	} else {
		mailer = service.NewLogMailer()
		logger.Warn().Msg("SENDGRID_API_KEY not set, reset emails are logged instead of sent")
	}

	// 5. Services and handlers
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL())
	userService := service.NewUserService(st.users, tokens, publisher, avatars)
	recoveryService := service.NewRecoveryService(st.users, mailer, cfg.ClientURL, cfg.ResetTTL())
	profileService := service.NewProfileService(st.profiles)
	postService := service.NewPostService(st.posts, st.users)
	githubService := service.NewGithubService(cfg.GithubAPIURL, cfg.GithubToken, githubCache, time.Duration(cfg.GithubCacheTTL)*time.Second)

	router := NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService, recoveryService),
		UserHandler:    handler.NewUserHandler(userService),
		ProfileHandler: handler.NewProfileHandler(profileService, githubService),
		PostHandler:    handler.NewPostHandler(postService),
		Tokens:         tokens,
		Limiter:        limiter,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
	})

	// 6. Serve until cancelled
	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		db, err := docstore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		if err := docstore.EnsureIndexes(ctx, db); err != nil {
			_ = db.Client().Disconnect(ctx)
			return nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		return &stores{
			users:    mongostore.NewUserRepository(db),
			profiles: mongostore.NewProfileRepository(db),
			posts:    mongostore.NewPostRepository(db),
			close:    db.Client().Disconnect,
		}, nil

	default:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return &stores{
			users:    repository.NewUserRepository(db),
			profiles: repository.NewProfileRepository(db),
			posts:    repository.NewPostRepository(db),
			close:    func(context.Context) error { return db.Close() },
		}, nil
	}
}
