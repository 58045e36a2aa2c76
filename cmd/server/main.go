package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"blog-server/internal/auth"
	"blog-server/internal/config"
	apphttp "blog-server/internal/http"
	"blog-server/internal/metrics"
	"blog-server/internal/repository"
	"blog-server/internal/repository/mongo"
	"blog-server/internal/repository/sqlite"
	"blog-server/internal/service"
	"blog-server/internal/storage"
)

type stores struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	close    func()
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	configureLogger(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer repos.close()

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	hasher, err := auth.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatalf("setup hasher: %v", err)
	}
	tokens, err := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatalf("setup token codec: %v", err)
	}

	images := service.NewImageStore(storageSvc, cfg.Storage.KeyPrefix, cfg.Storage.MaxUploadBytes)
	userService := service.NewUserService(repos.users, repos.posts, hasher, tokens, images, logger)
	postService := service.NewPostService(repos.posts, repos.comments, repos.users, images, logger)
	commentService := service.NewCommentService(repos.comments, repos.posts)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		userService,
		postService,
		commentService,
		images,
		auth.NewAuthenticator(tokens, repos.users),
		metrics.New(),
		logger,
		apphttp.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			CookieSecure:   cfg.Auth.CookieSecure,
			TokenTTL:       tokens.TTL(),
			MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		},
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
}

func openStores(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*stores, error) {
	var repos stores

	switch cfg.Database.Driver {
	case config.DatabaseSQLite:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		repos = stores{
			users:    sqlite.NewUserRepository(db),
			posts:    sqlite.NewPostRepository(db),
			comments: sqlite.NewCommentRepository(db),
			close:    func() { db.Close() },
		}
		logger.Infof("using sqlite database %s", cfg.Database.Path)
	default:
		client, db, err := mongo.Connect(ctx, cfg.Database.URI, cfg.Database.Name)
		if err != nil {
			return nil, err
		}
		repos = stores{
			users:    mongo.NewUserRepository(db),
			posts:    mongo.NewPostRepository(db),
			comments: mongo.NewCommentRepository(db),
			close: func() {
				disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := client.Disconnect(disconnectCtx); err != nil {
					logger.Warnf("mongo disconnect: %v", err)
				}
			},
		}
		logger.Infof("using mongo database %s", cfg.Database.Name)
	}

	if err := repos.users.Init(ctx); err != nil {
		repos.close()
		return nil, fmt.Errorf("init user repository: %w", err)
	}
	if err := repos.posts.Init(ctx); err != nil {
		repos.close()
		return nil, fmt.Errorf("init post repository: %w", err)
	}
	if err := repos.comments.Init(ctx); err != nil {
		repos.close()
		return nil, fmt.Errorf("init comment repository: %w", err)
	}
	return &repos, nil
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	if cfg.Storage.Driver == config.StorageMinio {
		logger.Infof("using minio bucket %s at %s", cfg.Storage.Bucket, cfg.Storage.Endpoint)
		return storage.NewMinioService(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.UseSSL)
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client, cfg.Storage.Bucket), nil
}
