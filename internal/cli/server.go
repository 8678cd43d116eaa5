package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-admin-console/internal/app"
	"quiz-admin-console/internal/auth"
	"quiz-admin-console/internal/backend"
	"quiz-admin-console/internal/config"
	"quiz-admin-console/internal/infra/memory"
	pgaudit "quiz-admin-console/internal/infra/postgres"
	redisinfra "quiz-admin-console/internal/infra/redis"
	"quiz-admin-console/internal/scheduler"
	transport "quiz-admin-console/internal/transport/http"
	"quiz-admin-console/internal/validation"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the console server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// stack is the wired application: services plus the resources they hold.
type stack struct {
	cfg       config.Config
	accounts  *app.AccountService
	quizzes   *app.QuizService
	catalog   *app.CatalogService
	directory *app.DirectoryService
	audit     app.AuditLog
	closers   []func()
}

func (s *stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// buildStack picks Redis and Postgres when configured and falls back to the
// in-memory implementations otherwise.
func buildStack(ctx context.Context, cfg config.Config) (*stack, error) {
	s := &stack{cfg: cfg}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.closers = append(s.closers, func() { _ = redisClient.Close() })
	}

	var auditLog app.AuditLog = memory.NewAuditLog(0)
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			s.Close()
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		auditLog = pgaudit.NewAuditLog(pool)
	}
	s.audit = auditLog

	sessionTTL := config.TTLDuration(cfg.Session.TTL, 12*time.Hour)
	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 30*time.Second)

	var cache app.PageCache
	var sessions app.SessionRepository
	if redisClient != nil {
		cache = redisinfra.NewPageCache(redisClient, cacheTTL)
		sessions = redisinfra.NewSessionStore(redisClient, sessionTTL)
	} else {
		cache = memory.NewPageCache(cacheTTL)
		sessions = memory.NewSessionStore()
	}

	secret := cfg.Session.Secret
	if secret == "" {
		log.Printf("session secret not configured, using an ephemeral one")
		secret = uuidSecret()
	}

	client := backend.NewClient(cfg.Backend.BaseURL, config.TTLDuration(cfg.Backend.Timeout, 30*time.Second))
	validator := validation.New()

	s.accounts = app.NewAccountService(client, sessions, auth.NewSigner(secret, "quiz-admin-console"), validator, auditLog, app.AccountOptions{
		TTL:          sessionTTL,
		RequiredRole: cfg.Session.RequiredRole,
	})
	s.quizzes = app.NewQuizService(client, cache, auditLog, validator)
	s.catalog = app.NewCatalogService(client, cache, auditLog, validator)
	s.directory = app.NewDirectoryService(client)
	return s, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	s, err := buildStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	sweeper, err := scheduler.NewSweeper(s.accounts, cfg.Session.SweepSchedule)
	if err != nil {
		return err
	}
	sweeper.Start()

	router := transport.NewRouter(transport.Services{
		Accounts:  s.accounts,
		Quizzes:   s.quizzes,
		Catalog:   s.catalog,
		Directory: s.directory,
		Audit:     s.audit,
	}, transport.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		CookieSecure:   cfg.Session.CookieSecure,
		Debounce:       config.TTLDuration(cfg.Search.Debounce, app.DefaultDebounce),
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("starting quiz admin console on :%s (backend %s)", finalPort, cfg.Backend.BaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sweeper.Stop(shutdownCtx)
	return server.Shutdown(shutdownCtx)
}

// uuidSecret returns a random signing secret; sessions do not survive a restart.
func uuidSecret() string {
	return uuid.NewString() + uuid.NewString()
}
