package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quiz-admin-console/internal/app"
	"quiz-admin-console/internal/auth"
	"quiz-admin-console/internal/backend"
	"quiz-admin-console/internal/backend/backendtest"
	"quiz-admin-console/internal/domain"
	pgaudit "quiz-admin-console/internal/infra/postgres"
	pgmigrations "quiz-admin-console/internal/infra/postgres/migrations"
	infraredis "quiz-admin-console/internal/infra/redis"
	"quiz-admin-console/internal/validation"
)

func TestConsoleFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateAudit(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	fake := backendtest.New()
	defer fake.Close()
	fake.Update(func(s *backendtest.Server) {
		s.Categories = []domain.Category{{ID: "c1", Name: "Math", State: "Active"}}
		s.Questions = []domain.QuizQuestion{
			{ID: "q1", Category: domain.UnresolvedCategory("c1"), Question: "What is 2+2?", Options: []string{"3", "4"}, Answer: "4", Points: 10},
		}
	})

	client := backend.NewClient(fake.URL, 5*time.Second)
	audit := pgaudit.NewAuditLog(pool)
	cache := infraredis.NewPageCache(redisClient, 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, time.Hour)
	validator := validation.New()

	accounts := app.NewAccountService(client, sessions, auth.NewSigner("integration-secret", "console-it"), validator, audit, app.AccountOptions{
		TTL:          time.Hour,
		RequiredRole: "admin",
	})
	quizzes := app.NewQuizService(client, cache, audit, validator)

	signIn, err := accounts.Login(ctx, validation.LoginForm{Email: "admin@quiz.io", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	sess, err := accounts.Authenticate(ctx, signIn.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if _, err := quizzes.View(ctx, sess, app.ListQuery{}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if _, err := quizzes.View(ctx, sess, app.ListQuery{Category: "c1"}); err != nil {
		t.Fatalf("cached view: %v", err)
	}
	if got := fake.Calls("GET /quiz"); got != 1 {
		t.Fatalf("expected page served from redis, got %d list calls", got)
	}

	res, err := quizzes.CreateBulk(ctx, sess, domain.BulkQuizInput{
		CategoryID: "c1",
		Quizzes: []domain.BulkQuizItem{
			{Question: "What is 3*3?", Options: []string{"6", "9"}, Answer: "9", Points: 20},
		},
	}, app.ListQuery{})
	if err != nil {
		t.Fatalf("create bulk: %v", err)
	}
	if res.View.TotalVisible != 2 || res.View.Groups[0].Items[0].Question != "What is 3*3?" {
		t.Fatalf("expected refreshed view with the new question first, got %+v", res.View)
	}
	if got := fake.Calls("GET /quiz"); got != 2 {
		t.Fatalf("expected exactly one refetch, got %d list calls", got)
	}

	entries, err := audit.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("audit recent: %v", err)
	}
	if len(entries) != 2 || entries[0].Action != "create" || entries[1].Action != "login" {
		t.Fatalf("unexpected audit trail %+v", entries)
	}
	if entries[0].Actor != "admin@quiz.io" {
		t.Fatalf("expected actor e-mail, got %q", entries[0].Actor)
	}

	if err := accounts.Logout(ctx, sess); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := accounts.Authenticate(ctx, signIn.Token); err == nil {
		t.Fatalf("expected session gone after logout")
	}
}

func migrateAudit(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "console", "POSTGRES_PASSWORD": "consolepass", "POSTGRES_DB": "console"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://console:consolepass@%s:%s/console?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
