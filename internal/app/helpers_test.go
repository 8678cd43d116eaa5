package app_test

import (
	"testing"
	"time"

	"quiz-admin-console/internal/app"
	"quiz-admin-console/internal/auth"
	"quiz-admin-console/internal/backend"
	"quiz-admin-console/internal/backend/backendtest"
	"quiz-admin-console/internal/domain"
	"quiz-admin-console/internal/infra/memory"
	"quiz-admin-console/internal/validation"
)

type testEnv struct {
	fake      *backendtest.Server
	audit     *memory.AuditLog
	sessions  *memory.SessionStore
	quizzes   *app.QuizService
	catalog   *app.CatalogService
	directory *app.DirectoryService
	accounts  *app.AccountService
	sess      domain.Session
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fake := backendtest.New()
	t.Cleanup(fake.Close)
	seed(fake)

	client := backend.NewClient(fake.URL, 5*time.Second)
	cache := memory.NewPageCache(time.Minute)
	audit := memory.NewAuditLog(0)
	sessions := memory.NewSessionStore()
	validator := validation.New()

	return &testEnv{
		fake:      fake,
		audit:     audit,
		sessions:  sessions,
		quizzes:   app.NewQuizService(client, cache, audit, validator),
		catalog:   app.NewCatalogService(client, cache, audit, validator),
		directory: app.NewDirectoryService(client),
		accounts: app.NewAccountService(client, sessions, auth.NewSigner("test-secret", "console-test"), validator, audit, app.AccountOptions{
			TTL:          time.Hour,
			RequiredRole: "admin",
		}),
		sess: domain.Session{ID: "s1", Email: "admin@quiz.io", AccessToken: fake.AccessToken},
	}
}

func seed(fake *backendtest.Server) {
	fake.Update(seedData)
}

func seedData(fake *backendtest.Server) {
	fake.Categories = []domain.Category{
		{ID: "c1", Name: "Math", State: "Active"},
		{ID: "c2", Name: "Science", State: "Active"},
	}
	fake.Questions = []domain.QuizQuestion{
		{ID: "q1", Category: domain.UnresolvedCategory("c1"), Question: "What is 2+2?", Options: []string{"3", "4"}, Answer: "4", Points: 10},
		{ID: "q2", Category: domain.UnresolvedCategory("c2"), Question: "Water formula?", Options: []string{"H2O", "CO2"}, Answer: "H2O", Points: 5},
		{ID: "q3", Category: domain.UnresolvedCategory("c1"), Question: "What is 3*3?", Options: []string{"6", "9"}, Answer: "9", Points: 20},
		{ID: "q4", Category: domain.AbsentCategory(), Question: "Orphan question?", Options: []string{"yes", "no"}, Answer: "yes", Points: 1},
	}
}

func boolPtr(v bool) *bool { return &v }
