package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"quiz-admin-console/internal/app"
)

// Services bundles what the router serves.
type Services struct {
	Accounts  *app.AccountService
	Quizzes   *app.QuizService
	Catalog   *app.CatalogService
	Directory *app.DirectoryService
	Audit     app.AuditLog
}

// Options tunes the HTTP surface.
type Options struct {
	AllowedOrigins []string
	CookieSecure   bool
	Debounce       time.Duration
}

// NewRouter wires the console API.
func NewRouter(svc Services, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Without configured origins the console is same-origin only: no CORS
	// headers are sent, so credentialed cross-site requests are refused.
	origins := opts.AllowedOrigins
	if len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	authHandler := NewAuthHandler(svc.Accounts, opts.CookieSecure)
	quizHandler := NewQuizHandler(svc.Quizzes)
	catalogHandler := NewCatalogHandler(svc.Catalog)
	directoryHandler := NewDirectoryHandler(svc.Directory, svc.Audit)
	wsHandler := NewWSHandler(svc.Quizzes, opts.Debounce, originChecker(origins))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	authed := requireSession(svc.Accounts)
	r.GET("/ws/quizzes", authed, wsHandler.ServeWS)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/verify-otp", authHandler.VerifyOTP)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.POST("/logout", authed, authHandler.Logout)
			auth.POST("/change-password", authed, authHandler.ChangePassword)
			auth.GET("/me", authed, authHandler.Me)
		}

		quizzes := api.Group("/quizzes")
		quizzes.Use(authed)
		{
			quizzes.GET("", quizHandler.List)
			quizzes.POST("", quizHandler.Create)
			quizzes.PUT("/:id", quizHandler.Update)
			quizzes.DELETE("/:id", quizHandler.Delete)
		}

		categories := api.Group("/categories")
		categories.Use(authed)
		{
			categories.GET("", catalogHandler.ListCategories)
			categories.POST("", catalogHandler.CreateCategory)
			categories.PUT("/:id", catalogHandler.UpdateCategory)
			categories.DELETE("/:id", catalogHandler.DeleteCategory)
		}

		plans := api.Group("/subscription-plans")
		plans.Use(authed)
		{
			plans.GET("", catalogHandler.ListPlans)
			plans.POST("", catalogHandler.CreatePlan)
			plans.PUT("/:id", catalogHandler.UpdatePlan)
			plans.DELETE("/:id", catalogHandler.DeletePlan)
		}

		jokes := api.Group("/jokes")
		jokes.Use(authed)
		{
			jokes.GET("", catalogHandler.ListJokes)
			jokes.POST("", catalogHandler.CreateJoke)
			jokes.PUT("/:id", catalogHandler.UpdateJoke)
			jokes.DELETE("/:id", catalogHandler.DeleteJoke)
		}

		api.GET("/users", authed, directoryHandler.Users)
		api.GET("/ranking", authed, directoryHandler.Ranking)
		api.GET("/audit", authed, directoryHandler.Audit)
	}
	return r
}

func originChecker(origins []string) func(r *http.Request) bool {
	if len(origins) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
