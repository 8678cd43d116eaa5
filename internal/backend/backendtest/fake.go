// Package backendtest provides an in-process fake of the platform REST backend
// for tests that exercise the console end to end.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"quiz-admin-console/internal/domain"
)

// Server is a fake backend holding its data in memory. Fields may be seeded
// before the first request.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	Email       string
	Password    string
	Role        string
	AccessToken string
	OTP         string
	PageSize    int
	// NameCategories controls whether questions carry the category object or
	// only its id.
	NameCategories bool

	Questions  []domain.QuizQuestion
	Categories []domain.Category
	Plans      []domain.SubscriptionPlan
	Jokes      []domain.Joke
	Users      []domain.User
	Ranking    []domain.RankingEntry

	calls    map[string]int
	failures map[string]failure
	nextID   int
}

type failure struct {
	status  int
	message string
}

// New starts a fake backend with one admin account.
func New() *Server {
	s := &Server{
		Email:          "admin@quiz.io",
		Password:       "secret123",
		Role:           "admin",
		AccessToken:    "backend-access",
		OTP:            "123456",
		PageSize:       10,
		NameCategories: true,
		calls:          map[string]int{},
		failures:       map[string]failure{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("POST /auth/change-password", s.authed(s.changePassword))
	mux.HandleFunc("POST /auth/forget-password", s.forgotPassword)
	mux.HandleFunc("POST /auth/verify-otp", s.verifyOTP)
	mux.HandleFunc("POST /auth/reset-password", s.resetPassword)
	mux.HandleFunc("GET /quiz", s.authed(s.listQuestions))
	mux.HandleFunc("POST /quiz", s.authed(s.createQuestions))
	mux.HandleFunc("PUT /quiz/{id}", s.authed(s.updateQuestion))
	mux.HandleFunc("DELETE /quiz/{id}", s.authed(s.deleteQuestion))
	mux.HandleFunc("GET /quiz-category", s.authed(s.listCategories))
	mux.HandleFunc("POST /quiz-category", s.authed(s.saveCategory))
	mux.HandleFunc("PUT /quiz-category/{id}", s.authed(s.saveCategory))
	mux.HandleFunc("DELETE /quiz-category/{id}", s.authed(s.deleteCategory))
	mux.HandleFunc("GET /subscription-plan", s.authed(s.listPlans))
	mux.HandleFunc("POST /subscription-plan", s.authed(s.savePlan))
	mux.HandleFunc("PUT /subscription-plan/{id}", s.authed(s.savePlan))
	mux.HandleFunc("DELETE /subscription-plan/{id}", s.authed(s.deletePlan))
	mux.HandleFunc("GET /joke", s.authed(s.listJokes))
	mux.HandleFunc("POST /joke", s.authed(s.saveJoke))
	mux.HandleFunc("PUT /joke/{id}", s.authed(s.saveJoke))
	mux.HandleFunc("DELETE /joke/{id}", s.authed(s.deleteJoke))
	mux.HandleFunc("GET /users", s.authed(s.listUsers))
	mux.HandleFunc("GET /ranking", s.authed(s.listRanking))
	s.Server = httptest.NewServer(s.count(mux))
	return s
}

// Update mutates the fake's data under its lock.
func (s *Server) Update(fn func(s *Server)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// Calls reports how many requests hit "METHOD /path".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// ResetCalls clears the request counters.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = map[string]int{}
}

// FailRoute makes every request to "METHOD /path" answer with status and
// message until the fake is closed.
func (s *Server) FailRoute(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, message: message}
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.calls[route]++
		f, failing := s.failures[route]
		s.mu.Unlock()
		if failing {
			fail(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		allowed := r.Header.Get("Authorization") == "Bearer "+s.AccessToken
		s.mu.Unlock()
		if !allowed {
			fail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}

func ok(w http.ResponseWriter, status int, message string, data any, paging *domain.Pagination) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"status": true, "message": message, "data": data}
	if paging != nil {
		body["pagination"] = paging
	}
	_ = json.NewEncoder(w).Encode(body)
}

func fail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": false, "message": message})
}

func (s *Server) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func paginate(r *http.Request, total, fallback int) (int, int, domain.Pagination) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = fallback
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	totalPages := (total + limit - 1) / limit
	p := domain.Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
	if end > start {
		p.ShowingFrom, p.ShowingTo = start+1, end
	}
	return start, end, p
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	s.mu.Lock()
	defer s.mu.Unlock()
	if body.Email != s.Email || body.Password != s.Password {
		fail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	ok(w, http.StatusOK, "Login successful", map[string]any{
		"_id":      "user-admin",
		"fullName": "Console Admin",
		"email":    s.Email,
		"role":     s.Role,
		"token":    map[string]string{"accessToken": s.AccessToken, "refreshToken": "backend-refresh"},
	}, nil)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Current string `json:"currentPassword"`
		New     string `json:"newPassword"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	s.mu.Lock()
	defer s.mu.Unlock()
	if body.Current != s.Password {
		fail(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	s.Password = body.New
	ok(w, http.StatusOK, "Password changed successfully", nil, nil)
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	s.mu.Lock()
	defer s.mu.Unlock()
	if body.Email != s.Email {
		fail(w, http.StatusNotFound, "User not found")
		return
	}
	ok(w, http.StatusOK, "OTP sent to your email", nil, nil)
}

func (s *Server) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OTP string `json:"otp"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	s.mu.Lock()
	defer s.mu.Unlock()
	if body.OTP != s.OTP {
		fail(w, http.StatusBadRequest, "Invalid OTP")
		return
	}
	ok(w, http.StatusOK, "OTP verified", nil, nil)
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OTP string `json:"otp"`
		New string `json:"newPassword"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	s.mu.Lock()
	defer s.mu.Unlock()
	if body.OTP != s.OTP {
		fail(w, http.StatusBadRequest, "Invalid OTP")
		return
	}
	s.Password = body.New
	ok(w, http.StatusOK, "Password reset successfully", nil, nil)
}

func (s *Server) listQuestions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	search := strings.ToLower(r.URL.Query().Get("search"))
	matched := []domain.QuizQuestion{}
	for _, q := range s.Questions {
		if search == "" || strings.Contains(strings.ToLower(q.Question), search) {
			matched = append(matched, s.presentQuestion(q))
		}
	}
	start, end, paging := paginate(r, len(matched), s.PageSize)
	ok(w, http.StatusOK, "", matched[start:end], &paging)
}

func (s *Server) presentQuestion(q domain.QuizQuestion) domain.QuizQuestion {
	if q.Category.Kind == domain.CategoryAbsent {
		return q
	}
	if !s.NameCategories {
		q.Category = domain.UnresolvedCategory(q.Category.ID)
		return q
	}
	for _, c := range s.Categories {
		if c.ID == q.Category.ID {
			q.Category = domain.ResolvedCategory(c.ID, c.Name)
			return q
		}
	}
	return q
}

type questionBody struct {
	Category string                `json:"quizCategory"`
	Question string                `json:"quizQuestion"`
	Options  []string              `json:"quizOptions"`
	Answer   string                `json:"quizAnswer"`
	Points   float64               `json:"quizPoint"`
	Quizzes  []domain.BulkQuizItem `json:"quizzes"`
}

func (s *Server) createQuestions(w http.ResponseWriter, r *http.Request) {
	var body questionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fail(w, http.StatusBadRequest, "Invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := body.Quizzes
	if len(items) == 0 {
		items = []domain.BulkQuizItem{{Question: body.Question, Options: body.Options, Answer: body.Answer, Points: body.Points}}
	}
	created := make([]domain.QuizQuestion, 0, len(items))
	for _, it := range items {
		q := domain.QuizQuestion{
			ID:       s.newID("quiz"),
			Category: domain.UnresolvedCategory(body.Category),
			Question: it.Question,
			Options:  it.Options,
			Answer:   it.Answer,
			Points:   it.Points,
			IsActive: true,
		}
		s.Questions = append(s.Questions, q)
		created = append(created, q)
	}
	ok(w, http.StatusCreated, "Quiz created", created, nil)
}

func (s *Server) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var body questionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fail(w, http.StatusBadRequest, "Invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, q := range s.Questions {
		if q.ID == r.PathValue("id") {
			q.Category = domain.UnresolvedCategory(body.Category)
			q.Question, q.Options, q.Answer, q.Points = body.Question, body.Options, body.Answer, body.Points
			s.Questions[i] = q
			ok(w, http.StatusOK, "Quiz updated", q, nil)
			return
		}
	}
	fail(w, http.StatusNotFound, "Quiz not found")
}

func (s *Server) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, q := range s.Questions {
		if q.ID == r.PathValue("id") {
			s.Questions = append(s.Questions[:i], s.Questions[i+1:]...)
			ok(w, http.StatusOK, "Quiz deleted", nil, nil)
			return
		}
	}
	fail(w, http.StatusNotFound, "Quiz not found")
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end, paging := paginate(r, len(s.Categories), 50)
	ok(w, http.StatusOK, "", s.Categories[start:end], &paging)
}

func (s *Server) saveCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		fail(w, http.StatusBadRequest, "Expected multipart form")
		return
	}
	points, _ := strconv.ParseFloat(r.FormValue("quizPoint"), 64)
	total, _ := strconv.ParseFloat(r.FormValue("quizTotalTime"), 64)
	c := domain.Category{
		Name:      r.FormValue("quizCategoryName"),
		State:     r.FormValue("quizCategoryState"),
		Points:    points,
		TotalTime: total,
		Details:   r.FormValue("quizCategoryDetails"),
	}
	if _, header, err := r.FormFile("quizCategoryImage"); err == nil {
		c.Image = "/uploads/" + header.Filename
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	if id == "" {
		c.ID = s.newID("cat")
		s.Categories = append(s.Categories, c)
		ok(w, http.StatusCreated, "Category created", c, nil)
		return
	}
	for i := range s.Categories {
		if s.Categories[i].ID == id {
			c.ID = id
			if c.Image == "" {
				c.Image = s.Categories[i].Image
			}
			s.Categories[i] = c
			ok(w, http.StatusOK, "Category updated", c, nil)
			return
		}
	}
	fail(w, http.StatusNotFound, "Category not found")
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	for i, c := range s.Categories {
		if c.ID == id {
			s.Categories = append(s.Categories[:i], s.Categories[i+1:]...)
			kept := s.Questions[:0]
			for _, q := range s.Questions {
				if q.Category.ID != id {
					kept = append(kept, q)
				}
			}
			s.Questions = kept
			ok(w, http.StatusOK, "Category deleted", nil, nil)
			return
		}
	}
	fail(w, http.StatusNotFound, "Category not found")
}

func (s *Server) listPlans(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok(w, http.StatusOK, "", s.Plans, nil)
}

func (s *Server) savePlan(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name    string          `json:"subscriptionPlanName"`
		Monthly decimal.Decimal `json:"subscriptionMonthlyPlanPrice"`
		Yearly  decimal.Decimal `json:"subscriptionYearlyPlanPrice"`
		Details []string        `json:"subscriptionDetailsList"`
		Allowed []string        `json:"allowedQuizCategories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fail(w, http.StatusBadRequest, "Invalid body")
		return
	}
	p := domain.SubscriptionPlan{
		Name:              body.Name,
		MonthlyPrice:      body.Monthly,
		YearlyPrice:       body.Yearly,
		Details:           body.Details,
		AllowedCategories: body.Allowed,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	if id == "" {
		p.ID = s.newID("plan")
		s.Plans = append(s.Plans, p)
		ok(w, http.StatusCreated, "Plan created", p, nil)
		return
	}
	for i := range s.Plans {
		if s.Plans[i].ID == id {
			p.ID = id
			s.Plans[i] = p
			ok(w, http.StatusOK, "Plan updated", p, nil)
			return
		}
	}
	fail(w, http.StatusNotFound, "Plan not found")
}

func (s *Server) deletePlan(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.Plans {
		if p.ID == r.PathValue("id") {
			s.Plans = append(s.Plans[:i], s.Plans[i+1:]...)
			ok(w, http.StatusOK, "Plan deleted", nil, nil)
			return
		}
	}
	fail(w, http.StatusNotFound, "Plan not found")
}

func (s *Server) listJokes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end, paging := paginate(r, len(s.Jokes), s.PageSize)
	ok(w, http.StatusOK, "", s.Jokes[start:end], &paging)
}

func (s *Server) saveJoke(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		fail(w, http.StatusBadRequest, "Expected multipart form")
		return
	}
	j := domain.Joke{Text: r.FormValue("text"), Answer: r.FormValue("jokeAnswer")}
	_, header, fileErr := r.FormFile("jokeImage")
	if fileErr == nil {
		j.ImageURL = "/uploads/" + header.Filename
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	if id == "" {
		if fileErr != nil {
			fail(w, http.StatusBadRequest, "Joke image is required")
			return
		}
		j.ID = s.newID("joke")
		s.Jokes = append(s.Jokes, j)
		ok(w, http.StatusCreated, "Joke created", j, nil)
		return
	}
	for i := range s.Jokes {
		if s.Jokes[i].ID == id {
			j.ID = id
			if j.ImageURL == "" {
				j.ImageURL = s.Jokes[i].ImageURL
			}
			s.Jokes[i] = j
			ok(w, http.StatusOK, "Joke updated", j, nil)
			return
		}
	}
	fail(w, http.StatusNotFound, "Joke not found")
}

func (s *Server) deleteJoke(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, j := range s.Jokes {
		if j.ID == r.PathValue("id") {
			s.Jokes = append(s.Jokes[:i], s.Jokes[i+1:]...)
			ok(w, http.StatusOK, "Joke deleted", nil, nil)
			return
		}
	}
	fail(w, http.StatusNotFound, "Joke not found")
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end, paging := paginate(r, len(s.Users), s.PageSize)
	ok(w, http.StatusOK, "", s.Users[start:end], &paging)
}

func (s *Server) listRanking(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end, paging := paginate(r, len(s.Ranking), s.PageSize)
	ok(w, http.StatusOK, "", map[string]any{"ranking": s.Ranking[start:end], "pagination": paging}, nil)
}
