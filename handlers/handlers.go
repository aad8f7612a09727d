package handlers

import (
	"encoding/json"
	"net/http"

	"african-culture-quiz/db"
	"african-culture-quiz/jobs"
	"african-culture-quiz/quiz"
	"african-culture-quiz/utils"
)

// Config carries the handler-level knobs from main.
type Config struct {
	WebhookSecret   string // HMAC secret shared with the payment provider
	AdminTokenHash  string // bcrypt hash of the admin refresh token
	CheckoutBaseURL string // payment provider checkout endpoint
}

// API wrapper to hold all handlers
type API struct {
	questionHandlers    *QuestionHandlers
	leaderboardHandlers *LeaderboardHandlers
	paymentHandlers     *PaymentHandlers
	adminHandlers       *AdminHandlers
}

func NewAPI(service *quiz.Service, translations *quiz.Translations, database *db.DB, jobManager *jobs.JobManager, cfg Config) *API {
	return &API{
		questionHandlers:    NewQuestionHandlers(service, translations),
		leaderboardHandlers: NewLeaderboardHandlers(database),
		paymentHandlers:     NewPaymentHandlers(database, jobManager, cfg),
		adminHandlers:       NewAdminHandlers(service, translations, cfg.AdminTokenHash),
	}
}

func NewRouter(service *quiz.Service, translations *quiz.Translations, database *db.DB, jobManager *jobs.JobManager, cfg Config) http.Handler {
	api := NewAPI(service, translations, database, jobManager, cfg)

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", healthCheck)

	// Quiz endpoints
	mux.HandleFunc("/api/questions/batch", api.questionHandlers.HandleBatch)
	mux.HandleFunc("/api/questions/verify", api.questionHandlers.HandleVerify)
	mux.HandleFunc("/api/translations", api.questionHandlers.HandleTranslations)

	// Leaderboard
	mux.HandleFunc("/api/leaderboard", api.leaderboardHandlers.HandleLeaderboard)

	// Donations run fully independently of quiz state
	mux.HandleFunc("/api/payment/create", api.paymentHandlers.CreatePayment)
	mux.HandleFunc("/api/payment/webhook", api.paymentHandlers.HandleWebhook)
	mux.HandleFunc("/api/payment/status", api.paymentHandlers.GetStatus)

	// Operational endpoint, guarded by the admin token
	mux.HandleFunc("/api/admin/refresh", api.adminHandlers.HandleRefresh)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Webhook-Signature")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("Health check requested")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		utils.LogError("Failed to encode response: %v", err)
	}
}
