package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"african-culture-quiz/db"
	"african-culture-quiz/jobs"
	"african-culture-quiz/models"
	"african-culture-quiz/utils"
)

// PaymentHandlers implement the donation flow against the external provider.
// The quiz endpoints never touch any of this state; a failing payment can
// not corrupt a running session.
type PaymentHandlers struct {
	db              *db.DB
	jobs            *jobs.JobManager // nil when no Redis is configured
	webhookSecret   string
	checkoutBaseURL string
}

func NewPaymentHandlers(database *db.DB, jobManager *jobs.JobManager, cfg Config) *PaymentHandlers {
	return &PaymentHandlers{
		db:              database,
		jobs:            jobManager,
		webhookSecret:   cfg.WebhookSecret,
		checkoutBaseURL: cfg.CheckoutBaseURL,
	}
}

// CreatePayment serves POST /api/payment/create.
func (ph *PaymentHandlers) CreatePayment(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("%s /api/payment/create", r.Method)
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogHTTP("Invalid JSON in payment request: %v", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if !allowedAmount(req.Amount) {
		utils.LogPayment("Rejected donation amount %d", req.Amount)
		http.Error(w, "Invalid amount", http.StatusBadRequest)
		return
	}

	now := time.Now()
	tx := models.Transaction{
		ID:        uuid.NewString(),
		Amount:    req.Amount,
		Status:    "pending",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := ph.db.CreateTransaction(tx); err != nil {
		utils.LogError("Failed to create transaction: %v", err)
		http.Error(w, "Unable to create payment", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.PaymentResponse{
		PaymentURL:    fmt.Sprintf("%s/pay?amount=%d&ref=%s", ph.checkoutBaseURL, tx.Amount, tx.ID),
		TransactionID: tx.ID,
	})
}

// HandleWebhook serves POST /api/payment/webhook. The raw body must carry a
// valid provider signature; everything past that point is asynchronous so a
// slow database never stalls the provider's delivery.
func (ph *PaymentHandlers) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("%s /api/payment/webhook", r.Method)
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Cannot read body", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("X-Webhook-Signature")
	if !utils.VerifySignature(ph.webhookSecret, body, signature) {
		utils.LogPayment("Rejected webhook with bad signature")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		utils.LogPayment("Malformed webhook payload: %v", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if event.TransactionID == "" || (event.Status != "completed" && event.Status != "failed") {
		http.Error(w, "Invalid event", http.StatusBadRequest)
		return
	}

	if ph.jobs != nil {
		if err := ph.jobs.EnqueuePaymentEvent(event); err != nil {
			utils.LogError("Failed to enqueue payment event: %v", err)
			http.Error(w, "Unable to accept event", http.StatusInternalServerError)
			return
		}
	} else {
		// No queue configured, apply the event inline
		if err := ph.db.UpdateTransactionStatus(event.TransactionID, event.Status, event.Reference); err != nil {
			if errors.Is(err, db.ErrTransactionNotFound) {
				http.Error(w, "Unknown transaction", http.StatusNotFound)
				return
			}
			utils.LogError("Failed to apply payment event: %v", err)
			http.Error(w, "Unable to accept event", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// GetStatus serves GET /api/payment/status?id=..
func (ph *PaymentHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("%s /api/payment/status", r.Method)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	tx, err := ph.db.GetTransaction(id)
	if errors.Is(err, db.ErrTransactionNotFound) {
		http.Error(w, "Unknown transaction", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": tx.Status})
}

func allowedAmount(amount int) bool {
	for _, allowed := range models.AllowedDonationAmounts {
		if amount == allowed {
			return true
		}
	}
	return false
}
