package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"african-culture-quiz/models"
	"african-culture-quiz/utils"
)

func createTestPayment(t *testing.T, serverURL string, amount int) models.PaymentResponse {
	t.Helper()
	resp := postJSON(t, serverURL+"/api/payment/create", models.PaymentRequest{Amount: amount})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create payment: expected 200, got %d", resp.StatusCode)
	}
	var created models.PaymentResponse
	decodeBody(t, resp, &created)
	return created
}

func postWebhook(t *testing.T, serverURL string, event models.WebhookEvent, secret string) *http.Response {
	t.Helper()
	body, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, serverURL+"/api/payment/webhook", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Webhook-Signature", utils.SignPayload(secret, body))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post webhook: %v", err)
	}
	return resp
}

func paymentStatus(t *testing.T, serverURL, id string) (int, string) {
	t.Helper()
	resp, err := http.Get(serverURL + "/api/payment/status?id=" + id)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return resp.StatusCode, ""
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	return http.StatusOK, body["status"]
}

func TestCreatePayment(t *testing.T) {
	server, _ := newTestServer(t)

	created := createTestPayment(t, server.URL, 1000)
	if created.TransactionID == "" {
		t.Fatal("expected a transaction id")
	}
	if !strings.HasPrefix(created.PaymentURL, "https://pay.example.com/pay?amount=1000&ref=") {
		t.Fatalf("unexpected payment url %q", created.PaymentURL)
	}

	status, state := paymentStatus(t, server.URL, created.TransactionID)
	if status != http.StatusOK || state != "pending" {
		t.Fatalf("expected pending transaction, got %d %q", status, state)
	}
}

func TestCreatePaymentRejectsAmounts(t *testing.T) {
	server, _ := newTestServer(t)

	for _, amount := range []int{0, -500, 300, 999999} {
		resp := postJSON(t, server.URL+"/api/payment/create", models.PaymentRequest{Amount: amount})
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("amount %d: expected 400, got %d", amount, resp.StatusCode)
		}
	}
}

func TestWebhookCompletesTransaction(t *testing.T) {
	server, _ := newTestServer(t)
	created := createTestPayment(t, server.URL, 2000)

	resp := postWebhook(t, server.URL, models.WebhookEvent{
		TransactionID: created.TransactionID,
		Status:        "completed",
		Reference:     "prov-12345",
	}, testWebhookSecret)
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	_, state := paymentStatus(t, server.URL, created.TransactionID)
	if state != "completed" {
		t.Fatalf("expected completed, got %q", state)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	server, _ := newTestServer(t)
	created := createTestPayment(t, server.URL, 500)

	event := models.WebhookEvent{TransactionID: created.TransactionID, Status: "completed"}

	resp := postWebhook(t, server.URL, event, "wrong-secret")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a forged signature, got %d", resp.StatusCode)
	}

	resp = postWebhook(t, server.URL, event, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a missing signature, got %d", resp.StatusCode)
	}

	// The transaction must be untouched after rejected deliveries.
	_, state := paymentStatus(t, server.URL, created.TransactionID)
	if state != "pending" {
		t.Fatalf("rejected webhook changed the transaction to %q", state)
	}
}

func TestWebhookRejectsInvalidEvents(t *testing.T) {
	server, _ := newTestServer(t)
	created := createTestPayment(t, server.URL, 500)

	cases := []struct {
		name       string
		event      models.WebhookEvent
		wantStatus int
	}{
		{"missing_transaction", models.WebhookEvent{Status: "completed"}, http.StatusBadRequest},
		{"unknown_status", models.WebhookEvent{TransactionID: created.TransactionID, Status: "refunded"}, http.StatusBadRequest},
		{"unknown_transaction", models.WebhookEvent{TransactionID: "no-such-id", Status: "failed"}, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postWebhook(t, server.URL, tc.event, testWebhookSecret)
			resp.Body.Close()
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestPaymentStatusUnknownTransaction(t *testing.T) {
	server, _ := newTestServer(t)

	if status, _ := paymentStatus(t, server.URL, "no-such-id"); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}
