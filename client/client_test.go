package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"african-culture-quiz/models"
)

func TestFetchBatch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/questions/batch" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(sampleBatch(3))
	}))
	defer server.Close()

	batch, err := New(server.URL).FetchBatch(context.Background(), "fr", 3, []string{"Cuisine africaine"})
	if err != nil {
		t.Fatalf("fetch batch: %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(batch))
	}
	if gotQuery != "categories=Cuisine+africaine&count=3&lang=fr" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
}

func TestFetchBatchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no match", http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := New(server.URL).FetchBatch(context.Background(), "fr", 10, nil); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.VerifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode verify request: %v", err)
		}
		json.NewEncoder(w).Encode(models.VerifyResult{Correct: req.Answer == "Mali"})
	}))
	defer server.Close()

	c := New(server.URL)
	correct, err := c.Verify(context.Background(), "fr", "Question 0", "Mali")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !correct {
		t.Fatal("expected correct=true")
	}

	correct, err = c.Verify(context.Background(), "fr", "Question 0", "Ghana")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if correct {
		t.Fatal("expected correct=false")
	}
}

func TestVerifyUnknownQuestion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "question not found", http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := New(server.URL).Verify(context.Background(), "fr", "Question fantôme", "A"); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestServerErrorsAreNotSentinels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL)
	if _, err := c.FetchBatch(context.Background(), "fr", 10, nil); err == nil || errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected a plain error on 500, got %v", err)
	}
	if _, err := c.Verify(context.Background(), "fr", "Question 0", "A"); err == nil || errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected a plain error on 500, got %v", err)
	}
}
