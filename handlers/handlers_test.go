package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"african-culture-quiz/db"
	"african-culture-quiz/models"
	"african-culture-quiz/quiz"
	"african-culture-quiz/utils"
)

const (
	testWebhookSecret = "test-webhook-secret"
	testAdminToken    = "test-admin-token"
)

func testQuestions(lang string) []models.Question {
	questions := []models.Question{
		{
			Text:     "Quelle est la capitale du Sénégal ? (" + lang + ")",
			Answers:  []string{"Dakar", "Abidjan", "Bamako", "Lomé"},
			Correct:  "Dakar",
			Category: "Géographie",
		},
		{
			Text:     "Quel fleuve traverse l'Égypte ? (" + lang + ")",
			Answers:  []string{"Le Nil", "Le Congo", "Le Niger", "Le Zambèze"},
			Correct:  "Le Nil",
			Category: "Géographie",
		},
	}
	for i := 0; i < 10; i++ {
		questions = append(questions, models.Question{
			Text:     fmt.Sprintf("Question d'histoire %d (%s)", i, lang),
			Answers:  []string{"A", "B", "C", "D"},
			Correct:  "A",
			Category: "Histoire africaine",
		})
	}
	return questions
}

func writeTestData(t *testing.T, dir string) {
	t.Helper()
	for _, lang := range []string{"fr", "en"} {
		payload, err := json.Marshal(testQuestions(lang))
		if err != nil {
			t.Fatalf("marshal bank: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "questions_"+lang+".json"), payload, 0o644); err != nil {
			t.Fatalf("write bank: %v", err)
		}
	}

	translations := `{"fr": {"next": "Suivant"}, "en": {"next": "Next"}}`
	if err := os.WriteFile(filepath.Join(dir, "translations.json"), []byte(translations), 0o644); err != nil {
		t.Fatalf("write translations: %v", err)
	}
}

// newTestServer stands up the full router on temp data and a temp database,
// with no job queue so webhook events apply inline.
func newTestServer(t *testing.T) (*httptest.Server, *db.DB) {
	t.Helper()

	dataDir := t.TempDir()
	writeTestData(t, dataDir)

	database, err := db.InitDB(filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := quiz.NewStore(dataDir, time.Hour, []string{"fr", "en"})
	service := quiz.NewService(store)
	translations := quiz.NewTranslations(dataDir, time.Hour)

	tokenHash, err := utils.HashAdminToken(testAdminToken)
	if err != nil {
		t.Fatalf("hash admin token: %v", err)
	}

	router := NewRouter(service, translations, database, nil, Config{
		WebhookSecret:   testWebhookSecret,
		AdminTokenHash:  tokenHash,
		CheckoutBaseURL: "https://pay.example.com",
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, database
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	server, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/questions/batch", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on preflight, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS origin header")
	}
}
