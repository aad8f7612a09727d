package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"african-culture-quiz/models"
	"african-culture-quiz/quiz"
	"african-culture-quiz/utils"
)

const (
	defaultBatchCount = 10
	maxBatchCount     = 50
)

type QuestionHandlers struct {
	service      *quiz.Service
	translations *quiz.Translations
}

func NewQuestionHandlers(service *quiz.Service, translations *quiz.Translations) *QuestionHandlers {
	return &QuestionHandlers{
		service:      service,
		translations: translations,
	}
}

// HandleBatch serves GET /api/questions/batch?lang=..&count=..&categories=..
func (qh *QuestionHandlers) HandleBatch(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("%s /api/questions/batch", r.Method)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = "fr"
	}
	if !qh.service.Store().Supports(lang) {
		utils.LogHTTP("Unsupported language: %s", lang)
		http.Error(w, "Unsupported language. Use fr or en", http.StatusBadRequest)
		return
	}

	count := defaultBatchCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxBatchCount {
			utils.LogHTTP("Batch count out of range: %s", raw)
			http.Error(w, "Question count must be between 1 and 50", http.StatusBadRequest)
			return
		}
		count = parsed
	}

	categories := utils.SplitCSV(r.URL.Query().Get("categories"))

	batch, err := qh.service.GetBatch(lang, count, categories)
	if err != nil {
		qh.writeQuizError(w, err)
		return
	}

	utils.LogHTTP("Returning %d questions (lang=%s categories=%s)",
		len(batch), lang, strings.Join(categories, ","))
	writeJSON(w, http.StatusOK, batch)
}

// HandleVerify serves POST /api/questions/verify. The response only ever
// says right or wrong; the correct answer is not disclosed.
func (qh *QuestionHandlers) HandleVerify(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("%s /api/questions/verify", r.Method)
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogHTTP("Invalid JSON in verify request: %v", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Lang == "" {
		req.Lang = "fr"
	}
	if req.QuestionText == "" || req.Answer == "" {
		http.Error(w, "questionText and answer are required", http.StatusBadRequest)
		return
	}

	correct, err := qh.service.Verify(req.Lang, req.QuestionText, req.Answer)
	if err != nil {
		qh.writeQuizError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.VerifyResult{Correct: correct})
}

// HandleTranslations serves GET /api/translations?lang=..
func (qh *QuestionHandlers) HandleTranslations(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("%s /api/translations", r.Method)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = "fr"
	}

	table, err := qh.translations.Get(lang)
	if err != nil {
		qh.writeQuizError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, table)
}

func (qh *QuestionHandlers) writeQuizError(w http.ResponseWriter, err error) {
	var vErr *quiz.ValidationError
	switch {
	case errors.Is(err, quiz.ErrUnsupportedLanguage):
		http.Error(w, "Unsupported language. Use fr or en", http.StatusBadRequest)
	case errors.Is(err, quiz.ErrNoMatch):
		http.Error(w, "No questions found for these categories", http.StatusNotFound)
	case errors.Is(err, quiz.ErrQuestionNotFound):
		http.Error(w, "Question not found", http.StatusNotFound)
	case errors.As(err, &vErr), errors.Is(err, quiz.ErrDataUnavailable):
		utils.LogError("Questions unavailable: %v", err)
		http.Error(w, "Questions unavailable", http.StatusInternalServerError)
	default:
		utils.LogError("Unexpected quiz error: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
	}
}
