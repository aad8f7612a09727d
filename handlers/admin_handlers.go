package handlers

import (
	"net/http"
	"strings"

	"african-culture-quiz/quiz"
	"african-culture-quiz/utils"
)

// AdminHandlers expose cache maintenance behind a bearer token. The token is
// never stored; only its bcrypt hash is configured.
type AdminHandlers struct {
	service      *quiz.Service
	translations *quiz.Translations
	tokenHash    string
}

func NewAdminHandlers(service *quiz.Service, translations *quiz.Translations, tokenHash string) *AdminHandlers {
	return &AdminHandlers{
		service:      service,
		translations: translations,
		tokenHash:    tokenHash,
	}
}

// HandleRefresh serves POST /api/admin/refresh, forcing a re-read of the
// question banks and translation tables.
func (ah *AdminHandlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("%s /api/admin/refresh", r.Method)
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := bearerToken(r)
	if !utils.CheckAdminToken(ah.tokenHash, token) {
		utils.LogHTTP("Rejected admin refresh with bad token")
		http.Error(w, "Invalid admin token", http.StatusUnauthorized)
		return
	}

	if err := ah.service.Store().Refresh(); err != nil {
		utils.LogError("Admin refresh failed: %v", err)
		http.Error(w, "Refresh failed", http.StatusInternalServerError)
		return
	}
	if err := ah.translations.Refresh(); err != nil {
		utils.LogError("Translation refresh failed: %v", err)
		http.Error(w, "Refresh failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
