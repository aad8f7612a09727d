package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"african-culture-quiz/db"
	"african-culture-quiz/models"
	"african-culture-quiz/utils"
)

type LeaderboardHandlers struct {
	db *db.DB
}

func NewLeaderboardHandlers(database *db.DB) *LeaderboardHandlers {
	return &LeaderboardHandlers{db: database}
}

func (lh *LeaderboardHandlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("%s /api/leaderboard", r.Method)
	switch r.Method {
	case http.MethodGet:
		lh.getEntries(w, r)
	case http.MethodPost:
		lh.addEntry(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (lh *LeaderboardHandlers) getEntries(w http.ResponseWriter, r *http.Request) {
	limit := db.DefaultLeaderboardSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= db.DefaultLeaderboardSize {
			limit = parsed
		}
	}

	entries, err := lh.db.TopEntries(limit)
	if err != nil {
		http.Error(w, "Failed to fetch leaderboard", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

func (lh *LeaderboardHandlers) addEntry(w http.ResponseWriter, r *http.Request) {
	var entry models.LeaderboardEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		utils.LogHTTP("Invalid JSON in leaderboard request: %v", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if entry.Score < 0 {
		http.Error(w, "score must not be negative", http.StatusBadRequest)
		return
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now()
	}

	if err := lh.db.AddLeaderboardEntry(entry); err != nil {
		utils.LogError("Failed to record leaderboard entry: %v", err)
		http.Error(w, "Failed to record entry", http.StatusInternalServerError)
		return
	}

	// Keep the board bounded as soon as entries land
	if err := lh.db.PruneLeaderboard(db.DefaultLeaderboardSize); err != nil {
		utils.LogError("Leaderboard prune after insert failed: %v", err)
	}

	writeJSON(w, http.StatusCreated, entry)
}
