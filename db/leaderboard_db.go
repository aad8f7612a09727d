package db

import (
	"time"

	"african-culture-quiz/models"
	"african-culture-quiz/utils"
)

// DefaultLeaderboardSize is how many entries the board retains.
const DefaultLeaderboardSize = 10

// AddLeaderboardEntry appends a finished run's result.
func (db *DB) AddLeaderboardEntry(entry models.LeaderboardEntry) error {
	utils.LogDB("Recording leaderboard entry for %q (score %d)", entry.Name, entry.Score)

	date := entry.Date
	if date.IsZero() {
		date = time.Now()
	}
	_, err := db.Exec(
		`INSERT INTO leaderboard (name, score, created_at) VALUES (?, ?, ?)`,
		entry.Name, entry.Score, date,
	)
	return err
}

// TopEntries returns the best entries, highest score first, earliest date
// breaking ties.
func (db *DB) TopEntries(limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}

	rows, err := db.Query(
		`SELECT name, score, created_at FROM leaderboard ORDER BY score DESC, created_at ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		utils.LogError("TopEntries query failed: %v", err)
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.Name, &e.Score, &e.Date); err != nil {
			utils.LogError("Failed to scan leaderboard row: %v", err)
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PruneLeaderboard drops everything beyond the top keep entries.
func (db *DB) PruneLeaderboard(keep int) error {
	if keep <= 0 {
		keep = DefaultLeaderboardSize
	}

	result, err := db.Exec(
		`DELETE FROM leaderboard WHERE id NOT IN (
			SELECT id FROM leaderboard ORDER BY score DESC, created_at ASC LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		utils.LogError("PruneLeaderboard failed: %v", err)
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		utils.LogDB("Pruned %d leaderboard entries", n)
	}
	return nil
}
