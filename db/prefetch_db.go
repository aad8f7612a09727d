package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"african-culture-quiz/models"
	"african-culture-quiz/utils"
)

// PrefetchStore persists prefetch queues in sqlite, one JSON payload per
// queue key. It satisfies the prefetch package's Store interface.
type PrefetchStore struct {
	db *DB
}

func NewPrefetchStore(db *DB) *PrefetchStore {
	return &PrefetchStore{db: db}
}

func (s *PrefetchStore) Save(key string, items []models.SafeQuestion) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		`INSERT INTO prefetch_cache (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, string(payload), time.Now(),
	)
	if err != nil {
		utils.LogError("Failed to save prefetch payload %s: %v", key, err)
	}
	return err
}

func (s *PrefetchStore) Load(key string) ([]models.SafeQuestion, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM prefetch_cache WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []models.SafeQuestion
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		utils.LogError("Corrupt prefetch payload %s: %v", key, err)
		return nil, err
	}
	return items, nil
}
