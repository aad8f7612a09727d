package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"african-culture-quiz/models"
	"african-culture-quiz/utils"
)

var (
	// ErrDataUnavailable means the backing file for a language is missing or
	// unreadable.
	ErrDataUnavailable = errors.New("question data unavailable")

	// ErrUnsupportedLanguage means the requested language has no bank.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// ValidationError reports exactly which record and which field broke a bank.
// A single bad record makes the whole language's load fail.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %d: field %q %s", e.Index, e.Field, e.Reason)
}

// Store loads per-language question banks from static JSON files
// (questions_<lang>.json) and keeps one in-memory snapshot per language.
// A snapshot is valid for the configured TTL; the first load after expiry
// re-reads the file and swaps the snapshot in one assignment, so readers
// never observe a partially replaced set.
type Store struct {
	dataPath  string
	ttl       time.Duration
	languages []string
	now       func() time.Time

	mu        sync.RWMutex
	snapshots map[string]*snapshot
}

type snapshot struct {
	questions []models.Question
	loadedAt  time.Time
}

const DefaultTTL = time.Hour

// NewStore creates a question store reading from dataPath. A zero ttl falls
// back to DefaultTTL.
func NewStore(dataPath string, ttl time.Duration, languages []string) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if len(languages) == 0 {
		languages = []string{"fr", "en"}
	}
	return &Store{
		dataPath:  dataPath,
		ttl:       ttl,
		languages: languages,
		now:       time.Now,
		snapshots: make(map[string]*snapshot),
	}
}

// Languages returns the configured language codes.
func (s *Store) Languages() []string {
	return s.languages
}

// Supports reports whether lang has a configured bank.
func (s *Store) Supports(lang string) bool {
	for _, l := range s.languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Load returns the full question set for lang, reading from disk when the
// cached snapshot is absent or older than the TTL. The returned slice is
// shared and must not be mutated by callers.
func (s *Store) Load(lang string) ([]models.Question, error) {
	if !s.Supports(lang) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	s.mu.RLock()
	snap := s.snapshots[lang]
	s.mu.RUnlock()
	if snap != nil && s.now().Sub(snap.loadedAt) < s.ttl {
		return snap.questions, nil
	}

	return s.reload(lang)
}

// Refresh re-reads every configured language from disk, replacing snapshots
// that load cleanly and keeping the error of the first one that does not.
func (s *Store) Refresh() error {
	utils.LogCache("Refreshing question banks (%s)", strings.Join(s.languages, ", "))
	var firstErr error
	for _, lang := range s.languages {
		if _, err := s.reload(lang); err != nil {
			utils.LogError("Refresh failed for %s: %v", lang, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *Store) reload(lang string) ([]models.Question, error) {
	path := filepath.Join(s.dataPath, "questions_"+lang+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		utils.LogError("Cannot read question bank %s: %v", path, err)
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, lang)
	}

	var questions []models.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		utils.LogError("Corrupt question bank %s: %v", path, err)
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, lang)
	}

	if err := validateQuestions(questions); err != nil {
		return nil, err
	}

	snap := &snapshot{questions: questions, loadedAt: s.now()}
	s.mu.Lock()
	s.snapshots[lang] = snap
	s.mu.Unlock()

	utils.LogCache("Loaded %d questions for %s", len(questions), lang)
	return questions, nil
}

// validateQuestions checks every record against the bank invariants:
// non-empty text and category, exactly four answers, and a correct answer
// that is one of them. The first violation is reported with its record
// index and field.
func validateQuestions(questions []models.Question) error {
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return &ValidationError{Index: i, Field: "text", Reason: "must be a non-empty string"}
		}
		if strings.TrimSpace(q.Category) == "" {
			return &ValidationError{Index: i, Field: "category", Reason: "must be a non-empty string"}
		}
		if len(q.Answers) != 4 {
			return &ValidationError{Index: i, Field: "answers", Reason: fmt.Sprintf("must contain exactly 4 entries, got %d", len(q.Answers))}
		}
		seen := make(map[string]bool, 4)
		for _, a := range q.Answers {
			if strings.TrimSpace(a) == "" {
				return &ValidationError{Index: i, Field: "answers", Reason: "must not contain empty entries"}
			}
			if seen[a] {
				return &ValidationError{Index: i, Field: "answers", Reason: fmt.Sprintf("must be distinct, %q repeats", a)}
			}
			seen[a] = true
		}
		if q.Correct == "" {
			return &ValidationError{Index: i, Field: "correct", Reason: "is required"}
		}
		if !seen[q.Correct] {
			return &ValidationError{Index: i, Field: "correct", Reason: "must be one of answers"}
		}
	}
	return nil
}
