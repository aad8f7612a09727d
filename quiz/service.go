package quiz

import (
	"errors"
	"math/rand"

	"african-culture-quiz/models"
)

var (
	// ErrNoMatch means the category filter left nothing to serve.
	ErrNoMatch = errors.New("no questions match the requested categories")

	// ErrQuestionNotFound means a verify request named a question text that
	// is not in the bank, usually a client/server desync after a refresh.
	ErrQuestionNotFound = errors.New("question not found")
)

// MixCategory disables category filtering when requested.
const MixCategory = "mix"

// Service answers batch and verify requests on top of the Store. Verify is
// the only code path that reads Question.Correct; batches go out as
// SafeQuestions with the answer order re-shuffled per request.
type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Store exposes the underlying question store, for cache maintenance.
func (s *Service) Store() *Store {
	return s.store
}

// GetBatch returns up to count SafeQuestions for lang, filtered by category.
// An empty filter or one containing "mix" serves from the whole bank.
// Matching fewer than count questions is not an error; matching none is
// ErrNoMatch. Questions are sampled without replacement and every question's
// answers are independently shuffled.
func (s *Service) GetBatch(lang string, count int, categories []string) ([]models.SafeQuestion, error) {
	all, err := s.store.Load(lang)
	if err != nil {
		return nil, err
	}

	filtered := filterByCategory(all, categories)
	if len(filtered) == 0 {
		return nil, ErrNoMatch
	}

	if count > len(filtered) {
		count = len(filtered)
	}

	batch := make([]models.SafeQuestion, 0, count)
	for _, idx := range rand.Perm(len(filtered))[:count] {
		q := filtered[idx]
		batch = append(batch, q.Safe(shuffleAnswers(q.Answers)))
	}
	return batch, nil
}

// Verify checks a submitted answer against the authoritative record for the
// exact question text. Duplicate texts resolve to the first match. The
// result says only whether the answer was right; the correct answer itself
// never leaves this package.
func (s *Service) Verify(lang, questionText, answer string) (bool, error) {
	q, err := s.lookup(lang, questionText)
	if err != nil {
		return false, err
	}
	return q.Correct == answer, nil
}

// CorrectAnswer returns the authoritative answer for a question text. It
// exists for trusted in-process callers only (offline banks priming a local
// fallback); nothing in the HTTP surface exposes it.
func (s *Service) CorrectAnswer(lang, questionText string) (string, error) {
	q, err := s.lookup(lang, questionText)
	if err != nil {
		return "", err
	}
	return q.Correct, nil
}

func (s *Service) lookup(lang, questionText string) (models.Question, error) {
	all, err := s.store.Load(lang)
	if err != nil {
		return models.Question{}, err
	}
	for _, q := range all {
		if q.Text == questionText {
			return q, nil
		}
	}
	return models.Question{}, ErrQuestionNotFound
}

func filterByCategory(all []models.Question, categories []string) []models.Question {
	if len(categories) == 0 {
		return all
	}
	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		if c == MixCategory {
			return all
		}
		wanted[c] = true
	}

	var filtered []models.Question
	for _, q := range all {
		if wanted[q.Category] {
			filtered = append(filtered, q)
		}
	}
	return filtered
}

// shuffleAnswers returns a Fisher-Yates shuffled copy so clients cannot
// memorize answer positions.
func shuffleAnswers(answers []string) []string {
	shuffled := make([]string, len(answers))
	copy(shuffled, answers)

	for i := len(shuffled) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}
