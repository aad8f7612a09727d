package client

import (
	"context"
	"errors"
	"sync"

	"african-culture-quiz/models"
	"african-culture-quiz/prefetch"
	"african-culture-quiz/utils"
)

// FallbackSource feeds the session engine. It asks the API first and tops
// the prefetch queue back up while connectivity lasts; when the network is
// down it drains the queue instead. Only when both are empty does the
// session see a failure.
type FallbackSource struct {
	api   prefetch.Fetcher
	cache *prefetch.Queue
}

func NewFallbackSource(api prefetch.Fetcher, cache *prefetch.Queue) *FallbackSource {
	return &FallbackSource{api: api, cache: cache}
}

func (s *FallbackSource) NextBatch(ctx context.Context, lang string, count int, categories []string) ([]models.SafeQuestion, error) {
	batch, err := s.api.FetchBatch(ctx, lang, count, categories)
	if err == nil {
		if s.cache != nil && s.cache.NeedsRefill() {
			if refillErr := s.cache.Refill(ctx); refillErr != nil {
				utils.LogCache("Opportunistic refill skipped: %v", refillErr)
			}
		}
		return batch, nil
	}

	if errors.Is(err, ErrNoMatch) {
		return nil, err // the server answered; the categories are just empty
	}

	utils.LogCache("Batch fetch failed, drawing from prefetch: %v", err)
	if s.cache != nil {
		if cached := s.cache.Take(count); len(cached) > 0 {
			return cached, nil
		}
	}
	return nil, err
}

// RemoteVerifier is the server-side verify call.
type RemoteVerifier interface {
	Verify(ctx context.Context, lang, questionText, answer string) (bool, error)
}

// AnswerLookup supplies a locally-cached correct answer, when one exists for
// a legitimate reason (e.g. a bundled offline bank).
type AnswerLookup interface {
	CorrectAnswer(lang, questionText string) (string, bool)
}

// FallbackVerifier is remote-first: the server stays authoritative. On a
// network failure it compares against a locally cached answer if one is
// available, otherwise it retries the server once before giving up. An
// unknown-question response skips the pointless retry.
type FallbackVerifier struct {
	remote RemoteVerifier
	local  AnswerLookup // may be nil
}

func NewFallbackVerifier(remote RemoteVerifier, local AnswerLookup) *FallbackVerifier {
	return &FallbackVerifier{remote: remote, local: local}
}

func (v *FallbackVerifier) Verify(ctx context.Context, lang, questionText, answer string) (bool, error) {
	correct, err := v.remote.Verify(ctx, lang, questionText, answer)
	if err == nil {
		return correct, nil
	}

	if v.local != nil {
		if want, ok := v.local.CorrectAnswer(lang, questionText); ok {
			utils.LogDebug("Verify falling back to local comparison for %q", questionText)
			return want == answer, nil
		}
	}

	if errors.Is(err, ErrQuestionNotFound) {
		return false, err
	}

	return v.remote.Verify(ctx, lang, questionText, answer)
}

// StaticAnswers is an AnswerLookup over a full question set the client holds
// legitimately, such as a bundled offline bank.
type StaticAnswers struct {
	mu      sync.RWMutex
	answers map[string]string
}

func NewStaticAnswers() *StaticAnswers {
	return &StaticAnswers{answers: make(map[string]string)}
}

// Prime registers the authoritative answers for a language's bank.
func (s *StaticAnswers) Prime(lang string, questions []models.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range questions {
		key := lang + "\x00" + q.Text
		if _, exists := s.answers[key]; !exists {
			s.answers[key] = q.Correct
		}
	}
}

func (s *StaticAnswers) CorrectAnswer(lang, questionText string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answer, ok := s.answers[lang+"\x00"+questionText]
	return answer, ok
}
