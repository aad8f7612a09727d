package prefetch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"african-culture-quiz/models"
)

type countingFetcher struct {
	calls  int
	serial int
	err    error
}

func (f *countingFetcher) FetchBatch(_ context.Context, _ string, count int, _ []string) ([]models.SafeQuestion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	batch := make([]models.SafeQuestion, count)
	for i := range batch {
		f.serial++
		batch[i] = models.SafeQuestion{
			Text:     fmt.Sprintf("Question %d", f.serial),
			Answers:  []string{"A", "B", "C", "D"},
			Category: "Géographie",
		}
	}
	return batch, nil
}

func TestRefillToTarget(t *testing.T) {
	fetcher := &countingFetcher{}
	q := New(fetcher, NewMemoryStore(), "fr", nil)

	if err := q.Refill(context.Background()); err != nil {
		t.Fatalf("refill: %v", err)
	}
	if q.Len() != DefaultTarget {
		t.Fatalf("expected %d queued, got %d", DefaultTarget, q.Len())
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", fetcher.calls)
	}
}

func TestRefillOnlyBelowLowWater(t *testing.T) {
	fetcher := &countingFetcher{}
	q := New(fetcher, nil, "fr", nil)

	if err := q.Refill(context.Background()); err != nil {
		t.Fatalf("refill: %v", err)
	}

	// Drain to the low-water mark exactly; that is not yet "below".
	q.Take(DefaultTarget - DefaultLowWater)
	if err := q.Refill(context.Background()); err != nil {
		t.Fatalf("refill at low water: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("refill fired at the low-water mark: %d fetches", fetcher.calls)
	}

	// One more pop crosses the threshold.
	q.Next()
	if err := q.Refill(context.Background()); err != nil {
		t.Fatalf("refill below low water: %v", err)
	}
	if fetcher.calls != 2 {
		t.Fatalf("expected refill below low water, got %d fetches", fetcher.calls)
	}
	if q.Len() != DefaultTarget {
		t.Fatalf("expected refill back to %d, got %d", DefaultTarget, q.Len())
	}
}

func TestRefillFailureLeavesQueueUntouched(t *testing.T) {
	fetcher := &countingFetcher{}
	q := New(fetcher, nil, "fr", nil)
	if err := q.Refill(context.Background()); err != nil {
		t.Fatalf("refill: %v", err)
	}
	q.Take(DefaultTarget - 1)

	fetcher.err = errors.New("offline")
	if err := q.Refill(context.Background()); err == nil {
		t.Fatal("expected refill error")
	}
	if q.Len() != 1 {
		t.Fatalf("failed refill changed the queue: %d items", q.Len())
	}
}

func TestEvictionDropsOldestFirst(t *testing.T) {
	fetcher := &countingFetcher{}
	q := New(fetcher, nil, "fr", nil)
	q.maxRetained = 12

	if err := q.Refill(context.Background()); err != nil {
		t.Fatalf("refill: %v", err)
	}

	// Force a second refill that overshoots retention.
	q.target = 20
	q.lowWater = 15
	if err := q.Refill(context.Background()); err != nil {
		t.Fatalf("second refill: %v", err)
	}
	if q.Len() != 12 {
		t.Fatalf("expected retention bound of 12, got %d", q.Len())
	}

	// Questions 1..8 were evicted; the oldest survivor is question 9.
	head, ok := q.Next()
	if !ok || head.Text != "Question 9" {
		t.Fatalf("expected oldest survivor Question 9, got %+v", head)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	fetcher := &countingFetcher{}

	q := New(fetcher, store, "fr", []string{"Géographie", "Musique"})
	if err := q.Refill(context.Background()); err != nil {
		t.Fatalf("refill: %v", err)
	}
	q.Next()

	restored := New(&countingFetcher{}, store, "fr", []string{"Géographie", "Musique"})
	if restored.Len() != DefaultTarget-1 {
		t.Fatalf("expected %d restored items, got %d", DefaultTarget-1, restored.Len())
	}
	head, ok := restored.Next()
	if !ok || head.Text != "Question 2" {
		t.Fatalf("restored queue out of order: %+v", head)
	}
}

func TestCacheKeyPerSelection(t *testing.T) {
	if got := New(nil, nil, "fr", nil).Key(); got != "fr:mix" {
		t.Fatalf("unexpected mix key %q", got)
	}
	if got := New(nil, nil, "en", []string{"Musique", "Cuisine"}).Key(); got != "en:Musique,Cuisine" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestTakeMoreThanQueued(t *testing.T) {
	fetcher := &countingFetcher{}
	q := New(fetcher, nil, "fr", nil)
	if err := q.Refill(context.Background()); err != nil {
		t.Fatalf("refill: %v", err)
	}

	taken := q.Take(100)
	if len(taken) != DefaultTarget {
		t.Fatalf("expected %d taken, got %d", DefaultTarget, len(taken))
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Len())
	}
	if q.Take(1) != nil {
		t.Fatal("take on an empty queue must return nil")
	}
}
