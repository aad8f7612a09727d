package prefetch

import (
	"context"
	"strings"
	"sync"

	"african-culture-quiz/models"
	"african-culture-quiz/utils"
)

// Store persists the queue so it survives a page reload. Implementations
// must treat the saved items as an ordered list.
type Store interface {
	Save(key string, items []models.SafeQuestion) error
	Load(key string) ([]models.SafeQuestion, error)
}

// Fetcher pulls fresh questions when connectivity allows.
type Fetcher interface {
	FetchBatch(ctx context.Context, lang string, count int, categories []string) ([]models.SafeQuestion, error)
}

const (
	DefaultTarget      = 10
	DefaultLowWater    = 3
	DefaultMaxRetained = 50
)

// Queue keeps a bounded reserve of upcoming questions so the session can
// keep going through network latency or offline gaps. It refills toward the
// target depth once it drops below the low-water mark, evicts oldest entries
// past the retention bound, and writes itself through to the Store after
// every mutation.
type Queue struct {
	fetcher     Fetcher
	store       Store
	lang        string
	categories  []string
	key         string
	target      int
	lowWater    int
	maxRetained int

	mu    sync.Mutex
	items []models.SafeQuestion
}

// New creates a queue for one language/category selection and restores any
// previously persisted items. A missing or failing store entry just starts
// the queue empty.
func New(fetcher Fetcher, store Store, lang string, categories []string) *Queue {
	q := &Queue{
		fetcher:     fetcher,
		store:       store,
		lang:        lang,
		categories:  categories,
		key:         cacheKey(lang, categories),
		target:      DefaultTarget,
		lowWater:    DefaultLowWater,
		maxRetained: DefaultMaxRetained,
	}
	if store != nil {
		if items, err := store.Load(q.key); err == nil {
			q.items = items
		} else {
			utils.LogCache("No persisted prefetch for %s: %v", q.key, err)
		}
	}
	return q
}

// Key returns the storage key for this queue.
func (q *Queue) Key() string {
	return q.key
}

// Len returns the number of queued questions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Next pops the oldest queued question. The second return is false when the
// queue is empty.
func (q *Queue) Next() (models.SafeQuestion, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return models.SafeQuestion{}, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	q.persistLocked()
	return item, true
}

// Take pops up to count questions at once.
func (q *Queue) Take(count int) []models.SafeQuestion {
	q.mu.Lock()
	defer q.mu.Unlock()

	if count > len(q.items) {
		count = len(q.items)
	}
	if count <= 0 {
		return nil
	}
	taken := make([]models.SafeQuestion, count)
	copy(taken, q.items[:count])
	q.items = q.items[count:]
	q.persistLocked()
	return taken
}

// NeedsRefill reports whether the queue has drained below the low-water mark.
func (q *Queue) NeedsRefill() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) < q.lowWater
}

// Refill tops the queue back up to the target depth. It is a no-op while the
// queue sits at or above the low-water mark, and a fetch failure leaves the
// current queue untouched.
func (q *Queue) Refill(ctx context.Context) error {
	q.mu.Lock()
	missing := 0
	if len(q.items) < q.lowWater {
		missing = q.target - len(q.items)
	}
	q.mu.Unlock()

	if missing <= 0 {
		return nil
	}

	fetched, err := q.fetcher.FetchBatch(ctx, q.lang, missing, q.categories)
	if err != nil {
		utils.LogCache("Prefetch refill failed for %s: %v", q.key, err)
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, fetched...)
	if over := len(q.items) - q.maxRetained; over > 0 {
		q.items = q.items[over:]
	}
	q.persistLocked()
	utils.LogCache("Prefetch queue %s refilled to %d", q.key, len(q.items))
	return nil
}

func (q *Queue) persistLocked() {
	if q.store == nil {
		return
	}
	if err := q.store.Save(q.key, append([]models.SafeQuestion(nil), q.items...)); err != nil {
		utils.LogError("Failed to persist prefetch queue %s: %v", q.key, err)
	}
}

func cacheKey(lang string, categories []string) string {
	if len(categories) == 0 {
		return lang + ":mix"
	}
	return lang + ":" + strings.Join(categories, ",")
}

// MemoryStore is an in-process Store, used in tests and as a fallback when
// no durable storage is configured.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string][]models.SafeQuestion
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]models.SafeQuestion)}
}

func (m *MemoryStore) Save(key string, items []models.SafeQuestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = append([]models.SafeQuestion(nil), items...)
	return nil
}

func (m *MemoryStore) Load(key string) ([]models.SafeQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.SafeQuestion(nil), m.items[key]...), nil
}
