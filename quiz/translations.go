package quiz

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"african-culture-quiz/utils"
)

// Translations serves localized UI strings from translations.json, cached
// with the same TTL policy as the question banks.
type Translations struct {
	path string
	ttl  time.Duration
	now  func() time.Time

	mu       sync.RWMutex
	tables   map[string]map[string]string
	loadedAt time.Time
}

func NewTranslations(dataPath string, ttl time.Duration) *Translations {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Translations{
		path: filepath.Join(dataPath, "translations.json"),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the string table for lang, or ErrUnsupportedLanguage when the
// file has no entry for it.
func (t *Translations) Get(lang string) (map[string]string, error) {
	t.mu.RLock()
	tables := t.tables
	fresh := tables != nil && t.now().Sub(t.loadedAt) < t.ttl
	t.mu.RUnlock()

	if !fresh {
		var err error
		tables, err = t.reload()
		if err != nil {
			return nil, err
		}
	}

	table, ok := tables[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	return table, nil
}

// Refresh drops the cached tables and re-reads them from disk.
func (t *Translations) Refresh() error {
	_, err := t.reload()
	return err
}

func (t *Translations) reload() (map[string]map[string]string, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		utils.LogError("Cannot read translations %s: %v", t.path, err)
		return nil, ErrDataUnavailable
	}

	var tables map[string]map[string]string
	if err := json.Unmarshal(data, &tables); err != nil {
		utils.LogError("Corrupt translations %s: %v", t.path, err)
		return nil, ErrDataUnavailable
	}

	t.mu.Lock()
	t.tables = tables
	t.loadedAt = t.now()
	t.mu.Unlock()

	utils.LogCache("Loaded translations for %d languages", len(tables))
	return tables, nil
}
