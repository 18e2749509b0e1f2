package pipeline

import (
	"crypto/sha256"
	"fmt"

	"github.com/arifaulakh/AscentCast/internal/insight"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ReportCache memoizes finished reports keyed by transcript content
// and user context, so re-uploading the same file skips the LLM calls.
type ReportCache struct {
	cache *lru.Cache[string, *insight.Report]
}

func NewReportCache(size int) (*ReportCache, error) {
	if size <= 0 {
		size = 64
	}
	c, err := lru.New[string, *insight.Report](size)
	if err != nil {
		return nil, fmt.Errorf("create report cache: %w", err)
	}
	return &ReportCache{cache: c}, nil
}

// Key derives the cache key from the raw transcript bytes and the
// user context.
func (c *ReportCache) Key(data []byte, userContext string) string {
	content := sha256.Sum256(data)
	ctxHash := sha256.Sum256([]byte(userContext))
	return fmt.Sprintf("%x:%x", content[:8], ctxHash[:8])
}

func (c *ReportCache) Get(key string) (*insight.Report, bool) {
	return c.cache.Get(key)
}

func (c *ReportCache) Put(key string, report *insight.Report) {
	c.cache.Add(key, report)
}

func (c *ReportCache) Len() int {
	return c.cache.Len()
}
