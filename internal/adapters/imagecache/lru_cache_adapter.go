package imagecache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultLimit - число изображений в кэше, если лимит не задан.
const DefaultLimit = 50

// LRUCacheAdapter - ограниченный кэш изображений, ключ - ссылка на изображение.
// Безопасен для одновременного использования.
type LRUCacheAdapter struct {
	cache *lru.Cache[string, []byte]
}

func NewLRUCacheAdapter(limit int) (*LRUCacheAdapter, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	cache, err := lru.New[string, []byte](limit)
	if err != nil {
		return nil, fmt.Errorf("image cache: %w", err)
	}
	return &LRUCacheAdapter{cache: cache}, nil
}

func (a *LRUCacheAdapter) Get(imageReference string) ([]byte, bool) {
	return a.cache.Get(imageReference)
}

func (a *LRUCacheAdapter) Add(imageReference string, image []byte) {
	a.cache.Add(imageReference, image)
}

// Purge удаляет все записи.
func (a *LRUCacheAdapter) Purge() {
	a.cache.Purge()
}

func (a *LRUCacheAdapter) Len() int {
	return a.cache.Len()
}
