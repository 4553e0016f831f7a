package memory

import (
	"time"

	"doc-assistant-gw/internal/entity"

	"github.com/patrickmn/go-cache"
)

type AssistantRepository struct {
	cache *cache.Cache
}

func NewAssistantRepository() *AssistantRepository {
	// Assistants never expire on their own; conversation history is backed by
	// the remote catalog, but an in-flight stream must not be evicted.
	c := cache.New(cache.NoExpiration, 10*time.Minute)
	return &AssistantRepository{
		cache: c,
	}
}

func (r *AssistantRepository) Save(userId string, assistant *entity.Assistant) {
	r.cache.Set(userId, assistant, cache.NoExpiration)
}

func (r *AssistantRepository) Get(userId string) (*entity.Assistant, bool) {
	if x, found := r.cache.Get(userId); found {
		return x.(*entity.Assistant), true
	}
	return nil, false
}

func (r *AssistantRepository) Delete(userId string) {
	r.cache.Delete(userId)
}
