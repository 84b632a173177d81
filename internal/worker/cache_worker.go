package worker

import (
	"github.com/jvegav/EcoTrade/internal/events"
	"github.com/jvegav/EcoTrade/internal/service"
)

// StartCacheWorker wires cache invalidation to domain events.
func StartCacheWorker(cache *service.EmailExistsCache, dispatcher events.Dispatcher) {
	if cache == nil {
		return
	}
	cache.RegisterHandlers(dispatcher)
}
