package hako

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Option configures an EntityManager at construction. Options are applied in
// order by NewEntityManager, before the built-in Alive tag is registered.
type Option func(*EntityManager)

// WithLogger sets the logger used for diagnostics. Without it the manager
// logs through the global zerolog logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(em *EntityManager) {
		em.logger = logger
	}
}

// WithChunkCapacity sets the number of entity slots per chunk. The default is
// DefaultChunkCapacity.
//
// Parameters:
//   - capacity: Slots per chunk. It must be positive; the option panics otherwise.
//
// Returns:
//   - An Option to pass to NewEntityManager.
func WithChunkCapacity(capacity int) Option {
	return func(em *EntityManager) {
		if capacity <= 0 {
			panic(eris.Errorf("hako: chunk capacity must be positive, got %d", capacity))
		}
		em.chunkCapacity = capacity
	}
}

// WithInitialCapacity preallocates the entity location table.
//
// Parameters:
//   - n: The number of entities to pre-allocate memory for. Values <= 0 keep
//     the default.
//
// Returns:
//   - An Option to pass to NewEntityManager.
func WithInitialCapacity(n int) Option {
	return func(em *EntityManager) {
		if n > 0 {
			em.initialCapacity = n
		}
	}
}

// WithEventBus attaches bus; the manager publishes structural events on it.
func WithEventBus(bus *EventBus) Option {
	return func(em *EntityManager) {
		em.bus = bus
	}
}
