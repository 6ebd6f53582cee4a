package hako

import (
	"github.com/rs/zerolog"
)

func componentsArray(comps []*componentMeta) *zerolog.Array {
	arr := zerolog.Arr()
	for _, m := range comps {
		arr = arr.Dict(zerolog.Dict().
			Int("component_id", int(m.id)).
			Str("component_name", m.name).
			Bool("system_state", m.systemState))
	}
	return arr
}

// LogComponents logs every registered component type.
func (em *EntityManager) LogComponents(level zerolog.Level) {
	comps := em.components.metas[:em.components.count]
	em.logger.WithLevel(level).
		Int("total_components", len(comps)).
		Array("components", componentsArray(comps)).
		Send()
}

// LogArchetypes logs one line per archetype with its occupancy.
func (em *EntityManager) LogArchetypes(level zerolog.Level) {
	for _, a := range em.archetypes.archetypes {
		em.logger.WithLevel(level).
			Str("archetype", a.name).
			Int("entities", a.size).
			Int("chunks", len(a.chunks)).
			Array("components", componentsArray(a.comps)).
			Send()
	}
}

// LogEntity logs the location and components of e.
func (em *EntityManager) LogEntity(level zerolog.Level, e Entity) {
	info := em.entities.info(e)
	if info == nil {
		em.logger.Warn().Stringer("entity", e).Msg("cannot log stale entity")
		return
	}
	em.logger.WithLevel(level).
		Uint32("entity_id", e.ID).
		Uint32("entity_version", e.Version).
		Str("archetype", info.archetype.name).
		Int("chunk", info.chunkIndex).
		Int("index", info.index).
		Array("components", componentsArray(info.archetype.comps)).
		Send()
}
