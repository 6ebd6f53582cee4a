// Profiling:
// go build ./profile/entities
// ./entities --config profile.toml
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/pflag"

	"github.com/edwinsyarief/hako"
	"github.com/edwinsyarief/hako/internal/config"
)

type comp1 struct {
	V int32
	W int32
}

type comp2 struct {
	V int32
	W int32
}

var comp1Def = hako.StructDef[comp1]{
	Layout: hako.Layout{Int32: 2},
	Read: func(r *hako.StructReader) comp1 {
		return comp1{V: r.Int32(), W: r.Int32()}
	},
	Write: func(w *hako.StructWriter, c comp1) {
		w.PutInt32s(c.V, c.W)
	},
}

var comp2Def = hako.StructDef[comp2]{
	Layout: hako.Layout{Int32: 2},
	Read: func(r *hako.StructReader) comp2 {
		return comp2{V: r.Int32(), W: r.Int32()}
	},
	Write: func(w *hako.StructWriter, c comp2) {
		w.PutInt32s(c.V, c.W)
	},
}

func main() {
	configPath := pflag.String("config", "", "path to a TOML config file")
	rounds := pflag.Int("rounds", 0, "number of fresh managers (overrides config)")
	iters := pflag.Int("iterations", 0, "create/iterate/delete cycles per manager (overrides config)")
	entities := pflag.Int("entities", 1000, "entities created per cycle")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	logger := cfg.Logger(os.Stderr)
	if *rounds > 0 {
		cfg.Profile.Rounds = *rounds
	}
	if *iters > 0 {
		cfg.Profile.Iterations = *iters
	}
	if pflag.CommandLine.Changed("entities") || *configPath == "" {
		cfg.Profile.Entities = *entities
	}

	logger.Info().
		Int("rounds", cfg.Profile.Rounds).
		Int("iterations", cfg.Profile.Iterations).
		Int("entities", cfg.Profile.Entities).
		Msg("profiling entity churn")

	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath(cfg.Profile.Path), profile.NoShutdownHook)
	run(cfg, cfg.Profile.Rounds, cfg.Profile.Iterations, cfg.Profile.Entities)
	p.Stop()
}

func run(cfg *config.Config, rounds, iters, numEntities int) {
	for range rounds {
		em := hako.NewEntityManager(cfg.EngineOptions()...)
		c1 := hako.RegisterStruct(em, "comp1", comp1Def)
		c2 := hako.RegisterStruct(em, "comp2", comp2Def)
		query := em.GetQuery(hako.Filter{Include: []hako.Component{c1, c2}})
		batch := hako.NewBuilder(em, c1, c2)

		entities := make([]hako.Entity, 0, numEntities)
		for range iters {
			batch.NewEntities(numEntities, c1.With(comp1{}), c2.With(comp2{V: 1, W: 1}))
			entities = entities[:0]
			for chunk := range query.Chunks() {
				col1 := hako.ChunkColumn(chunk, c1)
				col2 := hako.ChunkColumn(chunk, c2)
				for i, e := range chunk.Entities().All() {
					entities = append(entities, e)
					a, b := col1.Get(i), col2.Get(i)
					a.V += b.V
					a.W += b.W
					col1.Set(i, a)
				}
			}
			for _, e := range entities {
				em.DeleteEntity(e)
			}
		}
	}
}
