// Profiling:
// go build ./profile/query
// ./query --cpu
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.pprof

package main

import (
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/pflag"

	"github.com/edwinsyarief/hako"
	"github.com/edwinsyarief/hako/internal/config"
)

type pair struct {
	V float32
	W float32
}

var pairDef = hako.StructDef[pair]{
	Layout: hako.Layout{Float32: 2},
	Read: func(r *hako.StructReader) pair {
		return pair{V: r.Float32(), W: r.Float32()}
	},
	Write: func(w *hako.StructWriter, p pair) {
		w.PutFloat32s(p.V, p.W)
	},
}

func main() {
	configPath := pflag.String("config", "", "path to a TOML config file")
	cpu := pflag.Bool("cpu", false, "write a CPU profile instead of a heap profile")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	logger := cfg.Logger(os.Stderr)

	mode := profile.MemProfile
	if *cpu {
		mode = profile.CPUProfile
	}
	logger.Info().
		Bool("cpu", *cpu).
		Int("rounds", cfg.Profile.Rounds).
		Int("entities", cfg.Profile.Entities).
		Msg("profiling query iteration")

	p := profile.Start(mode, profile.ProfilePath(cfg.Profile.Path), profile.NoShutdownHook)
	run(cfg, cfg.Profile.Rounds, cfg.Profile.Iterations, cfg.Profile.Entities)
	p.Stop()
}

func run(cfg *config.Config, rounds, iters, numEntities int) {
	for range rounds {
		em := hako.NewEntityManager(cfg.EngineOptions()...)
		comps := make([]*hako.ComponentType[pair], 6)
		all := make([]hako.Component, 6)
		data := make([]hako.ComponentData, 6)
		for i := range comps {
			comps[i] = hako.RegisterStruct(em, "comp"+string(rune('1'+i)), pairDef)
			all[i] = comps[i]
			data[i] = comps[i].With(pair{V: 1, W: 1})
		}
		query := em.GetQuery(hako.Filter{Include: all})
		hako.NewBuilder(em, all...).NewEntities(numEntities, data...)

		for range iters {
			for chunk := range query.Chunks() {
				col1 := hako.ChunkColumn(chunk, comps[0])
				col2 := hako.ChunkColumn(chunk, comps[1])
				for i, a := range col1.All() {
					b := col2.Get(i)
					a.V += b.V
					a.W += b.W
					col1.Set(i, a)
				}
			}
		}
	}
}
