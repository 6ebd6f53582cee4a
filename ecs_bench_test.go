package hako_test

import (
	"fmt"
	"testing"

	"github.com/edwinsyarief/hako"
)

var sizes = []int{1000, 10000, 100000}

func sizeName(size int) string {
	return fmt.Sprintf("%dK", size/1000)
}

// go test -bench ^BenchmarkCreateEntity$ . -benchmem
func BenchmarkCreateEntity(b *testing.B) {
	for _, size := range sizes {
		b.Run(sizeName(size), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				b.StopTimer()
				f := setupManager(b, hako.WithInitialCapacity(size))
				b.StartTimer()
				for range size {
					f.em.CreateEntity(f.position.With(Position{X: 1}), f.velocity.With(Velocity{VX: 1}))
				}
			}
		})
	}
}

func BenchmarkBuilderNewEntities(b *testing.B) {
	for _, size := range sizes {
		b.Run(sizeName(size), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				b.StopTimer()
				f := setupManager(b, hako.WithInitialCapacity(size))
				builder := hako.NewBuilder(f.em, f.position, f.velocity)
				b.StartTimer()
				builder.NewEntities(size, f.position.With(Position{}), f.velocity.With(Velocity{VX: 1}))
			}
		})
	}
}

func BenchmarkAddRemoveComponent(b *testing.B) {
	for _, size := range sizes {
		b.Run(sizeName(size), func(b *testing.B) {
			f := setupManager(b)
			es := hako.NewBuilder(f.em, f.position).NewEntities(size, f.position.With(Position{}))
			b.ReportAllocs()
			for b.Loop() {
				for _, e := range es {
					f.em.AddComponent(e, f.velocity.With(Velocity{VX: 1}))
				}
				for _, e := range es {
					f.em.RemoveComponent(e, f.velocity)
				}
			}
		})
	}
}

func BenchmarkDeleteEntity(b *testing.B) {
	for _, size := range sizes {
		b.Run(sizeName(size), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				b.StopTimer()
				f := setupManager(b)
				es := hako.NewBuilder(f.em, f.position).NewEntities(size, f.position.With(Position{}))
				b.StartTimer()
				for _, e := range es {
					f.em.DeleteEntity(e)
				}
			}
		})
	}
}

func BenchmarkSetComponent(b *testing.B) {
	f := setupManager(b)
	es := hako.NewBuilder(f.em, f.position).NewEntities(10000, f.position.With(Position{}))
	b.ReportAllocs()
	for b.Loop() {
		for _, e := range es {
			_ = hako.SetComponent(f.em, e, f.position, Position{X: 1, Y: 1})
		}
	}
}

// go test -bench ^BenchmarkQuery$ . -benchmem
func BenchmarkQuery(b *testing.B) {
	for _, size := range sizes {
		b.Run(sizeName(size), func(b *testing.B) {
			f := setupManager(b)
			hako.NewBuilder(f.em, f.position, f.velocity).
				NewEntities(size, f.position.With(Position{}), f.velocity.With(Velocity{VX: 1, VY: 1}))
			q := f.em.GetQuery(hako.Filter{Include: []hako.Component{f.position, f.velocity}})
			b.ReportAllocs()
			for b.Loop() {
				for chunk := range q.Chunks() {
					positions := hako.ChunkColumn(chunk, f.position)
					velocities := hako.ChunkColumn(chunk, f.velocity)
					for i, p := range positions.All() {
						v := velocities.Get(i)
						positions.Set(i, Position{X: p.X + v.VX, Y: p.Y + v.VY})
					}
				}
			}
		})
	}
}
