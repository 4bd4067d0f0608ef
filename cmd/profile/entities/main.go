// Profiling:
// go build ./cmd/profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"github.com/edwinsyarief/archetypedb"
	"github.com/pkg/profile"
	"go.uber.org/zap"
)

type position struct {
	X int64
	Y int64
}

type velocity struct {
	X int64
	Y int64
}

func main() {
	rounds := 50
	iters := 10000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for r := 0; r < rounds; r++ {
		cfg, _ := archetypedb.LoadEngineConfig()
		db := archetypedb.NewDatabase(cfg, nil, zap.NewNop())
		query := db.Query(
			archetypedb.RegisterComponent[position]().ID,
			archetypedb.RegisterComponent[velocity]().ID,
		)

		for j := 0; j < iters; j++ {
			for i := 0; i < numEntities; i++ {
				_, _ = db.CreateEntity(
					archetypedb.NewComponentValue(position{}),
					archetypedb.NewComponentValue(velocity{X: 1, Y: 1}),
				)
			}
			var toRemove []archetypedb.Entity
			it := query.Iter()
			for it.Next() {
				pos, _ := archetypedb.GetComponent[position](db, it.Entity())
				vel, _ := archetypedb.GetComponent[velocity](db, it.Entity())
				pos.X += vel.X
				pos.Y += vel.Y
				toRemove = append(toRemove, it.Entity())
			}
			for _, e := range toRemove {
				_ = db.RemoveEntity(e)
			}
		}
	}
}
