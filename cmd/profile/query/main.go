// Profiling:
// go build ./cmd/profile/query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.prof

package main

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/edwinsyarief/archetypedb"
	"go.uber.org/zap"
)

type comp1 struct{ V, W int64 }
type comp2 struct{ V, W int64 }
type comp3 struct{ V, W int64 }
type comp4 struct{ V, W int64 }
type comp5 struct{ V, W int64 }
type comp6 struct{ V, W int64 }

func main() {
	f, _ := os.Create("cpu.prof")
	_ = pprof.StartCPUProfile(f)
	defer pprof.StopCPUProfile()

	rounds := 50
	iters := 10000
	entities := 100000
	run(rounds, iters, entities)

	memFile, _ := os.Create("mem.prof")
	defer memFile.Close()
	runtime.GC()
	_ = pprof.WriteHeapProfile(memFile)
}

func run(rounds, iters, numEntities int) {
	for r := 0; r < rounds; r++ {
		cfg, _ := archetypedb.LoadEngineConfig()
		db := archetypedb.NewDatabase(cfg, nil, zap.NewNop())

		for i := 0; i < numEntities; i++ {
			_, _ = db.CreateEntity(
				archetypedb.NewComponentValue(comp1{}),
				archetypedb.NewComponentValue(comp2{}),
				archetypedb.NewComponentValue(comp3{}),
				archetypedb.NewComponentValue(comp4{}),
				archetypedb.NewComponentValue(comp5{}),
				archetypedb.NewComponentValue(comp6{}),
			)
		}

		query := db.Query(
			archetypedb.RegisterComponent[comp1]().ID,
			archetypedb.RegisterComponent[comp2]().ID,
		)

		for j := 0; j < iters; j++ {
			it := query.Iter()
			for it.Next() {
				c1, _ := archetypedb.GetComponent[comp1](db, it.Entity())
				c2, _ := archetypedb.GetComponent[comp2](db, it.Entity())
				c1.V += c2.V
				c1.W += c2.W
			}
		}
	}
}
