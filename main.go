package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/golangdaddy/citymap/pkg/config"
	"github.com/golangdaddy/citymap/pkg/game"
	"github.com/golangdaddy/citymap/pkg/mapmodel"
	"github.com/golangdaddy/citymap/pkg/render"
	"github.com/golangdaddy/citymap/pkg/traffic"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	flags := config.FromEnv()
	flags.Register(flag.CommandLine)

	grid := mapmodel.DefaultGridConfig()
	flag.IntVar(&grid.Rows, "rows", grid.Rows, "intersections north to south")
	flag.IntVar(&grid.Cols, "cols", grid.Cols, "intersections west to east")
	flag.Float64Var(&grid.BlockSize, "block_size", grid.BlockSize, "meters between intersections")

	sim := traffic.DefaultConfig()
	flag.IntVar(&sim.Cars, "cars", sim.Cars, "vehicles to spawn")
	flag.IntVar(&sim.Pedestrians, "pedestrians", sim.Pedestrians, "pedestrians to spawn")
	flag.Int64Var(&sim.Seed, "seed", sim.Seed, "traffic random seed")

	colors := flag.String("colors", "", "JSON file overriding the default colors")
	session := flag.String("session", "citymap_session.json", "file the viewer session is saved to and loaded from")
	flag.Parse()

	cs := render.DefaultColorScheme()
	if *colors != "" {
		var err error
		if cs, err = render.LoadColorScheme(*colors); err != nil {
			log.Fatal(err)
		}
	}

	m := mapmodel.NewGridCity(grid)
	log.Printf("generated %s: %d roads, %d lanes, %d intersections, %d turns, %d buildings",
		m.Name(), len(m.AllRoads()), len(m.AllLanes()), len(m.AllIntersections()), len(m.AllTurns()), len(m.AllBuildings()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ebiten.SetWindowSize(game.ScreenWidth, game.ScreenHeight)
	ebiten.SetWindowTitle("Citymap")
	if err := ebiten.RunGame(game.NewGame(ctx, game.Options{
		Map:         m,
		Flags:       flags,
		Colors:      cs,
		Traffic:     sim,
		SessionFile: *session,
	})); err != nil {
		log.Fatal(err)
	}
}
