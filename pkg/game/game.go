// Package game is the interactive map viewer: a loading screen while the
// drawables are built, then the map with live traffic.
package game

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/golangdaddy/citymap/pkg/config"
	"github.com/golangdaddy/citymap/pkg/drawmap"
	"github.com/golangdaddy/citymap/pkg/mapmodel"
	"github.com/golangdaddy/citymap/pkg/progress"
	"github.com/golangdaddy/citymap/pkg/render"
	"github.com/golangdaddy/citymap/pkg/traffic"
	"github.com/golangdaddy/citymap/pkg/ui"
	"github.com/hajimehoshi/ebiten/v2"
)

// Logical screen size.
const (
	ScreenWidth  = 1024
	ScreenHeight = 600
)

// Screen represents a UI screen interface
type Screen interface {
	Update() error
	Draw(screen *ebiten.Image)
}

// Options configure the viewer.
type Options struct {
	Map     *mapmodel.Map
	Flags   config.Flags
	Colors  *render.ColorScheme
	Traffic traffic.Config
	// SessionFile is where F5 saves and F9 loads the viewer session.
	SessionFile string
}

type buildResult struct {
	dm  *drawmap.DrawMap
	p   *render.Prerender
	err error
}

// Game implements the ebiten.Game interface and manages the overall game state
type Game struct {
	opts          Options
	currentScreen Screen
	builds        chan buildResult
}

// NewGame shows the loading screen and starts building the map drawables in
// the background.
func NewGame(ctx context.Context, opts Options) *Game {
	if opts.Colors == nil {
		opts.Colors = render.DefaultColorScheme()
	}
	loading := ui.NewLoadingScreen(strings.ToUpper(opts.Map.Name()))
	g := &Game{
		opts:          opts,
		currentScreen: loading,
		builds:        make(chan buildResult, 1),
	}

	go func() {
		p := render.NewPrerender()
		timer := progress.Tee{progress.NewLogTimer(nil), loading}
		dm, err := drawmap.New(ctx, opts.Map, opts.Flags, opts.Colors, p, timer)
		g.builds <- buildResult{dm: dm, p: p, err: err}
	}()
	return g
}

// Update handles game logic updates
func (g *Game) Update() error {
	select {
	case res := <-g.builds:
		if res.err != nil {
			return fmt.Errorf("build draw map: %w", res.err)
		}
		meshes, vertices := res.p.Stats()
		log.Printf("prerendered %d meshes with %d vertices", meshes, vertices)
		sim := traffic.New(g.opts.Map, g.opts.Traffic)
		log.Printf("spawned %d cars and %d pedestrians", len(sim.Cars()), len(sim.Pedestrians()))
		g.currentScreen = NewMapScreen(g.opts.Map, res.dm, res.p, g.opts.Colors, sim, g.opts.SessionFile)
	default:
	}

	if g.currentScreen != nil {
		return g.currentScreen.Update()
	}
	return nil
}

// Draw renders the current screen
func (g *Game) Draw(screen *ebiten.Image) {
	if g.currentScreen != nil {
		g.currentScreen.Draw(screen)
	}
}

// Layout returns the game's screen dimensions
func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return ScreenWidth, ScreenHeight
}
