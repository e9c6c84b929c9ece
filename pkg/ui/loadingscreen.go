package ui

import (
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/golangdaddy/citymap/pkg/progress"
	"github.com/hajimehoshi/bitmapfont/v4"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// maxLogLines is how many finished phases stay on screen.
const maxLogLines = 8

var _ progress.Timer = (*LoadingScreen)(nil)

// LoadingScreen shows how far the map build has come. The build runs on
// another goroutine and reports through the progress.Timer methods.
type LoadingScreen struct {
	title string

	mu      sync.Mutex
	phase   string
	done    int
	total   int
	started time.Time
	log     []string
}

// NewLoadingScreen creates a loading screen headed by title.
func NewLoadingScreen(title string) *LoadingScreen {
	return &LoadingScreen{title: title}
}

// Start begins an untimed phase.
func (ls *LoadingScreen) Start(name string) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.finishPhase()
	ls.phase, ls.done, ls.total, ls.started = name, 0, 0, time.Now()
}

// Stop ends the phase if it is the current one.
func (ls *LoadingScreen) Stop(name string) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.phase == name {
		ls.finishPhase()
	}
}

// StartIter begins a phase of total items.
func (ls *LoadingScreen) StartIter(name string, total int) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.finishPhase()
	ls.phase, ls.done, ls.total, ls.started = name, 0, total, time.Now()
}

// Next marks one item done.
func (ls *LoadingScreen) Next() {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.done++
}

// finishPhase moves the current phase into the log. Callers hold mu.
func (ls *LoadingScreen) finishPhase() {
	if ls.phase == "" {
		return
	}
	line := fmt.Sprintf("%s took %s", ls.phase, time.Since(ls.started).Round(time.Millisecond))
	if ls.total > 0 {
		line = fmt.Sprintf("%s (%d) took %s", ls.phase, ls.total, time.Since(ls.started).Round(time.Millisecond))
	}
	ls.log = append(ls.log, line)
	if len(ls.log) > maxLogLines {
		ls.log = ls.log[len(ls.log)-maxLogLines:]
	}
	ls.phase = ""
}

// Status is a copy of what the screen is showing.
type Status struct {
	Phase       string
	Done, Total int
	Finished    []string
}

// Status returns the current phase and the recently finished ones.
func (ls *LoadingScreen) Status() Status {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return Status{
		Phase:    ls.phase,
		Done:     ls.done,
		Total:    ls.total,
		Finished: append([]string(nil), ls.log...),
	}
}

// Update has nothing to do; the build drives the screen.
func (ls *LoadingScreen) Update() error {
	return nil
}

// Draw renders the title, a bar for the current phase and the finished phases.
func (ls *LoadingScreen) Draw(screen *ebiten.Image) {
	st := ls.Status()
	width, height := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())

	screen.Fill(color.RGBA{20, 20, 30, 255})
	drawText(screen, ls.title, width/2, height/5, 48, color.RGBA{255, 200, 50, 255})

	barWidth, barHeight := 400.0, 30.0
	barX, barY := width/2-barWidth/2, height/2-barHeight/2
	frac := 0.0
	if st.Total > 0 {
		frac = min(float64(st.Done)/float64(st.Total), 1)
	}
	label := st.Phase
	if st.Total > 0 {
		label = fmt.Sprintf("%s %d/%d", st.Phase, st.Done, st.Total)
	}
	drawBar(screen, label, barX, barY, barWidth, barHeight, frac, color.RGBA{60, 100, 140, 255}, color.RGBA{200, 240, 255, 255})

	y := barY + barHeight + 40
	for _, line := range st.Finished {
		drawText(screen, line, width/2, y, 16, color.RGBA{150, 150, 150, 255})
		y += 20
	}
}

// drawBar draws a bordered progress bar with a centered label.
func drawBar(screen *ebiten.Image, label string, x, y, width, height, frac float64, fillColor, textColor color.Color) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(width), float32(height), color.RGBA{40, 40, 60, 255}, false)
	if frac > 0 {
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(width*frac), float32(height), fillColor, false)
	}
	// 2px border
	vector.StrokeRect(screen, float32(x), float32(y), float32(width), float32(height), 2, color.RGBA{80, 80, 100, 255}, false)

	face := text.NewGoXFace(bitmapfont.Face)
	textWidth := text.Advance(label, face)
	// bitmapfont is 16px tall
	textOp := &text.DrawOptions{}
	textOp.GeoM.Translate(x+width/2-textWidth/2, y+height/2-8)
	textOp.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, label, face, textOp)
}

// drawText draws text centered on (centerX, centerY) using the bitmap font
// scaled to size pixels.
func drawText(screen *ebiten.Image, str string, centerX, centerY float64, size float64, clr color.Color) {
	face := text.NewGoXFace(bitmapfont.Face)

	textWidth := text.Advance(str, face)
	scale := size / 16.0
	textX := centerX - textWidth*scale/2
	textY := centerY - 16.0*scale/2

	op := &text.DrawOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(textX, textY)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, str, face, op)
}
