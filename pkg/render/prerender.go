package render

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/paulmach/orb"
)

var (
	whiteOnce     sync.Once
	whiteSubImage *ebiten.Image
)

// white returns a 1x1 white source image for DrawTriangles. It is created on
// first draw so that building drawables never touches the GPU.
func white() *ebiten.Image {
	whiteOnce.Do(func() {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteSubImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	})
	return whiteSubImage
}

// Mesh is a filled polygon tessellated once, in map space.
type Mesh struct {
	vertices []ebiten.Vertex
	indices  []uint16
	// scratch holds the screen-space copy reused across frames.
	scratch []ebiten.Vertex
}

// Empty reports whether the mesh has nothing to draw.
func (m *Mesh) Empty() bool {
	return m == nil || len(m.indices) == 0
}

// Draw fills the mesh with clr, transformed by geom.
func (m *Mesh) Draw(dst *ebiten.Image, geom ebiten.GeoM, clr color.Color) {
	if m.Empty() {
		return
	}
	m.scratch = append(m.scratch[:0], m.vertices...)
	r, g, b, a := colorScale(clr)
	for i := range m.scratch {
		v := &m.scratch[i]
		x, y := geom.Apply(float64(v.DstX), float64(v.DstY))
		v.DstX, v.DstY = float32(x), float32(y)
		v.SrcX, v.SrcY = 1, 1
		v.ColorR, v.ColorG, v.ColorB, v.ColorA = r, g, b, a
	}
	dst.DrawTriangles(m.scratch, m.indices, white(), &ebiten.DrawTrianglesOptions{
		FillRule:  ebiten.FillRuleNonZero,
		AntiAlias: true,
	})
}

// Prerender tessellates map geometry once at load time.
type Prerender struct {
	meshes   int
	vertices int
}

// NewPrerender creates an empty Prerender.
func NewPrerender() *Prerender {
	return &Prerender{}
}

// Fill tessellates a closed outline.
func (p *Prerender) Fill(pts []orb.Point) *Mesh {
	m := fillMesh(pts)
	if p != nil {
		p.meshes++
		p.vertices += len(m.vertices)
	}
	return m
}

// Stats reports how many meshes and vertices were built.
func (p *Prerender) Stats() (meshes, vertices int) {
	return p.meshes, p.vertices
}

func fillMesh(pts []orb.Point) *Mesh {
	if len(pts) < 3 {
		return &Mesh{}
	}
	var path vector.Path
	path.MoveTo(float32(pts[0][0]), float32(pts[0][1]))
	for _, pt := range pts[1:] {
		path.LineTo(float32(pt[0]), float32(pt[1]))
	}
	path.Close()
	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	return &Mesh{vertices: vs, indices: is}
}

// fillPolygon draws an outline built on the fly, for shapes that change every tick.
func fillPolygon(dst *ebiten.Image, pts []orb.Point, geom ebiten.GeoM, clr color.Color) {
	fillMesh(pts).Draw(dst, geom, clr)
}

// strokePolyline draws a polyline with a width in map units.
func strokePolyline(dst *ebiten.Image, pts []orb.Point, opts *DrawOptions, width float64, clr color.Color) {
	w := float32(width * opts.Zoom)
	if w < 1 {
		w = 1
	}
	for i := 0; i+1 < len(pts); i++ {
		x0, y0 := opts.GeoM.Apply(pts[i][0], pts[i][1])
		x1, y1 := opts.GeoM.Apply(pts[i+1][0], pts[i+1][1])
		vector.StrokeLine(dst, float32(x0), float32(y0), float32(x1), float32(y1), w, clr, true)
	}
}

// dashedLine strokes every other dash of a polyline.
func dashedLine(dst *ebiten.Image, pts []orb.Point, opts *DrawOptions, width, dash float64, clr color.Color) {
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		seg := math.Hypot(b[0]-a[0], b[1]-a[1])
		if seg == 0 {
			continue
		}
		for d := 0.0; d < seg; d += 2 * dash {
			end := math.Min(d+dash, seg)
			p0 := orb.Point{a[0] + (b[0]-a[0])*d/seg, a[1] + (b[1]-a[1])*d/seg}
			p1 := orb.Point{a[0] + (b[0]-a[0])*end/seg, a[1] + (b[1]-a[1])*end/seg}
			strokePolyline(dst, []orb.Point{p0, p1}, opts, width, clr)
		}
	}
}

// fillCircle draws a circle of radius r in map units.
func fillCircle(dst *ebiten.Image, center orb.Point, r float64, opts *DrawOptions, clr color.Color) {
	x, y := opts.GeoM.Apply(center[0], center[1])
	radius := float32(r * opts.Zoom)
	if radius < 1 {
		radius = 1
	}
	vector.DrawFilledCircle(dst, float32(x), float32(y), radius, clr, true)
}

func colorScale(clr color.Color) (r, g, b, a float32) {
	c := color.NRGBAModel.Convert(clr).(color.NRGBA)
	return float32(c.R) / 0xff, float32(c.G) / 0xff, float32(c.B) / 0xff, float32(c.A) / 0xff
}
