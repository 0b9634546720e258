package fbxview

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/vector"
)

// Canvas is a Renderer that rasterizes the projected wireframe of every
// shown mesh.
type Canvas struct {
	Width      int
	Height     int
	Margin     int
	LineWidth  float64
	Background color.Color
	Underlay   image.Image

	meshes []*Mesh
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		Width:      width,
		Height:     height,
		Margin:     20,
		LineWidth:  1,
		Background: color.White,
	}
}

func (cv *Canvas) AddMesh(m *Mesh) {
	cv.meshes = append(cv.meshes, m)
}

func (cv *Canvas) Meshes() []*Mesh {
	return cv.meshes
}

type view struct {
	minX, minY float64
	k          float64
	offX, offY float64
	height     float64
}

func (v view) apply(x, y float64) (float32, float32) {
	px := (x-v.minX)*v.k + v.offX
	py := v.height - ((y-v.minY)*v.k + v.offY)
	return float32(px), float32(py)
}

// fit maps the 2D extent of all shown meshes into the canvas, keeping the
// aspect ratio and flipping y.
func (cv *Canvas) fit() (view, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, m := range cv.meshes {
		if !m.Shown() {
			continue
		}
		for i := 0; i < m.NumVertices(); i++ {
			p, _ := m.Vertex2D(i)
			if !finite(p[0]) || !finite(p[1]) {
				continue
			}
			minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
			minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
		}
	}
	if math.IsInf(minX, 1) {
		return view{}, false
	}

	w := float64(cv.Width - 2*cv.Margin)
	h := float64(cv.Height - 2*cv.Margin)
	dx, dy := maxX-minX, maxY-minY
	k := 1.0
	switch {
	case dx > 0 && dy > 0:
		k = math.Min(w/dx, h/dy)
	case dx > 0:
		k = w / dx
	case dy > 0:
		k = h / dy
	}
	return view{
		minX:   minX,
		minY:   minY,
		k:      k,
		offX:   float64(cv.Margin) + (w-dx*k)/2,
		offY:   float64(cv.Margin) + (h-dy*k)/2,
		height: float64(cv.Height),
	}, true
}

func (cv *Canvas) Render() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cv.Width, cv.Height))
	bg := cv.Background
	if bg == nil {
		bg = color.White
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	if cv.Underlay != nil {
		draw.Draw(img, img.Bounds(), cv.Underlay, cv.Underlay.Bounds().Min, draw.Over)
	}

	vw, ok := cv.fit()
	if !ok {
		return img
	}
	half := float32(cv.LineWidth / 2)
	if half <= 0 {
		half = 0.5
	}

	for _, m := range cv.meshes {
		if !m.Shown() {
			continue
		}
		z := vector.NewRasterizer(cv.Width, cv.Height)
		drawn := 0
		for _, s := range Segments(m.edges) {
			a, err1 := m.Vertex2D(s[0])
			b, err2 := m.Vertex2D(s[1])
			if err1 != nil || err2 != nil || !finite(a[0]) || !finite(a[1]) || !finite(b[0]) || !finite(b[1]) {
				continue
			}
			ax, ay := vw.apply(a[0], a[1])
			bx, by := vw.apply(b[0], b[1])
			if strokeSegment(z, ax, ay, bx, by, half) {
				drawn++
			}
		}
		if drawn == 0 {
			continue
		}
		col, ok := ParseColor(m.Color())
		if !ok {
			col = color.Black
		}
		z.Draw(img, img.Bounds(), image.NewUniform(col), image.Point{})
	}
	return img
}

// strokeSegment adds the segment as a quad of half-width h.
func strokeSegment(z *vector.Rasterizer, ax, ay, bx, by, h float32) bool {
	dx, dy := bx-ax, by-ay
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return false
	}
	nx, ny := -dy/l*h, dx/l*h
	z.MoveTo(ax+nx, ay+ny)
	z.LineTo(bx+nx, by+ny)
	z.LineTo(bx-nx, by-ny)
	z.LineTo(ax-nx, ay-ny)
	z.ClosePath()
	return true
}

// Save renders and encodes by file extension.
func (cv *Canvas) Save(path string) error {
	img := cv.Render()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeImage(f, img, FormatOf(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var namedColors = map[string]color.RGBA{
	"b": {0, 0, 255, 255},
	"g": {0, 128, 0, 255},
	"r": {255, 0, 0, 255},
	"c": {0, 191, 191, 255},
	"m": {191, 0, 191, 255},
	"y": {191, 191, 0, 255},
	"k": {0, 0, 0, 255},
	"w": {255, 255, 255, 255},
}

// ParseColor reads a one-letter color tag or #rrggbb.
func ParseColor(tag string) (color.Color, bool) {
	if c, ok := namedColors[tag]; ok {
		return c, true
	}
	if strings.HasPrefix(tag, "#") && len(tag) == 7 {
		v, err := strconv.ParseUint(tag[1:], 16, 32)
		if err != nil {
			return nil, false
		}
		return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, true
	}
	return nil, false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

var _ Renderer = (*Canvas)(nil)
