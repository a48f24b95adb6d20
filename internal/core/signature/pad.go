// Package signature records pointer strokes on a drawing surface and renders
// them to a PNG data URL.
package signature

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"math"
)

const (
	DefaultWidth  = 300
	DefaultHeight = 200

	dataURLPrefix = "data:image/png;base64,"
	lineWidth     = 2.0
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Capture is what a pad emits after end-stroke, undo or clear. Artifact is
// empty whenever the surface is blank or rendering failed; Diagnostic says
// which.
type Capture struct {
	Artifact   string `json:"artifact"`
	Captured   bool   `json:"captured"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Pad is a single signature surface. It is not safe for concurrent use.
type Pad struct {
	width   int
	height  int
	strokes [][]Point

	current []Point
	drawing bool
	signed  bool

	encode func(io.Writer, image.Image) error
}

// NewPad returns a blank pad. Non-positive sizes fall back to the defaults.
func NewPad(width, height int) *Pad {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Pad{width: width, height: height, encode: png.Encode}
}

// HasContent reports whether anything has been drawn since the last clear.
func (p *Pad) HasContent() bool { return p.signed }

// Strokes returns the number of completed strokes.
func (p *Pad) Strokes() int { return len(p.strokes) }

// BeginStroke opens a stroke at pt. A stroke still open from an earlier
// begin is committed first when it has a segment.
func (p *Pad) BeginStroke(pt Point) {
	if p.drawing {
		p.commit()
	}
	p.drawing = true
	p.current = []Point{p.clamp(pt)}
}

// ExtendStroke adds a segment from the last recorded point. It is ignored
// when no stroke is open.
func (p *Pad) ExtendStroke(pt Point) {
	if !p.drawing {
		return
	}
	p.current = append(p.current, p.clamp(pt))
	p.signed = true
}

// EndStroke closes the open stroke and, when the surface has content,
// renders it. Ending a stroke on a blank surface captures nothing.
func (p *Pad) EndStroke() Capture {
	if !p.drawing {
		return Capture{}
	}
	p.drawing = false
	p.commit()

	if !p.signed {
		return Capture{}
	}
	return p.capture()
}

// commit keeps the open stroke when it has a segment. Content is what the
// kept strokes hold, so a discarded stroke leaves no ink behind.
func (p *Pad) commit() {
	if len(p.current) > 1 {
		p.strokes = append(p.strokes, p.current)
	}
	p.current = nil
	p.signed = len(p.strokes) > 0
}

// Clear blanks the surface and drops all stroke history.
func (p *Pad) Clear() Capture {
	p.strokes = nil
	p.current = nil
	p.drawing = false
	p.signed = false
	return Capture{Captured: true, Diagnostic: "signature cleared"}
}

// Undo removes the most recent stroke and re-renders what is left.
func (p *Pad) Undo() Capture {
	if len(p.strokes) <= 1 {
		return p.Clear()
	}
	p.strokes = p.strokes[:len(p.strokes)-1]
	return p.capture()
}

func (p *Pad) capture() Capture {
	var buf bytes.Buffer
	if err := p.encode(&buf, p.render()); err != nil {
		log.Printf("signature: failed to encode image: %v", err)
		return Capture{Diagnostic: fmt.Sprintf("error capturing signature: %v", err)}
	}
	return Capture{
		Artifact: dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Captured: true,
	}
}

func (p *Pad) render() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	for _, stroke := range p.strokes {
		for i := 1; i < len(stroke); i++ {
			drawSegment(img, stroke[i-1], stroke[i])
		}
	}
	return img
}

func (p *Pad) clamp(pt Point) Point {
	return Point{
		X: math.Max(0, math.Min(pt.X, float64(p.width-1))),
		Y: math.Max(0, math.Min(pt.Y, float64(p.height-1))),
	}
}

// drawSegment stamps round dots along a-b, which gives round caps and joins.
func drawSegment(img *image.RGBA, a, b Point) {
	dist := math.Hypot(b.X-a.X, b.Y-a.Y)
	steps := int(math.Ceil(dist*2)) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		stamp(img, a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t)
	}
}

func stamp(img *image.RGBA, cx, cy float64) {
	r := lineWidth / 2
	bounds := img.Bounds()
	for y := int(math.Floor(cy - r)); y <= int(math.Ceil(cy+r)); y++ {
		for x := int(math.Floor(cx - r)); x <= int(math.Ceil(cx+r)); x++ {
			if !(image.Point{X: x, Y: y}).In(bounds) {
				continue
			}
			if math.Hypot(float64(x)-cx, float64(y)-cy) <= r {
				img.SetRGBA(x, y, color.RGBA{A: 0xff})
			}
		}
	}
}

// Snapshot is the serialisable form of a pad between requests. An open
// stroke is not part of it.
type Snapshot struct {
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Strokes [][]Point `json:"strokes,omitempty"`
	Signed  bool      `json:"signed"`
}

func (p *Pad) Snapshot() Snapshot {
	strokes := make([][]Point, len(p.strokes))
	copy(strokes, p.strokes)
	return Snapshot{Width: p.width, Height: p.height, Strokes: strokes, Signed: p.signed}
}

// Restore rebuilds a pad from a snapshot.
func Restore(s Snapshot) *Pad {
	p := NewPad(s.Width, s.Height)
	p.strokes = s.Strokes
	p.signed = s.Signed && len(s.Strokes) > 0
	return p
}

// Artifact renders the current surface without changing it.
func (p *Pad) Artifact() Capture {
	if !p.signed {
		return Capture{}
	}
	return p.capture()
}
