package surface

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// linePadding is added below each text line.
	linePadding = 3
	// leftMargin offsets text from the left edge.
	leftMargin = 4
)

// Canvas is a raster target made of fixed-height text lines.
// Pieces claim a free line, draw into it and clear it on teardown.
type Canvas struct {
	mu    sync.Mutex
	img   *image.RGBA
	face  font.Face
	fg    image.Image
	bg    image.Image
	text  []string
	used  []bool
	lineH int
}

// NewCanvas returns a blank canvas of the given pixel size using the
// built-in 7x13 bitmap face.
func NewCanvas(width, height int) *Canvas {
	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil() + linePadding
	n := height / lineH
	c := &Canvas{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		face:  face,
		fg:    image.NewUniform(color.Black),
		bg:    image.NewUniform(color.White),
		text:  make([]string, n),
		used:  make([]bool, n),
		lineH: lineH,
	}
	draw.Draw(c.img, c.img.Bounds(), c.bg, image.Point{}, draw.Src)
	return c
}

// Lines returns the number of text lines the canvas holds.
func (c *Canvas) Lines() int {
	return len(c.text)
}

// Claim reserves the first free line. It reports false when every line is
// taken.
func (c *Canvas) Claim() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, u := range c.used {
		if !u {
			c.used[i] = true
			return i, true
		}
	}
	return 0, false
}

// DrawText replaces the contents of line with text. Text wider than the
// canvas is cut to fit.
func (c *Canvas) DrawText(line int, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if line < 0 || line >= len(c.text) {
		return fmt.Errorf("surface: line %d out of range [0,%d)", line, len(c.text))
	}
	text = c.fit(text)
	c.clear(line)
	d := font.Drawer{
		Dst:  c.img,
		Src:  c.fg,
		Face: c.face,
		Dot:  fixed.P(leftMargin, line*c.lineH+c.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
	c.text[line] = text
	return nil
}

// ClearLine blanks line and releases it for Claim.
func (c *Canvas) ClearLine(line int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if line < 0 || line >= len(c.text) {
		return
	}
	c.clear(line)
	c.text[line] = ""
	c.used[line] = false
}

func (c *Canvas) clear(line int) {
	r := image.Rect(0, line*c.lineH, c.img.Bounds().Dx(), (line+1)*c.lineH)
	draw.Draw(c.img, r, c.bg, image.Point{}, draw.Src)
}

// fit drops trailing runes until text fits the drawable width.
func (c *Canvas) fit(text string) string {
	limit := c.img.Bounds().Dx() - 2*leftMargin
	runes := []rune(text)
	for len(runes) > 0 && font.MeasureString(c.face, string(runes)).Ceil() > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}

// Text returns the text currently drawn on line.
func (c *Canvas) Text(line int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if line < 0 || line >= len(c.text) {
		return ""
	}
	return c.text[line]
}

// Used returns the number of claimed lines.
func (c *Canvas) Used() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, u := range c.used {
		if u {
			n++
		}
	}
	return n
}

// MeasureText returns the advance width of text in pixels.
func (c *Canvas) MeasureText(text string) int {
	return font.MeasureString(c.face, text).Ceil()
}

// Image returns the backing image. Callers must not draw into it while
// pieces are mounted.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// WritePNG encodes the canvas as PNG.
func (c *Canvas) WritePNG(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return png.Encode(w, c.img)
}
