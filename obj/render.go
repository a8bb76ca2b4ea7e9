package obj

import (
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	pixelOnce sync.Once
	pixel     *ebiten.Image
)

func pixelImage() *ebiten.Image {
	pixelOnce.Do(func() {
		pixel = ebiten.NewImage(1, 1)
		pixel.Fill(color.White)
	})
	return pixel
}

// drawBox draws a flat-colored w x h quad centered at (x, y), rotated by
// angle radians.
func drawBox(screen *ebiten.Image, x, y, w, h, angle float64, clr color.Color) {
	if screen == nil || w <= 0 || h <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-0.5, -0.5)
	op.GeoM.Scale(w, h)
	op.GeoM.Rotate(angle)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(pixelImage(), op)
}

func fillCircle(screen *ebiten.Image, x, y, r float64, clr color.Color) {
	if screen == nil || r <= 0 {
		return
	}
	vector.DrawFilledCircle(screen, float32(x), float32(y), float32(r), clr, true)
}

func strokeLine(screen *ebiten.Image, x0, y0, x1, y1, width float64, clr color.Color) {
	if screen == nil {
		return
	}
	vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), clr, true)
}
