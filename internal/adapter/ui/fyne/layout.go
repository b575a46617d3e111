package fyne

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	fyneapp "fyne.io/fyne/v2"
)

// sidebarLayout places objects[0] as a fixed-width left sidebar and objects[1]
// in the remaining space. At or below the breakpoint the sidebar is hidden and
// the content takes the whole width, matching the band the visualizer keeps free.
type sidebarLayout struct {
	width      float32
	breakpoint float32
}

func (l *sidebarLayout) Layout(objects []fyneapp.CanvasObject, size fyneapp.Size) {
	if len(objects) != 2 {
		return
	}
	sidebar, content := objects[0], objects[1]

	if size.Width <= l.breakpoint {
		sidebar.Hide()
		content.Move(fyneapp.NewPos(0, 0))
		content.Resize(size)
		return
	}

	sidebar.Show()
	sidebar.Move(fyneapp.NewPos(0, 0))
	sidebar.Resize(fyneapp.NewSize(l.width, size.Height))
	content.Move(fyneapp.NewPos(l.width, 0))
	content.Resize(fyneapp.NewSize(size.Width-l.width, size.Height))
}

func (l *sidebarLayout) MinSize(objects []fyneapp.CanvasObject) fyneapp.Size {
	if len(objects) != 2 {
		return fyneapp.NewSize(0, 0)
	}
	return objects[1].MinSize()
}

// roundCorners crops img to its centred square and clears the corners outside a
// circle of radius, given for a square of artSize units.
func roundCorners(img image.Image, radius float64) *image.RGBA {
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	src := image.Pt(b.Min.X+(b.Dx()-side)/2, b.Min.Y+(b.Dy()-side)/2)

	out := image.NewRGBA(image.Rect(0, 0, side, side))
	r := radius * float64(side) / artSize
	draw.DrawMask(out, out.Rect, img, src, cornerMask{side: side, radius: r}, image.Point{}, draw.Src)

	return out
}

// cornerMask is opaque inside a square of the given side with rounded corners.
type cornerMask struct {
	side   int
	radius float64
}

func (m cornerMask) ColorModel() color.Model { return color.AlphaModel }

func (m cornerMask) Bounds() image.Rectangle { return image.Rect(0, 0, m.side, m.side) }

func (m cornerMask) At(x, y int) color.Color {
	// Distance of the pixel centre from the nearest corner circle centre
	fx, fy := float64(x)+0.5, float64(y)+0.5
	s, r := float64(m.side), m.radius
	dx := max(r-fx, fx-(s-r), 0)
	dy := max(r-fy, fy-(s-r), 0)
	if dx == 0 || dy == 0 {
		return color.Alpha{A: 0xff}
	}

	d := math.Hypot(dx, dy)
	switch {
	case d <= r-0.5:
		return color.Alpha{A: 0xff}
	case d >= r+0.5:
		return color.Alpha{}
	default:
		return color.Alpha{A: uint8(255 * (r + 0.5 - d))}
	}
}
