package silhouette

import (
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
)

// Figure geometry in SVG units. Feet rest on groundY; vertical scaling is
// applied about that line so taller figures grow upward.
const (
	canvasWidth  = 200
	canvasHeight = 420
	centerX      = 100.0
	groundY      = 400.0

	headY     = 62.0
	headR     = 22.0
	neckY     = 96.0
	shoulderY = 108.0
	chestY    = 150.0
	waistY    = 205.0
	hipY      = 250.0
	crotchY   = 272.0
	handY     = 258.0
	ankleY    = 398.0
)

var errEmptyDescriptor = errors.New("silhouette: descriptor has no shape")

// Render writes d as a standalone SVG document.
func Render(w io.Writer, d Descriptor) error {
	if !d.Shape.defined() {
		return errEmptyDescriptor
	}
	s := d.Shape

	var b strings.Builder
	fmt.Fprintf(&b, `<svg version="1.1" xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" data-variant="%s">`,
		canvasWidth, canvasHeight, canvasWidth, canvasHeight, d.Key)
	fmt.Fprintf(&b, `<title>%s</title>`, html.EscapeString(d.Label))
	fmt.Fprintf(&b, `<line x1="20" y1="%.1f" x2="180" y2="%.1f" stroke="#d1d5db" stroke-width="2"/>`, groundY, groundY)
	fmt.Fprintf(&b, `<g id="figure" fill="%s" transform="translate(0 %.1f) scale(1 %.4f) translate(0 %.1f)">`,
		d.Color, groundY, d.VerticalScale, -groundY)

	fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`, centerX, headY, headR)
	fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="16" height="%.1f"/>`, centerX-8, headY+headR-4, neckY-headY-headR+8)
	b.WriteString(torsoPath(s))
	b.WriteString(armPolygon(s, -1))
	b.WriteString(armPolygon(s, 1))
	b.WriteString(legPolygon(s, -1))
	b.WriteString(legPolygon(s, 1))
	b.WriteString(`</g>`)

	fmt.Fprintf(&b, `<text x="%.1f" y="416" text-anchor="middle" font-family="sans-serif" font-size="12" fill="%s">%s</text>`,
		centerX, d.Color, html.EscapeString(d.Label))
	b.WriteString(`</svg>`)

	_, err := io.WriteString(w, b.String())
	return err
}

func torsoPath(s Shape) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<path id="torso" d="M %.1f %.1f L %.1f %.1f`, centerX-8, neckY, centerX-s.Shoulder, shoulderY)
	fmt.Fprintf(&b, ` Q %.1f %.1f %.1f %.1f`, centerX-s.Chest-4, chestY-20, centerX-s.Chest, chestY)
	fmt.Fprintf(&b, ` Q %.1f %.1f %.1f %.1f`, centerX-s.Waist, waistY-15, centerX-s.Waist, waistY)
	fmt.Fprintf(&b, ` Q %.1f %.1f %.1f %.1f`, centerX-s.Hip, hipY-20, centerX-s.Hip, hipY)
	fmt.Fprintf(&b, ` L %.1f %.1f L %.1f %.1f`, centerX, crotchY, centerX+s.Hip, hipY)
	fmt.Fprintf(&b, ` Q %.1f %.1f %.1f %.1f`, centerX+s.Hip, hipY-20, centerX+s.Waist, waistY)
	fmt.Fprintf(&b, ` Q %.1f %.1f %.1f %.1f`, centerX+s.Waist, waistY-15, centerX+s.Chest, chestY)
	fmt.Fprintf(&b, ` Q %.1f %.1f %.1f %.1f`, centerX+s.Chest+4, chestY-20, centerX+s.Shoulder, shoulderY)
	fmt.Fprintf(&b, ` L %.1f %.1f Z"/>`, centerX+8, neckY)
	return b.String()
}

// side is -1 for the figure's right (viewer's left) and 1 for the other.
func armPolygon(s Shape, side float64) string {
	x := centerX + side*s.Shoulder
	half := s.Arm / 2
	return fmt.Sprintf(`<polygon points="%.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f"/>`,
		x-side*half, shoulderY+4,
		x+side*half, shoulderY+4,
		x+side*(half+6), handY,
		x-side*(half-6), handY,
	)
}

func legPolygon(s Shape, side float64) string {
	ankle := s.Thigh * 0.55
	return fmt.Sprintf(`<polygon points="%.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f"/>`,
		centerX+side*s.Hip, hipY,
		centerX+side*2, crotchY,
		centerX+side*5, ankleY,
		centerX+side*(5+ankle), ankleY,
	)
}
