package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Darken lowers the HSL lightness of a hex color by amount (0..1). Colors
// that do not parse are returned unchanged.
func Darken(amount float64, color string) string {
	return adjustLightness(color, -amount)
}

// Lighten raises the HSL lightness of a hex color by amount (0..1).
func Lighten(amount float64, color string) string {
	return adjustLightness(color, amount)
}

func adjustLightness(color string, delta float64) string {
	c, err := colorful.Hex(color)
	if err != nil {
		return color
	}
	h, s, l := c.Hsl()
	l = math.Min(1, math.Max(0, l+delta))
	return colorful.Hsl(h, s, l).Clamped().Hex()
}
