package extractor

import (
	"fmt"
	"math"
	"strconv"

	"github.com/kataras/figma-keytheme/pkg/figma"
)

// ColorFormat is the normalized text representation of an extracted color.
type ColorFormat string

const (
	// FormatHex renders #RRGGBB, or #RRGGBBAA for translucent colors.
	FormatHex ColorFormat = "hex"
	// FormatARGB renders 0xAARRGGBB, the layout of Android color ints.
	FormatARGB ColorFormat = "argb"
	// FormatRGBA renders rgba(r, g, b, a) with a in [0, 1].
	FormatRGBA ColorFormat = "rgba"
)

// ParseColorFormat validates a color format name.
func ParseColorFormat(s string) (ColorFormat, error) {
	switch f := ColorFormat(s); f {
	case FormatHex, FormatARGB, FormatRGBA:
		return f, nil
	case "":
		return FormatHex, nil
	}
	return "", fmt.Errorf("invalid color format %q (must be hex, argb or rgba)", s)
}

// Attribute names the style attribute read from a key node.
type Attribute string

const (
	AttrFill                Attribute = "fill"
	AttrStroke              Attribute = "stroke"
	AttrBackground          Attribute = "background"
	AttrFillGradientStart   Attribute = "fill-gradient-start"
	AttrFillGradientEnd     Attribute = "fill-gradient-end"
	AttrStrokeGradientStart Attribute = "stroke-gradient-start"
	AttrStrokeGradientEnd   Attribute = "stroke-gradient-end"
)

// ParseAttribute validates an attribute name.
func ParseAttribute(s string) (Attribute, error) {
	switch a := Attribute(s); a {
	case AttrFill, AttrStroke, AttrBackground,
		AttrFillGradientStart, AttrFillGradientEnd,
		AttrStrokeGradientStart, AttrStrokeGradientEnd:
		return a, nil
	case "":
		return AttrFill, nil
	}
	return "", fmt.Errorf("invalid attribute %q", s)
}

// StyleValue reads attr from node and formats it. The second result is false when
// the node does not carry the attribute; only visible paints are considered.
func StyleValue(node *figma.Node, attr Attribute, format ColorFormat) (string, bool) {
	switch attr {
	case AttrFill:
		return solidValue(node.Fills, format)
	case AttrStroke:
		return solidValue(node.Strokes, format)
	case AttrBackground:
		if node.BackgroundColor == nil {
			return "", false
		}
		return FormatColor(*node.BackgroundColor, 1, format), true
	case AttrFillGradientStart:
		return gradientValue(node.Fills, false, format)
	case AttrFillGradientEnd:
		return gradientValue(node.Fills, true, format)
	case AttrStrokeGradientStart:
		return gradientValue(node.Strokes, false, format)
	case AttrStrokeGradientEnd:
		return gradientValue(node.Strokes, true, format)
	}
	return "", false
}

func solidValue(paints []figma.Paint, format ColorFormat) (string, bool) {
	for _, p := range paints {
		if p.Type == "SOLID" && p.Color != nil && p.IsVisible() {
			return FormatColor(*p.Color, p.EffectiveOpacity(), format), true
		}
	}
	return "", false
}

func gradientValue(paints []figma.Paint, end bool, format ColorFormat) (string, bool) {
	for _, p := range paints {
		if !p.IsGradient() || !p.IsVisible() || len(p.GradientStops) < 2 {
			continue
		}
		stop := p.GradientStops[0]
		if end {
			stop = p.GradientStops[len(p.GradientStops)-1]
		}
		return FormatColor(stop.Color, p.EffectiveOpacity(), format), true
	}
	return "", false
}

// FormatColor converts a Figma color (0-1 channels) to format. The effective alpha is
// the color's own alpha multiplied by the paint opacity.
func FormatColor(c figma.Color, opacity float64, format ColorFormat) string {
	r := channel(c.R)
	g := channel(c.G)
	b := channel(c.B)
	alpha := c.A * opacity
	a := channel(alpha)

	switch format {
	case FormatARGB:
		return fmt.Sprintf("0x%02X%02X%02X%02X", a, r, g, b)
	case FormatRGBA:
		rounded := math.Round(alpha*1000) / 1000
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(rounded, 'f', -1, 64))
	}

	if a < 255 {
		return fmt.Sprintf("#%02X%02X%02X%02X", r, g, b, a)
	}
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

func channel(v float64) int {
	n := int(math.Round(v * 255))
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}
