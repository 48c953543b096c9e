// Package styles implements the character formatting model of text tabs:
// an append-only sequence of possibly overlapping ranges, each carrying a
// partial attribute, resolved per axis with the most recent range winning.
package styles

import (
	"fmt"
	"strconv"
	"strings"
)

// Weight is the font weight axis.
type Weight int

const (
	WeightNormal Weight = iota
	WeightBold
)

// Slant is the font slant axis.
type Slant int

const (
	SlantRoman Slant = iota
	SlantItalic
)

// Color is an opaque RGB color.
type Color struct {
	R, G, B uint8
}

// ParseColor parses "#rrggbb" (the leading # is optional).
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustColor is ParseColor for constants.
func MustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Highlight palette offered by the editor.
var (
	Yellow    = MustColor("#FFFF00")
	Green     = MustColor("#00FF00")
	Cyan      = MustColor("#00FFFF")
	Pink      = MustColor("#FF69B4")
	Orange    = MustColor("#FFA500")
	LightBlue = MustColor("#ADD8E6")
)

// Palette lists the predefined highlight colors in menu order.
var Palette = []Color{Yellow, Green, Cyan, Pink, Orange, LightBlue}

// Attribute is a fully resolved character format.
type Attribute struct {
	Weight    Weight
	Slant     Slant
	Underline bool
	Highlight *Color
	Family    string
	SizePt    int
}

// Bold reports whether the weight axis is bold.
func (a Attribute) Bold() bool { return a.Weight == WeightBold }

// Italic reports whether the slant axis is italic.
func (a Attribute) Italic() bool { return a.Slant == SlantItalic }

// Equal compares two attributes axis by axis.
func (a Attribute) Equal(b Attribute) bool {
	if a.Weight != b.Weight || a.Slant != b.Slant || a.Underline != b.Underline ||
		a.Family != b.Family || a.SizePt != b.SizePt {
		return false
	}
	if (a.Highlight == nil) != (b.Highlight == nil) {
		return false
	}
	return a.Highlight == nil || *a.Highlight == *b.Highlight
}

// Partial is an attribute where every axis is optional. A nil field leaves
// the axis to earlier ranges or the document default.
type Partial struct {
	Weight    *Weight
	Slant     *Slant
	Underline *bool
	Highlight *Color
	Family    *string
	SizePt    *int
}

// IsEmpty reports whether no axis is set.
func (p Partial) IsEmpty() bool {
	return p.Weight == nil && p.Slant == nil && p.Underline == nil &&
		p.Highlight == nil && p.Family == nil && p.SizePt == nil
}

// HasHighlight reports whether the partial sets the highlight axis.
func (p Partial) HasHighlight() bool { return p.Highlight != nil }

// WithoutHighlight returns a copy with the highlight axis unset.
func (p Partial) WithoutHighlight() Partial {
	p.Highlight = nil
	return p
}

// Merge overlays other onto p: axes set in other win.
func (p Partial) Merge(other Partial) Partial {
	if other.Weight != nil {
		p.Weight = other.Weight
	}
	if other.Slant != nil {
		p.Slant = other.Slant
	}
	if other.Underline != nil {
		p.Underline = other.Underline
	}
	if other.Highlight != nil {
		p.Highlight = other.Highlight
	}
	if other.Family != nil {
		p.Family = other.Family
	}
	if other.SizePt != nil {
		p.SizePt = other.SizePt
	}
	return p
}

// ApplyTo overlays p onto a resolved attribute.
func (p Partial) ApplyTo(a Attribute) Attribute {
	if p.Weight != nil {
		a.Weight = *p.Weight
	}
	if p.Slant != nil {
		a.Slant = *p.Slant
	}
	if p.Underline != nil {
		a.Underline = *p.Underline
	}
	if p.Highlight != nil {
		c := *p.Highlight
		a.Highlight = &c
	}
	if p.Family != nil {
		a.Family = *p.Family
	}
	if p.SizePt != nil {
		a.SizePt = *p.SizePt
	}
	return a
}

// FormatOf returns every axis of a except the highlight.
func FormatOf(a Attribute) Partial {
	return Partial{
		Weight:    &a.Weight,
		Slant:     &a.Slant,
		Underline: &a.Underline,
		Family:    &a.Family,
		SizePt:    &a.SizePt,
	}
}

// WithWeight returns a partial setting only the weight axis.
func WithWeight(w Weight) Partial { return Partial{Weight: &w} }

// WithSlant returns a partial setting only the slant axis.
func WithSlant(s Slant) Partial { return Partial{Slant: &s} }

// WithUnderline returns a partial setting only the underline axis.
func WithUnderline(on bool) Partial { return Partial{Underline: &on} }

// WithHighlight returns a partial setting only the highlight axis.
func WithHighlight(c Color) Partial { return Partial{Highlight: &c} }

// WithFont returns a partial setting family and size. Empty family or a
// non-positive size leaves that axis unset.
func WithFont(family string, sizePt int) Partial {
	var p Partial
	if family != "" {
		p.Family = &family
	}
	if sizePt > 0 {
		p.SizePt = &sizePt
	}
	return p
}
