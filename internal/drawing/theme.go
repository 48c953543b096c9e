package drawing

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
)

// ErrUnknownTheme is returned for a theme name outside the theme table.
var ErrUnknownTheme = errors.New("unknown theme")

// DefaultTheme is used when none is configured.
const DefaultTheme = "light"

var themeBackgrounds = map[string]color.RGBA{
	"light": {R: 255, G: 255, B: 255, A: 255},
	"dark":  {R: 30, G: 30, B: 30, A: 255},
	"sepia": {R: 244, G: 234, B: 224, A: 255},
	"blue":  {R: 227, G: 242, B: 253, A: 255},
	"green": {R: 232, G: 245, B: 233, A: 255},
}

var (
	black = color.RGBA{A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// ThemeBackground returns the background color of a theme.
func ThemeBackground(name string) (color.RGBA, error) {
	bg, ok := themeBackgrounds[name]
	if !ok {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	return bg, nil
}

// ThemeNames lists the known themes in a stable order.
func ThemeNames() []string {
	names := make([]string, 0, len(themeBackgrounds))
	for name := range themeBackgrounds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NextTheme returns the theme after name in ThemeNames, wrapping around.
func NextTheme(name string) string {
	names := ThemeNames()
	for i, n := range names {
		if n == name {
			return names[(i+1)%len(names)]
		}
	}
	return DefaultTheme
}
