package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// CompactTheme is the default theme with denser spacing and status colors
// matching the task states shown in the lists
type CompactTheme struct {
	base fyne.Theme
}

// NewCompactTheme creates a new compact theme
func NewCompactTheme() fyne.Theme {
	return &CompactTheme{base: theme.DefaultTheme()}
}

var compactColors = map[fyne.ThemeColorName]color.Color{
	theme.ColorNameSuccess: color.NRGBA{R: 46, G: 160, B: 67, A: 255},  // completed
	theme.ColorNameError:   color.NRGBA{R: 198, G: 40, B: 40, A: 255},  // failed
	theme.ColorNameWarning: color.NRGBA{R: 239, G: 155, B: 0, A: 255},  // paused, stale
	theme.ColorNamePrimary: color.NRGBA{R: 21, G: 101, B: 192, A: 255}, // downloading
}

// Color returns theme colors
func (t *CompactTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if c, ok := compactColors[name]; ok {
		return c
	}
	if name == theme.ColorNameBackground && variant == theme.VariantDark {
		return color.NRGBA{R: 24, G: 24, B: 27, A: 255}
	}
	return t.base.Color(name, variant)
}

// Font returns theme fonts
func (t *CompactTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

// Icon returns theme icons
func (t *CompactTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size returns theme sizes with compact adjustments
func (t *CompactTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameLineSpacing:
		return 2
	case theme.SizeNameScrollBar:
		return 12
	case theme.SizeNameText:
		return 13
	case theme.SizeNameHeadingText:
		return 16
	case theme.SizeNameSubHeadingText, theme.SizeNameCaptionText:
		return 11
	case theme.SizeNameInputRadius:
		return 3
	}
	return t.base.Size(name)
}
