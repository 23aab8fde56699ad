// Package theme resolves the light/dark display preference and the palette
// each surface renders with.
//
// Integration example:
//
//	stored := cookieValue // "" when the visitor never toggled
//	mode := theme.Resolve(stored, prefersDark)
//	palette := theme.PaletteFor(mode)
//	logo := mode.LogoPath()
//
// Toggling writes the inverted mode back to wherever it was read from:
//
//	next := mode.Toggle()
//	setCookie(theme.CookieName, next.String())
package theme
