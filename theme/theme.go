// Package theme implements the Theme record of spec.md §3: desktop
// char/colors, top/bottom bar colors, button palette, notification
// palettes, and the modal-flash color. Controls fall back to their
// window's colors, which fall back to the Theme's.
//
// Fields are backed by signals.Signal so a live theme swap (Set) can be
// observed without the compositor walking the window list itself: the
// render path reads colors through Peek (no subscription, so the hot
// path pays nothing extra), while compositor.Compositor.bindTheme reads
// the same fields through Get inside a signals.Effect and calls
// Window.Invalidate on every open window when one fires.
package theme

import (
	"github.com/consolewm/consolewm/cellgrid"
	"github.com/consolewm/consolewm/signals"
)

// BorderStyle selects the glyph set used by the chrome package.
type BorderStyle int

const (
	BorderNone BorderStyle = iota
	BorderSingle
	BorderRounded
	BorderDouble
)

// ButtonPalette colors the three title-bar buttons.
type ButtonPalette struct {
	Fg, Bg cellgrid.Color
}

// Theme is the desktop-wide default palette. All fields are exposed
// through a Signal getter so reads inside a signals.Effect (or
// signals.Computed) subscribe to future changes.
type Theme struct {
	DesktopChar       *signals.Signal[rune]
	DesktopFg         *signals.Signal[cellgrid.Color]
	DesktopBg         *signals.Signal[cellgrid.Color]
	TopBarFg          *signals.Signal[cellgrid.Color]
	TopBarBg          *signals.Signal[cellgrid.Color]
	BottomBarFg       *signals.Signal[cellgrid.Color]
	BottomBarBg       *signals.Signal[cellgrid.Color]
	ActiveBorderFg    *signals.Signal[cellgrid.Color]
	InactiveBorderFg  *signals.Signal[cellgrid.Color]
	TitleFg           *signals.Signal[cellgrid.Color]
	ButtonPalette     *signals.Signal[ButtonPalette]
	NotificationInfo  *signals.Signal[ButtonPalette]
	NotificationWarn  *signals.Signal[ButtonPalette]
	NotificationError *signals.Signal[ButtonPalette]
	FlashColor        *signals.Signal[cellgrid.Color]
	DefaultBorderStyle BorderStyle
}

// Default returns the built-in default theme, loosely modeled on the
// teacher's terminal-capability defaults (basic 16-color ANSI, a dim
// desktop fill, a reverse-video title for the active window).
func Default() *Theme {
	return &Theme{
		DesktopChar:        signals.New('·'),
		DesktopFg:          signals.New(cellgrid.Palette256(8)),
		DesktopBg:          signals.New(cellgrid.Default),
		TopBarFg:           signals.New(cellgrid.Palette256(15)),
		TopBarBg:           signals.New(cellgrid.Palette256(4)),
		BottomBarFg:        signals.New(cellgrid.Palette256(15)),
		BottomBarBg:        signals.New(cellgrid.Palette256(4)),
		ActiveBorderFg:     signals.New(cellgrid.Palette256(14)),
		InactiveBorderFg:   signals.New(cellgrid.Palette256(8)),
		TitleFg:            signals.New(cellgrid.Palette256(15)),
		ButtonPalette:      signals.New(ButtonPalette{Fg: cellgrid.Palette256(0), Bg: cellgrid.Palette256(7)}),
		NotificationInfo:   signals.New(ButtonPalette{Fg: cellgrid.Palette256(15), Bg: cellgrid.Palette256(4)}),
		NotificationWarn:   signals.New(ButtonPalette{Fg: cellgrid.Palette256(0), Bg: cellgrid.Palette256(3)}),
		NotificationError:  signals.New(ButtonPalette{Fg: cellgrid.Palette256(15), Bg: cellgrid.Palette256(1)}),
		FlashColor:         signals.New(cellgrid.Palette256(11)),
		DefaultBorderStyle: BorderSingle,
	}
}

// Colors is a per-window/per-control color resolution: a value of
// Default (cellgrid.Default) means "fall back to the next level up"
// (control -> window -> theme), per spec.md §3.
type Colors struct {
	Fg, Bg cellgrid.Color
}

// Resolve returns c.Fg/Bg if set, else falls back to parent.
func (c Colors) Resolve(parent Colors) Colors {
	out := c
	if out.Fg == cellgrid.Default {
		out.Fg = parent.Fg
	}
	if out.Bg == cellgrid.Default {
		out.Bg = parent.Bg
	}
	return out
}
