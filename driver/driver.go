// Package driver declares the console driver contract the core
// consumes (spec.md §6 "Console driver (consumed)"). The core never
// talks to a terminal directly — it drains a Driver's event channel and
// writes ANSI through its Write method. Concrete adapters live in
// driver/stdio (raw stdin/stdout, grounded on the teacher's tui
// input/term machinery) and driver/ncurses (an optional cgo adapter
// over goncurses, its own nested module so the root module doesn't
// require a C toolchain to build).
package driver

// Key identifies a special key, or KeyChar for a printable rune.
type Key int

const (
	KeyNull Key = iota
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEsc
	KeySpace
	KeyArrowUp
	KeyArrowDown
	KeyArrowRight
	KeyArrowLeft
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDown
	KeyDelete
	KeyInsert
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyChar
)

// Mod is a bitset of modifier keys.
type Mod int

const (
	ModNone  Mod = 0
	ModCtrl  Mod = 1 << 0
	ModAlt   Mod = 1 << 1
	ModShift Mod = 1 << 2
)

// KeyEvent is produced by Driver.Events on a keypress.
type KeyEvent struct {
	Key  Key
	Rune rune
	Mod  Mod
}

// MouseButton identifies which button a mouse event concerns.
type MouseButton int

const (
	NoButton MouseButton = iota
	Button1
	Button2
	Button3
	Button4
)

// MouseAction is the kind of action a MouseEvent reports.
type MouseAction int

const (
	ActionPressed MouseAction = iota
	ActionReleased
	ActionClicked
	ActionDoubleClicked
	ActionTripleClicked
	ActionMove // ReportMousePosition
	ActionWheelUp
	ActionWheelDown
	ActionEnter
	ActionLeave
)

// MouseEvent is produced by Driver.Events on any mouse activity.
// Coordinates are absolute screen coordinates; the dispatcher is
// responsible for translating them into window-relative coordinates.
type MouseEvent struct {
	Button MouseButton
	Action MouseAction
	X, Y   int
}

// Event is the tagged union delivered on Driver.Events: exactly one of
// Key, Mouse, or Resize is non-nil/non-zero-valued per event, signaled
// by Kind.
type EventKind int

const (
	EventKey EventKind = iota
	EventMouse
	EventResize
)

type Event struct {
	Kind   EventKind
	Key    KeyEvent
	Mouse  MouseEvent
	Width  int // for EventResize
	Height int
}

// Driver is the minimal capability set the core requires of a console
// (spec.md §6).
type Driver interface {
	// ScreenSize returns the current terminal dimensions in cells.
	ScreenSize() (w, h int)

	// Events returns the channel events are delivered on. It is closed
	// when Stop is called.
	Events() <-chan Event

	// WriteToConsole performs an absolute-positioned write; ansiText may
	// itself contain cursor-position escapes and the driver must
	// tolerate that (e.g. by simply passing bytes through).
	WriteToConsole(x, y int, ansiText string) error

	// Clear clears the physical terminal immediately (used on Start and
	// on a hard resync after a DriverIOFault).
	Clear() error

	// Start begins producing events (entering raw mode, starting any
	// background reader goroutines, etc).
	Start() error

	// Stop releases the terminal (restores cooked mode, hides/shows the
	// cursor as appropriate) and closes the Events channel.
	Stop() error
}
