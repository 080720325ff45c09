package command

// Args is the validated argument set produced by a command's Parse. Only
// the types in this file implement it.
type Args interface{ isArgs() }

type NoArgs struct{}

// SlotArg addresses one flash slot by its zero-based index.
type SlotArg struct{ Slot int }

type SlotTextArg struct {
	Slot int
	Text string
}

type TextArg struct{ Text string }

type LEDState uint8

const (
	LEDOff LEDState = iota
	LEDOn
	LEDBlink
)

type LEDArg struct{ State LEDState }

func (NoArgs) isArgs()      {}
func (SlotArg) isArgs()     {}
func (SlotTextArg) isArgs() {}
func (TextArg) isArgs()     {}
func (LEDArg) isArgs()      {}
