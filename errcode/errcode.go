package errcode

// Code is a stable, shell-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK          Code = "ok"
	Busy        Code = "busy" // peripheral already borrowed
	Unsupported Code = "unsupported"

	// Dispatch
	UnknownCommand       Code = "unknown_command"
	TooManyArguments     Code = "too_many_arguments"
	InvalidArgumentCount Code = "invalid_argument_count"
	InvalidArgument      Code = "invalid_argument"

	// Flash slot store
	InvalidSlotNumber Code = "invalid_slot_number"
	DataTooLarge      Code = "data_too_large"
	FlashIO           Code = "flash_io"

	// Transport
	TransportDisconnected Code = "transport_disconnected"
	BufferOverflow        Code = "buffer_overflow"

	// Boot
	AlreadyInitialised Code = "already_initialised"
	MissingPeripheral  Code = "missing_peripheral"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, SomeCode) match a wrapped E.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Wrap attaches op and cause to a code. It returns nil for a nil cause so
// it can wrap a call's result directly.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

var text = map[Code]string{
	Busy:                  "Peripheral busy",
	Unsupported:           "Not supported",
	UnknownCommand:        "Unknown command",
	TooManyArguments:      "Too many arguments",
	InvalidArgumentCount:  "Invalid argument count",
	InvalidArgument:       "Invalid argument",
	InvalidSlotNumber:     "Invalid slot number",
	DataTooLarge:          "Data too large",
	FlashIO:               "Flash access failed",
	TransportDisconnected: "Disconnected",
	BufferOverflow:        "Buffer overflow",
	AlreadyInitialised:    "Already initialised",
	MissingPeripheral:     "Missing peripheral",
}

// Message returns the human-readable text shown on the shell for err.
// An E with a Msg wins over the code's canned text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := err.(*E); ok && e.Msg != "" {
		return e.Msg
	}
	if s, ok := text[Of(err)]; ok {
		return s
	}
	return err.Error()
}
