package command

import (
	"strings"
	"time"
	"unicode/utf8"

	"tinygo.org/x/drivers"

	"picoos/device"
	"picoos/errcode"
	"picoos/temp"
	"picoos/x/strconvx"
)

// BlinkPhase is the duration of each level in the blink sequence.
const BlinkPhase = 250 * time.Millisecond

const helpColumn = 12

// Builtins returns the command table in help order.
func Builtins() []*Command {
	return []*Command{
		{Name: "help", Usage: "help", Help: "Show this help information", Parse: noArgs("help"), Exec: execHelp},
		{Name: "version", Usage: "version", Help: "Show firmware version", Parse: noArgs("version"), Exec: execVersion},
		{Name: "echo", Usage: "echo <text...>", Help: "Echo the arguments", Parse: parseText, Exec: execEcho},
		{Name: "reboot", Usage: "reboot", Help: "Reboot the Pico", Parse: noArgs("reboot"), Exec: execReboot},
		{Name: "bootloader", Usage: "bootloader", Help: "Reboot into USB bootloader mode", Parse: noArgs("bootloader"), Exec: execBootloader},
		{Name: "temp", Usage: "temp", Help: "Show the Pico's temperature", Parse: noArgs("temp"), Exec: execTemp},
		{Name: "led", Usage: "led on|off|blink", Help: "Control the onboard LED", Parse: parseLED, Exec: execLED},
		{Name: "write", Usage: "write <slot> <text>", Help: "Write text to a flash slot", Parse: parseWrite, Exec: execWrite},
		{Name: "read", Usage: "read <slot>", Help: "Read text from a flash slot", Parse: parseRead, Exec: execRead},
		{Name: "slots", Usage: "slots", Help: "List flash slots", Parse: noArgs("slots"), Exec: execSlots},
	}
}

func usage(u string) error {
	return &errcode.E{C: errcode.InvalidArgumentCount, Op: "parse", Msg: "Usage: " + u}
}

// ---- parsers ----

func noArgs(name string) func([]string) (Args, error) {
	return func(args []string) (Args, error) {
		if len(args) != 0 {
			return nil, usage(name)
		}
		return NoArgs{}, nil
	}
}

func parseText(args []string) (Args, error) {
	return TextArg{Text: strings.Join(args, " ")}, nil
}

// parseSlot maps the 1-based slot number typed by the user to a store
// index. The upper bound is checked by the store.
func parseSlot(tok string) (int, error) {
	n, err := strconvx.Atoi(tok)
	if err != nil || n < 1 {
		return 0, errcode.InvalidSlotNumber
	}
	return n - 1, nil
}

func parseWrite(args []string) (Args, error) {
	if len(args) < 2 {
		return nil, usage("write <slot> <text>")
	}
	slot, err := parseSlot(args[0])
	if err != nil {
		return nil, err
	}
	return SlotTextArg{Slot: slot, Text: strings.Join(args[1:], " ")}, nil
}

func parseRead(args []string) (Args, error) {
	if len(args) != 1 {
		return nil, usage("read <slot>")
	}
	slot, err := parseSlot(args[0])
	if err != nil {
		return nil, err
	}
	return SlotArg{Slot: slot}, nil
}

func parseLED(args []string) (Args, error) {
	if len(args) != 1 {
		return nil, usage("led on|off|blink")
	}
	switch args[0] {
	case "on":
		return LEDArg{State: LEDOn}, nil
	case "off":
		return LEDArg{State: LEDOff}, nil
	case "blink":
		return LEDArg{State: LEDBlink}, nil
	}
	return nil, &errcode.E{C: errcode.InvalidArgument, Op: "parse", Msg: "Invalid LED state: " + args[0]}
}

// ---- executors ----

func execHelp(_ Args, env *Env) Result {
	var b strings.Builder
	b.WriteString("Available commands:")
	for _, c := range env.Commands {
		b.WriteString("\r\n  ")
		b.WriteString(c.Name)
		for i := len(c.Name); i < helpColumn; i++ {
			b.WriteByte(' ')
		}
		b.WriteString(" - ")
		b.WriteString(c.Help)
	}
	return payload(b.String())
}

func execVersion(_ Args, env *Env) Result {
	return payload(env.Device + " v" + env.Version)
}

func execEcho(a Args, _ *Env) Result {
	return payload(a.(TextArg).Text)
}

func execReboot(_ Args, env *Env) Result {
	if !env.Dev.Watchdog.Present() {
		return fail(errcode.Unsupported)
	}
	return halt(HaltReboot, "Rebooting...")
}

func execBootloader(_ Args, env *Env) Result {
	if !env.Dev.ROM.Present() {
		return fail(errcode.Unsupported)
	}
	return halt(HaltBootloader, "Rebooting into bootloader mode...")
}

func execTemp(_ Args, env *Env) Result {
	var deci int32
	err := env.Dev.ADC.With(func(a device.ADC) error {
		s := temp.New(a)
		if err := s.Update(drivers.Temperature); err != nil {
			return err
		}
		deci = s.DeciCelsius()
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return payload("Temperature: " + temp.FormatDeci(deci) + " °C")
}

func execLED(a Args, env *Env) Result {
	state := a.(LEDArg).State
	err := env.Dev.LED.With(func(led device.Pin) error {
		switch state {
		case LEDOn:
			led.Set(true)
		case LEDOff:
			led.Set(false)
		case LEDBlink:
			return env.Dev.Delay.With(func(d device.Delayer) error {
				led.Set(true)
				d.Sleep(BlinkPhase)
				led.Set(false)
				d.Sleep(BlinkPhase)
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return ok()
}

func execWrite(a Args, env *Env) Result {
	w := a.(SlotTextArg)
	if err := env.Store.Write(w.Slot, []byte(w.Text)); err != nil {
		return fail(err)
	}
	return ok()
}

func execRead(a Args, env *Env) Result {
	data, err := env.Store.Read(a.(SlotArg).Slot)
	switch {
	case err != nil:
		return fail(err)
	case len(data) == 0:
		return payload("<empty>")
	case !utf8.Valid(data):
		return payload("<invalid utf8>")
	}
	return payload(string(data))
}

func execSlots(_ Args, env *Env) Result {
	var b strings.Builder
	for i, s := range env.Store.Slots() {
		if i > 0 {
			b.WriteString("\r\n")
		}
		b.WriteString("  ")
		b.WriteString(strconvx.Itoa(i + 1))
		b.WriteString(": ")
		b.WriteString(s.Name)
	}
	return payload(b.String())
}
