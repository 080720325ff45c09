// Package config loads the firmware configuration embedded at build time.
package config

import (
	_ "embed"
	"time"

	"gopkg.in/yaml.v3"

	"picoos/errcode"
	"picoos/x/mathx"
)

//go:embed shell.yaml
var embedded []byte

type Transport struct {
	Kind string `yaml:"kind"`
	Baud uint32 `yaml:"baud"`
}

type Output struct {
	ChunkSize  int           `yaml:"chunk_size"`
	ChunkDelay time.Duration `yaml:"chunk_delay"`
}

type LED struct {
	Pin int `yaml:"pin"`
}

type Log struct {
	UART string `yaml:"uart"`
}

type Config struct {
	Device         string        `yaml:"device"`
	Banner         string        `yaml:"banner"`
	Prompt         string        `yaml:"prompt"`
	Echo           bool          `yaml:"echo"`
	Transport      Transport     `yaml:"transport"`
	Output         Output        `yaml:"output"`
	ReadyPoll      time.Duration `yaml:"ready_poll"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	RebootGrace    time.Duration `yaml:"reboot_grace"`
	LED            LED           `yaml:"led"`
	Log            Log           `yaml:"log"`
}

// Default is the configuration used for keys the YAML leaves out.
func Default() Config {
	return Config{
		Device:         "Pico OS",
		Banner:         "Welcome to Pico OS",
		Prompt:         "> ",
		Echo:           true,
		Transport:      Transport{Kind: "usb", Baud: 115200},
		Output:         Output{ChunkSize: 64, ChunkDelay: 10 * time.Millisecond},
		ReadyPoll:      10 * time.Millisecond,
		ReconnectDelay: time.Second,
		RebootGrace:    time.Second,
		LED:            LED{Pin: 25},
	}
}

// Embedded parses the configuration compiled into the binary.
func Embedded() (Config, error) { return Parse(embedded) }

// Parse decodes data over Default and normalises the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, errcode.Wrap(errcode.InvalidArgument, "config", err)
	}
	return c, c.normalise()
}

func (c *Config) normalise() error {
	switch c.Transport.Kind {
	case "usb", "uart0", "uart1":
	default:
		return &errcode.E{C: errcode.InvalidArgument, Op: "config", Msg: "transport.kind: " + c.Transport.Kind}
	}
	switch c.Log.UART {
	case "", "uart0", "uart1":
	default:
		return &errcode.E{C: errcode.InvalidArgument, Op: "config", Msg: "log.uart: " + c.Log.UART}
	}
	if c.Log.UART == c.Transport.Kind {
		// The shell owns that UART; logging there would corrupt the session.
		c.Log.UART = ""
	}
	if !mathx.InRange(c.LED.Pin, 0, 30) {
		return &errcode.E{C: errcode.InvalidArgument, Op: "config", Msg: "led.pin out of range"}
	}
	c.Transport.Baud = mathx.Clamp(c.Transport.Baud, 1200, 921600)
	c.Output.ChunkSize = mathx.Clamp(c.Output.ChunkSize, 1, 64)
	c.Output.ChunkDelay = mathx.Max(c.Output.ChunkDelay, 0)
	c.ReadyPoll = mathx.Clamp(c.ReadyPoll, time.Millisecond, time.Second)
	c.ReconnectDelay = mathx.Max(c.ReconnectDelay, 0)
	c.RebootGrace = mathx.Max(c.RebootGrace, 0)
	c.Prompt = mathx.Default(c.Prompt, "> ")
	c.Device = mathx.Default(c.Device, "Pico OS")
	return nil
}
