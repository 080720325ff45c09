// Command picoos is the shell firmware. Built for the Pico it drives the
// board; built for a host it simulates one over stdin/stdout.
package main

import (
	"context"
	"io"

	"picoos/board"
	"picoos/command"
	"picoos/config"
	"picoos/device"
	"picoos/flash"
	"picoos/shell"
	"picoos/x/conv"
	"picoos/x/fmtx"
)

// version is overridden with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	cfg, err := config.Embedded()
	if err != nil {
		fatal("config", err)
	}
	b, err := board.Boot(cfg)
	if err != nil {
		fatal("board", err)
	}
	fmtx.DefaultOutput = logSink(b)
	fmtx.Println("[boot]", cfg.Device, "v"+version, "transport:", cfg.Transport.Kind)

	dev, err := device.Init(b.Peripherals)
	if err != nil {
		fatal("device", err)
	}
	store := flash.NewStore(b.Flash, flash.Slots[:])
	if err := store.Check(); err != nil {
		fatal("flash", err)
	}
	for _, sl := range store.Slots() {
		fmtx.Println("[boot]", sl.Name, "at", conv.Hex32(sl.Offset))
	}

	reg := command.NewRegistry(command.Env{
		Dev:     dev,
		Store:   store,
		Device:  cfg.Device,
		Version: version,
	})
	sh := shell.New(dev, reg, shellConfig(cfg))

	fmtx.Println("[boot] shell ready")
	err = sh.Serve(context.Background())
	fmtx.Println("[boot] shell stopped:", err)
	board.Halt()
}

func shellConfig(cfg config.Config) shell.Config {
	return shell.Config{
		Banner:         cfg.Banner,
		Prompt:         cfg.Prompt,
		Echo:           cfg.Echo,
		ChunkSize:      cfg.Output.ChunkSize,
		ChunkDelay:     cfg.Output.ChunkDelay,
		ReadyPoll:      cfg.ReadyPoll,
		ReconnectDelay: cfg.ReconnectDelay,
		HaltGrace:      cfg.RebootGrace,
	}
}

// logSink is where diagnostics go. A board without a log sink discards
// them on every build.
func logSink(b *board.Board) io.Writer {
	if b.Log == nil {
		return io.Discard
	}
	return b.Log
}

// fatal reports a boot failure on the console and parks the device.
func fatal(stage string, err error) {
	println("[boot]", stage, "failed:", err.Error())
	board.Halt()
}
