// Command picoterm is an interactive terminal for the shell firmware.
//
//	picoterm -port /dev/ttyACM0
//	picoterm -e write 1 hello
//
// The device splits lines on whitespace, so arguments are sent joined by
// single spaces; "exit" and "clear" stay local.
package main

import (
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"picoos/hostlink"
)

var (
	portName = flag.String("port", "/dev/ttyACM0", "Serial device of the Pico.")
	baud     = flag.Int("baud", 115200, "Baud rate (ignored by USB CDC).")
	timeout  = flag.Duration("timeout", 5*time.Second, "Time to wait for each response.")
	evalOnly = flag.Bool("e", false, "Send the arguments as one command and exit.")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	conn, err := hostlink.Open(*portName, *baud, 100*time.Millisecond)
	if err != nil {
		glog.Exitf("open %s: %v", *portName, err)
	}
	defer conn.Close()

	// A fresh connection gets the banner; a session that was already open
	// stays silent until the next command.
	conn.Timeout = time.Second
	banner, err := conn.Sync()
	if err != nil && !errors.Is(err, hostlink.ErrTimeout) {
		glog.Exitf("sync: %v", err)
	}
	conn.Timeout = *timeout
	glog.V(1).Infof("connected to %s", *portName)

	if *evalOnly {
		out, err := conn.Do(strings.Join(flag.Args(), " "))
		if err != nil {
			glog.Errorf("%v", err)
			glog.Flush()
			os.Exit(1)
		}
		if out != "" {
			os.Stdout.WriteString(terminal(out) + "\n")
		}
		return
	}

	sh := ishell.New()
	sh.SetPrompt("pico> ")
	if banner != "" {
		sh.Println(terminal(banner))
	}
	forward := func(c *ishell.Context) {
		out, err := conn.Do(strings.Join(c.RawArgs, " "))
		if err != nil {
			c.Err(err)
			return
		}
		if out != "" {
			c.Println(terminal(out))
		}
	}
	// Replaces ishell's own help with the device's.
	sh.AddCmd(&ishell.Cmd{Name: "help", Help: "List device commands", Func: forward})
	sh.NotFound(forward)
	sh.Run()
}

func terminal(s string) string { return strings.ReplaceAll(s, "\r\n", "\n") }
