// Package command holds the shell's static command table and dispatches
// tokenized lines against it.
package command

import (
	"picoos/device"
	"picoos/flash"
)

// Command is one entry of the command table. Parse validates the argument
// shape and has no side effects; Exec runs only after Parse succeeded.
type Command struct {
	Name  string
	Usage string
	Help  string
	Parse func(args []string) (Args, error)
	Exec  func(a Args, env *Env) Result
}

// Env is what commands execute against.
type Env struct {
	Dev      *device.Context
	Store    *flash.Store
	Device   string // product name
	Version  string
	Commands []*Command
}
