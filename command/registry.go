package command

import (
	"strings"

	"picoos/errcode"
)

// MaxTokens bounds a line's token count, command name included.
const MaxTokens = 8

// Registry dispatches lines against a fixed command table.
type Registry struct {
	env  Env
	cmds []*Command
}

// NewRegistry binds the builtin table to env.
func NewRegistry(env Env) *Registry {
	r := &Registry{cmds: Builtins()}
	env.Commands = r.cmds
	r.env = env
	return r
}

// Commands returns the table in help order.
func (r *Registry) Commands() []*Command { return r.cmds }

// Lookup finds a command by exact name.
func (r *Registry) Lookup(name string) *Command {
	for _, c := range r.cmds {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Execute tokenizes line and runs the named command. A blank line yields
// KindNone. Parse failures return before anything is touched.
func (r *Registry) Execute(line string) Result {
	toks, err := tokenize(line)
	if err != nil {
		return fail(err)
	}
	if len(toks) == 0 {
		return none()
	}
	c := r.Lookup(toks[0])
	if c == nil {
		return fail(errcode.UnknownCommand)
	}
	args, err := c.Parse(toks[1:])
	if err != nil {
		return fail(err)
	}
	return c.Exec(args, &r.env)
}

// tokenize splits a line on whitespace. Quotes and backslashes are plain
// bytes; payloads are stored exactly as typed, modulo spacing.
func tokenize(line string) ([]string, error) {
	toks := strings.Fields(line)
	if len(toks) > MaxTokens {
		return nil, errcode.TooManyArguments
	}
	return toks, nil
}
