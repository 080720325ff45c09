package main

import "testing"

func TestTerminalLineEndings(t *testing.T) {
	got := terminal("Available commands:\r\n  help\r\n  read")
	if got != "Available commands:\n  help\n  read" {
		t.Fatalf("terminal = %q", got)
	}
}
