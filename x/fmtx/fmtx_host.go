//go:build !rp2040 && !rp2350

package fmtx

import (
	"fmt"
	"io"
	"os"
)

// DefaultOutput receives Print/Printf output. Host builds log to stderr so
// that stdout stays free for a shell session.
var DefaultOutput io.Writer = os.Stderr

func Sprintf(format string, a ...any) string { return fmt.Sprintf(format, a...) }
func Printf(format string, a ...any) (int, error) {
	return fmt.Fprintf(DefaultOutput, format, a...)
}
func Fprintf(w io.Writer, format string, a ...any) (int, error) { return fmt.Fprintf(w, format, a...) }
func Println(a ...any) (int, error)                             { return fmt.Fprintln(DefaultOutput, a...) }
