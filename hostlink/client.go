// Package hostlink drives the firmware shell from a host: it sends one
// line at a time and collects the response up to the next prompt.
package hostlink

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"time"
)

// Prompt ends every response the shell renders.
const Prompt = "\r\n> "

// MaxLine mirrors the firmware's line buffer; longer lines are truncated
// by the device.
const MaxLine = 64

const errorPrefix = "Error: "

// ErrTimeout is returned when no prompt arrives within Client.Timeout.
var ErrTimeout = errors.New("hostlink: timeout waiting for prompt")

// RemoteError is an "Error: ..." response from the device.
type RemoteError struct{ Msg string }

func (e *RemoteError) Error() string { return "device: " + e.Msg }

// Client speaks the shell protocol over rw. It is not safe for concurrent
// use; the shell serves one client at a time anyway.
type Client struct {
	rw      io.ReadWriter
	pending []byte
	buf     []byte

	// Timeout bounds each wait for a prompt. Zero waits forever.
	Timeout time.Duration
	// IsTimeout classifies read errors that only mean "no data yet", such
	// as a serial port read timeout. Those are retried until Timeout.
	IsTimeout func(error) bool
}

func New(rw io.ReadWriter) *Client {
	return &Client{rw: rw, buf: make([]byte, 256), Timeout: 5 * time.Second}
}

// Sync consumes output up to the first prompt (the banner after connect)
// and returns it.
func (c *Client) Sync() (string, error) {
	b, err := c.readPrompt()
	return strings.TrimPrefix(string(b), "\r\n"), err
}

// Do sends line and returns the response body. Blank lines are not sent.
// "OK" acknowledgements are returned as is; error responses become a
// *RemoteError.
//
// Reboot and bootloader never print a prompt: Do returns what arrived and
// the read error (usually ErrTimeout or io.EOF).
func (c *Client) Do(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	if strings.ContainsAny(line, "\r\n") {
		return "", errors.New("hostlink: line contains a terminator")
	}
	if _, err := io.WriteString(c.rw, line+"\r"); err != nil {
		return "", err
	}
	raw, err := c.readPrompt()
	body := parse(raw, line)
	if err != nil {
		return body, err
	}
	if strings.HasPrefix(body, errorPrefix) {
		return "", &RemoteError{Msg: body[len(errorPrefix):]}
	}
	return body, nil
}

// parse strips the local echo of line and the leading line break.
func parse(raw []byte, line string) string {
	echo := line
	if len(echo) > MaxLine {
		echo = echo[:MaxLine]
	}
	raw = bytes.TrimPrefix(raw, []byte(echo))
	raw = bytes.TrimPrefix(raw, []byte("\r\n"))
	return string(raw)
}

// readPrompt returns everything before the next prompt and keeps any
// bytes after it for the next call.
func (c *Client) readPrompt() ([]byte, error) {
	var deadline time.Time
	if c.Timeout > 0 {
		deadline = time.Now().Add(c.Timeout)
	}
	for {
		if i := bytes.Index(c.pending, []byte(Prompt)); i >= 0 {
			out := append([]byte(nil), c.pending[:i]...)
			c.pending = append(c.pending[:0], c.pending[i+len(Prompt):]...)
			return out, nil
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return c.drain(), ErrTimeout
		}
		n, err := c.rw.Read(c.buf)
		c.pending = append(c.pending, c.buf[:n]...)
		if err != nil {
			if c.IsTimeout != nil && c.IsTimeout(err) {
				continue
			}
			return c.drain(), err
		}
	}
}

func (c *Client) drain() []byte {
	out := append([]byte(nil), c.pending...)
	c.pending = c.pending[:0]
	return out
}
