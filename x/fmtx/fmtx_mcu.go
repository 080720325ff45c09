//go:build rp2040 || rp2350

package fmtx

import (
	"io"
	"unicode/utf8"

	"picoos/x/strconvx"
)

// DefaultOutput is used by Printf/Println on MCU builds.
// The board points it at a UART that is not carrying the shell.
var DefaultOutput io.Writer = discard{}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// --- Public API (signatures match fmt) ---

func Sprintf(format string, a ...any) string {
	var b builder
	b.format(format, a...)
	return string(b.buf)
}

func Printf(format string, a ...any) (int, error) {
	return Fprintf(DefaultOutput, format, a...)
}

func Fprintf(w io.Writer, format string, a ...any) (int, error) {
	var b builder
	b.format(format, a...)
	return w.Write(b.buf)
}

func Println(a ...any) (int, error) {
	var b builder
	for i, v := range a {
		if i > 0 {
			b.byte(' ')
		}
		b.any(v)
	}
	b.byte('\n')
	return DefaultOutput.Write(b.buf)
}

// --- Internals: tiny formatter subset ---
// Supports: %s %q %d %x %c %v %% with width, '-' (left-justify) and
// precision for %s. Enough for log lines and shell tables.

type builder struct{ buf []byte }

func (b *builder) byte(c byte)  { b.buf = append(b.buf, c) }
func (b *builder) str(s string) { b.buf = append(b.buf, s...) }

func (b *builder) any(v any) {
	switch x := v.(type) {
	case string:
		b.str(x)
	case []byte:
		b.buf = append(b.buf, x...)
	case error:
		b.str(x.Error())
	case bool:
		if x {
			b.str("true")
		} else {
			b.str("false")
		}
	case float32:
		b.str("<float>")
	case float64:
		b.str("<float>")
	default:
		if n, ok := toI64(v); ok {
			b.str(strconvx.FormatInt(n, 10))
			return
		}
		b.str("<unk>")
	}
}

func toI64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), true
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), true
	case uintptr:
		return int64(t), true
	}
	return 0, false
}

func (b *builder) pad(s string, width int, left bool) {
	n := width - utf8.RuneCountInString(s)
	if left {
		b.str(s)
	}
	for ; n > 0; n-- {
		b.byte(' ')
	}
	if !left {
		b.str(s)
	}
}

func (b *builder) format(format string, args ...any) {
	ai := 0
	for i := 0; i < len(format); {
		c := format[i]
		if c != '%' {
			b.byte(c)
			i++
			continue
		}
		i++
		if i < len(format) && format[i] == '%' {
			b.byte('%')
			i++
			continue
		}
		left := false
		if i < len(format) && format[i] == '-' {
			left = true
			i++
		}
		width, prec := 0, -1
		i = parseNum(format, i, &width)
		if i < len(format) && format[i] == '.' {
			prec = 0
			i = parseNum(format, i+1, &prec)
		}
		if i >= len(format) {
			return
		}
		verb := format[i]
		i++
		if ai >= len(args) {
			b.str("%!")
			b.byte(verb)
			continue
		}
		arg := args[ai]
		ai++

		var s string
		switch verb {
		case 's', 'v':
			var sb builder
			sb.any(arg)
			s = string(sb.buf)
			if prec >= 0 && prec < len(s) {
				s = s[:prec]
			}
		case 'q':
			var sb builder
			sb.any(arg)
			s = quote(string(sb.buf))
		case 'd':
			n, _ := toI64(arg)
			s = strconvx.FormatInt(n, 10)
		case 'x':
			n, _ := toI64(arg)
			s = strconvx.FormatUint(uint64(n), 16)
		case 'c':
			n, _ := toI64(arg)
			s = string(rune(n))
		default:
			s = "%!" + string(rune(verb))
		}
		b.pad(s, width, left)
	}
}

func parseNum(s string, i int, out *int) int {
	n, start := 0, i
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	if i > start {
		*out = n
	}
	return i
}

func quote(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '"':
			out = append(out, '\\', c)
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '\t':
			out = append(out, '\\', 't')
		default:
			out = append(out, c)
		}
	}
	return string(append(out, '"'))
}
