//go:build rp2040 || rp2350

package strconvx

// Minimal, allocation-aware helpers with strconv signatures.
// Bases 2..36; base 0 on Parse* auto-detects 0x/0b/0o prefixes.

type numError string

func (e numError) Error() string { return string(e) }

const (
	errSyntax numError = "invalid syntax"
	errRange  numError = "value out of range"
)

func Itoa(i int) string { return FormatInt(int64(i), 10) }

func Atoi(s string) (int, error) {
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	u, err := ParseUint(s, 10, 0)
	if err != nil {
		return 0, err
	}
	const maxInt = uint64(^uint(0) >> 1)
	if neg {
		if u > maxInt+1 {
			return 0, errRange
		}
		return -int(u), nil
	}
	if u > maxInt {
		return 0, errRange
	}
	return int(u), nil
}

func FormatInt(i int64, base int) string {
	if i < 0 {
		return "-" + FormatUint(uint64(-i), base)
	}
	return FormatUint(uint64(i), base)
}

func FormatUint(u uint64, base int) string {
	if base < 2 || base > 36 {
		base = 10
	}
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	var buf [64]byte
	i := len(buf)
	b := uint64(base)
	for {
		i--
		buf[i] = digits[u%b]
		u /= b
		if u == 0 {
			break
		}
	}
	return string(buf[i:])
}

func ParseUint(s string, base, bitSize int) (uint64, error) {
	if base == 0 {
		base = 10
		if len(s) >= 2 && s[0] == '0' {
			switch s[1] {
			case 'x', 'X':
				base, s = 16, s[2:]
			case 'b', 'B':
				base, s = 2, s[2:]
			case 'o', 'O':
				base, s = 8, s[2:]
			}
		}
	}
	if base < 2 || base > 36 || len(s) == 0 {
		return 0, errSyntax
	}
	if bitSize <= 0 || bitSize > 64 {
		bitSize = 64
	}
	limit := uint64(1)<<uint(bitSize) - 1
	if bitSize == 64 {
		limit = ^uint64(0)
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d uint64
		switch {
		case '0' <= c && c <= '9':
			d = uint64(c - '0')
		case 'a' <= c && c <= 'z':
			d = uint64(c-'a') + 10
		case 'A' <= c && c <= 'Z':
			d = uint64(c-'A') + 10
		default:
			return 0, errSyntax
		}
		if d >= uint64(base) {
			return 0, errSyntax
		}
		if v > (limit-d)/uint64(base) {
			return 0, errRange
		}
		v = v*uint64(base) + d
	}
	return v, nil
}
