// Package address parses dotted-quad IPv4 and colon-hex IPv6 literals into
// fixed-width network-order byte arrays, independent of net/netip, using
// the canonical split-on-"::" algorithm: split the literal on "::", parse
// both halves left-to-right, and pad the gap between them with zero
// groups.
package address

import (
	"strconv"
	"strings"

	"github.com/maxpoulin64/mmdb-go/internal/mmdberrors"
)

// ParseIPv4 parses a dotted-quad literal into 4 network-order bytes. It
// accepts exactly four decimal components, each 1-3 digits in [0, 255],
// separated by '.'.
func ParseIPv4(s string) ([4]byte, error) {
	var out [4]byte
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return out, mmdberrors.NewAddressSyntaxError(s)
	}
	for i, p := range parts {
		v, ok := parseDecimalOctet(p)
		if !ok {
			return out, mmdberrors.NewAddressSyntaxError(s)
		}
		out[i] = v
	}
	return out, nil
}

func parseDecimalOctet(p string) (byte, bool) {
	if len(p) == 0 || len(p) > 3 {
		return 0, false
	}
	n := 0
	for _, r := range p {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	if n > 255 {
		return 0, false
	}
	return byte(n), true
}

// ParseIPv6 parses a colon-hex literal, including at most one "::"
// compression, into 16 network-order bytes.
func ParseIPv6(s string) ([16]byte, error) {
	var out [16]byte

	if strings.Contains(s, ":::") {
		return out, mmdberrors.NewTooManyColonsError(s)
	}

	parts := strings.Split(s, "::")
	switch len(parts) {
	case 1:
		groups := strings.Split(s, ":")
		if len(groups) != 8 {
			return out, mmdberrors.NewAddressSyntaxError(s)
		}
		return fillGroups(s, groups, out)
	case 2:
		var left, right []string
		if parts[0] != "" {
			left = strings.Split(parts[0], ":")
		}
		if parts[1] != "" {
			right = strings.Split(parts[1], ":")
		}
		if len(left)+len(right) >= 8 {
			return out, mmdberrors.NewAddressSyntaxError(s)
		}
		groups := make([]string, 0, 8)
		groups = append(groups, left...)
		for i := 0; i < 8-len(left)-len(right); i++ {
			groups = append(groups, "0")
		}
		groups = append(groups, right...)
		return fillGroups(s, groups, out)
	default:
		// More than one "::" ellipsis.
		return out, mmdberrors.NewTooManyColonsError(s)
	}
}

func fillGroups(original string, groups []string, out [16]byte) ([16]byte, error) {
	if len(groups) != 8 {
		return out, mmdberrors.NewAddressSyntaxError(original)
	}
	for i, g := range groups {
		if len(g) == 0 || len(g) > 4 {
			return out, mmdberrors.NewAddressSyntaxError(original)
		}
		v, err := strconv.ParseUint(g, 16, 16)
		if err != nil {
			return out, mmdberrors.NewAddressSyntaxError(original)
		}
		out[i*2] = byte(v >> 8)
		out[i*2+1] = byte(v)
	}
	return out, nil
}

// IPv4In6 maps a 4-byte IPv4 address into its 16-byte IPv4-in-IPv6 form
// (the first 12 bytes zero, the last 4 equal to addr), the form an
// ip_version=6 database stores IPv4 addresses in.
func IPv4In6(addr [4]byte) [16]byte {
	var out [16]byte
	copy(out[12:], addr[:])
	return out
}

// FormatIPv6 renders addr in its canonical zero-compressed lowercase form
// (the longest run of two or more all-zero groups is replaced by "::").
func FormatIPv6(addr [16]byte) string {
	var groups [8]uint16
	for i := range groups {
		groups[i] = uint16(addr[i*2])<<8 | uint16(addr[i*2+1])
	}

	hex := func(g uint16) string { return strconv.FormatUint(uint64(g), 16) }

	start, length := longestZeroRun(groups)
	if length < 2 {
		parts := make([]string, 8)
		for i, g := range groups {
			parts[i] = hex(g)
		}
		return strings.Join(parts, ":")
	}

	before := make([]string, 0, start)
	for i := 0; i < start; i++ {
		before = append(before, hex(groups[i]))
	}
	after := make([]string, 0, 8-start-length)
	for i := start + length; i < 8; i++ {
		after = append(after, hex(groups[i]))
	}

	return strings.Join(before, ":") + "::" + strings.Join(after, ":")
}

// longestZeroRun returns the start index and length of the longest run of
// consecutive all-zero groups, or (-1, 0) if there is none.
func longestZeroRun(groups [8]uint16) (start, length int) {
	bestStart, bestLen := -1, 0
	curStart, curLen := -1, 0
	for i := 0; i <= 8; i++ {
		if i < 8 && groups[i] == 0 {
			if curStart == -1 {
				curStart = i
			}
			curLen++
		} else {
			if curLen > bestLen {
				bestStart, bestLen = curStart, curLen
			}
			curStart, curLen = -1, 0
		}
	}
	return bestStart, bestLen
}
