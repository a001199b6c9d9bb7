package linklayer

import "errors"

// MAC is a device address as it appears on air: six bytes, least
// significant byte first.
type MAC [6]byte

var errInvalidMAC = errors.New("linklayer: failed to parse MAC address")

// ParseMAC parses an address in 11:22:33:AA:BB:CC format. Hex digits may be
// upper or lower case; the first octet printed is the most significant.
func ParseMAC(s string) (mac MAC, err error) {
	if len(s) != 17 {
		return mac, errInvalidMAC
	}
	for i := 0; i < 6; i++ {
		pos := i * 3
		if i < 5 && s[pos+2] != ':' {
			return MAC{}, errInvalidMAC
		}
		hi, ok1 := fromHexChar(s[pos])
		lo, ok2 := fromHexChar(s[pos+1])
		if !ok1 || !ok2 {
			return MAC{}, errInvalidMAC
		}
		mac[5-i] = hi<<4 | lo
	}
	return mac, nil
}

func fromHexChar(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// String returns the address in 11:22:33:AA:BB:CC form.
func (mac MAC) String() string {
	const digits = "0123456789ABCDEF"
	var buf [17]byte
	for i := 0; i < 6; i++ {
		c := mac[5-i]
		buf[i*3] = digits[c>>4]
		buf[i*3+1] = digits[c&0x0f]
		if i < 5 {
			buf[i*3+2] = ':'
		}
	}
	return string(buf[:])
}
