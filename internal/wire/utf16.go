package wire

import "golang.org/x/text/encoding/unicode"

// BOM handling is off: a leading U+FEFF is payload, not a marker.
var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeUTF16 returns s as UTF-16LE without a terminator.
func EncodeUTF16(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return utf16le.NewEncoder().Bytes([]byte(s))
}

// DecodeUTF16 decodes UTF-16LE bytes. Unpaired surrogates decode to U+FFFD.
func DecodeUTF16(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// UTF16Len returns the number of UTF-16 code units needed to encode s.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
