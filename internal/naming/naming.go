// Package naming maps container and blob ids to file names.
//
// Windows PCs store containers under the compact form of the id (32 lowercase
// hex digits). Xbox consoles use the braced uppercase form.
package naming

import (
	"fmt"
	"strings"

	"github.com/Microsoft/go-winio/pkg/guid"

	"github.com/meigma/connstore/internal/cstype"
)

// Format selects a file naming convention.
type Format uint8

const (
	// Windows names files "0a1b2c3d4e5f60718293a4b5c6d7e8f9".
	Windows Format = iota
	// Xbox names files "{0A1B2C3D-4E5F-6071-8293-A4B5C6D7E8F9}".
	Xbox
)

func (f Format) String() string {
	switch f {
	case Windows:
		return "windows"
	case Xbox:
		return "xbox"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// ParseFormat parses a format name as returned by String. Matching ignores
// case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "windows", "pc":
		return Windows, nil
	case "xbox":
		return Xbox, nil
	default:
		return 0, fmt.Errorf("unknown platform %q", s)
	}
}

// Name returns the file name for id.
func (f Format) Name(id guid.GUID) string {
	if f == Xbox {
		return "{" + strings.ToUpper(id.String()) + "}"
	}
	return strings.ReplaceAll(id.String(), "-", "")
}

// Parse is the inverse of Name.
func (f Format) Parse(name string) (guid.GUID, error) {
	var s string
	switch f {
	case Xbox:
		if len(name) != 38 || name[0] != '{' || name[37] != '}' {
			return guid.GUID{}, fmt.Errorf("%w: %q is not a braced id", cstype.ErrFormat, name)
		}
		s = name[1:37]
	default:
		if len(name) != 32 {
			return guid.GUID{}, fmt.Errorf("%w: %q is not a compact id", cstype.ErrFormat, name)
		}
		s = name[0:8] + "-" + name[8:12] + "-" + name[12:16] + "-" + name[16:20] + "-" + name[20:32]
	}
	id, err := guid.FromString(s)
	if err != nil {
		return guid.GUID{}, fmt.Errorf("%w: %q: %w", cstype.ErrFormat, name, err)
	}
	return id, nil
}
