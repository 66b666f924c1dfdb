package permissions

import (
	"fmt"
	"strings"
)

// Capability is one of the nine owner/group/other permission bits. Its value
// is the bit itself.
type Capability uint32

const (
	UserRead     Capability = 0o400
	UserWrite    Capability = 0o200
	UserExecute  Capability = 0o100
	GroupRead    Capability = 0o040
	GroupWrite   Capability = 0o020
	GroupExecute Capability = 0o010
	OthersRead   Capability = 0o004
	OthersWrite  Capability = 0o002
	OthersExec   Capability = 0o001
)

// Mask covers every capability bit.
const Mask = 0o777

var all = []Capability{
	UserRead, UserWrite, UserExecute,
	GroupRead, GroupWrite, GroupExecute,
	OthersRead, OthersWrite, OthersExec,
}

var names = map[Capability]string{
	UserRead:     "userRead",
	UserWrite:    "userWrite",
	UserExecute:  "userExecute",
	GroupRead:    "groupRead",
	GroupWrite:   "groupWrite",
	GroupExecute: "groupExecute",
	OthersRead:   "othersRead",
	OthersWrite:  "othersWrite",
	OthersExec:   "othersExecute",
}

// All returns the capabilities from most to least significant bit.
func All() []Capability {
	return append([]Capability(nil), all...)
}

// Valid reports whether c is exactly one of the nine bits.
func (c Capability) Valid() bool {
	_, ok := names[c]
	return ok
}

// String returns the identifier form, e.g. "groupWrite".
func (c Capability) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	return fmt.Sprintf("Capability(%#o)", uint32(c))
}

// Label returns a display form, e.g. "Group Write".
func (c Capability) Label() string {
	name := c.String()
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			return strings.ToUpper(name[:1]) + name[1:i] + " " + name[i:]
		}
	}
	return name
}

// ParseCapability accepts the identifier form case-insensitively.
func ParseCapability(s string) (Capability, error) {
	for c, name := range names {
		if strings.EqualFold(name, s) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown capability %q", s)
}

// Set is a collection of capabilities stored as mode bits.
type Set uint32

// Has reports whether c is in the set.
func (s Set) Has(c Capability) bool { return uint32(s)&uint32(c) != 0 }

// Mode returns the set as permission bits.
func (s Set) Mode() uint32 { return uint32(s) }

// List returns the members from most to least significant bit.
func (s Set) List() []Capability {
	var out []Capability
	for _, c := range all {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// String renders the set the way ls does, e.g. "rwxr-x---".
func (s Set) String() string {
	const symbols = "rwxrwxrwx"
	var b strings.Builder
	for i, c := range all {
		if s.Has(c) {
			b.WriteByte(symbols[i])
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Decode extracts the capability set from a mode. Bits outside the nine
// permission bits are ignored.
func Decode(mode uint32) Set {
	return Set(mode & Mask)
}

// Toggle flips exactly one capability bit. Toggle(Toggle(m, c), c) == m.
func Toggle(mode uint32, c Capability) uint32 {
	return mode ^ uint32(c)
}
