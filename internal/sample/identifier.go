// SPDX-License-Identifier: MPL-2.0

package sample

// Identifier is the numeric tag of a sample, kept as the literal digit run
// found in its directory name. Leading zeros are significant: "01" and "1"
// are different identifiers.
type Identifier string

// ParseIdentifier returns the first maximal run of ASCII digits in name, or
// the empty Identifier when name has no digits.
func ParseIdentifier(name string) Identifier {
	start := -1
	for i := 0; i < len(name); i++ {
		isDigit := name[i] >= '0' && name[i] <= '9'
		switch {
		case isDigit && start < 0:
			start = i
		case !isDigit && start >= 0:
			return Identifier(name[start:i])
		}
	}
	if start >= 0 {
		return Identifier(name[start:])
	}
	return ""
}

// IsZero reports whether the identifier is absent.
func (id Identifier) IsZero() bool { return id == "" }

// String returns the identifier text.
func (id Identifier) String() string { return string(id) }
