// Package cos provides small conversion and parsing helpers shared across
// the shuffle subsystem, in the spirit of aistore's cmn/cos package.
package cos

import "strconv"

// IsTruthy implements the truthiness rule of the SHUFFLE_* environment
// variables: undefined, empty, or "0" is false; anything else is true.
func IsTruthy(s string) bool {
	return s != "" && s != "0"
}

// ParseUint parses s as a base-10 unsigned integer, returning def if s is
// empty and an error if s is non-empty but unparsable.
func ParseUint(s string, def uint64) (uint64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseUint(s, 10, 64)
}
