package cache

import "strings"

// Key is the ordered identifier a query result is cached under. The first
// element is the registered resource prefix; any disambiguating parameters
// (record id, search text, status, page) are appended after it in a fixed
// order so that identical logical requests always collide to the same entry.
type Key []string

// NewKey builds a key from its ordered parts.
func NewKey(parts ...string) Key {
	return Key(parts)
}

// With returns a new key with extra parts appended. The receiver is not
// modified, so registered prefixes stay immutable.
func (k Key) With(parts ...string) Key {
	out := make(Key, 0, len(k)+len(parts))
	out = append(out, k...)
	out = append(out, parts...)
	return out
}

// String joins the key parts into the canonical map key.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether k starts with the given prefix, element by
// element. A partial key therefore matches every parameterized variant of
// its resource.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, p := range prefix {
		if k[i] != p {
			return false
		}
	}
	return true
}
