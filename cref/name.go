package cref

import (
	"fmt"
	"strings"
	"unicode"
)

// Separator splits the segments of a qualified name.
const Separator = "."

// Name is an immutable hierarchical identifier. The zero value is the empty
// name, which denotes the root of a scope.
type Name struct {
	path string
}

// Parse validates s and returns the corresponding Name.
// Empty segments ("a..b", ".a", "a.") and whitespace are rejected.
// The empty string parses to the empty name.
func Parse(s string) (Name, error) {
	if s == "" {
		return Name{}, nil
	}
	for i, seg := range strings.Split(s, Separator) {
		if seg == "" {
			return Name{}, fmt.Errorf("cref: empty segment %d in %q", i, s)
		}
		if strings.IndexFunc(seg, unicode.IsSpace) >= 0 {
			return Name{}, fmt.Errorf("cref: whitespace in segment %q of %q", seg, s)
		}
	}
	return Name{path: s}, nil
}

// MustParse is like Parse but panics on invalid input.
func MustParse(s string) Name {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

// String returns the dotted form.
func (n Name) String() string {
	return n.path
}

// IsEmpty reports whether n is the empty name.
func (n Name) IsEmpty() bool {
	return n.path == ""
}

// Segments returns the individual path segments.
func (n Name) Segments() []string {
	if n.path == "" {
		return nil
	}
	return strings.Split(n.path, Separator)
}

// Front returns the first segment and the remaining name.
//   - "a.b.c" → "a", "b.c"
//   - "a"     → "a", ""
func (n Name) Front() (string, Name) {
	head, tail, _ := strings.Cut(n.path, Separator)
	return head, Name{path: tail}
}

// Join appends child below n. Joining with an empty name returns the other
// operand unchanged.
//   - Join("sys", "gain") → "sys.gain"
//   - Join("", "gain")    → "gain"
func (n Name) Join(child Name) Name {
	if n.path == "" {
		return child
	}
	if child.path == "" {
		return n
	}
	return Name{path: n.path + Separator + child.path}
}

// HasPrefix reports whether prefix equals n or is a hierarchical ancestor of n.
// "a.bc" does not have prefix "a.b". Every name has the empty prefix.
func (n Name) HasPrefix(prefix Name) bool {
	if prefix.path == "" {
		return true
	}
	if !strings.HasPrefix(n.path, prefix.path) {
		return false
	}
	return len(n.path) == len(prefix.path) || n.path[len(prefix.path):][0] == Separator[0]
}

// TrimPrefix returns n relative to prefix. ok is false if prefix is not an
// ancestor of (or equal to) n.
func (n Name) TrimPrefix(prefix Name) (Name, bool) {
	if !n.HasPrefix(prefix) {
		return n, false
	}
	if prefix.path == "" {
		return n, true
	}
	rest := strings.TrimPrefix(n.path[len(prefix.path):], Separator)
	return Name{path: rest}, true
}

// Rebase replaces the prefix old of n with new. ok is false, and n is
// returned unchanged, when old is not a prefix of n.
func (n Name) Rebase(old, new Name) (Name, bool) {
	rest, ok := n.TrimPrefix(old)
	if !ok || old.IsEmpty() {
		return n, false
	}
	return new.Join(rest), true
}

// Compare orders names segment by segment, so "a.b" sorts before "a.b.c" and
// "a.b.c" before "a.ba". It returns -1, 0 or +1.
func (n Name) Compare(other Name) int {
	a, b := n.path, other.path
	for {
		if a == b {
			return 0
		}
		if a == "" {
			return -1
		}
		if b == "" {
			return 1
		}
		var sa, sb string
		sa, a, _ = strings.Cut(a, Separator)
		sb, b, _ = strings.Cut(b, Separator)
		if c := strings.Compare(sa, sb); c != 0 {
			return c
		}
	}
}

// Less reports whether n sorts before other.
func (n Name) Less(other Name) bool {
	return n.Compare(other) < 0
}
