package document

import "strconv"

// Step is one component of a Path: either a map key or a sequence index.
type Step struct {
	Key     string
	Index   int
	Indexed bool // true when the step addresses a sequence index
}

// KeyStep constructs a step addressing a map key.
func KeyStep(key string) Step {
	return Step{Key: key}
}

// IndexStep constructs a step addressing a sequence index.
func IndexStep(i int) Step {
	return Step{Index: i, Indexed: true}
}

// String renders the step as a path segment.
func (s Step) String() string {
	if s.Indexed {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// Path addresses a node within a document tree, from the root down.
// The zero value addresses the root itself.
type Path []Step

// Child returns a new path extended by a map key. The receiver is not
// modified; the returned path owns its own backing array.
func (p Path) Child(key string) Path {
	return p.extend(KeyStep(key))
}

// At returns a new path extended by a sequence index.
func (p Path) At(i int) Path {
	return p.extend(IndexStep(i))
}

func (p Path) extend(s Step) Path {
	next := make(Path, len(p)+1)
	copy(next, p)
	next[len(p)] = s
	return next
}

// Equal reports whether two paths address the same location.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i, s := range p {
		if s != other[i] {
			return false
		}
	}
	return true
}

// Top returns the first path segment, which groups changes by top-level
// document section. Returns an empty string for the root path.
func (p Path) Top() string {
	if len(p) == 0 {
		return ""
	}
	return p[0].String()
}

// String renders the path as slash-separated segments, e.g.
// "/paths//books/get/summary". The root path renders as "/".
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b []byte
	for _, s := range p {
		b = append(b, '/')
		b = append(b, s.String()...)
	}
	return string(b)
}
