package domain

// StringSet is a set of opaque ids stored as a JSON array column. It keeps
// mongo-style $addToSet / $pull semantics: order of insertion is preserved,
// duplicates are never stored.
type StringSet []string

// Contains reports whether the set holds the given id.
func (s StringSet) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Add returns the set with the given id appended. The boolean reports
// whether the set actually changed.
func (s StringSet) Add(id string) (StringSet, bool) {
	if s.Contains(id) {
		return s, false
	}
	return append(s, id), true
}

// Remove returns the set without the given id. The boolean reports whether
// the set actually changed.
func (s StringSet) Remove(id string) (StringSet, bool) {
	for i, v := range s {
		if v == id {
			out := make(StringSet, 0, len(s)-1)
			out = append(out, s[:i]...)
			out = append(out, s[i+1:]...)
			return out, true
		}
	}
	return s, false
}
