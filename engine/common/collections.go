package common

import "sort"

// StringSet is a set of strings
type StringSet map[string]struct{}

// NewStringSet creates a StringSet holding the given strings
func NewStringSet(elems ...string) StringSet {
	ss := make(StringSet, len(elems))
	for _, elem := range elems {
		ss.Add(elem)
	}
	return ss
}

// Contains checks if Stringset contains the string
func (ss StringSet) Contains(elem string) bool {
	_, ok := ss[elem]
	return ok
}

// Add adds the string to StringSet
func (ss StringSet) Add(elem string) {
	ss[elem] = struct{}{}
}

// Remove removes the string from StringSet
func (ss StringSet) Remove(elem string) {
	delete(ss, elem)
}

// ToList converts StringSet to a sorted string slice
func (ss StringSet) ToList() []string {
	keys := make([]string, 0, len(ss))
	for s := range ss {
		keys = append(keys, s)
	}
	sort.Strings(keys)
	return keys
}
