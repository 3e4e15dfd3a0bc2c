// Package set provides a generic set datastructure.
package set

// Set is a set of comparable values. It is not safe for concurrent use.
type Set[T comparable] map[T]struct{}

// New returns a set containing elems.
func New[T comparable](elems ...T) Set[T] {
	result := make(Set[T], len(elems))

	for _, e := range elems {
		result[e] = struct{}{}
	}

	return result
}

func (s Set[T]) Add(v T) {
	s[v] = struct{}{}
}

func (s Set[T]) Contains(v T) bool {
	_, exist := s[v]
	return exist
}

func (s Set[T]) Len() int {
	return len(s)
}

// Intersection returns a new set containing the elements that are in s and
// in other.
func (s Set[T]) Intersection(other Set[T]) Set[T] {
	small, big := s, other
	if len(big) < len(small) {
		small, big = big, small
	}

	result := make(Set[T], len(small))
	for v := range small {
		if big.Contains(v) {
			result[v] = struct{}{}
		}
	}

	return result
}

// Slice returns the elements of the set in undefined order.
func (s Set[T]) Slice() []T {
	res := make([]T, 0, len(s))

	for k := range s {
		res = append(res, k)
	}

	return res
}
