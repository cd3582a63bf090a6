package util

import (
	"slices"
)

// ListContainsElement returns true if the given list contains the given element.
func ListContainsElement[S ~[]E, E comparable](list S, element E) bool {
	return slices.Contains(list, element)
}

// RemoveElementFromList returns a copy of the given list with all instances of the given element removed.
func RemoveElementFromList[S ~[]E, E comparable](list S, element E) S {
	var out S

	for _, item := range list {
		if item != element {
			out = append(out, item)
		}
	}

	return out
}

// RemoveSublistFromList returns a copy of the given list with all instances of the given sublist removed
func RemoveSublistFromList[S ~[]E, E comparable](list, sublist S) S {
	var out = list
	for _, item := range sublist {
		out = RemoveElementFromList(out, item)
	}

	return out
}

// RemoveDuplicatesFromList returns a copy of the given list with all duplicates removed (keeping the first encountered)
func RemoveDuplicatesFromList[S ~[]E, E comparable](list S) S {
	out := make(S, 0, len(list))
	present := make(map[E]struct{}, len(list))

	for _, value := range list {
		if _, ok := present[value]; ok {
			continue
		}

		out = append(out, value)
		present[value] = struct{}{}
	}

	return out
}

// AppendMissing appends every element of values that is not yet in list, preserving order.
func AppendMissing[S ~[]E, E comparable](list S, values ...E) S {
	for _, value := range values {
		if !slices.Contains(list, value) {
			list = append(list, value)
		}
	}

	return list
}

// ToSet returns a lookup set for list.
func ToSet[S ~[]E, E comparable](list S) map[E]struct{} {
	set := make(map[E]struct{}, len(list))
	for _, value := range list {
		set[value] = struct{}{}
	}

	return set
}
