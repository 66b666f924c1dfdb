package browser

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Compare orders a and b under opt. Ties are broken by path, so the order is
// total for entries with distinct paths.
func Compare(a, b Entry, opt SortOption) int {
	var c int
	switch opt {
	case SortByCreated:
		c = a.CreatedAt.Compare(b.CreatedAt)
	case SortByModified:
		c = a.ModifiedAt.Compare(b.ModifiedAt)
	default:
		c = compareFold(a.Name, b.Name)
	}
	if c != 0 {
		return c
	}
	return strings.Compare(a.Path, b.Path)
}

// compareFold compares lowercased runes without allocating.
func compareFold(a, b string) int {
	for a != "" && b != "" {
		ra, na := utf8.DecodeRuneInString(a)
		rb, nb := utf8.DecodeRuneInString(b)
		ra, rb = unicode.ToLower(ra), unicode.ToLower(rb)
		if ra != rb {
			if ra < rb {
				return -1
			}
			return 1
		}
		a, b = a[na:], b[nb:]
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// Sort orders entries in place.
func Sort(entries []Entry, opt SortOption) {
	slices.SortFunc(entries, func(a, b Entry) int { return Compare(a, b, opt) })
}

// Sorted returns a sorted copy of entries.
func Sorted(entries []Entry, opt SortOption) []Entry {
	out := slices.Clone(entries)
	Sort(out, opt)
	return out
}

// Matches reports whether name contains query, ignoring case. An empty query
// matches everything.
func Matches(e Entry, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Name), strings.ToLower(query))
}

// Filter keeps entries matching query. The input is never modified.
func Filter(entries []Entry, query string) []Entry {
	if query == "" {
		return entries
	}
	lower := strings.ToLower(query)
	out := make([]Entry, 0, len(entries)/4)
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), lower) {
			out = append(out, e)
		}
	}
	return out
}

// Project computes sort(filter(source)). Sources that are already ordered
// under opt are not re-sorted.
func Project(source []Entry, query string, opt SortOption) []Entry {
	filtered := Filter(source, query)
	cmp := func(a, b Entry) int { return Compare(a, b, opt) }
	if slices.IsSortedFunc(filtered, cmp) {
		return filtered
	}
	if query == "" {
		filtered = slices.Clone(filtered)
	}
	slices.SortFunc(filtered, cmp)
	return filtered
}
