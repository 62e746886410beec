package archive

import (
	"cmp"
	"fmt"
	"sort"
	"strings"
)

// Ordering decides the reading order of the pages found in one archive
type Ordering int

const (
	// Natural compares embedded digit runs as integers: p2 < p10.
	Natural Ordering = iota
	// Lexicographic compares names byte by byte: p10 < p2.
	Lexicographic
	// EnumerationOrder keeps the order the archive lists its entries in.
	EnumerationOrder
)

func (o Ordering) String() string {
	switch o {
	case Natural:
		return "natural"
	case Lexicographic:
		return "lexicographic"
	case EnumerationOrder:
		return "enumeration"
	default:
		return fmt.Sprintf("Ordering(%d)", int(o))
	}
}

// ParseOrdering maps a config value onto an Ordering
func ParseOrdering(s string) (Ordering, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "natural":
		return Natural, nil
	case "lexicographic", "lexical":
		return Lexicographic, nil
	case "enumeration", "archive":
		return EnumerationOrder, nil
	default:
		return Natural, fmt.Errorf("unknown ordering %q", s)
	}
}

// Entry is a named resource pulled out of an archive. Index is its position in
// archive enumeration order.
type Entry struct {
	Name  string
	Index int
}

// Less reports whether a reads before b under the ordering
func (o Ordering) Less(a, b Entry) bool {
	switch o {
	case Natural:
		if a.Name != b.Name {
			return LessNatural(a.Name, b.Name)
		}
	case Lexicographic:
		if a.Name != b.Name {
			return a.Name < b.Name
		}
	}
	return a.Index < b.Index
}

// Sort orders entries in place. Entries sharing a name stay in enumeration order.
func (o Ordering) Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return o.Less(entries[i], entries[j])
	})
}

// LessNatural compares two names run by run, digit runs by numeric value.
// Names that compare equal that way fall back to plain byte order.
func LessNatural(a, b string) bool {
	if c := compareNatural(a, b); c != 0 {
		return c < 0
	}
	return a < b
}

func compareNatural(a, b string) int {
	ra, rb := splitRuns(a), splitRuns(b)
	// first digit run that differs only in zero padding
	pad := 0
	for i := 0; i < len(ra) && i < len(rb); i++ {
		var c int
		if isDigit(ra[i][0]) && isDigit(rb[i][0]) {
			c = compareNumeric(ra[i], rb[i])
			if c == 0 && pad == 0 {
				pad = cmp.Compare(len(ra[i]), len(rb[i]))
			}
		} else {
			c = strings.Compare(ra[i], rb[i])
		}
		if c != 0 {
			return c
		}
	}
	if c := cmp.Compare(len(ra), len(rb)); c != 0 {
		return c
	}
	// Same values throughout: fewer leading zeros first
	return pad
}

// compareNumeric compares the values of two digit runs of any length without
// parsing them. Zero padding is ignored.
func compareNumeric(a, b string) int {
	ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if c := cmp.Compare(len(ta), len(tb)); c != 0 {
		return c
	}
	return strings.Compare(ta, tb)
}

// splitRuns cuts s into maximal runs of digits and non-digits
func splitRuns(s string) []string {
	var runs []string
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || isDigit(s[i]) != isDigit(s[start]) {
			runs = append(runs, s[start:i])
			start = i
		}
	}
	return runs
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
