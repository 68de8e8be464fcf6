// Package workflow gates issue movement between board columns.
//
// The rule is name-based policy, not id-based: column ids are per-project
// and dynamic, while "nothing reaches Done except via Testing" holds across
// every board. The guard is a stateless predicate over the two column names
// at call time.
package workflow

import "strings"

// normalize collapses case and whitespace so "In Testing", "IN TESTING" and
// " in  testing " all compare equal.
func normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToUpper(name)), " ")
}

// Allowed reports whether moving an issue from the column named src to the
// column named dst is permitted.
//
// A transition into DONE is permitted only from IN TESTING (or its short
// form TESTING); in particular a DONE to DONE move is rejected. Every
// destination other than DONE is unconditionally permitted.
func Allowed(src, dst string) bool {
	if normalize(dst) != "DONE" {
		return true
	}
	switch normalize(src) {
	case "IN TESTING", "TESTING":
		return true
	}
	return false
}
