package render

import "regexp"

// Characters the destination filesystem may reject in output names, plus
// whitespace runs, all collapse to underscores.
var (
	unsafeNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// SanitizeName converts a type tag or seed path into a safe output file
// name component.
//
// RD-P3-F2-T6: Output name sanitization
func SanitizeName(s string) string {
	s = whitespaceRuns.ReplaceAllString(s, "_")
	s = unsafeNameChars.ReplaceAllString(s, "_")
	return s
}
