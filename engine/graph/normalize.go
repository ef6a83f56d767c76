package graph

import (
	"regexp"
	"strings"
)

var (
	labelStrip   = regexp.MustCompile(`[^a-zA-Z0-9]`)
	relTypeStrip = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// NormalizeID canonicalizes an entity identifier so that case and
// surrounding-whitespace variants of the same name merge to one node.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// SanitizeLabel reduces a raw label to characters safe for interpolation
// into Cypher. Returns "" when nothing survives.
func SanitizeLabel(label string) string {
	return labelStrip.ReplaceAllString(label, "")
}

// SanitizeRelType reduces a raw relationship type to a safe uppercase
// identifier. Interior whitespace becomes underscores first, so
// "carries sensor" and "carries_sensor" normalize identically.
func SanitizeRelType(relType string) string {
	s := whitespace.ReplaceAllString(strings.TrimSpace(relType), "_")
	s = relTypeStrip.ReplaceAllString(s, "")
	return strings.ToUpper(s)
}
