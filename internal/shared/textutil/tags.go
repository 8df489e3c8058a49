// Package textutil holds string helpers shared by features.
package textutil

import "strings"

// NormalizeTags trims tags, drops empty ones and removes case-insensitive
// duplicates. The first spelling of each tag wins and order is kept.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
