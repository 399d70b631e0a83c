package ratings

import (
	"regexp"
	"sort"

	"github.com/beesaferoot/fritter/internal/models"
)

// Kinds of personal information the checker looks for.
const (
	KindEmail   = "email"
	KindPhone   = "phone"
	KindSSN     = "ssn"
	KindAddress = "address"
	KindIP      = "ip"
)

type detector struct {
	kind    string
	pattern *regexp.Regexp
}

// detectors are tried in order; when two matches overlap the earlier
// detector wins.
var detectors = []detector{
	{KindEmail, regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)},
	{KindSSN, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{KindPhone, regexp.MustCompile(`(?:\+?1[\s.\-]?)?\(?\b\d{3}\)?[\s.\-]?\d{3}[\s.\-]\d{4}\b`)},
	{KindIP, regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
	{KindAddress, regexp.MustCompile(`(?i)\b\d{1,5}\s+(?:[a-z0-9]+\s+){1,4}(?:street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|court|ct|way|place|pl)\b`)},
}

type match struct {
	start, end int
	rank       int
	warning    models.Warning
}

// Check scans content for personal information and returns one warning per
// finding, in the order the findings appear in the text.
func Check(content string) models.Warnings {
	var matches []match
	for rank, d := range detectors {
		for _, loc := range d.pattern.FindAllStringIndex(content, -1) {
			matches = append(matches, match{
				start: loc[0],
				end:   loc[1],
				rank:  rank,
				warning: models.Warning{
					Kind:    d.kind,
					Excerpt: content[loc[0]:loc[1]],
				},
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		return matches[i].start < matches[j].start
	})

	var kept []match
	for _, m := range matches {
		overlaps := false
		for _, k := range kept {
			if m.start < k.end && k.start < m.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, m)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].start < kept[j].start
	})

	warnings := make(models.Warnings, 0, len(kept))
	for _, m := range kept {
		warnings = append(warnings, m.warning)
	}
	return warnings
}
