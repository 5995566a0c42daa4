package view

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// TagsPlaceholder stands in for an empty tag list.
const TagsPlaceholder = "—"

// TagsLabel joins tags for display, skipping blanks.
func TagsLabel(tags []string) string {
	kept := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return TagsPlaceholder
	}
	return strings.Join(kept, ", ")
}

// ViewsLabel renders a view counter with thousands separators. Negative
// counts from a misbehaving backend show as zero.
func ViewsLabel(views int64) string {
	if views < 0 {
		views = 0
	}
	return humanize.Comma(views) + " views"
}
