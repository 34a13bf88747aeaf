package tagcheck

import (
	"fmt"
	"io"
	"strings"

	"github.com/starford/sitekit/internal/models"
)

var ruleReminder = []string{
	"Use lowercase letters only",
	"Separate words with single hyphens (no spaces or underscores)",
	"No leading or trailing hyphens",
	"Prefer the canonical tag when a consolidation exists",
}

// WriteReport renders res as a console report: statistics, issues grouped
// by post in scan order, then the tag rules.
func WriteReport(w io.Writer, res models.ValidationResult) error {
	var b strings.Builder

	b.WriteString("Tag validation\n\n")
	b.WriteString("Statistics:\n")
	fmt.Fprintf(&b, "  Total posts: %d\n", res.Stats.TotalPosts)
	fmt.Fprintf(&b, "  Total tags:  %d\n", res.Stats.TotalTags)
	fmt.Fprintf(&b, "  Unique tags: %d\n\n", res.Stats.UniqueTags)

	if res.Valid {
		b.WriteString("All tags are valid.\n")
	} else {
		fmt.Fprintf(&b, "Found %d issue(s):\n", len(res.Issues))
		for _, group := range groupByPost(res.Issues) {
			fmt.Fprintf(&b, "\n%s:\n", group[0].Post)
			for _, is := range group {
				fmt.Fprintf(&b, "  - %q: %s", is.Tag, is.Issue)
				if is.Suggestion != "" {
					fmt.Fprintf(&b, " (suggestion: %q)", is.Suggestion)
				}
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\nTag rules:\n")
	for _, r := range ruleReminder {
		fmt.Fprintf(&b, "  - %s\n", r)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// groupByPost buckets issues by post, keeping first-seen post order.
func groupByPost(issues []models.TagIssue) [][]models.TagIssue {
	index := make(map[string]int)
	var groups [][]models.TagIssue
	for _, is := range issues {
		i, ok := index[is.Post]
		if !ok {
			i = len(groups)
			index[is.Post] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], is)
	}
	return groups
}
