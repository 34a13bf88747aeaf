package tagusage

import (
	"fmt"
	"io"
	"strings"
)

const topTags = 20

// WriteReport renders rep as console text. threshold controls the low
// reuse advisory.
func WriteReport(w io.Writer, rep Report, threshold float64) error {
	var b strings.Builder

	b.WriteString("Tag usage\n\n")
	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "  Posts:                 %d\n", rep.Documents)
	fmt.Fprintf(&b, "  Tag instances:         %d\n", rep.TotalInstances)
	fmt.Fprintf(&b, "  Unique tags:           %d\n", rep.UniqueTags)
	fmt.Fprintf(&b, "  Used once:             %d (%.1f%%)\n", len(rep.SingleUse), rep.SingleUsePercent())
	fmt.Fprintf(&b, "  Used multiple times:   %d (%.1f%%)\n", len(rep.MultiUse), rep.MultiUsePercent())
	fmt.Fprintf(&b, "  Average tags per post: %.2f\n", rep.AvgTagsPerDocument())
	fmt.Fprintf(&b, "  Tag reuse rate:        %.1f%%\n", rep.ReuseRate()*100)

	if top := rep.Top(topTags); len(top) > 0 {
		b.WriteString("\nMost used tags:\n")
		for _, u := range top {
			fmt.Fprintf(&b, "  %-30s %d\n", u.Tag, u.Count)
		}
	}

	if len(rep.SingleUse) > 0 {
		b.WriteString("\nTags used once:\n")
		for _, u := range rep.SingleUse {
			fmt.Fprintf(&b, "  %-30s %s\n", u.Tag, strings.Join(u.Posts, ", "))
		}
	}

	if len(rep.Suggestions) > 0 {
		b.WriteString("\nConsolidation suggestions:\n")
		for _, s := range rep.Suggestions {
			fmt.Fprintf(&b, "  %s -> %s: %s\n", s.From, s.To, s.Reason)
		}
	}

	if rep.LowReuse(threshold) {
		fmt.Fprintf(&b, "\nWarning: tag reuse rate is below %.0f%%. Consider consolidating single-use tags.\n", threshold*100)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
