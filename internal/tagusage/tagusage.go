// Package tagusage reports how tags are reused across posts and which ones overlap.
package tagusage

import (
	"sort"

	"github.com/starford/sitekit/internal/models"
)

// DefaultReuseThreshold is the reuse rate below which the report warns.
const DefaultReuseThreshold = 0.30

// Report is the outcome of Analyze.
type Report struct {
	Documents      int               `json:"documents"`
	TotalInstances int               `json:"totalInstances"`
	UniqueTags     int               `json:"uniqueTags"`
	Usages         []models.TagUsage `json:"usages"`
	SingleUse      []models.TagUsage `json:"singleUse"`
	MultiUse       []models.TagUsage `json:"multiUse"`
	Suggestions    []Suggestion      `json:"suggestions"`
}

// Analyze counts tag occurrences across docs. The usage table is rebuilt on
// every call and sorted by count, descending, with ties in first-seen order.
func Analyze(docs []models.Document, rules []Rule) Report {
	index := make(map[string]int)
	var usages []models.TagUsage
	total := 0

	for _, doc := range docs {
		for _, tag := range doc.Tags {
			total++
			i, ok := index[tag]
			if !ok {
				i = len(usages)
				index[tag] = i
				usages = append(usages, models.TagUsage{Tag: tag})
			}
			usages[i].Count++
			usages[i].Posts = append(usages[i].Posts, doc.Slug)
		}
	}

	sort.SliceStable(usages, func(a, b int) bool {
		return usages[a].Count > usages[b].Count
	})

	rep := Report{
		Documents:      len(docs),
		TotalInstances: total,
		UniqueTags:     len(usages),
		Usages:         usages,
	}
	for _, u := range usages {
		if u.Count == 1 {
			rep.SingleUse = append(rep.SingleUse, u)
		} else {
			rep.MultiUse = append(rep.MultiUse, u)
		}
	}

	present := make(map[string]struct{}, len(index))
	for tag := range index {
		present[tag] = struct{}{}
	}
	rep.Suggestions = Suggest(rules, present)

	return rep
}

// ReuseRate is the share of unique tags used by more than one post.
func (r Report) ReuseRate() float64 {
	if r.UniqueTags == 0 {
		return 0
	}
	return float64(len(r.MultiUse)) / float64(r.UniqueTags)
}

// SingleUsePercent is the share of unique tags used exactly once, 0–100.
func (r Report) SingleUsePercent() float64 {
	return percent(len(r.SingleUse), r.UniqueTags)
}

// MultiUsePercent is the share of unique tags used more than once, 0–100.
func (r Report) MultiUsePercent() float64 {
	return percent(len(r.MultiUse), r.UniqueTags)
}

// AvgTagsPerDocument is TotalInstances divided by the document count.
func (r Report) AvgTagsPerDocument() float64 {
	if r.Documents == 0 {
		return 0
	}
	return float64(r.TotalInstances) / float64(r.Documents)
}

// LowReuse reports whether the reuse rate is under threshold. A corpus
// without tags never warns.
func (r Report) LowReuse(threshold float64) bool {
	return r.UniqueTags > 0 && r.ReuseRate() < threshold
}

// Top returns at most n of the most used tags.
func (r Report) Top(n int) []models.TagUsage {
	switch {
	case n < 0:
		n = 0
	case n > len(r.Usages):
		n = len(r.Usages)
	}
	return r.Usages[:n]
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) * 100 / float64(whole)
}
