// Package tagcheck validates post tags against naming rules and the canonical taxonomy.
package tagcheck

import (
	"regexp"
	"strings"

	"github.com/starford/sitekit/internal/models"
	"github.com/starford/sitekit/internal/taxonomy"
)

// Issue categories reported by Validate.
const (
	IssueConsolidate     = "Tag should be consolidated"
	IssueUppercase       = "Contains uppercase letters"
	IssueSpaces          = "Contains spaces (should use hyphens)"
	IssueUnderscores     = "Contains underscores (should use hyphens)"
	IssueMultipleHyphens = "Contains multiple consecutive hyphens"
	IssueEdgeHyphens     = "Contains leading or trailing hyphens"
	IssueEmpty           = "Empty tag"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	hyphensRe    = regexp.MustCompile(`-{2,}`)
)

// Verdict is the result of checking a single tag.
type Verdict struct {
	Valid      bool
	Issue      string
	Suggestion string
}

// Validate checks tag against the rules in order and reports the first
// violation. cfg may be nil; a consolidation entry always wins over the
// structural rules.
func Validate(tag string, cfg *taxonomy.Config) Verdict {
	if to, ok := cfg.Replacement(tag); ok {
		return Verdict{Issue: IssueConsolidate, Suggestion: to}
	}

	switch {
	case tag != strings.ToLower(tag):
		return Verdict{Issue: IssueUppercase, Suggestion: Normalize(tag)}
	case strings.Contains(tag, " "):
		return Verdict{Issue: IssueSpaces, Suggestion: Normalize(tag)}
	case strings.Contains(tag, "_"):
		return Verdict{Issue: IssueUnderscores, Suggestion: Normalize(tag)}
	case strings.Contains(tag, "--"):
		return Verdict{Issue: IssueMultipleHyphens, Suggestion: Normalize(tag)}
	case strings.HasPrefix(tag, "-") || strings.HasSuffix(tag, "-"):
		return Verdict{Issue: IssueEdgeHyphens, Suggestion: Normalize(tag)}
	case strings.TrimSpace(tag) == "":
		return Verdict{Issue: IssueEmpty}
	}

	return Verdict{Valid: true}
}

// Normalize returns the kebab-case form of tag: lower case, whitespace runs
// and underscores turned into single hyphens, no leading or trailing hyphen.
func Normalize(tag string) string {
	s := strings.ToLower(strings.TrimSpace(tag))
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = hyphensRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ValidateCorpus validates every tag of every document. A tag listed by N
// documents is checked N times so each document gets its own findings.
func ValidateCorpus(docs []models.Document, cfg *taxonomy.Config) models.ValidationResult {
	issues := []models.TagIssue{}
	unique := make(map[string]struct{})
	total := 0

	for _, doc := range docs {
		for _, tag := range doc.Tags {
			total++
			unique[tag] = struct{}{}

			v := Validate(tag, cfg)
			if v.Valid {
				continue
			}
			issues = append(issues, models.TagIssue{
				Post:       doc.Slug,
				Tag:        tag,
				Issue:      v.Issue,
				Suggestion: v.Suggestion,
			})
		}
	}

	return models.ValidationResult{
		Valid:  len(issues) == 0,
		Issues: issues,
		Stats: models.ValidationStats{
			TotalPosts: len(docs),
			TotalTags:  total,
			UniqueTags: len(unique),
		},
	}
}
