package tagcheck

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/sitekit/internal/models"
	"github.com/starford/sitekit/internal/parser"
	"github.com/starford/sitekit/internal/taxonomy"
)

func TestValidate_Rules(t *testing.T) {
	cases := []struct {
		tag        string
		issue      string
		suggestion string
	}{
		{"Go", IssueUppercase, "go"},
		{"web dev", IssueSpaces, "web-dev"},
		{"web  dev", IssueSpaces, "web-dev"},
		{"web_dev", IssueUnderscores, "web-dev"},
		{"web--dev", IssueMultipleHyphens, "web-dev"},
		{"-web", IssueEdgeHyphens, "web"},
		{"web-", IssueEdgeHyphens, "web"},
		{"", IssueEmpty, ""},
		{"\t", IssueEmpty, ""},
	}
	for _, tc := range cases {
		t.Run(tc.tag, func(t *testing.T) {
			v := Validate(tc.tag, nil)
			assert.False(t, v.Valid)
			assert.Equal(t, tc.issue, v.Issue)
			assert.Equal(t, tc.suggestion, v.Suggestion)
		})
	}
}

func TestValidate_FirstMatchWins(t *testing.T) {
	v := Validate("Web_Dev", nil)
	assert.Equal(t, IssueUppercase, v.Issue)
	assert.Equal(t, "web-dev", v.Suggestion)

	v = Validate("a_b--c", nil)
	assert.Equal(t, IssueUnderscores, v.Issue)
	assert.Equal(t, "a-b-c", v.Suggestion)
}

func TestValidate_ValidTags(t *testing.T) {
	for _, tag := range []string{"go", "web-development", "c99", "k8s-operators", "über"} {
		assert.True(t, Validate(tag, nil).Valid, tag)
	}
}

func TestValidate_ConsolidationTakesPrecedence(t *testing.T) {
	cfg := taxonomy.New(nil, map[string]string{
		"js":     "javascript",
		"WebDev": "web-development",
	})

	v := Validate("js", cfg)
	assert.False(t, v.Valid)
	assert.Equal(t, IssueConsolidate, v.Issue)
	assert.Equal(t, "javascript", v.Suggestion)

	// Would fail the uppercase rule, but the map entry is checked first.
	v = Validate("WebDev", cfg)
	assert.Equal(t, IssueConsolidate, v.Issue)
	assert.Equal(t, "web-development", v.Suggestion)

	assert.True(t, Validate("javascript", cfg).Valid)
}

func TestValidate_CaseSensitiveConsolidation(t *testing.T) {
	cfg := taxonomy.New(nil, map[string]string{"js": "javascript"})
	v := Validate("JS", cfg)
	assert.Equal(t, IssueUppercase, v.Issue)
	assert.Equal(t, "js", v.Suggestion)
}

func TestValidateCorpus_RoundTrip(t *testing.T) {
	fm := parser.Extract([]byte("---\nslug: messy\ntags: [\"A B\", \"c_d\", \"e--f\", \"-g-\"]\n---\n"))
	res := ValidateCorpus([]models.Document{{Slug: fm.Slug, Tags: fm.Tags}}, nil)

	require.Len(t, res.Issues, 4)
	var got []string
	for _, is := range res.Issues {
		assert.Equal(t, "messy", is.Post)
		got = append(got, is.Suggestion)
	}
	assert.Equal(t, []string{"a-b", "c-d", "e-f", "g"}, got)
	assert.False(t, res.Valid)
}

func TestValidateCorpus_Stats(t *testing.T) {
	docs := []models.Document{
		{Slug: "p1", Tags: []string{"go", "web", "go"}},
		{Slug: "p2", Tags: []string{"Go", "web"}},
		{Slug: "p3"},
	}
	res := ValidateCorpus(docs, nil)
	assert.Equal(t, models.ValidationStats{TotalPosts: 3, TotalTags: 5, UniqueTags: 3}, res.Stats)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "p2", res.Issues[0].Post)
}

func TestValidateCorpus_DuplicatesRevalidatedPerDocument(t *testing.T) {
	docs := []models.Document{
		{Slug: "p1", Tags: []string{"Bad"}},
		{Slug: "p2", Tags: []string{"Bad"}},
	}
	res := ValidateCorpus(docs, nil)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, "p1", res.Issues[0].Post)
	assert.Equal(t, "p2", res.Issues[1].Post)
}

func TestValidateCorpus_Empty(t *testing.T) {
	res := ValidateCorpus(nil, nil)
	assert.True(t, res.Valid)
	assert.NotNil(t, res.Issues)
	assert.Empty(t, res.Issues)
	assert.Equal(t, models.ValidationStats{}, res.Stats)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "machine-learning", Normalize("  Machine   Learning "))
	assert.Equal(t, "a-b", Normalize("__a__b__"))
	assert.Equal(t, "", Normalize("---"))
}

func TestWriteReport_GroupsByPost(t *testing.T) {
	res := ValidateCorpus([]models.Document{
		{Slug: "first", Tags: []string{"Go", "ok"}},
		{Slug: "second", Tags: []string{"a_b"}},
		{Slug: "first", Tags: []string{""}},
	}, nil)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, res))
	out := buf.String()

	assert.Contains(t, out, "Total posts: 3")
	assert.Contains(t, out, "Found 3 issue(s)")
	assert.Contains(t, out, `"Go": Contains uppercase letters (suggestion: "go")`)
	assert.Contains(t, out, `"": Empty tag`)
	assert.Equal(t, 1, strings.Count(out, "\nfirst:\n"))
	assert.Less(t, strings.Index(out, "first:"), strings.Index(out, "second:"))
	assert.Contains(t, out, "Tag rules:")
}

func TestWriteReport_Valid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, ValidateCorpus(nil, nil)))
	assert.Contains(t, buf.String(), "All tags are valid.")
}
