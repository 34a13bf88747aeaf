// Package parser extracts the tag list and slug from a content document's frontmatter.
package parser

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/starford/sitekit/internal/models"
)

// UnknownSlug is reported for documents without a frontmatter block.
const UnknownSlug = "unknown"

const delim = "---"

var (
	tagsLineRe = regexp.MustCompile(`(?m)^tags:\s*\[(.*)\]\s*$`)
	quotedRe   = regexp.MustCompile(`"([^"]*)"`)
	slugLineRe = regexp.MustCompile(`(?m)^slug:[ \t]*(.*?)[ \t]*\r?$`)
)

// Extract reads the tags and slug from raw document text.
//
// Only the flow-style form `tags: ["a", "b"]` is understood. Entries that are
// not double-quoted are skipped, so malformed lists yield fewer tags instead of
// an error. A missing or unterminated frontmatter block yields UnknownSlug and
// no tags.
func Extract(data []byte) models.Frontmatter {
	block, ok := splitFrontmatter(data)
	if !ok {
		return models.Frontmatter{Slug: UnknownSlug}
	}

	return models.Frontmatter{
		Tags: extractTags(block),
		Slug: extractSlug(block),
	}
}

// splitFrontmatter returns the text between a leading --- line (blank lines
// before it are allowed) and the next --- line. ok is false when either
// delimiter is missing.
func splitFrontmatter(data []byte) (block string, ok bool) {
	trimmed := strings.TrimLeft(string(data), "\n\r")
	if !strings.HasPrefix(trimmed, delim) {
		return "", false
	}

	rest := trimmed[len(delim):]
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		return "", false
	}
	return rest[:idx], true
}

// extractTags returns every double-quoted entry of the tags line, in order,
// duplicates included.
func extractTags(block string) []string {
	m := tagsLineRe.FindStringSubmatch(block)
	if m == nil {
		return nil
	}
	var out []string
	for _, q := range quotedRe.FindAllStringSubmatch(m[1], -1) {
		out = append(out, q[1])
	}
	return out
}

// extractSlug returns the slug value with one matching pair of outer quotes
// removed. Quotes inside the value are kept.
func extractSlug(block string) string {
	m := slugLineRe.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	v := m[1]
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		v = v[1 : len(v)-1]
	}
	return strings.TrimSpace(v)
}

// FileSlug derives a document identifier from its path: the base name without
// extension, or the directory name for index files.
func FileSlug(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "index" {
		if dir := filepath.Base(filepath.Dir(path)); dir != "." && dir != string(filepath.Separator) {
			return dir
		}
	}
	return name
}
