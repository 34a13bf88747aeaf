package models

// TagIssue is one validation finding for a tag on a document.
type TagIssue struct {
	Post       string `json:"post"`
	Tag        string `json:"tag"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ValidationStats summarises a validation run.
type ValidationStats struct {
	TotalPosts int `json:"totalPosts"`
	TotalTags  int `json:"totalTags"`
	UniqueTags int `json:"uniqueTags"`
}

// ValidationResult is the outcome of validating a document set.
type ValidationResult struct {
	Valid  bool            `json:"valid"`
	Issues []TagIssue      `json:"issues"`
	Stats  ValidationStats `json:"stats"`
}

// TagUsage counts the occurrences of one tag across the corpus.
// Posts keeps scan order and repeats a slug when a document lists the tag twice.
type TagUsage struct {
	Tag   string   `json:"tag"`
	Count int      `json:"count"`
	Posts []string `json:"posts"`
}
