package tagusage

import validation "github.com/go-ozzo/ozzo-validation/v4"

// Rule describes a known overlap: posts tagged From could use one of To.
type Rule struct {
	From   string   `yaml:"from" json:"from"`
	To     []string `yaml:"to" json:"to"`
	Reason string   `yaml:"reason" json:"reason"`
}

// Suggestion is a Rule whose tags both occur in the corpus.
type Suggestion struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// DefaultRules returns the consolidation table used for this site's posts.
func DefaultRules() []Rule {
	return []Rule{
		{From: "js", To: []string{"javascript"}, Reason: "Abbreviation of an existing tag"},
		{From: "ts", To: []string{"typescript"}, Reason: "Abbreviation of an existing tag"},
		{From: "reactjs", To: []string{"react"}, Reason: "Same library under two names"},
		{From: "golang", To: []string{"go"}, Reason: "Same language under two names"},
		{From: "css-grid", To: []string{"css"}, Reason: "Narrow topic covered by a broader tag"},
		{From: "react-hooks", To: []string{"react"}, Reason: "Narrow topic covered by a broader tag"},
		{From: "web-dev", To: []string{"web-development", "web"}, Reason: "Variant spelling of a broader tag"},
		{From: "machine-learning", To: []string{"ai"}, Reason: "Overlapping topics with few posts each"},
		{From: "devops", To: []string{"infrastructure"}, Reason: "Overlapping topics with few posts each"},
		{From: "personal", To: []string{"life"}, Reason: "Overlapping topics with few posts each"},
	}
}

// Suggest evaluates rules against the set of tags present in the corpus.
// A rule fires when From is present and at least one alternative is; the
// first present alternative is suggested.
func Suggest(rules []Rule, present map[string]struct{}) []Suggestion {
	var out []Suggestion
	for _, r := range rules {
		if _, ok := present[r.From]; !ok {
			continue
		}
		for _, to := range r.To {
			if _, ok := present[to]; ok {
				out = append(out, Suggestion{From: r.From, To: to, Reason: r.Reason})
				break
			}
		}
	}
	return out
}

// Validate checks that the rule names a tag and at least one alternative.
func (r Rule) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.From, validation.Required),
		validation.Field(&r.To, validation.Required, validation.Each(validation.Required)),
	)
}
