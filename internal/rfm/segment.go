package rfm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Segment labels of the built-in rule table.
const (
	SegmentHibernating        = "hibernating"
	SegmentAtRisk             = "at_risk"
	SegmentCantLoose          = "cant_loose"
	SegmentAboutToSleep       = "about_to_sleep"
	SegmentNeedAttention      = "need_attention"
	SegmentLoyalCustomers     = "loyal_customers"
	SegmentPromising          = "promising"
	SegmentNewCustomers       = "new_customers"
	SegmentPotentialLoyalists = "potential_loyalists"
	SegmentChampions          = "champions"
)

// ErrIncompleteRules is returned when some RF code matches no rule.
var ErrIncompleteRules = eris.New("rfm: segment rules do not cover every RF code")

// Rule maps RF codes matching Pattern (a whole-string regular expression over
// the recency digit followed by the frequency digit) to Label.
type Rule struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Label   string `yaml:"label" json:"label"`
}

// DefaultRules returns the built-in rule table. Order matters: the first
// matching rule wins.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: `[1-2][1-2]`, Label: SegmentHibernating},
		{Pattern: `[1-2][3-4]`, Label: SegmentAtRisk},
		{Pattern: `[1-2]5`, Label: SegmentCantLoose},
		{Pattern: `3[1-2]`, Label: SegmentAboutToSleep},
		{Pattern: `33`, Label: SegmentNeedAttention},
		{Pattern: `[3-4][4-5]`, Label: SegmentLoyalCustomers},
		{Pattern: `41`, Label: SegmentPromising},
		{Pattern: `51`, Label: SegmentNewCustomers},
		{Pattern: `[4-5][2-3]`, Label: SegmentPotentialLoyalists},
		{Pattern: `5[4-5]`, Label: SegmentChampions},
	}
}

// RFCode joins a recency and a frequency score into a two-digit code.
func RFCode(recency, frequency int) string {
	return strconv.Itoa(recency) + strconv.Itoa(frequency)
}

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

// Segmenter labels RF codes with the first matching rule.
type Segmenter struct {
	rules []compiledRule
}

// NewSegmenter compiles rules and checks that every code over 1..bins for
// both digits is matched by some rule.
func NewSegmenter(rules []Rule, bins int) (*Segmenter, error) {
	if len(rules) == 0 {
		return nil, eris.Wrap(ErrIncompleteRules, "rfm: no segment rules")
	}

	s := &Segmenter{rules: make([]compiledRule, 0, len(rules))}
	for i, r := range rules {
		if r.Label == "" {
			return nil, eris.Errorf("rfm: rule %d (%q) has no label", i, r.Pattern)
		}
		re, err := regexp.Compile(`^(?:` + r.Pattern + `)$`)
		if err != nil {
			return nil, eris.Wrapf(err, "rfm: compile rule %d pattern %q", i, r.Pattern)
		}
		s.rules = append(s.rules, compiledRule{Rule: r, re: re})
	}

	if unmatched := s.Unmatched(bins); len(unmatched) > 0 {
		return nil, eris.Wrapf(ErrIncompleteRules, "rfm: unmatched codes %s", strings.Join(unmatched, ", "))
	}
	return s, nil
}

// Segment returns the label of the first rule matching code.
func (s *Segmenter) Segment(code string) (string, bool) {
	for _, r := range s.rules {
		if r.re.MatchString(code) {
			return r.Label, true
		}
	}
	return "", false
}

// Matches returns the labels of every rule matching code, in rule order.
func (s *Segmenter) Matches(code string) []string {
	var labels []string
	for _, r := range s.rules {
		if r.re.MatchString(code) {
			labels = append(labels, r.Label)
		}
	}
	return labels
}

// Unmatched enumerates every code over 1..bins and returns those no rule
// matches.
func (s *Segmenter) Unmatched(bins int) []string {
	var out []string
	for _, code := range Codes(bins) {
		if _, ok := s.Segment(code); !ok {
			out = append(out, code)
		}
	}
	return out
}

// Coverage returns, per rule in evaluation order, the codes over 1..bins that
// the rule wins. Rules shadowed by earlier ones get an empty slice.
func (s *Segmenter) Coverage(bins int) [][]string {
	out := make([][]string, len(s.rules))
	for _, code := range Codes(bins) {
		for i, r := range s.rules {
			if r.re.MatchString(code) {
				out[i] = append(out[i], code)
				break
			}
		}
	}
	return out
}

// Rules returns the rules in evaluation order.
func (s *Segmenter) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.Rule
	}
	return out
}

// Labels returns the distinct labels in first-appearance order.
func (s *Segmenter) Labels() []string {
	seen := make(map[string]bool, len(s.rules))
	var labels []string
	for _, r := range s.rules {
		if !seen[r.Label] {
			seen[r.Label] = true
			labels = append(labels, r.Label)
		}
	}
	return labels
}

// Codes lists every RF code for scores 1..bins, recency-major.
func Codes(bins int) []string {
	codes := make([]string, 0, bins*bins)
	for r := 1; r <= bins; r++ {
		for f := 1; f <= bins; f++ {
			codes = append(codes, RFCode(r, f))
		}
	}
	return codes
}
