package cluster

import (
	"strings"

	"github.com/opengreens/verdant/internal/model"
)

// Category is the event category assigned to an issue. The enumeration is
// closed; Other exists for completeness but the categorizer never returns it
// for environmental issues (unmatched issues default to Cleanup, the most
// actionable category).
type Category string

const (
	Cleanup   Category = "cleanup"
	Advocacy  Category = "advocacy"
	Education Category = "education"
	Other     Category = "other"
)

// Matcher holds the ordered phrase lists for one category. All matching is
// case-insensitive substring containment:
//
//	Titles   against the issue title
//	Subjects against the issue subject
//	Reasons  against the reason and department fields
//	Keywords against the concatenation of all free-text fields
type Matcher struct {
	Titles   []string
	Subjects []string
	Reasons  []string
	Keywords []string
}

// Entry pairs a category with its matcher. Table order is significant: the
// first entry to match wins, so it is the tie-break when several categories'
// lists would match the same record.
type Entry struct {
	Category Category
	Matcher  Matcher
}

// Table is an ordered categorization table. Each upstream source carries its
// own table because the vocabularies differ, but the matching algorithm is
// shared.
type Table []Entry

// Categorize assigns a category to the issue. Pure function: no side effects,
// never fails. Issues matching no entry fall back to Cleanup.
func (t Table) Categorize(issue model.Issue) Category {
	title := strings.ToLower(issue.Title)
	subject := strings.ToLower(issue.Subject)
	reason := strings.ToLower(issue.Reason + " " + issue.Department)
	all := strings.ToLower(issue.Text())

	for _, entry := range t {
		if matchAny(title, entry.Matcher.Titles) ||
			matchAny(subject, entry.Matcher.Subjects) ||
			matchAny(reason, entry.Matcher.Reasons) ||
			matchAny(all, entry.Matcher.Keywords) {
			return entry.Category
		}
	}
	return Cleanup
}

// Matches reports whether the issue matches any entry at all. Sources use
// this to filter environmental issues before clustering.
func (t Table) Matches(issue model.Issue) bool {
	title := strings.ToLower(issue.Title)
	subject := strings.ToLower(issue.Subject)
	reason := strings.ToLower(issue.Reason + " " + issue.Department)
	all := strings.ToLower(issue.Text())

	for _, entry := range t {
		if matchAny(title, entry.Matcher.Titles) ||
			matchAny(subject, entry.Matcher.Subjects) ||
			matchAny(reason, entry.Matcher.Reasons) ||
			matchAny(all, entry.Matcher.Keywords) {
			return true
		}
	}
	return false
}

func matchAny(text string, phrases []string) bool {
	if text == "" {
		return false
	}
	for _, p := range phrases {
		if strings.Contains(text, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
