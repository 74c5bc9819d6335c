package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/opengreens/verdant/internal/cluster"
	"github.com/opengreens/verdant/internal/model"
)

// maxTitleLen is the display limit event titles must fit in.
const maxTitleLen = 60

// Draft is composed event copy. Fallback is true when the text came from
// templates instead of the provider.
type Draft struct {
	Title       string
	Description string
	Fallback    bool
}

// Composer turns an issue cluster into event copy. With no provider it goes
// straight to templates; with one it makes two calls, description first, then
// a title grounded in that description. Any provider failure falls back to
// templates rather than dropping the event.
type Composer struct {
	provider Provider
}

// NewComposer creates a composer. provider may be nil.
func NewComposer(provider Provider) *Composer {
	return &Composer{provider: provider}
}

// Compose drafts title and description for a cluster.
func (c *Composer) Compose(ctx context.Context, group cluster.Group) Draft {
	if c.provider == nil {
		return c.fallback(group)
	}

	description, err := c.provider.Complete(ctx, descriptionPrompt(group))
	if err != nil || description == "" {
		return c.fallback(group)
	}

	title, err := c.provider.Complete(ctx, titlePrompt(description, group))
	if err != nil || title == "" {
		return c.fallback(group)
	}

	return Draft{
		Title:       clampTitle(title),
		Description: description,
	}
}

// fallback builds template copy from the cluster's seed issue.
func (c *Composer) fallback(group cluster.Group) Draft {
	seed := group.Seed()
	place := placeName(seed)
	subject := strings.ToLower(seed.Title)
	n := len(group.Issues)

	var title, description string
	switch group.Category {
	case cluster.Cleanup:
		title = fmt.Sprintf("%s Environmental Cleanup", place)
		description = fmt.Sprintf("Join us for a community cleanup event in %s! We're addressing %d environmental issue(s) including %s. Help us make our neighborhood cleaner and healthier.", place, n, subject)
	case cluster.Advocacy:
		title = fmt.Sprintf("%s Environmental Action", place)
		description = fmt.Sprintf("Community meeting to address environmental concerns in %s. We'll discuss %d issue(s) including %s and plan advocacy strategies.", place, n, subject)
	default:
		title = fmt.Sprintf("%s Environmental Workshop", place)
		description = fmt.Sprintf("Educational workshop addressing environmental issues in %s. Learn about %s and how to prevent future problems.", place, subject)
	}

	return Draft{
		Title:       clampTitle(title),
		Description: description,
		Fallback:    true,
	}
}

func descriptionPrompt(group cluster.Group) string {
	var issueList strings.Builder
	for _, issue := range group.Issues {
		fmt.Fprintf(&issueList, "• %s\n", issue.Title)
	}

	return fmt.Sprintf(`Write a concise event description for a community environmental event in %s.

SPECIFIC ISSUES TO ADDRESS:
%s
EVENT TYPE: %s

Write a brief, engaging description that:
- Lists the specific issues being addressed
- Explains what participants will do
- Is community-focused (no single organizer) and engaging
- Includes simple preparation instructions if helpful
- Since there is not an organizer or leader, you can't assume that any supplies will be provided. You can ask people to bring anything extra that they do have though.

Keep it concise and actionable. Respond with ONLY the description text.`,
		placeName(group.Seed()), issueList.String(), group.Category)
}

func titlePrompt(description string, group cluster.Group) string {
	excerpt := description
	if len(excerpt) > 300 {
		excerpt = excerpt[:300]
	}

	return fmt.Sprintf(`Based on this event description and details, create a catchy event title:

DESCRIPTION: %s...
NEIGHBORHOOD: %s
CATEGORY: %s

Create an engaging event title that:
- Is maximum 60 characters
- Does NOT include the address (that's displayed separately)
- Captures the essence of the event
- Is community-focused and action-oriented
- Mentions the neighborhood if it fits naturally
- If possible, make a fun pun or cool name; it should be light-hearted and engaging

Respond with ONLY the title text, no quotes or other formatting.`,
		excerpt, placeName(group.Seed()), group.Category)
}

// placeName picks the most specific location label an issue carries.
func placeName(issue model.Issue) string {
	if issue.Neighborhood != "" {
		return issue.Neighborhood
	}
	if issue.City != "" {
		return issue.City
	}
	return "Community"
}

func clampTitle(title string) string {
	title = strings.Trim(title, `"' `)
	runes := []rune(title)
	if len(runes) <= maxTitleLen {
		return title
	}
	return string(runes[:maxTitleLen-3]) + "..."
}
