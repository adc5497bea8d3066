package templates

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/linesmerrill/case-diary-api/models"
)

// Digest is the content of one user's daily case email
type Digest struct {
	Name     string
	Today    []models.CaseEntry
	Upcoming []models.CaseEntry
	Date     time.Time
	Location *time.Location
}

// Subject is the email subject line for the digest
func (d Digest) Subject() string {
	return fmt.Sprintf("Your case diary for %s", d.Date.In(d.location()).Format("Mon, 2 Jan 2006"))
}

// RenderDigestEmail returns the HTML and plain text bodies of the digest
func RenderDigestEmail(d Digest) (htmlBody, plain string) {
	var hb, pb strings.Builder

	greeting := "Hello,"
	if d.Name != "" {
		greeting = fmt.Sprintf("Hello %s,", d.Name)
	}
	fmt.Fprintf(&hb, "<p>%s</p>", html.EscapeString(greeting))
	fmt.Fprintf(&pb, "%s\n", greeting)

	d.section(&hb, &pb, "Today", d.Today)
	d.section(&hb, &pb, "Coming up", d.Upcoming)

	return renderLayout(d.Subject(), hb.String()), strings.TrimRight(pb.String(), "\n")
}

func (d Digest) section(hb, pb *strings.Builder, title string, list []models.CaseEntry) {
	if len(list) == 0 {
		return
	}
	fmt.Fprintf(hb, "<h2>%s (%d)</h2>", html.EscapeString(title), len(list))
	fmt.Fprintf(pb, "\n%s (%d)\n", title, len(list))
	for _, c := range list {
		next := c.NextDate.In(d.location()).Format("2006-01-02")
		fmt.Fprintf(hb, `<div class="case"><div>%s</div><div class="meta">%s · next date %s</div></div>`,
			html.EscapeString(c.CaseDetails), html.EscapeString(string(c.Status)), next)
		fmt.Fprintf(pb, "- %s [%s] next date %s\n", c.CaseDetails, c.Status, next)
	}
}

func (d Digest) location() *time.Location {
	if d.Location == nil {
		return time.UTC
	}
	return d.Location
}
