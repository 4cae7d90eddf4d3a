package leads

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/xpertai/sitekit/backend"
)

// WhatsAppLink composes a wa.me deep link carrying the message text.
// Deep links cannot carry attachments, so bulk shares tell the operator to
// attach the exported CSV manually.
func WhatsAppLink(text string) string {
	return "https://wa.me/?text=" + url.QueryEscape(text)
}

// MailtoLink composes a mailto: link with subject and body pre-filled.
func MailtoLink(subject, body string) string {
	return "mailto:?subject=" + url.QueryEscape(subject) + "&body=" + url.QueryEscape(body)
}

// FormatLead renders a single lead as a shareable detail card.
func FormatLead(l backend.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lead #%d\n", l.ID)
	fmt.Fprintf(&b, "Name: %s\n", l.Name)
	fmt.Fprintf(&b, "Email: %s\n", l.Email)
	fmt.Fprintf(&b, "Phone: %s\n", l.Phone)
	if l.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", l.Company)
	}
	if l.Service != "" {
		fmt.Fprintf(&b, "Service: %s\n", l.Service)
	}
	if l.SubServices != "" {
		fmt.Fprintf(&b, "Specific services: %s\n", l.SubServices)
	}
	if l.Timeline != "" {
		fmt.Fprintf(&b, "Timeline: %s\n", l.Timeline)
	}
	fmt.Fprintf(&b, "Source: %s\n", l.Source)
	fmt.Fprintf(&b, "Status: %s\n", l.Status)
	fmt.Fprintf(&b, "Created: %s\n", FormatTimestamp(l.CreatedAt))
	if l.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", l.Message)
	}
	return b.String()
}

// FormatBulkSummary renders summary stats for a batch of leads: count, date
// range, and per-source breakdown. The CSV itself is not attached; deep
// links cannot carry files.
func FormatBulkSummary(items []backend.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Leads export: %d lead(s)\n", len(items))
	if len(items) > 0 {
		oldest, newest := items[0].CreatedAt, items[0].CreatedAt
		for _, l := range items[1:] {
			if l.CreatedAt < oldest {
				oldest = l.CreatedAt
			}
			if l.CreatedAt > newest {
				newest = l.CreatedAt
			}
		}
		fmt.Fprintf(&b, "Date range: %s - %s\n", FormatDate(oldest), FormatDate(newest))

		bySource := make(map[string]int)
		for _, l := range items {
			bySource[string(l.Source)]++
		}
		sources := make([]string, 0, len(bySource))
		for s := range bySource {
			sources = append(sources, s)
		}
		sort.Strings(sources)
		b.WriteString("Sources:")
		for _, s := range sources {
			fmt.Fprintf(&b, " %s=%d", s, bySource[s])
		}
		b.WriteByte('\n')
	}
	b.WriteString("The CSV file has been downloaded separately; attach it manually.\n")
	return b.String()
}
