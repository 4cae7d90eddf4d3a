package leads

import (
	"net/url"
	"strings"
	"testing"

	"github.com/xpertai/sitekit/backend"
)

func TestWhatsAppLinkEscapesText(t *testing.T) {
	link := WhatsAppLink("Lead #1\nName: A&B")
	if !strings.HasPrefix(link, "https://wa.me/?text=") {
		t.Fatalf("link = %q", link)
	}
	got, err := url.QueryUnescape(strings.TrimPrefix(link, "https://wa.me/?text="))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Lead #1\nName: A&B" {
		t.Errorf("round-tripped text = %q", got)
	}
	if strings.ContainsAny(strings.TrimPrefix(link, "https://wa.me/?text="), "\n&#") {
		t.Error("reserved characters must be escaped in the query")
	}
}

func TestMailtoLink(t *testing.T) {
	link := MailtoLink("Lead: Ada", "line one\nline two")
	u, err := url.Parse(link)
	if err != nil {
		t.Fatal(err)
	}
	if u.Scheme != "mailto" {
		t.Errorf("scheme = %q", u.Scheme)
	}
	q := u.Query()
	if q.Get("subject") != "Lead: Ada" {
		t.Errorf("subject = %q", q.Get("subject"))
	}
	if q.Get("body") != "line one\nline two" {
		t.Errorf("body = %q", q.Get("body"))
	}
}

func TestFormatLeadOmitsEmptyOptionalLines(t *testing.T) {
	minimal := backend.Lead{
		ID:        5,
		Name:      "Ada",
		Email:     "ada@example.com",
		Phone:     "111",
		Source:    backend.SourceWebsite,
		Status:    backend.LeadNew,
		CreatedAt: "2024-01-10T10:00:00Z",
	}
	got := FormatLead(minimal)
	want := "Lead #5\n" +
		"Name: Ada\n" +
		"Email: ada@example.com\n" +
		"Phone: 111\n" +
		"Source: website\n" +
		"Status: new\n" +
		"Created: 1/10/2024, 10:00:00 AM\n"
	if got != want {
		t.Errorf("FormatLead = %q, want %q", got, want)
	}

	full := minimal
	full.Company = "Initech"
	full.Service = "Chatbots"
	full.SubServices = "NLP,MLOps"
	full.Timeline = "1-3 months"
	full.Message = "hello"
	got = FormatLead(full)
	for _, line := range []string{
		"Company: Initech\n",
		"Service: Chatbots\n",
		"Specific services: NLP,MLOps\n",
		"Timeline: 1-3 months\n",
		"Message: hello\n",
	} {
		if !strings.Contains(got, line) {
			t.Errorf("missing %q in %q", line, got)
		}
	}
}

func TestFormatBulkSummary(t *testing.T) {
	items := []backend.Lead{
		{ID: 1, Source: backend.SourceWebsite, CreatedAt: "2024-01-10T10:00:00Z"},
		{ID: 2, Source: backend.SourceChatbot, CreatedAt: "2024-02-05T16:30:00Z"},
		{ID: 3, Source: backend.SourceWebsite, CreatedAt: "2024-01-20T08:00:00Z"},
	}
	got := FormatBulkSummary(items)
	want := "Leads export: 3 lead(s)\n" +
		"Date range: 1/10/2024 - 2/5/2024\n" +
		"Sources: chatbot=1 website=2\n" +
		"The CSV file has been downloaded separately; attach it manually.\n"
	if got != want {
		t.Errorf("FormatBulkSummary = %q, want %q", got, want)
	}
}

func TestFormatBulkSummaryEmpty(t *testing.T) {
	got := FormatBulkSummary(nil)
	want := "Leads export: 0 lead(s)\n" +
		"The CSV file has been downloaded separately; attach it manually.\n"
	if got != want {
		t.Errorf("FormatBulkSummary(nil) = %q, want %q", got, want)
	}
}
