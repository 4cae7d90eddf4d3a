package analytics

import (
	"testing"
)

const (
	firefoxLinuxUA = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"
	chromeMacUA    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	safariPhoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	googlebotUA    = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestHashIPStableAndTruncated(t *testing.T) {
	a := HashIP("203.0.113.9")
	b := HashIP("203.0.113.9")
	if a != b {
		t.Error("same IP must hash to the same value")
	}
	if len(a) != 16 {
		t.Errorf("hash length = %d, want 16", len(a))
	}
	if a == "203.0.113.9" || HashIP("203.0.113.10") == a {
		t.Error("distinct IPs must produce distinct opaque hashes")
	}
}

func TestGenerateVisitorIDMixesUserAgent(t *testing.T) {
	a := GenerateVisitorID("203.0.113.9", firefoxLinuxUA)
	b := GenerateVisitorID("203.0.113.9", chromeMacUA)
	if a == b {
		t.Error("different user agents from one IP must be different visitors")
	}
}

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		ua      string
		browser string
		os      string
		device  string
	}{
		{firefoxLinuxUA, "Firefox", "Linux", "Desktop"},
		{chromeMacUA, "Chrome", "macOS", "Desktop"},
		{safariPhoneUA, "Safari", "iOS", "Mobile"},
		{"", "Other", "Other", "Desktop"},
	}
	for _, tt := range tests {
		browser, os, device := ParseUserAgent(tt.ua)
		if browser != tt.browser || os != tt.os || device != tt.device {
			t.Errorf("ParseUserAgent(%q) = %q/%q/%q, want %q/%q/%q",
				tt.ua, browser, os, device, tt.browser, tt.os, tt.device)
		}
	}
}

func TestIsBot(t *testing.T) {
	tests := []struct {
		ua   string
		want bool
	}{
		{googlebotUA, true},
		{"ClaudeBot/1.0 (+claudebot@anthropic.com)", true},
		{"some-random-crawler/0.1", true},
		{firefoxLinuxUA, false},
		{safariPhoneUA, false},
	}
	for _, tt := range tests {
		if got := IsBot(tt.ua); got != tt.want {
			t.Errorf("IsBot(%q) = %v, want %v", tt.ua, got, tt.want)
		}
	}
}

func TestExtractBotName(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{googlebotUA, "Googlebot"},
		{"GPTBot/1.0", "GPTBot"},
		{"acme-spider/2.0", "Generic Spider"},
		{"somethingbot/1.0", "Other Bot"},
		{"curl/8.0", "Unknown"},
	}
	for _, tt := range tests {
		if got := ExtractBotName(tt.ua); got != tt.want {
			t.Errorf("ExtractBotName(%q) = %q, want %q", tt.ua, got, tt.want)
		}
	}
}

func TestCleanReferrer(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"", "Direct"},
		{"https://www.google.com/search?q=xpertai", "Google"},
		{"https://duckduckgo.com/", "DuckDuckGo"},
		{"https://www.linkedin.com/feed/", "LinkedIn"},
		{"https://news.ycombinator.com/item?id=1", "news.ycombinator.com"},
		{"not a url", "Other"},
	}
	for _, tt := range tests {
		if got := CleanReferrer(tt.ref); got != tt.want {
			t.Errorf("CleanReferrer(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}
