// Package analytics records privacy-first page view data for the marketing
// site: no cookies, no raw IPs, salted hashes only. Visits land in a local
// sqlite database that the admin console reads for its traffic dashboard.
package analytics

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/avct/uasurfer"
)

// salt is the per-installation random value mixed into every IP hash. It is
// persisted in the settings table so visitor IDs stay stable across restarts.
var salt struct {
	once  sync.Once
	value string
}

// InitSalt loads or generates the persistent hashing salt. Must be called
// once at startup before any visit is recorded.
func InitSalt(store *Store) error {
	var initErr error
	salt.once.Do(func() {
		s, err := store.GetSetting("hash_salt")
		if err != nil {
			initErr = fmt.Errorf("read hash salt: %w", err)
			return
		}
		if s == "" {
			b := make([]byte, 32)
			if _, err := rand.Read(b); err != nil {
				initErr = fmt.Errorf("generate salt: %w", err)
				return
			}
			s = hex.EncodeToString(b)
			if err := store.SetSetting("hash_salt", s); err != nil {
				initErr = fmt.Errorf("store hash salt: %w", err)
				return
			}
		}
		salt.value = s
	})
	return initErr
}

func getSalt() string {
	return salt.value
}

// Visit is a single human page view.
type Visit struct {
	ID          int64     `json:"-"`
	VisitorID   string    `json:"visitor_id"`
	SessionID   string    `json:"session_id"`
	IPHash      string    `json:"-"`
	Browser     string    `json:"browser"`
	OS          string    `json:"os"`
	Device      string    `json:"device"`
	Path        string    `json:"path"`
	Referrer    string    `json:"referrer"`
	ScreenSize  string    `json:"screen_size"`
	Timestamp   time.Time `json:"timestamp"`
	DurationSec int       `json:"duration_sec"`
}

// BotVisit is a single crawler page view, kept out of the human stats.
type BotVisit struct {
	ID        int64     `json:"-"`
	BotName   string    `json:"bot_name"`
	IPHash    string    `json:"-"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats is the aggregated traffic report for a period.
type Stats struct {
	Period         string            `json:"period"`
	UniqueVisitors int               `json:"unique_visitors"`
	TotalViews     int               `json:"total_views"`
	AvgDuration    int               `json:"avg_duration_sec"`
	TopPages       []PageStat        `json:"top_pages"`
	LatestPages    []LatestPageVisit `json:"latest_pages"`
	BrowserStats   []DimensionStat   `json:"browsers"`
	OSStats        []DimensionStat   `json:"os"`
	DeviceStats    []DimensionStat   `json:"devices"`
	ReferrerStats  []DimensionStat   `json:"referrers"`
	DailyViews     []DailyView       `json:"daily_views"`
}

// BotStats is the aggregated crawler report for a period.
type BotStats struct {
	Period      string          `json:"period"`
	TotalVisits int             `json:"total_visits"`
	TopBots     []DimensionStat `json:"top_bots"`
	TopPages    []PageStat      `json:"top_pages"`
	DailyVisits []DailyView     `json:"daily_visits"`
}

type PageStat struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

type LatestPageVisit struct {
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
	Browser   string `json:"browser"`
}

type DimensionStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type DailyView struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

// HashIP returns a salted, truncated SHA-256 of an IP address.
func HashIP(ip string) string {
	h := sha256.New()
	h.Write([]byte(getSalt() + ip))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// GenerateVisitorID derives the anonymous visitor fingerprint from IP and
// User-Agent.
func GenerateVisitorID(ip, userAgent string) string {
	h := sha256.New()
	h.Write([]byte(getSalt() + ip + "|" + userAgent))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ParseUserAgent extracts browser, OS, and device class from a User-Agent
// header.
func ParseUserAgent(ua string) (browser, os, device string) {
	u := uasurfer.Parse(ua)

	browser = strings.TrimPrefix(u.Browser.Name.String(), "Browser")
	if browser == "Unknown" {
		browser = "Other"
	}

	os = strings.TrimPrefix(u.OS.Name.String(), "OS")
	switch os {
	case "MacOSX":
		os = "macOS"
	case "Unknown":
		os = "Other"
	}

	switch u.DeviceType {
	case uasurfer.DevicePhone:
		device = "Mobile"
	case uasurfer.DeviceTablet:
		device = "Tablet"
	default:
		device = "Desktop"
	}
	return
}

// IsBot reports whether the User-Agent belongs to a crawler.
func IsBot(ua string) bool {
	if uasurfer.Parse(ua).IsBot() {
		return true
	}
	lower := strings.ToLower(ua)
	for _, marker := range []string{"bot", "crawler", "spider", "crawl", "slurp", "scrape"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

var botNames = map[string]string{
	"googlebot":           "Googlebot",
	"bingbot":             "Bingbot",
	"yandex":              "Yandex",
	"baidu":               "Baidu",
	"duckduckbot":         "DuckDuckBot",
	"facebookexternalhit": "Facebook",
	"twitterbot":          "Twitterbot",
	"linkedinbot":         "LinkedIn",
	"ahrefsbot":           "Ahrefs",
	"semrushbot":          "SEMrush",
	"mj12bot":             "Majestic",
	"dotbot":              "Moz",
	"slurp":               "Yahoo Slurp",
	"gptbot":              "GPTBot",
	"claudebot":           "ClaudeBot",
}

// ExtractBotName maps a crawler User-Agent to a display name.
func ExtractBotName(ua string) string {
	lower := strings.ToLower(ua)
	for pattern, name := range botNames {
		if strings.Contains(lower, pattern) {
			return name
		}
	}
	switch {
	case strings.Contains(lower, "crawler"):
		return "Generic Crawler"
	case strings.Contains(lower, "spider"):
		return "Generic Spider"
	case strings.Contains(lower, "bot"):
		return "Other Bot"
	}
	return "Unknown"
}

var referrerDomainRegex = regexp.MustCompile(`^https?://(?:www\.)?([^/]+)`)

// CleanReferrer collapses a referrer URL into a domain-or-source label.
func CleanReferrer(ref string) string {
	if ref == "" {
		return "Direct"
	}
	lower := strings.ToLower(ref)
	switch {
	case strings.Contains(lower, "google."):
		return "Google"
	case strings.Contains(lower, "bing."):
		return "Bing"
	case strings.Contains(lower, "duckduckgo."):
		return "DuckDuckGo"
	case strings.Contains(lower, "linkedin."):
		return "LinkedIn"
	case strings.Contains(lower, "facebook."):
		return "Facebook"
	}
	if m := referrerDomainRegex.FindStringSubmatch(ref); len(m) > 1 {
		return m[1]
	}
	return "Other"
}
