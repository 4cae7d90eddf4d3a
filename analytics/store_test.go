package analytics

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "analytics.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedVisit(t *testing.T, s *Store, visitor, path string, at time.Time) {
	t.Helper()
	v := &Visit{
		VisitorID: visitor,
		SessionID: visitor + "-sess",
		IPHash:    "abcd",
		Browser:   "Firefox",
		OS:        "Linux",
		Device:    "Desktop",
		Path:      path,
		Referrer:  "Direct",
		Timestamp: at,
	}
	if err := s.SaveVisit(v); err != nil {
		t.Fatalf("SaveVisit: %v", err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s := testStore(t)

	val, err := s.GetSetting("hash_salt")
	if err != nil || val != "" {
		t.Fatalf("missing key = %q, %v; want empty and no error", val, err)
	}
	if err := s.SetSetting("hash_salt", "aaa"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSetting("hash_salt", "bbb"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if val, _ := s.GetSetting("hash_salt"); val != "bbb" {
		t.Errorf("value = %q, want bbb", val)
	}
}

func TestGetStatsAggregates(t *testing.T) {
	s := testStore(t)
	now := time.Now().UTC()

	seedVisit(t, s, "v1", "/", now.Add(-2*time.Hour))
	seedVisit(t, s, "v1", "/services/", now.Add(-1*time.Hour))
	seedVisit(t, s, "v2", "/", now.Add(-30*time.Minute))

	stats, err := s.GetStats(context.Background(), now.AddDate(0, 0, -7), now, false, false)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalViews != 3 {
		t.Errorf("TotalViews = %d, want 3", stats.TotalViews)
	}
	if stats.UniqueVisitors != 2 {
		t.Errorf("UniqueVisitors = %d, want 2", stats.UniqueVisitors)
	}
	if len(stats.TopPages) == 0 || stats.TopPages[0].Path != "/" || stats.TopPages[0].Views != 2 {
		t.Errorf("TopPages = %+v", stats.TopPages)
	}
	if len(stats.LatestPages) != 3 || stats.LatestPages[0].Path != "/" {
		t.Errorf("LatestPages = %+v, want newest first", stats.LatestPages)
	}
	if len(stats.BrowserStats) != 1 || stats.BrowserStats[0].Name != "Firefox" || stats.BrowserStats[0].Count != 3 {
		t.Errorf("BrowserStats = %+v", stats.BrowserStats)
	}
	if len(stats.DailyViews) == 0 {
		t.Error("DailyViews is empty")
	}
}

func TestGetStatsWindowExcludesOldRows(t *testing.T) {
	s := testStore(t)
	now := time.Now().UTC()

	seedVisit(t, s, "v1", "/", now.AddDate(0, 0, -30))
	seedVisit(t, s, "v2", "/", now.Add(-time.Hour))

	stats, err := s.GetStats(context.Background(), now.AddDate(0, 0, -7), now, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalViews != 1 {
		t.Errorf("TotalViews = %d, want only the in-window row", stats.TotalViews)
	}
}

func TestUpdateVisitDuration(t *testing.T) {
	s := testStore(t)
	now := time.Now().UTC()

	seedVisit(t, s, "v1", "/", now.Add(-2*time.Hour))
	seedVisit(t, s, "v1", "/", now.Add(-time.Minute))

	if err := s.UpdateVisitDuration("v1", "/", 42); err != nil {
		t.Fatalf("UpdateVisitDuration: %v", err)
	}

	// Only the most recent row carries the duration.
	stats, err := s.GetStats(context.Background(), now.AddDate(0, 0, -1), now, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if stats.AvgDuration != 42 {
		t.Errorf("AvgDuration = %d, want 42 (zero-duration rows excluded)", stats.AvgDuration)
	}
}

func TestBotStats(t *testing.T) {
	s := testStore(t)
	now := time.Now().UTC()

	for i := 0; i < 2; i++ {
		if err := s.SaveBotVisit(&BotVisit{
			BotName:   "Googlebot",
			IPHash:    "abcd",
			UserAgent: "Mozilla/5.0 (compatible; Googlebot/2.1)",
			Path:      "/blog/",
			Timestamp: now.Add(-time.Hour),
		}); err != nil {
			t.Fatalf("SaveBotVisit: %v", err)
		}
	}

	stats, err := s.GetBotStats(context.Background(), now.AddDate(0, 0, -7), now, false, false)
	if err != nil {
		t.Fatalf("GetBotStats: %v", err)
	}
	if stats.TotalVisits != 2 {
		t.Errorf("TotalVisits = %d, want 2", stats.TotalVisits)
	}
	if len(stats.TopBots) != 1 || stats.TopBots[0].Name != "Googlebot" {
		t.Errorf("TopBots = %+v", stats.TopBots)
	}

	// Bot traffic never leaks into the human report.
	human, err := s.GetStats(context.Background(), now.AddDate(0, 0, -7), now, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if human.TotalViews != 0 {
		t.Errorf("human TotalViews = %d, want 0", human.TotalViews)
	}
}

func TestCleanupOldVisits(t *testing.T) {
	s := testStore(t)
	now := time.Now().UTC()

	seedVisit(t, s, "v1", "/", now.AddDate(0, 0, -400))
	seedVisit(t, s, "v2", "/", now.Add(-time.Hour))

	if err := s.CleanupOldVisits(365); err != nil {
		t.Fatalf("CleanupOldVisits: %v", err)
	}

	stats, err := s.GetStats(context.Background(), now.AddDate(-2, 0, 0), now, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalViews != 1 {
		t.Errorf("TotalViews = %d after cleanup, want 1", stats.TotalViews)
	}
}
