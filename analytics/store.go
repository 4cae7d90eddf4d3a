package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"
)

// Store is the sqlite persistence layer for visits.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the analytics database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			visitor_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			browser TEXT NOT NULL,
			os TEXT NOT NULL,
			device TEXT NOT NULL,
			path TEXT NOT NULL,
			referrer TEXT,
			screen_size TEXT,
			timestamp DATETIME NOT NULL,
			duration_sec INTEGER DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS bot_visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bot_name TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			user_agent TEXT NOT NULL,
			path TEXT NOT NULL,
			timestamp DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
		CREATE INDEX IF NOT EXISTS idx_visits_visitor_id ON visits(visitor_id);
		CREATE INDEX IF NOT EXISTS idx_visits_path ON visits(path);
		CREATE INDEX IF NOT EXISTS idx_bot_visits_timestamp ON bot_visits(timestamp);
		CREATE INDEX IF NOT EXISTS idx_bot_visits_name ON bot_visits(bot_name);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// GetSetting returns a setting value, or "" when the key is absent.
func (s *Store) GetSetting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return val, err
}

// SetSetting upserts a setting value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// SaveVisit stores a page view.
func (s *Store) SaveVisit(v *Visit) error {
	_, err := s.db.Exec(`
		INSERT INTO visits (visitor_id, session_id, ip_hash, browser, os, device,
			path, referrer, screen_size, timestamp, duration_sec)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, v.VisitorID, v.SessionID, v.IPHash, v.Browser, v.OS, v.Device,
		v.Path, v.Referrer, v.ScreenSize, v.Timestamp.UTC(), v.DurationSec)
	return err
}

// UpdateVisitDuration sets the duration on the visitor's most recent view of
// a path. Unload beacons use this instead of inserting a second row.
func (s *Store) UpdateVisitDuration(visitorID, path string, durationSec int) error {
	_, err := s.db.Exec(`
		UPDATE visits SET duration_sec = ?
		WHERE id = (
			SELECT id FROM visits
			WHERE visitor_id = ? AND path = ?
			ORDER BY timestamp DESC LIMIT 1
		)
	`, durationSec, visitorID, path)
	return err
}

// SaveBotVisit stores a crawler page view.
func (s *Store) SaveBotVisit(bv *BotVisit) error {
	_, err := s.db.Exec(`
		INSERT INTO bot_visits (bot_name, ip_hash, user_agent, path, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, bv.BotName, bv.IPHash, bv.UserAgent, bv.Path, bv.Timestamp.UTC())
	return err
}

func (s *Store) countQuery(ctx context.Context, query string, from, to time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, query, from, to).Scan(&n)
	return n, err
}

func (s *Store) dimensionQuery(ctx context.Context, query string, from, to time.Time) ([]DimensionStat, error) {
	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DimensionStat{}
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) viewsQuery(ctx context.Context, table, bucket string, from, to time.Time) ([]DailyView, error) {
	query := fmt.Sprintf(`
		SELECT strftime('%s', timestamp) AS bucket, COUNT(*)
		FROM %s WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY bucket ORDER BY bucket
	`, bucket, table)
	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DailyView{}
	for rows.Next() {
		var v DailyView
		if err := rows.Scan(&v.Date, &v.Views); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func bucketFormat(hourly, monthly bool) string {
	switch {
	case hourly:
		return "%H:00"
	case monthly:
		return "%Y-%m"
	}
	return "%Y-%m-%d"
}

// GetStats aggregates the human traffic report for the given window. The
// independent aggregations run concurrently.
func (s *Store) GetStats(ctx context.Context, from, to time.Time, hourly, monthly bool) (*Stats, error) {
	stats := &Stats{
		Period:        from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
		TopPages:      []PageStat{},
		LatestPages:   []LatestPageVisit{},
		BrowserStats:  []DimensionStat{},
		OSStats:       []DimensionStat{},
		DeviceStats:   []DimensionStat{},
		ReferrerStats: []DimensionStat{},
		DailyViews:    []DailyView{},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.countQuery(ctx,
			`SELECT COUNT(*) FROM visits WHERE timestamp >= ? AND timestamp <= ?`, from, to)
		if err != nil {
			return fmt.Errorf("count views: %w", err)
		}
		stats.TotalViews = n
		return nil
	})

	g.Go(func() error {
		n, err := s.countQuery(ctx,
			`SELECT COUNT(DISTINCT visitor_id) FROM visits WHERE timestamp >= ? AND timestamp <= ?`, from, to)
		if err != nil {
			return fmt.Errorf("count unique visitors: %w", err)
		}
		stats.UniqueVisitors = n
		return nil
	})

	g.Go(func() error {
		var avg sql.NullFloat64
		err := s.db.QueryRowContext(ctx,
			`SELECT AVG(duration_sec) FROM visits WHERE timestamp >= ? AND timestamp <= ? AND duration_sec > 0`,
			from, to).Scan(&avg)
		if err != nil {
			return fmt.Errorf("avg duration: %w", err)
		}
		if avg.Valid {
			stats.AvgDuration = int(avg.Float64)
		}
		return nil
	})

	g.Go(func() error {
		rows, err := s.dimensionQuery(ctx, `
			SELECT path, COUNT(*) AS views FROM visits
			WHERE timestamp >= ? AND timestamp <= ?
			GROUP BY path ORDER BY views DESC LIMIT 10
		`, from, to)
		if err != nil {
			return fmt.Errorf("top pages: %w", err)
		}
		for _, r := range rows {
			stats.TopPages = append(stats.TopPages, PageStat{Path: r.Name, Views: r.Count})
		}
		return nil
	})

	g.Go(func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT path, timestamp, browser FROM visits
			WHERE timestamp >= ? AND timestamp <= ?
			ORDER BY timestamp DESC LIMIT 10
		`, from, to)
		if err != nil {
			return fmt.Errorf("latest pages: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var p LatestPageVisit
			var ts time.Time
			if err := rows.Scan(&p.Path, &ts, &p.Browser); err != nil {
				return err
			}
			p.Timestamp = ts.Format("2006-01-02 15:04:05")
			stats.LatestPages = append(stats.LatestPages, p)
		}
		return rows.Err()
	})

	for _, dim := range []struct {
		column string
		dest   *[]DimensionStat
	}{
		{"browser", &stats.BrowserStats},
		{"os", &stats.OSStats},
		{"device", &stats.DeviceStats},
		{"referrer", &stats.ReferrerStats},
	} {
		dim := dim
		g.Go(func() error {
			query := fmt.Sprintf(`
				SELECT %s, COUNT(*) AS cnt FROM visits
				WHERE timestamp >= ? AND timestamp <= ?
				GROUP BY %s ORDER BY cnt DESC LIMIT 10
			`, dim.column, dim.column)
			rows, err := s.dimensionQuery(ctx, query, from, to)
			if err != nil {
				return fmt.Errorf("%s stats: %w", dim.column, err)
			}
			*dim.dest = rows
			return nil
		})
	}

	g.Go(func() error {
		rows, err := s.viewsQuery(ctx, "visits", bucketFormat(hourly, monthly), from, to)
		if err != nil {
			return fmt.Errorf("views over time: %w", err)
		}
		stats.DailyViews = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetBotStats aggregates the crawler report for the given window.
func (s *Store) GetBotStats(ctx context.Context, from, to time.Time, hourly, monthly bool) (*BotStats, error) {
	stats := &BotStats{
		Period:      from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
		TopBots:     []DimensionStat{},
		TopPages:    []PageStat{},
		DailyVisits: []DailyView{},
	}

	n, err := s.countQuery(ctx,
		`SELECT COUNT(*) FROM bot_visits WHERE timestamp >= ? AND timestamp <= ?`, from, to)
	if err != nil {
		return nil, fmt.Errorf("count bot visits: %w", err)
	}
	stats.TotalVisits = n

	stats.TopBots, err = s.dimensionQuery(ctx, `
		SELECT bot_name, COUNT(*) AS cnt FROM bot_visits
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY bot_name ORDER BY cnt DESC LIMIT 10
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("top bots: %w", err)
	}

	pages, err := s.dimensionQuery(ctx, `
		SELECT path, COUNT(*) AS views FROM bot_visits
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY path ORDER BY views DESC LIMIT 10
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("top bot pages: %w", err)
	}
	for _, p := range pages {
		stats.TopPages = append(stats.TopPages, PageStat{Path: p.Name, Views: p.Count})
	}

	stats.DailyVisits, err = s.viewsQuery(ctx, "bot_visits", bucketFormat(hourly, monthly), from, to)
	if err != nil {
		return nil, fmt.Errorf("bot views over time: %w", err)
	}
	return stats, nil
}

// GetRealtimeVisitors counts unique visitors in the last 5 minutes.
func (s *Store) GetRealtimeVisitors() (int, error) {
	cutoff := time.Now().UTC().Add(-5 * time.Minute)
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(DISTINCT visitor_id) FROM visits WHERE timestamp >= ?`, cutoff).Scan(&n)
	return n, err
}

// CleanupOldVisits removes rows older than the retention period.
func (s *Store) CleanupOldVisits(retentionDays int) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	if _, err := s.db.Exec(`DELETE FROM visits WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup visits: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM bot_visits WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup bot_visits: %w", err)
	}
	return nil
}

// StartCleanupScheduler runs periodic retention cleanup. Returns a stop
// function.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := s.CleanupOldVisits(retentionDays); err != nil {
					zap.S().Errorw("analytics cleanup", "error", err)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
