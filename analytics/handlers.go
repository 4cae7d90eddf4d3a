package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler exposes the collect endpoint and the admin stats API.
type Handler struct {
	store          *Store
	collectLimiter *collectLimiter
}

// NewHandler creates an analytics handler. The collect endpoint is limited
// to 60 requests per IP per minute.
func NewHandler(store *Store) *Handler {
	return &Handler{
		store:          store,
		collectLimiter: newCollectLimiter(60, time.Minute),
	}
}

// RegisterRoutes mounts the public collect endpoint and the guarded admin
// stats API.
func (h *Handler) RegisterRoutes(e *echo.Echo, adminGuard echo.MiddlewareFunc) {
	e.POST("/api/analytics/collect", h.Collect)

	admin := e.Group("/admin/analytics", adminGuard)
	admin.GET("/api/stats", h.GetStats)
	admin.GET("/api/bot-stats", h.GetBotStats)
}

// CollectRequest is the beacon body posted by the tracking script.
type CollectRequest struct {
	Path        string `json:"path"`
	Referrer    string `json:"referrer"`
	ScreenSize  string `json:"screen_size"`
	UserAgent   string `json:"user_agent"`
	DurationSec int    `json:"duration_sec"`
}

const (
	maxPathLen       = 2048
	maxReferrerLen   = 2048
	maxScreenSizeLen = 32
	maxUserAgentLen  = 512
	maxDurationSec   = 86400
)

func validateCollectRequest(req *CollectRequest) error {
	if len(req.Path) > maxPathLen {
		return fmt.Errorf("path exceeds %d bytes", maxPathLen)
	}
	if len(req.Referrer) > maxReferrerLen {
		return fmt.Errorf("referrer exceeds %d bytes", maxReferrerLen)
	}
	if len(req.ScreenSize) > maxScreenSizeLen {
		return fmt.Errorf("screen_size exceeds %d bytes", maxScreenSizeLen)
	}
	if len(req.UserAgent) > maxUserAgentLen {
		return fmt.Errorf("user_agent exceeds %d bytes", maxUserAgentLen)
	}
	if req.DurationSec < 0 || req.DurationSec > maxDurationSec {
		return fmt.Errorf("duration_sec out of range")
	}
	return nil
}

// Collect records a page view. Honors DNT and never blocks the page.
func (h *Handler) Collect(c echo.Context) error {
	if !h.collectLimiter.allow(c.RealIP()) {
		return c.NoContent(http.StatusTooManyRequests)
	}
	if c.Request().Header.Get("DNT") == "1" {
		return c.NoContent(http.StatusNoContent)
	}

	var req CollectRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "invalid request")
	}
	if err := validateCollectRequest(&req); err != nil {
		return c.String(http.StatusBadRequest, "invalid request")
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = c.Request().UserAgent()
	}
	ip := c.RealIP()

	if IsBot(userAgent) {
		bv := &BotVisit{
			BotName:   ExtractBotName(userAgent),
			IPHash:    HashIP(ip),
			UserAgent: userAgent,
			Path:      req.Path,
			Timestamp: time.Now().UTC(),
		}
		if err := h.store.SaveBotVisit(bv); err != nil {
			zap.S().Errorw("save bot visit", "error", err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	visitorID := GenerateVisitorID(ip, userAgent)

	// A positive duration marks an unload beacon; update the row already
	// written for this view instead of inserting another.
	if req.DurationSec > 0 {
		if err := h.store.UpdateVisitDuration(visitorID, req.Path, req.DurationSec); err != nil {
			zap.S().Errorw("update visit duration", "error", err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	browser, os, device := ParseUserAgent(userAgent)
	visit := &Visit{
		VisitorID:  visitorID,
		SessionID:  generateSessionID(visitorID),
		IPHash:     HashIP(ip),
		Browser:    browser,
		OS:         os,
		Device:     device,
		Path:       req.Path,
		Referrer:   CleanReferrer(req.Referrer),
		ScreenSize: req.ScreenSize,
		Timestamp:  time.Now().UTC(),
	}
	if err := h.store.SaveVisit(visit); err != nil {
		zap.S().Errorw("save visit", "error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// StatsResponse wraps the aggregated report with realtime and period info.
type StatsResponse struct {
	Stats      *Stats `json:"stats"`
	Realtime   int    `json:"realtime_visitors"`
	PeriodDays int    `json:"period_days"`
	Hourly     bool   `json:"hourly"`
	Monthly    bool   `json:"monthly"`
}

func (h *Handler) GetStats(c echo.Context) error {
	days, hourly, monthly := parsePeriod(c.QueryParam("period"))
	from, to := calcTimeRange(time.Now().UTC(), days, hourly)

	stats, err := h.store.GetStats(c.Request().Context(), from, to, hourly, monthly)
	if err != nil {
		zap.S().Errorw("get stats", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
	if hourly {
		stats.DailyViews = fillHourlyData(stats.DailyViews, from)
	}
	realtime, _ := h.store.GetRealtimeVisitors()

	return c.JSON(http.StatusOK, StatsResponse{
		Stats:      stats,
		Realtime:   realtime,
		PeriodDays: days,
		Hourly:     hourly,
		Monthly:    monthly,
	})
}

// BotStatsResponse wraps the crawler report.
type BotStatsResponse struct {
	Stats      *BotStats `json:"stats"`
	PeriodDays int       `json:"period_days"`
	Hourly     bool      `json:"hourly"`
	Monthly    bool      `json:"monthly"`
}

func (h *Handler) GetBotStats(c echo.Context) error {
	days, hourly, monthly := parsePeriod(c.QueryParam("period"))
	from, to := calcTimeRange(time.Now().UTC(), days, hourly)

	stats, err := h.store.GetBotStats(c.Request().Context(), from, to, hourly, monthly)
	if err != nil {
		zap.S().Errorw("get bot stats", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
	if hourly {
		stats.DailyVisits = fillHourlyData(stats.DailyVisits, from)
	}
	return c.JSON(http.StatusOK, BotStatsResponse{
		Stats:      stats,
		PeriodDays: days,
		Hourly:     hourly,
		Monthly:    monthly,
	})
}

func parsePeriod(period string) (days int, hourly, monthly bool) {
	switch period {
	case "today":
		return 1, true, false
	case "month":
		return 30, false, false
	case "year":
		return 365, false, true
	default:
		return 7, false, false
	}
}

func calcTimeRange(now time.Time, days int, hourly bool) (time.Time, time.Time) {
	if hourly {
		from := now.Truncate(time.Hour).Add(-23 * time.Hour)
		return from, now
	}
	from := now.AddDate(0, 0, -days).Truncate(24 * time.Hour)
	to := now.Add(24 * time.Hour).Truncate(24 * time.Hour)
	return from, to
}

// fillHourlyData ensures all 24 hourly slots exist, with zeros for gaps.
func fillHourlyData(sparse []DailyView, from time.Time) []DailyView {
	byLabel := make(map[string]int, len(sparse))
	for _, v := range sparse {
		byLabel[v.Date] = v.Views
	}
	out := make([]DailyView, 24)
	for i := 0; i < 24; i++ {
		label := fmt.Sprintf("%02d:00", from.Add(time.Duration(i)*time.Hour).Hour())
		out[i] = DailyView{Date: label, Views: byLabel[label]}
	}
	return out
}

// generateSessionID derives a per-day session id from the visitor identity.
func generateSessionID(visitorID string) string {
	day := time.Now().UTC().Format("2006-01-02")
	h := sha256.New()
	h.Write([]byte(visitorID + "|" + day))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// collectLimiter is a per-IP sliding window for the collect endpoint.
type collectLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	max    int
	window time.Duration
}

func newCollectLimiter(max int, window time.Duration) *collectLimiter {
	cl := &collectLimiter{
		hits:   make(map[string][]time.Time),
		max:    max,
		window: window,
	}
	go cl.cleanup()
	return cl
}

func (cl *collectLimiter) allow(key string) bool {
	now := time.Now()
	cutoff := now.Add(-cl.window)

	cl.mu.Lock()
	defer cl.mu.Unlock()

	kept := cl.hits[key][:0]
	for _, t := range cl.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= cl.max {
		cl.hits[key] = kept
		return false
	}
	cl.hits[key] = append(kept, now)
	return true
}

func (cl *collectLimiter) cleanup() {
	ticker := time.NewTicker(cl.window)
	for range ticker.C {
		cutoff := time.Now().Add(-cl.window)
		cl.mu.Lock()
		for key, hits := range cl.hits {
			kept := hits[:0]
			for _, t := range hits {
				if t.After(cutoff) {
					kept = append(kept, t)
				}
			}
			if len(kept) == 0 {
				delete(cl.hits, key)
			} else {
				cl.hits[key] = kept
			}
		}
		cl.mu.Unlock()
	}
}
