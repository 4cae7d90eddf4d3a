package sitekit

import (
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xpertai/sitekit/backend"
	"github.com/xpertai/sitekit/leads"
)

// workspaceRegistry holds one leads workspace per admin session, so each
// admin keeps their own filters, sort, and selection. Entries are dropped on
// logout and evicted after the TTL, so sessions that expire without logging
// out do not leak theirs.
type workspaceRegistry struct {
	mu         sync.Mutex
	workspaces map[string]*workspaceEntry
	ttl        time.Duration
}

type workspaceEntry struct {
	workspace *leads.Workspace
	seen      time.Time
}

func newWorkspaceRegistry(ttl time.Duration) *workspaceRegistry {
	r := &workspaceRegistry{
		workspaces: make(map[string]*workspaceEntry),
		ttl:        ttl,
	}
	go r.cleanup()
	return r
}

func (r *workspaceRegistry) cleanup() {
	ticker := time.NewTicker(r.ttl)
	for range ticker.C {
		r.evictIdle(time.Now().Add(-r.ttl))
	}
}

func (r *workspaceRegistry) evictIdle(cutoff time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, e := range r.workspaces {
		if e.seen.Before(cutoff) {
			delete(r.workspaces, token)
		}
	}
}

func (r *workspaceRegistry) get(token string) *leads.Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.workspaces[token]
	if !ok {
		e = &workspaceEntry{workspace: leads.NewWorkspace()}
		r.workspaces[token] = e
	}
	e.seen = time.Now()
	return e.workspace
}

func (r *workspaceRegistry) drop(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workspaces, token)
}

func (a *App) leadsWorkspace(c echo.Context) *leads.Workspace {
	sess, _ := adminSessionFrom(c)
	return a.workspaces.get(sess.Token)
}

func (a *App) reloadLeads(c echo.Context, ws *leads.Workspace) {
	var items []backend.Lead
	if err := a.backendFor(c).List(c.Request().Context(), "leads", &items); err != nil {
		a.log.Errorw("load leads", "error", err)
		toastError(c, userMessage(err, "Could not load leads."))
		return
	}
	ws.SetItems(items)
}

func leadsURL(ws *leads.Workspace) string {
	query, source, sortKey, sortDesc := ws.Filters()
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	if source != "" && source != "all" {
		q.Set("source", source)
	}
	q.Set("sort", sortKey)
	if sortDesc {
		q.Set("dir", "desc")
	}
	return "/admin/leads/?" + q.Encode()
}

func (a *App) handleLeads(c echo.Context) error {
	ws := a.leadsWorkspace(c)

	// Filters and sort arrive as query params.
	if v := c.QueryParams(); len(v) > 0 {
		ws.SetFilters(v.Get("q"), v.Get("source"), v.Get("sort"), v.Get("dir") == "desc")
	}

	a.reloadLeads(c, ws)

	query, source, sortKey, sortDesc := ws.Filters()
	lv := LeadsView{
		Visible:  ws.Visible(),
		Total:    len(ws.Items()),
		Query:    query,
		Source:   source,
		SortKey:  sortKey,
		SortDesc: sortDesc,
		Selected: ws.Selected(),
	}
	return Render(c, a.Views.AdminLeads(a.Config, lv, popToasts(c), CsrfToken(c)))
}

func (a *App) handleLeadSelect(c echo.Context) error {
	ws := a.leadsWorkspace(c)
	id, _ := strconv.Atoi(c.Param("id"))
	ws.ToggleSelect(id)
	return c.Redirect(http.StatusSeeOther, leadsURL(ws))
}

func (a *App) handleLeadSelectVisible(c echo.Context) error {
	ws := a.leadsWorkspace(c)
	ws.ToggleVisibleSelection()
	return c.Redirect(http.StatusSeeOther, leadsURL(ws))
}

func (a *App) handleLeadClearSelection(c echo.Context) error {
	ws := a.leadsWorkspace(c)
	ws.ClearSelection()
	return c.Redirect(http.StatusSeeOther, leadsURL(ws))
}

func (a *App) handleLeadStatus(c echo.Context) error {
	ws := a.leadsWorkspace(c)
	if len(ws.Items()) == 0 {
		a.reloadLeads(c, ws)
	}
	id, _ := strconv.Atoi(c.Param("id"))
	status := backend.ParseLeadStatus(c.FormValue("status"))
	if err := ws.Transition(c.Request().Context(), a.backendFor(c), id, status); err != nil {
		a.log.Errorw("lead status", "id", id, "status", status, "error", err)
		toastError(c, userMessage(err, "Status update failed."))
	} else {
		toastSuccess(c, "Lead marked "+string(status)+".")
	}
	return c.Redirect(http.StatusSeeOther, leadsURL(ws))
}

func (a *App) handleLeadDelete(c echo.Context) error {
	ws := a.leadsWorkspace(c)
	id, _ := strconv.Atoi(c.Param("id"))
	if err := a.backendFor(c).Remove(c.Request().Context(), "leads", id); err != nil {
		a.log.Errorw("delete lead", "id", id, "error", err)
		toastError(c, userMessage(err, "Delete failed."))
	} else {
		ws.Deselect(id)
		toastSuccess(c, "Lead deleted.")
	}
	return c.Redirect(http.StatusSeeOther, leadsURL(ws))
}

// handleLeadsExport streams the current selection (or, with nothing
// selected, the visible rows) as a CSV download.
func (a *App) handleLeadsExport(c echo.Context) error {
	ws := a.leadsWorkspace(c)
	if len(ws.Items()) == 0 {
		a.reloadLeads(c, ws)
	}
	rows := ws.SelectedLeads()
	if len(rows) == 0 {
		rows = ws.Visible()
	}
	csv := leads.GenerateCSV(rows)
	filename := "leads_export_" + time.Now().Format("2006-01-02") + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}

// handleLeadShare redirects to a WhatsApp or mailto link carrying a
// formatted card for one lead.
func (a *App) handleLeadShare(c echo.Context) error {
	ws := a.leadsWorkspace(c)
	if len(ws.Items()) == 0 {
		a.reloadLeads(c, ws)
	}
	id, _ := strconv.Atoi(c.Param("id"))
	lead, ok := ws.Find(id)
	if !ok {
		toastError(c, "That lead no longer exists.")
		return c.Redirect(http.StatusSeeOther, leadsURL(ws))
	}
	text := leads.FormatLead(lead)
	if c.QueryParam("via") == "email" {
		return c.Redirect(http.StatusSeeOther, leads.MailtoLink("Lead: "+lead.Name, text))
	}
	return c.Redirect(http.StatusSeeOther, leads.WhatsAppLink(text))
}

// handleLeadsBulkShare shares a summary of the selected leads. The CSV
// itself cannot ride along in a share link, so the summary says to attach
// it manually.
func (a *App) handleLeadsBulkShare(c echo.Context) error {
	ws := a.leadsWorkspace(c)
	if len(ws.Items()) == 0 {
		a.reloadLeads(c, ws)
	}
	selected := ws.SelectedLeads()
	if len(selected) == 0 {
		toastError(c, "Select at least one lead to share.")
		return c.Redirect(http.StatusSeeOther, leadsURL(ws))
	}
	text := leads.FormatBulkSummary(selected)
	if c.QueryParam("via") == "email" {
		return c.Redirect(http.StatusSeeOther, leads.MailtoLink("Leads summary", text))
	}
	return c.Redirect(http.StatusSeeOther, leads.WhatsAppLink(text))
}
