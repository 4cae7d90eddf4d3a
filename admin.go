package sitekit

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xpertai/sitekit/backend"
	"github.com/xpertai/sitekit/listman"
)

// managerRegistry holds one listman.Manager per admin session and list, so
// two admins editing the same list never share add/edit state. Entries are
// dropped on logout and evicted after the TTL, so sessions that expire
// without logging out do not leak theirs.
type managerRegistry struct {
	mu       sync.Mutex
	managers map[managerKey]*managerEntry
	ttl      time.Duration
}

type managerKey struct {
	token string
	list  string
}

type managerEntry struct {
	manager *listman.Manager
	seen    time.Time
}

func newManagerRegistry(ttl time.Duration) *managerRegistry {
	r := &managerRegistry{
		managers: make(map[managerKey]*managerEntry),
		ttl:      ttl,
	}
	go r.cleanup()
	return r
}

func (r *managerRegistry) cleanup() {
	ticker := time.NewTicker(r.ttl)
	for range ticker.C {
		r.evictIdle(time.Now().Add(-r.ttl))
	}
}

func (r *managerRegistry) evictIdle(cutoff time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, e := range r.managers {
		if e.seen.Before(cutoff) {
			delete(r.managers, key)
		}
	}
}

func (r *managerRegistry) get(token string, def listman.Definition) *listman.Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := managerKey{token: token, list: def.Name}
	e, ok := r.managers[key]
	if !ok {
		e = &managerEntry{manager: listman.New(def)}
		r.managers[key] = e
	}
	e.seen = time.Now()
	return e.manager
}

func (r *managerRegistry) drop(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.managers {
		if key.token == token {
			delete(r.managers, key)
		}
	}
}

func (a *App) handleDashboard(c echo.Context) error {
	stats, err := a.backendFor(c).Stats(c.Request().Context())
	if err != nil {
		a.log.Errorw("dashboard stats", "error", err)
		toastError(c, userMessage(err, "Could not load dashboard stats."))
	}
	return Render(c, a.Views.AdminDashboard(a.Config, stats, popToasts(c), CsrfToken(c)))
}

// Singleton page-content sections. The resource path nests the content
// record under its page.
var singletonSections = map[string]bool{
	"home":      true,
	"about":     true,
	"services":  true,
	"careers":   true,
	"contact":   true,
	"resources": true,
	"solutions": true,
}

func singletonResource(section string) string {
	return section + "_page/content"
}

func (a *App) handleSingleton(c echo.Context) error {
	section := c.Param("section")
	if !singletonSections[section] {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	var content backend.PageContent
	if err := a.backendFor(c).GetOne(c.Request().Context(), singletonResource(section), &content); err != nil {
		a.log.Errorw("load page content", "section", section, "error", err)
		toastError(c, userMessage(err, "Could not load page content."))
	}
	return Render(c, a.Views.AdminSingleton(a.Config, section, content, popToasts(c), CsrfToken(c)))
}

func (a *App) handleSingletonSave(c echo.Context) error {
	section := c.Param("section")
	if !singletonSections[section] {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	ctx := c.Request().Context()
	client := a.backendFor(c)

	var current backend.PageContent
	if err := client.GetOne(ctx, singletonResource(section), &current); err != nil {
		a.log.Errorw("load page content before save", "section", section, "error", err)
		toastError(c, userMessage(err, "Could not load page content."))
		return c.Redirect(http.StatusSeeOther, "/admin/content/"+section+"/")
	}

	form := backend.NewForm().
		Set("title", c.FormValue("title")).
		Set("subtitle", c.FormValue("subtitle")).
		Set("hero_title", c.FormValue("hero_title")).
		Set("hero_subtitle", c.FormValue("hero_subtitle")).
		Set("description", c.FormValue("description")).
		Set("cta_text", c.FormValue("cta_text")).
		Set("cta_link", c.FormValue("cta_link"))

	if fh, err := c.FormFile("image"); err == nil && fh.Filename != "" {
		src, oerr := fh.Open()
		if oerr != nil {
			return oerr
		}
		name, data, perr := processImage(src, fh.Filename)
		src.Close()
		if perr != nil {
			toastError(c, "Image upload failed: "+perr.Error())
			return c.Redirect(http.StatusSeeOther, "/admin/content/"+section+"/")
		}
		form.AddFile("image", name, bytes.NewReader(data))
	}

	if err := client.Update(ctx, singletonResource(section), current.ResolveID(), form, nil); err != nil {
		a.log.Errorw("save page content", "section", section, "error", err)
		toastError(c, userMessage(err, "Save failed."))
	} else {
		toastSuccess(c, "Content saved.")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/content/"+section+"/")
}

func (a *App) listManager(c echo.Context) (*listman.Manager, error) {
	name := c.Param("name")
	def, ok := listman.Get(name)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound)
	}
	sess, _ := adminSessionFrom(c)
	return a.managers.get(sess.Token, def), nil
}

func (a *App) renderList(c echo.Context, m *listman.Manager, reload bool) error {
	def := m.Definition()
	if reload {
		var items []backend.ContentItem
		if err := a.backendFor(c).List(c.Request().Context(), def.Resource, &items); err != nil {
			a.log.Errorw("load list", "list", def.Name, "error", err)
			toastError(c, userMessage(err, "Could not load "+def.Title+"."))
		} else {
			m.SetItems(items)
		}
	}
	lv := ListView{
		Def:    def,
		Items:  m.Items(),
		Mode:   m.Mode(),
		Values: m.FormValues(),
	}
	if it, ok := m.Editing(); ok {
		lv.EditingID = it.ID
	}
	return Render(c, a.Views.AdminList(a.Config, lv, popToasts(c), CsrfToken(c)))
}

func (a *App) handleList(c echo.Context) error {
	m, err := a.listManager(c)
	if err != nil {
		return err
	}
	return a.renderList(c, m, true)
}

func (a *App) handleListAdd(c echo.Context) error {
	m, err := a.listManager(c)
	if err != nil {
		return err
	}
	m.StartAdd()
	return c.Redirect(http.StatusSeeOther, "/admin/lists/"+m.Definition().Name+"/")
}

func (a *App) handleListEdit(c echo.Context) error {
	m, err := a.listManager(c)
	if err != nil {
		return err
	}
	id, _ := strconv.Atoi(c.Param("id"))
	if !m.StartEdit(id) {
		toastError(c, "That item no longer exists.")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/lists/"+m.Definition().Name+"/")
}

func (a *App) handleListCancel(c echo.Context) error {
	m, err := a.listManager(c)
	if err != nil {
		return err
	}
	m.Cancel()
	return c.Redirect(http.StatusSeeOther, "/admin/lists/"+m.Definition().Name+"/")
}

func (a *App) handleListSave(c echo.Context) error {
	m, err := a.listManager(c)
	if err != nil {
		return err
	}
	def := m.Definition()
	redirect := "/admin/lists/" + def.Name + "/"

	posted, err := c.FormParams()
	if err != nil {
		return err
	}
	if missing := m.Missing(posted); len(missing) > 0 {
		toastError(c, "Missing required fields: "+strings.Join(missing, ", "))
		return c.Redirect(http.StatusSeeOther, redirect)
	}
	uploads, err := formUploads(c, def.Fields)
	if err != nil {
		toastError(c, "Upload failed: "+err.Error())
		return c.Redirect(http.StatusSeeOther, redirect)
	}

	if err := m.Save(c.Request().Context(), a.backendFor(c), posted, uploads); err != nil {
		a.log.Errorw("save list item", "list", def.Name, "error", err)
		toastError(c, userMessage(err, "Save failed."))
	} else {
		toastSuccess(c, def.Singular+" saved.")
	}
	return c.Redirect(http.StatusSeeOther, redirect)
}

func (a *App) handleListDelete(c echo.Context) error {
	m, err := a.listManager(c)
	if err != nil {
		return err
	}
	def := m.Definition()
	id, _ := strconv.Atoi(c.Param("id"))
	if err := m.Delete(c.Request().Context(), a.backendFor(c), id); err != nil {
		a.log.Errorw("delete list item", "list", def.Name, "id", id, "error", err)
		toastError(c, userMessage(err, "Delete failed."))
	} else {
		toastSuccess(c, def.Singular+" deleted.")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/lists/"+def.Name+"/")
}

// Blog editor. Blog posts have a richer shape than generic content items, so
// they do not go through listman; the editor state lives in the session-less
// request cycle instead (add/edit selection travels in the query).

func (a *App) handleAdminBlog(c echo.Context) error {
	posts, err := a.backendFor(c).BlogPosts(c.Request().Context())
	if err != nil {
		a.log.Errorw("load blog posts", "error", err)
		toastError(c, userMessage(err, "Could not load blog posts."))
	}
	adding := c.QueryParam("mode") == "add"
	var editing *backend.BlogPost
	if idStr := c.QueryParam("edit"); idStr != "" && !adding {
		if id, err := strconv.Atoi(idStr); err == nil {
			for i := range posts {
				if posts[i].ID == id {
					editing = &posts[i]
					break
				}
			}
		}
	}
	return Render(c, a.Views.AdminBlog(a.Config, posts, editing, adding, popToasts(c), CsrfToken(c)))
}

func (a *App) handleAdminBlogAdd(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/admin/blog/?mode=add")
}

func (a *App) handleAdminBlogEdit(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/admin/blog/?edit="+c.Param("id"))
}

func (a *App) handleAdminBlogCancel(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/admin/blog/")
}

func (a *App) handleAdminBlogSave(c echo.Context) error {
	ctx := c.Request().Context()
	client := a.backendFor(c)

	title := c.FormValue("title")
	if title == "" {
		toastError(c, "Title is required.")
		return c.Redirect(http.StatusSeeOther, "/admin/blog/")
	}
	slug := c.FormValue("slug")
	if slug == "" {
		slug = Slugify(title)
	}

	form := backend.NewForm().
		Set("title", title).
		Set("slug", slug).
		Set("short_description", c.FormValue("short_description")).
		Set("body", c.FormValue("body")).
		Set("category", c.FormValue("category")).
		SetBool("published", c.FormValue("published") != "")

	if fh, err := c.FormFile("image"); err == nil && fh.Filename != "" {
		src, oerr := fh.Open()
		if oerr != nil {
			return oerr
		}
		name, data, perr := processImage(src, fh.Filename)
		src.Close()
		if perr != nil {
			toastError(c, "Image upload failed: "+perr.Error())
			return c.Redirect(http.StatusSeeOther, "/admin/blog/")
		}
		form.AddFile("image", name, bytes.NewReader(data))
	}

	id, _ := strconv.Atoi(c.FormValue("id"))
	var err error
	if id > 0 {
		err = client.Update(ctx, "blog_posts", id, form, nil)
	} else {
		err = client.Create(ctx, "blog_posts", form, nil)
	}
	if err != nil {
		a.log.Errorw("save blog post", "id", id, "error", err)
		toastError(c, userMessage(err, "Save failed."))
	} else {
		toastSuccess(c, "Post saved.")
		a.feed.Invalidate()
	}
	return c.Redirect(http.StatusSeeOther, "/admin/blog/")
}

func (a *App) handleAdminBlogDelete(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	if err := a.backendFor(c).Remove(c.Request().Context(), "blog_posts", id); err != nil {
		a.log.Errorw("delete blog post", "id", id, "error", err)
		toastError(c, userMessage(err, "Delete failed."))
	} else {
		toastSuccess(c, "Post deleted.")
		a.feed.Invalidate()
	}
	return c.Redirect(http.StatusSeeOther, "/admin/blog/")
}

func (a *App) handleSubscribers(c echo.Context) error {
	ctx := c.Request().Context()
	client := a.backendFor(c)
	var subs []backend.Subscriber
	if err := client.List(ctx, "subscribers", &subs); err != nil {
		a.log.Errorw("load subscribers", "error", err)
		toastError(c, userMessage(err, "Could not load subscribers."))
	}
	var templates []backend.EmailTemplate
	if err := client.List(ctx, "email_templates", &templates); err != nil {
		a.log.Errorw("load email templates", "error", err)
	}
	return Render(c, a.Views.AdminSubscribers(a.Config, subs, templates, popToasts(c), CsrfToken(c)))
}

func (a *App) handleSubscriberDelete(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	if err := a.backendFor(c).Remove(c.Request().Context(), "subscribers", id); err != nil {
		a.log.Errorw("delete subscriber", "id", id, "error", err)
		toastError(c, userMessage(err, "Delete failed."))
	} else {
		toastSuccess(c, "Subscriber removed.")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/subscribers/")
}

func (a *App) handleTickets(c echo.Context) error {
	var tickets []backend.SupportTicket
	if err := a.backendFor(c).List(c.Request().Context(), "support_tickets", &tickets); err != nil {
		a.log.Errorw("load tickets", "error", err)
		toastError(c, userMessage(err, "Could not load support tickets."))
	}
	return Render(c, a.Views.AdminTickets(a.Config, tickets, popToasts(c), CsrfToken(c)))
}

func (a *App) handleTicketStatus(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	status := backend.TicketStatus(c.FormValue("status"))
	switch status {
	case backend.TicketOpen, backend.TicketInProgress, backend.TicketResolved:
	default:
		toastError(c, "Unknown ticket status.")
		return c.Redirect(http.StatusSeeOther, "/admin/tickets/")
	}
	if err := a.backendFor(c).UpdateTicketStatus(c.Request().Context(), id, status); err != nil {
		a.log.Errorw("update ticket status", "id", id, "status", status, "error", err)
		toastError(c, userMessage(err, "Status update failed."))
	} else {
		toastSuccess(c, "Ticket updated.")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/tickets/")
}

func (a *App) handleApplications(c echo.Context) error {
	client := a.backendFor(c)
	var apps []backend.JobApplication
	if err := client.List(c.Request().Context(), "job_applications", &apps); err != nil {
		a.log.Errorw("load applications", "error", err)
		toastError(c, userMessage(err, "Could not load applications."))
	}
	exports := ApplicationExports{
		AllCSVURL:     client.ApplicationsCSVURL(),
		ResumesZipURL: client.ResumesZipURL(),
		PerAppURL:     client.ApplicationCSVURL,
	}
	return Render(c, a.Views.AdminApplications(a.Config, apps, exports, popToasts(c), CsrfToken(c)))
}

func (a *App) handleApplicationShare(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	recipient := c.FormValue("recipient")
	if recipient == "" {
		toastError(c, "Recipient email is required.")
		return c.Redirect(http.StatusSeeOther, "/admin/applications/")
	}
	if err := a.backendFor(c).ShareApplicationByEmail(c.Request().Context(), id, recipient); err != nil {
		a.log.Errorw("share application", "id", id, "error", err)
		toastError(c, userMessage(err, "Share failed."))
	} else {
		toastSuccess(c, "Application sent to "+recipient+".")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/applications/")
}

func (a *App) handleProfile(c echo.Context) error {
	var profile backend.Profile
	if err := a.backendFor(c).GetOne(c.Request().Context(), "profile", &profile); err != nil {
		a.log.Errorw("load profile", "error", err)
		toastError(c, userMessage(err, "Could not load profile."))
	}
	return Render(c, a.Views.AdminProfile(a.Config, profile, popToasts(c), CsrfToken(c)))
}

func (a *App) handleProfileSave(c echo.Context) error {
	ctx := c.Request().Context()
	client := a.backendFor(c)

	password := c.FormValue("password")
	if password != c.FormValue("confirm_password") {
		toastError(c, "Passwords do not match.")
		return c.Redirect(http.StatusSeeOther, "/admin/profile/")
	}

	var current backend.Profile
	if err := client.GetOne(ctx, "profile", &current); err != nil {
		toastError(c, userMessage(err, "Could not load profile."))
		return c.Redirect(http.StatusSeeOther, "/admin/profile/")
	}

	form := backend.NewForm().
		Set("username", defaultString(c.FormValue("username"), current.Username)).
		Set("email", defaultString(c.FormValue("email"), current.Email)).
		Set("first_name", c.FormValue("first_name")).
		Set("last_name", c.FormValue("last_name")).
		Set("linkedin_url", c.FormValue("linkedin_url")).
		Set("twitter_url", c.FormValue("twitter_url"))
	if password != "" {
		form.Set("password", password)
	}

	if fh, err := c.FormFile("profile_image"); err == nil && fh.Filename != "" {
		src, oerr := fh.Open()
		if oerr != nil {
			return oerr
		}
		name, data, perr := processImage(src, fh.Filename)
		src.Close()
		if perr != nil {
			toastError(c, "Image upload failed: "+perr.Error())
			return c.Redirect(http.StatusSeeOther, "/admin/profile/")
		}
		form.AddFile("profile_image", name, bytes.NewReader(data))
	}

	if err := client.Update(ctx, "profile", current.ID, form, nil); err != nil {
		a.log.Errorw("save profile", "error", err)
		toastError(c, userMessage(err, "Save failed."))
	} else {
		toastSuccess(c, "Profile saved.")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/profile/")
}
