package sitekit

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/xpertai/sitekit/backend"
)

// Public pages fetch their aggregate payload from the backend on every
// request and render straight from the response. There is no page-data
// caching or revalidation; navigation always re-fetches.

func (a *App) handleHome(c echo.Context) error {
	p, err := a.Backend.HomePage(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(a.Config, p))
}

func (a *App) handleAbout(c echo.Context) error {
	p, err := a.Backend.AboutPage(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.About(a.Config, p))
}

func (a *App) handleServices(c echo.Context) error {
	p, err := a.Backend.ServicesPage(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.Services(a.Config, p))
}

func (a *App) handleCareers(c echo.Context) error {
	p, err := a.Backend.CareersPage(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.Careers(a.Config, p, c.QueryParam("msg"), CsrfToken(c)))
}

func (a *App) handleContact(c echo.Context) error {
	p, err := a.Backend.ContactPage(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.Contact(a.Config, p, c.QueryParam("msg"), CsrfToken(c)))
}

func (a *App) handleResources(c echo.Context) error {
	p, err := a.Backend.ResourcesPage(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.Resources(a.Config, p))
}

func (a *App) handleSolutions(c echo.Context) error {
	p, err := a.Backend.SolutionsPage(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.Solutions(a.Config, p))
}

func (a *App) handleBlogIndex(c echo.Context) error {
	posts, err := a.Backend.PublishedPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.BlogIndex(a.Config, posts))
}

func (a *App) handleBlogPost(c echo.Context) error {
	slug := c.Param("slug")
	post, posts, err := a.Backend.BlogPostBySlug(c.Request().Context(), slug)
	if err != nil {
		if backend.IsNotFound(err) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
		}
		return err
	}
	related := make([]backend.BlogPost, 0, 3)
	for _, p := range posts {
		if p.Slug != post.Slug && p.Category == post.Category {
			related = append(related, p)
			if len(related) == 3 {
				break
			}
		}
	}
	return Render(c, a.Views.BlogPost(a.Config, post, related))
}

// contactForm is the public contact form's required surface. Anything
// beyond these checks is the backend's responsibility.
type contactForm struct {
	Name    string `validate:"required"`
	Email   string `validate:"required,email"`
	Message string `validate:"required"`
}

func (a *App) handleContactSubmit(c echo.Context) error {
	form := contactForm{
		Name:    c.FormValue("name"),
		Email:   c.FormValue("email"),
		Message: c.FormValue("message"),
	}
	if err := validator.New().Struct(&form); err != nil {
		return c.Redirect(http.StatusSeeOther, "/contact/?msg=Please+fill+in+name,+email,+and+message.")
	}

	values, _ := c.FormParams()
	lead := backend.NewForm().
		Set("name", form.Name).
		Set("email", form.Email).
		Set("phone", c.FormValue("phone")).
		Set("company", c.FormValue("company")).
		Set("service", c.FormValue("service")).
		SetList("sub_services", values["sub_services"]).
		Set("timeline", c.FormValue("timeline")).
		Set("message", form.Message).
		Set("source", string(backend.SourceWebsite)).
		Set("status", string(backend.LeadNew))
	if err := a.Backend.Create(c.Request().Context(), "leads", lead, nil); err != nil {
		a.log.Errorw("lead create failed", "err", err)
		return c.Redirect(http.StatusSeeOther, "/contact/?msg=Something+went+wrong.+Please+try+again.")
	}
	metricLeadSubmissions.Inc()
	return c.Redirect(http.StatusSeeOther, "/contact/?msg=Thanks!+We+will+be+in+touch+shortly.")
}

func (a *App) handleSupportSubmit(c echo.Context) error {
	if c.FormValue("name") == "" || c.FormValue("email") == "" || c.FormValue("description") == "" {
		return c.Redirect(http.StatusSeeOther, "/contact/?msg=Please+fill+in+all+required+fields.")
	}
	ticket := backend.NewForm().
		Set("name", c.FormValue("name")).
		Set("email", c.FormValue("email")).
		Set("subject", c.FormValue("subject")).
		Set("priority", defaultString(c.FormValue("priority"), "medium")).
		Set("description", c.FormValue("description")).
		Set("status", string(backend.TicketOpen))
	if err := a.Backend.Create(c.Request().Context(), "support_tickets", ticket, nil); err != nil {
		a.log.Errorw("ticket create failed", "err", err)
		return c.Redirect(http.StatusSeeOther, "/contact/?msg=Something+went+wrong.+Please+try+again.")
	}
	metricTicketSubmissions.Inc()
	return c.Redirect(http.StatusSeeOther, "/contact/?msg=Support+request+received.")
}

func (a *App) handleApplicationSubmit(c echo.Context) error {
	if c.FormValue("applicant_name") == "" || c.FormValue("email") == "" {
		return c.Redirect(http.StatusSeeOther, "/careers/?msg=Name+and+email+are+required.")
	}
	form := backend.NewForm().
		Set("applicant_name", c.FormValue("applicant_name")).
		Set("email", c.FormValue("email")).
		Set("phone", c.FormValue("phone")).
		Set("linkedin_url", c.FormValue("linkedin_url")).
		Set("resume_link", c.FormValue("resume_link")).
		Set("cover_letter", c.FormValue("cover_letter")).
		Set("referral_source", c.FormValue("referral_source")).
		Set("job", c.FormValue("job"))
	if fh, err := c.FormFile("resume_file"); err == nil {
		src, err := fh.Open()
		if err != nil {
			return err
		}
		defer src.Close()
		form.AddFile("resume_file", fh.Filename, src)
	}
	if err := a.Backend.Create(c.Request().Context(), "job_applications", form, nil); err != nil {
		a.log.Errorw("application create failed", "err", err)
		return c.Redirect(http.StatusSeeOther, "/careers/?msg=Something+went+wrong.+Please+try+again.")
	}
	metricApplicationSubmissions.Inc()
	return c.Redirect(http.StatusSeeOther, "/careers/?msg=Application+received.+Thank+you!")
}

func (a *App) handleSubscribe(c echo.Context) error {
	email := c.FormValue("email")
	if email == "" {
		return c.Redirect(http.StatusSeeOther, "/?msg=Email+is+required.")
	}
	form := backend.NewForm().Set("email", email)
	if err := a.Backend.Create(c.Request().Context(), "subscribers", form, nil); err != nil {
		a.log.Errorw("subscribe failed", "err", err)
		return c.Redirect(http.StatusSeeOther, "/?msg=Subscription+failed.+Please+try+again.")
	}
	metricSubscriptions.Inc()
	return c.Redirect(http.StatusSeeOther, "/?msg=Subscribed!")
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.feed.PublishedPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.feed.PublishedPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.log.Errorw("server error", "uri", c.Request().RequestURI, "err", err)
		_ = RenderStatus(c, code, a.Views.ServerError(a.Config))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
