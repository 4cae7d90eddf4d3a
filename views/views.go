// Package views ships the default templ components for every sitekit
// screen. Applications with their own design system replace any subset of
// these through sitekit.ViewFuncs; the defaults render clean semantic HTML
// with no styling assumptions beyond a handful of class hooks.
package views

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/xpertai/sitekit"
)

// Default returns a complete ViewFuncs with every screen implemented.
func Default() sitekit.ViewFuncs {
	return sitekit.ViewFuncs{
		Home:      HomePage,
		About:     AboutPage,
		Services:  ServicesPage,
		Careers:   CareersPage,
		Contact:   ContactPage,
		Resources: ResourcesPage,
		Solutions: SolutionsPage,
		BlogIndex: BlogIndexPage,
		BlogPost:  BlogPostPage,

		AdminLogin: AdminLoginPage,
		AdminSetup: AdminSetupPage,

		AdminDashboard:    AdminDashboardPage,
		AdminSingleton:    AdminSingletonPage,
		AdminList:         AdminListPage,
		AdminLeads:        AdminLeadsPage,
		AdminBlog:         AdminBlogPage,
		AdminSubscribers:  AdminSubscribersPage,
		AdminTickets:      AdminTicketsPage,
		AdminApplications: AdminApplicationsPage,
		AdminProfile:      AdminProfilePage,

		NotFound:    NotFoundPage,
		ServerError: ServerErrorPage,
	}
}

func esc(s string) string { return html.EscapeString(s) }

// component wraps a buffered body writer in a templ.Component.
func component(body func(*bytes.Buffer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		body(&buf)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// layout writes the shared document shell with the site-wide default
// metadata. Public pages carry the analytics beacon; admin pages carry the
// console helpers instead. csrf is needed on admin pages for the logout form
// in the chrome.
func layout(cfg sitekit.Config, title string, admin bool, csrf string, body func(*bytes.Buffer)) templ.Component {
	m := sitekit.PageMeta{Title: title, Description: cfg.Description, OGType: "website"}
	return shell(cfg, m, admin, csrf, body)
}

// layoutMeta is layout with per-page metadata, for public pages that carry
// their own description and canonical URL.
func layoutMeta(cfg sitekit.Config, m sitekit.PageMeta, body func(*bytes.Buffer)) templ.Component {
	return shell(cfg, m, false, "", body)
}

func shell(cfg sitekit.Config, m sitekit.PageMeta, admin bool, csrf string, body func(*bytes.Buffer)) templ.Component {
	return component(func(b *bytes.Buffer) {
		b.WriteString("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\">")
		b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
		fmt.Fprintf(b, "<title>%s | %s</title>", esc(m.Title), esc(cfg.Name))
		if !admin {
			if m.Description != "" {
				fmt.Fprintf(b, "<meta name=\"description\" content=\"%s\">", esc(m.Description))
				fmt.Fprintf(b, "<meta property=\"og:description\" content=\"%s\">", esc(m.Description))
			}
			fmt.Fprintf(b, "<meta property=\"og:title\" content=\"%s\">", esc(m.Title))
			fmt.Fprintf(b, "<meta property=\"og:type\" content=\"%s\">", esc(m.OGType))
			if m.URL != "" {
				fmt.Fprintf(b, "<meta property=\"og:url\" content=\"%s\">", esc(m.URL))
				fmt.Fprintf(b, "<link rel=\"canonical\" href=\"%s\">", esc(m.URL))
			}
		}
		b.WriteString("<link rel=\"stylesheet\" href=\"/public/site.css\">")
		b.WriteString("</head><body>")
		if admin {
			adminNav(b, csrf)
		} else {
			publicNav(b, cfg)
		}
		b.WriteString("<main>")
		body(b)
		b.WriteString("</main>")
		if admin {
			b.WriteString("<script src=\"/public/admin.js\" defer></script>")
		} else {
			publicFooter(b, cfg)
			b.WriteString("<script src=\"/public/analytics.js\" defer></script>")
		}
		b.WriteString("</body></html>")
	})
}

func publicNav(b *bytes.Buffer, cfg sitekit.Config) {
	b.WriteString("<header class=\"site-header\"><nav>")
	fmt.Fprintf(b, "<a class=\"brand\" href=\"/\">%s</a>", esc(cfg.Name))
	for _, link := range [][2]string{
		{"/about/", "About"},
		{"/services/", "Services"},
		{"/solutions/", "Solutions"},
		{"/resources/", "Resources"},
		{"/blog/", "Blog"},
		{"/careers/", "Careers"},
		{"/contact/", "Contact"},
	} {
		fmt.Fprintf(b, "<a href=\"%s\">%s</a>", link[0], link[1])
	}
	b.WriteString("</nav></header>")
}

func publicFooter(b *bytes.Buffer, cfg sitekit.Config) {
	b.WriteString("<footer class=\"site-footer\">")
	fmt.Fprintf(b, "<p>%s</p>", esc(cfg.Name))
	b.WriteString("<form method=\"post\" action=\"/subscribe/\" class=\"subscribe-form\">")
	b.WriteString("<input type=\"email\" name=\"email\" placeholder=\"Your email\" required>")
	b.WriteString("<button type=\"submit\">Subscribe</button></form>")
	b.WriteString("</footer>")
}

func adminNav(b *bytes.Buffer, csrf string) {
	b.WriteString("<header class=\"admin-header\"><nav>")
	for _, link := range [][2]string{
		{"/admin/dashboard/", "Dashboard"},
		{"/admin/leads/", "Leads"},
		{"/admin/blog/", "Blog"},
		{"/admin/subscribers/", "Subscribers"},
		{"/admin/tickets/", "Tickets"},
		{"/admin/applications/", "Applications"},
		{"/admin/profile/", "Profile"},
	} {
		fmt.Fprintf(b, "<a href=\"%s\">%s</a>", link[0], link[1])
	}
	b.WriteString("</nav>")
	b.WriteString("<form method=\"post\" action=\"/admin/logout/\">")
	csrfInput(b, csrf)
	b.WriteString("<button type=\"submit\">Log out</button></form>")
	b.WriteString("</header>")
}

func writeToasts(b *bytes.Buffer, toasts []sitekit.Toast) {
	if len(toasts) == 0 {
		return
	}
	b.WriteString("<div class=\"toasts\">")
	for _, t := range toasts {
		fmt.Fprintf(b, "<div class=\"toast toast-%s\">%s</div>", esc(t.Kind), esc(t.Text))
	}
	b.WriteString("</div>")
}

func csrfInput(b *bytes.Buffer, csrf string) {
	fmt.Fprintf(b, "<input type=\"hidden\" name=\"_csrf\" value=\"%s\">", esc(csrf))
}

// chatWidget writes the markup the chat script hydrates.
func chatWidget(b *bytes.Buffer) {
	b.WriteString("<div id=\"chat-widget\" class=\"chat-widget\">")
	b.WriteString("<div data-chat-log class=\"chat-log\"></div>")
	b.WriteString("<form data-chat-form class=\"chat-form\">")
	b.WriteString("<input data-chat-input type=\"text\" placeholder=\"Type your answer\" autocomplete=\"off\">")
	b.WriteString("<button type=\"submit\">Send</button></form>")
	b.WriteString("<button data-chat-restart type=\"button\" class=\"chat-restart\">Restart</button>")
	b.WriteString("</div><script src=\"/public/chat.js\" defer></script>")
}
