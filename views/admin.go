package views

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/xpertai/sitekit"
	"github.com/xpertai/sitekit/backend"
	"github.com/xpertai/sitekit/leads"
	"github.com/xpertai/sitekit/listman"
)

func AdminLoginPage(cfg sitekit.Config, username, errMsg, csrf string) templ.Component {
	return layout(cfg, "Admin Login", true, csrf, func(b *bytes.Buffer) {
		b.WriteString("<section class=\"auth\"><h1>Sign in</h1>")
		if errMsg != "" {
			fmt.Fprintf(b, "<p class=\"error\">%s</p>", esc(errMsg))
		}
		b.WriteString("<form method=\"post\" action=\"/admin/login/\">")
		csrfInput(b, csrf)
		fmt.Fprintf(b, "<input type=\"text\" name=\"username\" value=\"%s\" placeholder=\"Username\" required>", esc(username))
		b.WriteString("<input type=\"password\" name=\"password\" placeholder=\"Password\" required>")
		b.WriteString("<button type=\"submit\">Sign in</button>")
		b.WriteString("</form></section>")
	})
}

func AdminSetupPage(cfg sitekit.Config, errMsg, csrf string) templ.Component {
	return layout(cfg, "First-Run Setup", true, csrf, func(b *bytes.Buffer) {
		b.WriteString("<section class=\"auth\"><h1>Create the admin account</h1>")
		if errMsg != "" {
			fmt.Fprintf(b, "<p class=\"error\">%s</p>", esc(errMsg))
		}
		b.WriteString("<form method=\"post\" action=\"/admin/setup/\">")
		csrfInput(b, csrf)
		b.WriteString("<input type=\"text\" name=\"username\" placeholder=\"Username\" required>")
		b.WriteString("<input type=\"email\" name=\"email\" placeholder=\"Email\" required>")
		b.WriteString("<input type=\"password\" name=\"password\" placeholder=\"Password (min 8 characters)\" required>")
		b.WriteString("<input type=\"password\" name=\"confirm_password\" placeholder=\"Confirm password\" required>")
		b.WriteString("<button type=\"submit\">Create account</button>")
		b.WriteString("</form></section>")
	})
}

// contentNav lists the singleton sections and every registered list so the
// console sidebar always matches the embedded definitions.
func contentNav(b *bytes.Buffer) {
	b.WriteString("<aside class=\"content-nav\"><h2>Content</h2><ul>")
	for _, s := range []string{"home", "about", "services", "careers", "contact", "resources", "solutions"} {
		fmt.Fprintf(b, "<li><a href=\"/admin/content/%s/\">%s page</a></li>", s, esc(s))
	}
	if defs, err := listman.Definitions(); err == nil {
		for _, d := range defs {
			fmt.Fprintf(b, "<li><a href=\"/admin/lists/%s/\">%s</a></li>", esc(d.Name), esc(d.Title))
		}
	}
	b.WriteString("</ul></aside>")
}

func AdminDashboardPage(cfg sitekit.Config, stats backend.DashboardStats, toasts []sitekit.Toast, csrf string) templ.Component {
	return layout(cfg, "Dashboard", true, csrf, func(b *bytes.Buffer) {
		writeToasts(b, toasts)
		b.WriteString("<section class=\"dashboard\"><h1>Dashboard</h1><ul class=\"stat-grid\">")
		for _, s := range []struct {
			label string
			value int
		}{
			{"Leads", stats.Leads},
			{"New leads", stats.NewLeads},
			{"Subscribers", stats.Subscribers},
			{"Blog posts", stats.Posts},
			{"Open tickets", stats.Tickets},
			{"Applications", stats.Applications},
		} {
			fmt.Fprintf(b, "<li><span class=\"stat-value\">%d</span><span class=\"stat-label\">%s</span></li>", s.value, esc(s.label))
		}
		b.WriteString("</ul></section>")
		contentNav(b)
	})
}

func AdminSingletonPage(cfg sitekit.Config, section string, content backend.PageContent, toasts []sitekit.Toast, csrf string) templ.Component {
	return layout(cfg, section+" page", true, csrf, func(b *bytes.Buffer) {
		writeToasts(b, toasts)
		contentNav(b)
		fmt.Fprintf(b, "<section class=\"editor\"><h1>%s page</h1>", esc(section))
		fmt.Fprintf(b, "<form method=\"post\" action=\"/admin/content/%s/\" enctype=\"multipart/form-data\">", esc(section))
		csrfInput(b, csrf)
		for _, f := range []struct{ name, label, value string }{
			{"title", "Title", content.Title},
			{"subtitle", "Subtitle", content.Subtitle},
			{"hero_title", "Hero title", content.HeroTitle},
			{"hero_subtitle", "Hero subtitle", content.HeroSubtitle},
			{"cta_text", "CTA text", content.CTAText},
			{"cta_link", "CTA link", content.CTALink},
		} {
			fmt.Fprintf(b, "<label>%s<input type=\"text\" name=\"%s\" value=\"%s\"></label>",
				esc(f.label), f.name, esc(f.value))
		}
		fmt.Fprintf(b, "<label>Description<textarea name=\"description\">%s</textarea></label>", esc(content.Description))
		if content.Image != "" {
			fmt.Fprintf(b, "<p>Current image: %s</p>", esc(content.Image))
		}
		b.WriteString("<label>Image<input type=\"file\" name=\"image\" accept=\"image/*\"></label>")
		b.WriteString("<button type=\"submit\">Save</button>")
		b.WriteString("</form></section>")
	})
}

func fieldInput(b *bytes.Buffer, f listman.Field, value string) {
	required := ""
	if f.Required {
		required = " required"
	}
	fmt.Fprintf(b, "<label>%s", esc(f.Label))
	switch f.Kind {
	case listman.Textarea:
		fmt.Fprintf(b, "<textarea name=\"%s\"%s>%s</textarea>", esc(f.Name), required, esc(value))
	case listman.Select:
		fmt.Fprintf(b, "<select name=\"%s\"%s>", esc(f.Name), required)
		for _, opt := range f.Options {
			selected := ""
			if opt == value {
				selected = " selected"
			}
			fmt.Fprintf(b, "<option%s>%s</option>", selected, esc(opt))
		}
		b.WriteString("</select>")
	case listman.Number:
		fmt.Fprintf(b, "<input type=\"number\" name=\"%s\" value=\"%s\"%s>", esc(f.Name), esc(value), required)
	case listman.Checkbox:
		checked := ""
		if value != "" && value != "False" {
			checked = " checked"
		}
		fmt.Fprintf(b, "<input type=\"checkbox\" name=\"%s\"%s>", esc(f.Name), checked)
	case listman.File:
		if value != "" {
			fmt.Fprintf(b, "<span class=\"current-file\">%s</span>", esc(value))
		}
		fmt.Fprintf(b, "<input type=\"file\" name=\"%s\">", esc(f.Name))
	default:
		fmt.Fprintf(b, "<input type=\"text\" name=\"%s\" value=\"%s\"%s>", esc(f.Name), esc(value), required)
	}
	b.WriteString("</label>")
}

func AdminListPage(cfg sitekit.Config, lv sitekit.ListView, toasts []sitekit.Toast, csrf string) templ.Component {
	return layout(cfg, lv.Def.Title, true, csrf, func(b *bytes.Buffer) {
		writeToasts(b, toasts)
		contentNav(b)
		base := "/admin/lists/" + lv.Def.Name
		fmt.Fprintf(b, "<section class=\"list-admin\"><h1>%s</h1>", esc(lv.Def.Title))

		if lv.Mode == listman.Viewing {
			fmt.Fprintf(b, "<form method=\"post\" action=\"%s/add/\">", base)
			csrfInput(b, csrf)
			fmt.Fprintf(b, "<button type=\"submit\">Add %s</button></form>", esc(lv.Def.Singular))
		} else {
			heading := "Add " + lv.Def.Singular
			if lv.Mode == listman.Editing {
				heading = "Edit " + lv.Def.Singular
			}
			fmt.Fprintf(b, "<h2>%s</h2>", esc(heading))
			fmt.Fprintf(b, "<form method=\"post\" action=\"%s/save/\" enctype=\"multipart/form-data\">", base)
			csrfInput(b, csrf)
			for _, f := range lv.Def.Fields {
				fieldInput(b, f, lv.Values[f.Name])
			}
			b.WriteString("<button type=\"submit\">Save</button></form>")
			fmt.Fprintf(b, "<form method=\"post\" action=\"%s/cancel/\">", base)
			csrfInput(b, csrf)
			b.WriteString("<button type=\"submit\">Cancel</button></form>")
		}

		b.WriteString("<table class=\"item-table\"><tbody>")
		for _, it := range lv.Items {
			b.WriteString("<tr>")
			fmt.Fprintf(b, "<td>%s</td>", esc(it.DisplayName()))
			b.WriteString("<td>")
			fmt.Fprintf(b, "<form method=\"post\" action=\"%s/edit/%d/\" class=\"inline\">", base, it.ID)
			csrfInput(b, csrf)
			b.WriteString("<button type=\"submit\">Edit</button></form>")
			fmt.Fprintf(b, "<form method=\"post\" action=\"%s/delete/%d/\" class=\"inline\" data-confirm=\"Delete this %s?\">", base, it.ID, esc(lv.Def.Singular))
			csrfInput(b, csrf)
			b.WriteString("<button type=\"submit\">Delete</button></form>")
			b.WriteString("</td></tr>")
		}
		b.WriteString("</tbody></table></section>")
	})
}

var leadStatuses = []backend.LeadStatus{
	backend.LeadNew,
	backend.LeadForwarded,
	backend.LeadDone,
	backend.LeadCanceled,
	backend.LeadSpam,
}

var leadSources = []string{"all", "website", "chatbot"}

func sortLink(b *bytes.Buffer, lv sitekit.LeadsView, key, label string) {
	dir := "asc"
	if lv.SortKey == key && !lv.SortDesc {
		dir = "desc"
	}
	q := url.Values{}
	if lv.Query != "" {
		q.Set("q", lv.Query)
	}
	if lv.Source != "" && lv.Source != "all" {
		q.Set("source", lv.Source)
	}
	q.Set("sort", key)
	q.Set("dir", dir)
	marker := ""
	if lv.SortKey == key {
		if lv.SortDesc {
			marker = " ▾"
		} else {
			marker = " ▴"
		}
	}
	fmt.Fprintf(b, "<th><a href=\"/admin/leads/?%s\">%s%s</a></th>", q.Encode(), esc(label), marker)
}

func AdminLeadsPage(cfg sitekit.Config, lv sitekit.LeadsView, toasts []sitekit.Toast, csrf string) templ.Component {
	return layout(cfg, "Leads", true, csrf, func(b *bytes.Buffer) {
		writeToasts(b, toasts)
		fmt.Fprintf(b, "<section class=\"leads\"><h1>Leads</h1><p>%d of %d shown, %d selected</p>",
			len(lv.Visible), lv.Total, len(lv.Selected))

		b.WriteString("<form method=\"get\" action=\"/admin/leads/\" class=\"filters\">")
		fmt.Fprintf(b, "<input type=\"search\" name=\"q\" value=\"%s\" placeholder=\"Search name, email, phone\">", esc(lv.Query))
		b.WriteString("<select name=\"source\">")
		for _, s := range leadSources {
			selected := ""
			if s == lv.Source {
				selected = " selected"
			}
			fmt.Fprintf(b, "<option%s>%s</option>", selected, esc(s))
		}
		b.WriteString("</select><button type=\"submit\">Filter</button></form>")

		b.WriteString("<div class=\"bulk-actions\">")
		b.WriteString("<form method=\"post\" action=\"/admin/leads/select-visible/\" class=\"inline\">")
		csrfInput(b, csrf)
		b.WriteString("<button type=\"submit\">Toggle visible</button></form>")
		b.WriteString("<form method=\"post\" action=\"/admin/leads/clear-selection/\" class=\"inline\">")
		csrfInput(b, csrf)
		b.WriteString("<button type=\"submit\">Clear selection</button></form>")
		b.WriteString("<a href=\"/admin/leads/export.csv\">Export CSV</a>")
		b.WriteString("<a href=\"/admin/leads/share/\">Share selected</a>")
		b.WriteString("<a href=\"/admin/leads/share/?via=email\">Email selected</a>")
		b.WriteString("</div>")

		b.WriteString("<table class=\"lead-table\"><thead><tr><th></th>")
		sortLink(b, lv, "name", "Name")
		sortLink(b, lv, "email", "Email")
		sortLink(b, lv, "service", "Service")
		sortLink(b, lv, "source", "Source")
		sortLink(b, lv, "status", "Status")
		sortLink(b, lv, "created_at", "Created")
		b.WriteString("<th></th></tr></thead><tbody>")

		for _, l := range lv.Visible {
			b.WriteString("<tr>")
			b.WriteString("<td>")
			fmt.Fprintf(b, "<form method=\"post\" action=\"/admin/leads/select/%d/\" class=\"inline\">", l.ID)
			csrfInput(b, csrf)
			mark := "☐"
			if lv.Selected.Has(l.ID) {
				mark = "☑"
			}
			fmt.Fprintf(b, "<button type=\"submit\">%s</button></form></td>", mark)
			fmt.Fprintf(b, "<td>%s</td><td>%s</td><td>%s</td><td>%s</td>",
				esc(l.Name), esc(l.Email), esc(l.Service), esc(string(l.Source)))
			b.WriteString("<td>")
			fmt.Fprintf(b, "<form method=\"post\" action=\"/admin/leads/status/%d/\" class=\"inline\">", l.ID)
			csrfInput(b, csrf)
			b.WriteString("<select name=\"status\" onchange=\"this.form.submit()\">")
			for _, s := range leadStatuses {
				selected := ""
				if s == l.Status {
					selected = " selected"
				}
				fmt.Fprintf(b, "<option%s>%s</option>", selected, esc(string(s)))
			}
			b.WriteString("</select></form></td>")
			fmt.Fprintf(b, "<td>%s</td>", esc(leads.FormatDate(l.CreatedAt)))
			b.WriteString("<td>")
			fmt.Fprintf(b, "<a href=\"/admin/leads/share/%d/\">WhatsApp</a> ", l.ID)
			fmt.Fprintf(b, "<a href=\"/admin/leads/share/%d/?via=email\">Email</a> ", l.ID)
			fmt.Fprintf(b, "<form method=\"post\" action=\"/admin/leads/delete/%d/\" class=\"inline\" data-confirm=\"Delete this lead?\">", l.ID)
			csrfInput(b, csrf)
			b.WriteString("<button type=\"submit\">Delete</button></form>")
			b.WriteString("</td></tr>")
		}
		b.WriteString("</tbody></table></section>")
	})
}

func AdminBlogPage(cfg sitekit.Config, posts []backend.BlogPost, editing *backend.BlogPost, adding bool, toasts []sitekit.Toast, csrf string) templ.Component {
	return layout(cfg, "Blog", true, csrf, func(b *bytes.Buffer) {
		writeToasts(b, toasts)
		b.WriteString("<section class=\"blog-admin\"><h1>Blog</h1>")

		if adding || editing != nil {
			post := backend.BlogPost{}
			heading := "New post"
			if editing != nil {
				post = *editing
				heading = "Edit post"
			}
			fmt.Fprintf(b, "<h2>%s</h2>", heading)
			b.WriteString("<form method=\"post\" action=\"/admin/blog/save/\" enctype=\"multipart/form-data\">")
			csrfInput(b, csrf)
			fmt.Fprintf(b, "<input type=\"hidden\" name=\"id\" value=\"%d\">", post.ID)
			fmt.Fprintf(b, "<label>Title<input type=\"text\" name=\"title\" value=\"%s\" required></label>", esc(post.Title))
			fmt.Fprintf(b, "<label>Slug<input type=\"text\" name=\"slug\" value=\"%s\" placeholder=\"auto-generated from title\"></label>", esc(post.Slug))
			fmt.Fprintf(b, "<label>Category<input type=\"text\" name=\"category\" value=\"%s\"></label>", esc(post.Category))
			fmt.Fprintf(b, "<label>Summary<textarea name=\"short_description\">%s</textarea></label>", esc(post.ShortDescription))
			fmt.Fprintf(b, "<label>Body<textarea name=\"body\" rows=\"20\">%s</textarea></label>", esc(post.Body))
			checked := ""
			if post.Published {
				checked = " checked"
			}
			fmt.Fprintf(b, "<label>Published<input type=\"checkbox\" name=\"published\"%s></label>", checked)
			b.WriteString("<label>Cover image<input type=\"file\" name=\"image\" accept=\"image/*\"></label>")
			b.WriteString("<button type=\"submit\">Save</button></form>")
			b.WriteString("<form method=\"post\" action=\"/admin/blog/cancel/\">")
			csrfInput(b, csrf)
			b.WriteString("<button type=\"submit\">Cancel</button></form>")
		} else {
			b.WriteString("<form method=\"post\" action=\"/admin/blog/add/\">")
			csrfInput(b, csrf)
			b.WriteString("<button type=\"submit\">New post</button></form>")
		}

		b.WriteString("<table class=\"post-table\"><tbody>")
		for _, p := range posts {
			state := "draft"
			if p.Published {
				state = "published"
			}
			b.WriteString("<tr>")
			fmt.Fprintf(b, "<td>%s</td><td>%s</td><td>%s</td>", esc(p.Title), esc(p.Category), state)
			b.WriteString("<td>")
			fmt.Fprintf(b, "<form method=\"post\" action=\"/admin/blog/edit/%d/\" class=\"inline\">", p.ID)
			csrfInput(b, csrf)
			b.WriteString("<button type=\"submit\">Edit</button></form>")
			fmt.Fprintf(b, "<form method=\"post\" action=\"/admin/blog/delete/%d/\" class=\"inline\" data-confirm=\"Delete this post?\">", p.ID)
			csrfInput(b, csrf)
			b.WriteString("<button type=\"submit\">Delete</button></form>")
			b.WriteString("</td></tr>")
		}
		b.WriteString("</tbody></table></section>")
	})
}

func AdminSubscribersPage(cfg sitekit.Config, subs []backend.Subscriber, templates []backend.EmailTemplate, toasts []sitekit.Toast, csrf string) templ.Component {
	return layout(cfg, "Subscribers", true, csrf, func(b *bytes.Buffer) {
		writeToasts(b, toasts)
		fmt.Fprintf(b, "<section class=\"subscribers\"><h1>Subscribers (%d)</h1>", len(subs))
		b.WriteString("<table><tbody>")
		for _, s := range subs {
			b.WriteString("<tr>")
			fmt.Fprintf(b, "<td>%s</td><td>%s</td>", esc(s.Email), esc(leads.FormatDate(s.SubscribedAt)))
			b.WriteString("<td>")
			fmt.Fprintf(b, "<form method=\"post\" action=\"/admin/subscribers/delete/%d/\" class=\"inline\" data-confirm=\"Remove this subscriber?\">", s.ID)
			csrfInput(b, csrf)
			b.WriteString("<button type=\"submit\">Remove</button></form>")
			b.WriteString("</td></tr>")
		}
		b.WriteString("</tbody></table>")

		if len(templates) > 0 {
			// Compose opens the operator's mail client with every subscriber
			// in BCC and the template pre-filled; sending stays local.
			emails := make([]string, 0, len(subs))
			for _, s := range subs {
				emails = append(emails, s.Email)
			}
			b.WriteString("<h2>Email templates</h2><ul>")
			for _, t := range templates {
				fmt.Fprintf(b, "<li><strong>%s</strong>: %s <a href=\"%s\">Compose to all</a></li>",
					esc(t.Name), esc(t.Subject), esc(composeMailto(emails, t.Subject, t.Body)))
			}
			b.WriteString("</ul>")
		}
		b.WriteString("</section>")
	})
}

func AdminTicketsPage(cfg sitekit.Config, tickets []backend.SupportTicket, toasts []sitekit.Toast, csrf string) templ.Component {
	return layout(cfg, "Support Tickets", true, csrf, func(b *bytes.Buffer) {
		writeToasts(b, toasts)
		b.WriteString("<section class=\"tickets\"><h1>Support tickets</h1><table><tbody>")
		for _, t := range tickets {
			b.WriteString("<tr>")
			fmt.Fprintf(b, "<td>%s</td><td>%s</td><td>%s</td><td class=\"priority-%s\">%s</td>",
				esc(t.Subject), esc(t.Name), esc(t.Email), esc(t.Priority), esc(t.Priority))
			b.WriteString("<td>")
			fmt.Fprintf(b, "<form method=\"post\" action=\"/admin/tickets/status/%d/\" class=\"inline\">", t.ID)
			csrfInput(b, csrf)
			b.WriteString("<select name=\"status\" onchange=\"this.form.submit()\">")
			for _, s := range []backend.TicketStatus{backend.TicketOpen, backend.TicketInProgress, backend.TicketResolved} {
				selected := ""
				if s == t.Status {
					selected = " selected"
				}
				fmt.Fprintf(b, "<option%s>%s</option>", selected, esc(string(s)))
			}
			b.WriteString("</select></form></td></tr>")
		}
		b.WriteString("</tbody></table></section>")
	})
}

func AdminApplicationsPage(cfg sitekit.Config, apps []backend.JobApplication, exports sitekit.ApplicationExports, toasts []sitekit.Toast, csrf string) templ.Component {
	return layout(cfg, "Applications", true, csrf, func(b *bytes.Buffer) {
		writeToasts(b, toasts)
		b.WriteString("<section class=\"applications\"><h1>Job applications</h1>")
		fmt.Fprintf(b, "<div class=\"exports\"><a href=\"%s\">All as CSV</a> <a href=\"%s\">Resumes ZIP</a></div>",
			esc(exports.AllCSVURL), esc(exports.ResumesZipURL))

		b.WriteString("<table><tbody>")
		for _, app := range apps {
			b.WriteString("<tr>")
			fmt.Fprintf(b, "<td>%s</td><td>%s</td><td>%s</td>",
				esc(app.ApplicantName), esc(app.Email), esc(leads.FormatDate(app.AppliedAt)))
			b.WriteString("<td>")
			if app.ResumeFile != "" {
				fmt.Fprintf(b, "<a href=\"%s\">Resume</a> ", esc(app.ResumeFile))
			} else if app.ResumeLink != "" {
				fmt.Fprintf(b, "<a href=\"%s\">Resume</a> ", esc(app.ResumeLink))
			}
			fmt.Fprintf(b, "<a href=\"%s\">CSV</a>", esc(exports.PerAppURL(app.ID)))
			b.WriteString("</td><td>")
			fmt.Fprintf(b, "<form method=\"post\" action=\"/admin/applications/share/%d/\" class=\"inline\">", app.ID)
			csrfInput(b, csrf)
			b.WriteString("<input type=\"email\" name=\"recipient\" placeholder=\"hiring@example.com\" required>")
			b.WriteString("<button type=\"submit\">Share</button></form>")
			b.WriteString("</td></tr>")
		}
		b.WriteString("</tbody></table></section>")
	})
}

func AdminProfilePage(cfg sitekit.Config, profile backend.Profile, toasts []sitekit.Toast, csrf string) templ.Component {
	return layout(cfg, "Profile", true, csrf, func(b *bytes.Buffer) {
		writeToasts(b, toasts)
		b.WriteString("<section class=\"profile\"><h1>Profile</h1>")
		b.WriteString("<form method=\"post\" action=\"/admin/profile/\" enctype=\"multipart/form-data\">")
		csrfInput(b, csrf)
		for _, f := range []struct{ name, label, value string }{
			{"username", "Username", profile.Username},
			{"email", "Email", profile.Email},
			{"first_name", "First name", profile.FirstName},
			{"last_name", "Last name", profile.LastName},
			{"linkedin_url", "LinkedIn", profile.LinkedInURL},
			{"twitter_url", "Twitter", profile.TwitterURL},
		} {
			fmt.Fprintf(b, "<label>%s<input type=\"text\" name=\"%s\" value=\"%s\"></label>",
				esc(f.label), f.name, esc(f.value))
		}
		b.WriteString("<label>New password<input type=\"password\" name=\"password\"></label>")
		b.WriteString("<label>Confirm password<input type=\"password\" name=\"confirm_password\"></label>")
		if profile.ProfileImage != "" {
			fmt.Fprintf(b, "<p>Current photo: %s</p>", esc(profile.ProfileImage))
		}
		b.WriteString("<label>Photo<input type=\"file\" name=\"profile_image\" accept=\"image/*\"></label>")
		b.WriteString("<button type=\"submit\">Save</button>")
		b.WriteString("</form></section>")
	})
}

// composeMailto builds a mailto link addressing every subscriber via BCC with
// the template's subject and body pre-filled.
func composeMailto(bcc []string, subject, body string) string {
	return "mailto:?bcc=" + url.QueryEscape(strings.Join(bcc, ",")) +
		"&subject=" + url.QueryEscape(subject) +
		"&body=" + url.QueryEscape(body)
}
