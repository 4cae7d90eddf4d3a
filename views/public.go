package views

import (
	"bytes"
	"fmt"

	"github.com/a-h/templ"

	"github.com/xpertai/sitekit"
	"github.com/xpertai/sitekit/backend"
)

func hero(b *bytes.Buffer, content backend.PageContent) {
	b.WriteString("<section class=\"hero\">")
	if content.HeroTitle != "" {
		fmt.Fprintf(b, "<h1>%s</h1>", esc(content.HeroTitle))
	} else if content.Title != "" {
		fmt.Fprintf(b, "<h1>%s</h1>", esc(content.Title))
	}
	if content.HeroSubtitle != "" {
		fmt.Fprintf(b, "<p class=\"hero-subtitle\">%s</p>", esc(content.HeroSubtitle))
	} else if content.Subtitle != "" {
		fmt.Fprintf(b, "<p class=\"hero-subtitle\">%s</p>", esc(content.Subtitle))
	}
	if content.Description != "" {
		fmt.Fprintf(b, "<p>%s</p>", esc(content.Description))
	}
	if content.CTAText != "" && content.CTALink != "" {
		fmt.Fprintf(b, "<a class=\"cta\" href=\"%s\">%s</a>", esc(content.CTALink), esc(content.CTAText))
	}
	b.WriteString("</section>")
}

func itemCards(b *bytes.Buffer, heading string, items []backend.ContentItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "<section class=\"cards\"><h2>%s</h2><ul>", esc(heading))
	for _, it := range items {
		b.WriteString("<li class=\"card\">")
		fmt.Fprintf(b, "<h3>%s</h3>", esc(it.DisplayName()))
		if it.Quote != "" {
			fmt.Fprintf(b, "<blockquote>%s</blockquote>", esc(it.Quote))
		}
		if it.Answer != "" {
			fmt.Fprintf(b, "<p>%s</p>", esc(it.Answer))
		} else if it.Description != "" && it.Description != it.DisplayName() {
			fmt.Fprintf(b, "<p>%s</p>", esc(it.Description))
		}
		if it.Link != "" {
			fmt.Fprintf(b, "<a href=\"%s\">Learn more</a>", esc(it.Link))
		}
		if it.File != "" {
			fmt.Fprintf(b, "<a href=\"%s\" download>Download</a>", esc(it.File))
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul></section>")
}

// HomePage is the default landing page.
func HomePage(cfg sitekit.Config, p backend.HomePage) templ.Component {
	return layout(cfg, "Home", false, "", func(b *bytes.Buffer) {
		fmt.Fprintf(b, "<script type=\"application/ld+json\">%s</script>", sitekit.WebsiteJsonLD(cfg))
		hero(b, p.Content)
		itemCards(b, "What we do", p.Features)
		itemCards(b, "By the numbers", p.Stats)
		itemCards(b, "What clients say", p.Testimonials)
		chatWidget(b)
	})
}

func AboutPage(cfg sitekit.Config, p backend.AboutPage) templ.Component {
	return layout(cfg, "About", false, "", func(b *bytes.Buffer) {
		hero(b, p.Content)
		itemCards(b, "The team", p.Team)
		itemCards(b, "Our stack", p.TechStack)
		itemCards(b, "Recognition", p.Awards)
	})
}

func ServicesPage(cfg sitekit.Config, p backend.ServicesPage) templ.Component {
	return layout(cfg, "Services", false, "", func(b *bytes.Buffer) {
		hero(b, p.Content)
		itemCards(b, "Services", p.Services)
		itemCards(b, "How we work", p.Process)
		itemCards(b, "Frequently asked", p.FAQs)
	})
}

// CareersPage includes the application form; msg carries the post-submit
// confirmation from the redirect.
func CareersPage(cfg sitekit.Config, p backend.CareersPage, msg, csrf string) templ.Component {
	return layout(cfg, "Careers", false, "", func(b *bytes.Buffer) {
		hero(b, p.Content)
		itemCards(b, "Benefits", p.Benefits)
		itemCards(b, "Open positions", p.Jobs)

		b.WriteString("<section class=\"apply\"><h2>Apply</h2>")
		if msg != "" {
			fmt.Fprintf(b, "<p class=\"notice\">%s</p>", esc(msg))
		}
		b.WriteString("<form method=\"post\" action=\"/careers/apply/\" enctype=\"multipart/form-data\">")
		csrfInput(b, csrf)
		b.WriteString("<select name=\"job\" required>")
		for _, j := range p.Jobs {
			fmt.Fprintf(b, "<option value=\"%d\">%s</option>", j.ID, esc(j.DisplayName()))
		}
		b.WriteString("</select>")
		b.WriteString("<input type=\"text\" name=\"applicant_name\" placeholder=\"Full name\" required>")
		b.WriteString("<input type=\"email\" name=\"email\" placeholder=\"Email\" required>")
		b.WriteString("<input type=\"tel\" name=\"phone\" placeholder=\"Phone\">")
		b.WriteString("<input type=\"url\" name=\"linkedin_url\" placeholder=\"LinkedIn profile\">")
		b.WriteString("<input type=\"url\" name=\"resume_link\" placeholder=\"Resume link\">")
		b.WriteString("<input type=\"file\" name=\"resume_file\" accept=\".pdf\">")
		b.WriteString("<textarea name=\"cover_letter\" placeholder=\"Cover letter\"></textarea>")
		b.WriteString("<input type=\"text\" name=\"referral_source\" placeholder=\"How did you hear about us?\">")
		b.WriteString("<button type=\"submit\">Submit application</button>")
		b.WriteString("</form></section>")
	})
}

// ContactPage includes the lead capture form and the support ticket form.
func ContactPage(cfg sitekit.Config, p backend.ContactPage, msg, csrf string) templ.Component {
	return layout(cfg, "Contact", false, "", func(b *bytes.Buffer) {
		hero(b, p.Content)
		if msg != "" {
			fmt.Fprintf(b, "<p class=\"notice\">%s</p>", esc(msg))
		}

		b.WriteString("<section class=\"contact-form\"><h2>Start a project</h2>")
		b.WriteString("<form method=\"post\" action=\"/contact/\">")
		csrfInput(b, csrf)
		b.WriteString("<input type=\"text\" name=\"name\" placeholder=\"Name\" required>")
		b.WriteString("<input type=\"email\" name=\"email\" placeholder=\"Email\" required>")
		b.WriteString("<input type=\"tel\" name=\"phone\" placeholder=\"Phone\">")
		b.WriteString("<input type=\"text\" name=\"company\" placeholder=\"Company\">")
		b.WriteString("<select name=\"service\"><option value=\"\">Service of interest</option>")
		for _, s := range []string{"AI Development", "Web Development", "Mobile Apps", "Consulting"} {
			fmt.Fprintf(b, "<option>%s</option>", esc(s))
		}
		b.WriteString("</select>")
		for _, sub := range []string{"Chatbots", "Computer Vision", "NLP", "MLOps"} {
			fmt.Fprintf(b, "<label><input type=\"checkbox\" name=\"sub_services\" value=\"%s\"> %s</label>", esc(sub), esc(sub))
		}
		b.WriteString("<select name=\"timeline\"><option value=\"\">Timeline</option>")
		for _, t := range []string{"ASAP", "1-3 months", "3-6 months", "6+ months"} {
			fmt.Fprintf(b, "<option>%s</option>", esc(t))
		}
		b.WriteString("</select>")
		b.WriteString("<textarea name=\"message\" placeholder=\"Tell us about your project\"></textarea>")
		b.WriteString("<button type=\"submit\">Send</button>")
		b.WriteString("</form></section>")

		b.WriteString("<section class=\"support-form\"><h2>Support</h2>")
		b.WriteString("<form method=\"post\" action=\"/contact/support/\">")
		csrfInput(b, csrf)
		b.WriteString("<input type=\"text\" name=\"name\" placeholder=\"Name\" required>")
		b.WriteString("<input type=\"email\" name=\"email\" placeholder=\"Email\" required>")
		b.WriteString("<input type=\"text\" name=\"subject\" placeholder=\"Subject\" required>")
		b.WriteString("<select name=\"priority\"><option value=\"low\">Low</option><option value=\"medium\" selected>Medium</option><option value=\"high\">High</option></select>")
		b.WriteString("<textarea name=\"description\" placeholder=\"Describe the issue\" required></textarea>")
		b.WriteString("<button type=\"submit\">Open ticket</button>")
		b.WriteString("</form></section>")

		itemCards(b, "Frequently asked", p.FAQs)
		chatWidget(b)
	})
}

func ResourcesPage(cfg sitekit.Config, p backend.ResourcesPage) templ.Component {
	return layout(cfg, "Resources", false, "", func(b *bytes.Buffer) {
		hero(b, p.Content)
		itemCards(b, "Downloads", p.Downloads)
		itemCards(b, "Useful links", p.Links)
	})
}

func SolutionsPage(cfg sitekit.Config, p backend.SolutionsPage) templ.Component {
	return layout(cfg, "Solutions", false, "", func(b *bytes.Buffer) {
		hero(b, p.Content)
		itemCards(b, "Solutions", p.Solutions)
	})
}

func BlogIndexPage(cfg sitekit.Config, posts []backend.BlogPost) templ.Component {
	return layout(cfg, "Blog", false, "", func(b *bytes.Buffer) {
		b.WriteString("<section class=\"blog-index\"><h1>Blog</h1><ul>")
		for _, p := range posts {
			b.WriteString("<li class=\"post-card\">")
			fmt.Fprintf(b, "<a href=\"/blog/%s/\"><h2>%s</h2></a>", esc(p.Slug), esc(p.Title))
			if p.Category != "" {
				fmt.Fprintf(b, "<span class=\"category\">%s</span>", esc(p.Category))
			}
			fmt.Fprintf(b, "<p>%s</p>", esc(p.ShortDescription))
			b.WriteString("</li>")
		}
		b.WriteString("</ul></section>")
	})
}

func BlogPostPage(cfg sitekit.Config, post backend.BlogPost, related []backend.BlogPost) templ.Component {
	m := sitekit.PageMeta{
		Title:       post.Title,
		Description: post.ShortDescription,
		URL:         sitekit.BuildURL(cfg.URL, "blog", post.Slug),
		OGType:      "article",
	}
	return layoutMeta(cfg, m, func(b *bytes.Buffer) {
		fmt.Fprintf(b, "<script type=\"application/ld+json\">%s</script>", sitekit.BlogPostingJsonLD(post, cfg))
		b.WriteString("<article class=\"blog-post\">")
		fmt.Fprintf(b, "<h1>%s</h1>", esc(post.Title))
		if post.Category != "" {
			fmt.Fprintf(b, "<span class=\"category\">%s</span>", esc(post.Category))
		}
		// Post bodies are authored HTML from the admin editor.
		b.WriteString("<div class=\"post-body\">")
		b.WriteString(post.Body)
		b.WriteString("</div></article>")
		if len(related) > 0 {
			b.WriteString("<aside class=\"related\"><h2>Related posts</h2><ul>")
			for _, r := range related {
				fmt.Fprintf(b, "<li><a href=\"/blog/%s/\">%s</a></li>", esc(r.Slug), esc(r.Title))
			}
			b.WriteString("</ul></aside>")
		}
	})
}

func NotFoundPage(cfg sitekit.Config) templ.Component {
	return layout(cfg, "Not Found", false, "", func(b *bytes.Buffer) {
		b.WriteString("<section class=\"error-page\"><h1>404</h1><p>That page does not exist.</p><a href=\"/\">Back home</a></section>")
	})
}

func ServerErrorPage(cfg sitekit.Config) templ.Component {
	return layout(cfg, "Something went wrong", false, "", func(b *bytes.Buffer) {
		b.WriteString("<section class=\"error-page\"><h1>500</h1><p>Something went wrong on our end.</p><a href=\"/\">Back home</a></section>")
	})
}
