package backend

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Aggregate page fetchers. Each public page gets one GET against its
// *_page endpoint; the backend bundles the singleton content with the
// page's collections. Nothing is cached here: every navigation re-fetches.

func (c *Client) HomePage(ctx context.Context) (HomePage, error) {
	var p HomePage
	err := c.GetOne(ctx, "home_page", &p)
	return p, err
}

func (c *Client) AboutPage(ctx context.Context) (AboutPage, error) {
	var p AboutPage
	err := c.GetOne(ctx, "about_page", &p)
	return p, err
}

func (c *Client) ServicesPage(ctx context.Context) (ServicesPage, error) {
	var p ServicesPage
	err := c.GetOne(ctx, "services_page", &p)
	return p, err
}

func (c *Client) CareersPage(ctx context.Context) (CareersPage, error) {
	var p CareersPage
	err := c.GetOne(ctx, "careers_page", &p)
	return p, err
}

func (c *Client) ContactPage(ctx context.Context) (ContactPage, error) {
	var p ContactPage
	err := c.GetOne(ctx, "contact_page", &p)
	return p, err
}

func (c *Client) ResourcesPage(ctx context.Context) (ResourcesPage, error) {
	var p ResourcesPage
	err := c.GetOne(ctx, "resources_page", &p)
	return p, err
}

func (c *Client) SolutionsPage(ctx context.Context) (SolutionsPage, error) {
	var p SolutionsPage
	err := c.GetOne(ctx, "solutions_page", &p)
	return p, err
}

// BlogPosts lists all posts; the public site filters to published ones.
func (c *Client) BlogPosts(ctx context.Context) ([]BlogPost, error) {
	var posts []BlogPost
	err := c.List(ctx, "blog_posts", &posts)
	return posts, err
}

// PublishedPosts returns only published posts, newest first as the backend
// orders them.
func (c *Client) PublishedPosts(ctx context.Context) ([]BlogPost, error) {
	posts, err := c.BlogPosts(ctx)
	if err != nil {
		return nil, err
	}
	published := posts[:0:0]
	for _, p := range posts {
		if p.Published {
			published = append(published, p)
		}
	}
	return published, nil
}

// BlogPostBySlug fetches one post and the post list in parallel; the list
// feeds the "related posts" rail.
func (c *Client) BlogPostBySlug(ctx context.Context, slug string) (BlogPost, []BlogPost, error) {
	var post BlogPost
	var posts []BlogPost
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.do(ctx, "GET", c.baseURL+"/api/blog_posts/slug/"+slug+"/", "", nil, &post)
	})
	g.Go(func() error {
		var err error
		posts, err = c.PublishedPosts(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return BlogPost{}, nil, err
	}
	return post, posts, nil
}

// Stats gathers the admin dashboard counters from each collection
// concurrently. A failure in any fetch fails the whole call; the dashboard
// shows a banner rather than half-right numbers.
func (c *Client) Stats(ctx context.Context) (DashboardStats, error) {
	var (
		leads   []Lead
		subs    []Subscriber
		posts   []BlogPost
		tickets []SupportTicket
		apps    []JobApplication
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.List(ctx, "leads", &leads) })
	g.Go(func() error { return c.List(ctx, "subscribers", &subs) })
	g.Go(func() error { return c.List(ctx, "blog_posts", &posts) })
	g.Go(func() error { return c.List(ctx, "support_tickets", &tickets) })
	g.Go(func() error { return c.List(ctx, "job_applications", &apps) })
	if err := g.Wait(); err != nil {
		return DashboardStats{}, err
	}
	st := DashboardStats{
		Leads:        len(leads),
		Subscribers:  len(subs),
		Posts:        len(posts),
		Tickets:      len(tickets),
		Applications: len(apps),
	}
	for _, l := range leads {
		if ParseLeadStatus(string(l.Status)) == LeadNew {
			st.NewLeads++
		}
	}
	return st, nil
}
