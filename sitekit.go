// Package sitekit is the XpertAI marketing site and admin console engine,
// built with Go, Echo, and templ. It renders the public pages (Home, About,
// Services, Careers, Contact, Resources, Solutions, Blog), a chat widget for
// scripted lead capture, and an admin console for managing every content
// resource, all backed by the external XpertAI REST API, which owns
// persistence and authorization.
//
// Users provide their own templ components via the ViewFuncs struct (the
// views package ships working defaults), and sitekit handles the handler
// logic, middleware, sessions, and backend access.
package sitekit

import (
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xpertai/sitekit/analytics"
	"github.com/xpertai/sitekit/backend"
	"github.com/xpertai/sitekit/leads"
	"github.com/xpertai/sitekit/listman"
)

// ListView is the view model for a List Manager screen.
type ListView struct {
	Def       listman.Definition
	Items     []backend.ContentItem
	Mode      listman.Mode
	Values    map[string]string // form prefill, by field name
	EditingID int
}

// LeadsView is the view model for the leads workspace.
type LeadsView struct {
	Visible  []backend.Lead // filtered + sorted
	Total    int            // size of the unfiltered collection
	Query    string
	Source   string
	SortKey  string
	SortDesc bool
	Selected leads.Selection
}

// ApplicationExports carries the backend-generated export links the
// applications screen opens directly in the browser.
type ApplicationExports struct {
	AllCSVURL     string
	ResumesZipURL string
	PerAppURL     func(id int) string
}

// ViewFuncs holds user-provided templ components that the engine calls when
// rendering pages. This is the inversion-of-control mechanism that lets
// users own and customize all templates.
type ViewFuncs struct {
	Home      func(cfg Config, p backend.HomePage) templ.Component
	About     func(cfg Config, p backend.AboutPage) templ.Component
	Services  func(cfg Config, p backend.ServicesPage) templ.Component
	Careers   func(cfg Config, p backend.CareersPage, msg, csrf string) templ.Component
	Contact   func(cfg Config, p backend.ContactPage, msg, csrf string) templ.Component
	Resources func(cfg Config, p backend.ResourcesPage) templ.Component
	Solutions func(cfg Config, p backend.SolutionsPage) templ.Component
	BlogIndex func(cfg Config, posts []backend.BlogPost) templ.Component
	BlogPost  func(cfg Config, post backend.BlogPost, related []backend.BlogPost) templ.Component

	AdminLogin func(cfg Config, username, errMsg, csrf string) templ.Component
	AdminSetup func(cfg Config, errMsg, csrf string) templ.Component

	AdminDashboard    func(cfg Config, stats backend.DashboardStats, toasts []Toast, csrf string) templ.Component
	AdminSingleton    func(cfg Config, section string, content backend.PageContent, toasts []Toast, csrf string) templ.Component
	AdminList         func(cfg Config, lv ListView, toasts []Toast, csrf string) templ.Component
	AdminLeads        func(cfg Config, lv LeadsView, toasts []Toast, csrf string) templ.Component
	AdminBlog         func(cfg Config, posts []backend.BlogPost, editing *backend.BlogPost, adding bool, toasts []Toast, csrf string) templ.Component
	AdminSubscribers  func(cfg Config, subs []backend.Subscriber, templates []backend.EmailTemplate, toasts []Toast, csrf string) templ.Component
	AdminTickets      func(cfg Config, tickets []backend.SupportTicket, toasts []Toast, csrf string) templ.Component
	AdminApplications func(cfg Config, apps []backend.JobApplication, exports ApplicationExports, toasts []Toast, csrf string) templ.Component
	AdminProfile      func(cfg Config, profile backend.Profile, toasts []Toast, csrf string) templ.Component

	NotFound    func(cfg Config) templ.Component
	ServerError func(cfg Config) templ.Component
}

// App is the central sitekit application. It wires together the backend
// client, handlers, middleware, sessions, and user-provided templates.
type App struct {
	Config  Config
	Echo    *echo.Echo
	Backend *backend.Client
	Views   ViewFuncs

	log            *zap.SugaredLogger
	loginLimiter   *RateLimiter
	chatLimiter    *RateLimiter
	analyticsStore *analytics.Store
	chats          *chatRegistry
	managers       *managerRegistry
	workspaces     *workspaceRegistry
	feed           *feedCache
	customRoutes   []func(*App)
	staticDir      string
}

// New creates a sitekit App with the given configuration and views.
func New(cfg Config, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes logging, the backend client, middleware, and routes,
// then starts the server.
func (a *App) Start() error {
	if a.Config.BackendURL == "" {
		return fmt.Errorf("sitekit: BackendURL is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("sitekit: SessionSecret is required")
	}

	log, err := newLogger(a.Config.LogDir, a.Config.LogTee)
	if err != nil {
		return fmt.Errorf("sitekit: init logger: %w", err)
	}
	a.log = log

	a.Backend = backend.New(a.Config.BackendURL)
	a.feed = newFeedCache(a.Backend, a.Config.FeedCacheTTL)
	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.chatLimiter = NewRateLimiter(30, time.Minute)
	a.chats = newChatRegistry(30 * time.Minute)
	a.managers = newManagerRegistry(adminSessionTTL)
	a.workspaces = newWorkspaceRegistry(adminSessionTTL)

	if a.Config.AnalyticsEnabled {
		store, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("sitekit: init analytics: %w", err)
		}
		a.analyticsStore = store
		if err := analytics.InitSalt(store); err != nil {
			return fmt.Errorf("sitekit: init analytics salt: %w", err)
		}
		stopCleanup := store.StartCleanupScheduler(365, 24*time.Hour)
		defer stopCleanup()
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.log.Infow("sitekit online", "addr", a.Config.Addr, "backend", a.Config.BackendURL)
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded engine assets, falling through to the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/chat.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/admin.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/analytics.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Public pages
	e.GET("/", a.handleHome)
	e.GET("/about/", a.handleAbout)
	e.GET("/services/", a.handleServices)
	e.GET("/careers/", a.handleCareers)
	e.GET("/contact/", a.handleContact)
	e.GET("/resources/", a.handleResources)
	e.GET("/solutions/", a.handleSolutions)
	e.GET("/blog/", a.handleBlogIndex)
	e.GET("/blog/:slug/", a.handleBlogPost)

	// Public form submissions
	e.POST("/contact/", a.handleContactSubmit)
	e.POST("/contact/support/", a.handleSupportSubmit)
	e.POST("/careers/apply/", a.handleApplicationSubmit)
	e.POST("/subscribe/", a.handleSubscribe)

	// Chat widget API
	e.POST("/api/chat/start", a.handleChatStart)
	e.POST("/api/chat/message", a.handleChatMessage)

	// Auth gate
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/setup/", a.handleAdminSetup)
	e.POST("/admin/logout/", a.handleAdminLogout)

	// Admin console, fail-closed behind requireAdmin.
	admin := e.Group("/admin", a.requireAdmin)
	admin.GET("/dashboard/", a.handleDashboard)
	admin.GET("/content/:section/", a.handleSingleton)
	admin.POST("/content/:section/", a.handleSingletonSave)
	admin.GET("/lists/:name/", a.handleList)
	admin.POST("/lists/:name/add/", a.handleListAdd)
	admin.POST("/lists/:name/edit/:id/", a.handleListEdit)
	admin.POST("/lists/:name/cancel/", a.handleListCancel)
	admin.POST("/lists/:name/save/", a.handleListSave)
	admin.POST("/lists/:name/delete/:id/", a.handleListDelete)
	admin.GET("/leads/", a.handleLeads)
	admin.POST("/leads/select/:id/", a.handleLeadSelect)
	admin.POST("/leads/select-visible/", a.handleLeadSelectVisible)
	admin.POST("/leads/clear-selection/", a.handleLeadClearSelection)
	admin.POST("/leads/status/:id/", a.handleLeadStatus)
	admin.POST("/leads/delete/:id/", a.handleLeadDelete)
	admin.GET("/leads/export.csv", a.handleLeadsExport)
	admin.GET("/leads/share/:id/", a.handleLeadShare)
	admin.GET("/leads/share/", a.handleLeadsBulkShare)
	admin.GET("/blog/", a.handleAdminBlog)
	admin.POST("/blog/add/", a.handleAdminBlogAdd)
	admin.POST("/blog/edit/:id/", a.handleAdminBlogEdit)
	admin.POST("/blog/cancel/", a.handleAdminBlogCancel)
	admin.POST("/blog/save/", a.handleAdminBlogSave)
	admin.POST("/blog/delete/:id/", a.handleAdminBlogDelete)
	admin.GET("/subscribers/", a.handleSubscribers)
	admin.POST("/subscribers/delete/:id/", a.handleSubscriberDelete)
	admin.GET("/tickets/", a.handleTickets)
	admin.POST("/tickets/status/:id/", a.handleTicketStatus)
	admin.GET("/applications/", a.handleApplications)
	admin.POST("/applications/share/:id/", a.handleApplicationShare)
	admin.GET("/profile/", a.handleProfile)
	admin.POST("/profile/", a.handleProfileSave)

	if a.Config.AnalyticsEnabled && a.analyticsStore != nil {
		h := analytics.NewHandler(a.analyticsStore)
		h.RegisterRoutes(e, a.requireAdmin)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.analyticsStore != nil {
		a.analyticsStore.Close()
	}
	if a.log != nil {
		a.log.Sync()
	}
	return nil
}
