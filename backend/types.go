package backend

// LeadStatus is the lifecycle state of a captured lead.
type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadForwarded LeadStatus = "forwarded"
	LeadDone      LeadStatus = "done"
	LeadCanceled  LeadStatus = "canceled"
	LeadSpam      LeadStatus = "spam"
)

// ParseLeadStatus maps a raw status string to one of the five known values.
// Anything unrecognized (including the empty string) falls back to "new".
func ParseLeadStatus(s string) LeadStatus {
	switch LeadStatus(s) {
	case LeadNew, LeadForwarded, LeadDone, LeadCanceled, LeadSpam:
		return LeadStatus(s)
	}
	return LeadNew
}

// LeadSource identifies where a lead entered the funnel.
type LeadSource string

const (
	SourceChatbot LeadSource = "chatbot"
	SourceWebsite LeadSource = "website"
)

// Lead is a captured sales lead. Only Status is ever mutated by the admin
// console; every other field is immutable once the lead exists.
type Lead struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Company     string     `json:"company"`
	Service     string     `json:"service"`
	SubServices string     `json:"sub_services"` // comma-joined, never a list
	Timeline    string     `json:"timeline"`
	Message     string     `json:"message"`
	Source      LeadSource `json:"source"`
	Status      LeadStatus `json:"status"`
	CreatedAt   string     `json:"created_at"`
}

// PageContent is a one-row content record for a logical page section
// (hero text, titles, CTA copy). The backend may omit the id on a fresh
// deployment; callers resolve it with ResolveID.
type PageContent struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	HeroTitle    string `json:"hero_title"`
	HeroSubtitle string `json:"hero_subtitle"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	CTAText      string `json:"cta_text"`
	CTALink      string `json:"cta_link"`
}

// ResolveID returns the record id, defaulting to 1 when the backend omitted
// it on first load.
func (p PageContent) ResolveID() int {
	if p.ID == 0 {
		return 1
	}
	return p.ID
}

// ContentItem is the generic shape shared by every repeatable content type:
// team members, features, FAQs, testimonials, benefits, job postings,
// downloads, links, awards, stats, and process steps.
type ContentItem struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quote       string `json:"quote"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Image       string `json:"image"`
	Icon        string `json:"icon"`
	File        string `json:"file"`
	Link        string `json:"link"`
	Order       int    `json:"order"`
}

// DisplayName prefers Title, then Name, then Question, so list cards always
// have something to show.
func (i ContentItem) DisplayName() string {
	switch {
	case i.Title != "":
		return i.Title
	case i.Name != "":
		return i.Name
	case i.Question != "":
		return i.Question
	}
	return i.Description
}

// Subscriber is an append-only newsletter signup. The admin can only delete.
type Subscriber struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	SubscribedAt string `json:"subscribed_at"`
}

// EmailTemplate pre-fills the bulk-email composer. Delivery is the backend's
// concern.
type EmailTemplate struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// BlogPost is a published or draft article.
type BlogPost struct {
	ID               int    `json:"id"`
	Title            string `json:"title"`
	Slug             string `json:"slug"`
	ShortDescription string `json:"short_description"`
	Body             string `json:"body"` // HTML
	Image            string `json:"image"`
	Category         string `json:"category"`
	Published        bool   `json:"published"`
	CreatedAt        string `json:"created_at"`
}

// JobApplication is read-only from the admin console; it is created from the
// public Careers page.
type JobApplication struct {
	ID             int    `json:"id"`
	ApplicantName  string `json:"applicant_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	LinkedInURL    string `json:"linkedin_url"`
	ResumeFile     string `json:"resume_file"`
	ResumeLink     string `json:"resume_link"`
	CoverLetter    string `json:"cover_letter"`
	ReferralSource string `json:"referral_source"`
	Job            int    `json:"job"`
	AppliedAt      string `json:"applied_at"`
}

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
)

// SupportTicket is a support request filed from the public Contact page.
type SupportTicket struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Subject     string       `json:"subject"`
	Priority    string       `json:"priority"` // low, medium, high
	Description string       `json:"description"`
	Status      TicketStatus `json:"status"`
	CreatedAt   string       `json:"created_at"`
}

// Profile is the admin user's own account record. Password is write-only.
type Profile struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Role         string `json:"role"`
	LinkedInURL  string `json:"linkedin_url"`
	TwitterURL   string `json:"twitter_url"`
	ProfileImage string `json:"profile_image"`
}

// AuthSession is the login/setup-completion response body.
type AuthSession struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	UserID int    `json:"user_id"`
}

// SystemStatus reports whether first-run setup has been completed.
type SystemStatus struct {
	IsSetupComplete bool `json:"is_setup_complete"`
}

// ChatReply is the chat endpoint's answer to one message. Exactly one of
// {NextQuestion, Error} is meaningful; a nil NextField on a non-error reply
// means the flow is complete.
type ChatReply struct {
	NextQuestion string  `json:"next_question"`
	NextField    *string `json:"next_field"`
	Error        string  `json:"error"`
}

// Aggregate page payloads. Each public page issues one GET that returns the
// section's singleton content plus its named collections.

type HomePage struct {
	Content      PageContent   `json:"content"`
	Features     []ContentItem `json:"features"`
	Stats        []ContentItem `json:"stats"`
	Testimonials []ContentItem `json:"testimonials"`
}

type AboutPage struct {
	Content   PageContent   `json:"content"`
	Team      []ContentItem `json:"team"`
	TechStack []ContentItem `json:"tech_stack"`
	Awards    []ContentItem `json:"awards"`
}

type ServicesPage struct {
	Content  PageContent   `json:"content"`
	Services []ContentItem `json:"services"`
	Process  []ContentItem `json:"process_steps"`
	FAQs     []ContentItem `json:"service_faq"`
}

type CareersPage struct {
	Content  PageContent   `json:"content"`
	Benefits []ContentItem `json:"benefits"`
	Jobs     []ContentItem `json:"job_postings"`
}

type ContactPage struct {
	Content PageContent   `json:"content"`
	FAQs    []ContentItem `json:"contact_faq"`
}

type ResourcesPage struct {
	Content   PageContent   `json:"content"`
	Downloads []ContentItem `json:"downloads"`
	Links     []ContentItem `json:"links"`
}

type SolutionsPage struct {
	Content   PageContent   `json:"content"`
	Solutions []ContentItem `json:"solutions"`
}

// DashboardStats is an admin-dashboard summary assembled from several
// collection fetches.
type DashboardStats struct {
	Leads        int
	NewLeads     int
	Subscribers  int
	Posts        int
	Tickets      int
	Applications int
}
