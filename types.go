package sitekit

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// Toast is a transient notification surfaced after a mutating action. The
// admin shell renders toasts non-blocking, independently dismissible, and
// auto-dismissed after four seconds.
type Toast struct {
	Kind string // "success" or "error"
	Text string
}
