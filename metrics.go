package sitekit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Business counters, served on /metrics next to the per-route HTTP metrics
// when MetricsEnabled is set.
var (
	metricLeadSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sitekit",
		Name:      "lead_submissions_total",
		Help:      "Leads submitted through the public contact form.",
	})
	metricTicketSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sitekit",
		Name:      "support_ticket_submissions_total",
		Help:      "Support tickets submitted through the public contact page.",
	})
	metricApplicationSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sitekit",
		Name:      "job_application_submissions_total",
		Help:      "Job applications submitted through the careers page.",
	})
	metricSubscriptions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sitekit",
		Name:      "newsletter_subscriptions_total",
		Help:      "Newsletter signups through the footer form.",
	})
	metricChatMessages = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sitekit",
		Name:      "chat_messages_total",
		Help:      "Visitor messages accepted by the chat widget.",
	})
)
