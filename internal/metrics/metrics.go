package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Verification Lifecycle Metrics
	VerificationIssuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_verification_issued_total",
		Help: "Total number of verification requests issued.",
	}, []string{"contact_type"})
	VerificationSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_verification_submissions_total",
		Help: "Total number of code submissions by outcome.",
	}, []string{"outcome"}) // outcome: "verified", "invalid_code", "expired", "too_many_attempts", "already_verified", "not_found"

	// Delivery Metrics
	VerificationEmailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_verification_emails_total",
		Help: "Total number of verification emails sent (successful and failed).",
	}, []string{"status"}) // status: "sent" or "failed"
)
