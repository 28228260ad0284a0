// Package metrics defines and registers all custom Prometheus metrics for the
// BeneSafe registry API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package init via
// promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "benesafe"

// ── Entitlement metrics ──────────────────────────────────────────────────────

// PermissionChecksTotal counts capability and feature checks.
// Labels:
//   - check: "capability" or "feature"
//   - result: "allow" or "deny"
var PermissionChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "permission_checks_total",
		Help:      "Total number of capability and bouquet feature checks, by result.",
	},
	[]string{"check", "result"},
)

// QuotaChecksTotal counts quota decisions.
// Labels:
//   - kind: "asset", "beneficiary" or "dependent"
//   - result: "allow" or "deny"
var QuotaChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quota_checks_total",
		Help:      "Total number of bouquet quota checks, by record kind and result.",
	},
	[]string{"kind", "result"},
)

// ResolveErrorsTotal counts profile resolutions that hit a dangling role or
// bouquet reference.
var ResolveErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_resolve_errors_total",
		Help:      "Profile resolutions that failed because a referenced role or bouquet is missing.",
	},
)

// ── Profile metrics ──────────────────────────────────────────────────────────

// VerificationTransitionsTotal counts review decisions.
// Label:
//   - status: "approved" or "rejected"
var VerificationTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verification_transitions_total",
		Help:      "Total number of profile verification decisions.",
	},
	[]string{"status"},
)

// RegistrationsTotal counts new accounts by the bouquet they landed on.
// Label:
//   - bouquet: bouquet name, or "none" when no bouquet could be assigned
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registered users, by bouquet.",
	},
	[]string{"bouquet"},
)

// ── Mail metrics ─────────────────────────────────────────────────────────────

// MailQueueDepth tracks pending messages per dispatcher worker.
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of emails pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// MailSentTotal counts delivery attempts.
// Label:
//   - result: "sent", "failed" or "dropped" (queue full)
var MailSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_sent_total",
		Help:      "Total number of email delivery attempts, by result.",
	},
	[]string{"result"},
)

// Result maps a boolean decision to the "allow"/"deny" label value.
func Result(ok bool) string {
	if ok {
		return "allow"
	}
	return "deny"
}
