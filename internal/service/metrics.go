package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	creditsGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_credits_granted_total",
			Help: "Total credits added to user balances",
		},
		[]string{"reason"},
	)
	creditsSpent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_credits_spent_total",
			Help: "Total credits deducted from user balances",
		},
		[]string{"reason"},
	)
	duplicateClaims = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_duplicate_claims_total",
			Help: "First-time rewards skipped because the cause was already claimed",
		},
	)
	notificationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Notifications persisted, by type",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(creditsGranted)
	prometheus.MustRegister(creditsSpent)
	prometheus.MustRegister(duplicateClaims)
	prometheus.MustRegister(notificationsCreated)
}
