// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/iliyamo/mufant-museum/internal/provision"
)

// ProvisionedQueue is the durable queue carrying ProvisionedEvent messages.
const ProvisionedQueue = "catalog.provisioned"

// ProvisionedEvent is published after a provisioning run commits. It
// carries enough for downstream consumers to audit the run without querying
// the store.
type ProvisionedEvent struct {
	RunID            string         `json:"run_id"`
	Mode             string         `json:"mode"`
	Catalog          string         `json:"catalog"`
	Activities       int            `json:"activities"`
	Coupons          int            `json:"coupons"`
	ActivitiesByType map[string]int `json:"activities_by_type"`
	StartedAt        string         `json:"started_at"`
	DurationMS       int64          `json:"duration_ms"`
}

// NewProvisionedEvent converts a run summary into its wire form.
func NewProvisionedEvent(s provision.Summary) ProvisionedEvent {
	return ProvisionedEvent{
		RunID:            s.RunID,
		Mode:             string(s.Mode),
		Catalog:          s.Catalog,
		Activities:       s.Activities,
		Coupons:          s.Coupons,
		ActivitiesByType: s.ActivitiesByType,
		StartedAt:        s.StartedAt.UTC().Format(time.RFC3339),
		DurationMS:       s.Duration.Milliseconds(),
	}
}
