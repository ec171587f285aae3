package models

import (
	"time"
)

// DraftKind distinguishes the two output buckets a validated candidate can
// be promoted into.
type DraftKind string

const (
	DraftKindStatistic DraftKind = "Statistic"
	DraftKindAntistic  DraftKind = "Antistic"
)

// ModerationStatus tracks a draft through the external moderation workflow.
// The generation pipeline only ever writes Pending; later transitions are
// owned by the moderation service.
type ModerationStatus string

const (
	ModerationStatusPending  ModerationStatus = "Pending"
	ModerationStatusApproved ModerationStatus = "Approved"
	ModerationStatusRejected ModerationStatus = "Rejected"
)

// GeneratedDraft is a validated, deduplicated candidate promoted to a
// moderation-pending record. Once persisted, ownership passes to the
// moderation workflow and the pipeline never revisits it.
type GeneratedDraft struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Summary        string           `json:"summary"`
	SourceURL      string           `json:"sourceUrl"`
	SourceCitation string           `json:"sourceCitation"`
	Kind           DraftKind        `json:"kind"`
	Status         ModerationStatus `json:"status"`
	CreatedAt      time.Time        `json:"createdAt"`
}
