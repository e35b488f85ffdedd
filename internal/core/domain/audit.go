package domain

import "time"

// DriftKind names the way a stored total disagrees with the allocation rows.
type DriftKind string

const (
	DriftSumMismatch DriftKind = "SUM_MISMATCH" // stored total differs from the sum of allocations
	DriftOverCap     DriftKind = "OVER_CAP"     // stored total exceeds stated or received
	DriftNegative    DriftKind = "NEGATIVE"
)

// LedgerDrift is one inconsistency found by the ledger audit.
type LedgerDrift struct {
	EntityType string    `json:"entityType"` // "invoice" or "collection"
	EntityID   string    `json:"entityID"`
	Kind       DriftKind `json:"kind"`
	Stored     Money     `json:"stored"`
	Expected   Money     `json:"expected"`
}

// AuditReport is the outcome of re-checking every ledger total.
type AuditReport struct {
	CheckedAt          time.Time     `json:"checkedAt"`
	InvoicesChecked    int           `json:"invoicesChecked"`
	CollectionsChecked int           `json:"collectionsChecked"`
	AllocationsChecked int           `json:"allocationsChecked"`
	Drifts             []LedgerDrift `json:"drifts"`
}

// Clean reports whether no drift was found.
func (r AuditReport) Clean() bool {
	return len(r.Drifts) == 0
}
