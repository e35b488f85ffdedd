package dto

import "github.com/SscSPs/neuron_ledger/internal/core/domain"

// LedgerDriftResponse is one inconsistency found by the audit.
type LedgerDriftResponse struct {
	EntityType string        `json:"entityType"`
	EntityID   string        `json:"entityID"`
	Kind       string        `json:"kind" enums:"SUM_MISMATCH,OVER_CAP,NEGATIVE"`
	Stored     MoneyResponse `json:"stored"`
	Expected   MoneyResponse `json:"expected"`
}

// AuditReportResponse is the result of a ledger audit.
type AuditReportResponse struct {
	CheckedAt          string                `json:"checkedAt"`
	Clean              bool                  `json:"clean"`
	InvoicesChecked    int                   `json:"invoicesChecked"`
	CollectionsChecked int                   `json:"collectionsChecked"`
	AllocationsChecked int                   `json:"allocationsChecked"`
	Drifts             []LedgerDriftResponse `json:"drifts"`
}

// ToAuditReportResponse converts a domain.AuditReport.
func ToAuditReportResponse(r *domain.AuditReport) AuditReportResponse {
	res := AuditReportResponse{
		CheckedAt:          r.CheckedAt.UTC().Format(timestampLayout),
		Clean:              r.Clean(),
		InvoicesChecked:    r.InvoicesChecked,
		CollectionsChecked: r.CollectionsChecked,
		AllocationsChecked: r.AllocationsChecked,
		Drifts:             make([]LedgerDriftResponse, len(r.Drifts)),
	}
	for i, d := range r.Drifts {
		res.Drifts[i] = LedgerDriftResponse{
			EntityType: d.EntityType,
			EntityID:   d.EntityID,
			Kind:       string(d.Kind),
			Stored:     ToMoneyResponse(d.Stored),
			Expected:   ToMoneyResponse(d.Expected),
		}
	}
	return res
}
