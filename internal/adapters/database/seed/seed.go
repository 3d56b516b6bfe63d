// Package seed holds the fixed data set the desk is reset to.
package seed

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/SscSPs/trust_desk_app/internal/core/domain"
)

//go:embed ledger.json requests.json
var files embed.FS

// Load returns fresh copies of the seed ledger and request queue. Entries get
// sequence numbers in file order. Requests without a status are pending and
// get a submitted event when their log is empty.
func Load() ([]domain.LedgerEntry, []domain.TrustRequest, error) {
	var entries []domain.LedgerEntry
	if err := decode("ledger.json", &entries); err != nil {
		return nil, nil, err
	}
	for i := range entries {
		entries[i].Sequence = int64(i + 1)
		if !entries[i].Type.IsValid() || !entries[i].Amount.IsPositive() {
			return nil, nil, fmt.Errorf("seed ledger entry %s is invalid", entries[i].ID)
		}
	}

	var requests []domain.TrustRequest
	if err := decode("requests.json", &requests); err != nil {
		return nil, nil, err
	}
	for i := range requests {
		r := &requests[i]
		if r.Status == "" {
			r.Status = domain.StatusPending
		}
		if len(r.ActivityLog) == 0 {
			r.ActivityLog = []domain.ActivityEvent{{
				Timestamp: r.SubmittedAt,
				Action:    domain.ActivitySubmitted,
				Actor:     r.Beneficiary,
			}}
		}
	}
	return entries, requests, nil
}

func decode(name string, v any) error {
	raw, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read seed file %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode seed file %s: %w", name, err)
	}
	return nil
}
