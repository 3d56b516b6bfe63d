package services

import "context"

// DataService manages whole-store lifecycle operations.
type DataService interface {
	// Reset restores the ledger and the request queue to the seed state.
	Reset(ctx context.Context) error
}
