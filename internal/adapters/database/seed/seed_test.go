package seed

import (
	"testing"

	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	entries, requests, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	require.NotEmpty(t, requests)

	for i, e := range entries {
		assert.Equal(t, int64(i+1), e.Sequence)
	}
	assert.True(t, domain.Ledger(entries).Balance().IsPositive())

	beneficiaries := map[string]bool{}
	for _, r := range requests {
		assert.Equal(t, domain.StatusPending, r.Status)
		require.Len(t, r.ActivityLog, 1)
		assert.Equal(t, domain.ActivitySubmitted, r.ActivityLog[0].Action)
		assert.Nil(t, r.Parsed)
		beneficiaries[r.Beneficiary] = true
	}
	assert.True(t, beneficiaries["Sam Miller"])
	assert.True(t, beneficiaries["Katie Miller"])
	assert.True(t, beneficiaries["Jordan Blake"])
}

func TestLoadReturnsFreshCopies(t *testing.T) {
	_, first, err := Load()
	require.NoError(t, err)
	first[0].Status = domain.StatusDenied

	_, second, err := Load()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, second[0].Status)
}
