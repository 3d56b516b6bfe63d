// Package memory is the in-process store for the ledger and the request queue.
// It can mirror both collections to JSON files so a restart keeps the data.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/SscSPs/trust_desk_app/internal/apperrors"
	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	portsrepo "github.com/SscSPs/trust_desk_app/internal/core/ports/repositories"
	"github.com/SscSPs/trust_desk_app/internal/utils/pagination"
)

const (
	ledgerFile   = "ledger.json"
	requestsFile = "requests.json"
)

// Store keeps both collections behind one lock so a decision can touch both atomically.
type Store struct {
	mu       sync.RWMutex
	entries  []domain.LedgerEntry // append order
	requests []domain.TrustRequest
	index    map[string]int // request id -> position in requests
	lastSeq  int64

	snapshotDir string
	logger      *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithSnapshotDir mirrors every write to ledger.json and requests.json in dir.
func WithSnapshotDir(dir string) Option {
	return func(s *Store) {
		s.snapshotDir = dir
	}
}

// WithLogger sets the logger used for snapshot failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty store.
func NewStore(options ...Option) *Store {
	s := &Store{
		index:  map[string]int{},
		logger: slog.Default(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var (
	_ portsrepo.LedgerRepositoryFacade  = (*Store)(nil)
	_ portsrepo.RequestRepositoryFacade = (*Store)(nil)
)

// Load reads the snapshot files when present. It reports whether any data was loaded.
func (s *Store) Load() (bool, error) {
	if s.snapshotDir == "" {
		return false, nil
	}

	var entries []domain.LedgerEntry
	foundLedger, err := readJSON(filepath.Join(s.snapshotDir, ledgerFile), &entries)
	if err != nil {
		return false, err
	}
	var requests []domain.TrustRequest
	foundRequests, err := readJSON(filepath.Join(s.snapshotDir, requestsFile), &requests)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setEntriesLocked(entries)
	s.setRequestsLocked(requests)
	return foundLedger || foundRequests, nil
}

// --- ledger ---

// ListEntries implements portsrepo.LedgerReader
func (s *Store) ListEntries(_ context.Context) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.LedgerEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// ListEntriesPage implements portsrepo.LedgerReader
func (s *Store) ListEntriesPage(ctx context.Context, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	var cursor *pagination.Cursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.Validationf("%v", err)
		}
		cursor = &c
	}

	entries, _ := s.ListEntries(ctx)
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].Sequence > entries[j].Sequence
	})

	page := make([]domain.LedgerEntry, 0, limit)
	hasMore := false
	for _, e := range entries {
		if cursor != nil && !cursor.Before(e.Date, e.Sequence) {
			continue
		}
		if len(page) == limit {
			hasMore = true
			break
		}
		page = append(page, e)
	}

	if !hasMore || len(page) == 0 {
		return page, nil, nil
	}
	last := page[len(page)-1]
	token := pagination.EncodeToken(last.Date, last.Sequence)
	return page, &token, nil
}

// FindEntryByID implements portsrepo.LedgerReader
func (s *Store) FindEntryByID(_ context.Context, entryID string) (*domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == entryID {
			found := e
			return &found, nil
		}
	}
	return nil, apperrors.NotFoundf("ledger entry %s", entryID)
}

// FindEntriesByRequestID implements portsrepo.LedgerReader
func (s *Store) FindEntriesByRequestID(_ context.Context, requestID string) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.LedgerEntry
	for _, e := range s.entries {
		if e.RelatesTo(requestID) {
			out = append(out, e)
		}
	}
	return out, nil
}

// AppendEntry implements portsrepo.LedgerWriter
func (s *Store) AppendEntry(_ context.Context, entry domain.LedgerEntry) (*domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := s.appendLocked(entry)
	if err != nil {
		return nil, err
	}
	s.persistLocked()
	return &stored, nil
}

func (s *Store) appendLocked(entry domain.LedgerEntry) (domain.LedgerEntry, error) {
	if !entry.Amount.IsPositive() {
		return domain.LedgerEntry{}, apperrors.Validationf("ledger amount must be greater than zero")
	}
	if !entry.Type.IsValid() {
		return domain.LedgerEntry{}, apperrors.Validationf("ledger type must be CREDIT or DEBIT, got %q", entry.Type)
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	for _, e := range s.entries {
		if e.ID == entry.ID {
			return domain.LedgerEntry{}, apperrors.Validationf("ledger entry %s already exists", entry.ID)
		}
	}
	s.lastSeq++
	entry.Sequence = s.lastSeq
	entry.Date = entry.Date.UTC()
	s.entries = append(s.entries, entry)
	return entry, nil
}

// ReplaceEntries implements portsrepo.LedgerWriter
func (s *Store) ReplaceEntries(_ context.Context, entries []domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setEntriesLocked(entries)
	s.persistLocked()
	return nil
}

// setEntriesLocked installs a copy of entries, numbering any that lack a sequence.
func (s *Store) setEntriesLocked(entries []domain.LedgerEntry) {
	s.entries = make([]domain.LedgerEntry, len(entries))
	copy(s.entries, entries)
	s.lastSeq = 0
	for _, e := range s.entries {
		if e.Sequence > s.lastSeq {
			s.lastSeq = e.Sequence
		}
	}
	for i := range s.entries {
		if s.entries[i].Sequence == 0 {
			s.lastSeq++
			s.entries[i].Sequence = s.lastSeq
		}
	}
	sort.SliceStable(s.entries, func(i, j int) bool { return s.entries[i].Sequence < s.entries[j].Sequence })
}

// --- requests ---

// FindRequestByID implements portsrepo.RequestReader
func (s *Store) FindRequestByID(_ context.Context, requestID string) (*domain.TrustRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[requestID]
	if !ok {
		return nil, apperrors.NotFoundf("request %s", requestID)
	}
	found := s.requests[i].Clone()
	return &found, nil
}

// ListRequests implements portsrepo.RequestReader
func (s *Store) ListRequests(_ context.Context) ([]domain.TrustRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TrustRequest, len(s.requests))
	for i, r := range s.requests {
		out[i] = r.Clone()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

// CreateRequest implements portsrepo.RequestWriter
func (s *Store) CreateRequest(_ context.Context, request domain.TrustRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.index[request.ID]; exists {
		return apperrors.Validationf("request %s already exists", request.ID)
	}
	s.index[request.ID] = len(s.requests)
	s.requests = append(s.requests, request.Clone())
	s.persistLocked()
	return nil
}

// UpdateRequest implements portsrepo.RequestWriter
func (s *Store) UpdateRequest(_ context.Context, requestID string, patch domain.RequestPatch) (*domain.TrustRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[requestID]
	if !ok {
		return nil, apperrors.NotFoundf("request %s", requestID)
	}
	s.requests[i] = s.requests[i].Apply(patch)
	s.persistLocked()
	updated := s.requests[i].Clone()
	return &updated, nil
}

// ReplaceRequests implements portsrepo.RequestWriter
func (s *Store) ReplaceRequests(_ context.Context, requests []domain.TrustRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRequestsLocked(requests)
	s.persistLocked()
	return nil
}

func (s *Store) setRequestsLocked(requests []domain.TrustRequest) {
	s.requests = make([]domain.TrustRequest, len(requests))
	s.index = make(map[string]int, len(requests))
	for i, r := range requests {
		s.requests[i] = r.Clone()
		s.index[r.ID] = i
	}
}

// CommitDecision implements portsrepo.DecisionCommitter
func (s *Store) CommitDecision(_ context.Context, requestID string, patch domain.RequestPatch, entry *domain.LedgerEntry) (*domain.TrustRequest, *domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[requestID]
	if !ok {
		return nil, nil, apperrors.NotFoundf("request %s", requestID)
	}
	if !s.requests[i].IsPending() {
		return nil, nil, fmt.Errorf("%w (status %s)", apperrors.ErrInvalidState, s.requests[i].Status)
	}

	var stored *domain.LedgerEntry
	if entry != nil {
		appended, err := s.appendLocked(*entry)
		if err != nil {
			return nil, nil, err
		}
		stored = &appended
	}
	s.requests[i] = s.requests[i].Apply(patch)
	s.persistLocked()

	updated := s.requests[i].Clone()
	return &updated, stored, nil
}

// --- snapshots ---

// persistLocked writes both collections. The in-memory state stays
// authoritative, so a failed write is logged and not returned.
func (s *Store) persistLocked() {
	if s.snapshotDir == "" {
		return
	}
	if err := writeJSON(filepath.Join(s.snapshotDir, ledgerFile), s.entries); err != nil {
		s.logger.Error("Failed to write ledger snapshot", slog.String("error", err.Error()))
	}
	if err := writeJSON(filepath.Join(s.snapshotDir, requestsFile), s.requests); err != nil {
		s.logger.Error("Failed to write requests snapshot", slog.String("error", err.Error()))
	}
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}

func readJSON(path string, v any) (bool, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return true, nil
}
