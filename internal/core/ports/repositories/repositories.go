package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// Both fields are usually backed by the same store so that CommitDecision can
// span the two collections.
type RepositoryProvider struct {
	LedgerRepo  LedgerRepositoryFacade
	RequestRepo RequestRepositoryFacade
}
