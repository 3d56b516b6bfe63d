package services

import (
	"fmt"

	"github.com/SscSPs/trust_desk_app/internal/core/policy"
	"github.com/SscSPs/trust_desk_app/internal/core/ports"
	portsrepo "github.com/SscSPs/trust_desk_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/trust_desk_app/internal/core/ports/services"
	"github.com/SscSPs/trust_desk_app/internal/platform/config"
	"github.com/SscSPs/trust_desk_app/internal/platform/metrics"
)

// Dependencies are the collaborators the container wires into the services.
type Dependencies struct {
	Repos     portsrepo.RepositoryProvider
	Extractor ports.Extractor
	Seed      SeedLoader
	Metrics   *metrics.Metrics
	Clock     Clock // Defaults to SystemClock
}

// NewPolicyEngine builds the policy engine from configuration.
func NewPolicyEngine(cfg *config.Config) *policy.Engine {
	rules := policy.DefaultRules()
	rules.MonthlyCap = cfg.MonthlyCap
	rules.ReviewThreshold = cfg.ReviewThreshold
	return policy.NewEngine(rules, policy.StaticRegistry(cfg.KnownBeneficiaries))
}

// NewServiceContainer creates a new service container with properly initialized dependencies.
// All services share one policy engine and one commit lock.
func NewServiceContainer(cfg *config.Config, deps Dependencies) *portssvc.ServiceContainer {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock
	}
	engine := NewPolicyEngine(cfg)
	lock := NewCommitLock()
	repos := deps.Repos

	container := &portssvc.ServiceContainer{}

	container.Ledger = NewLedgerService(repos.LedgerRepo, repos.RequestRepo,
		WithLedgerClock(clock),
		WithLedgerCommitLock(lock),
		WithLedgerOfficer(cfg.OfficerName),
	)
	container.Request = NewRequestService(repos.RequestRepo, engine, WithRequestClock(clock))
	container.Approval = NewApprovalService(repos.LedgerRepo, repos.RequestRepo, engine,
		WithApprovalClock(clock),
		WithApprovalCommitLock(lock),
		WithApprovalOfficer(cfg.OfficerName),
		WithApprovalMetrics(deps.Metrics),
	)
	container.Parse = NewParseService(deps.Extractor, repos.LedgerRepo, repos.RequestRepo, engine,
		WithParseClock(clock),
		WithParseCommitLock(lock),
		WithParseActor(fmt.Sprintf("AI (%s)", cfg.AIModel)),
		WithParseMetrics(deps.Metrics),
		WithParseConcurrency(cfg.ParseConcurrency),
	)
	container.Reporting = NewReportingService(repos.LedgerRepo, repos.RequestRepo, engine.Registry(), WithReportingClock(clock))
	container.Data = NewDataService(repos.LedgerRepo, repos.RequestRepo, deps.Seed, lock)

	return container
}
