package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/amqp"
	"bilancio/internal/cache"
	"bilancio/internal/core"
)

// BudgetService is the engine's operation surface: the UI collaborator calls
// in with plain data and redraws from what comes back. All mutations
// invalidate the summary cache and, when a broker is configured, publish a
// change event so a detached view can refresh.
type BudgetService struct {
	store        Store
	policy       Policy
	pots         []core.PotDefinition
	summaries    *cache.LRU[core.Balances]
	events       *amqp.Client
	now          func() time.Time
	materializer *Materializer
	simulate     *Simulator
}

// NewBudgetService wires the service. events may be nil; the service then
// runs store-only.
func NewBudgetService(store Store, policy Policy, pots []core.PotDefinition, events *amqp.Client) *BudgetService {
	return &BudgetService{
		store:        store,
		policy:       policy,
		pots:         pots,
		summaries:    cache.NewLRU[core.Balances](64, 5*time.Minute),
		events:       events,
		now:          time.Now,
		materializer: NewMaterializer(policy),
		simulate:     NewSimulator(policy),
	}
}

// AddTransaction records a new movement. When rule is non-nil the entry is
// registered as recurring: the transaction is linked to the rule and both are
// stored, with the add undone if the rule write fails.
func (s *BudgetService) AddTransaction(ctx context.Context, t core.Transaction, rule *core.RecurringRule) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	if rule != nil {
		if rule.ID == "" {
			rule.ID = uuid.NewString()
		}
		t.IsRecurring = true
		t.RecurringID = rule.ID
		if err := rule.Validate(); err != nil {
			return core.Transaction{}, fmt.Errorf("validate rule: %w", err)
		}
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	if err := s.store.AddTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	// The transaction goes in first: a rule left behind without its
	// transaction would be picked up by the next materialization pass.
	if rule != nil {
		if err := s.store.AddRule(ctx, *rule); err != nil {
			if delErr := s.store.DeleteTransaction(ctx, t.ID); delErr != nil {
				slog.WarnContext(ctx, "Failed to remove transaction after rule write failure",
					"transaction_id", t.ID, "error", delErr)
			}
			return core.Transaction{}, fmt.Errorf("add rule: %w", err)
		}
	}

	s.invalidate()
	s.publish(ctx, amqp.KindTransactionCreated, t.ID)
	return t, nil
}

// UpdateTransaction replaces an existing transaction; core.ErrNotFound when
// the id is unknown.
func (s *BudgetService) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}
	existing, err := s.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	found := false
	for _, e := range existing {
		if e.ID == t.ID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("update transaction %s: %w", t.ID, core.ErrNotFound)
	}
	if err := s.store.PutTransaction(ctx, t); err != nil {
		return fmt.Errorf("put transaction: %w", err)
	}
	s.invalidate()
	s.publish(ctx, amqp.KindTransactionUpdated, t.ID)
	return nil
}

// DeleteTransaction removes a movement; core.ErrNotFound when absent.
func (s *BudgetService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.invalidate()
	s.publish(ctx, amqp.KindTransactionDeleted, id)
	return nil
}

// UpdateRule replaces an existing rule (amount changes, active toggles).
// Rules are never deleted; deactivation is the soft delete.
func (s *BudgetService) UpdateRule(ctx context.Context, r core.RecurringRule) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("validate rule: %w", err)
	}
	if err := s.store.PutRule(ctx, r); err != nil {
		return fmt.Errorf("put rule: %w", err)
	}
	s.invalidate()
	s.publish(ctx, amqp.KindRuleUpdated, r.ID)
	return nil
}

// MaterializationReport describes one materialization pass. Failed entries
// carry on-going state: a failed rule leaves the data re-driveable, the next
// pass simply tries again.
type MaterializationReport struct {
	Created int
	Skipped int
	Failed  []RuleFailure
}

// RuleFailure records one rule whose instance could not be written.
type RuleFailure struct {
	RuleID string
	Err    error
}

// RunMaterialization ensures every active rule has exactly one transaction
// instance for the reference month. Instances are written rule-by-rule:
// a failure on one never blocks the others, and an instance that appeared
// concurrently (duplicate id) is counted as skipped, not failed.
func (s *BudgetService) RunMaterialization(ctx context.Context, reference core.Date) (MaterializationReport, error) {
	var report MaterializationReport

	rules, err := s.store.ListRules(ctx)
	if err != nil {
		return report, fmt.Errorf("list rules: %w", err)
	}
	existing, err := s.store.ListTransactions(ctx)
	if err != nil {
		return report, fmt.Errorf("list transactions: %w", err)
	}

	instances := s.materializer.Materialize(rules, existing, reference, s.now())
	for _, instance := range instances {
		if err := s.store.AddTransaction(ctx, instance); err != nil {
			if isDuplicate(err) {
				report.Skipped++
				continue
			}
			slog.ErrorContext(ctx, "Failed to write materialized instance",
				"rule_id", instance.RecurringID,
				"category", instance.Category,
				"error", err)
			report.Failed = append(report.Failed, RuleFailure{RuleID: instance.RecurringID, Err: err})
			continue
		}
		report.Created++
		slog.InfoContext(ctx, "Materialized recurring transaction",
			"rule_id", instance.RecurringID,
			"category", instance.Category,
			"date", instance.Date.String(),
			"amount_cents", instance.Amount.Cents,
			"status", string(instance.Status))
	}

	if report.Created > 0 {
		s.invalidate()
		s.publish(ctx, amqp.KindMaterialized, reference.Month().String())
	}
	return report, nil
}

// Balances computes the aggregated per-account view for the reference date.
// The figure depends only on the reference month, so results are cached per
// (mode, month) until the next mutation.
func (s *BudgetService) Balances(ctx context.Context, mode core.Mode, reference core.Date) (core.Balances, error) {
	key := string(mode) + "|" + reference.Month().String()
	if cached, ok := s.summaries.Get(key); ok {
		return cached, nil
	}
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return core.Balances{}, fmt.Errorf("list transactions: %w", err)
	}
	balances := core.ComputeBalances(txs, mode, reference)
	s.summaries.Set(key, balances)
	return balances, nil
}

// RefreshBalances drops the summary cache and recomputes. Watchers reacting
// to change events call this: the mutation happened in another process, so
// the local cache knows nothing about it.
func (s *BudgetService) RefreshBalances(ctx context.Context, mode core.Mode, reference core.Date) (core.Balances, error) {
	s.invalidate()
	return s.Balances(ctx, mode, reference)
}

// Forecast simulates the bank trajectory between from and to. today is
// captured once here and threaded through; the simulator itself never reads
// the clock.
func (s *BudgetService) Forecast(ctx context.Context, from, to, today core.Date) ([]DailyPoint, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	rules, err := s.store.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	overrides, err := s.store.ListPotOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pot overrides: %w", err)
	}
	return s.simulate.Run(ForecastInput{
		Transactions: txs,
		Rules:        rules,
		Pots:         s.pots,
		Overrides:    overrides,
		From:         from,
		To:           to,
		Today:        today,
	}), nil
}

// Export returns the full transaction collection, a direct reflection of
// current state with no filtering.
func (s *BudgetService) Export(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// ExportJSON renders the full collection as an indented JSON array, the same
// shape Import accepts.
func (s *BudgetService) ExportJSON(ctx context.Context) ([]byte, error) {
	txs, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(txs, "", "  ")
}

// Import replaces the transaction collection with the decoded payload. The
// top-level value must be an array and every record must be valid; anything
// else rejects the whole import and leaves existing data untouched.
func (s *BudgetService) Import(ctx context.Context, data []byte) (int, error) {
	var records []core.Transaction
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrMalformedImport, err)
	}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return 0, fmt.Errorf("%w: record %d: %v", core.ErrMalformedImport, i, err)
		}
	}
	if err := s.store.ReplaceTransactions(ctx, records); err != nil {
		return 0, fmt.Errorf("replace transactions: %w", err)
	}
	s.invalidate()
	s.publish(ctx, amqp.KindImported, fmt.Sprintf("%d", len(records)))
	return len(records), nil
}

func (s *BudgetService) invalidate() {
	s.summaries.Purge()
}

func (s *BudgetService) publish(ctx context.Context, kind amqp.ChangeKind, id string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishChange(ctx, kind, id); err != nil {
		// Events are best-effort notifications; the local write already
		// succeeded.
		slog.WarnContext(ctx, "Failed to publish change event",
			"kind", string(kind), "id", id, "error", err)
	}
}

func isDuplicate(err error) bool {
	return errors.Is(err, core.ErrDuplicateID)
}
