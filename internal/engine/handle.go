// Package engine exposes the opaque run-handle surface a host harness
// calls through (spec.md §4.7): load assumption data, run a
// valuation, and read results back, with a per-handle last-error
// accessor in place of panics or exceptions at the process boundary.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/rgehrsitz/nslv/internal/calculation"
	"github.com/rgehrsitz/nslv/internal/domain"
	"github.com/rgehrsitz/nslv/internal/workerpool"
)

// Status is the coarse-grained terminal state of a handle's last run.
type Status int

const (
	StatusUnset Status = iota
	StatusOK
	StatusCancelled
	StatusTimedOut
	StatusFailed
)

// Handle is an opaque, single-run-at-a-time valuation context. All
// interior object lifetimes (policies, tables, scenarios, results) are
// bounded by the handle, matching the teacher's convention of a
// top-level engine struct owning every subordinate calculator.
type Handle struct {
	id uuid.UUID

	mu        sync.Mutex
	portfolio []domain.Policy
	mortality *domain.MortalityTable
	lapse     *domain.LapseTable
	expenses  domain.ExpenseAssumptions
	hasExpenses bool

	result    *domain.ValuationResult
	status    Status
	lastError *calculation.CodedError

	logger calculation.Logger
}

// NewHandle creates a handle with a fresh run id and a no-op logger.
func NewHandle() *Handle {
	return &Handle{id: uuid.New(), logger: calculation.NopLogger{}}
}

// SetLogger overrides the handle's logger (default NopLogger).
func (h *Handle) SetLogger(l calculation.Logger) {
	h.logger = l
}

// ID returns the handle's run identifier, which the CLI's run command
// puts in its error message to distinguish concurrent runs in one process.
func (h *Handle) ID() string {
	return h.id.String()
}

func (h *Handle) fail(err *calculation.CodedError) {
	h.lastError = err
	h.status = StatusFailed
}

// LastError returns the human-readable description of the most recent
// failure on this handle, or "" if the handle has not failed.
func (h *Handle) LastError() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.lastError == nil {
		return ""
	}
	return h.lastError.Error()
}

// LastErrorCode returns the machine-readable code of the most recent
// failure, or "" if none.
func (h *Handle) LastErrorCode() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.lastError == nil {
		return ""
	}
	return h.lastError.Code
}

// Status returns the handle's last terminal run status.
func (h *Handle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// LoadPolicies parses and installs the policy set from serialized
// records. Duplicate policy ids are a warning, not a load failure.
func (h *Handle) LoadPolicies(buf []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(buf)%domain.PolicyRecordSize != 0 {
		err := errInputValidation("policy_size_mismatch", "policy buffer length is not a multiple of the record size")
		h.fail(err)
		return 0, err
	}
	count := len(buf) / domain.PolicyRecordSize
	seen := make(map[uint64]bool, count)
	policies := make([]domain.Policy, 0, count)
	for i := 0; i < count; i++ {
		p, err := domain.UnmarshalPolicy(buf[i*domain.PolicyRecordSize : (i+1)*domain.PolicyRecordSize])
		if err != nil {
			cerr := wrapInputValidation("policy_malformed", "malformed policy record", err)
			h.fail(cerr)
			return 0, cerr
		}
		if err := p.Validate(); err != nil {
			cerr := wrapInputValidation("policy_invalid", "policy failed validation", err)
			h.fail(cerr)
			return 0, cerr
		}
		if seen[p.PolicyID] {
			h.logger.Warnf("duplicate policy id %d at record %d, keeping first occurrence", p.PolicyID, i)
			continue
		}
		seen[p.PolicyID] = true
		policies = append(policies, p)
	}
	h.portfolio = policies
	return len(policies), nil
}

// LoadMortality parses and installs the mortality table.
func (h *Handle) LoadMortality(buf []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, err := domain.UnmarshalMortalityTable(buf)
	if err != nil {
		cerr := wrapInputValidation("mortality_invalid", "malformed or out-of-range mortality table", err)
		h.fail(cerr)
		return cerr
	}
	h.mortality = t
	return nil
}

// LoadLapse parses and installs the lapse table.
func (h *Handle) LoadLapse(buf []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, err := domain.UnmarshalLapseTable(buf)
	if err != nil {
		cerr := wrapInputValidation("lapse_invalid", "malformed or out-of-range lapse table", err)
		h.fail(cerr)
		return cerr
	}
	h.lapse = t
	return nil
}

// LoadExpenses parses and installs the expense constants.
func (h *Handle) LoadExpenses(buf []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, err := domain.UnmarshalExpenseAssumptions(buf)
	if err != nil {
		cerr := wrapInputValidation("expenses_invalid", "malformed expense constants", err)
		h.fail(cerr)
		return cerr
	}
	if err := e.Validate(); err != nil {
		cerr := wrapInputValidation("expenses_negative", "negative expense constant", err)
		h.fail(cerr)
		return cerr
	}
	h.expenses = e
	h.hasExpenses = true
	return nil
}

// RunConfig carries run_valuation's config fields (spec.md §4.7).
type RunConfig struct {
	ScenarioCount      int
	Seed               uint64
	ScenarioParams     calculation.ScenarioParams
	Multipliers        calculation.Multipliers
	RetainDistribution bool
	WorkerCount        int

	// ScenarioSource selects how the scenario set is built: "gbm"
	// (default, the seeded GBM generator) or "historical" (bootstrap
	// resampling from HistoricalRates).
	ScenarioSource string
	// HistoricalRates must be set when ScenarioSource is "historical".
	HistoricalRates *calculation.HistoricalRateSeries
}

// RunValuation validates the handle's loaded state and config, then
// generates the scenario set (single-threaded, deterministic) and fans
// the nested-stochastic valuation out across RunConfig.WorkerCount
// workers, storing the reduced result on the handle.
func (h *Handle) RunValuation(ctx context.Context, cfg RunConfig) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.validateForRun(cfg); err != nil {
		h.fail(err)
		return err
	}

	var scenarios domain.ScenarioSet
	var err error
	switch cfg.ScenarioSource {
	case "", "gbm":
		scenarios, err = calculation.GenerateScenarioSet(cfg.ScenarioCount, cfg.ScenarioParams, cfg.Seed)
		if err != nil {
			cerr := wrapConfiguration("scenario_params_invalid", "invalid scenario generation parameters", err)
			h.fail(cerr)
			return cerr
		}
	case "historical":
		if cfg.HistoricalRates == nil {
			cerr := errConfiguration("missing_historical_rates", "scenario source is historical but no historical rate series was loaded")
			h.fail(cerr)
			return cerr
		}
		scenarios, err = cfg.HistoricalRates.GenerateBootstrapScenarioSet(cfg.ScenarioCount, cfg.Seed)
		if err != nil {
			cerr := wrapConfiguration("scenario_params_invalid", "invalid historical bootstrap parameters", err)
			h.fail(cerr)
			return cerr
		}
	default:
		cerr := errConfiguration("unknown_scenario_source", fmt.Sprintf("unknown scenario source %q", cfg.ScenarioSource))
		h.fail(cerr)
		return cerr
	}

	tables := calculation.Tables{Mortality: h.mortality, Lapse: h.lapse, Expenses: h.expenses}

	npvs, err := workerpool.Run(ctx, h.portfolio, tables, scenarios, cfg.Multipliers, cfg.WorkerCount)
	if err != nil {
		if ctx.Err() != nil {
			h.status = StatusCancelled
			cerr := wrapRuntime("cancelled", "valuation cancelled", err)
			h.lastError = cerr
			return cerr
		}
		cerr := wrapRuntime("worker_failed", "valuation worker failed", err)
		h.fail(cerr)
		return cerr
	}

	result := calculation.ReduceStatistics(npvs, cfg.RetainDistribution)
	h.result = &result
	h.status = StatusOK
	h.lastError = nil
	return nil
}

func (h *Handle) validateForRun(cfg RunConfig) *calculation.CodedError {
	if h.mortality == nil {
		return errConfiguration("missing_mortality", "no mortality table loaded")
	}
	if h.lapse == nil {
		return errConfiguration("missing_lapse", "no lapse table loaded")
	}
	if !h.hasExpenses {
		return errConfiguration("missing_expenses", "no expense constants loaded")
	}
	if cfg.WorkerCount < 0 {
		return errConfiguration("invalid_worker_count", "worker count must be non-negative")
	}
	if cfg.ScenarioCount < 0 {
		return errConfiguration("invalid_scenario_count", "scenario count must be non-negative")
	}
	if cfg.ScenarioCount == 0 && cfg.RetainDistribution {
		return errConfiguration("zero_scenarios_retain_distribution", "scenario count is zero but retain_distribution is true")
	}
	if cfg.Multipliers.Mortality < 0 || cfg.Multipliers.Lapse < 0 || cfg.Multipliers.Expense < 0 {
		return errConfiguration("negative_multiplier", "stress multipliers must be non-negative")
	}
	return nil
}

// Result returns the most recent valuation result, or nil if no
// successful run has completed on this handle.
func (h *Handle) Result() *domain.ValuationResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result
}

// ResultMean, ResultStdDev, ResultPercentile, and ResultCTE95 are thin
// scalar accessors over Result(), matching spec.md §4.7's
// `result_mean / std_dev / percentile(p) / cte95` surface.
func (h *Handle) ResultMean() (float64, error) {
	r, err := h.requireResult()
	if err != nil {
		return 0, err
	}
	return r.Mean, nil
}

func (h *Handle) ResultStdDev() (float64, error) {
	r, err := h.requireResult()
	if err != nil {
		return 0, err
	}
	return r.StdDev, nil
}

func (h *Handle) ResultPercentile(p float64) (float64, error) {
	r, err := h.requireResult()
	if err != nil {
		return 0, err
	}
	switch p {
	case 50:
		return r.Percentiles.P50, nil
	case 75:
		return r.Percentiles.P75, nil
	case 90:
		return r.Percentiles.P90, nil
	case 95:
		return r.Percentiles.P95, nil
	case 99:
		return r.Percentiles.P99, nil
	default:
		return 0, errInputValidation("percentile_unsupported", "only percentiles 50, 75, 90, 95, 99 are available")
	}
}

func (h *Handle) ResultCTE95() (float64, error) {
	r, err := h.requireResult()
	if err != nil {
		return 0, err
	}
	return r.CTE95, nil
}

// DistributionCopy copies up to len(dst) entries of the retained
// distribution into dst, returning the number copied. It errors if the distribution
// was not retained for the last run.
func (h *Handle) DistributionCopy(dst []float64) (int, error) {
	r, err := h.requireResult()
	if err != nil {
		return 0, err
	}
	if r.Distribution == nil {
		return 0, errInputValidation("distribution_not_retained", "distribution was not retained for this run")
	}
	n := copy(dst, r.Distribution)
	return n, nil
}

func (h *Handle) requireResult() (*domain.ValuationResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.result == nil {
		return nil, errInputValidation("invalid_handle", "no completed valuation result on this handle")
	}
	return h.result, nil
}

func errInputValidation(code, msg string) *calculation.CodedError {
	return &calculation.CodedError{Kind: calculation.KindInputValidation, Code: code, Message: msg}
}

func wrapInputValidation(code, msg string, cause error) *calculation.CodedError {
	return &calculation.CodedError{Kind: calculation.KindInputValidation, Code: code, Message: msg, Cause: cause}
}

func errConfiguration(code, msg string) *calculation.CodedError {
	return &calculation.CodedError{Kind: calculation.KindConfiguration, Code: code, Message: msg}
}

func wrapConfiguration(code, msg string, cause error) *calculation.CodedError {
	return &calculation.CodedError{Kind: calculation.KindConfiguration, Code: code, Message: msg, Cause: cause}
}

func wrapRuntime(code, msg string, cause error) *calculation.CodedError {
	return &calculation.CodedError{Kind: calculation.KindRuntime, Code: code, Message: msg, Cause: cause}
}
