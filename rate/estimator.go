package rate

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"genlender/shared"
)

// BlockShareSource yields the per-block reward share of a lending position,
// denominated in want and scaled by 10^Decimals. With add set, change is counted
// as if it were already supplied to the market; otherwise it is taken out.
type BlockShareSource interface {
	CompBlockShareInWant(ctx context.Context, change *big.Int, add bool) (*big.Int, error)
}

// Estimator annualizes block share rates from a single source. It keeps no state
// between calls apart from metrics.
type Estimator struct {
	source        BlockShareSource
	params        Params
	blocksPerYear *big.Int
	logger        *zap.Logger
	metrics       *Metrics
}

type Option func(*Estimator)

func WithParams(p Params) Option {
	return func(e *Estimator) { e.params = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Estimator) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(e *Estimator) { e.metrics = m }
}

// NewEstimator creates an estimator over source
func NewEstimator(source BlockShareSource, opts ...Option) (*Estimator, error) {
	if source == nil {
		return nil, fmt.Errorf("rate source cannot be nil")
	}
	e := &Estimator{
		source: source,
		params: DefaultParams(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	e.blocksPerYear = new(big.Int).SetUint64(e.params.BlocksPerYear)
	return e, nil
}

// Params returns the annualization parameters in use
func (e *Estimator) Params() Params {
	return e.params
}

// EstimateAnnualRate projects the yearly rate for position. Source failures are
// returned as-is under ErrSource; there is no retry.
func (e *Estimator) EstimateAnnualRate(ctx context.Context, position *big.Int, simulateAddition bool) (*AnnualizedRate, error) {
	if err := shared.ValidatePosition(position); err != nil {
		return nil, ErrPreconditionFailed("%v", err)
	}

	start := time.Now()
	share, err := e.source.CompBlockShareInWant(ctx, new(big.Int).Set(position), simulateAddition)
	if err == nil {
		switch {
		case share == nil:
			err = fmt.Errorf("source returned no block share")
		case share.Sign() < 0:
			err = fmt.Errorf("source returned negative block share %s", share)
		}
	}
	e.metrics.observeEstimate(simulateAddition, err, time.Since(start))
	if err != nil {
		e.logger.Error("Block share query failed",
			zap.String("position", position.String()),
			zap.Bool("simulate", simulateAddition),
			zap.Error(err),
		)
		return nil, ErrSourceFailed(err)
	}

	rate := &AnnualizedRate{
		BlockShare: new(big.Int).Set(share),
		Raw:        new(big.Int).Mul(share, e.blocksPerYear),
		Decimals:   e.params.Decimals,
	}
	e.metrics.setLastRate(simulateAddition, rate)

	e.logger.Debug("Annualized block share",
		zap.String("position", position.String()),
		zap.Bool("simulate", simulateAddition),
		zap.String("block_share", share.String()),
		zap.Stringer("annual_rate", rate),
	)
	return rate, nil
}

// BaselineRate is the current rate with nothing hypothetically added
func (e *Estimator) BaselineRate(ctx context.Context) (*AnnualizedRate, error) {
	return e.EstimateAnnualRate(ctx, new(big.Int), false)
}

// CheckDiminishingReturns compares the baseline rate with the rate projected after
// adding position to the market. The projected rate must be strictly lower. The
// report is returned alongside an invariant error so callers can print both figures.
func (e *Estimator) CheckDiminishingReturns(ctx context.Context, position *big.Int) (*Report, error) {
	if err := shared.ValidatePosition(position); err != nil {
		return nil, ErrPreconditionFailed("%v", err)
	}
	if position.Sign() == 0 {
		return nil, ErrPreconditionFailed("probe position must be positive")
	}

	baseline, err := e.BaselineRate(ctx)
	if err != nil {
		e.metrics.observeCheck(err)
		return nil, err
	}
	projected, err := e.EstimateAnnualRate(ctx, position, true)
	if err != nil {
		e.metrics.observeCheck(err)
		return nil, err
	}

	report := &Report{
		Position:  new(big.Int).Set(position),
		Baseline:  baseline,
		Projected: projected,
	}

	e.logger.Info("Diminishing returns check",
		zap.String("position", shared.FormatTokenAmount(position, e.params.Decimals)),
		zap.Stringer("baseline_rate", baseline),
		zap.Stringer("projected_rate", projected),
	)

	if projected.Cmp(baseline) >= 0 {
		err := ErrInvariantViolated("projected rate %s after adding %s is not below baseline %s",
			projected, shared.FormatTokenAmount(position, e.params.Decimals), baseline)
		e.metrics.observeCheck(err)
		return report, err
	}
	e.metrics.observeCheck(nil)
	return report, nil
}
