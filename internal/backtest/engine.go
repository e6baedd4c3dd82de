// Package backtest orchestrates one complete run of the hourly computation
// pipeline (C0 through C5) over a calendar axis and raw input series,
// producing the full set of stage buffers for persistence or export.
//
// Grounded on the teacher's per-interval loop shape in
// _examples/brianmickel-battery-backtest/internal/backtest/engine.go
// (Engine.Run iterating a single series through one strategy into a
// ledger), generalized from one pass over LMP intervals into a five-stage
// pipeline over the hourly calendar axis per spec §4.
package backtest

import (
	"fmt"

	"energy-core/internal/core"
	"energy-core/internal/dispatch"
	"energy-core/internal/ingest"
	"energy-core/internal/model"
	"energy-core/internal/params"
	"energy-core/internal/pricing"
	"energy-core/internal/proposer"
	"energy-core/internal/validate"
)

// Engine runs the full pipeline for one set of consolidated parameters.
type Engine struct{}

func New() *Engine { return &Engine{} }

// Inputs bundles everything C1 needs beyond the consolidated parameters.
type Inputs struct {
	Calendar []model.HourStamp
	Prices   ingest.PriceSeries
	Prod     ingest.ProductionSeries
	InitSOCOze  float64
	InitSOCArbi float64
}

// Result is the complete output of one run: every stage buffer, ready for
// persistence (internal/storage) or export (WriteCommitCSV, WritePricingCSV).
type Result struct {
	Hours     []model.HourRow
	Proposals []model.ProposerRow
	Commit    []model.CommitRow
	Pricing   []model.PricingRow

	FinalSOCOze  float64
	FinalSOCArbi float64
}

// Run executes C1 (ingest) through C5 (validate) in sequence and returns
// the assembled buffers. C0 (parameter consolidation) happens before Run is
// called, since its output, cons, is Run's input.
func (e *Engine) Run(in Inputs, cons *params.Consolidated) (*Result, error) {
	if cons == nil {
		return nil, core.NewParameterError("consolidated", "nil")
	}
	if len(in.Calendar) == 0 {
		return nil, core.NewDataShapeError("calendar axis", 0, 1)
	}

	hours, err := ingest.Build(in.Calendar, in.Prices, in.Prod, cons)
	if err != nil {
		return nil, fmt.Errorf("C1 ingest: %w", err)
	}

	proposals, err := proposer.Propose(hours, cons.ArbitragePolicy, cons.BESS, in.InitSOCArbi)
	if err != nil {
		return nil, fmt.Errorf("C2 propose: %w", err)
	}

	commit, finalState, err := dispatch.Run(hours, proposals, dispatch.State{
		SOCOze:  in.InitSOCOze,
		SOCArbi: in.InitSOCArbi,
	}, cons.ArbitragePolicy.ArbiDisToLoad)
	if err != nil {
		return nil, fmt.Errorf("C3 dispatch: %w", err)
	}

	priced, err := pricing.Price(hours, commit, cons)
	if err != nil {
		return nil, fmt.Errorf("C4 pricing: %w", err)
	}

	if err := validate.Run(hours, proposals, commit, priced, cons.ArbitragePolicy.CyclesPerDay); err != nil {
		return nil, fmt.Errorf("C5 validate: %w", err)
	}

	return &Result{
		Hours:        hours,
		Proposals:    proposals,
		Commit:       commit,
		Pricing:      priced,
		FinalSOCOze:  finalState.SOCOze,
		FinalSOCArbi: finalState.SOCArbi,
	}, nil
}
