package validate

import (
	"math"
	"testing"

	"energy-core/internal/model"
)

func validBuffers() ([]model.HourRow, []model.ProposerRow, []model.CommitRow, []model.PricingRow) {
	bess := model.BESSConfig{EmaxOze: 1, EmaxArbi: 1, CapGridExportAC: 1, CapGridImportAC: 1}
	hours := []model.HourRow{
		{Caps: bess, MaskAM: 1, MaskPM: 0, MaskOff: 0},
	}
	proposals := []model.ProposerRow{
		{PropChAC: 0, PropDisAC: 0, CycleCount: 0},
	}
	commit := []model.CommitRow{
		{
			SOCOzeAfter: 0.5, SOCArbiAfter: 0.5,
			ExportFromSurplus: 0.2, ImportForLoad: 0.3,
			RevArbiToGrid: 10, CostGridToArbi: 4, CashflowArbi: 6,
			RevSurplusExport: 2, CostImportForLoad: 1, CashflowNet: 7,
		},
	}
	pricing := []model.PricingRow{
		{Index: 0, Scenario: model.ScenarioGrid, Tariff: model.TariffB21, Total: 100, NettoTotal: 90, VAT: 10},
	}
	return hours, proposals, commit, pricing
}

func TestRun_ValidBuffersPass(t *testing.T) {
	hours, proposals, commit, pricing := validBuffers()
	if err := Run(hours, proposals, commit, pricing, 1); err != nil {
		t.Fatalf("unexpected error on valid buffers: %v", err)
	}
}

func TestRun_RowCountMismatch(t *testing.T) {
	hours, proposals, commit, pricing := validBuffers()
	if err := Run(hours, append(proposals, model.ProposerRow{}), commit, pricing, 1); err == nil {
		t.Fatalf("expected row-count parity error")
	}
}

func TestRun_MaskSumNotOne(t *testing.T) {
	hours, proposals, commit, pricing := validBuffers()
	hours[0].MaskAM = 0.5
	if err := Run(hours, proposals, commit, pricing, 1); err == nil {
		t.Fatalf("expected mask-sum error")
	}
}

func TestRun_CycleBudgetExceeded(t *testing.T) {
	hours, proposals, commit, pricing := validBuffers()
	proposals[0].CycleCount = 2
	if err := Run(hours, proposals, commit, pricing, 1); err == nil {
		t.Fatalf("expected daily cycle budget error")
	}
}

func TestRun_NegativeFlowRejected(t *testing.T) {
	hours, proposals, commit, pricing := validBuffers()
	commit[0].DisToLoad = -0.1
	if err := Run(hours, proposals, commit, pricing, 1); err == nil {
		t.Fatalf("expected negative-flow error")
	}
}

func TestRun_ExportCapExceeded(t *testing.T) {
	hours, proposals, commit, pricing := validBuffers()
	commit[0].ExportFromSurplus = 2
	if err := Run(hours, proposals, commit, pricing, 1); err == nil {
		t.Fatalf("expected export cap error")
	}
}

func TestRun_CashflowMismatch(t *testing.T) {
	hours, proposals, commit, pricing := validBuffers()
	commit[0].CashflowNet = 999
	if err := Run(hours, proposals, commit, pricing, 1); err == nil {
		t.Fatalf("expected cashflow_net mismatch error")
	}
}

func TestRun_NonFinitePricingRejected(t *testing.T) {
	hours, proposals, commit, pricing := validBuffers()
	pricing[0].Total = math.NaN()
	if err := Run(hours, proposals, commit, pricing, 1); err == nil {
		t.Fatalf("expected non-finite pricing error")
	}
}
