package dispatch

import (
	"testing"

	"energy-core/internal/model"
)

func TestRun_ExportCapBindingReversesArbi(t *testing.T) {
	// S4: surplus 5 MWh, cap_grid_export_ac=1, a simultaneous 0.5 MWh_AC ARBI
	// discharge proposal, and 0.5 MWh of the surplus absorbed into ARBI
	// charging ahead of the cap. The cap cut removes the arbi discharge
	// first (reverting its SOC), then curtails the rest from surplus.
	bess := model.BESSConfig{
		EmaxOze:         0,
		EmaxArbi:        10,
		EtaCh:           1,
		EtaDis:          1,
		CapBessChNet:    0.5,
		CapBessDisNet:   10,
		CapGridImportAC: 100,
		CapGridExportAC: 1,
	}
	hours := []model.HourRow{
		{Caps: bess, SurplusNet: 5, DeficitNet: 0, PriceImport: 0, PriceExport: 0},
	}
	proposals := []model.ProposerRow{
		{PropDisAC: 0.5, PropChAC: 0},
	}

	out, final, err := Run(hours, proposals, State{SOCOze: 0, SOCArbi: 1}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := out[0]

	if !c.BindExportCap {
		t.Errorf("bind_export_cap = false, want true")
	}
	if c.CapBlockedDisAC != 0.5 {
		t.Errorf("cap_blocked_dis_ac = %v, want 0.5", c.CapBlockedDisAC)
	}
	if c.ExportFromArbi != 0 {
		t.Errorf("export_from_arbi = %v, want 0 (fully reverted)", c.ExportFromArbi)
	}
	if c.ExportFromSurplus != 1 {
		t.Errorf("export_from_surplus = %v, want 1", c.ExportFromSurplus)
	}
	if c.WastedSurplusDueToExportCap != 3.5 {
		t.Errorf("wasted_surplus_due_to_export_cap = %v, want 3.5", c.WastedSurplusDueToExportCap)
	}
	if final.SOCArbi != 1.5 {
		t.Errorf("final SOC_arbi = %v, want 1.5 (charge 0.5 retained, discharge reverted)", final.SOCArbi)
	}
}

func TestRun_RowCountMismatch(t *testing.T) {
	_, _, err := Run([]model.HourRow{{}}, nil, State{}, false)
	if err == nil {
		t.Fatalf("expected error for mismatched buffer lengths")
	}
}
