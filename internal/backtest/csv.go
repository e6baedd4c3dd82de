package backtest

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// WriteCommitCSV exports the per-hour commit buffer, the table an operator
// reconciling a run against the source data actually wants: flows, SOC, and
// net cash per hour.
func WriteCommitCSV(path string, r *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"ts_utc",
		"ch_from_surplus_mwh", "ch_from_grid_mwh", "dis_to_load_mwh", "dis_to_grid_mwh",
		"import_for_load_ac_mwh", "import_for_arbi_ac_mwh",
		"export_from_surplus_ac_mwh", "export_from_arbi_ac_mwh",
		"soc_oze_pct", "soc_arbi_pct",
		"bind_export_cap", "bind_import_cap",
		"cashflow_net_pln",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, c := range r.Commit {
		row := []string{
			fmtTime(r.Hours[i].Calendar.TSUTC),
			fmtFloat(c.ChFromSurplus), fmtFloat(c.ChFromGrid), fmtFloat(c.DisToLoad), fmtFloat(c.DisToGrid),
			fmtFloat(c.ImportForLoad), fmtFloat(c.ImportForArbi),
			fmtFloat(c.ExportFromSurplus), fmtFloat(c.ExportFromArbi),
			fmtFloat(c.SOCOzePct), fmtFloat(c.SOCArbiPct),
			strconv.FormatBool(c.BindExportCap), strconv.FormatBool(c.BindImportCap),
			fmtFloat(c.CashflowNet),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// WritePricingCSV exports the full scenario x tariff x hour pricing buffer.
func WritePricingCSV(path string, r *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"ts_utc", "scenario", "tariff", "energy_mwh", "netto_total_pln", "vat_pln", "total_pln",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, p := range r.Pricing {
		row := []string{
			fmtTime(r.Hours[p.Index].Calendar.TSUTC),
			string(p.Scenario),
			string(p.Tariff),
			fmtFloat(p.EnergyMWh),
			fmtFloat(p.NettoTotal),
			fmtFloat(p.VAT),
			fmtFloat(p.Total),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func fmtTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
