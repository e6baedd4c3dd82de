package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"energy-core/internal/model"
)

// Store wraps a pooled Postgres connection. Each run uses a dedicated
// connection from the pool for the duration of its transaction (spec §5:
// "Each run uses a dedicated connection from a pool (bounded size)").
type Store struct {
	db *sql.DB
}

// Open connects to Postgres via lib/pq and bounds the pool size.
func Open(dsn string, maxOpenConns int) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	return &Store{db: db}, nil
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Migrate applies the idempotent schema.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// CreateRun inserts a new calc_runs row in 'queued' status and returns its
// calc_id.
func (s *Store) CreateRun(ctx context.Context, paramsTS time.Time) (int64, error) {
	var calcID int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO calc_runs (params_ts, status) VALUES ($1, 'queued') RETURNING calc_id`,
		paramsTS,
	).Scan(&calcID)
	return calcID, err
}

// MarkRunRunning transitions a run to 'running' and stamps started_at.
func (s *Store) MarkRunRunning(ctx context.Context, calcID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE calc_runs SET status='running', started_at=now() WHERE calc_id=$1`, calcID)
	return err
}

// MarkRunDone transitions a run to 'done' and stamps finished_at.
func (s *Store) MarkRunDone(ctx context.Context, calcID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE calc_runs SET status='done', finished_at=now() WHERE calc_id=$1`, calcID)
	return err
}

// MarkRunFailed transitions a run to 'failed' with a truncated reason (spec
// §7: "writes a failed status with a truncated message (≤ 8 KB)").
func (s *Store) MarkRunFailed(ctx context.Context, calcID int64, reason string) error {
	const maxLen = 8 * 1024
	if len(reason) > maxLen {
		reason = reason[:maxLen]
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE calc_runs SET status='failed', finished_at=now(), error_message=$2 WHERE calc_id=$1`,
		calcID, reason)
	return err
}

// RunOutputs bundles a complete run's buffers for atomic persistence.
type RunOutputs struct {
	CalcID       int64
	SnapshotRaw  map[string]any
	SnapshotNorm any
	Hours        []model.HourRow
	Proposals    []model.ProposerRow
	Commit       []model.CommitRow
	Pricing      []model.PricingRow
}

// PersistAll writes the raw snapshot, the consolidated snapshot, and all
// four stage buffers in a single transaction, committed once (spec §5:
// "database writes for stages appear in the persisted order 01→02→03→04,
// committed in a single transaction per run").
func (s *Store) PersistAll(ctx context.Context, out RunOutputs) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for form, payload := range out.SnapshotRaw {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal snapshot_raw[%s]: %w", form, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snapshot_raw (calc_id, form, payload) VALUES ($1,$2,$3)
			 ON CONFLICT (calc_id, form) DO UPDATE SET payload=EXCLUDED.payload`,
			out.CalcID, form, raw); err != nil {
			return fmt.Errorf("persist snapshot_raw[%s]: %w", form, err)
		}
	}

	normRaw, err := json.Marshal(out.SnapshotNorm)
	if err != nil {
		return fmt.Errorf("marshal snapshot_norm: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_norm (calc_id, payload) VALUES ($1,$2)
		 ON CONFLICT (calc_id) DO UPDATE SET payload=EXCLUDED.payload`,
		out.CalcID, normRaw); err != nil {
		return fmt.Errorf("persist snapshot_norm: %w", err)
	}

	for i, h := range out.Hours {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stage01_hourly (
				calc_id, ts_utc, price_import, price_export, mask_am, mask_pm, mask_off, mask_peak_fee,
				prod_total, load, surplus_net, deficit_net, bonus_hrs_ch, bonus_hrs_dis
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
			ON CONFLICT (calc_id, ts_utc) DO UPDATE SET
				price_import=EXCLUDED.price_import, price_export=EXCLUDED.price_export,
				mask_am=EXCLUDED.mask_am, mask_pm=EXCLUDED.mask_pm, mask_off=EXCLUDED.mask_off,
				mask_peak_fee=EXCLUDED.mask_peak_fee, prod_total=EXCLUDED.prod_total, load=EXCLUDED.load,
				surplus_net=EXCLUDED.surplus_net, deficit_net=EXCLUDED.deficit_net,
				bonus_hrs_ch=EXCLUDED.bonus_hrs_ch, bonus_hrs_dis=EXCLUDED.bonus_hrs_dis`,
			out.CalcID, h.Calendar.TSUTC, nanToNull(h.PriceImport), nanToNull(h.PriceExport),
			h.MaskAM, h.MaskPM, h.MaskOff, h.MaskPeakFee, h.ProdTotal, h.Load,
			h.SurplusNet, h.DeficitNet, h.BonusHrsCh, h.BonusHrsDis,
		); err != nil {
			return fmt.Errorf("persist stage01_hourly[%d]: %w", i, err)
		}
	}

	for i, p := range out.Proposals {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stage02_proposer (
				calc_id, ts_utc, prop_ch_ac_mwh, prop_dis_ac_mwh, dec_ch, dec_dis,
				thr_low, thr_high, delta_k, soc_sim_mwh, pending_mwh, cycle_count, pair_low, pair_high
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
			ON CONFLICT (calc_id, ts_utc) DO UPDATE SET
				prop_ch_ac_mwh=EXCLUDED.prop_ch_ac_mwh, prop_dis_ac_mwh=EXCLUDED.prop_dis_ac_mwh,
				dec_ch=EXCLUDED.dec_ch, dec_dis=EXCLUDED.dec_dis, thr_low=EXCLUDED.thr_low,
				thr_high=EXCLUDED.thr_high, delta_k=EXCLUDED.delta_k, soc_sim_mwh=EXCLUDED.soc_sim_mwh,
				pending_mwh=EXCLUDED.pending_mwh, cycle_count=EXCLUDED.cycle_count,
				pair_low=EXCLUDED.pair_low, pair_high=EXCLUDED.pair_high`,
			out.CalcID, out.Hours[i].Calendar.TSUTC, p.PropChAC, p.PropDisAC, p.DecCh, p.DecDis,
			p.ThrLow, p.ThrHigh, deltaKOrNull(p), p.SOCSim, p.Pending, p.CycleCount,
			indexOrNull(p.PairLow), indexOrNull(p.PairHigh),
		); err != nil {
			return fmt.Errorf("persist stage02_proposer[%d]: %w", i, err)
		}
	}

	for i, c := range out.Commit {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stage03_commit (
				calc_id, ts_utc, ch_from_surplus_mwh, ch_from_grid_mwh, dis_to_load_mwh, dis_to_grid_mwh,
				import_for_load_ac_mwh, import_for_arbi_ac_mwh, export_from_surplus_ac_mwh, export_from_arbi_ac_mwh,
				soc_oze_before_mwh, soc_oze_after_mwh, soc_arbi_before_mwh, soc_arbi_after_mwh,
				soc_oze_pct, soc_arbi_pct, loss_idle_oze, loss_idle_arbi, loss_conv_ch,
				loss_conv_dis_to_grid, loss_conv_dis_to_load, wasted_surplus_due_to_export_cap,
				unserved_load_after_cap, bind_export_cap, bind_import_cap,
				rev_arbi_to_grid_pln, rev_surplus_export_pln, cost_grid_to_arbi_pln,
				cost_import_for_load_pln, cashflow_arbi_pln, cashflow_net_pln
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31)
			ON CONFLICT (calc_id, ts_utc) DO UPDATE SET
				ch_from_surplus_mwh=EXCLUDED.ch_from_surplus_mwh, ch_from_grid_mwh=EXCLUDED.ch_from_grid_mwh,
				dis_to_load_mwh=EXCLUDED.dis_to_load_mwh, dis_to_grid_mwh=EXCLUDED.dis_to_grid_mwh,
				import_for_load_ac_mwh=EXCLUDED.import_for_load_ac_mwh, import_for_arbi_ac_mwh=EXCLUDED.import_for_arbi_ac_mwh,
				export_from_surplus_ac_mwh=EXCLUDED.export_from_surplus_ac_mwh, export_from_arbi_ac_mwh=EXCLUDED.export_from_arbi_ac_mwh,
				cashflow_net_pln=EXCLUDED.cashflow_net_pln`,
			out.CalcID, out.Hours[i].Calendar.TSUTC,
			c.ChFromSurplus, c.ChFromGrid, c.DisToLoad, c.DisToGrid,
			c.ImportForLoad, c.ImportForArbi, c.ExportFromSurplus, c.ExportFromArbi,
			c.SOCOzeBefore, c.SOCOzeAfter, c.SOCArbiBefore, c.SOCArbiAfter,
			c.SOCOzePct, c.SOCArbiPct, c.LossIdleOze, c.LossIdleArbi, c.LossConvCh,
			c.LossConvDisToGrid, c.LossConvDisToLoad, c.WastedSurplusDueToExportCap,
			c.UnservedLoadAfterCap, c.BindExportCap, c.BindImportCap,
			c.RevArbiToGrid, c.RevSurplusExport, c.CostGridToArbi,
			c.CostImportForLoad, c.CashflowArbi, c.CashflowNet,
		); err != nil {
			return fmt.Errorf("persist stage03_commit[%d]: %w", i, err)
		}
	}

	for i, pr := range out.Pricing {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stage04_pricing (
				calc_id, ts_utc, scenario, tariff, energy_mwh, commodity_pln, commercial_var_pln,
				commercial_fixed_pln, trading_fee_pln, distribution_var_pln, distribution_fixed_pln,
				system_oze_kog_pln, capacity_fee_pln, k_bucket, k_coefficient, excise_pln,
				netto_total_pln, vat_pln, total_pln, pln_loss_conv_ch, pln_loss_conv_dis_to_grid,
				pln_loss_conv_dis_to_load, pln_loss_idle_arbi, pln_loss_idle_oze, pln_wasted_surplus_cap,
				pln_cap_blocked_dis_ac, pln_cap_blocked_ch_ac, pln_unserved_load_after_cap
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28)
			ON CONFLICT (calc_id, ts_utc, scenario, tariff) DO UPDATE SET
				total_pln=EXCLUDED.total_pln, netto_total_pln=EXCLUDED.netto_total_pln, vat_pln=EXCLUDED.vat_pln`,
			out.CalcID, out.Hours[pr.Index].Calendar.TSUTC, string(pr.Scenario), string(pr.Tariff),
			pr.EnergyMWh, pr.Commodity, pr.CommercialVar, pr.CommercialFixed, pr.TradingFee,
			pr.DistributionVar, pr.DistributionFixed, pr.SystemOzeKog, pr.CapacityFee,
			nullIfEmpty(pr.KBucket), nullIfZero(pr.KCoefficient), pr.Excise,
			pr.NettoTotal, pr.VAT, pr.Total,
			pr.PLNLossConvCh, pr.PLNLossConvDisToGrid, pr.PLNLossConvDisToLoad,
			pr.PLNLossIdleArbi, pr.PLNLossIdleOze, pr.PLNWastedSurplusCap,
			pr.PLNCapBlockedDisAC, pr.PLNCapBlockedChAC, pr.PLNUnservedLoadAfterCap,
		); err != nil {
			return fmt.Errorf("persist stage04_pricing[%d]: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `ANALYZE`); err != nil {
		return fmt.Errorf("final analyze: %w", err)
	}

	return tx.Commit()
}

func nanToNull(v float64) any {
	if v != v { // NaN
		return nil
	}
	return v
}

func deltaKOrNull(p model.ProposerRow) any {
	if !p.HasDeltaK {
		return nil
	}
	return p.DeltaK
}

func indexOrNull(i int) any {
	if i < 0 {
		return nil
	}
	return i
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}
