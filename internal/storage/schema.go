// Package storage is the Postgres-backed persistence layer: per-run
// idempotent schema, upsert-by-(calc_id,ts_utc) stage tables, and the
// durable job queue with NOTIFY/LISTEN debounce-coalescing.
//
// Grounded on _examples/original_source/src/energia_prep2/calc/listener.py
// (SQL_PICK_COALESCE, SQL_MARK_DONE, SQL_INSERT_QUEUED, SQL_EXISTS_FOR_PARAMS)
// and db.py (connection-kwargs pattern, now a sql.DB pool), and on
// _examples/devskill-org-miners-scheduler's go.mod (the pack's only
// Postgres driver, github.com/lib/pq).
package storage

// schema is applied once at startup; every statement is idempotent so it
// can run unconditionally on every process start (spec §5: "per-run DDL is
// idempotent").
const schema = `
CREATE TABLE IF NOT EXISTS calc_runs (
	calc_id      BIGSERIAL PRIMARY KEY,
	params_ts    TIMESTAMPTZ NOT NULL,
	status       TEXT NOT NULL DEFAULT 'queued',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	started_at   TIMESTAMPTZ,
	finished_at  TIMESTAMPTZ,
	error_message TEXT
);

CREATE TABLE IF NOT EXISTS calc_job_queue (
	job_id     BIGSERIAL PRIMARY KEY,
	calc_id    BIGINT NOT NULL REFERENCES calc_runs(calc_id),
	params_ts  TIMESTAMPTZ NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (params_ts)
);

CREATE TABLE IF NOT EXISTS snapshot_raw (
	calc_id  BIGINT NOT NULL REFERENCES calc_runs(calc_id),
	form     TEXT NOT NULL,
	payload  JSONB NOT NULL,
	PRIMARY KEY (calc_id, form)
);

CREATE TABLE IF NOT EXISTS snapshot_norm (
	calc_id BIGINT PRIMARY KEY REFERENCES calc_runs(calc_id),
	payload JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS stage01_hourly (
	calc_id      BIGINT NOT NULL REFERENCES calc_runs(calc_id),
	ts_utc       TIMESTAMPTZ NOT NULL,
	price_import DOUBLE PRECISION,
	price_export DOUBLE PRECISION,
	mask_am      DOUBLE PRECISION NOT NULL,
	mask_pm      DOUBLE PRECISION NOT NULL,
	mask_off     DOUBLE PRECISION NOT NULL,
	mask_peak_fee DOUBLE PRECISION NOT NULL,
	prod_total   DOUBLE PRECISION NOT NULL,
	load         DOUBLE PRECISION NOT NULL,
	surplus_net  DOUBLE PRECISION NOT NULL,
	deficit_net  DOUBLE PRECISION NOT NULL,
	bonus_hrs_ch  DOUBLE PRECISION NOT NULL,
	bonus_hrs_dis DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (calc_id, ts_utc)
);

CREATE TABLE IF NOT EXISTS stage02_proposer (
	calc_id      BIGINT NOT NULL REFERENCES calc_runs(calc_id),
	ts_utc       TIMESTAMPTZ NOT NULL,
	prop_ch_ac_mwh  DOUBLE PRECISION NOT NULL,
	prop_dis_ac_mwh DOUBLE PRECISION NOT NULL,
	dec_ch  BOOLEAN NOT NULL,
	dec_dis BOOLEAN NOT NULL,
	thr_low  DOUBLE PRECISION NOT NULL,
	thr_high DOUBLE PRECISION NOT NULL,
	delta_k  DOUBLE PRECISION,
	soc_sim_mwh DOUBLE PRECISION NOT NULL,
	pending_mwh DOUBLE PRECISION NOT NULL,
	cycle_count INT NOT NULL,
	pair_low  INT,
	pair_high INT,
	PRIMARY KEY (calc_id, ts_utc)
);

CREATE TABLE IF NOT EXISTS stage03_commit (
	calc_id BIGINT NOT NULL REFERENCES calc_runs(calc_id),
	ts_utc  TIMESTAMPTZ NOT NULL,
	ch_from_surplus_mwh DOUBLE PRECISION NOT NULL,
	ch_from_grid_mwh    DOUBLE PRECISION NOT NULL,
	dis_to_load_mwh     DOUBLE PRECISION NOT NULL,
	dis_to_grid_mwh     DOUBLE PRECISION NOT NULL,
	import_for_load_ac_mwh  DOUBLE PRECISION NOT NULL,
	import_for_arbi_ac_mwh  DOUBLE PRECISION NOT NULL,
	export_from_surplus_ac_mwh DOUBLE PRECISION NOT NULL,
	export_from_arbi_ac_mwh    DOUBLE PRECISION NOT NULL,
	soc_oze_before_mwh  DOUBLE PRECISION NOT NULL,
	soc_oze_after_mwh   DOUBLE PRECISION NOT NULL,
	soc_arbi_before_mwh DOUBLE PRECISION NOT NULL,
	soc_arbi_after_mwh  DOUBLE PRECISION NOT NULL,
	soc_oze_pct  DOUBLE PRECISION NOT NULL,
	soc_arbi_pct DOUBLE PRECISION NOT NULL,
	loss_idle_oze DOUBLE PRECISION NOT NULL,
	loss_idle_arbi DOUBLE PRECISION NOT NULL,
	loss_conv_ch DOUBLE PRECISION NOT NULL,
	loss_conv_dis_to_grid DOUBLE PRECISION NOT NULL,
	loss_conv_dis_to_load DOUBLE PRECISION NOT NULL,
	wasted_surplus_due_to_export_cap DOUBLE PRECISION NOT NULL,
	unserved_load_after_cap DOUBLE PRECISION NOT NULL,
	bind_export_cap BOOLEAN NOT NULL,
	bind_import_cap BOOLEAN NOT NULL,
	rev_arbi_to_grid_pln DOUBLE PRECISION NOT NULL,
	rev_surplus_export_pln DOUBLE PRECISION NOT NULL,
	cost_grid_to_arbi_pln DOUBLE PRECISION NOT NULL,
	cost_import_for_load_pln DOUBLE PRECISION NOT NULL,
	cashflow_arbi_pln DOUBLE PRECISION NOT NULL,
	cashflow_net_pln DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (calc_id, ts_utc)
);

CREATE TABLE IF NOT EXISTS stage04_pricing (
	calc_id  BIGINT NOT NULL REFERENCES calc_runs(calc_id),
	ts_utc   TIMESTAMPTZ NOT NULL,
	scenario TEXT NOT NULL,
	tariff   TEXT NOT NULL,
	energy_mwh DOUBLE PRECISION NOT NULL,
	commodity_pln DOUBLE PRECISION NOT NULL,
	commercial_var_pln DOUBLE PRECISION NOT NULL,
	commercial_fixed_pln DOUBLE PRECISION NOT NULL,
	trading_fee_pln DOUBLE PRECISION NOT NULL,
	distribution_var_pln DOUBLE PRECISION NOT NULL,
	distribution_fixed_pln DOUBLE PRECISION NOT NULL,
	system_oze_kog_pln DOUBLE PRECISION NOT NULL,
	capacity_fee_pln DOUBLE PRECISION NOT NULL,
	k_bucket TEXT,
	k_coefficient DOUBLE PRECISION,
	excise_pln DOUBLE PRECISION NOT NULL,
	netto_total_pln DOUBLE PRECISION NOT NULL,
	vat_pln DOUBLE PRECISION NOT NULL,
	total_pln DOUBLE PRECISION NOT NULL,
	pln_loss_conv_ch DOUBLE PRECISION NOT NULL,
	pln_loss_conv_dis_to_grid DOUBLE PRECISION NOT NULL,
	pln_loss_conv_dis_to_load DOUBLE PRECISION NOT NULL,
	pln_loss_idle_arbi DOUBLE PRECISION NOT NULL,
	pln_loss_idle_oze DOUBLE PRECISION NOT NULL,
	pln_wasted_surplus_cap DOUBLE PRECISION NOT NULL,
	pln_cap_blocked_dis_ac DOUBLE PRECISION NOT NULL,
	pln_cap_blocked_ch_ac DOUBLE PRECISION NOT NULL,
	pln_unserved_load_after_cap DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (calc_id, ts_utc, scenario, tariff)
);
`
