// Package params implements C0, the Parameter Consolidator: it reads the
// most recent row of each heterogeneous parameter form, normalizes units,
// derives missing fields, and produces the single consolidated value the
// rest of the pipeline reads.
//
// Grounded on _examples/original_source/src/energia_prep2/calc/00_snapshot.py
// (PARAM_TABLES, REQ_SCALARS/OPT_SCALARS, alias/derivation helpers) and on
// the teacher's BatteryConfig/StrategyConfig merge-and-derive pattern.
package params

import "energy-core/internal/model"

// RawBESSForm is the most recent row of the BESS parameter form. Fractions
// (arbi share, efficiencies, self-discharge) are given only as percent
// fields and converted to fractions at consolidation time, never at access
// time (spec §9 design note); the form has no fraction-valued alias fields.
type RawBESSForm struct {
	EmaxTotalMWh    float64 `yaml:"emax_total_mwh"`
	ArbiFractionPct float64 `yaml:"arbi_fraction_pct"` // percent, e.g. 30 means 30%

	ChargeEfficiencyPct    float64 `yaml:"charge_efficiency_pct"` // percent
	DischargeEfficiencyPct float64 `yaml:"discharge_efficiency_pct"`

	SelfDischargeHourlyPct  float64 `yaml:"self_discharge_hourly_pct"`  // percent per hour, if present
	SelfDischargeDailyPct   float64 `yaml:"self_discharge_daily_pct"`   // percent per day, used if hourly absent
	SelfDischargeMonthlyPct float64 `yaml:"self_discharge_monthly_pct"` // percent per month, used if daily absent too

	// Exactly one of {CRateCh, HoursToFullCh} should be set; the other is derived.
	CRateCh        float64 `yaml:"crate_ch"`
	HoursToFullCh  float64 `yaml:"hours_to_full_ch"`
	CRateDis       float64 `yaml:"crate_dis"`
	HoursToFullDis float64 `yaml:"hours_to_full_dis"`

	// Optional explicit power caps (MW); if absent, derived from capacity and c-rate.
	PowerChMW  float64 `yaml:"power_ch_mw"`
	PowerDisMW float64 `yaml:"power_dis_mw"`
}

// RawContractForm is the grid-connection contract form.
type RawContractForm struct {
	ImportPowerMW   float64 `yaml:"import_power_mw"`
	ExportPowerMW   float64 `yaml:"export_power_mw"`
	ContractPowerKW float64 `yaml:"contract_power_kw"`

	Model               string  `yaml:"model"` // "fixed" | "dynamic"
	FixedPricePLNPerMWh float64 `yaml:"fixed_price_pln_per_mwh"`
	DeltaPct            float64 `yaml:"delta_pct"` // dynamic contract markup percent

	VarMarginPLNPerMWh   float64 `yaml:"var_margin_pln_per_mwh"`
	FixMarginPLNPerMWh   float64 `yaml:"fix_margin_pln_per_mwh"`
	MonthlyTradingFeePLN float64 `yaml:"monthly_trading_fee_pln"`
}

// RawFiscalForm carries VAT and excise.
type RawFiscalForm struct {
	VATPct          float64 `yaml:"vat_pct"` // percent, e.g. 23
	ExcisePLNPerMWh float64 `yaml:"excise_pln_per_mwh"`
}

// RawArbitragePolicyForm is the proposer policy form.
type RawArbitragePolicyForm struct {
	CyclesPerDay   int     `yaml:"cycles_per_day"`
	BaseMinProfit  float64 `yaml:"base_min_profit"`
	PLowPct        float64 `yaml:"p_low_pct"` // percent of EmaxArbi
	PHighPct       float64 `yaml:"p_high_pct"`
	SOCBonusCh     float64 `yaml:"soc_bonus_ch"`
	SOCBonusDis    float64 `yaml:"soc_bonus_dis"`
	HourBonusCh    float64 `yaml:"hour_bonus_ch"`
	HourBonusDis   float64 `yaml:"hour_bonus_dis"`
	AllowCarryOver bool    `yaml:"allow_carry_over"`
	ForceOrder     bool    `yaml:"force_order"`
	ArbiDisToLoad  bool    `yaml:"arbi_dis_to_load"`
	BonusHoursCh   int     `yaml:"bonus_hours_ch"`
	BonusHoursDis  int     `yaml:"bonus_hours_dis"`
}

// WindowSpec is a [start,end) hour window on the 24h ring, expressed in
// whole hours. start==end==0 denotes an empty window.
type WindowSpec struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// RawDistScheduleForm is one (tariff, month, mode) row of the distribution
// zone schedule: the morning and afternoon windows that, together with
// "off", partition the day.
type RawDistScheduleForm struct {
	Tariff model.Tariff `yaml:"tariff"`
	Month  int          `yaml:"month"`
	Mode   model.Mode   `yaml:"mode"`
	Morn   WindowSpec   `yaml:"morn"`
	Aft    WindowSpec   `yaml:"aft"`
}

// RawPeakFeeScheduleForm is one (month, mode) row of the capacity-fee peak
// window.
type RawPeakFeeScheduleForm struct {
	Month int        `yaml:"month"`
	Mode  model.Mode `yaml:"mode"`
	Peak  WindowSpec `yaml:"peak"`
}

// RawDistRatesForm carries the distribution variable/fixed rate components
// for one tariff.
type RawDistRatesForm struct {
	Tariff model.Tariff `yaml:"tariff"`

	RateAM                 float64 `yaml:"rate_am"` // PLN/MWh; for B22 reuse as "day"; for B21 as single
	RatePM                 float64 `yaml:"rate_pm"`
	RateOff                float64 `yaml:"rate_off"`
	QualityAddendPLNPerMWh float64 `yaml:"quality_addend_pln_per_mwh"`

	FixedPerKWMonth float64 `yaml:"fixed_per_kw_month"`
	TransPerKWMonth float64 `yaml:"trans_per_kw_month"`
	AbonPLNMonth    float64 `yaml:"abon_pln_month"`
}

// RawSystemFeesForm carries the system-wide per-MWh fees and the
// capacity-fee rate.
type RawSystemFeesForm struct {
	RateOZEPLNPerMWh float64 `yaml:"rate_oze_pln_per_mwh"`
	RateKogPLNPerMWh float64 `yaml:"rate_kog_pln_per_mwh"`
	RateMocPLNPerMWh float64 `yaml:"rate_moc_pln_per_mwh"` // capacity fee per MWh in peak-fee hours, before A(K)
}

// RawKParameterForm is the sorted threshold list and A-coefficient map for
// the daily peak-ratio coefficient.
type RawKParameterForm struct {
	Thresholds [3]float64        `yaml:"thresholds"`
	A          map[string]float64 `yaml:"a"`
}

// RawCustomerForm carries production multipliers and the consumption
// multiplier.
type RawCustomerForm struct {
	ProdMultiplierPV1       float64 `yaml:"prod_multiplier_pv1"`
	ProdMultiplierPV2       float64 `yaml:"prod_multiplier_pv2"`
	ProdMultiplierWind      float64 `yaml:"prod_multiplier_wind"`
	ConsumptionMultiplierPct float64 `yaml:"consumption_multiplier_pct"`

	LCOEPV1  float64 `yaml:"lcoe_pv1"`
	LCOEPV2  float64 `yaml:"lcoe_pv2"`
	LCOEWind float64 `yaml:"lcoe_wind"`
}

// Forms bundles the latest row of every parameter form C0 consumes.
type Forms struct {
	BESS             RawBESSForm             `yaml:"bess"`
	Contract         RawContractForm         `yaml:"contract"`
	Fiscal           RawFiscalForm           `yaml:"fiscal"`
	ArbitragePolicy  RawArbitragePolicyForm  `yaml:"arbitrage_policy"`
	DistSchedules    []RawDistScheduleForm   `yaml:"dist_schedules"`
	PeakFeeSchedules []RawPeakFeeScheduleForm `yaml:"peak_fee_schedules"`
	DistRates        []RawDistRatesForm      `yaml:"dist_rates"`
	SystemFees       RawSystemFeesForm       `yaml:"system_fees"`
	KParameter       RawKParameterForm       `yaml:"k_parameter"`
	Customer         RawCustomerForm         `yaml:"customer"`
}
