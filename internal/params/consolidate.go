package params

import (
	"fmt"
	"math"

	"energy-core/internal/core"
	"energy-core/internal/model"
)

// DistScheduleKey addresses one row of the distribution schedule (3 tariffs
// x 12 months x 2 modes = 72 rows, each with 4 start/end fields: 288 values).
type DistScheduleKey struct {
	Tariff model.Tariff
	Month  int
	Mode   model.Mode
}

// PeakFeeScheduleKey addresses one row of the capacity-fee peak window.
type PeakFeeScheduleKey struct {
	Month int
	Mode  model.Mode
}

// DistRateSet is the normalized per-tariff distribution rate table.
type DistRateSet struct {
	RateAM, RatePM, RateOff float64 // PLN/MWh, quality addend already folded in
	FixedPerKWMonth         float64
	TransPerKWMonth         float64
	AbonPLNMonth            float64
}

// Contract is the normalized grid/commodity contract.
type Contract struct {
	ContractPowerKW     float64
	Model               string
	FixedPricePLNPerMWh float64
	DeltaFraction       float64
	VarMarginPLNPerMWh  float64
	FixMarginPLNPerMWh  float64
	MonthlyTradingFeePLN float64
}

// Fiscal is the normalized VAT/excise pair.
type Fiscal struct {
	VATFraction     float64
	ExcisePLNPerMWh float64
}

// Multipliers carries production/consumption scaling and LCOE.
type Multipliers struct {
	ProdPV1, ProdPV2, ProdWind float64
	ConsumptionFraction        float64
	LCOEPV1, LCOEPV2, LCOEWind float64
}

// Consolidated is the single typed value the rest of the pipeline reads:
// every field is semantically named, every alias has already been resolved.
type Consolidated struct {
	BESS            model.BESSConfig
	ArbitragePolicy model.ArbitragePolicy
	KParameter      model.KParameter
	Contract        Contract
	Fiscal          Fiscal
	Multipliers     Multipliers
	SystemFees      RawSystemFeesForm

	DistSchedule    map[DistScheduleKey]RawDistScheduleForm
	PeakFeeSchedule map[PeakFeeScheduleKey]WindowSpec
	DistRates       map[model.Tariff]DistRateSet
}

// Consolidate normalizes and derives the consolidated value from the raw
// forms. Failure semantics (spec §4.1): a missing required scalar, an
// unparseable tariff identifier, or a schedule hour outside [0,24] is fatal
// for the run, returned as *core.ParameterError.
func Consolidate(f Forms) (*Consolidated, error) {
	bess, err := consolidateBESS(f.BESS, f.Contract)
	if err != nil {
		return nil, err
	}

	policy, err := consolidateArbitragePolicy(f.ArbitragePolicy)
	if err != nil {
		return nil, err
	}

	kparam, err := consolidateKParameter(f.KParameter)
	if err != nil {
		return nil, err
	}

	distSchedule, err := consolidateDistSchedule(f.DistSchedules)
	if err != nil {
		return nil, err
	}

	peakSchedule, err := consolidatePeakFeeSchedule(f.PeakFeeSchedules)
	if err != nil {
		return nil, err
	}

	distRates, err := consolidateDistRates(f.DistRates)
	if err != nil {
		return nil, err
	}

	contract := Contract{
		ContractPowerKW:      f.Contract.ContractPowerKW,
		Model:                f.Contract.Model,
		FixedPricePLNPerMWh:  f.Contract.FixedPricePLNPerMWh,
		DeltaFraction:        f.Contract.DeltaPct / 100,
		VarMarginPLNPerMWh:   f.Contract.VarMarginPLNPerMWh,
		FixMarginPLNPerMWh:   f.Contract.FixMarginPLNPerMWh,
		MonthlyTradingFeePLN: f.Contract.MonthlyTradingFeePLN,
	}
	if contract.Model != "fixed" && contract.Model != "dynamic" {
		return nil, core.NewParameterError("contract.model", fmt.Sprintf("unknown contract model %q", contract.Model))
	}
	if contract.ContractPowerKW <= 0 {
		return nil, core.NewParameterError("contract.contract_power_kw", "must be > 0")
	}

	fiscal := Fiscal{
		VATFraction:     f.Fiscal.VATPct / 100,
		ExcisePLNPerMWh: f.Fiscal.ExcisePLNPerMWh,
	}
	if fiscal.VATFraction < 0 || fiscal.VATFraction > 1 {
		return nil, core.NewParameterError("fiscal.vat_pct", "must resolve to a fraction in [0,1]")
	}

	mult := Multipliers{
		ProdPV1:             nonZeroOr(f.Customer.ProdMultiplierPV1, 1),
		ProdPV2:             nonZeroOr(f.Customer.ProdMultiplierPV2, 1),
		ProdWind:            nonZeroOr(f.Customer.ProdMultiplierWind, 1),
		ConsumptionFraction: nonZeroOr(f.Customer.ConsumptionMultiplierPct, 100) / 100,
		LCOEPV1:             f.Customer.LCOEPV1,
		LCOEPV2:             f.Customer.LCOEPV2,
		LCOEWind:            f.Customer.LCOEWind,
	}

	return &Consolidated{
		BESS:            bess,
		ArbitragePolicy: policy,
		KParameter:      kparam,
		Contract:        contract,
		Fiscal:          fiscal,
		Multipliers:     mult,
		SystemFees:      f.SystemFees,
		DistSchedule:    distSchedule,
		PeakFeeSchedule: peakSchedule,
		DistRates:       distRates,
	}, nil
}

func nonZeroOr(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}

func consolidateBESS(raw RawBESSForm, contract RawContractForm) (model.BESSConfig, error) {
	if raw.EmaxTotalMWh <= 0 {
		return model.BESSConfig{}, core.NewParameterError("bess.emax_total_mwh", "must be > 0")
	}
	arbiFraction := raw.ArbiFractionPct / 100
	if arbiFraction < 0 || arbiFraction > 1 {
		return model.BESSConfig{}, core.NewParameterError("bess.arbi_fraction_pct", "must resolve to a fraction in [0,1]")
	}

	etaCh := raw.ChargeEfficiencyPct / 100
	etaDis := raw.DischargeEfficiencyPct / 100
	if etaCh <= 0 || etaCh > 1 {
		return model.BESSConfig{}, core.NewParameterError("bess.charge_efficiency_pct", "must resolve to a fraction in (0,1]")
	}
	if etaDis <= 0 || etaDis > 1 {
		return model.BESSConfig{}, core.NewParameterError("bess.discharge_efficiency_pct", "must resolve to a fraction in (0,1]")
	}

	lambdaH, err := lambdaHFromBESS(raw)
	if err != nil {
		return model.BESSConfig{}, err
	}

	tFullCh, err := timeToFull(raw.CRateCh, raw.HoursToFullCh, "bess.crate_ch/hours_to_full_ch")
	if err != nil {
		return model.BESSConfig{}, err
	}
	tFullDis, err := timeToFull(raw.CRateDis, raw.HoursToFullDis, "bess.crate_dis/hours_to_full_dis")
	if err != nil {
		return model.BESSConfig{}, err
	}

	capChNet := raw.EmaxTotalMWh / tFullCh
	capDisNet := raw.EmaxTotalMWh / tFullDis
	if raw.PowerChMW > 0 {
		capChNet = raw.PowerChMW
	}
	if raw.PowerDisMW > 0 {
		capDisNet = raw.PowerDisMW
	}

	if contract.ImportPowerMW <= 0 {
		return model.BESSConfig{}, core.NewParameterError("contract.import_power_mw", "must be > 0")
	}
	if contract.ExportPowerMW <= 0 {
		return model.BESSConfig{}, core.NewParameterError("contract.export_power_mw", "must be > 0")
	}

	cfg := model.BESSConfig{
		EmaxTotal:       raw.EmaxTotalMWh,
		ArbiFraction:    arbiFraction,
		EmaxOze:         raw.EmaxTotalMWh * (1 - arbiFraction),
		EmaxArbi:        raw.EmaxTotalMWh * arbiFraction,
		EtaCh:           etaCh,
		EtaDis:          etaDis,
		LambdaH:         lambdaH,
		CapBessChNet:    capChNet,
		CapBessDisNet:   capDisNet,
		CapGridImportAC: contract.ImportPowerMW,
		CapGridExportAC: contract.ExportPowerMW,
	}
	if err := cfg.Validate(); err != nil {
		return model.BESSConfig{}, core.NewParameterError("bess", err.Error())
	}
	return cfg, nil
}

// lambdaHFromBESS derives the hourly self-discharge fraction, preferring an
// explicit hourly value, falling back to daily, then monthly (spec §4.1:
// "derive self-discharge λ_h from daily or monthly percent if hourly is
// absent"), grounded on 00_snapshot.py's _lambda_h_from_bess.
func lambdaHFromBESS(raw RawBESSForm) (float64, error) {
	if raw.SelfDischargeHourlyPct != 0 {
		return raw.SelfDischargeHourlyPct / 100, nil
	}
	if raw.SelfDischargeDailyPct != 0 {
		dailyFrac := raw.SelfDischargeDailyPct / 100
		return 1 - retainedFraction(1-dailyFrac, 24), nil
	}
	if raw.SelfDischargeMonthlyPct != 0 {
		monthlyFrac := raw.SelfDischargeMonthlyPct / 100
		return 1 - retainedFraction(1-monthlyFrac, 720), nil
	}
	return 0, nil
}

// retainedFraction converts a retained-fraction-per-period value into the
// equivalent retained-fraction-per-hour value, given period has n hours:
// solves r_hour^n = r_period.
func retainedFraction(rPeriod float64, n float64) float64 {
	if rPeriod <= 0 {
		return 0
	}
	return math.Pow(rPeriod, 1/n)
}

func timeToFull(cRate, hoursToFull float64, field string) (float64, error) {
	switch {
	case hoursToFull > 0:
		return hoursToFull, nil
	case cRate > 0:
		return 1 / cRate, nil
	default:
		return 0, core.NewParameterError(field, "exactly one of c-rate or hours-to-full must be provided")
	}
}

func consolidateArbitragePolicy(raw RawArbitragePolicyForm) (model.ArbitragePolicy, error) {
	if raw.CyclesPerDay <= 0 {
		return model.ArbitragePolicy{}, core.NewParameterError("arbitrage_policy.cycles_per_day", "must be > 0")
	}
	return model.ArbitragePolicy{
		CyclesPerDay:   raw.CyclesPerDay,
		BaseMinProfit:  raw.BaseMinProfit,
		PLow:           raw.PLowPct / 100,
		PHigh:          raw.PHighPct / 100,
		SOCBonusCh:     raw.SOCBonusCh,
		SOCBonusDis:    raw.SOCBonusDis,
		HourBonusCh:    raw.HourBonusCh,
		HourBonusDis:   raw.HourBonusDis,
		AllowCarryOver: raw.AllowCarryOver,
		ForceOrder:     raw.ForceOrder,
		ArbiDisToLoad:  raw.ArbiDisToLoad,
		BonusHoursCh:   raw.BonusHoursCh,
		BonusHoursDis:  raw.BonusHoursDis,
	}, nil
}

func consolidateKParameter(raw RawKParameterForm) (model.KParameter, error) {
	t := raw.Thresholds
	if !(t[0] < t[1] && t[1] < t[2]) {
		return model.KParameter{}, core.NewParameterError("k_parameter.thresholds", "must be strictly ascending")
	}
	a := raw.A
	if a == nil {
		a = map[string]float64{}
	}
	for _, bucket := range []string{"K1", "K2", "K3", "K4"} {
		if _, ok := a[bucket]; !ok {
			defaults := map[string]float64{"K1": 0.17, "K2": 0.50, "K3": 0.83, "K4": 1.00}
			a[bucket] = defaults[bucket]
		}
	}
	return model.KParameter{Thresholds: t, A: a}, nil
}

func consolidateDistSchedule(rows []RawDistScheduleForm) (map[DistScheduleKey]RawDistScheduleForm, error) {
	out := make(map[DistScheduleKey]RawDistScheduleForm, len(rows))
	for _, row := range rows {
		switch row.Tariff {
		case model.TariffB21, model.TariffB22, model.TariffB23:
		default:
			return nil, core.NewParameterError("dist_schedule.tariff", fmt.Sprintf("unknown tariff %q", row.Tariff))
		}
		if row.Month < 1 || row.Month > 12 {
			return nil, core.NewParameterError("dist_schedule.month", fmt.Sprintf("out of range: %d", row.Month))
		}
		for _, w := range []WindowSpec{row.Morn, row.Aft} {
			if w.Start < 0 || w.Start > 24 || w.End < 0 || w.End > 24 {
				return nil, core.NewParameterError("dist_schedule.window", fmt.Sprintf("hour out of [0,24]: %+v", w))
			}
		}
		key := DistScheduleKey{Tariff: row.Tariff, Month: row.Month, Mode: row.Mode}
		out[key] = row
	}
	// Validate every tariff has a row for each of the 12 months x 2 modes.
	for _, tariff := range model.AllTariffs {
		for month := 1; month <= 12; month++ {
			for _, mode := range []model.Mode{model.ModeWork, model.ModeFree} {
				if _, ok := out[DistScheduleKey{Tariff: tariff, Month: month, Mode: mode}]; !ok {
					return nil, core.NewParameterError("dist_schedule", fmt.Sprintf("missing (%s, month=%d, mode=%s)", tariff, month, mode))
				}
			}
		}
	}
	return out, nil
}

func consolidatePeakFeeSchedule(rows []RawPeakFeeScheduleForm) (map[PeakFeeScheduleKey]WindowSpec, error) {
	out := make(map[PeakFeeScheduleKey]WindowSpec, len(rows))
	for _, row := range rows {
		if row.Month < 1 || row.Month > 12 {
			return nil, core.NewParameterError("peak_fee_schedule.month", fmt.Sprintf("out of range: %d", row.Month))
		}
		if row.Peak.Start < 0 || row.Peak.Start > 24 || row.Peak.End < 0 || row.Peak.End > 24 {
			return nil, core.NewParameterError("peak_fee_schedule.window", fmt.Sprintf("hour out of [0,24]: %+v", row.Peak))
		}
		out[PeakFeeScheduleKey{Month: row.Month, Mode: row.Mode}] = row.Peak
	}
	return out, nil
}

func consolidateDistRates(rows []RawDistRatesForm) (map[model.Tariff]DistRateSet, error) {
	out := make(map[model.Tariff]DistRateSet, len(rows))
	for _, row := range rows {
		switch row.Tariff {
		case model.TariffB21, model.TariffB22, model.TariffB23:
		default:
			return nil, core.NewParameterError("dist_rates.tariff", fmt.Sprintf("unknown tariff %q", row.Tariff))
		}
		q := row.QualityAddendPLNPerMWh
		out[row.Tariff] = DistRateSet{
			RateAM:          row.RateAM + q,
			RatePM:          row.RatePM + q,
			RateOff:         row.RateOff + q,
			FixedPerKWMonth: row.FixedPerKWMonth,
			TransPerKWMonth: row.TransPerKWMonth,
			AbonPLNMonth:    row.AbonPLNMonth,
		}
	}
	for _, tariff := range model.AllTariffs {
		if _, ok := out[tariff]; !ok {
			return nil, core.NewParameterError("dist_rates", fmt.Sprintf("missing tariff %s", tariff))
		}
	}
	return out, nil
}
