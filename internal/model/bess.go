package model

import "errors"

// Tariff identifies one of the three distribution tariffs the pricing stage
// fans out over.
type Tariff string

const (
	TariffB21 Tariff = "B21"
	TariffB22 Tariff = "B22"
	TariffB23 Tariff = "B23"
)

var AllTariffs = []Tariff{TariffB21, TariffB22, TariffB23}

// Scenario identifies one of the three load-coverage scenarios C4 prices.
type Scenario string

const (
	ScenarioGrid    Scenario = "grid"     // pure import = load
	ScenarioOzeGrid Scenario = "oze_grid" // import = deficit_net
	ScenarioMagOze  Scenario = "mag_oze"  // import = import_for_load from commit
)

var AllScenarios = []Scenario{ScenarioGrid, ScenarioOzeGrid, ScenarioMagOze}

// BESSConfig is the scalar battery-energy-storage configuration consolidated
// by C0: total capacity split into OZE/ARBI pools, conversion efficiencies,
// self-discharge, and the derived NET/AC caps.
//
// Units: energies in MWh, powers/caps in MWh/h (already per-hour, so they
// compose directly with hourly buffers), efficiencies and self-discharge in
// [0,1] fractions.
type BESSConfig struct {
	EmaxTotal    float64
	ArbiFraction float64 // EmaxArbi = EmaxTotal * ArbiFraction
	EmaxOze      float64
	EmaxArbi     float64

	EtaCh  float64 // charge efficiency, AC->NET
	EtaDis float64 // discharge efficiency, NET->AC
	LambdaH float64 // self-discharge per hour, fraction in [0,1)

	CapBessChNet  float64 // MWh/h, NET side
	CapBessDisNet float64 // MWh/h, NET side

	CapGridImportAC float64 // MWh/h, AC side (contractual import power)
	CapGridExportAC float64 // MWh/h, AC side (contractual export power)
}

// Validate checks the invariants C0 is required to enforce before the run
// proceeds (spec §4.1 failure semantics: missing/out-of-range scalar is fatal).
func (c BESSConfig) Validate() error {
	if c.EmaxTotal <= 0 {
		return errors.New("emax_total must be > 0")
	}
	if c.ArbiFraction < 0 || c.ArbiFraction > 1 {
		return errors.New("arbi_fraction must be in [0,1]")
	}
	if c.EtaCh <= 0 || c.EtaCh > 1 {
		return errors.New("eta_ch must be in (0,1]")
	}
	if c.EtaDis <= 0 || c.EtaDis > 1 {
		return errors.New("eta_dis must be in (0,1]")
	}
	if c.LambdaH < 0 || c.LambdaH >= 1 {
		return errors.New("lambda_h must be in [0,1)")
	}
	if c.CapBessChNet < 0 || c.CapBessDisNet < 0 {
		return errors.New("BESS NET caps must be >= 0")
	}
	if c.CapGridImportAC < 0 || c.CapGridExportAC < 0 {
		return errors.New("grid AC caps must be >= 0")
	}
	return nil
}

// ArbitragePolicy is the consolidated proposer policy (C0 -> C2 input).
type ArbitragePolicy struct {
	CyclesPerDay    int
	BaseMinProfit   float64
	PLow            float64 // SOC percent threshold, fraction of EmaxArbi, triggers soc_bonus_ch
	PHigh           float64 // SOC percent threshold, fraction of EmaxArbi, triggers soc_bonus_dis
	SOCBonusCh      float64
	SOCBonusDis     float64
	HourBonusCh     float64
	HourBonusDis    float64
	AllowCarryOver  bool
	ForceOrder      bool
	ArbiDisToLoad   bool
	BonusHoursCh    int // w_ch hours/day
	BonusHoursDis   int // w_dis hours/day
}

// KParameter is the capacity-fee peak-ratio coefficient policy: sorted
// ascending percent thresholds and the A coefficient selected per bucket.
type KParameter struct {
	Thresholds [3]float64          // t1 < t2 < t3, percent
	A          map[string]float64  // "K1".."K4" -> coefficient
}

// Bucket returns the K-bucket name for a ΔS percent value.
func (k KParameter) Bucket(deltaS float64) string {
	switch {
	case deltaS <= k.Thresholds[0]:
		return "K1"
	case deltaS <= k.Thresholds[1]:
		return "K2"
	case deltaS <= k.Thresholds[2]:
		return "K3"
	default:
		return "K4"
	}
}

// Coefficient returns A(K_day) for a ΔS percent value.
func (k KParameter) Coefficient(deltaS float64) float64 {
	return k.A[k.Bucket(deltaS)]
}
