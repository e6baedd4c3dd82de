package model

// HourRow is the per-hour "H" buffer C1 produces and C2/C3/C4 read.
// One row per hour of the calendar axis; all energies are NET unless the
// field name says AC.
type HourRow struct {
	Calendar HourStamp

	PriceImport float64 // PLN/MWh, may be NaN
	PriceExport float64 // PLN/MWh, may be NaN

	MaskAM      float64 // 0 or 1
	MaskPM      float64
	MaskOff     float64
	MaskPeakFee float64 // 0 or 1, capacity-fee window

	ProdTotal  float64 // MW
	Load       float64 // MW
	SurplusNet float64 // max(prod-load,0)
	DeficitNet float64 // max(load-prod,0)

	BonusHrsCh  float64 // 0 or 1
	BonusHrsDis float64 // 0 or 1

	Caps BESSConfig // broadcast scalar caps (same value every hour of a run)
}

// ProposerRow is the per-hour "P" buffer C2 produces.
type ProposerRow struct {
	PropChAC  float64 // >= 0
	PropDisAC float64 // >= 0

	DecCh  bool
	DecDis bool

	ThrLow  float64
	ThrHigh float64

	DeltaK    float64 // only meaningful when PairLow or PairHigh >= 0
	HasDeltaK bool

	SOCSim      float64 // simulated SOC_arbi in MWh, post-decision
	Pending     float64 // NET energy pending within the current cycle
	CycleCount  int     // daily cycle counter, monotonic within the day

	PairLow  int // index of this hour's high partner, or -1
	PairHigh int // index of this hour's low partner, or -1
}

// CommitRow is the per-hour "C" buffer C3 produces.
type CommitRow struct {
	// NET flows
	ChFromSurplus float64
	ChFromGrid    float64
	DisToLoad     float64
	DisToGrid     float64

	// AC import/export split by purpose
	ImportForLoad  float64
	ImportForArbi  float64
	ExportFromSurplus float64
	ExportFromArbi    float64

	// SOC snapshots in MWh; the Pct fields are fractions [0,1] of the pool capacity
	SOCOzeBefore  float64
	SOCOzeAfter   float64
	SOCArbiBefore float64
	SOCArbiAfter  float64
	SOCOzePct     float64
	SOCArbiPct    float64

	// Loss categories, NET/AC MWh as applicable
	LossIdleOze               float64
	LossIdleArbi               float64
	LossConvCh                 float64
	LossConvDisToGrid          float64
	LossConvDisToLoad          float64
	WastedSurplusDueToExportCap float64
	UnservedLoadAfterCap        float64

	// Diagnostic cap-binding quantities (AC-side energy cut by cap reversal).
	CapBlockedDisAC float64
	CapBlockedChAC  float64

	BindExportCap bool
	BindImportCap bool

	// Cash flows, PLN
	RevArbiToGrid     float64
	RevSurplusExport  float64
	CostGridToArbi    float64
	CostImportForLoad float64
	CashflowArbi      float64
	CashflowNet       float64
}

// PricingRow is one scenario x tariff breakdown for a single hour ("stage 04").
type PricingRow struct {
	Index    int
	Scenario Scenario
	Tariff   Tariff

	EnergyMWh float64

	Commodity float64

	CommercialVar   float64
	CommercialFixed float64
	TradingFee      float64

	DistributionVar   float64
	DistributionFixed float64

	SystemOzeKog float64
	CapacityFee  float64
	KBucket      string
	KCoefficient float64

	Excise float64

	NettoTotal float64
	VAT        float64
	Total      float64

	PLNLossConvCh             float64
	PLNLossConvDisToGrid      float64
	PLNLossConvDisToLoad      float64
	PLNLossIdleArbi           float64
	PLNLossIdleOze            float64
	PLNWastedSurplusCap       float64
	PLNCapBlockedDisAC        float64
	PLNCapBlockedChAC         float64
	PLNUnservedLoadAfterCap   float64
}
