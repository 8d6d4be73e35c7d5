// Package balance holds the fixed generation ranges and economic multipliers.
// These values are part of the observable behavior of a run; change them deliberately.
package balance

// Field capacity.
const (
	MaxPlanets   = 100
	MaxAsteroids = 50

	// DefaultSteps is the tick count of the reference configuration.
	DefaultSteps = 40
)

// Generation ranges. Integer ranges are inclusive; real ranges are [lo, hi).
const (
	ProductivityMin = 37
	ProductivityMax = 60

	// Initial demand for Low-tier planets, also the roll at the Medium transition.
	DemandMin = 500
	DemandMax = 1500

	// Demand range installed when a planet reaches High.
	HighDemandMin = 1700
	HighDemandMax = 2100

	PriceMin = 150.0
	PriceMax = 300.0

	CoordMin = 0.0
	CoordMax = 500.0
)

// Planet economy.
const (
	// Fuel spent per unit of Euclidean distance at generation time.
	FuelCostPerDistance = 0.1

	MoneyPerResource = 0.125
	FuelPerResource  = 0.0625

	// Productivity multipliers applied on each upgrade.
	MediumProductivityMul = 1.25
	HighProductivityMul   = 1.5
	MaxedProductivityMul  = 1.75
)

// Corporations.
const (
	// A corporation rolls [0, ChanceRange) and acts when the roll is below ChanceThreshold.
	ChanceRange     = 100
	ChanceThreshold = 20

	LogisticsFuelMul    = 0.9
	TechTraderDemandMul = 1.1
	MinerPriceMul       = 0.9
)
