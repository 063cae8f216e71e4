package constants

// Application constants
const (
	Name        = "closet-optimiser"
	Version     = "1.0.0"
	Description = "Evolutionary space allocation for closet layouts"

	// Closet defaults (millimetres)
	DefaultWidth   = 2540
	DefaultHeight  = 2176
	DefaultColumns = 4

	// Algorithm defaults
	DefaultPopulationSize   = 500
	DefaultGenerations      = 100
	DefaultCrossoverProb    = 0.5
	DefaultMutationProb     = 0.2
	DefaultTournamentSize   = 3
	DefaultGeneMutationProb = 0.25
	DefaultElitism          = 1
	DefaultParallelWorkers  = 1

	// Largest single step, in units, taken by a step mutation
	MaxNudgeUnits = 4

	DefaultUnusedSpaceWeight = 1.0

	// File names
	DefaultConfigFile = "closet.yaml"
	ExportDir         = "closet_output"
	LatestExport      = "latest.json"

	// Exit codes
	ExitSuccess   = 0
	ExitError     = 1
	ExitInterrupt = 130
)

// Component names
const (
	Shelves      = "shelves"
	Drawers      = "drawers"
	ShortHanging = "short_hanging"
	LongHanging  = "long_hanging"
)

// Quantization units (millimetres)
const (
	ShelfUnit        = 32
	DrawerUnit       = 7 * ShelfUnit
	ShortHangingUnit = 32
	LongHangingUnit  = 64
)

// Penalty weights
const (
	OverCapacityPenalty     = 100.0
	ColumnOverflowPenalty   = 100.0
	QuantizationPenalty     = 100.0
	EqualSizeDivisor        = 10.0
	CentreMisalignWeight    = 10.0
	CentreExtraColumnWeight = 50.0
	FullUtilisationWeight   = 5.0
)

// Penalty names
const (
	PenaltyPercentage      = "percentage"
	PenaltyTotalSpace      = "total_space"
	PenaltyColumnOverflow  = "column_overflow"
	PenaltyQuantization    = "quantization"
	PenaltyEqualSize       = "equal_size"
	PenaltyCentre          = "centre"
	PenaltyFullUtilisation = "full_utilisation"
)
