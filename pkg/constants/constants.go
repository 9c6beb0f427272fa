// Package constants provides shared constants for the str-forecast application.
package constants

// Simulation constants
const (
	// DaysPerMonth is the fixed month length the simulation scales per-night
	// figures by.
	DaysPerMonth = 30.0

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MinRoomTypes and MaxRoomTypes bound the room type list of a property.
	MinRoomTypes = 1
	MaxRoomTypes = 5

	// MinRoomCount is the smallest number of rooms a room type may hold.
	MinRoomCount = 1

	// MaxPrepMonths is the longest pre-opening period paid as empty rent.
	MaxPrepMonths = 6
)

// Input ranges for percentage assumptions, inclusive.
const (
	MinOccupancyPct      = 10.0
	MaxOccupancyPct      = 100.0
	MaxOTAFeePct         = 30.0
	MaxManagementFeePct  = 40.0
	MaxCapexPct          = 10.0
	MinFeePct            = 0.0
	DefaultOccupancyPct  = 70.0
	DefaultOTAFeePct     = 15.0
	DefaultManagementPct = 20.0
	DefaultCapexPct      = 3.0
	DefaultPrepMonths    = 2
)

// SensitivityOccupancies is the fixed occupancy grid of the sensitivity and
// break-even tables.
var SensitivityOccupancies = [...]float64{30, 40, 50, 60, 70, 80, 90, 100}

// Financial constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 sen)
	CurrencyTolerance = 0.01
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "STR"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultReportDirectory is where scheduled CSV reports are written
	DefaultReportDirectory = "reports"
)

// Storage drivers
const (
	StorageDriverMemory   = "memory"
	StorageDriverCSV      = "csv"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
	StorageDriverRedis    = "redis"
	StorageDriverMongoDB  = "mongodb"
	StorageDriverSheets   = "sheets"
)
