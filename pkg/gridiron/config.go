package gridiron

import "fmt"

// GridironConfig contains all configurable parameters that influence rating
// and prediction outcomes. This centralizes all magic numbers and constants
// for easy adjustment
type GridironConfig struct {
	// Database and cache parameters
	GridironAssetsPath string // The base directory of assets relating to gridiron
	GridironCachePath  string // The location in which cached downloaded pages are stored
	GridironDbPath     string // The location of the gridiron sqlite database
	ModelWeightsPath   string // The location of the exported spread model weights

	// === General Default vars ===
	Seasons           []string // the list of seasons we're interested in, oldest first
	CurrentSeasonYear int      // calendar year in which the current season starts

	// === CORE ELO PARAMETERS ===

	KFactor           float64 // Maximum rating swing scale for a single game (default: 20)
	BaselineRating    int     // Rating every team starts from and regresses toward (default: 1505)
	RegressionDivisor float64 // Fraction of the distance to baseline removed each preseason (default: 3)

	// === PREGAME ADJUSTMENT PARAMETERS ===

	HomeFieldAdvantage float64 // Fixed home field bonus in rating points (default: 48)
	TravelFactor       float64 // Rating points per mile travelled (default: 0.004)
	ByeBonus           float64 // Bonus for coming off a bye week (default: 25)
	PlayoffMultiplier  float64 // Differential amplification for playoff games (default: 1.2)

	// === MARGIN OF VICTORY PARAMETERS ===

	TieMovMultiplier float64 // Fixed MOV multiplier for tied games (default: 1.525)
	MovDamping       float64 // Numerator/denominator base of the MOV damping term (default: 2.2)
	MovRatingScale   float64 // Rating points to damping units conversion (default: 0.001)

	// === SPREAD AND FEATURE PARAMETERS ===

	SpreadDivisor float64 // Rating points per point of spread (default: 25)
	WindowSize    int     // Games kept in each rolling statistic window (default: 14)

	// === GEOGRAPHY ===

	EarthRadiusKm float64 // Radius of the earth in km for haversine (default: 6378.137)
	KmPerMile     float64 // Kilometres per mile (default: 1.609)

	// === SCRAPER ===

	ScraperBaseURL string // Base URL of the games data site

	// SuperBowlHosts maps a calendar year to the ticker of the team whose
	// stadium hosts that year's Super Bowl. Used to resolve neutral site
	// coordinates for playoff finals
	SuperBowlHosts map[string]string
}

// DefaultGridironConfig returns the default configuration with all standard values
func DefaultGridironConfig() *GridironConfig {
	config := &GridironConfig{
		GridironAssetsPath: gridironAssetsPath,
		GridironCachePath:  gridironCachePath,
		GridironDbPath:     gridironDbPath,
		ModelWeightsPath:   gridironModelPath,

		Seasons: []string{
			"2011-2012", "2012-2013", "2013-2014", "2014-2015", "2015-2016",
			"2016-2017", "2017-2018", "2018-2019", "2019-2020", "2020-2021",
			"2021-2022", "2022-2023", "2023-2024",
		},
		CurrentSeasonYear: 2023,

		// === CORE ELO PARAMETERS ===
		KFactor:           20.0,
		BaselineRating:    1505,
		RegressionDivisor: 3.0,

		// === PREGAME ADJUSTMENT PARAMETERS ===
		HomeFieldAdvantage: 48.0,
		TravelFactor:       0.004,
		ByeBonus:           25.0,
		PlayoffMultiplier:  1.2,

		// === MARGIN OF VICTORY PARAMETERS ===
		TieMovMultiplier: 1.525,
		MovDamping:       2.2,
		MovRatingScale:   0.001,

		// === SPREAD AND FEATURE PARAMETERS ===
		SpreadDivisor: 25.0,
		WindowSize:    14,

		// === GEOGRAPHY ===
		EarthRadiusKm: 6378.137,
		KmPerMile:     1.609,

		// === SCRAPER ===
		ScraperBaseURL: "https://www.pro-football-reference.com/",

		SuperBowlHosts: map[string]string{
			"2011": "DAL", "2012": "IND", "2013": "NO", "2014": "NYG",
			"2015": "ARI", "2016": "SF", "2017": "HOU", "2018": "MIN",
			"2019": "ATL", "2020": "MIA", "2021": "TB", "2022": "LAR",
			"2023": "ARI", "2024": "LV", "2025": "NO",
		},
	}

	return config
}

// Global configuration instance
var Config *GridironConfig

// init initializes the global configuration with default values
func init() {
	Config = DefaultGridironConfig()
}

// UpdateConfig allows updating the global configuration
func UpdateConfig(newConfig *GridironConfig) {
	Config = newConfig
}

// === CONFIGURATION VALIDATION ===

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *GridironConfig) error {
	if config.KFactor <= 0 {
		return fmt.Errorf("KFactor must be positive, got: %f", config.KFactor)
	}

	if config.BaselineRating < 1000 || config.BaselineRating > 2000 {
		return fmt.Errorf("BaselineRating should be between 1000 and 2000, got: %d", config.BaselineRating)
	}

	if config.RegressionDivisor <= 1.0 {
		return fmt.Errorf("RegressionDivisor must be greater than 1.0, got: %f", config.RegressionDivisor)
	}

	if config.PlayoffMultiplier < 1.0 || config.PlayoffMultiplier > 2.0 {
		return fmt.Errorf("PlayoffMultiplier should be between 1.0 and 2.0, got: %f", config.PlayoffMultiplier)
	}

	if config.WindowSize < 1 {
		return fmt.Errorf("WindowSize must be at least 1, got: %d", config.WindowSize)
	}

	if config.SpreadDivisor <= 0 {
		return fmt.Errorf("SpreadDivisor must be positive, got: %f", config.SpreadDivisor)
	}

	if len(config.Seasons) == 0 {
		return fmt.Errorf("at least one tracked season is required")
	}

	return nil
}

// === HELPER FUNCTIONS FOR EASY ACCESS ===

// GetKFactor returns the Elo K-factor
func GetKFactor() float64 {
	return Config.KFactor
}

// GetBaselineRating returns the mean rating that teams regress toward
func GetBaselineRating() int {
	return Config.BaselineRating
}

// GetWindowSize returns the rolling window capacity in games
func GetWindowSize() int {
	return Config.WindowSize
}

// GetSpreadDivisor returns the rating-points-per-spread-point constant
func GetSpreadDivisor() float64 {
	return Config.SpreadDivisor
}
