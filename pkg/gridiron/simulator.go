package gridiron

import (
	"fmt"

	"github.com/richard-senior/gridiron/internal/logger"
)

/**
* SeasonSimulator replays seasons in strict chronological order, driving the
* rating engine and the feature windows game by game. It owns the live
* ratings for the duration of a replay; the teams table is only written back
* when a season commits. A season commits all of its games and feature rows
* in one transaction or not at all, so a crashed replay can simply be rerun
 */
type SeasonSimulator struct {
	store    *Store
	features *FeatureStore

	// Live ratings and stadium locations keyed by ticker
	ratings map[string]int
	coords  map[string]*Coordinate
	teams   map[string]*Team

	// Seasons processed so far; the first one skips the preseason regression
	seasonsProcessed int
}

// NewSeasonSimulator creates a simulator over the given store, loading every
// known team's rating and stadium location
func NewSeasonSimulator(store *Store) (*SeasonSimulator, error) {
	results, err := store.FindAll(&Team{})
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}

	sim := &SeasonSimulator{
		store:    store,
		features: NewFeatureStore(),
		ratings:  make(map[string]int),
		coords:   make(map[string]*Coordinate),
		teams:    make(map[string]*Team),
	}

	for _, result := range results {
		team, ok := result.(*Team)
		if !ok {
			continue
		}
		sim.teams[team.Ticker] = team
		sim.ratings[team.Ticker] = team.Rating
		sim.coords[team.Ticker] = team.Coordinate()
	}

	if len(sim.teams) == 0 {
		return nil, &DataIntegrityError{Subject: "teams", Reason: "no teams in database"}
	}

	return sim, nil
}

// Features exposes the simulator's rolling feature windows
func (sim *SeasonSimulator) Features() *FeatureStore {
	return sim.features
}

// Rating returns a team's current live rating
func (sim *SeasonSimulator) Rating(ticker string) (int, error) {
	r, ok := sim.ratings[ticker]
	if !ok {
		return 0, &DataIntegrityError{Subject: ticker, Reason: "unknown team"}
	}
	return r, nil
}

// LoadSeason hydrates a season and its schedule from the store, weeks sorted
// chronologically
func (s *Store) LoadSeason(label string) (*Season, error) {
	season := &Season{}
	if err := s.FindByPrimaryKey(season, map[string]interface{}{"label": label}); err != nil {
		return nil, fmt.Errorf("failed to load season %s: %w", label, err)
	}

	results, err := s.FindWhere(&Game{}, "season_label = ?", label)
	if err != nil {
		return nil, fmt.Errorf("failed to load games for season %s: %w", label, err)
	}

	byWeek := make(map[WeekLabel]*Week)
	for _, result := range results {
		game, ok := result.(*Game)
		if !ok {
			continue
		}
		label, err := ParseWeekLabel(game.Week)
		if err != nil {
			return nil, &DataIntegrityError{Subject: game.GameID, Reason: err.Error()}
		}
		week, ok := byWeek[label]
		if !ok {
			week = &Week{Label: label}
			byWeek[label] = week
		}
		week.Games = append(week.Games, game)
	}

	for _, week := range byWeek {
		season.Weeks = append(season.Weeks, week)
	}
	if err := SortWeeks(season.Weeks); err != nil {
		return nil, err
	}

	return season, nil
}

// ProcessSeason replays one season: regress ratings (except for the very
// first season), derive bye flags from the schedule, stamp pregame ratings,
// apply postgame updates and push completed games into the feature windows.
// Nothing is written to the store until the whole season has been processed
// cleanly
func (sim *SeasonSimulator) ProcessSeason(season *Season) error {
	logger.Info("Processing season", season.Label)

	if err := SortWeeks(season.Weeks); err != nil {
		return err
	}

	if sim.seasonsProcessed > 0 {
		sim.regressRatings()
	}

	sim.deriveByes(season)

	var dirty []Persistable

	for _, week := range season.Weeks {
		if err := sim.checkWeekIntegrity(week); err != nil {
			return err
		}

		for _, game := range week.Games {
			rows, err := sim.processGame(game)
			if err != nil {
				return err
			}
			dirty = append(dirty, game)
			dirty = append(dirty, rows...)
		}
	}

	if sim.features.Bootstrapping() {
		if err := sim.features.EndBootstrap(); err != nil {
			return err
		}
		logger.Info("Bootstrap season complete, feature windows are live", season.Label)
	}

	// Write back the live ratings alongside the games and feature rows
	for ticker, rating := range sim.ratings {
		team := sim.teams[ticker]
		team.Rating = rating
		dirty = append(dirty, team)
	}

	if err := sim.store.BulkSave(dirty); err != nil {
		return fmt.Errorf("failed to commit season %s: %w", season.Label, err)
	}

	sim.seasonsProcessed++
	logger.Info("Season committed", season.Label, len(dirty))
	return nil
}

// processGame handles a single fixture, returning any feature rows produced
func (sim *SeasonSimulator) processGame(game *Game) ([]Persistable, error) {
	homeRating, err := sim.Rating(game.HomeTicker)
	if err != nil {
		return nil, err
	}
	awayRating, err := sim.Rating(game.AwayTicker)
	if err != nil {
		return nil, err
	}

	homeCoord := sim.coords[game.HomeTicker]
	awayCoord := sim.coords[game.AwayTicker]
	neutral, err := sim.neutralCoordinate(game)
	if err != nil {
		return nil, err
	}

	// Stamp the adjusted pregame ratings. Replaying an already stamped game
	// must reproduce the stored values exactly
	homeShift, awayShift, err := PregameShift(homeCoord, awayCoord, neutral, game.HomeBye, game.AwayBye)
	if err != nil {
		return nil, err
	}
	if err := game.SetPregameRatings(homeRating+homeShift, awayRating+awayShift); err != nil {
		return nil, err
	}

	if !game.HasBeenPlayed() {
		logger.Debug("Game not yet played, pregame only", game.GameID)
		return nil, nil
	}

	// Features are captured at kickoff, before this game enters the windows.
	// A team with no window yet, such as a relocated franchise playing its
	// first tracked game, produces no row but still gets rated
	var rows []Persistable
	if !sim.features.Bootstrapping() {
		if sim.features.HasHistory(game) {
			features, err := sim.features.MatchupFeatures(game)
			if err != nil {
				return nil, err
			}
			row, err := NewFeatureRow(game, features)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		} else {
			logger.Debug("No form history yet, skipping feature row", game.GameID)
		}
	}

	delta, err := PostgameDelta(game.HomePoints, game.AwayPoints, game.HomePregameRating, game.AwayPregameRating, game.Playoff)
	if err != nil {
		if re, ok := err.(*RangeError); ok {
			re.GameID = game.GameID
		}
		return nil, err
	}
	sim.ratings[game.HomeTicker] += delta
	sim.ratings[game.AwayTicker] -= delta

	if game.HasStats() {
		if err := sim.features.RecordGame(game); err != nil {
			return nil, err
		}
	}

	return rows, nil
}

// regressRatings pulls every team a third of the way back to the baseline
// at the turn of a season
func (sim *SeasonSimulator) regressRatings() {
	for ticker, rating := range sim.ratings {
		sim.ratings[ticker] = PreseasonRating(rating)
	}
}

// deriveByes flags a team as coming off a bye when it sat out the previous
// week of the same season. The first week has no previous week, so no byes
func (sim *SeasonSimulator) deriveByes(season *Season) {
	playing := make([]map[string]bool, len(season.Weeks))
	for i, week := range season.Weeks {
		playing[i] = make(map[string]bool)
		for _, game := range week.Games {
			playing[i][game.HomeTicker] = true
			playing[i][game.AwayTicker] = true
		}
	}

	for i, week := range season.Weeks {
		if i == 0 {
			continue
		}
		previous := playing[i-1]
		for _, game := range week.Games {
			game.HomeBye = !previous[game.HomeTicker]
			game.AwayBye = !previous[game.AwayTicker]
		}
	}
}

// checkWeekIntegrity rejects a week in which any team appears twice
func (sim *SeasonSimulator) checkWeekIntegrity(week *Week) error {
	seen := make(map[string]string)
	for _, game := range week.Games {
		for _, ticker := range []string{game.HomeTicker, game.AwayTicker} {
			if _, ok := sim.teams[ticker]; !ok {
				return &DataIntegrityError{Subject: ticker, Reason: fmt.Sprintf("unknown team in game %s", game.GameID)}
			}
			if other, ok := seen[ticker]; ok {
				return &DataIntegrityError{
					Subject: string(week.Label),
					Reason:  fmt.Sprintf("team %s appears in both %s and %s", ticker, other, game.GameID),
				}
			}
			seen[ticker] = game.GameID
		}
	}
	return nil
}

// neutralCoordinate resolves the host stadium of a neutral site game
func (sim *SeasonSimulator) neutralCoordinate(game *Game) (*Coordinate, error) {
	if !game.Neutral {
		return nil, nil
	}
	if game.NeutralTicker == "" {
		return nil, &DataIntegrityError{Subject: game.GameID, Reason: "neutral game without a host stadium"}
	}
	coord, ok := sim.coords[game.NeutralTicker]
	if !ok {
		return nil, &DataIntegrityError{Subject: game.GameID, Reason: fmt.Sprintf("unknown neutral host %s", game.NeutralTicker)}
	}
	return coord, nil
}

// ForecastGame returns the probability of a home win using the current live
// ratings and the full pregame adjustment
func (sim *SeasonSimulator) ForecastGame(game *Game) (float64, error) {
	homeRating, err := sim.Rating(game.HomeTicker)
	if err != nil {
		return 0, err
	}
	awayRating, err := sim.Rating(game.AwayTicker)
	if err != nil {
		return 0, err
	}
	neutral, err := sim.neutralCoordinate(game)
	if err != nil {
		return 0, err
	}

	diff, err := PregameDifferential(
		float64(homeRating), float64(awayRating),
		sim.coords[game.HomeTicker], sim.coords[game.AwayTicker], neutral,
		game.Playoff, game.HomeBye, game.AwayBye)
	if err != nil {
		return 0, err
	}

	return WinProbability(float64(diff)), nil
}
