package gridiron

import (
	"fmt"

	"github.com/richard-senior/gridiron/internal/logger"
)

/**
* Live season maintenance: rolling the database over into a new season,
* committing finished weeks as their scores arrive, and producing spread
* predictions for the week ahead. Unlike the historical replay, these
* operations work directly against the persisted team ratings
 */
type LiveUpdater struct {
	store    *Store
	ds       *PfrDatasource
	resolver *TeamResolver
	model    SpreadModel
	features *FeatureStore
}

// SpreadPrediction is the user facing forecast for one upcoming game.
// Positive spreads favour the home team
type SpreadPrediction struct {
	GameID      string  `json:"gameId"`
	HomeTicker  string  `json:"homeTicker"`
	AwayTicker  string  `json:"awayTicker"`
	HomeRating  int     `json:"homeRating"`
	AwayRating  int     `json:"awayRating"`
	HomeWinProb float64 `json:"homeWinProb"`
	EloSpread   float64 `json:"eloSpread"`
	ModelSpread float64 `json:"modelSpread"`
	HasModel    bool    `json:"hasModel"`
}

// NewLiveUpdater creates an updater over the given store. The model and
// feature store are optional; without them predictions fall back to the
// rating based spread alone
func NewLiveUpdater(store *Store, model SpreadModel, features *FeatureStore) (*LiveUpdater, error) {
	teams, err := loadTeams(store)
	if err != nil {
		return nil, err
	}
	return &LiveUpdater{
		store:    store,
		ds:       GetPfrInstance(),
		resolver: NewTeamResolver(teams),
		model:    model,
		features: features,
	}, nil
}

// loadTeams fetches every team from the store
func loadTeams(store *Store) ([]*Team, error) {
	results, err := store.FindAll(&Team{})
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	var teams []*Team
	for _, result := range results {
		if team, ok := result.(*Team); ok {
			teams = append(teams, team)
		}
	}
	if len(teams) == 0 {
		return nil, &DataIntegrityError{Subject: "teams", Reason: "no teams in database"}
	}
	return teams, nil
}

// EnsureSeasonRollover creates the season following the latest stored one if
// it does not exist yet, and regresses every team's rating toward the
// baseline. Modern seasons run eighteen regular weeks
func (u *LiveUpdater) EnsureSeasonRollover(latestLabel string) (*Season, error) {
	nextLabel, err := NextSeasonLabel(latestLabel)
	if err != nil {
		return nil, err
	}

	next := &Season{Label: nextLabel, Length: 18}
	exists, err := u.store.Exists(next)
	if err != nil {
		return nil, err
	}
	if exists {
		if err := u.store.FindByPrimaryKey(next, next.GetPrimaryKey()); err != nil {
			return nil, err
		}
		return next, nil
	}

	logger.Inform("Rolling over to new season", nextLabel)

	teams, err := loadTeams(u.store)
	if err != nil {
		return nil, err
	}

	var dirty []Persistable
	dirty = append(dirty, next)
	for _, team := range teams {
		team.Rating = PreseasonRating(team.Rating)
		team.Bye = false
		dirty = append(dirty, team)
	}

	if err := u.store.BulkSave(dirty); err != nil {
		return nil, fmt.Errorf("failed to roll over season: %w", err)
	}

	return next, nil
}

// CommitWeek scrapes the given week and writes its results to the store,
// updating team ratings as it goes. A finalized week with missing scores is
// stale and nothing is committed. An explicitly in-progress week reports
// missing scores as zero, matching the site's convention for games underway,
// but those games are deferred untouched: no stamp, no rating update, so a
// later recommit picks them up with their real final scores
func (u *LiveUpdater) CommitWeek(season *Season, week WeekLabel, inProgress bool) error {
	games, err := u.fetchWeek(season, week)
	if err != nil {
		return err
	}
	return u.commitGames(season, week, games, inProgress)
}

// commitGames applies one week of scraped results against the persisted
// team ratings and rolling windows
func (u *LiveUpdater) commitGames(season *Season, week WeekLabel, games []*Game, inProgress bool) error {
	if len(games) == 0 {
		return &StaleDataError{Week: string(week), Reason: "no games found in schedule"}
	}

	// The bye derivation needs every team, played or not
	all, err := loadTeams(u.store)
	if err != nil {
		return err
	}
	teams := make(map[string]*Team, len(all))
	for _, team := range all {
		teams[team.Ticker] = team
	}

	var dirty []Persistable

	for _, game := range games {
		if !game.HasBeenPlayed() {
			if !inProgress {
				return &StaleDataError{Week: string(week), Reason: fmt.Sprintf("game %s has no final score", game.GameID)}
			}
			if game.HomePoints < 0 {
				game.HomePoints = 0
			}
			if game.AwayPoints < 0 {
				game.AwayPoints = 0
			}
			logger.Debug("Game still in progress, deferring", game.GameID)
			continue
		}

		home, err := u.team(teams, game.HomeTicker)
		if err != nil {
			return err
		}
		away, err := u.team(teams, game.AwayTicker)
		if err != nil {
			return err
		}
		game.HomeBye = home.Bye
		game.AwayBye = away.Bye

		// Skip games already committed by a previous run
		stored := &Game{}
		if err := u.store.FindByPrimaryKey(stored, game.GetPrimaryKey()); err == nil && stored.HasPregameRatings() {
			logger.Debug("Game already committed", game.GameID)
			continue
		}

		neutral, err := u.neutralCoordinate(teams, game)
		if err != nil {
			return err
		}

		homeShift, awayShift, err := PregameShift(home.Coordinate(), away.Coordinate(), neutral, game.HomeBye, game.AwayBye)
		if err != nil {
			return err
		}
		if err := game.SetPregameRatings(home.Rating+homeShift, away.Rating+awayShift); err != nil {
			return err
		}

		delta, err := PostgameDelta(game.HomePoints, game.AwayPoints, game.HomePregameRating, game.AwayPregameRating, game.Playoff)
		if err != nil {
			if re, ok := err.(*RangeError); ok {
				re.GameID = game.GameID
			}
			return err
		}
		home.Rating += delta
		away.Rating -= delta
		dirty = append(dirty, game)

		// Features are captured at kickoff, then the game enters the windows
		if u.features != nil && game.HasStats() {
			if !u.features.Bootstrapping() && u.features.HasHistory(game) {
				features, err := u.features.MatchupFeatures(game)
				if err != nil {
					return err
				}
				row, err := NewFeatureRow(game, features)
				if err != nil {
					return err
				}
				dirty = append(dirty, row)
			}
			if err := u.features.RecordGame(game); err != nil {
				return err
			}
		}
	}

	// Teams playing this week are not on bye next week
	u.updateByeFlags(teams, games)

	for _, team := range teams {
		dirty = append(dirty, team)
	}

	if err := u.store.BulkSave(dirty); err != nil {
		return fmt.Errorf("failed to commit week %s: %w", week, err)
	}

	logger.Info("Committed week", season.Label, string(week), len(games))
	return nil
}

// UpcomingSpreads produces spread predictions for every game of the given
// week without touching the store
func (u *LiveUpdater) UpcomingSpreads(season *Season, week WeekLabel) ([]*SpreadPrediction, error) {
	games, err := u.fetchWeek(season, week)
	if err != nil {
		return nil, err
	}

	teams := make(map[string]*Team)
	var predictions []*SpreadPrediction

	for _, game := range games {
		home, err := u.team(teams, game.HomeTicker)
		if err != nil {
			return nil, err
		}
		away, err := u.team(teams, game.AwayTicker)
		if err != nil {
			return nil, err
		}
		neutral, err := u.neutralCoordinate(teams, game)
		if err != nil {
			return nil, err
		}

		homeShift, awayShift, err := PregameShift(home.Coordinate(), away.Coordinate(), neutral, home.Bye, away.Bye)
		if err != nil {
			return nil, err
		}
		homePregame := home.Rating + homeShift
		awayPregame := away.Rating + awayShift

		diff, err := PregameDifferential(
			float64(home.Rating), float64(away.Rating),
			home.Coordinate(), away.Coordinate(), neutral,
			game.Playoff, home.Bye, away.Bye)
		if err != nil {
			return nil, err
		}

		prediction := &SpreadPrediction{
			GameID:      game.GameID,
			HomeTicker:  game.HomeTicker,
			AwayTicker:  game.AwayTicker,
			HomeRating:  homePregame,
			AwayRating:  awayPregame,
			HomeWinProb: WinProbability(float64(diff)),
			// Positive favours the home side
			EloSpread: float64(homePregame-awayPregame) / Config.SpreadDivisor,
		}

		if u.model != nil && u.features != nil {
			if err := game.SetPregameRatings(homePregame, awayPregame); err != nil {
				return nil, err
			}
			features, err := u.features.MatchupFeatures(game)
			if err == nil {
				spread, err := u.model.Predict(features)
				if err != nil {
					return nil, err
				}
				prediction.ModelSpread = spread
				prediction.HasModel = true
			} else {
				logger.Warn("No matchup features for game, rating spread only", game.GameID)
			}
		}

		predictions = append(predictions, prediction)
	}

	return predictions, nil
}

// fetchWeek scrapes the season schedule and returns the games of one week
func (u *LiveUpdater) fetchWeek(season *Season, week WeekLabel) ([]*Game, error) {
	weeks, err := u.ds.FetchSeason(season, u.resolver)
	if err != nil {
		return nil, err
	}
	for _, w := range weeks {
		if w.Label == week {
			return w.Games, nil
		}
	}
	return nil, nil
}

// team loads a team into the shared map, one fetch per ticker
func (u *LiveUpdater) team(teams map[string]*Team, ticker string) (*Team, error) {
	if team, ok := teams[ticker]; ok {
		return team, nil
	}
	team := &Team{}
	if err := u.store.FindByPrimaryKey(team, map[string]interface{}{"ticker": ticker}); err != nil {
		return nil, &DataIntegrityError{Subject: ticker, Reason: "unknown team"}
	}
	teams[ticker] = team
	return team, nil
}

// neutralCoordinate resolves the host stadium of a neutral site game
func (u *LiveUpdater) neutralCoordinate(teams map[string]*Team, game *Game) (*Coordinate, error) {
	if !game.Neutral {
		return nil, nil
	}
	if game.NeutralTicker == "" {
		return nil, &DataIntegrityError{Subject: game.GameID, Reason: "neutral game without a host stadium"}
	}
	host, err := u.team(teams, game.NeutralTicker)
	if err != nil {
		return nil, err
	}
	return host.Coordinate(), nil
}

// updateByeFlags marks every team that did not play this week as on bye for
// the following one
func (u *LiveUpdater) updateByeFlags(teams map[string]*Team, games []*Game) {
	played := make(map[string]bool)
	for _, game := range games {
		played[game.HomeTicker] = true
		played[game.AwayTicker] = true
	}
	for ticker, team := range teams {
		team.Bye = !played[ticker]
	}
}
