package gridiron

import (
	"fmt"

	"github.com/richard-senior/gridiron/internal/logger"
)

/**
* Full historical replay: seed the franchise table, scrape every tracked
* season's schedule and run the simulator over them oldest first. The replay
* is deterministic, so rerunning it over an existing database must land on
* identical ratings, stamped pregame values and feature rows. Two things make
* that hold: every rating is reset to the baseline before the replay starts,
* and any pregame stamps already in the store are adopted onto the freshly
* scraped games so a divergent rerun is refused rather than silently
* overwriting them
 */
func ReplayHistory(store *Store) (*SeasonSimulator, error) {
	if err := store.SaveTeams(SeedTeams()); err != nil {
		return nil, err
	}
	if err := resetRatings(store); err != nil {
		return nil, err
	}

	teams, err := loadTeams(store)
	if err != nil {
		return nil, err
	}
	resolver := NewTeamResolver(teams)
	ds := GetPfrInstance()

	sim, err := NewSeasonSimulator(store)
	if err != nil {
		return nil, err
	}

	for _, label := range Config.Seasons {
		season, err := ensureSeason(store, label)
		if err != nil {
			return nil, err
		}

		weeks, err := ds.FetchSeason(season, resolver)
		if err != nil {
			return nil, err
		}
		season.Weeks = weeks

		if err := adoptStoredStamps(store, season); err != nil {
			return nil, err
		}
		if err := sim.ProcessSeason(season); err != nil {
			return nil, fmt.Errorf("replay aborted at season %s: %w", label, err)
		}
	}

	logger.Inform("Historical replay complete", len(Config.Seasons))
	return sim, nil
}

// resetRatings puts every franchise back on the baseline rating with no bye
// flag, the state a replay always starts from
func resetRatings(store *Store) error {
	teams, err := loadTeams(store)
	if err != nil {
		return err
	}
	var dirty []Persistable
	for _, team := range teams {
		team.Rating = Config.BaselineRating
		team.Bye = false
		dirty = append(dirty, team)
	}
	return store.BulkSave(dirty)
}

// adoptStoredStamps copies previously committed pregame stamps onto freshly
// scraped games. The stamps are write once, so processing a game carrying an
// adopted stamp verifies the replay reproduces it instead of overwriting it
func adoptStoredStamps(store *Store, season *Season) error {
	results, err := store.FindWhere(&Game{}, "season_label = ?", season.Label)
	if err != nil {
		return err
	}
	stamped := make(map[string]*Game)
	for _, result := range results {
		if game, ok := result.(*Game); ok && game.HasPregameRatings() {
			stamped[game.GameID] = game
		}
	}
	if len(stamped) == 0 {
		return nil
	}
	for _, week := range season.Weeks {
		for _, game := range week.Games {
			if stored, ok := stamped[game.GameID]; ok {
				game.HomePregameRating = stored.HomePregameRating
				game.AwayPregameRating = stored.AwayPregameRating
			}
		}
	}
	return nil
}

// ensureSeason loads or creates the season row for a label. The league moved
// from seventeen to eighteen regular season weeks in 2021
func ensureSeason(store *Store, label string) (*Season, error) {
	season := &Season{Label: label}

	exists, err := store.Exists(season)
	if err != nil {
		return nil, err
	}
	if exists {
		if err := store.FindByPrimaryKey(season, season.GetPrimaryKey()); err != nil {
			return nil, err
		}
		return season, nil
	}

	firstYear, err := season.FirstYear()
	if err != nil {
		return nil, err
	}
	if firstYear >= 2021 {
		season.Length = 18
	} else {
		season.Length = 17
	}

	if err := store.Save(season); err != nil {
		return nil, err
	}
	return season, nil
}
