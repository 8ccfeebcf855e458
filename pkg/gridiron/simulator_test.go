package gridiron

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens an in-memory database holding four franchises
func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	teams := []*Team{
		{Ticker: "KC", Name: "Kansas City Chiefs", Latitude: 39.099789, Longitude: -94.578560, Rating: Config.BaselineRating},
		{Ticker: "HOU", Name: "Houston Texans", Latitude: 29.760427, Longitude: -95.369804, Rating: Config.BaselineRating},
		{Ticker: "SEA", Name: "Seattle Seahawks", Latitude: 47.603230, Longitude: -122.330276, Rating: Config.BaselineRating},
		{Ticker: "ARI", Name: "Arizona Cardinals", Latitude: 33.52738095014831, Longitude: -112.26238094759978, Rating: Config.BaselineRating},
	}
	require.NoError(t, store.SaveTeams(teams))
	return store
}

// withWindowSize shrinks the rolling window for tests that replay tiny seasons
func withWindowSize(t *testing.T, size int) {
	t.Helper()
	old := Config.WindowSize
	Config.WindowSize = size
	t.Cleanup(func() { Config.WindowSize = old })
}

func testGame(seasonLabel string, week WeekLabel, home, away string, homePts, awayPts int) *Game {
	g := NewGame(seasonLabel, week, home, away)
	g.HomePoints = homePts
	g.AwayPoints = awayPts
	g.HomeYards = 350
	g.AwayYards = 300
	g.HomeTurnovers = 1
	g.AwayTurnovers = 2
	return g
}

func twoWeekSeason(label string) *Season {
	return &Season{
		Label:  label,
		Length: 2,
		Weeks: []*Week{
			{Label: "1", Games: []*Game{
				testGame(label, "1", "KC", "HOU", 28, 14),
				testGame(label, "1", "SEA", "ARI", 17, 20),
			}},
			{Label: "2", Games: []*Game{
				testGame(label, "2", "KC", "SEA", 31, 10),
				testGame(label, "2", "HOU", "ARI", 21, 24),
			}},
		},
	}
}

func TestProcessSeasonUpdatesRatings(t *testing.T) {
	withWindowSize(t, 2)
	store := newTestStore(t)
	require.NoError(t, store.Save(&Season{Label: "2011-2012", Length: 2}))

	sim, err := NewSeasonSimulator(store)
	require.NoError(t, err)
	require.NoError(t, sim.ProcessSeason(twoWeekSeason("2011-2012")))

	// Two wins up, two losses down
	kc, err := sim.Rating("KC")
	require.NoError(t, err)
	assert.Greater(t, kc, Config.BaselineRating)

	sea, err := sim.Rating("SEA")
	require.NoError(t, err)
	assert.Less(t, sea, Config.BaselineRating)

	// Committed ratings match the live ones
	stored := &Team{}
	require.NoError(t, store.FindByPrimaryKey(stored, map[string]interface{}{"ticker": "KC"}))
	assert.Equal(t, kc, stored.Rating)

	// Every game was stamped and persisted
	results, err := store.FindAll(&Game{})
	require.NoError(t, err)
	assert.Len(t, results, 4)
	for _, result := range results {
		game := result.(*Game)
		assert.True(t, game.HasPregameRatings(), game.GameID)
	}
}

func TestPregameStampIncludesHalfShift(t *testing.T) {
	withWindowSize(t, 2)
	store := newTestStore(t)
	require.NoError(t, store.Save(&Season{Label: "2011-2012", Length: 2}))

	sim, err := NewSeasonSimulator(store)
	require.NoError(t, err)
	require.NoError(t, sim.ProcessSeason(twoWeekSeason("2011-2012")))

	game := &Game{}
	pk := map[string]interface{}{"game_id": GameID("2011-2012", "1", "KC", "HOU")}
	require.NoError(t, store.FindByPrimaryKey(game, pk))

	// Both sides started at baseline; the stamped values bracket it
	assert.Greater(t, game.HomePregameRating, Config.BaselineRating)
	assert.Less(t, game.AwayPregameRating, Config.BaselineRating)
	assert.Equal(t,
		game.HomePregameRating-Config.BaselineRating,
		Config.BaselineRating-game.AwayPregameRating)
}

func TestReplayDeterminism(t *testing.T) {
	withWindowSize(t, 2)
	store := newTestStore(t)
	require.NoError(t, store.Save(&Season{Label: "2011-2012", Length: 2}))

	sim, err := NewSeasonSimulator(store)
	require.NoError(t, err)
	require.NoError(t, sim.ProcessSeason(twoWeekSeason("2011-2012")))

	firstRun := make(map[string]int)
	for _, ticker := range []string{"KC", "HOU", "SEA", "ARI"} {
		rating, err := sim.Rating(ticker)
		require.NoError(t, err)
		firstRun[ticker] = rating
	}

	// Reset the live ratings and replay the committed season. The stamped
	// pregame values must be reproduced exactly, not overwritten
	teams, err := loadTeams(store)
	require.NoError(t, err)
	for _, team := range teams {
		team.Rating = Config.BaselineRating
		require.NoError(t, store.Save(team))
	}

	season, err := store.LoadSeason("2011-2012")
	require.NoError(t, err)

	replay, err := NewSeasonSimulator(store)
	require.NoError(t, err)
	require.NoError(t, replay.ProcessSeason(season))

	for ticker, want := range firstRun {
		got, err := replay.Rating(ticker)
		require.NoError(t, err)
		assert.Equal(t, want, got, ticker)
	}
}

func TestDuplicateTeamInWeek(t *testing.T) {
	withWindowSize(t, 2)
	store := newTestStore(t)

	season := &Season{
		Label:  "2011-2012",
		Length: 1,
		Weeks: []*Week{
			{Label: "1", Games: []*Game{
				testGame("2011-2012", "1", "KC", "HOU", 28, 14),
				testGame("2011-2012", "1", "KC", "SEA", 21, 10),
			}},
		},
	}

	sim, err := NewSeasonSimulator(store)
	require.NoError(t, err)

	err = sim.ProcessSeason(season)
	var die *DataIntegrityError
	require.ErrorAs(t, err, &die)

	// Nothing committed
	results, err := store.FindAll(&Game{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPregameOverwriteRefused(t *testing.T) {
	withWindowSize(t, 2)
	store := newTestStore(t)

	season := twoWeekSeason("2011-2012")
	// Simulate corrupted data: a stamp that disagrees with the replay
	season.Weeks[0].Games[0].HomePregameRating = 1000
	season.Weeks[0].Games[0].AwayPregameRating = 1000

	sim, err := NewSeasonSimulator(store)
	require.NoError(t, err)

	err = sim.ProcessSeason(season)
	var die *DataIntegrityError
	require.ErrorAs(t, err, &die)
}

func TestByeDerivation(t *testing.T) {
	withWindowSize(t, 1)
	store := newTestStore(t)

	season := &Season{
		Label:  "2011-2012",
		Length: 2,
		Weeks: []*Week{
			{Label: "1", Games: []*Game{
				testGame("2011-2012", "1", "KC", "HOU", 28, 14),
			}},
			{Label: "2", Games: []*Game{
				testGame("2011-2012", "2", "SEA", "KC", 17, 20),
			}},
		},
	}

	sim, err := NewSeasonSimulator(store)
	require.NoError(t, err)
	require.NoError(t, sim.ProcessSeason(season))

	game := season.Weeks[1].Games[0]
	assert.True(t, game.HomeBye, "SEA sat out week 1")
	assert.False(t, game.AwayBye, "KC played week 1")
}

func TestUnknownTeamRejected(t *testing.T) {
	withWindowSize(t, 1)
	store := newTestStore(t)

	season := &Season{
		Label:  "2011-2012",
		Length: 1,
		Weeks: []*Week{
			{Label: "1", Games: []*Game{
				testGame("2011-2012", "1", "KC", "XYZ", 28, 14),
			}},
		},
	}

	sim, err := NewSeasonSimulator(store)
	require.NoError(t, err)

	err = sim.ProcessSeason(season)
	var die *DataIntegrityError
	require.ErrorAs(t, err, &die)
}

func TestNewFranchiseAfterBootstrap(t *testing.T) {
	withWindowSize(t, 2)
	store := newTestStore(t)
	lar := &Team{Ticker: "LAR", Name: "Los Angeles Rams", Latitude: 33.95369646674758, Longitude: -118.33909324725614, Rating: Config.BaselineRating}
	require.NoError(t, store.SaveTeams([]*Team{lar}))

	sim, err := NewSeasonSimulator(store)
	require.NoError(t, err)

	// Bootstrap season played entirely without the relocated franchise
	require.NoError(t, sim.ProcessSeason(twoWeekSeason("2011-2012")))

	second := &Season{
		Label:  "2012-2013",
		Length: 2,
		Weeks: []*Week{
			{Label: "1", Games: []*Game{
				testGame("2012-2013", "1", "KC", "LAR", 30, 17),
				testGame("2012-2013", "1", "SEA", "HOU", 13, 16),
			}},
			{Label: "2", Games: []*Game{
				testGame("2012-2013", "2", "LAR", "SEA", 20, 27),
			}},
		},
	}
	require.NoError(t, sim.ProcessSeason(second))

	// Rated from its first game on, windows filling as it plays
	rating, err := sim.Rating("LAR")
	require.NoError(t, err)
	assert.Less(t, rating, Config.BaselineRating)
	assert.Equal(t, 2, sim.Features().WindowLength("LAR"))

	// The debut had no form history so it produced no training row; the
	// other fixtures of the season did
	results, err := store.FindWhere(&FeatureRow{}, "season_label = ?", "2012-2013")
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, result := range results {
		assert.NotEqual(t, GameID("2012-2013", "1", "KC", "LAR"), result.(*FeatureRow).GameID)
	}
}

func TestPreseasonRegressionBetweenSeasons(t *testing.T) {
	withWindowSize(t, 2)
	store := newTestStore(t)

	sim, err := NewSeasonSimulator(store)
	require.NoError(t, err)
	require.NoError(t, sim.ProcessSeason(twoWeekSeason("2011-2012")))

	kcAfterFirst, err := sim.Rating("KC")
	require.NoError(t, err)

	require.NoError(t, sim.ProcessSeason(twoWeekSeason("2012-2013")))
	kcAfterSecond, err := sim.Rating("KC")
	require.NoError(t, err)

	// The second season started from the regressed rating, so the final
	// number differs from simply winning four in a row off the baseline
	assert.NotEqual(t, kcAfterFirst, kcAfterSecond)
	assert.Greater(t, kcAfterSecond, Config.BaselineRating)
}
