package gridiron

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// playedGame builds a completed, stamped fixture for window tests
func playedGame(n int, home, away string, homePts, awayPts int) *Game {
	g := NewGame("2011-2012", WeekLabel(fmt.Sprintf("%d", (n%14)+1)), home, away)
	g.GameID = fmt.Sprintf("wtest-%d-%s-%s", n, home, away)
	g.HomePoints = homePts
	g.AwayPoints = awayPts
	g.HomeYards = 300 + homePts
	g.AwayYards = 300 + awayPts
	g.HomeTurnovers = 1
	g.AwayTurnovers = 2
	g.HomePregameRating = 1550
	g.AwayPregameRating = 1450
	return g
}

func TestRecordGameRequiresCompleteData(t *testing.T) {
	fs := NewFeatureStore()

	g := NewGame("2011-2012", "1", "KC", "HOU")
	err := fs.RecordGame(g)
	var die *DataIntegrityError
	assert.ErrorAs(t, err, &die)

	g = playedGame(0, "KC", "HOU", 28, 14)
	g.HomePregameRating = -1
	g.AwayPregameRating = -1
	err = fs.RecordGame(g)
	assert.ErrorAs(t, err, &die)
}

func TestTurnoverInversion(t *testing.T) {
	fs := NewFeatureStore()

	// Home gave the ball away once and took it away twice
	if err := fs.RecordGame(playedGame(0, "KC", "HOU", 28, 14)); err != nil {
		t.Fatal(err)
	}

	kc, err := fs.FeaturesFor("KC")
	if err != nil {
		t.Fatal(err)
	}
	// Takeaways 2, giveaways 1
	assert.InDelta(t, 1.0, kc.Turnovers, 1e-9)

	hou, err := fs.FeaturesFor("HOU")
	if err != nil {
		t.Fatal(err)
	}
	assert.InDelta(t, -1.0, hou.Turnovers, 1e-9)
}

func TestFeaturesAreForMinusAgainst(t *testing.T) {
	fs := NewFeatureStore()
	if err := fs.RecordGame(playedGame(0, "KC", "HOU", 28, 14)); err != nil {
		t.Fatal(err)
	}

	kc, err := fs.FeaturesFor("KC")
	if err != nil {
		t.Fatal(err)
	}
	assert.InDelta(t, 14.0, kc.Points, 1e-9)
	assert.InDelta(t, 100.0, kc.Rating, 1e-9)
	assert.InDelta(t, 14.0, kc.Yards, 1e-9)

	// Mirror image for the away side
	hou, err := fs.FeaturesFor("HOU")
	if err != nil {
		t.Fatal(err)
	}
	assert.InDelta(t, -14.0, hou.Points, 1e-9)
	assert.InDelta(t, -100.0, hou.Rating, 1e-9)
}

func TestBootstrapKeepsFirstGames(t *testing.T) {
	fs := NewFeatureStore()

	// Twenty games; during bootstrap only the first fourteen count
	for i := 0; i < 20; i++ {
		pts := 10 + i
		if err := fs.RecordGame(playedGame(i, "KC", "HOU", pts, 7)); err != nil {
			t.Fatal(err)
		}
	}

	if got := fs.WindowLength("KC"); got != Config.WindowSize {
		t.Fatalf("window length = %d, want %d", got, Config.WindowSize)
	}

	// Mean over games 0..13, scores 10..23
	kc, err := fs.FeaturesFor("KC")
	if err != nil {
		t.Fatal(err)
	}
	assert.InDelta(t, 16.5-7.0, kc.Points, 1e-9)
}

func TestLiveWindowEvictsOldest(t *testing.T) {
	fs := NewFeatureStore()
	for i := 0; i < 14; i++ {
		if err := fs.RecordGame(playedGame(i, "KC", "HOU", 10+i, 7)); err != nil {
			t.Fatal(err)
		}
	}
	if err := fs.EndBootstrap(); err != nil {
		t.Fatal(err)
	}

	// One more game pushes out the oldest (score 10), bringing in 50
	if err := fs.RecordGame(playedGame(14, "KC", "HOU", 50, 7)); err != nil {
		t.Fatal(err)
	}
	if got := fs.WindowLength("KC"); got != Config.WindowSize {
		t.Fatalf("window length = %d, want %d", got, Config.WindowSize)
	}

	kc, err := fs.FeaturesFor("KC")
	if err != nil {
		t.Fatal(err)
	}
	// Scores 11..23 plus 50
	wantMean := (float64(11+23)*13/2 + 50) / 14
	assert.InDelta(t, wantMean-7.0, kc.Points, 1e-9)
}

func TestEndBootstrapRequiresFullWindows(t *testing.T) {
	fs := NewFeatureStore()
	for i := 0; i < 13; i++ {
		if err := fs.RecordGame(playedGame(i, "KC", "HOU", 21, 7)); err != nil {
			t.Fatal(err)
		}
	}

	err := fs.EndBootstrap()
	var die *DataIntegrityError
	assert.ErrorAs(t, err, &die)
}

func TestMatchupFeatures(t *testing.T) {
	fs := NewFeatureStore()
	if err := fs.RecordGame(playedGame(0, "KC", "HOU", 28, 14)); err != nil {
		t.Fatal(err)
	}

	next := NewGame("2011-2012", "2", "KC", "HOU")
	if err := next.SetPregameRatings(1560, 1440); err != nil {
		t.Fatal(err)
	}

	features, err := fs.MatchupFeatures(next)
	if err != nil {
		t.Fatal(err)
	}
	if len(features) != 5 {
		t.Fatalf("feature vector length = %d, want 5", len(features))
	}

	// Home minus away in every windowed category
	assert.InDelta(t, 200.0, features[0], 1e-9)
	assert.InDelta(t, 28.0, features[1], 1e-9)
	assert.InDelta(t, 28.0, features[2], 1e-9)
	assert.InDelta(t, 2.0, features[3], 1e-9)

	// (away - home) / 25
	assert.InDelta(t, float64(1440-1560)/25.0, features[4], 1e-9)
}

func TestMatchupFeaturesRequireHistory(t *testing.T) {
	fs := NewFeatureStore()
	next := NewGame("2011-2012", "2", "KC", "HOU")
	if err := next.SetPregameRatings(1560, 1440); err != nil {
		t.Fatal(err)
	}

	_, err := fs.MatchupFeatures(next)
	var die *DataIntegrityError
	assert.ErrorAs(t, err, &die)
}
