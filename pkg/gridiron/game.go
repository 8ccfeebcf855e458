package gridiron

import (
	"fmt"
	"time"
)

// Compile-time check to ensure Game implements Persistable interface
var _ Persistable = (*Game)(nil)

/**
* Game represents a single NFL fixture with database persistence annotations.
* Unknown numeric values are held as -1 rather than zero so that a scoreless
* final can be told apart from a game that has not been played. The pregame
* ratings are write once: they are stamped exactly when the game is first
* processed and never recomputed, which is what makes replays deterministic
 */
type Game struct {
	// Identity
	GameID      string `json:"gameId" column:"game_id" dbtype:"TEXT" primary:"true" index:"true"`
	SeasonLabel string `json:"seasonLabel" column:"season_label" dbtype:"TEXT NOT NULL" index:"true" fk:"seasons.label"`
	Week        string `json:"week" column:"week" dbtype:"TEXT NOT NULL" index:"true"`
	HomeTicker  string `json:"homeTicker" column:"home_ticker" dbtype:"TEXT NOT NULL" index:"true" fk:"teams.ticker"`
	AwayTicker  string `json:"awayTicker" column:"away_ticker" dbtype:"TEXT NOT NULL" index:"true" fk:"teams.ticker"`

	// Site. NeutralTicker names the team whose stadium hosts a neutral game
	Playoff       bool   `json:"playoff" column:"playoff" dbtype:"INTEGER DEFAULT 0"`
	Neutral       bool   `json:"neutral" column:"neutral" dbtype:"INTEGER DEFAULT 0"`
	NeutralTicker string `json:"neutralTicker" column:"neutral_ticker" dbtype:"TEXT DEFAULT ''"`

	// Bye flags, derived from the schedule at replay time
	HomeBye bool `json:"homeBye" column:"home_bye" dbtype:"INTEGER DEFAULT 0"`
	AwayBye bool `json:"awayBye" column:"away_bye" dbtype:"INTEGER DEFAULT 0"`

	// Results (-1 = not played)
	HomePoints int `json:"homePoints" column:"home_points" dbtype:"INTEGER DEFAULT -1"`
	AwayPoints int `json:"awayPoints" column:"away_points" dbtype:"INTEGER DEFAULT -1"`

	// Box score stats (-1 = unknown)
	HomeYards     int `json:"homeYards" column:"home_yards" dbtype:"INTEGER DEFAULT -1"`
	AwayYards     int `json:"awayYards" column:"away_yards" dbtype:"INTEGER DEFAULT -1"`
	HomeTurnovers int `json:"homeTurnovers" column:"home_turnovers" dbtype:"INTEGER DEFAULT -1"`
	AwayTurnovers int `json:"awayTurnovers" column:"away_turnovers" dbtype:"INTEGER DEFAULT -1"`

	// Stamped, adjusted ratings at kickoff (-1 = not yet stamped)
	HomePregameRating int `json:"homePregameRating" column:"home_pregame_rating" dbtype:"INTEGER DEFAULT -1"`
	AwayPregameRating int `json:"awayPregameRating" column:"away_pregame_rating" dbtype:"INTEGER DEFAULT -1"`

	// Metadata
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// NewGame creates a game with all unknown values set to the -1 sentinel
func NewGame(seasonLabel string, week WeekLabel, homeTicker, awayTicker string) *Game {
	return &Game{
		GameID:            GameID(seasonLabel, week, homeTicker, awayTicker),
		SeasonLabel:       seasonLabel,
		Week:              string(week),
		HomeTicker:        homeTicker,
		AwayTicker:        awayTicker,
		Playoff:           week.IsPlayoff(),
		HomePoints:        -1,
		AwayPoints:        -1,
		HomeYards:         -1,
		AwayYards:         -1,
		HomeTurnovers:     -1,
		AwayTurnovers:     -1,
		HomePregameRating: -1,
		AwayPregameRating: -1,
	}
}

// GameID builds the canonical identifier for a fixture
func GameID(seasonLabel string, week WeekLabel, homeTicker, awayTicker string) string {
	return fmt.Sprintf("%s_%s_%s_%s", seasonLabel, week, homeTicker, awayTicker)
}

/////////////////////////////////////////////////////////////////////////
////// Persistable Interface Implementation
/////////////////////////////////////////////////////////////////////////

// GetPrimaryKey returns the primary key as a map
func (g *Game) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"game_id": g.GameID,
	}
}

// SetPrimaryKey sets the primary key from a map
func (g *Game) SetPrimaryKey(pk map[string]interface{}) error {
	if id, ok := pk["game_id"]; ok {
		if idStr, ok := id.(string); ok {
			g.GameID = idStr
			return nil
		}
		return fmt.Errorf("primary key 'game_id' must be a string")
	}
	return fmt.Errorf("primary key 'game_id' not found")
}

// GetTableName returns the table name for games
func (g *Game) GetTableName() string {
	return "games"
}

// BeforeSave is called before saving the game
func (g *Game) BeforeSave() error {
	now := time.Now()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now
	return nil
}

// AfterSave is called after saving the game
func (g *Game) AfterSave() error {
	return nil
}

// BeforeDelete is called before deleting the game
func (g *Game) BeforeDelete() error {
	return nil
}

// AfterDelete is called after deleting the game
func (g *Game) AfterDelete() error {
	return nil
}

/////////////////////////////////////////////////////////////////////////
////// Game state
/////////////////////////////////////////////////////////////////////////

// WeekLabel returns the typed week of this game
func (g *Game) WeekLabel() WeekLabel {
	return WeekLabel(g.Week)
}

// HasBeenPlayed returns true once both scores are known
func (g *Game) HasBeenPlayed() bool {
	return g.HomePoints >= 0 && g.AwayPoints >= 0
}

// HasPregameRatings returns true once the pregame ratings have been stamped
func (g *Game) HasPregameRatings() bool {
	return g.HomePregameRating >= 0 && g.AwayPregameRating >= 0
}

// HasStats returns true if the box score stats needed by the feature windows
// are all present
func (g *Game) HasStats() bool {
	return g.HasBeenPlayed() &&
		g.HomeYards >= 0 && g.AwayYards >= 0 &&
		g.HomeTurnovers >= 0 && g.AwayTurnovers >= 0
}

// SetPregameRatings stamps the adjusted pregame ratings onto the game.
// Attempting to overwrite already stamped values is an integrity violation:
// a stamped game must never yield different numbers on replay
func (g *Game) SetPregameRatings(homePregame, awayPregame int) error {
	if g.HasPregameRatings() {
		if g.HomePregameRating == homePregame && g.AwayPregameRating == awayPregame {
			return nil
		}
		return &DataIntegrityError{
			Subject: g.GameID,
			Reason: fmt.Sprintf("pregame ratings already stamped (%d/%d), refusing overwrite with (%d/%d)",
				g.HomePregameRating, g.AwayPregameRating, homePregame, awayPregame),
		}
	}
	if homePregame < 0 || awayPregame < 0 {
		return &DataIntegrityError{
			Subject: g.GameID,
			Reason:  fmt.Sprintf("negative pregame rating (%d/%d)", homePregame, awayPregame),
		}
	}
	g.HomePregameRating = homePregame
	g.AwayPregameRating = awayPregame
	return nil
}

// PointDifferential returns home points minus away points
func (g *Game) PointDifferential() int {
	return g.HomePoints - g.AwayPoints
}
