package gridiron

import (
	"fmt"
	"time"

	"github.com/richard-senior/gridiron/internal/logger"
)

// Compile-time check to ensure Team implements Persistable interface
var _ Persistable = (*Team)(nil)

// Team represents an NFL franchise with database persistence annotations.
// Rating is the live Elo score; it is mutated only by the postgame update
// and the preseason regression. Bye marks whether the team is off in the
// current week of the live season
type Team struct {
	Ticker    string  `json:"ticker" column:"ticker" dbtype:"TEXT" primary:"true" index:"true"`
	Name      string  `json:"name" column:"name" dbtype:"TEXT NOT NULL" index:"true"`
	Latitude  float64 `json:"latitude" column:"latitude" dbtype:"REAL"`
	Longitude float64 `json:"longitude" column:"longitude" dbtype:"REAL"`
	Rating    int     `json:"rating" column:"rating" dbtype:"INTEGER DEFAULT 1505"`
	Bye       bool    `json:"bye" column:"bye" dbtype:"INTEGER DEFAULT 0"`

	// Metadata
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

/////////////////////////////////////////////////////////////////////////
////// Persistable Interface Implementation
/////////////////////////////////////////////////////////////////////////

// GetPrimaryKey returns the primary key as a map
func (t *Team) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"ticker": t.Ticker,
	}
}

// SetPrimaryKey sets the primary key from a map
func (t *Team) SetPrimaryKey(pk map[string]interface{}) error {
	if ticker, ok := pk["ticker"]; ok {
		if tickerStr, ok := ticker.(string); ok {
			t.Ticker = tickerStr
			return nil
		}
		return fmt.Errorf("primary key 'ticker' must be a string")
	}
	return fmt.Errorf("primary key 'ticker' not found")
}

// GetTableName returns the table name for teams
func (t *Team) GetTableName() string {
	return "teams"
}

// BeforeSave is called before saving the team
func (t *Team) BeforeSave() error {
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return nil
}

// AfterSave is called after saving the team
func (t *Team) AfterSave() error {
	return nil
}

// BeforeDelete is called before deleting the team
func (t *Team) BeforeDelete() error {
	return nil
}

// AfterDelete is called after deleting the team
func (t *Team) AfterDelete() error {
	return nil
}

// Coordinate returns the team's stadium location
func (t *Team) Coordinate() *Coordinate {
	return &Coordinate{Latitude: t.Latitude, Longitude: t.Longitude}
}

/////////////////////////////////////////////////////////////////////////
////// Team Collection Operations
/////////////////////////////////////////////////////////////////////////

// SaveTeams saves teams to the database, skipping ones that already exist
func (s *Store) SaveTeams(teams []*Team) error {
	logger.Info("Saving teams to database", len(teams))

	var newTeams []Persistable
	for _, team := range teams {
		exists, err := s.Exists(team)
		if err != nil {
			logger.Warn("Failed to check if team exists", team.Ticker, err)
			continue
		}

		if !exists {
			newTeams = append(newTeams, team)
			logger.Debug("Will save new team", team.Ticker, team.Name)
		} else {
			logger.Debug("Team already exists", team.Ticker, team.Name)
		}
	}

	if len(newTeams) > 0 {
		if err := s.BulkSave(newTeams); err != nil {
			return fmt.Errorf("failed to bulk save teams: %w", err)
		}
		logger.Info("Bulk saved teams", len(newTeams))
	} else {
		logger.Info("No new teams to save")
	}

	return nil
}

// seedTeam is a static franchise record: name, stadium location and ticker
type seedTeam struct {
	Name      string
	Latitude  float64
	Longitude float64
	Ticker    string
}

// Franchise seed data including relocated franchises (St. Louis Rams,
// San Diego Chargers, Oakland Raiders) so that older seasons resolve
var seedTeams = []seedTeam{
	{"Kansas City Chiefs", 39.099789, -94.578560, "KC"},
	{"Houston Texans", 29.760427, -95.369804, "HOU"},
	{"Seattle Seahawks", 47.603230, -122.330276, "SEA"},
	{"Atlanta Falcons", 33.748997, -84.387985, "ATL"},
	{"Buffalo Bills", 42.887691, -78.879372, "BUF"},
	{"New York Jets", 40.814947462026176, -74.07665577312015, "NYJ"},
	{"Las Vegas Raiders", 36.13138384905654, -115.13169451756163, "LV"},
	{"Carolina Panthers", 35.25251233973856, -80.84120226587098, "CAR"},
	{"Chicago Bears", 41.84754487986402, -87.67153913855199, "CHI"},
	{"Detroit Lions", 42.36480313066512, -83.08960351424362, "DET"},
	{"Baltimore Ravens", 39.308003294731584, -76.6205088127477, "BAL"},
	{"Cleveland Browns", 41.46606790678101, -81.67222601665915, "CLE"},
	{"Jacksonville Jaguars", 30.373130908558224, -81.68590701566833, "JAC"},
	{"Indianapolis Colts", 39.82165042217416, -86.14927731202125, "IND"},
	{"Green Bay Packers", 44.52030015455375, -88.02808200465094, "GB"},
	{"Minnesota Vikings", 44.95461717252483, -93.16928759979443, "MIN"},
	{"New England Patriots", 42.09250215474584, -71.2639840458412, "NE"},
	{"Miami Dolphins", 25.958159412628838, -80.23881748795804, "MIA"},
	{"Washington Commanders", 38.907843649151665, -76.86454540290117, "WAS"},
	{"Philadelphia Eagles", 39.90153409172584, -75.1675215028637, "PHI"},
	{"Los Angeles Chargers", 33.95369646674758, -118.33909324725614, "LAC"},
	{"Cincinnati Bengals", 39.095483938138024, -84.51594106292978, "CIN"},
	{"Arizona Cardinals", 33.52738095014831, -112.26238094759978, "ARI"},
	{"San Francisco 49ers", 37.4032482976688, -121.96987092942953, "SF"},
	{"New Orleans Saints", 29.95130267822774, -90.08121201668786, "NO"},
	{"Tampa Bay Buccaneers", 27.976153335923133, -82.50335586092449, "TB"},
	{"Los Angeles Rams", 33.95369646674758, -118.33909324725614, "LAR"},
	{"Dallas Cowboys", 32.7480062696302, -97.09303478136525, "DAL"},
	{"Pittsburgh Steelers", 40.4470587094102, -80.01595342189762, "PIT"},
	{"New York Giants", 40.814947462026176, -74.07665577312015, "NYG"},
	{"Tennessee Titans", 36.16623854753519, -86.77101512830522, "TEN"},
	{"Denver Broncos", 39.74381523382964, -105.02021669123351, "DEN"},
	{"St. Louis Rams", 38.627003, -90.199402, "STL"},
	{"San Diego Chargers", 32.71533, -117.15726, "SD"},
	{"Oakland Raiders", 37.804363, -122.271111, "OAK"},
}

// SeedTeams builds the full franchise list with every rating set to the
// configured baseline
func SeedTeams() []*Team {
	teams := make([]*Team, 0, len(seedTeams))
	for _, st := range seedTeams {
		teams = append(teams, &Team{
			Ticker:    st.Ticker,
			Name:      st.Name,
			Latitude:  st.Latitude,
			Longitude: st.Longitude,
			Rating:    Config.BaselineRating,
		})
	}
	return teams
}

// NormalizeTeamName folds historical franchise renames into the current
// name so that scraped rows resolve against the team table
func NormalizeTeamName(name string) string {
	if name == "Washington Redskins" || name == "Washington Football Team" {
		return "Washington Commanders"
	}
	return name
}
