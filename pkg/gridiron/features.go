package gridiron

import (
	"fmt"
	"time"
)

// Compile-time check to ensure FeatureRow implements Persistable interface
var _ Persistable = (*FeatureRow)(nil)

// FeatureRow is one training example emitted during replay: the five model
// inputs at kickoff plus the final home point differential as the label.
// Rows share their primary key with the game they were derived from
type FeatureRow struct {
	GameID      string `json:"gameId" column:"game_id" dbtype:"TEXT" primary:"true" index:"true" fk:"games.game_id"`
	SeasonLabel string `json:"seasonLabel" column:"season_label" dbtype:"TEXT NOT NULL" index:"true"`
	Week        string `json:"week" column:"week" dbtype:"TEXT NOT NULL"`

	RatingDiff    float64 `json:"ratingDiff" column:"rating_diff" dbtype:"REAL"`
	PointsDiff    float64 `json:"pointsDiff" column:"points_diff" dbtype:"REAL"`
	YardsDiff     float64 `json:"yardsDiff" column:"yards_diff" dbtype:"REAL"`
	TurnoversDiff float64 `json:"turnoversDiff" column:"turnovers_diff" dbtype:"REAL"`
	EloPredSpread float64 `json:"eloPredSpread" column:"elo_pred_spread" dbtype:"REAL"`

	// Label: final home points minus away points
	PointDifferential int `json:"pointDifferential" column:"point_differential" dbtype:"INTEGER"`

	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// NewFeatureRow builds a row from a played game and its matchup features
func NewFeatureRow(g *Game, features []float64) (*FeatureRow, error) {
	if len(features) != 5 {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("expected 5 matchup features, got %d", len(features))}
	}
	if !g.HasBeenPlayed() {
		return nil, &InvalidInputError{Reason: "feature rows require a final score"}
	}
	return &FeatureRow{
		GameID:            g.GameID,
		SeasonLabel:       g.SeasonLabel,
		Week:              g.Week,
		RatingDiff:        features[0],
		PointsDiff:        features[1],
		YardsDiff:         features[2],
		TurnoversDiff:     features[3],
		EloPredSpread:     features[4],
		PointDifferential: g.PointDifferential(),
	}, nil
}

// RebuildFeatureStore replays every stored completed game through a fresh
// set of windows, oldest season first. The earliest stored season acts as the
// bootstrap, mirroring how the windows were originally built, so the result
// matches the simulator's in-memory state at the point it committed. Seasons
// that have not been replayed into the store yet are skipped
func RebuildFeatureStore(store *Store) (*FeatureStore, error) {
	features := NewFeatureStore()
	for _, label := range Config.Seasons {
		exists, err := store.Exists(&Season{Label: label})
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		season, err := store.LoadSeason(label)
		if err != nil {
			return nil, err
		}
		for _, week := range season.Weeks {
			for _, game := range week.Games {
				if !game.HasStats() || !game.HasPregameRatings() {
					continue
				}
				if err := features.RecordGame(game); err != nil {
					return nil, err
				}
			}
		}
		if features.Bootstrapping() {
			if err := features.EndBootstrap(); err != nil {
				return nil, err
			}
		}
	}
	return features, nil
}

// Vector returns the row's model inputs in training order
func (r *FeatureRow) Vector() []float64 {
	return []float64{r.RatingDiff, r.PointsDiff, r.YardsDiff, r.TurnoversDiff, r.EloPredSpread}
}

// GetPrimaryKey returns the primary key as a map
func (r *FeatureRow) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"game_id": r.GameID,
	}
}

// SetPrimaryKey sets the primary key from a map
func (r *FeatureRow) SetPrimaryKey(pk map[string]interface{}) error {
	if id, ok := pk["game_id"]; ok {
		if idStr, ok := id.(string); ok {
			r.GameID = idStr
			return nil
		}
		return fmt.Errorf("primary key 'game_id' must be a string")
	}
	return fmt.Errorf("primary key 'game_id' not found")
}

// GetTableName returns the table name for feature rows
func (r *FeatureRow) GetTableName() string {
	return "features"
}

// BeforeSave is called before saving the feature row
func (r *FeatureRow) BeforeSave() error {
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	return nil
}

// AfterSave is called after saving the feature row
func (r *FeatureRow) AfterSave() error {
	return nil
}

// BeforeDelete is called before deleting the feature row
func (r *FeatureRow) BeforeDelete() error {
	return nil
}

// AfterDelete is called after deleting the feature row
func (r *FeatureRow) AfterDelete() error {
	return nil
}
