package gridiron

import (
	"fmt"
	"sort"
	"time"

	"github.com/richard-senior/gridiron/pkg/util"
)

// Compile-time check to ensure Season implements Persistable interface
var _ Persistable = (*Season)(nil)

// Season represents one NFL season with database persistence annotations.
// Label is of the form "2011-2012". Length is the number of regular season
// weeks, historically 17 or 18
type Season struct {
	Label     string    `json:"label" column:"label" dbtype:"TEXT" primary:"true" index:"true"`
	Length    int       `json:"length" column:"length" dbtype:"INTEGER DEFAULT 17"`
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`

	// In-memory schedule, ordered by week. Not persisted; games carry their
	// season and week labels as columns
	Weeks []*Week `json:"-" persist:"false"`
}

// Week is one slate of games within a season. The order of games inside a
// week is not meaningful; the order of weeks is
type Week struct {
	Label WeekLabel
	Games []*Game
}

// GetPrimaryKey returns the primary key as a map
func (s *Season) GetPrimaryKey() map[string]interface{} {
	return map[string]any{
		"label": s.Label,
	}
}

// SetPrimaryKey sets the primary key from a map
func (s *Season) SetPrimaryKey(pk map[string]interface{}) error {
	if label, ok := pk["label"]; ok {
		if labelStr, ok := label.(string); ok {
			s.Label = labelStr
			return nil
		}
		return fmt.Errorf("primary key 'label' must be a string")
	}
	return fmt.Errorf("primary key 'label' not found")
}

// GetTableName returns the table name for seasons
func (s *Season) GetTableName() string {
	return "seasons"
}

// BeforeSave is called before saving the season
func (s *Season) BeforeSave() error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	return nil
}

// AfterSave is called after saving the season
func (s *Season) AfterSave() error {
	return nil
}

// BeforeDelete is called before deleting the season
func (s *Season) BeforeDelete() error {
	return nil
}

// AfterDelete is called after deleting the season
func (s *Season) AfterDelete() error {
	return nil
}

// FirstYear returns the first calendar year of a season label of the
// form yyyy-yyyy
func (s *Season) FirstYear() (int, error) {
	if len(s.Label) != 9 || s.Label[4] != '-' {
		return 0, fmt.Errorf("invalid season label: %s", s.Label)
	}
	return util.GetAsInteger(s.Label[:4])
}

// SecondYear returns the second calendar year of a season label of the
// form yyyy-yyyy
func (s *Season) SecondYear() (int, error) {
	if len(s.Label) != 9 || s.Label[4] != '-' {
		return 0, fmt.Errorf("invalid season label: %s", s.Label)
	}
	return util.GetAsInteger(s.Label[5:])
}

// NextSeasonLabel returns the label of the season following the given one,
// e.g. "2022-2023" becomes "2023-2024"
func NextSeasonLabel(label string) (string, error) {
	s := &Season{Label: label}
	second, err := s.SecondYear()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%d", second, second+1), nil
}

/////////////////////////////////////////////////////////////////////////
////// Week ordering
/////////////////////////////////////////////////////////////////////////

// WeekLabel identifies one week of a season: a numbered regular season week
// ("1".."18") or one of the fixed playoff rounds. The playoff labels sort
// after every numbered week, in the literal order below. This total order is
// load bearing: the simulator processes weeks strictly in it
type WeekLabel string

const (
	WeekWildCard  WeekLabel = "WildCard"
	WeekDivision  WeekLabel = "Division"
	WeekConfChamp WeekLabel = "ConfChamp"
	WeekSuperBowl WeekLabel = "SuperBowl"
)

// playoff rounds in chronological order, after all numbered weeks
var playoffOrder = map[WeekLabel]int{
	WeekWildCard:  100,
	WeekDivision:  101,
	WeekConfChamp: 102,
	WeekSuperBowl: 103,
}

// ParseWeekLabel validates a raw week string and returns it as a WeekLabel.
// Numbered weeks must be between 1 and 18
func ParseWeekLabel(raw string) (WeekLabel, error) {
	label := WeekLabel(raw)
	if _, ok := playoffOrder[label]; ok {
		return label, nil
	}
	n, err := util.GetAsInteger(raw)
	if err != nil {
		return "", fmt.Errorf("unknown week label: %q", raw)
	}
	if n < 1 || n > 18 {
		return "", fmt.Errorf("week number out of range: %d", n)
	}
	return label, nil
}

// Order returns the position of this week in the season's total order
func (w WeekLabel) Order() (int, error) {
	if o, ok := playoffOrder[w]; ok {
		return o, nil
	}
	n, err := util.GetAsInteger(string(w))
	if err != nil {
		return 0, fmt.Errorf("unknown week label: %q", string(w))
	}
	return n, nil
}

// IsPlayoff returns true for the fixed playoff rounds
func (w WeekLabel) IsPlayoff() bool {
	_, ok := playoffOrder[w]
	return ok
}

// SortWeeks orders weeks chronologically in place, validating every label.
// Called at schedule load time so that iteration order is never an accident
func SortWeeks(weeks []*Week) error {
	for _, week := range weeks {
		if _, err := week.Label.Order(); err != nil {
			return err
		}
	}
	sort.SliceStable(weeks, func(i, j int) bool {
		oi, _ := weeks[i].Label.Order()
		oj, _ := weeks[j].Label.Order()
		return oi < oj
	})
	return nil
}

// PreviousRegularWeek returns the numbered week immediately before the given
// one, and false if there is none (week one and the playoff rounds)
func PreviousRegularWeek(w WeekLabel) (WeekLabel, bool) {
	if w.IsPlayoff() {
		return "", false
	}
	n, err := util.GetAsInteger(string(w))
	if err != nil || n <= 1 {
		return "", false
	}
	return WeekLabel(fmt.Sprintf("%d", n-1)), true
}
