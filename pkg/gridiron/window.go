package gridiron

import (
	"fmt"
)

/**
* Rolling per-team form windows. Each team carries eight parallel FIFO
* sequences, one for and one against in each of four categories: pregame
* rating, points, total yards and turnovers. All eight advance in lockstep
* when a game is recorded, so their lengths are always equal.
*
* "Turnovers for" is deliberately inverted: it records the opposition's
* giveaways, i.e. this team's takeaways, so that for every category a
* bigger "for" number is good news
 */

// TeamFeatures are the windowed form numbers for one team: the mean of the
// "for" sequence minus the mean of the "against" sequence in each category
type TeamFeatures struct {
	Rating    float64
	Points    float64
	Yards     float64
	Turnovers float64
}

// teamWindow holds the eight parallel sequences for one team
type teamWindow struct {
	ratingFor        []float64
	ratingAgainst    []float64
	pointsFor        []float64
	pointsAgainst    []float64
	yardsFor         []float64
	yardsAgainst     []float64
	turnoversFor     []float64
	turnoversAgainst []float64
}

func (w *teamWindow) length() int {
	return len(w.ratingFor)
}

// push appends one game to all eight sequences, evicting the oldest entry
// when the window is full. During bootstrap the eviction is suppressed and
// sequences beyond capacity are simply not appended, which keeps the first
// games of the first season rather than the most recent ones
func (w *teamWindow) push(ratingFor, ratingAgainst, pointsFor, pointsAgainst, yardsFor, yardsAgainst, turnoversFor, turnoversAgainst float64, size int, bootstrap bool) {
	if w.length() >= size {
		if bootstrap {
			return
		}
		w.ratingFor = w.ratingFor[1:]
		w.ratingAgainst = w.ratingAgainst[1:]
		w.pointsFor = w.pointsFor[1:]
		w.pointsAgainst = w.pointsAgainst[1:]
		w.yardsFor = w.yardsFor[1:]
		w.yardsAgainst = w.yardsAgainst[1:]
		w.turnoversFor = w.turnoversFor[1:]
		w.turnoversAgainst = w.turnoversAgainst[1:]
	}
	w.ratingFor = append(w.ratingFor, ratingFor)
	w.ratingAgainst = append(w.ratingAgainst, ratingAgainst)
	w.pointsFor = append(w.pointsFor, pointsFor)
	w.pointsAgainst = append(w.pointsAgainst, pointsAgainst)
	w.yardsFor = append(w.yardsFor, yardsFor)
	w.yardsAgainst = append(w.yardsAgainst, yardsAgainst)
	w.turnoversFor = append(w.turnoversFor, turnoversFor)
	w.turnoversAgainst = append(w.turnoversAgainst, turnoversAgainst)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// FeatureStore owns the windows for every team. The first season processed is
// the bootstrap season: windows fill up without evicting and must hold exactly
// one full window of games by the end of it
type FeatureStore struct {
	windows   map[string]*teamWindow
	size      int
	bootstrap bool
}

// NewFeatureStore creates a feature store in bootstrap mode with the
// configured window size
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{
		windows:   make(map[string]*teamWindow),
		size:      Config.WindowSize,
		bootstrap: true,
	}
}

func (f *FeatureStore) window(ticker string) *teamWindow {
	w, ok := f.windows[ticker]
	if !ok {
		w = &teamWindow{}
		f.windows[ticker] = w
	}
	return w
}

// WindowLength returns the number of games currently held for a team
func (f *FeatureStore) WindowLength(ticker string) int {
	if w, ok := f.windows[ticker]; ok {
		return w.length()
	}
	return 0
}

// RecordGame pushes a completed, stamped game into both teams' windows
func (f *FeatureStore) RecordGame(g *Game) error {
	if !g.HasStats() {
		return &DataIntegrityError{Subject: g.GameID, Reason: "cannot record a game without a complete box score"}
	}
	if !g.HasPregameRatings() {
		return &DataIntegrityError{Subject: g.GameID, Reason: "cannot record a game without stamped pregame ratings"}
	}

	home := f.window(g.HomeTicker)
	away := f.window(g.AwayTicker)

	// Takeaways: each side's "turnovers for" is the other side's giveaways
	home.push(
		float64(g.HomePregameRating), float64(g.AwayPregameRating),
		float64(g.HomePoints), float64(g.AwayPoints),
		float64(g.HomeYards), float64(g.AwayYards),
		float64(g.AwayTurnovers), float64(g.HomeTurnovers),
		f.size, f.bootstrap)
	away.push(
		float64(g.AwayPregameRating), float64(g.HomePregameRating),
		float64(g.AwayPoints), float64(g.HomePoints),
		float64(g.AwayYards), float64(g.HomeYards),
		float64(g.HomeTurnovers), float64(g.AwayTurnovers),
		f.size, f.bootstrap)

	return nil
}

// FeaturesFor returns the windowed form numbers for a team. An empty window
// means no completed games have been recorded for the team yet
func (f *FeatureStore) FeaturesFor(ticker string) (*TeamFeatures, error) {
	w, ok := f.windows[ticker]
	if !ok || w.length() == 0 {
		return nil, &DataIntegrityError{Subject: ticker, Reason: "no games in feature window"}
	}
	return &TeamFeatures{
		Rating:    mean(w.ratingFor) - mean(w.ratingAgainst),
		Points:    mean(w.pointsFor) - mean(w.pointsAgainst),
		Yards:     mean(w.yardsFor) - mean(w.yardsAgainst),
		Turnovers: mean(w.turnoversFor) - mean(w.turnoversAgainst),
	}, nil
}

// HasHistory reports whether both sides of a fixture have at least one game
// in their windows. A franchise whose first tracked game falls after the
// bootstrap season starts with an empty window and cannot produce features
// until it has played
func (f *FeatureStore) HasHistory(g *Game) bool {
	return f.WindowLength(g.HomeTicker) > 0 && f.WindowLength(g.AwayTicker) > 0
}

// MatchupFeatures builds the five model inputs for a fixture: the home minus
// away gap in each windowed category, plus the rating engine's own spread
// estimate derived from the stamped pregame ratings
func (f *FeatureStore) MatchupFeatures(g *Game) ([]float64, error) {
	if !g.HasPregameRatings() {
		return nil, &DataIntegrityError{Subject: g.GameID, Reason: "matchup features require stamped pregame ratings"}
	}
	home, err := f.FeaturesFor(g.HomeTicker)
	if err != nil {
		return nil, err
	}
	away, err := f.FeaturesFor(g.AwayTicker)
	if err != nil {
		return nil, err
	}

	eloPredSpread := float64(g.AwayPregameRating-g.HomePregameRating) / Config.SpreadDivisor

	return []float64{
		home.Rating - away.Rating,
		home.Points - away.Points,
		home.Yards - away.Yards,
		home.Turnovers - away.Turnovers,
		eloPredSpread,
	}, nil
}

// EndBootstrap closes the bootstrap season. Every team that appeared must
// have exactly one full window of games; a short or missing window means the
// schedule data is broken and nothing downstream can be trusted
func (f *FeatureStore) EndBootstrap() error {
	if !f.bootstrap {
		return nil
	}
	for ticker, w := range f.windows {
		if w.length() != f.size {
			return &DataIntegrityError{
				Subject: ticker,
				Reason:  fmt.Sprintf("bootstrap season ended with %d games in window, want exactly %d", w.length(), f.size),
			}
		}
	}
	f.bootstrap = false
	return nil
}

// Bootstrapping reports whether the store is still in its bootstrap season
func (f *FeatureStore) Bootstrapping() bool {
	return f.bootstrap
}
