package gridiron

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/gridiron/internal/logger"
	"github.com/richard-senior/gridiron/pkg/transport"
	"github.com/richard-senior/gridiron/pkg/util"
)

/**
* PfrDatasource scrapes the season schedule pages of
* pro-football-reference.com. One page holds the entire schedule for one
* season, upcoming games included, so a single fetch per season is enough.
* Fetched pages are cached on disk; delete the cache files to force a
* refetch
 */
type PfrDatasource struct {
	BaseURL  string
	GamesURL string
}

var (
	pfrInstance *PfrDatasource
	pfrOnce     sync.Once
)

// GetPfrInstance returns the singleton instance of PfrDatasource
func GetPfrInstance() *PfrDatasource {
	pfrOnce.Do(func() {
		pfrInstance = &PfrDatasource{
			BaseURL:  Config.ScraperBaseURL,
			GamesURL: Config.ScraperBaseURL + "years/%d/games.htm",
		}
	})
	return pfrInstance
}

// RawGame is one row of the schedule table, untyped. The site reports games
// winner first, not home first; Location carries the disambiguating symbol:
// empty means the winner was at home, "@" means the loser was, "N" means a
// neutral site
type RawGame struct {
	Week      string
	Winner    string
	Loser     string
	Location  string
	PtsWin    string
	PtsLose   string
	YardsWin  string
	YardsLose string
	ToWin     string
	ToLose    string
}

// GetSeasonDocument fetches (or loads from cache) the schedule page for the
// season starting in the given calendar year
func (ds *PfrDatasource) GetSeasonDocument(year int) (*goquery.Document, error) {
	if err := os.MkdirAll(Config.GridironCachePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cacheFilename := fmt.Sprintf("%spfr-games-%d.html", Config.GridironCachePath, year)

	var data []byte
	if cacheData, err := os.ReadFile(cacheFilename); err == nil {
		logger.Info("Loaded schedule from cache:", cacheFilename)
		data = cacheData
	} else {
		url := fmt.Sprintf(ds.GamesURL, year)
		logger.Info("Fetching schedule", url)
		data, err = transport.GetHtml(url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch schedule for %d: %w", year, err)
		}
		if err := os.WriteFile(cacheFilename, data, 0644); err != nil {
			logger.Warn("Failed to cache schedule page", cacheFilename, err)
		}
	}

	return goquery.NewDocumentFromReader(bytes.NewReader(data))
}

// ParseGames extracts every schedule row from a season document. Rows
// without a week key (repeated header rows, the playoff separator) are
// skipped
func (ds *PfrDatasource) ParseGames(doc *goquery.Document) ([]*RawGame, error) {
	table := doc.Find("table#games tbody")
	if table.Length() == 0 {
		return nil, fmt.Errorf("no games table in document")
	}

	var games []*RawGame
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		header := row.Find("th[data-stat='week_num']")
		if _, ok := header.Attr("csk"); !ok {
			return
		}
		week := strings.TrimSpace(header.Text())
		if week == "" {
			return
		}

		raw := &RawGame{Week: week}
		row.Find("td").Each(func(j int, cell *goquery.Selection) {
			stat, _ := cell.Attr("data-stat")
			text := strings.TrimSpace(cell.Text())
			switch stat {
			case "winner":
				raw.Winner = text
			case "loser":
				raw.Loser = text
			case "game_location":
				raw.Location = text
			case "pts_win":
				raw.PtsWin = text
			case "pts_lose":
				raw.PtsLose = text
			case "yards_win":
				raw.YardsWin = text
			case "yards_lose":
				raw.YardsLose = text
			case "to_win":
				raw.ToWin = text
			case "to_lose":
				raw.ToLose = text
			}
		})

		if raw.Winner != "" && raw.Loser != "" {
			games = append(games, raw)
		}
	})

	logger.Debug("Parsed schedule rows", len(games))
	return games, nil
}

// ToGame converts a raw schedule row into a typed game for the given season.
// The winner/loser columns are reassigned to home/away using the location
// symbol, and unknown numeric cells become the -1 sentinel
func (raw *RawGame) ToGame(season *Season, resolver *TeamResolver) (*Game, error) {
	week, err := ParseWeekLabel(raw.Week)
	if err != nil {
		return nil, &DataIntegrityError{Subject: season.Label, Reason: err.Error()}
	}

	winner, err := resolver.Resolve(raw.Winner)
	if err != nil {
		return nil, err
	}
	loser, err := resolver.Resolve(raw.Loser)
	if err != nil {
		return nil, err
	}

	// Winner at home unless the site says otherwise
	homeIsWinner := raw.Location != "@"
	neutral := raw.Location == "N"

	var game *Game
	if homeIsWinner {
		game = NewGame(season.Label, week, winner, loser)
		game.HomePoints = rawStat(raw.PtsWin)
		game.AwayPoints = rawStat(raw.PtsLose)
		game.HomeYards = rawStat(raw.YardsWin)
		game.AwayYards = rawStat(raw.YardsLose)
		game.HomeTurnovers = rawStat(raw.ToWin)
		game.AwayTurnovers = rawStat(raw.ToLose)
	} else {
		game = NewGame(season.Label, week, loser, winner)
		game.HomePoints = rawStat(raw.PtsLose)
		game.AwayPoints = rawStat(raw.PtsWin)
		game.HomeYards = rawStat(raw.YardsLose)
		game.AwayYards = rawStat(raw.YardsWin)
		game.HomeTurnovers = rawStat(raw.ToLose)
		game.AwayTurnovers = rawStat(raw.ToWin)
	}

	if neutral {
		game.Neutral = true
		if week == WeekSuperBowl {
			secondYear, err := season.SecondYear()
			if err != nil {
				return nil, err
			}
			host, ok := Config.SuperBowlHosts[fmt.Sprintf("%d", secondYear)]
			if !ok {
				return nil, &DataIntegrityError{
					Subject: game.GameID,
					Reason:  fmt.Sprintf("no Super Bowl host configured for %d", secondYear),
				}
			}
			game.NeutralTicker = host
		}
	}

	return game, nil
}

// rawStat parses a numeric cell, mapping the empty string (game not yet
// played) to the -1 sentinel
func rawStat(text string) int {
	if text == "" {
		return -1
	}
	n, err := util.GetAsInteger(text)
	if err != nil {
		logger.Warn("Unparseable stat cell", text, err)
		return -1
	}
	return n
}

// FetchSeason scrapes the full schedule for a season and returns it as
// chronologically sorted weeks
func (ds *PfrDatasource) FetchSeason(season *Season, resolver *TeamResolver) ([]*Week, error) {
	year, err := season.FirstYear()
	if err != nil {
		return nil, err
	}

	doc, err := ds.GetSeasonDocument(year)
	if err != nil {
		return nil, err
	}

	raws, err := ds.ParseGames(doc)
	if err != nil {
		return nil, err
	}

	byWeek := make(map[WeekLabel]*Week)
	var weeks []*Week
	for _, raw := range raws {
		game, err := raw.ToGame(season, resolver)
		if err != nil {
			return nil, err
		}
		label := game.WeekLabel()
		week, ok := byWeek[label]
		if !ok {
			week = &Week{Label: label}
			byWeek[label] = week
			weeks = append(weeks, week)
		}
		week.Games = append(week.Games, game)
	}

	if err := SortWeeks(weeks); err != nil {
		return nil, err
	}

	logger.Info("Fetched season schedule", season.Label, len(weeks))
	return weeks, nil
}

/////////////////////////////////////////////////////////////////////////
////// Team name resolution
/////////////////////////////////////////////////////////////////////////

// TeamResolver maps the full team names used by the schedule site onto
// tickers. Exact match first, then a fuzzy fallback for minor punctuation
// and encoding differences
type TeamResolver struct {
	byName map[string]string
}

// NewTeamResolver builds a resolver over the given teams
func NewTeamResolver(teams []*Team) *TeamResolver {
	byName := make(map[string]string, len(teams))
	for _, team := range teams {
		byName[team.Name] = team.Ticker
	}
	return &TeamResolver{byName: byName}
}

// Resolve returns the ticker for a scraped team name
func (r *TeamResolver) Resolve(name string) (string, error) {
	name = NormalizeTeamName(strings.TrimSpace(name))
	if ticker, ok := r.byName[name]; ok {
		return ticker, nil
	}

	// Fall back to the closest known name
	bestScore := 0.0
	bestTicker := ""
	bestName := ""
	for known, ticker := range r.byName {
		score := util.FuzzyMatchScore(name, known)
		if score > bestScore {
			bestScore = score
			bestTicker = ticker
			bestName = known
		}
	}
	if bestScore >= 0.85 {
		logger.Warn("Fuzzy matched team name", name, bestName)
		return bestTicker, nil
	}

	return "", &DataIntegrityError{Subject: name, Reason: "unknown team name"}
}
