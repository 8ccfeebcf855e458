package main

import (
	"fmt"
	"os"

	"github.com/richard-senior/gridiron/internal/logger"
	"github.com/richard-senior/gridiron/pkg/gridiron"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: gridiron <command> [args]")
	fmt.Fprintln(os.Stderr, "  replay                 rebuild ratings and features from every tracked season")
	fmt.Fprintln(os.Stderr, "  rollover               create the next season and regress ratings")
	fmt.Fprintln(os.Stderr, "  commit <week>          commit a finished week's results and rating updates")
	fmt.Fprintln(os.Stderr, "  upcoming <week>        print spread predictions for a week")
	os.Exit(2)
}

func main() {
	// Configure logging
	logger.SetShowDateTime(true)

	if len(os.Args) < 2 {
		usage()
	}

	if err := gridiron.ValidateConfig(gridiron.Config); err != nil {
		logger.Fatal("Invalid configuration:", err)
	}

	store, err := gridiron.OpenStore(gridiron.Config.GridironDbPath)
	if err != nil {
		logger.Fatal("Failed to open database:", err)
	}
	defer store.Close()

	switch os.Args[1] {
	case "replay":
		if _, err := gridiron.ReplayHistory(store); err != nil {
			logger.Fatal("Replay failed:", err)
		}

	case "rollover":
		updater, err := gridiron.NewLiveUpdater(store, nil, nil)
		if err != nil {
			logger.Fatal("Failed to create updater:", err)
		}
		latest := gridiron.Config.Seasons[len(gridiron.Config.Seasons)-1]
		season, err := updater.EnsureSeasonRollover(latest)
		if err != nil {
			logger.Fatal("Rollover failed:", err)
		}
		logger.Inform("Current season", season.Label)

	case "commit":
		week := requireWeek()
		updater := newUpdater(store)
		season := currentSeason(store)
		if err := updater.CommitWeek(season, week, false); err != nil {
			logger.Fatal("Week commit failed:", err)
		}

	case "upcoming":
		week := requireWeek()
		updater := newUpdater(store)
		season := currentSeason(store)
		predictions, err := updater.UpcomingSpreads(season, week)
		if err != nil {
			logger.Fatal("Prediction failed:", err)
		}
		for _, p := range predictions {
			line := fmt.Sprintf("%s @ %s: home spread %+.1f, win probability %.3f",
				p.AwayTicker, p.HomeTicker, p.EloSpread, p.HomeWinProb)
			if p.HasModel {
				line += fmt.Sprintf(", model spread %+.1f", p.ModelSpread)
			}
			fmt.Println(line)
		}

	default:
		usage()
	}
}

// newUpdater builds a live updater with the rolling windows rebuilt from the
// stored seasons and, when the exported weights are present, the spread model
func newUpdater(store *gridiron.Store) *gridiron.LiveUpdater {
	features, err := gridiron.RebuildFeatureStore(store)
	if err != nil {
		logger.Fatal("Failed to rebuild feature windows:", err)
	}

	var model gridiron.SpreadModel
	if loaded, err := gridiron.LoadV1Model(gridiron.Config.ModelWeightsPath); err != nil {
		logger.Warn("No spread model, rating spread only", err)
	} else {
		model = loaded
	}

	updater, err := gridiron.NewLiveUpdater(store, model, features)
	if err != nil {
		logger.Fatal("Failed to create updater:", err)
	}
	return updater
}

// requireWeek parses the week argument or exits
func requireWeek() gridiron.WeekLabel {
	if len(os.Args) < 3 {
		usage()
	}
	week, err := gridiron.ParseWeekLabel(os.Args[2])
	if err != nil {
		logger.Fatal("Invalid week:", err)
	}
	return week
}

// currentSeason loads the season for the configured current year
func currentSeason(store *gridiron.Store) *gridiron.Season {
	label := fmt.Sprintf("%d-%d", gridiron.Config.CurrentSeasonYear, gridiron.Config.CurrentSeasonYear+1)
	season, err := store.LoadSeason(label)
	if err != nil {
		logger.Fatal("Failed to load current season:", err)
	}
	return season
}
