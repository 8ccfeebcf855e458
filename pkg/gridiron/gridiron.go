package gridiron

/**
* Gridiron is a golang library for predicting the outcomes of NFL games.
* It combines a FiveThirtyEight style Elo rating engine with a rolling
* window of team statistics that feeds a small regression model.
* see https://fivethirtyeight.com/methodology/how-our-nfl-predictions-work/
 */
const (
	gridironAssetsPath = "/Users/richard/.gridiron/"
	gridironCachePath  = gridironAssetsPath + "cache/"
	gridironDbPath     = gridironAssetsPath + "gridiron.db"
	gridironModelPath  = gridironAssetsPath + "v1_weights.json"
)
