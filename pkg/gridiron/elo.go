package gridiron

import (
	"fmt"
	"math"
)

/**
* Pure rating functions implementing the Elo variant developed by
* Jay Boice at FiveThirtyEight. All of the tunable constants live on
* the global Config. None of these functions log or touch storage;
* the SeasonSimulator decides what to do with any error they return.
 */

// PregameDifferential calculates the full pregame rating differential with
// respect to the home team. The differential feeds the win probability and
// the postgame update; the halved symmetric split that is persisted onto the
// game record comes from PregameShift instead.
//
// For a normal game the home team is credited the fixed home field bonus
// plus a travel term derived from the away team's inbound distance. For a
// neutral site game there is no home field bonus and each side is debited
// its own travel distance to the neutral stadium. A team coming off a bye
// week gets a fixed bonus, home side taking precedence if both are flagged.
// Playoff games amplify the resulting differential
func PregameDifferential(homeRating, awayRating float64, homeCoord, awayCoord, neutral *Coordinate, playoff, homeBye, awayBye bool) (int, error) {
	if !isFinite(homeRating) || !isFinite(awayRating) {
		return 0, &InvalidInputError{Reason: fmt.Sprintf("non finite rating (home=%f away=%f)", homeRating, awayRating)}
	}
	if homeCoord == nil || awayCoord == nil {
		return 0, &InvalidInputError{Reason: "missing team coordinate"}
	}

	home := homeRating
	away := awayRating

	if neutral != nil {
		// Neutral game, no home field bonus. Each side pays for its own travel
		home -= math.Round(Distance(*homeCoord, *neutral) * Config.TravelFactor)
		away -= math.Round(Distance(*awayCoord, *neutral) * Config.TravelFactor)
	} else {
		home += Config.HomeFieldAdvantage
		home += math.Round(Distance(*homeCoord, *awayCoord) * Config.TravelFactor)
	}

	// A team cannot be credited for both sides of the same game
	if homeBye {
		home += Config.ByeBonus
	} else if awayBye {
		away += Config.ByeBonus
	}

	diff := home - away
	if playoff {
		diff *= Config.PlayoffMultiplier
	}

	return int(math.Round(diff)), nil
}

// PregameShift calculates the symmetric split that is written onto the game
// record as the stored pregame ratings: home_pregame = home rating + homeShift
// and away_pregame = away rating + awayShift. For a normal game half the full
// adjustment is credited to the home side and debited from the away side, so
// the stored values bracket the live ratings while their difference still
// recovers the full adjustment. Neutral games debit each side its own travel
// penalty, unhalved, and nothing else.
//
// The halving is deliberate: the postgame update derives its differential
// from the two stored pregame values, not from PregameDifferential
func PregameShift(homeCoord, awayCoord, neutral *Coordinate, homeBye, awayBye bool) (int, int, error) {
	if homeCoord == nil || awayCoord == nil {
		return 0, 0, &InvalidInputError{Reason: "missing team coordinate"}
	}

	if neutral != nil {
		homeShift := -math.Round(Distance(*homeCoord, *neutral) * Config.TravelFactor)
		awayShift := -math.Round(Distance(*awayCoord, *neutral) * Config.TravelFactor)
		return int(homeShift), int(awayShift), nil
	}

	full := Config.HomeFieldAdvantage
	full += math.Round(Distance(*homeCoord, *awayCoord) * Config.TravelFactor)
	if homeBye {
		full += Config.ByeBonus
	} else if awayBye {
		full -= Config.ByeBonus
	}

	half := int(math.Round(full / 2))
	return half, -half, nil
}

// WinProbability calculates the probability of a home win for a given
// pregame rating differential. Logistic in the differential: zero maps to
// 0.5 and WinProbability(d) + WinProbability(-d) == 1
func WinProbability(diff float64) float64 {
	return 1 / (math.Pow(10, -diff/400) + 1)
}

// PostgameDelta calculates the rating points shifted from the away team to
// the home team once a game is final: add the delta to the home rating and
// subtract it from the away rating. The delta is the forecast error scaled
// by a margin of victory multiplier and the K factor.
//
// The MOV multiplier dampens blowout credit for heavy favourites and
// amplifies it for upsets. A tie uses a fixed multiplier so that a team
// predicted to win that only ties still loses rating
func PostgameDelta(homePoints, awayPoints, homePregame, awayPregame int, playoff bool) (int, error) {
	diff := float64(homePregame - awayPregame)
	if playoff {
		diff *= Config.PlayoffMultiplier
	}

	winProbability := WinProbability(diff)
	var forecastDelta float64
	if homePoints == awayPoints {
		forecastDelta = 0.5 - winProbability
	} else if homePoints > awayPoints {
		forecastDelta = 1 - winProbability
	} else {
		forecastDelta = 0 - winProbability
	}

	pointDiff := homePoints - awayPoints

	var mov float64
	if pointDiff == 0 {
		mov = Config.TieMovMultiplier
	} else {
		if pointDiff < 0 {
			diff *= -1
		}
		denominator := diff*Config.MovRatingScale + Config.MovDamping
		if denominator <= 0 {
			return 0, &RangeError{Reason: fmt.Sprintf("MOV denominator collapsed (rating gap %d)", homePregame-awayPregame)}
		}
		mov = math.Log(math.Abs(float64(pointDiff))+1) * (Config.MovDamping / denominator)
	}

	return int(math.Round(Config.KFactor * forecastDelta * mov)), nil
}

// PreseasonRating calculates a team's rating at the start of a new season.
// It is essentially just a regression to the mean: a third of the distance
// to the baseline is removed, so the baseline itself is a fixed point
func PreseasonRating(rating int) int {
	mean := float64(Config.BaselineRating)
	newRating := float64(rating) - (float64(rating)-mean)/Config.RegressionDivisor
	return int(math.Round(newRating))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
