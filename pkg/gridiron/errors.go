package gridiron

import "fmt"

// DataIntegrityError indicates that the stored data violates an invariant the
// replay depends on: a missing team or game lookup, a team appearing twice in
// one week, or an attempt to overwrite a pregame rating that has already been
// written. These are fatal for the season being processed
type DataIntegrityError struct {
	Subject string // team ticker, game id or week label the violation concerns
	Reason  string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity violation for %s: %s", e.Subject, e.Reason)
}

// RangeError indicates a numeric input outside the domain of the rating
// formulas, such as a non finite rating or a rating gap large enough to
// collapse the MOV multiplier denominator. Fatal for the offending game
type RangeError struct {
	GameID string
	Reason string
}

func (e *RangeError) Error() string {
	if e.GameID == "" {
		return fmt.Sprintf("value out of range: %s", e.Reason)
	}
	return fmt.Sprintf("value out of range in game %s: %s", e.GameID, e.Reason)
}

// InvalidInputError indicates a malformed call into one of the pure rating
// functions, such as a missing coordinate for a non neutral game
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// StaleDataError indicates a scraped week that was expected to be final but
// is missing score data. Recoverable: the caller may retry the fetch later
type StaleDataError struct {
	Week   string
	Reason string
}

func (e *StaleDataError) Error() string {
	return fmt.Sprintf("stale data for week %s: %s", e.Week, e.Reason)
}
