package gridiron

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	kcCoord  = Coordinate{Latitude: 39.099789, Longitude: -94.578560}
	houCoord = Coordinate{Latitude: 29.760427, Longitude: -95.369804}
	seaCoord = Coordinate{Latitude: 47.603230, Longitude: -122.330276}
	nyjCoord = Coordinate{Latitude: 40.814947462026176, Longitude: -74.07665577312015}
	nygCoord = Coordinate{Latitude: 40.814947462026176, Longitude: -74.07665577312015}
	ariCoord = Coordinate{Latitude: 33.52738095014831, Longitude: -112.26238094759978}
)

func TestDistance(t *testing.T) {
	// Kansas City to Houston is a known quantity
	if got := math.Round(Distance(kcCoord, houCoord)); got != 648 {
		t.Errorf("KC to HOU distance = %v, want 648", got)
	}

	// Shared stadium
	if got := math.Round(Distance(nyjCoord, nygCoord)); got != 0 {
		t.Errorf("shared stadium distance = %v, want 0", got)
	}

	// Symmetry
	assert.InDelta(t, Distance(kcCoord, seaCoord), Distance(seaCoord, kcCoord), 1e-9)
}

func TestPregameDifferential(t *testing.T) {
	// Jets at home to the Giants: no travel, home field only
	diff, err := PregameDifferential(1550, 1660, &nyjCoord, &nygCoord, nil, false, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if diff != -62 {
		t.Errorf("NYJ v NYG differential = %d, want -62", diff)
	}

	// Houston at home to Kansas City: home field plus travel
	travel := math.Round(Distance(houCoord, kcCoord) * Config.TravelFactor)
	diff, err = PregameDifferential(1250, 1000, &houCoord, &kcCoord, nil, false, false, false)
	if err != nil {
		t.Fatal(err)
	}
	want := int(math.Round(1250 + 48 + travel - 1000))
	if diff != want {
		t.Errorf("HOU v KC differential = %d, want %d", diff, want)
	}

	// Neutral site in Arizona: no home field, each side pays its own travel
	homeTravel := math.Round(Distance(houCoord, ariCoord) * Config.TravelFactor)
	awayTravel := math.Round(Distance(kcCoord, ariCoord) * Config.TravelFactor)
	diff, err = PregameDifferential(1250, 1000, &houCoord, &kcCoord, &ariCoord, false, false, false)
	if err != nil {
		t.Fatal(err)
	}
	want = int(math.Round((1250 - homeTravel) - (1000 - awayTravel)))
	if diff != want {
		t.Errorf("neutral differential = %d, want %d", diff, want)
	}

	// Home side coming off a bye
	travel = math.Round(Distance(seaCoord, nyjCoord) * Config.TravelFactor)
	diff, err = PregameDifferential(1700, 1550, &seaCoord, &nyjCoord, nil, false, true, false)
	if err != nil {
		t.Fatal(err)
	}
	want = int(math.Round(1700 + 48 + 25 + travel - 1550))
	if diff != want {
		t.Errorf("bye differential = %d, want %d", diff, want)
	}

	// Playoff amplification on top of the bye
	travel = math.Round(Distance(seaCoord, kcCoord) * Config.TravelFactor)
	diff, err = PregameDifferential(1700, 1000, &seaCoord, &kcCoord, nil, true, true, false)
	if err != nil {
		t.Fatal(err)
	}
	want = int(math.Round((1700 + 48 + 25 + travel - 1000) * 1.2))
	if diff != want {
		t.Errorf("playoff differential = %d, want %d", diff, want)
	}
}

func TestUnderdogHostScenario(t *testing.T) {
	// A 1000 rated host takes on a 1250 rated visitor travelling 648 miles.
	// Home field is worth 48 and the travel term rounds to 3, leaving the
	// host a 199 point underdog
	diff, err := PregameDifferential(1000, 1250, &houCoord, &kcCoord, nil, false, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if diff != -199 {
		t.Errorf("differential = %d, want -199", diff)
	}

	// The stamped values split the 51 point adjustment down the middle
	homeShift, awayShift, err := PregameShift(&houCoord, &kcCoord, nil, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if homeShift != 26 || awayShift != -26 {
		t.Errorf("shift = (%d, %d), want (26, -26)", homeShift, awayShift)
	}

	// The host pulls off a 35-20 upset and gains a big chunk of rating
	delta, err := PostgameDelta(35, 20, 1000+homeShift, 1250+awayShift, false)
	if err != nil {
		t.Fatal(err)
	}
	if delta <= 0 {
		t.Errorf("upset win delta = %d, want > 0", delta)
	}
	if delta != 46 {
		t.Errorf("upset win delta = %d, want 46", delta)
	}
}

func TestPregameDifferentialInvalidInput(t *testing.T) {
	_, err := PregameDifferential(math.NaN(), 1500, &nyjCoord, &nygCoord, nil, false, false, false)
	assert.Error(t, err)
	var invalid *InvalidInputError
	assert.ErrorAs(t, err, &invalid)

	_, err = PregameDifferential(1500, 1500, nil, &nygCoord, nil, false, false, false)
	assert.ErrorAs(t, err, &invalid)
}

func TestPregameShift(t *testing.T) {
	// Half the full adjustment goes to each side, opposite signs
	homeShift, awayShift, err := PregameShift(&nyjCoord, &nygCoord, nil, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if homeShift != 24 || awayShift != -24 {
		t.Errorf("shift = (%d, %d), want (24, -24)", homeShift, awayShift)
	}

	// The stamped difference recovers the full adjustment
	travel := math.Round(Distance(houCoord, kcCoord) * Config.TravelFactor)
	homeShift, awayShift, err = PregameShift(&houCoord, &kcCoord, nil, false, false)
	if err != nil {
		t.Fatal(err)
	}
	full := 48 + travel
	assert.InDelta(t, full, float64(homeShift-awayShift), 1.0)

	// Neutral site: own travel penalty, unhalved
	homeShift, awayShift, err = PregameShift(&houCoord, &kcCoord, &ariCoord, false, false)
	if err != nil {
		t.Fatal(err)
	}
	wantHome := -int(math.Round(Distance(houCoord, ariCoord) * Config.TravelFactor))
	wantAway := -int(math.Round(Distance(kcCoord, ariCoord) * Config.TravelFactor))
	if homeShift != wantHome || awayShift != wantAway {
		t.Errorf("neutral shift = (%d, %d), want (%d, %d)", homeShift, awayShift, wantHome, wantAway)
	}
}

func TestWinProbability(t *testing.T) {
	assert.InDelta(t, 0.5, WinProbability(0), 1e-9)

	// Complementary and monotonic
	assert.InDelta(t, 1.0, WinProbability(100)+WinProbability(-100), 1e-9)
	if WinProbability(200) <= WinProbability(100) {
		t.Error("win probability should grow with the differential")
	}
	if WinProbability(62) <= 0.5 {
		t.Error("favourite should be over 50 percent")
	}
}

func TestPostgameDelta(t *testing.T) {
	// Stamped pregame ratings with the home side a 110 point favourite
	homePregame, awayPregame := 1660, 1250

	// Favourite wins: small positive shift
	delta, err := PostgameDelta(35, 20, homePregame, awayPregame, false)
	if err != nil {
		t.Fatal(err)
	}
	if delta <= 0 {
		t.Errorf("favourite win delta = %d, want > 0", delta)
	}

	// Favourite loses: larger negative shift than the win was positive
	upset, err := PostgameDelta(15, 30, homePregame, awayPregame, false)
	if err != nil {
		t.Fatal(err)
	}
	if upset >= 0 {
		t.Errorf("favourite loss delta = %d, want < 0", upset)
	}
	if -upset <= delta {
		t.Errorf("upset shift %d should outweigh expected win shift %d", -upset, delta)
	}

	// Favourite ties: still loses rating
	tie, err := PostgameDelta(30, 30, homePregame, awayPregame, false)
	if err != nil {
		t.Fatal(err)
	}
	if tie >= 0 {
		t.Errorf("favourite tie delta = %d, want < 0", tie)
	}

	// Underdog ties: gains rating
	dogTie, err := PostgameDelta(30, 30, awayPregame, homePregame, false)
	if err != nil {
		t.Fatal(err)
	}
	if dogTie <= 0 {
		t.Errorf("underdog tie delta = %d, want > 0", dogTie)
	}
}

func TestPostgameDeltaMatchesFormula(t *testing.T) {
	homePregame, awayPregame := 1660, 1250
	diff := float64(homePregame - awayPregame)
	winProbability := WinProbability(diff)
	forecastDelta := 1 - winProbability
	mov := math.Log(15+1) * (2.2 / (diff*0.001 + 2.2))
	want := int(math.Round(20 * forecastDelta * mov))

	got, err := PostgameDelta(35, 20, homePregame, awayPregame, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("delta = %d, want %d", got, want)
	}
}

func TestPostgameDeltaRangeError(t *testing.T) {
	// A rating gap so large the MOV denominator collapses. The loser being a
	// 2200+ point favourite flips the sign of the damping term
	_, err := PostgameDelta(0, 30, 4000, 1000, false)
	if err == nil {
		t.Fatal("expected range error")
	}
	var re *RangeError
	assert.ErrorAs(t, err, &re)
}

func TestPreseasonRating(t *testing.T) {
	// The baseline is a fixed point
	if got := PreseasonRating(1505); got != 1505 {
		t.Errorf("baseline regression = %d, want 1505", got)
	}

	// A third of the distance to the baseline is removed
	if got := PreseasonRating(1700); got != 1635 {
		t.Errorf("1700 regresses to %d, want 1635", got)
	}
	if got := PreseasonRating(1300); got != 1368 {
		t.Errorf("1300 regresses to %d, want 1368", got)
	}
}
