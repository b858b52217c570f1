package scoring

import (
	"testing"
	"time"
)

func TestTimeScoreCalculation(t *testing.T) {
	if got := TimeScore(1.0); got != Pmax {
		t.Errorf("TimeScore(1.0) = %d, want %d", got, Pmax)
	}
	if got := TimeScore(0.0); got != Pmin {
		t.Errorf("TimeScore(0.0) = %d, want %d", got, Pmin)
	}
	got := TimeScore(0.5)
	want := Pmin + (Pmax-Pmin)/2
	if got != want {
		t.Errorf("TimeScore(0.5) = %d, want %d", got, want)
	}
	// monotone non-decreasing in normalized_time
	prev := TimeScore(0.0)
	for nt := 0.1; nt <= 1.0; nt += 0.1 {
		cur := TimeScore(nt)
		if cur < prev {
			t.Errorf("TimeScore not monotone: TimeScore(%.1f)=%d < prev=%d", nt, cur, prev)
		}
		prev = cur
	}
}

func TestRankBonuses(t *testing.T) {
	base := time.Now()
	guesses := []Guess{
		{PlayerId: "p1", Timestamp: base, NormalizedTime: 1.0},
		{PlayerId: "p2", Timestamp: base.Add(300 * time.Millisecond), NormalizedTime: 0.8},
	}
	bonuses := RankBonusesFor(guesses)
	if bonuses[0] != 100 {
		t.Errorf("bonuses[0] = %d, want 100", bonuses[0])
	}
	if bonuses[1] != 60 {
		t.Errorf("bonuses[1] = %d, want 60", bonuses[1])
	}
}

func TestRankBonusesTieWindow(t *testing.T) {
	base := time.Now()
	guesses := []Guess{
		{PlayerId: "a", Timestamp: base, NormalizedTime: 0.8},
		{PlayerId: "b", Timestamp: base.Add(150 * time.Millisecond), NormalizedTime: 0.79},
		{PlayerId: "c", Timestamp: base.Add(400 * time.Millisecond), NormalizedTime: 0.6},
	}
	bonuses := RankBonusesFor(guesses)
	if bonuses[0] != 100 || bonuses[1] != 100 {
		t.Errorf("tied guesses should both get rank 1 bonus, got %v", bonuses)
	}
	if bonuses[2] != 30 {
		t.Errorf("guess after a 2-way tie for 1st should rank 3rd (bonus 30), got %d", bonuses[2])
	}
}

func TestArtistScoreCalculation(t *testing.T) {
	score := ArtistScore(0.8, 0.6, 500, 2)
	if score <= 0 {
		t.Errorf("ArtistScore should be > 0, got %d", score)
	}
	if score > 400 {
		t.Errorf("ArtistScore should be capped at 80%% of top guesser (400), got %d", score)
	}
}

func TestArtistScoreZeroGuesses(t *testing.T) {
	if got := ArtistScore(0, 0, 0, 3); got != 0 {
		t.Errorf("ArtistScore with no top guesser should be 0, got %d", got)
	}
}

func TestStreakIncrementLogic(t *testing.T) {
	roundDuration := 120
	potentialGuessers := 4
	guesses := []Guess{
		{TimeRemaining: 70, NormalizedTime: 0.6},
		{TimeRemaining: 80, NormalizedTime: 0.7},
		{TimeRemaining: 90, NormalizedTime: 0.8},
	}
	if !ShouldIncrementStreak(guesses, roundDuration, potentialGuessers) {
		t.Error("expected streak increment with 3/4 guessed before halfway")
	}
}

func TestStreakDoesNotIncrementBelowHalf(t *testing.T) {
	roundDuration := 120
	potentialGuessers := 4
	guesses := []Guess{
		{TimeRemaining: 70, NormalizedTime: 0.6},
	}
	if ShouldIncrementStreak(guesses, roundDuration, potentialGuessers) {
		t.Error("expected no streak increment with only 1/4 guessed before halfway")
	}
}

func TestUpdateStreakCapsAndResets(t *testing.T) {
	if got := UpdateStreak(4, true); got != 5 {
		t.Errorf("UpdateStreak(4, true) = %d, want 5", got)
	}
	if got := UpdateStreak(5, true); got != 5 {
		t.Errorf("UpdateStreak(5, true) = %d, want capped at 5", got)
	}
	if got := UpdateStreak(5, false); got != 0 {
		t.Errorf("UpdateStreak(5, false) = %d, want 0", got)
	}
}

func TestScoreRoundZeroGuesses(t *testing.T) {
	result := ScoreRound(nil, 3, 2)
	if result.ArtistScore != 0 {
		t.Errorf("zero guesses should yield artist score 0, got %d", result.ArtistScore)
	}
	if len(result.GuesserScores) != 0 {
		t.Errorf("zero guesses should yield no guesser scores, got %v", result.GuesserScores)
	}
}

func TestScoreRoundTwoPlayerFlow(t *testing.T) {
	// Mirrors the "two-player flow" end-to-end scenario: round_duration=60,
	// one guess at normalized_time=0.5.
	base := time.Now()
	guesses := []Guess{
		{PlayerId: "b", Timestamp: base, TimeRemaining: 30, NormalizedTime: 0.5},
	}
	result := ScoreRound(guesses, 1, 0)
	if result.GuesserScores["b"] != 400 {
		t.Errorf("guesser score = %d, want 400", result.GuesserScores["b"])
	}
	if result.ArtistScore != 240 {
		t.Errorf("artist score = %d, want 240", result.ArtistScore)
	}
}
