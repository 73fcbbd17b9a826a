package practice

import (
	"math/rand"
	"testing"
)

func TestXPForScore(t *testing.T) {
	cases := []struct {
		score int
		want  int
	}{
		{0, 10},
		{9, 10},
		{10, 11},
		{55, 15},
		{99, 19},
		{100, 20},
		{150, 20},
		{-3, 10},
	}
	for _, tc := range cases {
		if got := XPForScore(tc.score); got != tc.want {
			t.Fatalf("XPForScore(%d): got=%d want=%d", tc.score, got, tc.want)
		}
	}
}

func TestLevelForXP(t *testing.T) {
	cases := map[int]int{0: 1, 99: 1, 100: 2, 199: 2, 250: 3, 1000: 11}
	for xp, want := range cases {
		if got := LevelForXP(xp); got != want {
			t.Fatalf("LevelForXP(%d): got=%d want=%d", xp, got, want)
		}
	}
}

func TestAdvanceBrandNewUser(t *testing.T) {
	today := "2026-03-02"
	fresh := StateOf(NewUser("u1", mustDate(t, today)))

	next, inc := Advance(fresh, XPForScore(100), true, today)
	if next.XP != 20 || next.Level != 1 || next.Streak != 1 || !inc {
		t.Fatalf("unexpected state after first submission: %+v inc=%v", next, inc)
	}
	if next.LastActiveDate != today {
		t.Fatalf("last active date: got=%q want=%q", next.LastActiveDate, today)
	}
}

func TestAdvanceSameDayDoesNotGrowStreak(t *testing.T) {
	today := "2026-03-02"
	s := ProgressState{XP: 40, Streak: 3, Level: 1, LastActiveDate: "2026-03-01"}

	s, inc := Advance(s, 10, true, today)
	if s.Streak != 4 || !inc {
		t.Fatalf("first submission of the day should grow streak: %+v", s)
	}
	for i := 0; i < 5; i++ {
		s, inc = Advance(s, 10, true, today)
		if s.Streak != 4 || inc {
			t.Fatalf("repeat submission %d grew streak: %+v", i, s)
		}
	}
	if s.XP != 100 || s.Level != 2 {
		t.Fatalf("xp/level after six submissions: %+v", s)
	}
}

func TestAdvanceWithoutStreakRequest(t *testing.T) {
	s := ProgressState{XP: 5, Streak: 2, Level: 1, LastActiveDate: "2026-01-01"}
	next, inc := Advance(s, 10, false, "2026-01-05")
	if next.Streak != 2 || inc {
		t.Fatalf("streak changed without request: %+v", next)
	}
	if next.LastActiveDate != "2026-01-05" {
		t.Fatalf("last active date must move to today: %+v", next)
	}
}

// A user who misses days keeps their streak; it only ever grows.
func TestAdvanceStreakNeverResetsOnMissedDays(t *testing.T) {
	s := ProgressState{XP: 300, Streak: 12, Level: 4, LastActiveDate: "2025-11-01"}
	next, _ := Advance(s, 10, true, "2026-02-14")
	if next.Streak != 13 {
		t.Fatalf("streak after long gap: got=%d want=13", next.Streak)
	}
}

func TestAdvanceNegativeXPIsIgnored(t *testing.T) {
	s := ProgressState{XP: 120, Streak: 1, Level: 2, LastActiveDate: "2026-01-01"}
	next, _ := Advance(s, -50, false, "2026-01-01")
	if next.XP != 120 {
		t.Fatalf("xp decreased: %+v", next)
	}
}

func TestAdvanceInvariantsOverRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	days := []string{"2026-01-01", "2026-01-02", "2026-01-03", "2026-01-05", "2026-01-09"}

	for run := 0; run < 50; run++ {
		s := StateOf(NewUser("u", mustDate(t, days[0])))
		incrementsPerDay := map[string]int{}
		dayIdx := 0
		for step := 0; step < 40; step++ {
			if rng.Intn(4) == 0 && dayIdx < len(days)-1 {
				dayIdx++
			}
			today := days[dayIdx]
			prevXP := s.XP
			var inc bool
			s, inc = Advance(s, XPForScore(rng.Intn(101)), true, today)
			if inc {
				incrementsPerDay[today]++
			}
			if s.XP < prevXP {
				t.Fatalf("xp decreased: %d -> %d", prevXP, s.XP)
			}
			if s.Level != s.XP/100+1 {
				t.Fatalf("level invariant broken: %+v", s)
			}
		}
		for day, n := range incrementsPerDay {
			if n > 1 {
				t.Fatalf("streak grew %d times on %s", n, day)
			}
		}
	}
}
