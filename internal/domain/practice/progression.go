package practice

// Progression constants.
const (
	XPPerLevel      = 100
	BaseXP          = 10
	MaxScoreBonusXP = 10
	MaxScore        = 100
)

// XPForScore is base XP plus a bonus scaled linearly by score out of 100,
// rounded down. Scores are clamped to 0..100.
func XPForScore(score int) int {
	if score < 0 {
		score = 0
	}
	if score > MaxScore {
		score = MaxScore
	}
	return BaseXP + score*MaxScoreBonusXP/MaxScore
}

// LevelForXP returns floor(xp/100)+1.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// ProgressState is the mutable part of a user's progression.
type ProgressState struct {
	XP             int
	Streak         int
	Level          int
	LastActiveDate string
}

// StateOf extracts the progression fields from u.
func StateOf(u *User) ProgressState {
	return ProgressState{
		XP:             u.XP,
		Streak:         u.Streak,
		Level:          u.Level,
		LastActiveDate: u.LastActiveDate,
	}
}

// Apply writes s back onto u.
func (s ProgressState) Apply(u *User) {
	u.XP = s.XP
	u.Streak = s.Streak
	u.Level = s.Level
	u.LastActiveDate = s.LastActiveDate
}

// Advance applies one performance submission to prev.
//
// The streak grows by one when a streak update is requested and the user was
// last active on a different day, or has no streak yet. It never resets on
// missed days. last_active_date always moves to today.
func Advance(prev ProgressState, xpEarned int, streakRequested bool, today string) (next ProgressState, streakIncremented bool) {
	if xpEarned < 0 {
		xpEarned = 0
	}
	next = prev
	next.XP = prev.XP + xpEarned
	if streakRequested && (prev.LastActiveDate != today || prev.Streak == 0) {
		next.Streak = prev.Streak + 1
		streakIncremented = true
	}
	next.LastActiveDate = today
	next.Level = LevelForXP(next.XP)
	return next, streakIncremented
}
