package practice

import "time"

// DateLayout is the calendar-date format used for last_active_date.
const DateLayout = "2006-01-02"

type User struct {
	UserID         string    `gorm:"column:user_id;primaryKey" json:"user_id"`
	XP             int       `gorm:"column:xp;not null;default:0" json:"xp"`
	Streak         int       `gorm:"column:streak;not null;default:0" json:"streak"`
	LastActiveDate string    `gorm:"column:last_active_date" json:"last_active_date"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime:false" json:"created_at"`
	Level          int       `gorm:"column:level;not null;default:1" json:"level"`
}

func (User) TableName() string { return "users" }

// NewUser returns the zeroed progression state for a freshly created user.
func NewUser(userID string, now time.Time) *User {
	return &User{
		UserID:         userID,
		XP:             0,
		Streak:         0,
		LastActiveDate: DateOf(now),
		CreatedAt:      now,
		Level:          1,
	}
}

// DateOf formats t as a calendar date in t's location.
func DateOf(t time.Time) string { return t.Format(DateLayout) }

// UserProgress is the user row plus performance aggregates.
type UserProgress struct {
	UserID                  string  `json:"user_id"`
	CurrentXP               int     `json:"current_xp"`
	CurrentLevel            int     `json:"current_level"`
	CurrentStreak           int     `json:"current_streak"`
	LastActiveDate          string  `json:"last_active_date"`
	TotalExercisesCompleted int     `json:"total_exercises_completed"`
	AverageScore            float64 `json:"average_score"`
}
