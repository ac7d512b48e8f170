package services

// Point-economy constants. Study-time points are 1 point per credited
// minute, capped daily; chat and completion rewards are flat.
const (
	// MaxActiveMinutesPerDay is the hard daily cap on study-time credit,
	// regardless of how many notes are open.
	MaxActiveMinutesPerDay = 60

	// PingIdleCeilingSeconds is the largest gap between two pings that still
	// counts as continuous study. Larger (or non-positive) gaps credit zero
	// seconds but still refresh the session clock.
	PingIdleCeilingSeconds = 90

	// StreakMinMinutes is the credited-minute threshold for a day to qualify
	// toward the streak.
	StreakMinMinutes = 1

	// StreakDayBonus is granted once per qualifying day. The milestone
	// bonuses fire only on the day the streak first reaches that exact
	// length.
	StreakDayBonus   = 5
	StreakWeekBonus  = 50
	StreakMonthBonus = 250

	// ChatPoints is granted per meaningful chat message, up to
	// MaxMeaningfulPerDay messages per day.
	ChatPoints          = 2
	MeaningfulMinLength = 15
	MaxMeaningfulPerDay = 10

	// CompletionBonus is the leaderboard weight of one note completion.
	CompletionBonus = 50

	LeaderboardSize = 10
)
