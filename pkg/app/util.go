package app

import "time"

// calculateNextDelay is the time from now until the next quarter-hour mark.
func calculateNextDelay(now time.Time) time.Duration {
	// Calculate the next quarter-hour mark (0, 15, 30, 45)
	nextQuarter := time.Date(
		now.Year(),
		now.Month(),
		now.Day(),
		now.Hour(),
		(now.Minute()/15+1)*15,
		0,
		0,
		now.Location(),
	)
	return nextQuarter.Sub(now)
}

func utcNow() time.Time {
	return time.Now().UTC()
}
