package utils

import (
	"time"
)

func AddDays(date time.Time, days int) time.Time {
	return date.AddDate(0, 0, days)
}

func FormatDate(date time.Time) string {
	return date.Format("2006-01-02")
}
