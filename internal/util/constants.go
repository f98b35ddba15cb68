package util

const (
	DateFormat  = "2006-01-02"
	ClockFormat = "15:04"
	TimeFormat  = "2006-01-02 15:04:05"
)
