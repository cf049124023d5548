package domain

import "time"

// Remaining derives the answering countdown from the shared start instant.
// duration is the question's answering window in seconds, startAt the
// server-stamped AnswerStartAt, now the viewer's local clock. Only the
// elapsed-time computation uses the local clock, so per-viewer skew is
// bounded by clock drift and self-corrects on every tick.
func Remaining(duration int, startAt, now time.Time) time.Duration {
	d := time.Duration(duration) * time.Second
	elapsed := now.Sub(startAt)
	if elapsed >= d {
		return 0
	}
	return d - elapsed
}

// AnswerOpen reports whether a submission at now would still fall inside the
// answering window that started at startAt.
func AnswerOpen(duration int, startAt, now time.Time) bool {
	return Remaining(duration, startAt, now) > 0
}
