package model

import "time"

// Run is one execution of a built command, as kept in the history database.
type Run struct {
	ID          int64
	Category    Category
	Description string
	Command     string
	ExitCode    int
	CreatedAt   time.Time
}
