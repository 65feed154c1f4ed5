package domain

import "time"

// Archive describes one stored balance snapshot.
type Archive struct {
	Key          string
	Size         int64
	LastModified *time.Time
	URL          string
}
