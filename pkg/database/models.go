package database

import "time"

// Tick represents one recorded processor iteration.
type Tick struct {
	ID        int64      `db:"id" json:"id"`
	Timestamp time.Time  `db:"ts" json:"timestamp"`
	Active    bool       `db:"active" json:"active"`
	IdleSince *time.Time `db:"idle_since" json:"idle_since,omitempty"`
	WakeupAt  *time.Time `db:"wakeup_at" json:"wakeup_at,omitempty"`
	Suspended bool       `db:"suspended" json:"suspended"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// ProbeResult represents one probe's outcome within a tick.
type ProbeResult struct {
	ID        int64     `db:"id" json:"id"`
	TickID    int64     `db:"tick_id" json:"tick_id"`
	Kind      string    `db:"kind" json:"kind"`
	Name      string    `db:"name" json:"name"`
	Matched   bool      `db:"matched" json:"matched"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	Error     *string   `db:"error" json:"error,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
