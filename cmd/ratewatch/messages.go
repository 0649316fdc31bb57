package main

import "github.com/shekel-lab/ratewatch/internal/report"

// SnapshotMsg carries the result of a completed refresh cycle.
type SnapshotMsg struct {
	Snapshot *report.Snapshot
}

// RefreshErrorMsg indicates that the refresh cycle failed entirely.
type RefreshErrorMsg struct {
	Err error
}

// AutoRefreshMsg fires on the configured auto-refresh period.
type AutoRefreshMsg struct{}
