package dispatch

import "github.com/dshills/uiloop/loop"

// Priority is re-exported from package loop so dispatch callers can
// stay with one import.
type Priority = loop.Priority

// The three priority levels, forwarded verbatim to the target.
const (
	Low    = loop.Low
	Normal = loop.Normal
	High   = loop.High
)
