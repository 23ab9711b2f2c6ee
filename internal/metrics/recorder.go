// Package metrics defines the instrumentation surface for the editor and its
// Prometheus implementation.
package metrics

import "time"

// Recorder receives editor instrumentation events. Implementations must be
// safe for concurrent use.
type Recorder interface {
	// RecordMutation counts an applied mutation by operation name.
	RecordMutation(op string)
	// RecordMutationRejected counts a rejected or no-op mutation by operation
	// name and error category.
	RecordMutationRejected(op, category string)
	// RecordNotice counts a user-facing notice by level.
	RecordNotice(level string)
	// RecordSave counts a save attempt by outcome ("success" or "failure").
	RecordSave(result string)
	// ObserveSaveDuration records how long a persist call took.
	ObserveSaveDuration(d time.Duration)
	// SetActiveSessions tracks the number of open editor sessions.
	SetActiveSessions(n int)
}

// NopRecorder discards all instrumentation.
type NopRecorder struct{}

func (NopRecorder) RecordMutation(string)                 {}
func (NopRecorder) RecordMutationRejected(string, string) {}
func (NopRecorder) RecordNotice(string)                   {}
func (NopRecorder) RecordSave(string)                     {}
func (NopRecorder) ObserveSaveDuration(time.Duration)     {}
func (NopRecorder) SetActiveSessions(int)                 {}
