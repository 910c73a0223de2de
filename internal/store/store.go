package store

// Store defines the interface for checkpoint persistence.
// Implementations must be safe for concurrent use.
//
// Error conventions:
//   - nil on success
//   - ErrNotFound (via errors.Is) when a checkpoint doesn't exist
//   - wrapped errors (fmt.Errorf with %w) for I/O and codec failures
type Store interface {
	// SaveCheckpoint atomically saves a checkpoint for the given job,
	// overwriting any existing one. Implementations should use atomic
	// write strategies (temp file + rename) so a crash never leaves a
	// corrupt checkpoint behind.
	SaveCheckpoint(jobID string, checkpoint *Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for the given job.
	LoadCheckpoint(jobID string) (*Checkpoint, error)

	// ListCheckpoints returns metadata for all available checkpoints.
	ListCheckpoints() ([]CheckpointInfo, error)

	// DeleteCheckpoint removes the checkpoint and associated artifacts
	// (trace.jsonl) for the given job.
	DeleteCheckpoint(jobID string) error
}

// ErrNotFound is returned when a requested checkpoint does not exist.
// Use errors.Is(err, ErrNotFound) to check for it.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing checkpoint.
type NotFoundError struct {
	JobID string
}

func (e *NotFoundError) Error() string {
	if e.JobID != "" {
		return "checkpoint not found: " + e.JobID
	}
	return "checkpoint not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
