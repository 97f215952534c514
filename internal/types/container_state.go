package types

import "errors"

// ContainerState tracks how far a parse has progressed.
type ContainerState int

const (
	StateUnprobed ContainerState = iota
	StateHeaderValid
	StateDirectoryWalked
	StateReady
	StateRejected
	// StateFailed is entered when region allocation fails. Unlike
	// StateRejected the open must not be retried as another format.
	StateFailed
)

func (s ContainerState) String() string {
	switch s {
	case StateUnprobed:
		return "unprobed"
	case StateHeaderValid:
		return "header-valid"
	case StateDirectoryWalked:
		return "directory-walked"
	case StateReady:
		return "ready"
	case StateRejected:
		return "rejected"
	case StateFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// IsTerminal reports whether no further transition is possible.
func (s ContainerState) IsTerminal() bool {
	return s == StateReady || s == StateRejected || s == StateFailed
}

var (
	// ErrNotMinidump is the not-this-format verdict. It is a silent decline:
	// callers probing several formats move on to the next one.
	ErrNotMinidump = errors.New("not a minidump container")

	// ErrAllocationFailed aborts the whole open. No region table is published.
	ErrAllocationFailed = errors.New("region allocation failed")
)

// StreamIssue records a stream whose payload could not be fully decoded.
type StreamIssue struct {
	EntryIndex uint32
	StreamType StreamType
	Reason     string
}
