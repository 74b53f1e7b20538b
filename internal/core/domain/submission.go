package domain

import (
	"time"

	"github.com/google/uuid"
)

type JobState string

const (
	JobStatePending   JobState = "PENDING"
	JobStateSubmitted JobState = "SUBMITTED"
	JobStateRunning   JobState = "RUNNING"
	JobStateCompleted JobState = "COMPLETED"
	JobStateFailed    JobState = "FAILED"
	JobStateUnknown   JobState = "UNKNOWN"
)

// Terminal reports whether the tracker can stop polling a job in this state
func (s JobState) Terminal() bool {
	return s == JobStateCompleted || s == JobStateFailed
}

// Submission is one array job covering every entry of one input file
type Submission struct {
	ID          uuid.UUID `json:"id"`
	FileIndex   int       `json:"file_index"`
	InputFile   string    `json:"input_file"`
	Folder      string    `json:"folder"`
	EntryCount  int       `json:"entry_count"`
	Profile     string    `json:"profile"`
	JobID       int64     `json:"job_id"`
	State       JobState  `json:"state"`
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewSubmission creates a pending submission for the j-th input file
func NewSubmission(j int, inputFile, folder, profile string, entries int) *Submission {
	now := time.Now().UTC()
	return &Submission{
		ID:         uuid.New(),
		FileIndex:  j,
		InputFile:  inputFile,
		Folder:     folder,
		EntryCount: entries,
		Profile:    profile,
		State:      JobStatePending,
		UpdatedAt:  now,
	}
}

type EventType string

const (
	EventSubmitted    EventType = "submitted"
	EventStateChanged EventType = "state_changed"
)

// SubmissionEvent is published whenever a submission is created or changes state
type SubmissionEvent struct {
	Type       EventType   `json:"type"`
	Submission *Submission `json:"submission"`
	Previous   JobState    `json:"previous,omitempty"`
	At         time.Time   `json:"at"`
}
