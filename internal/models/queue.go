package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dkarpov/studysync/internal/common"
)

// QueueStatus is the lifecycle of a queued action:
// pending → in_progress → {completed | pending (retry) | failed}.
type QueueStatus string

const (
	QueuePending    QueueStatus = "pending"
	QueueInProgress QueueStatus = "in_progress"
	QueueCompleted  QueueStatus = "completed"
	QueueFailed     QueueStatus = "failed"
)

// DefaultMaxRetries is the number of failed attempts after which a queued
// action becomes terminally failed.
const DefaultMaxRetries = 3

// QueueItem is a deferred mutating action recorded while offline. The request
// tuple is persisted verbatim so a pass can replay it without re-deriving
// anything from the originating action.
type QueueItem struct {
	ID       string
	Kind     string
	Endpoint string
	Method   string
	Body     []byte
	Headers  map[string]string

	Status     QueueStatus
	RetryCount int
	MaxRetries int
	CreatedAt  time.Time
}

// Action is the closed set of operations that may be queued while offline.
// Each variant carries its own typed payload; BuildRequest handles the set
// exhaustively and rejects anything else as a validation error.
type Action interface {
	isAction()
}

// SubmitAssignment submits a student's answer for an assignment.
type SubmitAssignment struct {
	AssignmentID string `json:"assignmentId"`
	StudentID    string `json:"studentId"`
	Content      string `json:"content"`
}

// RecordMaterialProgress reports how far a student got through a material.
type RecordMaterialProgress struct {
	MaterialID string `json:"materialId"`
	StudentID  string `json:"studentId"`
	Percent    int    `json:"percent"`
}

// SaveLockerNote stores a note attached to the student's locker.
type SaveLockerNote struct {
	LockerID string `json:"lockerId"`
	Text     string `json:"text"`
}

func (SubmitAssignment) isAction()       {}
func (RecordMaterialProgress) isAction() {}
func (SaveLockerNote) isAction()         {}

// BuildRequest maps an action variant onto the request tuple persisted in the
// queue. Unknown variants cannot occur for callers inside this module, but a
// nil action still yields common.ErrValidation.
func BuildRequest(a Action) (kind, method, endpoint string, body []byte, err error) {
	switch v := a.(type) {
	case SubmitAssignment:
		body, err = json.Marshal(v)
		return "submit_assignment", "POST", "/assignments/" + v.AssignmentID + "/submissions", body, err
	case RecordMaterialProgress:
		body, err = json.Marshal(v)
		return "record_material_progress", "POST", "/materials/" + v.MaterialID + "/progress", body, err
	case SaveLockerNote:
		body, err = json.Marshal(v)
		return "save_locker_note", "PUT", "/lockers/" + v.LockerID + "/note", body, err
	default:
		return "", "", "", nil, fmt.Errorf("unsupported action %T: %w", a, common.ErrValidation)
	}
}
