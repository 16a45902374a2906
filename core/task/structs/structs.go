// Package structs defines handles and results of asynchronous worker tasks.
package structs

import "encoding/json"

// Status is the state reported by the worker queue.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusStarted Status = "STARTED"
	StatusRetry   Status = "RETRY"
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
	StatusRevoked Status = "REVOKED"
)

// Completed reports whether the task reached a terminal state: it
// succeeded, failed or was revoked.
func (s Status) Completed() bool {
	switch s {
	case StatusSuccess, StatusFailure, StatusRevoked:
		return true
	}
	return false
}

// TaskHandle references one submitted task.
type TaskHandle struct {
	TaskID   string `json:"task_id"`
	QueryURL string `json:"query_url"`
}

// BatchHandle references a submitted batch.
type BatchHandle struct {
	BatchTaskID string `json:"batch_task_id"`
	TotalCount  int    `json:"total_count"`
}

// TaskResult is the state of one task.
type TaskResult struct {
	TaskID string          `json:"task_id"`
	Status Status          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// BatchStatus aggregates the subtasks of a batch. Ready is true once every
// subtask completed, whatever its outcome.
type BatchStatus struct {
	BatchTaskID string        `json:"batch_task_id"`
	Total       int           `json:"total"`
	Completed   int           `json:"completed"`
	Ready       bool          `json:"ready"`
	Results     []*TaskResult `json:"results"`
}

// CancelResult is the task status at the time of the cancel request.
type CancelResult struct {
	TaskID string `json:"task_id"`
	Status Status `json:"status"`
}

// SubmitRequest submits one payload, or a batch when Payloads is set.
type SubmitRequest struct {
	Payload  json.RawMessage   `json:"payload,omitempty"`
	Payloads []json.RawMessage `json:"payloads,omitempty"`
}

// IsBatch reports whether the request carries a batch.
func (r *SubmitRequest) IsBatch() bool {
	return r.Payloads != nil
}
