// Package service forwards tasks to the external worker API and reports
// their progress. Every call is one upstream round trip without retries.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ncobase/recruit/config"
	"github.com/ncobase/recruit/core/task/structs"
	"github.com/ncobase/recruit/ecode"
	"github.com/ncobase/recruit/logging/logger"
	"github.com/ncobase/recruit/metrics"
	"github.com/ncobase/recruit/net/httpclient"
	"github.com/tidwall/gjson"
)

// MaxBatchSize bounds the payloads of one batch.
const MaxBatchSize = 100

// queryURLPrefix is where clients poll a submitted task.
const queryURLPrefix = "/api/v1/tasks/"

type Service struct {
	client  *httpclient.Client
	kinds   map[string]bool
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// New creates the gateway. An empty kind list accepts every kind.
func New(cfg *config.Task, m *metrics.Metrics, log *logger.Logger) *Service {
	return NewWithClient(httpclient.New(httpclient.Options{
		Name:            "task",
		BaseURL:         cfg.BaseURL,
		APIKey:          cfg.APIKey,
		Timeout:         cfg.Timeout,
		BreakerFailures: cfg.BreakerFailures,
		BreakerTimeout:  cfg.BreakerTimeout,
	}), cfg.Kinds, m, log)
}

// NewWithClient creates the gateway on an existing upstream client.
func NewWithClient(client *httpclient.Client, kinds []string, m *metrics.Metrics, log *logger.Logger) *Service {
	if log == nil {
		log = logger.StdLogger()
	}
	known := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		known[k] = true
	}
	return &Service{client: client, kinds: known, metrics: m, logger: log}
}

// SubmitSingle enqueues one task of kind.
func (s *Service) SubmitSingle(ctx context.Context, kind string, payload json.RawMessage) (*structs.TaskHandle, error) {
	if err := s.checkKind(kind); err != nil {
		return nil, err
	}
	if isEmpty(payload) {
		return nil, ecode.Validationf("payload is required")
	}

	body, err := s.call(ctx, http.MethodPost, "/tasks/"+url.PathEscape(kind), map[string]any{"payload": payload})
	if err != nil {
		return nil, err
	}
	id := gjson.GetBytes(body, "task_id").String()
	if id == "" {
		return nil, ecode.Upstream(errors.New("response has no task_id"), "malformed task service response")
	}
	s.logger.Info(ctx, "Task submitted", "kind", kind, "task_id", id)
	return &structs.TaskHandle{TaskID: id, QueryURL: queryURLPrefix + id}, nil
}

// SubmitBatch enqueues one task of kind per payload.
func (s *Service) SubmitBatch(ctx context.Context, kind string, payloads []json.RawMessage) (*structs.BatchHandle, error) {
	if err := s.checkKind(kind); err != nil {
		return nil, err
	}
	if len(payloads) == 0 {
		return nil, ecode.Validationf("payloads must not be empty")
	}
	if len(payloads) > MaxBatchSize {
		return nil, ecode.Validationf("a batch holds at most %d payloads", MaxBatchSize)
	}
	for i, p := range payloads {
		if isEmpty(p) {
			return nil, ecode.Validationf("payload %d is empty", i).
				WithData(map[string]string{fmt.Sprintf("payloads[%d]", i): "payload is required"})
		}
	}

	body, err := s.call(ctx, http.MethodPost, "/tasks/"+url.PathEscape(kind)+"/batch", map[string]any{"payloads": payloads})
	if err != nil {
		return nil, err
	}
	res := gjson.ParseBytes(body)
	id := res.Get("batch_task_id").String()
	if id == "" {
		return nil, ecode.Upstream(errors.New("response has no batch_task_id"), "malformed task service response")
	}
	total := len(payloads)
	if n := res.Get("total_count"); n.Exists() {
		total = int(n.Int())
	}
	s.logger.Info(ctx, "Task batch submitted", "kind", kind, "batch_task_id", id, "total", total)
	return &structs.BatchHandle{BatchTaskID: id, TotalCount: total}, nil
}

// Poll returns the state of one task.
func (s *Service) Poll(ctx context.Context, taskID string) (*structs.TaskResult, error) {
	if taskID == "" {
		return nil, ecode.Validationf("task id is required")
	}
	body, err := s.call(ctx, http.MethodGet, "/tasks/"+url.PathEscape(taskID), nil)
	if err != nil {
		return nil, err
	}
	result := parseResult(gjson.ParseBytes(body))
	if result.TaskID == "" {
		result.TaskID = taskID
	}
	return result, nil
}

// PollBatch aggregates the subtasks of a batch. Completed counts SUCCESS
// and FAILURE subtasks.
func (s *Service) PollBatch(ctx context.Context, batchID string) (*structs.BatchStatus, error) {
	if batchID == "" {
		return nil, ecode.Validationf("batch id is required")
	}
	body, err := s.call(ctx, http.MethodGet, "/batches/"+url.PathEscape(batchID), nil)
	if err != nil {
		return nil, err
	}

	res := gjson.ParseBytes(body)
	status := &structs.BatchStatus{BatchTaskID: batchID, Results: []*structs.TaskResult{}}
	res.Get("results").ForEach(func(_, item gjson.Result) bool {
		status.Results = append(status.Results, parseResult(item))
		return true
	})
	status.Total = len(status.Results)
	if n := res.Get("total"); n.Exists() {
		status.Total = int(n.Int())
	}
	for _, r := range status.Results {
		if r.Status.Completed() {
			status.Completed++
		}
	}
	status.Ready = status.Completed == status.Total
	return status, nil
}

// Cancel revokes a task and returns its status at request time.
func (s *Service) Cancel(ctx context.Context, taskID string) (*structs.CancelResult, error) {
	if taskID == "" {
		return nil, ecode.Validationf("task id is required")
	}
	body, err := s.call(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(taskID), nil)
	if err != nil {
		return nil, err
	}
	st := structs.Status(gjson.GetBytes(body, "status").String())
	s.logger.Info(ctx, "Task cancelled", "task_id", taskID, "status", string(st))
	return &structs.CancelResult{TaskID: taskID, Status: st}, nil
}

func (s *Service) checkKind(kind string) error {
	if kind == "" {
		return ecode.Validationf("task kind is required")
	}
	if len(s.kinds) > 0 && !s.kinds[kind] {
		return ecode.Validationf("unknown task kind %q", kind)
	}
	return nil
}

func (s *Service) call(ctx context.Context, method, path string, in any) ([]byte, error) {
	body, err := s.client.Do(ctx, method, path, in)
	s.metrics.Upstream("task", err)
	if err != nil {
		s.logger.Warn(ctx, "Task service call failed", "method", method, "path", path, "error", err)
		return nil, mapError(err)
	}
	return body, nil
}

// mapError translates upstream failures into domain errors.
func mapError(err error) error {
	if errors.Is(err, httpclient.ErrCircuitOpen) {
		return ecode.Upstream(err, "task service is unavailable")
	}
	var se *httpclient.StatusError
	if !errors.As(err, &se) {
		return ecode.Upstream(err, "task service request failed")
	}
	switch se.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ecode.Validationf("%s", upstreamMessage(se.Body, "task rejected by worker"))
	case http.StatusNotFound:
		return ecode.NotFoundf("%s", upstreamMessage(se.Body, "task not found"))
	default:
		return ecode.Upstream(err, "task service error")
	}
}

// upstreamMessage picks a human readable message from an error body.
func upstreamMessage(body []byte, fallback string) string {
	if !gjson.ValidBytes(body) {
		return fallback
	}
	for _, path := range []string{"detail", "error", "message"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return fallback
}

func parseResult(r gjson.Result) *structs.TaskResult {
	out := &structs.TaskResult{
		TaskID: r.Get("task_id").String(),
		Status: structs.Status(r.Get("status").String()),
		Error:  r.Get("error").String(),
	}
	if v := r.Get("result"); v.Exists() && v.Type != gjson.Null {
		out.Result = json.RawMessage(v.Raw)
	}
	return out
}

func isEmpty(payload json.RawMessage) bool {
	trimmed := bytes.TrimSpace(payload)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}"))
}
