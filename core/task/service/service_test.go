package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ncobase/recruit/ecode"
	"github.com/ncobase/recruit/net/httpclient"
)

type route struct {
	status int
	body   string
}

func newService(t *testing.T, routes map[string]route) (*Service, *[]string) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path+" "+string(body))
		mu.Unlock()
		rt, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			rt = route{status: http.StatusNotFound, body: `{"detail":"no such route"}`}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rt.status)
		_, _ = io.WriteString(w, rt.body)
	}))
	t.Cleanup(srv.Close)

	client := httpclient.New(httpclient.Options{
		Name:            "task",
		BaseURL:         srv.URL,
		Timeout:         time.Second,
		BreakerFailures: 100,
	})
	return NewWithClient(client, []string{"resume_extraction", "job_extraction"}, nil, nil), &seen
}

func assertCode(t *testing.T, err error, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code %d, got nil", code)
	}
	if got := ecode.CodeOf(err); got != code {
		t.Fatalf("expected error code %d, got %d (%v)", code, got, err)
	}
}

func TestSubmitSingle(t *testing.T) {
	svc, seen := newService(t, map[string]route{
		"POST /tasks/resume_extraction": {http.StatusAccepted, `{"task_id":"t-1"}`},
	})

	handle, err := svc.SubmitSingle(context.Background(), "resume_extraction", json.RawMessage(`{"text":"cv"}`))
	if err != nil {
		t.Fatalf("SubmitSingle: %v", err)
	}
	if handle.TaskID != "t-1" || handle.QueryURL != "/api/v1/tasks/t-1" {
		t.Fatalf("unexpected handle %+v", handle)
	}
	if len(*seen) != 1 {
		t.Fatalf("expected one upstream call, got %v", *seen)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc, seen := newService(t, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		run  func() error
	}{
		{"unknown kind", func() error {
			_, err := svc.SubmitSingle(ctx, "horoscope", json.RawMessage(`{"a":1}`))
			return err
		}},
		{"missing kind", func() error {
			_, err := svc.SubmitSingle(ctx, "", json.RawMessage(`{"a":1}`))
			return err
		}},
		{"null payload", func() error {
			_, err := svc.SubmitSingle(ctx, "job_extraction", json.RawMessage(`null`))
			return err
		}},
		{"empty object payload", func() error {
			_, err := svc.SubmitSingle(ctx, "job_extraction", json.RawMessage(` {} `))
			return err
		}},
		{"empty batch", func() error {
			_, err := svc.SubmitBatch(ctx, "job_extraction", []json.RawMessage{})
			return err
		}},
		{"empty batch item", func() error {
			_, err := svc.SubmitBatch(ctx, "job_extraction", []json.RawMessage{json.RawMessage(`{"a":1}`), nil})
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertCode(t, tc.run(), ecode.ParamErr)
		})
	}
	if len(*seen) != 0 {
		t.Fatalf("validation failures must not reach upstream: %v", *seen)
	}
}

func TestSubmitBatch(t *testing.T) {
	svc, _ := newService(t, map[string]route{
		"POST /tasks/job_extraction/batch": {http.StatusAccepted, `{"batch_task_id":"b-1"}`},
	})

	handle, err := svc.SubmitBatch(context.Background(), "job_extraction", []json.RawMessage{
		json.RawMessage(`{"url":"a"}`), json.RawMessage(`{"url":"b"}`),
	})
	if err != nil {
		t.Fatalf("SubmitBatch: %v", err)
	}
	if handle.BatchTaskID != "b-1" || handle.TotalCount != 2 {
		t.Fatalf("unexpected handle %+v", handle)
	}
}

func TestPoll(t *testing.T) {
	svc, _ := newService(t, map[string]route{
		"GET /tasks/t-1": {http.StatusOK, `{"task_id":"t-1","status":"SUCCESS","result":{"skills":["go"]}}`},
		"GET /tasks/t-2": {http.StatusOK, `{"status":"FAILURE","error":"parse error","result":null}`},
	})
	ctx := context.Background()

	res, err := svc.Poll(ctx, "t-1")
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if res.Status != "SUCCESS" || string(res.Result) != `{"skills":["go"]}` {
		t.Fatalf("unexpected result %+v", res)
	}

	res, err = svc.Poll(ctx, "t-2")
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if res.TaskID != "t-2" || res.Error != "parse error" || res.Result != nil {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestPollBatch(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		total     int
		completed int
		ready     bool
	}{
		{
			name: "partially done",
			body: `{"total":5,"results":[
				{"task_id":"1","status":"SUCCESS"},
				{"task_id":"2","status":"SUCCESS"},
				{"task_id":"3","status":"SUCCESS"},
				{"task_id":"4","status":"STARTED"},
				{"task_id":"5","status":"PENDING"}]}`,
			total: 5, completed: 3, ready: false,
		},
		{
			name: "failures count as completed",
			body: `{"total":5,"results":[
				{"task_id":"1","status":"SUCCESS"},
				{"task_id":"2","status":"SUCCESS"},
				{"task_id":"3","status":"SUCCESS"},
				{"task_id":"4","status":"SUCCESS"},
				{"task_id":"5","status":"FAILURE","error":"boom"}]}`,
			total: 5, completed: 5, ready: true,
		},
		{
			name: "revoked subtasks are terminal",
			body: `{"total":2,"results":[
				{"task_id":"1","status":"SUCCESS"},
				{"task_id":"2","status":"REVOKED"}]}`,
			total: 2, completed: 2, ready: true,
		},
		{
			name: "retrying is not terminal",
			body: `{"results":[
				{"task_id":"1","status":"REVOKED"},
				{"task_id":"2","status":"RETRY"}]}`,
			total: 2, completed: 1, ready: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newService(t, map[string]route{"GET /batches/b-1": {http.StatusOK, tc.body}})
			st, err := svc.PollBatch(context.Background(), "b-1")
			if err != nil {
				t.Fatalf("PollBatch: %v", err)
			}
			if st.Total != tc.total || st.Completed != tc.completed || st.Ready != tc.ready {
				t.Fatalf("got total=%d completed=%d ready=%v", st.Total, st.Completed, st.Ready)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	svc, _ := newService(t, map[string]route{
		"DELETE /tasks/t-1": {http.StatusOK, `{"task_id":"t-1","status":"STARTED"}`},
	})
	res, err := svc.Cancel(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if res.TaskID != "t-1" || res.Status != "STARTED" {
		t.Fatalf("unexpected cancel result %+v", res)
	}
}

func TestUpstreamErrorMapping(t *testing.T) {
	svc, _ := newService(t, map[string]route{
		"GET /tasks/bad":     {http.StatusUnprocessableEntity, `{"detail":"invalid id"}`},
		"GET /tasks/broken":  {http.StatusInternalServerError, `oops`},
		"DELETE /tasks/gone": {http.StatusNotFound, `{"error":"unknown task"}`},
	})
	ctx := context.Background()

	_, err := svc.Poll(ctx, "bad")
	assertCode(t, err, ecode.ParamErr)
	if err.Error() != "invalid id" {
		t.Fatalf("expected upstream message, got %q", err.Error())
	}

	_, err = svc.Poll(ctx, "broken")
	assertCode(t, err, ecode.UpstreamErr)

	_, err = svc.Cancel(ctx, "gone")
	assertCode(t, err, ecode.NothingFound)
}

func TestCircuitOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewWithClient(httpclient.New(httpclient.Options{
		BaseURL:         srv.URL,
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	}), nil, nil, nil)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := svc.Poll(ctx, "t-1")
		assertCode(t, err, ecode.UpstreamErr)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected breaker to stop calls after 2 failures, got %d", n)
	}
}
