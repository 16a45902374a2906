package resp

import (
	"encoding/json"
	"net/http"

	"github.com/ncobase/recruit/ecode"
)

const contentType = "application/json; charset=utf-8"

// Exception is a failure about to be rendered.
type Exception struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
}

func newResponse(status, code int, message string, data ...any) *Exception {
	e := &Exception{Status: status, Code: code, Message: message}
	if len(data) > 0 {
		e.Errors = data[0]
	}
	return e
}

// Success writes data with 200.
func Success(w http.ResponseWriter, data ...any) {
	WithStatusCode(w, http.StatusOK, data...)
}

// WithStatusCode writes data as the body. A string becomes {"message": s},
// no data becomes {"message": "ok"}.
func WithStatusCode(w http.ResponseWriter, statusCode int, data ...any) {
	var body any = map[string]string{"message": "ok"}
	if len(data) > 0 && data[0] != nil {
		body = data[0]
		if msg, ok := body.(string); ok {
			body = map[string]string{"message": msg}
		}
	}
	if statusCode < 200 || statusCode >= 400 {
		statusCode = http.StatusOK
	}
	write(w, statusCode, body)
}

// Fail writes r with its status. A nil r is rendered as a server error.
func Fail(w http.ResponseWriter, r *Exception) {
	if r == nil {
		r = InternalServer(ecode.Text(ecode.ServerErr))
	}
	status := r.Status
	if status == 0 {
		status = ecode.ToHTTPStatus(r.Code)
	}
	if r.Code == 0 {
		r.Code = ecode.RequestErr
	}
	if r.Message == "" {
		r.Message = ecode.Text(r.Code)
	}
	write(w, status, r)
}

func write(w http.ResponseWriter, status int, body any) {
	buf, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(append(buf, '\n'))
}
