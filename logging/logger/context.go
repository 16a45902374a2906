package logger

import (
	"context"

	"github.com/ncobase/recruit/ctxutil"
	"github.com/sirupsen/logrus"
)

// requestFields lists the request-scoped values copied onto every entry.
var requestFields = []struct {
	key string
	get func(context.Context) string
}{
	{ctxutil.TraceIDKey, ctxutil.GetTraceID},
	{ctxutil.UserIDKey, ctxutil.GetUserID},
	{ctxutil.ClientIPKey, ctxutil.GetClientIP},
}

// contextFields collects the request values present on ctx.
func contextFields(ctx context.Context) logrus.Fields {
	fields := logrus.Fields{}
	if ctx == nil {
		return fields
	}
	for _, f := range requestFields {
		if v := f.get(ctx); v != "" {
			fields[f.key] = v
		}
	}
	return fields
}
