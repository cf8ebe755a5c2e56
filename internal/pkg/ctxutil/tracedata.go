package ctxutil

import "context"

type traceDataKey struct{}

// TraceData carries the correlation ids attached to a request.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	td, ok := ctx.Value(traceDataKey{}).(*TraceData)
	if !ok {
		return nil
	}
	return td
}
