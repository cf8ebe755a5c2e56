package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData carries the caller identity resolved by the auth middleware.
// Exactly one of UserID / AnonID is set for identified callers; both stay
// zero for endpoints that allow fully unidentified access.
type RequestData struct {
	TokenString string
	UserID      uuid.UUID
	AnonID      string
}

// Authenticated reports whether a verified user identity is attached.
func (d *RequestData) Authenticated() bool {
	return d != nil && d.UserID != uuid.Nil
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	rd, ok := ctx.Value(requestDataKey{}).(*RequestData)
	if !ok {
		return nil
	}
	return rd
}
