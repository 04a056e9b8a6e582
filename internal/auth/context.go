package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxCallerID ctxKey = iota
	ctxAreaID
)

func WithIdentity(ctx context.Context, callerID, areaID string) context.Context {
	ctx = context.WithValue(ctx, ctxCallerID, callerID)
	ctx = context.WithValue(ctx, ctxAreaID, areaID)
	return ctx
}

func CallerID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxCallerID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("caller_id not in context")
}

func AreaID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxAreaID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("area_id not in context")
}
