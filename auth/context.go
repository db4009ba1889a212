package auth

import (
	"context"
)

const (
	callerKey privateKey = "caller"
)

type privateKey string

// Caller is the authenticated identity attached to a request after
// credential validation. A nil Caller means the request is anonymous.
type Caller struct {
	ID       string `json:"_id"`
	Username string `json:"name"`
	Email    string `json:"email"`
}

// SetCaller returns a child context carrying the given caller.
func SetCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// GetCaller returns the caller attached to the context, or nil if the
// request is anonymous.
func GetCaller(ctx context.Context) *Caller {
	if temp := ctx.Value(callerKey); temp != nil {
		if caller, ok := temp.(*Caller); ok {
			return caller
		}
	}
	return nil
}
