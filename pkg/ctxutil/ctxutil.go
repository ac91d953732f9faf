package ctxutil

import "context"

type ctxKey string

const (
	adminSubjectKey ctxKey = "admin_subject"
	requestIDKey    ctxKey = "request_id"
	memberIDKey     ctxKey = "member_id"
)

// WithAdminSubject stores the authenticated admin token subject in the context.
func WithAdminSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, adminSubjectKey, subject)
}

// AdminSubjectFromCtx extracts the admin subject from the context.
// Returns "" and false if the value is missing, empty, or wrong type.
func AdminSubjectFromCtx(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(adminSubjectKey).(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// WithRequestID stores the request ID in the context. Chat updates use
// "tg-<update id>", HTTP requests use a UUID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithMemberID stores the chat user id of the caller in the context.
func WithMemberID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, memberIDKey, id)
}

// MemberIDFromCtx extracts the caller id. Returns 0 and false when absent.
func MemberIDFromCtx(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(memberIDKey).(int64)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}
