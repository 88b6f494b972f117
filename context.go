package fluentdb

import "context"

type sessionKey struct{}

// WithSession, session'ı context'e ekler. İstek başına ayrı session taşımak içindir.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext, WithSession ile eklenen session'ı döndürür.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
