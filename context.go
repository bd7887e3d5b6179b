package campusauth

import "context"

// clientInfo describes the remote caller of the current request.
type clientInfo struct {
	ip        string
	userAgent string
}

type clientInfoKey struct{}

func clientFromContext(ctx context.Context) clientInfo {
	if ctx == nil {
		return clientInfo{}
	}
	info, _ := ctx.Value(clientInfoKey{}).(clientInfo)
	return info
}

// WithClientIP attaches the caller's IP address to ctx. The Engine records it
// on audit events and folds it into the login throttle key.
func WithClientIP(ctx context.Context, ip string) context.Context {
	info := clientFromContext(ctx)
	info.ip = ip
	return context.WithValue(ctx, clientInfoKey{}, info)
}

// WithUserAgent attaches the HTTP User-Agent string to ctx for audit events.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	info := clientFromContext(ctx)
	info.userAgent = userAgent
	return context.WithValue(ctx, clientInfoKey{}, info)
}

func clientIPFromContext(ctx context.Context) string { return clientFromContext(ctx).ip }

func userAgentFromContext(ctx context.Context) string { return clientFromContext(ctx).userAgent }
