package urlkeeper

import "context"

type tenantIDContextKey struct{}
type consumerIDContextKey struct{}

// WithTenantID attaches a tenant identifier to ctx. The Engine uses it to
// scope warm-start cache keys in multi-tenant portals. When absent, the
// default tenant "0" is used.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDContextKey{}, tenantID)
}

// WithConsumerID attaches an identifier for the rendering surface (a page or
// component name) to ctx. It is carried on emitted events so subscribers can
// correlate refresh activity with the consumer that triggered it.
func WithConsumerID(ctx context.Context, consumerID string) context.Context {
	return context.WithValue(ctx, consumerIDContextKey{}, consumerID)
}

func tenantIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return "0"
	}

	tenantID, _ := ctx.Value(tenantIDContextKey{}).(string)
	if tenantID == "" {
		return "0"
	}

	return tenantID
}

func consumerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	consumerID, _ := ctx.Value(consumerIDContextKey{}).(string)
	return consumerID
}
