package outbox

import "context"

type actorKey struct{}

// ContextWithActor attaches the acting user so events emitted downstream carry it.
func ContextWithActor(ctx context.Context, actor ActorRef) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns nil when no actor was attached.
func ActorFromContext(ctx context.Context) *ActorRef {
	if ctx == nil {
		return nil
	}
	actor, ok := ctx.Value(actorKey{}).(ActorRef)
	if !ok {
		return nil
	}
	return &actor
}
