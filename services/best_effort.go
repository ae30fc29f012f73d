package services

import (
	"context"

	"deal-pipeline-api/workflow"

	"github.com/rs/zerolog"
)

func persistentContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}

// BestEffort runs a side effect that must never fail the calling operation.
// The effect sees a context that survives request cancellation; errors and
// panics are logged and dropped. It reports whether the effect succeeded.
func BestEffort(ctx context.Context, log zerolog.Logger, op string, fn func(context.Context) error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("op", op).Interface("panic", r).Msg("side effect panicked")
			ok = false
		}
	}()

	if err := fn(persistentContext(ctx)); err != nil {
		log.Warn().Err(workflow.Dependency(err, "%s failed", op)).Str("op", op).Msg("side effect failed")
		return false
	}
	return true
}
