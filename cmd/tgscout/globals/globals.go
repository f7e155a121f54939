package globals

import (
	"context"

	"tgscout/internal/components/telemetry"
	"tgscout/internal/config"
)

type key struct{}

type Value struct {
	Config config.Config
	// ConfigPath is empty when running on defaults only.
	ConfigPath string
	Telemetry  telemetry.API
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key{}).(*Value)
}
