package postgres

import (
	"context"

	"github.com/w-h-a/rio/warehouse"
)

type driverKey struct{}

// WithDriver swaps the registered database/sql driver name.
func WithDriver(name string) warehouse.Option {
	return func(o *warehouse.Options) {
		o.Context = context.WithValue(o.Context, driverKey{}, name)
	}
}

func DriverFrom(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(driverKey{}).(string)
	return name, ok
}
