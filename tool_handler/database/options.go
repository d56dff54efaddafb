package database

import (
	"context"

	toolhandler "github.com/w-h-a/rio/tool_handler"
	"github.com/w-h-a/rio/warehouse"
)

type warehouseKey struct{}

func WithWarehouse(w warehouse.Warehouse) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, warehouseKey{}, w)
	}
}

func WarehouseFrom(ctx context.Context) (warehouse.Warehouse, bool) {
	w, ok := ctx.Value(warehouseKey{}).(warehouse.Warehouse)
	return w, ok
}

type descriptionKey struct{}

func WithDescription(description string) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, descriptionKey{}, description)
	}
}

func DescriptionFrom(ctx context.Context) (string, bool) {
	description, ok := ctx.Value(descriptionKey{}).(string)
	return description, ok
}
