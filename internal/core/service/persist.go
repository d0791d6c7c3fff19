package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tymelesstyre/storefront/internal/core/ports"
)

func saveJSON(ctx context.Context, store ports.KeyValueStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// loadJSON decodes key into v. found is false when the key is not set.
func loadJSON(ctx context.Context, store ports.KeyValueStore, key string, v any) (found bool, err error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}
