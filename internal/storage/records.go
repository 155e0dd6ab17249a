package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// getRecord loads and decodes the record at key. A missing key yields (nil, 0, nil).
func getRecord[T any](ctx context.Context, kv KV, key string) (*T, int64, error) {
	raw, version, found, err := kv.Get(ctx, key)
	if err != nil {
		return nil, 0, err
	}
	if !found {
		return nil, 0, nil
	}
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", key, err)
	}
	return &rec, version, nil
}

// updateRecord runs the optimistic read-modify-write loop for key. fn sees a
// fresh copy of the current record on each attempt and must not keep it.
func updateRecord[T any](ctx context.Context, kv KV, key string, fn func(*T) (*T, error)) (*T, error) {
	backoff := newConflictBackoff()
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		if attempt > 0 {
			if err := backoff.wait(ctx); err != nil {
				return nil, err
			}
		}
		current, version, err := getRecord[T](ctx, kv, key)
		if err != nil {
			return nil, err
		}
		next, err := fn(current)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, fmt.Errorf("update %s: update function returned no record", key)
		}
		data, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		err = kv.Put(ctx, key, data, version)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return next, nil
	}
	return nil, fmt.Errorf("update %s: gave up after %d attempts: %w", key, maxUpdateAttempts, ErrVersionConflict)
}

// listRecords decodes every record under prefix.
func listRecords[T any](ctx context.Context, kv KV, prefix string) ([]*T, error) {
	entries, err := kv.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	records := make([]*T, 0, len(entries))
	for _, e := range entries {
		var rec T
		if err := json.Unmarshal(e.Value, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Key, err)
		}
		records = append(records, &rec)
	}
	return records, nil
}
