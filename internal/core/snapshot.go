package core

import (
	"context"
	"strings"

	"github.com/nboxhq/nbox/internal/nbox"
)

// Reader is the read side of the remote store the sync engine depends on
type Reader interface {
	GetEntry(ctx context.Context, key string) (*nbox.Entry, error)
	GetEntriesByPrefix(ctx context.Context, prefix string) ([]nbox.Entry, error)
}

// Writer is the write side of the remote store
type Writer interface {
	PutEntries(ctx context.Context, entries []nbox.Entry) error
}

// Snapshot maps entry paths to their current remote state, scoped to one
// prefix query. It is built once per invocation and never mutated during
// planning.
type Snapshot map[PathKey]nbox.Entry

// FetchPrefix retrieves the remote state for all entries under prefix.
// An empty snapshot is a valid result, not an error; fetch failures abort
// planning entirely so no plan is ever computed from partial state.
func FetchPrefix(ctx context.Context, r Reader, prefix PathKey) (Snapshot, error) {
	entries, err := r.GetEntriesByPrefix(ctx, prefix.String())
	if err != nil {
		return nil, err
	}

	snap := make(Snapshot, len(entries))
	for _, e := range entries {
		key := normalizeRemoteKey(e.Key)
		// The server matches raw string prefixes; enforce segment-wise
		// scoping here so /global/example never captures /global/example2.
		if !key.UnderPrefix(prefix) {
			continue
		}
		e.Key = key.String()
		snap[key] = e
	}

	return snap, nil
}

// FetchOne retrieves the remote state for a single key.
// Returns nil (not an error) when the entry does not exist.
func FetchOne(ctx context.Context, r Reader, key PathKey) (*nbox.Entry, error) {
	entry, err := r.GetEntry(ctx, key.String())
	if err != nil || entry == nil {
		return nil, err
	}

	entry.Key = normalizeRemoteKey(entry.Key).String()
	return entry, nil
}

// normalizeRemoteKey restores the leading slash the wire format drops
func normalizeRemoteKey(key string) PathKey {
	if !strings.HasPrefix(key, "/") {
		key = "/" + key
	}
	return PathKey(key)
}
