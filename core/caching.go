package core

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/priorityx/priorityx/internal/contract"
	"github.com/priorityx/priorityx/schema"
)

// currentCacheVersion defines the version of the cache payload layout.
const currentCacheVersion = 1

// cacheTTL bounds how long a cached movement run stays valid.
const cacheTTL = 7 * 24 * time.Hour

// movementCacheEntry is the JSON payload stored per signature.
type movementCacheEntry struct {
	Records []schema.MovementRecord `json:"records"`
	Meta    schema.RunMeta          `json:"meta"`
}

// cachedTrackMovement wraps TrackMovement with a persistent cache keyed by
// the run signature. A nil or unavailable store falls back to direct
// computation.
func cachedTrackMovement(ctx context.Context, cfg *contract.Config, events []schema.Event, opts TrackOptions, provider contract.ScoreProvider, mgr contract.CacheManager) ([]schema.MovementRecord, *schema.RunMeta, error) {
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetMovementStore()
	}
	key := Signature(cfg, events)
	if store == nil {
		records, meta, err := TrackMovement(ctx, events, opts, provider)
		if meta != nil {
			meta.Signature = key
		}
		return records, meta, err
	}

	// Check for cache hit
	if entry := checkCacheHit(store, key); entry != nil {
		return entry.Records, &entry.Meta, nil
	}

	// Cache miss: compute and store
	records, meta, err := TrackMovement(ctx, events, opts, provider)
	if err != nil {
		return nil, meta, err
	}
	if meta != nil {
		meta.Signature = key
	}
	if data, err := json.Marshal(movementCacheEntry{Records: records, Meta: *meta}); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to store movement run in cache", err)
		}
	}
	return records, meta, nil
}

// checkCacheHit attempts to retrieve and validate a cached run.
func checkCacheHit(store contract.CacheStore, key string) *movementCacheEntry {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version == currentCacheVersion {
		entryTimestamp := time.Unix(ts, 0)
		if time.Since(entryTimestamp) <= cacheTTL {
			var entry movementCacheEntry
			if err := json.Unmarshal(data, &entry); err == nil {
				return &entry // Cache hit
			}
		}
	}

	return nil // Cache miss (stale or version mismatch)
}

// Signature derives an order-independent digest of the parameters and raw
// events feeding a movement run. Permuting the input rows yields the same
// signature; changing any parameter or any event changes it.
func Signature(cfg *contract.Config, events []schema.Event) string {
	params := fmt.Sprintf("%s:%t:%t:%d:%g:%g:%d:%d:%d:%s:%s:%s:%d",
		cfg.Granularity,
		cfg.Cumulative,
		cfg.RiskIncreasing,
		cfg.MinObservations,
		cfg.MinTotalCount,
		cfg.MinDelta,
		cfg.DeclineWindow,
		cfg.MinDate.Unix(),
		cfg.MaxDate.Unix(),
		cfg.XEffect,
		cfg.YEffect,
		cfg.Family,
		cfg.Seed,
	)

	// Sorting the per-event digests before the final hash makes the
	// combination order-independent while preserving multiplicity, so
	// duplicate rows still count and distinct datasets cannot cancel
	// each other out.
	digests := make([][sha256.Size]byte, len(events))
	for i := range events {
		digests[i] = hashEvent(&events[i])
	}
	sort.Slice(digests, func(i, j int) bool {
		return bytes.Compare(digests[i][:], digests[j][:]) < 0
	})

	final := sha256.New()
	final.Write([]byte(params))
	for i := range digests {
		final.Write(digests[i][:])
	}
	binary.Write(final, binary.LittleEndian, uint64(len(events)))
	return fmt.Sprintf("%x", final.Sum(nil))
}

// hashEvent digests one event with its attributes in sorted-key order.
func hashEvent(ev *schema.Event) [sha256.Size]byte {
	h := sha256.New()
	fmt.Fprintf(h, "%s:%d:%g", ev.Entity, ev.Timestamp.UnixNano(), ev.Weight)

	attrKeys := make([]string, 0, len(ev.Attrs))
	for k := range ev.Attrs {
		attrKeys = append(attrKeys, k)
	}
	sort.Strings(attrKeys)
	for _, k := range attrKeys {
		fmt.Fprintf(h, ":%s=%s", k, ev.Attrs[k])
	}

	valueKeys := make([]string, 0, len(ev.Values))
	for k := range ev.Values {
		valueKeys = append(valueKeys, k)
	}
	sort.Strings(valueKeys)
	for _, k := range valueKeys {
		fmt.Fprintf(h, ":%s=%g", k, ev.Values[k])
	}

	var out [sha256.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}
