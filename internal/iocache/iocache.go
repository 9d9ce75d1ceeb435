// Package iocache persists movement runs across invocations.
package iocache

import (
	"sync"

	"github.com/priorityx/priorityx/internal/contract"
)

// CacheStoreManager manages the movement CacheStore instance.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	movement     contract.CacheStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetMovementStore returns the movement CacheStore.
func (mgr *CacheStoreManager) GetMovementStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.movement
}
