// Package assets tracks who owns each listed asset. Ownership only changes
// through a Transferor, which NewRegistry hands out exactly once.
//
// An asset is held by at most one auction at a time. The listing is taken
// when an auction opens and released when the asset changes hands.
package assets

import (
	"fmt"
	"sync"
	"time"

	"auction-escrow/internal/auctionerrors"
	model "auction-escrow/internal/models"
	"auction-escrow/utils"
)

// Registry is a concurrency-safe in-memory asset directory
type Registry struct {
	mu       sync.RWMutex
	assets   map[string]model.Asset // key: assetID -> value: asset
	listings map[string]string      // key: assetID -> value: auctionID holding it
}

// Transferor is the only handle able to move asset ownership
type Transferor struct {
	registry *Registry
}

// NewRegistry creates an empty registry and its ownership transfer handle
func NewRegistry() (*Registry, *Transferor) {
	r := &Registry{
		assets:   make(map[string]model.Asset),
		listings: make(map[string]string),
	}
	return r, &Transferor{registry: r}
}

// Create records a new asset owned by owner
func (r *Registry) Create(owner model.Identity, name, category, description string, metadata map[string]string) (model.Asset, error) {
	if owner == "" || name == "" {
		return model.Asset{}, fmt.Errorf("create asset: %w - missing owner or name", auctionerrors.ErrInvalidAuction)
	}

	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}

	asset := model.Asset{
		AssetID:     utils.GenerateID(),
		Owner:       owner,
		Name:        name,
		Category:    category,
		Description: description,
		Metadata:    meta,
		CreatedAt:   time.Now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[asset.AssetID] = asset

	return asset, nil
}

// Get returns the asset with the given id
func (r *Registry) Get(assetID string) (model.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	asset, ok := r.assets[assetID]
	if !ok {
		return model.Asset{}, fmt.Errorf("get asset %s: %w", assetID, auctionerrors.ErrAssetNotFound)
	}
	return asset, nil
}

// OwnerOf returns the current owner of an asset
func (r *Registry) OwnerOf(assetID string) (model.Identity, error) {
	asset, err := r.Get(assetID)
	if err != nil {
		return "", err
	}
	return asset.Owner, nil
}

// ListedIn returns the auction currently holding the asset
func (r *Registry) ListedIn(assetID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auctionID, ok := r.listings[assetID]
	return auctionID, ok
}

// List hands the asset to auctionID. prev is the listing the caller observed
// through ListedIn (empty for none); if the listing changed since, List fails
// with ErrAssetListed. owner must still own the asset.
func (r *Registry) List(assetID string, owner model.Identity, prev, auctionID string) error {
	if auctionID == "" {
		return fmt.Errorf("list asset %s: %w - empty auction ID", assetID, auctionerrors.ErrInvalidAuction)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	asset, ok := r.assets[assetID]
	if !ok {
		return fmt.Errorf("list asset %s: %w", assetID, auctionerrors.ErrAssetNotFound)
	}
	if asset.Owner != owner {
		return fmt.Errorf("list asset %s by %s: %w", assetID, owner, auctionerrors.ErrNotOwner)
	}
	if r.listings[assetID] != prev {
		return fmt.Errorf("list asset %s: %w - held by auction %s", assetID, auctionerrors.ErrAssetListed, r.listings[assetID])
	}

	r.listings[assetID] = auctionID
	return nil
}

// Unlist releases the asset if auctionID still holds it
func (r *Registry) Unlist(assetID, auctionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.listings[assetID] == auctionID {
		delete(r.listings, assetID)
	}
}

// Transfer moves ownership from one identity to another. It fails with no
// effect if from is no longer the owner. A successful transfer ends the
// asset's listing.
func (t *Transferor) Transfer(assetID string, from, to model.Identity) error {
	if to == "" {
		return fmt.Errorf("transfer asset %s: %w - empty recipient", assetID, auctionerrors.ErrInvalidAuction)
	}

	r := t.registry
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, ok := r.assets[assetID]
	if !ok {
		return fmt.Errorf("transfer asset %s: %w", assetID, auctionerrors.ErrAssetNotFound)
	}
	if asset.Owner != from {
		return fmt.Errorf("transfer asset %s from %s: %w", assetID, from, auctionerrors.ErrNotOwner)
	}

	asset.Owner = to
	r.assets[assetID] = asset
	delete(r.listings, assetID)
	return nil
}
