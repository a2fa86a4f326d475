// Package draftkey derives draft-store keys and page identifiers.
//
// A page that already has a ledger-assigned identifier always maps to the
// same storage key, no matter how many times it is opened. A page that does
// not yet exist on the ledger gets a freshly generated local identifier
// carrying the "local-" prefix; the caller is expected to update its own
// addressable location (e.g. the editor URL) so that reopening derives the
// same key again.
package draftkey

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// LocalPrefix distinguishes generated identifiers from ledger ones.
	LocalPrefix = "local-"

	storagePrefix = "draft-"
)

// Key addresses one page's draft slot in the draft store.
type Key struct {
	// Storage is the draft-store key, "draft-{owner}-{pageID}".
	Storage string
	// PageID is the ledger-assigned or locally generated page identifier.
	PageID string
	// IsLocal reports whether PageID was generated locally and is not yet
	// known to the ledger.
	IsLocal bool
	// DefaultSlug seeds the slug field for pages that have none yet.
	DefaultSlug string
}

// Derive computes the storage key for an existing page identifier.
// Pure: same inputs always yield the same key.
func Derive(ownerID, pageID string) Key {
	return Key{
		Storage:     storagePrefix + ownerID + "-" + pageID,
		PageID:      pageID,
		IsLocal:     IsLocalID(pageID),
		DefaultSlug: strings.TrimPrefix(pageID, LocalPrefix),
	}
}

// NewLocal generates a fresh local identifier for a page with no ledger
// identifier yet and derives its storage key.
func NewLocal(ownerID string) Key {
	return Derive(ownerID, LocalPrefix+uuid.NewString())
}

// IsLocalID reports whether id carries the local-identifier prefix.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalPrefix)
}

// StoragePrefix returns the common prefix of every draft key belonging to
// owner, for enumerate-by-prefix scans.
func StoragePrefix(ownerID string) string {
	return storagePrefix + ownerID + "-"
}

// PageIDFromStorage recovers the page identifier from a storage key produced
// by Derive for the given owner. Returns "" when the key does not belong to
// the owner.
func PageIDFromStorage(ownerID, storageKey string) string {
	prefix := StoragePrefix(ownerID)
	if !strings.HasPrefix(storageKey, prefix) {
		return ""
	}
	return strings.TrimPrefix(storageKey, prefix)
}
