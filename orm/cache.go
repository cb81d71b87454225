package orm

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// NarrativeCache stores generated report narratives keyed by a digest of
// the prompt inputs.
type NarrativeCache struct {
	Key       string `gorm:"primaryKey;size:64"`
	Model     string `gorm:"size:128"`
	Narrative string
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"index"`
}

// NarrativeKey derives a cache key from the model name and prompt parts.
func NarrativeKey(model string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(model))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(strings.TrimSpace(p)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// GetCacheEntry retrieves a valid cache entry. A miss returns
// gorm.ErrRecordNotFound.
func GetCacheEntry(db *gorm.DB, key string, now time.Time) (*NarrativeCache, error) {
	var entry NarrativeCache
	err := db.Where("key = ? AND expires_at > ?", key, now).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SetCacheEntry upserts a cache entry
func SetCacheEntry(db *gorm.DB, key, model, narrative string, ttl time.Duration, now time.Time) error {
	entry := NarrativeCache{
		Key:       key,
		Model:     model,
		Narrative: narrative,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	return db.Save(&entry).Error
}

// CleanupCache removes expired entries
func CleanupCache(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Where("expires_at <= ?", now).Delete(&NarrativeCache{})
	return res.RowsAffected, res.Error
}

// IsMiss reports whether err means the key was absent or expired.
func IsMiss(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
