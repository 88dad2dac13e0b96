package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	defaultReplyTTL      = 10 * time.Minute
	replyCleanupInterval = 15 * time.Minute
)

// ReplyCache keeps recent raw model replies keyed by prompt digest so that
// identical predictions within the TTL skip the model round-trip entirely.
type ReplyCache struct {
	cache *gocache.Cache
}

func NewReplyCache() *ReplyCache {
	return &ReplyCache{
		cache: gocache.New(defaultReplyTTL, replyCleanupInterval),
	}
}

func promptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

func (r *ReplyCache) Get(prompt string) (string, bool) {
	v, found := r.cache.Get(promptKey(prompt))
	if !found {
		return "", false
	}
	reply, ok := v.(string)
	return reply, ok
}

func (r *ReplyCache) Set(prompt, reply string) {
	r.cache.Set(promptKey(prompt), reply, gocache.DefaultExpiration)
}
