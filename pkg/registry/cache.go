package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/PrivateRookie/psql/pkg/sqltoken"
	"github.com/PrivateRookie/psql/pkg/template"
)

const defaultCacheSize = 256

// ProgramCache memoizes ad-hoc template compilation, keyed by dialect
// and source hash. Registered queries compile once at registration
// and never hit the cache; this exists for the preview path where the
// same SQL tends to arrive repeatedly while a plan is being authored.
type ProgramCache struct {
	lru *lru.Cache[string, *template.Program]
}

func NewProgramCache(size int) *ProgramCache {
	c, err := lru.New[string, *template.Program](size)
	if err != nil {
		panic(err) // size is a positive constant
	}
	return &ProgramCache{lru: c}
}

// Get returns a compiled program for the source, building and caching
// it on a miss. Build failures are not cached.
func (c *ProgramCache) Get(dialect sqltoken.Dialect, src string) (*template.Program, error) {
	key := cacheKey(dialect, src)
	if prog, ok := c.lru.Get(key); ok {
		return prog, nil
	}
	prog, err := template.Build(dialect, src)
	if err != nil {
		return nil, err
	}
	c.lru.Add(key, prog)
	return prog, nil
}

// Len reports the number of cached programs.
func (c *ProgramCache) Len() int { return c.lru.Len() }

func cacheKey(dialect sqltoken.Dialect, src string) string {
	sum := sha256.Sum256([]byte(src))
	return fmt.Sprintf("%d:%s", dialect, hex.EncodeToString(sum[:]))
}
