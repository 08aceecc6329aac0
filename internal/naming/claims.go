package naming

import "sync"

// Claims tracks which source file owns each destination path within one run,
// so two sources that resolve to the same name never race for it. All
// methods are goroutine-safe.
type Claims struct {
	mu     sync.Mutex
	owners map[string]string // destination path → source path that owns it
}

// NewClaims creates a ready-to-use claim table.
func NewClaims() *Claims {
	return &Claims{owners: make(map[string]string)}
}

// Claim records source as the owner of dest. When another source already
// owns dest, that owner is returned with ok set to false.
func (c *Claims) Claim(source, dest string) (owner string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, exists := c.owners[dest]
	if !exists || current == source {
		c.owners[dest] = source
		return source, true
	}
	return current, false
}

// Release drops the claim on dest when source owns it.
func (c *Claims) Release(source, dest string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owners[dest] == source {
		delete(c.owners, dest)
	}
}
