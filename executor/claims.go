package executor

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

type dirKey struct {
	dev uint64
	ino uint64
}

// Claims hands out exclusive ownership of task directories. Two paths that
// resolve to the same directory (through symlinks or bind mounts) share one
// claim, because ownership is keyed by device and inode.
type Claims struct {
	mu   sync.Mutex
	held map[dirKey]chan struct{}
}

// NewClaims creates an empty claim table.
func NewClaims() *Claims {
	return &Claims{held: make(map[dirKey]chan struct{})}
}

// Claim blocks until dir is free or ctx ends. The returned release func is
// safe to call more than once.
func (c *Claims) Claim(ctx context.Context, dir string) (release func(), err error) {
	key, err := identity(dir)
	if err != nil {
		return nil, err
	}
	for {
		c.mu.Lock()
		busy, taken := c.held[key]
		if !taken {
			done := make(chan struct{})
			c.held[key] = done
			c.mu.Unlock()

			var once sync.Once
			return func() {
				once.Do(func() {
					c.mu.Lock()
					delete(c.held, key)
					c.mu.Unlock()
					close(done)
				})
			}, nil
		}
		c.mu.Unlock()

		select {
		case <-busy:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Held returns the number of directories currently claimed.
func (c *Claims) Held() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.held)
}

func identity(dir string) (dirKey, error) {
	var st unix.Stat_t
	if err := unix.Stat(dir, &st); err != nil {
		return dirKey{}, fmt.Errorf("stat %s: %w", dir, err)
	}
	return dirKey{dev: uint64(st.Dev), ino: uint64(st.Ino)}, nil
}
