package dialogue

import (
	"sync"
	"sync/atomic"
)

// Gate is the already-submitted set. It caches which users have a confirmed
// submission; the record store stays authoritative and rebuilds it on start.
type Gate struct {
	ids sync.Map
	n   atomic.Int64
}

// Add marks userID and reports whether it was newly added.
func (g *Gate) Add(userID string) bool {
	if _, loaded := g.ids.LoadOrStore(userID, struct{}{}); loaded {
		return false
	}
	g.n.Add(1)
	return true
}

// Remove clears userID and reports whether it was present.
func (g *Gate) Remove(userID string) bool {
	if _, loaded := g.ids.LoadAndDelete(userID); !loaded {
		return false
	}
	g.n.Add(-1)
	return true
}

func (g *Gate) Has(userID string) bool {
	_, ok := g.ids.Load(userID)
	return ok
}

func (g *Gate) Len() int {
	return int(g.n.Load())
}
