package kernel_model

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gradkit/kernel"
	"github.com/YuminosukeSato/gradkit/pkg/log"
)

// gramCache holds K(X, X) for the last X it was asked about. A call with a
// different X (by value, not identity) recomputes it.
type gramCache struct {
	mu      sync.Mutex
	samples *mat.Dense
	gram    *mat.Dense
	hits    int
	misses  int
}

func (c *gramCache) get(k kernel.Kernel, X mat.Matrix, stable bool, logger log.Logger) (*mat.Dense, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gram != nil && mat.Equal(c.samples, X) {
		c.hits++
		logger.Debug("gram cache hit", log.CacheEventKey, "hit")
		return c.gram, nil
	}

	if c.gram != nil {
		logger.Debug("sample matrix changed, recomputing gram matrix", log.CacheEventKey, "invalidate")
		c.gram = nil
	}

	gram := kernel.GramMatrix
	if stable {
		gram = kernel.GramMatrixStable
	}
	K, err := gram(k, X, X)
	if err != nil {
		return nil, err
	}

	c.misses++
	c.samples = mat.DenseCopyOf(X)
	c.gram = K
	d, m := X.Dims()
	logger.Debug("gram cache miss",
		log.CacheEventKey, "miss",
		log.OperationKey, log.OperationGram,
		log.FeaturesKey, d,
		log.SamplesKey, m,
	)
	return K, nil
}

func (c *gramCache) invalidate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	had := c.gram != nil
	c.gram = nil
	return had
}

func (c *gramCache) stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
