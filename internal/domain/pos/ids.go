package pos

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces unique identifiers with a readable prefix.
type IDGenerator interface {
	NewID(prefix string) string
}

// UUIDGenerator appends a random UUID to the prefix.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// SequenceGenerator appends an increasing counter to the prefix. It is
// deterministic and meant for tests.
type SequenceGenerator struct {
	n atomic.Int64
}

// NewID implements IDGenerator.
func (g *SequenceGenerator) NewID(prefix string) string {
	return prefix + "-" + strconv.FormatInt(g.n.Add(1), 10)
}
