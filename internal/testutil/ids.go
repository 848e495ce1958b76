package testutil

import (
	"fmt"
	"sync/atomic"
)

// SequenceIDs generates "<prefix>-0001", "<prefix>-0002", ...
//
// The same test with a fresh SequenceIDs produces byte-identical request
// logs. Safe for concurrent use.
type SequenceIDs struct {
	prefix string
	n      atomic.Int64
}

// NewSequenceIDs creates a generator. An empty prefix means "test".
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "test"
	}
	return &SequenceIDs{prefix: prefix}
}

// NewID returns the next ID.
func (g *SequenceIDs) NewID() string {
	return fmt.Sprintf("%s-%04d", g.prefix, g.n.Add(1))
}
