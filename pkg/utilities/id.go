package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewKSUID generates a new globally unique, sortable KSUID string. Used for
// user record IDs.
func NewKSUID() string {
	return ksuid.New().String()
}

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewSnowflakeID generates a snowflake ID string. The node ID comes from the
// SNOWFLAKE_NODE env var, defaulting to 1. If node initialization fails it
// falls back to a KSUID so callers always get a unique ID. Used for contact
// record IDs.
func NewSnowflakeID() string {
	nodeOnce.Do(func() {
		nodeID := int64(1)
		if env := os.Getenv("SNOWFLAKE_NODE"); env != "" {
			if n, err := strconv.ParseInt(env, 10, 64); err == nil {
				nodeID = n
			}
		}
		node, _ = snowflake.NewNode(nodeID)
	})
	if node == nil {
		return NewKSUID()
	}
	return node.Generate().String()
}
