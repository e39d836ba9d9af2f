package history

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

const localIDPrefix = "live-"

// IDGenerator synthesizes ids for live entries the server sent without one.
type IDGenerator struct {
	node *snowflake.Node
}

// NewIDGenerator creates a generator for the given snowflake node (0-1023).
func NewIDGenerator(nodeID int64) (*IDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &IDGenerator{node: node}, nil
}

// Next returns a process-unique, time-ordered local id.
func (g *IDGenerator) Next() string {
	return localIDPrefix + g.node.Generate().String()
}
