// Package idgen 提供基于 snowflake 的业务 ID 生成器
package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator 业务 ID 生成器
type Generator struct {
	node *snowflake.Node
}

// New 创建生成器，nodeID 取值范围 0-1023
func New(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &Generator{node: node}, nil
}

// NextID 生成下一个 ID
func (g *Generator) NextID() int64 {
	return g.node.Generate().Int64()
}

// NextString 生成字符串形式的 ID
func (g *Generator) NextString() string {
	return g.node.Generate().String()
}
