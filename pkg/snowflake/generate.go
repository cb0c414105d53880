package snowflake

import (
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	errInvalidMachineID    = errors.New("invalid snowflake machine id")
	errInvalidDataCenterID = errors.New("invalid snowflake datacenter id")
)

// Generator 分布式 ID 生成器，实例之间通过 machineID/dataCenterID 区分
type Generator struct {
	node *snowflake.Node
}

// New datacenterID 和 machineID 都是 0~31
func New(machineID, dataCenterID int64) (*Generator, error) {
	if machineID < 0 || machineID > 31 {
		return nil, errInvalidMachineID
	}
	if dataCenterID < 0 || dataCenterID > 31 {
		return nil, errInvalidDataCenterID
	}

	node, err := snowflake.NewNode((dataCenterID << 5) | machineID)
	if err != nil {
		return nil, err
	}
	return &Generator{node: node}, nil
}

func (g *Generator) NextID() int64 {
	return g.node.Generate().Int64()
}

// NextString 生成字符串形式的 ID，便于 JSON 传输
func (g *Generator) NextString() string {
	return g.node.Generate().String()
}
