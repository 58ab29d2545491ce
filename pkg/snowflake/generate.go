package snowflake

import (
	"errors"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// 对外暴露的 ID（用户 public_id、计划 public_id、提醒 task_code）统一从这里取，
// 数据库自增主键不出 API。

var (
	node *snowflake.Node
	once sync.Once

	errBadNodeID      = errors.New("snowflake machine/datacenter id out of range")
	errNotInitialized = errors.New("snowflake generator is not initialized")
)

// Init 用数据中心 ID 和机器 ID 组装节点号，两者取值都在 0~31
func Init(machineID, dataCenterID int64) error {
	var initErr error

	once.Do(func() {
		if machineID < 0 || machineID > 31 || dataCenterID < 0 || dataCenterID > 31 {
			initErr = errBadNodeID
			return
		}

		node, initErr = snowflake.NewNode(dataCenterID<<5 | machineID)
	})

	return initErr
}

// NextID 生成下一个全局唯一 ID
func NextID() (int64, error) {
	if node == nil {
		return 0, errNotInitialized
	}
	return node.Generate().Int64(), nil
}
