package core

import (
	"context"
	"errors"
)

// ErrStoreNotFound 是存储层的“键不存在”哨兵错误。
// 各 Store 实现必须用它表达 miss，调用方据此区分 miss 与真实故障。
var ErrStoreNotFound = errors.New("store: key not found")

// Store 是存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//
// 使用场景：
//   - 产物装载：训练产物以不透明 blob 形式存放（文件目录之外的后端）
//   - 结果缓存：序列化后的推荐结果，按 TTL 失效
type Store interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Get 读取单个 key 的值；key 不存在时返回 ErrStoreNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value；ttl 为可选的过期秒数
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	// Delete 删除单个 key
	Delete(ctx context.Context, key string) error

	// BatchGet 批量读取（装载一套产物时减少网络往返），miss 的 key 不出现在结果中
	BatchGet(ctx context.Context, keys []string) (map[string][]byte, error)

	// Close 关闭连接/释放资源
	Close() error
}
