package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rushteam/recserve/core"
)

// ErrBlobNotFound 表示命名产物在数据源中不存在。
var ErrBlobNotFound = errors.New("artifact: blob not found")

// BlobSource 是训练产物的读取接口：按名称取回不透明字节。
// 名称采用 '/' 分隔的相对路径（如 "models/als.msgpack"），由离线管线约定。
// 实现必须可并发读。
type BlobSource interface {
	// Name 返回数据源名称（用于日志/错误信息）
	Name() string

	// Read 读取一个命名产物；不存在时返回 ErrBlobNotFound
	Read(ctx context.Context, name string) ([]byte, error)
}

// FileSource 从本地目录读取产物，对应离线管线落盘的 models/ 与 features/。
type FileSource struct {
	Dir string
}

func (s *FileSource) Name() string { return "file:" + s.Dir }

func (s *FileSource) Read(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, filepath.FromSlash(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, name)
	}
	return data, err
}

// StoreSource 从 KV 存储读取产物（生产环境常用 Redis，由发布任务写入）。
// 实际 key 为 {Prefix}{name}。
type StoreSource struct {
	Store  core.Store
	Prefix string
}

func (s *StoreSource) Name() string { return "store:" + s.Store.Name() }

func (s *StoreSource) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := s.Store.Get(ctx, s.Prefix+name)
	if errors.Is(err, core.ErrStoreNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, name)
	}
	return data, err
}

// StaticSource 是内存中的产物集合，用于测试与示例。
type StaticSource struct {
	Blobs map[string][]byte
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Read(_ context.Context, name string) ([]byte, error) {
	data, ok := s.Blobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, name)
	}
	return data, nil
}
