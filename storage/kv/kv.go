// Package kv 定义打卡数据使用的键值存储抽象，各后端（内存、SQLite、Redis、PostgreSQL）实现同一接口
package kv

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound 键不存在
var ErrNotFound = errors.New("kv: key not found")

// Store 同步键值存储。值为 JSON 编码后的字节
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys 返回以 prefix 开头的全部键
	Keys(ctx context.Context, prefix string) ([]string, error)
}

const separator = ":"

// Namespaced 每个设备拥有独立的键空间
type Namespaced struct {
	inner  Store
	prefix string
}

// Namespace 返回以 ns 为前缀的视图，ns 为空时直接返回原 Store
func Namespace(inner Store, ns string) Store {
	if ns == "" {
		return inner
	}
	return &Namespaced{inner: inner, prefix: ns + separator}
}

func (n *Namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *Namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *Namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}

// Keys 返回去掉命名空间前缀后的键
func (n *Namespaced) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := n.inner.Keys(ctx, n.prefix+prefix)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, n.prefix))
	}
	return out, nil
}
