package memory

import (
	"context"
	"errors"
	"sync"

	"HoursGuard/storage/kv"
)

// ErrInjected 注入的故障
var ErrInjected = errors.New("memory: injected failure")

const (
	OpGet = "get"
	OpSet = "set"
)

type opKey struct {
	op  string
	key string
}

// Flaky 包装一个 Store，按键注入读写失败、读到损坏数据或静默丢弃写入，并统计调用次数
type Flaky struct {
	inner kv.Store

	mu       sync.Mutex
	failures map[opKey]int
	corrupt  map[string]int
	dropped  map[string]int
	calls    map[opKey]int
}

func NewFlaky(inner kv.Store) *Flaky {
	return &Flaky{
		inner:    inner,
		failures: make(map[opKey]int),
		corrupt:  make(map[string]int),
		dropped:  make(map[string]int),
		calls:    make(map[opKey]int),
	}
}

// Fail 接下来 n 次对 key 的 op 操作返回 ErrInjected
func (f *Flaky) Fail(op, key string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[opKey{op, key}] = n
}

// Corrupt 接下来 n 次读取 key 返回非法 JSON
func (f *Flaky) Corrupt(key string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.corrupt[key] = n
}

// Drop 接下来 n 次写入 key 返回成功但不落盘
func (f *Flaky) Drop(key string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropped[key] = n
}

// Calls 返回对 key 执行 op 的次数（含失败）
func (f *Flaky) Calls(op, key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[opKey{op, key}]
}

// Reset 清空注入的故障和计数
func (f *Flaky) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.failures)
	clear(f.corrupt)
	clear(f.dropped)
	clear(f.calls)
}

func (f *Flaky) take(m map[opKey]int, k opKey) bool {
	if m[k] > 0 {
		m[k]--
		return true
	}
	return false
}

func (f *Flaky) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	k := opKey{OpGet, key}
	f.calls[k]++
	fail := f.take(f.failures, k)
	corrupt := f.corrupt[key] > 0
	if corrupt {
		f.corrupt[key]--
	}
	f.mu.Unlock()

	if fail {
		return nil, ErrInjected
	}
	if corrupt {
		return []byte(`{corrupted`), nil
	}
	return f.inner.Get(ctx, key)
}

func (f *Flaky) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	k := opKey{OpSet, key}
	f.calls[k]++
	fail := f.take(f.failures, k)
	drop := f.dropped[key] > 0
	if drop {
		f.dropped[key]--
	}
	f.mu.Unlock()

	if fail {
		return ErrInjected
	}
	if drop {
		return nil
	}
	return f.inner.Set(ctx, key, value)
}

func (f *Flaky) Delete(ctx context.Context, key string) error {
	return f.inner.Delete(ctx, key)
}

func (f *Flaky) Keys(ctx context.Context, prefix string) ([]string, error) {
	return f.inner.Keys(ctx, prefix)
}
