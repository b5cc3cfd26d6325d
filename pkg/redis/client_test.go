package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/callpay-backend/pkg/config"
)

func TestSetNXAndDeleteIfValue(t *testing.T) {
	ctx := context.Background()
	store := newMockCmdable()
	client := &Client{store: store}

	ok, err := client.SetNX(ctx, "k", "owner-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, "k", "owner-2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second setnx must not overwrite")

	deleted, err := client.DeleteIfValue(ctx, "k", "owner-2")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, "owner-1", store.data["k"])

	deleted, err = client.DeleteIfValue(ctx, "k", "owner-1")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NotContains(t, store.data, "k")
	assert.Equal(t, 2, store.evalSha, "script runs by sha before falling back to EVAL")
	require.NoError(t, client.Ping(ctx))
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	_, err := client.SetNX(context.Background(), "k", "v", time.Second)
	assert.Error(t, err)
	_, err = client.DeleteIfValue(context.Background(), "k", "v")
	assert.Error(t, err)
	assert.Error(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
}

func TestLockKey(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "callpay:lock:import", client.LockKey("import"))
	assert.Equal(t, "callpay:lock", client.LockKey(""))
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:secret@cache:6380/2", PoolSize: 7})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 3, DialTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, time.Second, opts.DialTimeout)
}

type noScriptError struct{}

func (noScriptError) Error() string { return "NOSCRIPT No matching script. Please use EVAL." }
func (noScriptError) RedisError()   {}

// mockCmdable evaluates the compare-and-delete script in Go. The first
// EVALSHA reports NOSCRIPT so the EVAL fallback is exercised too.
type mockCmdable struct {
	data    map[string]string
	loaded  bool
	evalSha int
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) compareAndDelete(keys []string, args []any) *redis.Cmd {
	if len(keys) != 1 || len(args) != 1 {
		return redis.NewCmdResult(nil, fmt.Errorf("unexpected script call"))
	}
	if v, ok := m.data[keys[0]]; ok && v == fmt.Sprint(args[0]) {
		delete(m.data, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func (m *mockCmdable) Eval(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	m.loaded = true
	return m.compareAndDelete(keys, args)
}

func (m *mockCmdable) EvalSha(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	m.evalSha++
	if !m.loaded {
		return redis.NewCmdResult(nil, noScriptError{})
	}
	return m.compareAndDelete(keys, args)
}

func (m *mockCmdable) EvalRO(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	return m.Eval(ctx, script, keys, args...)
}

func (m *mockCmdable) EvalShaRO(ctx context.Context, sha string, keys []string, args ...any) *redis.Cmd {
	return m.EvalSha(ctx, sha, keys, args...)
}

func (m *mockCmdable) ScriptExists(_ context.Context, hashes ...string) *redis.BoolSliceCmd {
	out := make([]bool, len(hashes))
	for i := range out {
		out[i] = m.loaded
	}
	return redis.NewBoolSliceResult(out, nil)
}

func (m *mockCmdable) ScriptLoad(context.Context, string) *redis.StringCmd {
	m.loaded = true
	return redis.NewStringResult("sha", nil)
}
