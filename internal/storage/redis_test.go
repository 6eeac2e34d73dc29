package storage

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"Yui-Editor/studio/internal/config"
	"Yui-Editor/studio/internal/interfaces"
)

// Set YUI_TEST_REDIS_ADDR=host:port to run against a real server
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("YUI_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("YUI_TEST_REDIS_ADDR not set")
	}
	host, rawPort, ok := strings.Cut(addr, ":")
	if !ok {
		t.Fatalf("YUI_TEST_REDIS_ADDR must be host:port, got %q", addr)
	}
	port, err := strconv.Atoi(rawPort)
	if err != nil {
		t.Fatalf("bad port in YUI_TEST_REDIS_ADDR: %v", err)
	}

	n := 0
	newStore := func(t *testing.T) interfaces.StoryStore {
		n++
		s, err := NewRedisStore(config.RedisConfig{
			Host:      host,
			Port:      port,
			PoolSize:  4,
			KeyPrefix: fmt.Sprintf("yui-test-%d-%d", time.Now().UnixNano(), n),
		})
		if err != nil {
			t.Fatalf("NewRedisStore: %v", err)
		}
		t.Cleanup(func() {
			ctx := context.Background()
			keys, _ := s.GetClient().Keys(ctx, s.prefix+":*").Result()
			if len(keys) > 0 {
				s.GetClient().Del(ctx, keys...)
			}
			s.Close()
		})
		return s
	}

	runStoreContract(t, newStore)
	t.Run("ConcurrentAdds", func(t *testing.T) {
		runConcurrentAddContract(t, newStore(t))
	})
}
