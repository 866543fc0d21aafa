package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// defaultStatConcurrency 并发查询上限
const defaultStatConcurrency = 4

// StatAll 并发查询多个对象的信息
//
// 不存在的对象不会出现在结果里；任一查询出现其他错误时整体失败。
func StatAll(ctx context.Context, s Storage, keys []string, limit int) (map[string]*FileInfo, error) {
	if limit <= 0 {
		limit = defaultStatConcurrency
	}

	var (
		mu  sync.Mutex
		out = make(map[string]*FileInfo, len(keys))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, key := range keys {
		if key == "" {
			continue
		}
		g.Go(func() error {
			info, err := s.GetFileInfo(ctx, key)
			if errors.Is(err, ErrNotExist) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("stat %s: %w", key, err)
			}
			mu.Lock()
			out[key] = info
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
