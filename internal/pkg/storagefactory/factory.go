package storagefactory

import (
	"context"
	"errors"
	"fmt"

	"reel/internal/config"
	"reel/internal/pkg/storage"
	"reel/internal/pkg/storage/local"
	"reel/internal/pkg/storage/oss"
)

// NewStorage 根据配置创建存储实例，类型为空时按本地存储处理
func NewStorage(ctx context.Context, cfg *config.StorageConfig) (storage.Storage, error) {
	if cfg == nil {
		return nil, errors.New("storage config is required")
	}

	switch cfg.Type {
	case "local", "":
		if cfg.Local == nil {
			return nil, errors.New("local storage config is required")
		}
		return local.NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL)
	case "oss":
		if cfg.OSS == nil {
			return nil, errors.New("OSS storage config is required")
		}
		if cfg.OSS.Endpoint == "" || cfg.OSS.Bucket == "" {
			return nil, errors.New("OSS endpoint and bucket are required")
		}
		return oss.NewOSSStorage(
			cfg.OSS.Endpoint,
			cfg.OSS.Bucket,
			cfg.OSS.AccessKeyID,
			cfg.OSS.AccessKeySecret,
		)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
