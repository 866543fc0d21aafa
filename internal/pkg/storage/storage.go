package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotExist 对象不存在
var ErrNotExist = errors.New("storage: object does not exist")

// Storage 音频与字幕素材存储接口
type Storage interface {
	// Upload 上传对象，返回可访问的 URL
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Download 下载对象，不存在时返回 ErrNotExist
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists 检查对象是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// GetFileInfo 获取对象信息，不存在时返回 ErrNotExist
	GetFileInfo(ctx context.Context, key string) (*FileInfo, error)

	// GetStorageType 获取存储类型
	GetStorageType() string
}

// FileInfo 文件信息
type FileInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// StorageType 存储类型
type StorageType string

const (
	StorageTypeLocal StorageType = "local" // 本地文件系统
	StorageTypeOSS   StorageType = "oss"   // 阿里云OSS
)
