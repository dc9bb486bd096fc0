package service

import (
	"bytes"
	"context"
	"fmt"

	"exam_tutor_backend/internal/config"
	"exam_tutor_backend/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ArchiveService 把每次冻结的草稿文件原文存进对象存储，便于审计与回溯
type ArchiveService struct {
	client *minio.Client
	bucket string
}

// NewArchiveService 未启用或连接失败时返回 nil，调用方按可选依赖处理
func NewArchiveService(cfg config.ArchiveConfig) *ArchiveService {
	if !cfg.Enabled {
		return nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		logger.Log.Warn("对象存储初始化失败，快照归档关闭", zap.Error(err))
		return nil
	}
	return &ArchiveService{client: client, bucket: cfg.Bucket}
}

// UploadSnapshot 上传冻结时刻的草稿文件原文
func (s *ArchiveService) UploadSnapshot(ctx context.Context, versionID string, content []byte) error {
	objectName := fmt.Sprintf("question_bank/%s.json", versionID)
	_, err := s.client.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return err
	}
	logger.Log.Info("版本快照已归档",
		zap.String("version_id", versionID),
		zap.String("object", objectName))
	return nil
}
