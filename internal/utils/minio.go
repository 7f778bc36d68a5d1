package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"detectdemo/internal/config"
)

func NewMinioClient(conf config.S3Config) (*minio.Client, error) {
	region := conf.Region
	if region == "" {
		region = "us-east-1"
	}
	cli, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKeyID, conf.SecretAccessKey, ""),
		Secure: conf.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client failed: %w", err)
	}
	return cli, nil
}

// EnsureBucket creates bucket when it does not exist yet.
func EnsureBucket(ctx context.Context, minioCli *minio.Client, bucket, region string) error {
	exists, err := minioCli.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s failed: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := minioCli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("make bucket %s failed: %w", bucket, err)
	}
	return nil
}

// ContentType guesses the object content type from the file extension.
func ContentType(path string) string {
	switch strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".") {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "pdf":
		return "application/pdf"
	case "json":
		return "application/json"
	case "mp4":
		return "video/mp4"
	case "avi":
		return "video/avi"
	case "mov":
		return "video/quicktime"
	}
	return "application/octet-stream"
}

func UploadFileToMinio(ctx context.Context, minioCli *minio.Client, bucket, localPath, minioPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open local file failed: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return fmt.Errorf("get file info failed: %w", err)
	}
	return putObject(ctx, minioCli, bucket, minioPath, file, fileInfo.Size())
}

func UploadBytesToMinio(ctx context.Context, minioCli *minio.Client, bucket string, data []byte, minioPath string) error {
	return putObject(ctx, minioCli, bucket, minioPath, bytes.NewReader(data), int64(len(data)))
}

func putObject(ctx context.Context, minioCli *minio.Client, bucket, minioPath string, r io.Reader, size int64) error {
	_, err := minioCli.PutObject(
		ctx,
		bucket,
		ObjectName(minioPath),
		r,
		size,
		minio.PutObjectOptions{
			ContentType: ContentType(minioPath),
		},
	)
	if err != nil {
		return fmt.Errorf("put object to minio failed: %w", err)
	}
	return nil
}

// ObjectName drops the leading slash of a storage path.
func ObjectName(minioPath string) string {
	return strings.TrimPrefix(minioPath, "/")
}
