package utils

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

func NewGCSClient(ctx context.Context) (*storage.Client, string, error) {
	GCSBucket := os.Getenv("GCS_BUCKET")
	credentialsPath := os.Getenv("CREDENTIALS_FILE_LOCATION")
	wd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	client, err := storage.NewClient(ctx, option.WithAuthCredentialsFile(option.ServiceAccount, filepath.Join(wd, credentialsPath)))

	if err != nil {
		return nil, "", err
	}
	return client, GCSBucket, err
}

var allowedAvatarExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UploadAvatarToGCS stores a profile picture under a unique object name and
// returns its public URL.
func UploadAvatarToGCS(
	ctx context.Context,
	client *storage.Client,
	bucketName string,
	roleName string,
	identityID string,
	fileHeader *multipart.FileHeader,
) (string, error) {

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedAvatarExt[ext] {
		return "", fmt.Errorf("file type not allowed (allowed: jpg, jpeg, png, webp)")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	timestamp := time.Now().UTC().Unix()
	random := uuid.New().String()

	objectName := fmt.Sprintf(
		"avatars/%s/%s/%d-%s%s",
		roleName,
		identityID,
		timestamp,
		random,
		ext,
	)

	obj := client.Bucket(bucketName).Object(objectName)
	writer := obj.NewWriter(ctx)

	ct := fileHeader.Header.Get("Content-Type")
	if ct == "" {
		ct = mime.TypeByExtension(ext)
		if ct == "" {
			ct = "application/octet-stream"
		}
	}
	writer.ContentType = ct
	writer.CacheControl = "no-cache"

	if _, err := io.Copy(writer, file); err != nil {
		_ = writer.Close()
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, objectName), nil
}

func ObjectNameFromGCSPublicURL(bucket string, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}

	host := strings.ToLower(u.Host)
	path := strings.TrimPrefix(u.Path, "/")

	// style 1: storage.googleapis.com/<bucket>/<object>
	if host == "storage.googleapis.com" {
		prefix := bucket + "/"
		if !strings.HasPrefix(path, prefix) {
			return "", fmt.Errorf("url bucket mismatch")
		}
		return strings.TrimPrefix(path, prefix), nil
	}

	// style 2: <bucket>.storage.googleapis.com/<object>
	if host == strings.ToLower(bucket)+".storage.googleapis.com" {
		if path == "" {
			return "", fmt.Errorf("missing object path")
		}
		return path, nil
	}

	return "", fmt.Errorf("not a gcs public url")
}

func DeleteGCSObjects(ctx context.Context, client *storage.Client, bucket string, objectNames []string) error {
	var firstErr error

	for _, obj := range objectNames {
		if obj == "" {
			continue
		}
		err := client.Bucket(bucket).Object(obj).Delete(ctx)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("delete %s: %w", obj, err)
		}
	}

	return firstErr
}
