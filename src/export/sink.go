package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/seventv/SpriteProcessor/src/aws"
	"github.com/seventv/SpriteProcessor/src/global"
	"github.com/seventv/SpriteProcessor/src/utils"
)

// Sink stores an exported file and returns where it ended up.
type Sink interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// LocalSink writes into Dir.
type LocalSink struct {
	Dir string
}

// Save writes to a temp file next to the target and renames it into place,
// so readers never see a partial file. The temp file is always removed.
func (s LocalSink) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return "", fmt.Errorf("mkdir failed: %s", err.Error())
	}

	tmp, err := os.CreateTemp(s.Dir, ".export-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", err
	}

	if err := tmp.Close(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.Dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}

	return dst, nil
}

// S3Sink uploads into Bucket under KeyFolder.
type S3Sink struct {
	S3        global.AwsS3
	Bucket    string
	KeyFolder string
}

func (s S3Sink) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := path.Join(s.KeyFolder, name)

	if err := s.S3.UploadFile(
		ctx,
		s.Bucket,
		key,
		bytes.NewReader(data),
		utils.StringPointer(contentType),
		aws.AclPublicRead,
		aws.DefaultCacheControl,
	); err != nil {
		return "", err
	}

	return fmt.Sprintf("s3://%s/%s", s.Bucket, key), nil
}
