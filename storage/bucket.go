package storage

import (
	"net/url"
	"strconv"
	"strings"

	"jewelrydam/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type StorageType uint8

const (
	StorageTypeFile StorageType = 0
	StorageTypeS3   StorageType = 1
)

func (t StorageType) String() string {
	if t == StorageTypeS3 {
		return config.StorageS3
	}
	return config.StorageFile
}

// Bucket describes where blobs live
type Bucket struct {
	Name          string
	StorageType   StorageType
	Path          string // Path on a drive or a prefix in a S3 bucket
	Endpoint      string // e.g. http://localhost:9000, empty for AWS
	Region        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

func BucketFromConfig(cfg *config.Config) *Bucket {
	b := &Bucket{
		Name:          cfg.MinioBucket,
		Path:          cfg.StorageDir,
		Region:        cfg.MinioRegion,
		AccessKey:     cfg.MinioAccessKey,
		SecretKey:     cfg.MinioSecretKey,
		PublicBaseURL: cfg.PublicBaseURL,
	}
	if cfg.StorageType == config.StorageFile {
		b.StorageType = StorageTypeFile
		return b
	}
	b.StorageType = StorageTypeS3
	b.Path = ""
	scheme := "http"
	if cfg.MinioUseSSL {
		scheme = "https"
	}
	b.Endpoint = scheme + "://" + cfg.MinioEndpoint + ":" + strconv.Itoa(cfg.MinioPort)
	return b
}

func (b *Bucket) CreateSVC() *s3.S3 {
	awsConfig := &aws.Config{
		Region:           aws.String(b.Region),
		Credentials:      credentials.NewStaticCredentials(b.AccessKey, b.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true), // MinIO
	}
	if b.Endpoint != "" {
		awsConfig.Endpoint = aws.String(b.Endpoint)
		awsConfig.DisableSSL = aws.Bool(strings.HasPrefix(b.Endpoint, "http://"))
	}
	sess := session.Must(session.NewSession(awsConfig))
	return s3.New(sess)
}

// GetRemotePath prepends the optional key prefix
func (b *Bucket) GetRemotePath(path string) string {
	if b.Path == "" {
		return path
	}
	return strings.Trim(b.Path, "/") + "/" + path
}

// URL builds the public URL of a blob
func (b *Bucket) URL(path string) string {
	segments := strings.Split(path, "/")
	for i := range segments {
		segments[i] = url.PathEscape(segments[i])
	}
	return strings.TrimRight(b.PublicBaseURL, "/") + "/" + strings.Join(segments, "/")
}
