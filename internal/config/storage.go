package config

// StorageConfig configures the S3 bucket used for product media.  When
// AccessKeyID is empty the default AWS credential chain is used.
type StorageConfig struct {
	Enabled         bool
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	CDNDomain       string // optional CloudFront domain for public URLs
	Endpoint        string // optional S3-compatible endpoint (minio, localstack)
}

func LoadStorageConfig() StorageConfig {
	return StorageConfig{
		Enabled:         envBool("S3_ENABLED", true),
		Bucket:          envStr("S3_BUCKET_NAME", ""),
		Region:          envStr("AWS_REGION", "us-east-1"),
		AccessKeyID:     envStr("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: envStr("AWS_SECRET_ACCESS_KEY", ""),
		CDNDomain:       envStr("CLOUDFRONT_DOMAIN", ""),
		Endpoint:        envStr("S3_ENDPOINT", ""),
	}
}
