package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ServiceAccount is the credential file the admin CLI reads.
type ServiceAccount struct {
	ProjectID   string `json:"project_id"`
	DatabaseURL string `json:"database_url"`
}

func LoadServiceAccount(path string) (ServiceAccount, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if path == "" {
		return ServiceAccount{}, fmt.Errorf("missing credentials: pass --credentials or set GOOGLE_APPLICATION_CREDENTIALS")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return ServiceAccount{}, fmt.Errorf("read credentials %s: %w", path, err)
	}
	var sa ServiceAccount
	if err := json.Unmarshal(b, &sa); err != nil {
		return ServiceAccount{}, fmt.Errorf("parse credentials %s: %w", path, err)
	}
	if sa.DatabaseURL == "" {
		return ServiceAccount{}, fmt.Errorf("credentials %s: missing database_url", path)
	}
	return sa, nil
}

// BackupConfig enables S3 snapshot upload when Bucket is set.
type BackupConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

func LoadBackup() BackupConfig {
	return BackupConfig{
		Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
		Region:          getEnv("S3_REGION", "us-east-1"),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		UsePathStyle:    getBool("S3_USE_PATH_STYLE", false),
	}
}
