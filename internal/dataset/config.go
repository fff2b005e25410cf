package dataset

import (
	"os"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/pkg/database"
)

// Source kinds accepted in DATA_SOURCE.
const (
	SourceCSV       = "csv"
	SourceS3        = "s3"
	SourceWarehouse = "warehouse"
	SourceBigQuery  = "bigquery"
)

type Config struct {
	Source string
	Dir    string

	S3Bucket   string
	S3Prefix   string
	S3Region   string
	S3Endpoint string

	Warehouse       database.Config
	WarehouseSchema string

	BigQueryProject string
	BigQueryDataset string
}

// ConfigFromEnv reads the table source settings from environment variables.
func ConfigFromEnv() Config {
	return Config{
		Source:          envOrDefault("DATA_SOURCE", SourceCSV),
		Dir:             envOrDefault("DATA_DIR", "seeds"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Prefix:        envOrDefault("S3_PREFIX", "seeds/"),
		S3Region:        envOrDefault("S3_REGION", "us-east-1"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		Warehouse:       database.ConfigFromEnv(),
		WarehouseSchema: os.Getenv("WAREHOUSE_SCHEMA"),
		BigQueryProject: os.Getenv("BIGQUERY_PROJECT"),
		BigQueryDataset: envOrDefault("BIGQUERY_DATASET", "dbt"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
