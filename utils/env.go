package utils

import "os"

var (
	INPUT_DIR     = GetEnvOrDefault("INPUT_DIR", ".")
	INPUT_PATTERN = GetEnvOrDefault("INPUT_PATTERN", "felix5*_off.txt")
	OUTPUT_FILE   = GetEnvOrDefault("OUTPUT_FILE", "full-apa.txt")
	OUTPUT_FORMAT = GetEnvOrDefault("OUTPUT_FORMAT", "text")
	MAX_ROWS      = GetEnvOrDefaultInt("MAX_ROWS", 500_000)

	CRDB_DSN = os.Getenv("CRDB_DSN")

	AWS_DEFAULT_REGION = GetEnvOrDefault("AWS_DEFAULT_REGION", "us-east-1")

	S3_BUCKET_NAME = os.Getenv("S3_BUCKET_NAME")
	S3_ENDPOINT    = os.Getenv("S3_ENDPOINT")
	S3_PREFIX      = os.Getenv("S3_PREFIX")

	HTTP_PORT = GetEnvOrDefault("HTTP_PORT", "8080")
)
