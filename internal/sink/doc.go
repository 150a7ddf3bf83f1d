// Package sink provides destinations for published data points.
//
// Structure:
//
//	memory.go    - In-process sink, used by tests and previews
//	nats.go      - One NATS message per data point
//	object.go    - Parquet or gzip JSONL objects per run
//	store.go     - ObjectStore backends (local disk, MinIO/S3)
//	postgres.go  - JSONB event rows through pgx
//	multi.go     - Ordered fan-out
//	open.go      - Construction from service configuration
package sink
