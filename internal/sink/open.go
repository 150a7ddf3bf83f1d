package sink

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nucleus/sharepoint-publisher/internal/config"
	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
	"github.com/nucleus/sharepoint-publisher/internal/logging"
)

// Open builds the downstream sink selected by cfg. The stream kind has no
// downstream sink and returns nil. The returned close function is never nil.
func Open(ctx context.Context, cfg config.SinkConfig, logger *logging.Logger) (endpoint.Sink, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Kind {
	case config.SinkStream, "":
		return nil, noop, nil

	case config.SinkNATS:
		nc, err := ConnectNATS(cfg.NATS.URL)
		if err != nil {
			return nil, noop, err
		}
		logger.Info(ctx, "nats sink connected",
			zap.String("url", cfg.NATS.URL),
			zap.String("subject_prefix", cfg.NATS.SubjectPrefix))
		s := NewNATSSink(nc, cfg.NATS.SubjectPrefix)
		return s, s.Close, nil

	case config.SinkObject:
		var store ObjectStore
		if cfg.Object.LocalRoot != "" {
			store = NewLocalStore(cfg.Object.LocalRoot)
		} else {
			s3, err := NewS3Client(S3Config{
				EndpointURL:     cfg.Object.EndpointURL,
				Region:          cfg.Object.Region,
				UseSSL:          cfg.Object.UseSSL,
				AccessKeyID:     cfg.Object.AccessKeyID,
				SecretAccessKey: cfg.Object.SecretAccessKey,
			})
			if err != nil {
				return nil, noop, err
			}
			store = s3
		}
		if err := store.Ping(ctx); err != nil {
			return nil, noop, err
		}
		logger.Info(ctx, "object sink ready",
			zap.String("bucket", cfg.Object.Bucket),
			zap.String("format", cfg.Object.Format))
		return NewObjectSink(store, ObjectSinkConfig{
			Bucket:     cfg.Object.Bucket,
			BasePrefix: cfg.Object.BasePrefix,
			Format:     cfg.Object.Format,
		}), noop, nil

	case config.SinkPostgres:
		pool, err := ConnectPostgres(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, noop, err
		}
		logger.Info(ctx, "postgres sink connected", zap.String("table", cfg.Postgres.Table))
		return NewPostgresSink(pool, cfg.Postgres.Table), func() error {
			pool.Close()
			return nil
		}, nil

	default:
		return nil, noop, fmt.Errorf("unknown sink kind %q", cfg.Kind)
	}
}
