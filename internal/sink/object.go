package sink

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	writerfile "github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

// Object formats.
const (
	FormatParquet = "parquet"
	FormatJSONL   = "jsonl"
)

var (
	_ endpoint.ProvisioningSink = (*ObjectSink)(nil)
	_ endpoint.FlushingSink     = (*ObjectSink)(nil)
)

// ObjectSinkConfig places the objects of a run.
type ObjectSinkConfig struct {
	Bucket     string
	BasePrefix string
	Format     string
}

// ObjectSink buffers one run and writes it as a single object on Flush:
//
//	<prefix>/<entity>/dt=<date>/run=<run id>/part-000000.parquet
//
// Parquet columns follow the provisioned shape. Without a shape, or with the
// jsonl format, Envelopes are written as gzip JSON lines.
//
// A run that aborts before Flush keeps its buffer; the next Provision writes
// that prefix under the aborted run's ID before starting the new run.
type ObjectSink struct {
	store ObjectStore
	cfg   ObjectSinkConfig
	now   func() time.Time

	mu      sync.Mutex
	runID   string
	shape   *endpoint.ShapeDefinition
	pending []Envelope
	part    int
	objects []string
}

// NewObjectSink creates a sink writing to store.
func NewObjectSink(store ObjectStore, cfg ObjectSinkConfig) *ObjectSink {
	if cfg.Format == "" {
		cfg.Format = FormatParquet
	}
	return &ObjectSink{store: store, cfg: cfg, now: time.Now}
}

// Provision starts a run and makes sure the bucket exists.
func (s *ObjectSink) Provision(ctx context.Context, runID string, shape endpoint.ShapeDefinition) error {
	if err := s.store.EnsureBucket(ctx, s.cfg.Bucket); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flushLocked(ctx); err != nil {
		return fmt.Errorf("flush aborted run %s: %w", s.runID, err)
	}
	s.runID = runID
	s.shape = &shape
	s.pending = nil
	s.part = 0
	return nil
}

// Send buffers the batch until Flush.
func (s *ObjectSink) Send(ctx context.Context, batch []endpoint.DataPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	now := s.now()
	for _, dp := range batch {
		s.pending = append(s.pending, newEnvelope(s.runID, dp, now))
	}
	return nil
}

// Flush writes the buffered data points, one object per entity.
func (s *ObjectSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

func (s *ObjectSink) flushLocked(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}

	byEntity := make(map[string][]Envelope)
	var order []string
	for _, env := range s.pending {
		if _, ok := byEntity[env.Entity]; !ok {
			order = append(order, env.Entity)
		}
		byEntity[env.Entity] = append(byEntity[env.Entity], env)
	}

	loadDate := s.now().UTC().Format("2006-01-02")
	for _, entity := range order {
		envs := byEntity[entity]

		var (
			data []byte
			ext  string
			err  error
		)
		if s.cfg.Format == FormatParquet && s.shape != nil && s.shape.Name == entity && len(s.shape.Properties) > 0 {
			data, err = encodeParquet(*s.shape, envs)
			ext = "parquet"
		} else {
			data, err = encodeJSONL(envs)
			ext = "jsonl.gz"
		}
		if err != nil {
			return wrapError(CodeWriteFailed, false, fmt.Errorf("encode %s: %w", entity, err))
		}

		key := joinPath(
			s.cfg.BasePrefix,
			entitySlug(entity),
			"dt="+loadDate,
			"run="+s.runID,
			fmt.Sprintf("part-%06d.%s", s.part, ext),
		)
		if err := s.store.PutObject(ctx, s.cfg.Bucket, key, data); err != nil {
			return err
		}
		s.objects = append(s.objects, key)
		s.part++
	}

	s.pending = nil
	return nil
}

// Objects returns the keys written so far.
func (s *ObjectSink) Objects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.objects...)
}

func encodeJSONL(envs []Envelope) ([]byte, error) {
	buf := &bytes.Buffer{}
	gz := gzip.NewWriter(buf)
	enc := json.NewEncoder(gz)
	for _, env := range envs {
		if err := enc.Encode(env); err != nil {
			_ = gz.Close()
			return nil, err
		}
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// =============================================================================
// PARQUET
// =============================================================================

const (
	columnRunID  = "run_id"
	columnAction = "action"
)

type parquetColumn struct {
	name     string
	property string
	typ      endpoint.PropertyType
}

func encodeParquet(shape endpoint.ShapeDefinition, envs []Envelope) ([]byte, error) {
	columns := parquetColumns(shape)

	buf := &bytes.Buffer{}
	pfw := writerfile.NewWriterFile(buf)
	pw, err := writer.NewJSONWriter(buildParquetSchema(columns), pfw, 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, env := range envs {
		row, err := json.Marshal(projectParquetRow(columns, env))
		if err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
		if err := pw.Write(string(row)); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := pfw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var nonColumnChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// parquetColumns derives unique column names from the shape's properties.
func parquetColumns(shape endpoint.ShapeDefinition) []parquetColumn {
	used := map[string]bool{columnRunID: true, columnAction: true}
	columns := []parquetColumn{
		{name: columnRunID, typ: endpoint.PropertyTypeString},
		{name: columnAction, typ: endpoint.PropertyTypeString},
	}
	for _, prop := range shape.Properties {
		base := nonColumnChars.ReplaceAllString(prop.Name, "_")
		if base == "" || (base[0] >= '0' && base[0] <= '9') {
			base = "c_" + base
		}
		name := base
		for i := 1; used[name]; i++ {
			name = base + "_" + strconv.Itoa(i)
		}
		used[name] = true
		columns = append(columns, parquetColumn{name: name, property: prop.Name, typ: prop.Type})
	}
	return columns
}

func buildParquetSchema(columns []parquetColumn) string {
	fields := make([]map[string]string, 0, len(columns))
	for _, c := range columns {
		fields = append(fields, map[string]string{
			"Tag": fmt.Sprintf("name=%s, %s, repetitiontype=OPTIONAL", c.name, parquetType(c.typ)),
		})
	}
	out := map[string]any{
		"Tag":    "name=parquet_go_root, repetitiontype=REQUIRED",
		"Fields": fields,
	}
	b, _ := json.Marshal(out)
	return string(b)
}

func parquetType(t endpoint.PropertyType) string {
	switch t {
	case endpoint.PropertyTypeBoolean:
		return "type=BOOLEAN"
	case endpoint.PropertyTypeNumber:
		return "type=DOUBLE"
	default:
		return "type=BYTE_ARRAY, convertedtype=UTF8"
	}
}

func projectParquetRow(columns []parquetColumn, env Envelope) map[string]any {
	row := make(map[string]any, len(columns))
	for _, c := range columns {
		switch c.name {
		case columnRunID:
			row[c.name] = env.RunID
		case columnAction:
			row[c.name] = string(env.Action)
		default:
			row[c.name] = coerce(env.Data[c.property], c.typ)
		}
	}
	return row
}

// coerce fits a native value into the column type, or nil when it cannot.
func coerce(v any, t endpoint.PropertyType) any {
	if v == nil {
		return nil
	}
	switch t {
	case endpoint.PropertyTypeBoolean:
		switch b := v.(type) {
		case bool:
			return b
		case string:
			if parsed, err := strconv.ParseBool(b); err == nil {
				return parsed
			}
		}
		return nil
	case endpoint.PropertyTypeNumber:
		switch n := v.(type) {
		case float64:
			return n
		case float32:
			return float64(n)
		case int:
			return float64(n)
		case int64:
			return float64(n)
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f
			}
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f
			}
		}
		return nil
	default:
		if s, ok := v.(string); ok {
			return s
		}
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

func entitySlug(entity string) string {
	if entity == "" {
		return "entity"
	}
	return strings.ReplaceAll(sanitizePath(entity), " ", "_")
}

func joinPath(parts ...string) string {
	return strings.TrimPrefix(path.Join(parts...), "/")
}
