package replication

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSConfig selects the server and KV bucket shared by the user's devices.
type NATSConfig struct {
	URL    string
	Bucket string
	// Name identifies this connection on the server.
	Name   string
	Logger *slog.Logger
}

// NATSStore is a Store backed by a JetStream key-value bucket. Each value is
// wrapped in a CBOR envelope carrying the writer's timestamp.
type NATSStore struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	kv     jetstream.KeyValue
	bucket string
	logger *slog.Logger
}

// NewNATSStore connects to the server and opens, or creates, the bucket.
func NewNATSStore(ctx context.Context, cfg NATSConfig) (*NATSStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("nats store: bucket is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts := []nats.Option{nats.MaxReconnects(-1)}
	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	s := &NATSStore{conn: conn, js: js, bucket: cfg.Bucket, logger: logger}
	if err := s.initBucket(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	logger.Info("replication store connected", "url", cfg.URL, "bucket", cfg.Bucket)
	return s, nil
}

func (s *NATSStore) initBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	kv, err := s.js.KeyValue(ctx, s.bucket)
	if err == nil {
		s.kv = kv
		return nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return fmt.Errorf("opening KV bucket %s: %w", s.bucket, err)
	}

	kv, err = s.js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      s.bucket,
		Description: "focussync shared session snapshots",
		History:     1,
	})
	if err != nil {
		return fmt.Errorf("creating KV bucket %s: %w", s.bucket, err)
	}
	s.kv = kv
	s.logger.Info("created KV bucket", "bucket", s.bucket)
	return nil
}

func (s *NATSStore) Get(ctx context.Context, key string) (Entry, error) {
	kve, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("getting %s: %w", key, err)
	}
	return entryFromKV(kve)
}

// Set writes the value unconditionally. Ordering between devices is resolved
// by readers comparing envelope timestamps.
func (s *NATSStore) Set(ctx context.Context, key string, value []byte, ts time.Time) error {
	data, err := encodeEnvelope(value, ts)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if _, err := s.kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("putting %s: %w", key, err)
	}
	return nil
}

func (s *NATSStore) Watch(ctx context.Context, keys ...string) (<-chan Entry, error) {
	if len(keys) == 0 {
		keys = []string{jetstream.AllKeys}
	}
	w, err := s.kv.WatchFiltered(ctx, keys, jetstream.UpdatesOnly(), jetstream.IgnoreDeletes())
	if err != nil {
		return nil, fmt.Errorf("watching %v: %w", keys, err)
	}

	out := make(chan Entry)
	go func() {
		defer close(out)
		defer func() {
			if err := w.Stop(); err != nil {
				s.logger.Debug("stopping KV watcher", "error", err)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case kve, ok := <-w.Updates():
				if !ok {
					return
				}
				if kve == nil || kve.Operation() != jetstream.KeyValuePut {
					continue
				}
				e, err := entryFromKV(kve)
				if err != nil {
					s.logger.Warn("dropping undecodable KV entry", "key", kve.Key(), "error", err)
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *NATSStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}

func entryFromKV(kve jetstream.KeyValueEntry) (Entry, error) {
	env, err := decodeEnvelope(kve.Value())
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", kve.Key(), err)
	}
	ts := env.UpdatedAt
	if ts.IsZero() {
		ts = kve.Created()
	}
	return Entry{Key: kve.Key(), Value: env.Value, UpdatedAt: ts}, nil
}
