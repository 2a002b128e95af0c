package audit

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
	"lukechampine.com/blake3"

	"creatorpay/core/events"
	"creatorpay/core/types"
)

// ErrChainBroken reports an audit row whose digest does not follow from its
// predecessor.
var ErrChainBroken = errors.New("audit: hash chain broken")

// Entry is one committed settlement event in the audit log.
type Entry struct {
	Sequence   int64             `json:"sequence"`
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
	Timestamp  int64             `json:"timestamp"`
	RecordedAt time.Time         `json:"recordedAt"`
	PrevDigest string            `json:"prevDigest"`
	Digest     string            `json:"digest"`
}

// Store appends committed events to a SQLite table. Each row carries a
// blake3 digest chained to the previous row so tampering is detectable.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	head   [32]byte
	logger *slog.Logger
	now    func() time.Time
}

// DriverName is the database/sql driver the audit log opens. gorm's glebarez
// dialector registers under the same name; binaries using both share it.
const DriverName = "sqlite"

// Open creates or opens the audit database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, err
	}
	// A single writer keeps the chain order identical to the commit order.
	db.SetMaxOpenConns(1)
	store := &Store{db: db, logger: slog.Default(), now: time.Now}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) init() error {
	const schema = `CREATE TABLE IF NOT EXISTS events (
            sequence INTEGER PRIMARY KEY AUTOINCREMENT,
            id TEXT NOT NULL UNIQUE,
            type TEXT NOT NULL,
            attributes TEXT NOT NULL,
            event_ts INTEGER NOT NULL,
            recorded_at TIMESTAMP NOT NULL,
            prev_digest TEXT NOT NULL,
            digest TEXT NOT NULL
        );`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS events_type ON events(type)`); err != nil {
		return err
	}
	var digest string
	err := s.db.QueryRow(`SELECT digest FROM events ORDER BY sequence DESC LIMIT 1`).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	return decodeDigest(digest, &s.head)
}

// SetLogger overrides the logger used when Emit fails to persist an event.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Emit implements events.Emitter. Events without a wire form are ignored.
func (s *Store) Emit(evt events.Event) {
	wire := events.ToWire(evt)
	if wire == nil {
		return
	}
	if _, err := s.Append(context.Background(), wire); err != nil {
		s.logger.Error("audit append failed", slog.String("type", wire.Type), slog.Any("error", err))
	}
}

// Append stores evt at the head of the chain.
func (s *Store) Append(ctx context.Context, evt *types.Event) (*Entry, error) {
	if evt == nil {
		return nil, fmt.Errorf("audit: nil event")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &Entry{
		ID:         uuid.NewString(),
		Type:       evt.Type,
		Attributes: evt.Clone().Attributes,
		Timestamp:  eventTimestamp(evt.Attributes),
		RecordedAt: s.now().UTC(),
		PrevDigest: hex.EncodeToString(s.head[:]),
	}
	digest := chainDigest(s.head, entry)
	entry.Digest = hex.EncodeToString(digest[:])

	attrs, err := json.Marshal(entry.Attributes)
	if err != nil {
		return nil, err
	}
	const stmt = `INSERT INTO events(id, type, attributes, event_ts, recorded_at, prev_digest, digest) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, stmt, entry.ID, entry.Type, string(attrs), entry.Timestamp, entry.RecordedAt, entry.PrevDigest, entry.Digest)
	if err != nil {
		return nil, err
	}
	if entry.Sequence, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	s.head = digest
	return entry, nil
}

// List returns up to limit entries with a sequence greater than after.
func (s *Store) List(ctx context.Context, after int64, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `SELECT sequence, id, type, attributes, event_ts, recorded_at, prev_digest, digest FROM events WHERE sequence > ? ORDER BY sequence LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			entry Entry
			attrs string
		)
		if err := rows.Scan(&entry.Sequence, &entry.ID, &entry.Type, &attrs, &entry.Timestamp, &entry.RecordedAt, &entry.PrevDigest, &entry.Digest); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(attrs), &entry.Attributes); err != nil {
			return nil, fmt.Errorf("audit: entry %d attributes: %w", entry.Sequence, err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Verify walks the whole log and recomputes every digest.
func (s *Store) Verify(ctx context.Context) (int64, error) {
	var (
		prev  [32]byte
		after int64
		count int64
	)
	for {
		batch, err := s.List(ctx, after, 500)
		if err != nil {
			return count, err
		}
		if len(batch) == 0 {
			return count, nil
		}
		for i := range batch {
			entry := &batch[i]
			if entry.PrevDigest != hex.EncodeToString(prev[:]) {
				return count, fmt.Errorf("%w: entry %d does not link to its predecessor", ErrChainBroken, entry.Sequence)
			}
			digest := chainDigest(prev, entry)
			if entry.Digest != hex.EncodeToString(digest[:]) {
				return count, fmt.Errorf("%w: entry %d digest mismatch", ErrChainBroken, entry.Sequence)
			}
			prev = digest
			after = entry.Sequence
			count++
		}
	}
}

func chainDigest(prev [32]byte, entry *Entry) [32]byte {
	buf := new(bytes.Buffer)
	buf.Write(prev[:])
	writeDelimited(buf, []byte(entry.ID))
	writeDelimited(buf, []byte(entry.Type))
	keys := make([]string, 0, len(entry.Attributes))
	for k := range entry.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeDelimited(buf, []byte(k))
		writeDelimited(buf, []byte(entry.Attributes[k]))
	}
	return blake3.Sum256(buf.Bytes())
}

func writeDelimited(buf *bytes.Buffer, data []byte) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	buf.Write(length[:])
	buf.Write(data)
}

func eventTimestamp(attrs map[string]string) int64 {
	ts, err := strconv.ParseInt(attrs["timestamp"], 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

func decodeDigest(raw string, out *[32]byte) error {
	b, err := hex.DecodeString(raw)
	if err != nil || len(b) != len(out) {
		return fmt.Errorf("audit: malformed digest %q", raw)
	}
	copy(out[:], b)
	return nil
}
