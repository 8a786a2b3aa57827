package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	"github.com/devmind-dev/memcore/internal/errors"
)

// SQLiteStore implements Store over a single SQLite database file in
// WAL mode. It is the only writer; readers observe committed snapshots.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed atomic.Bool
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if absent) the database at path. An
// empty path opens an in-memory database, used by tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	var dsn string
	if path == "" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.StorageError("failed to create data directory", err)
		}
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.StorageError("failed to open database", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -65536",
	}
	// Another process opening the same file can hold a transient lock
	// across this loop, so retry rather than fail the whole open on it.
	retryCfg := errors.DefaultRetryConfig()
	retryCfg.MaxRetries = 2
	retryCfg.InitialDelay = 100 * time.Millisecond
	for _, p := range pragmas {
		pragma := p
		if err := errors.Retry(context.Background(), retryCfg, func() error {
			_, err := db.Exec(pragma)
			return err
		}); err != nil {
			_ = db.Close()
			return nil, errors.StorageError("failed to set pragma", err)
		}
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		path TEXT NOT NULL UNIQUE,
		language TEXT NOT NULL DEFAULT '',
		framework TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_projects_path ON projects(path);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		tool_used TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		metadata TEXT NOT NULL DEFAULT '{}'
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_project_status ON sessions(project_id, status);

	CREATE TABLE IF NOT EXISTS contexts (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		content TEXT NOT NULL,
		file_path TEXT NOT NULL DEFAULT '',
		line_start INTEGER,
		line_end INTEGER,
		language TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '',
		quality_score REAL NOT NULL DEFAULT 0,
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		embedding BLOB,
		embedding_text TEXT NOT NULL DEFAULT '',
		embedding_version TEXT NOT NULL DEFAULT '',
		embedding_model TEXT NOT NULL DEFAULT '',
		hit_count INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_contexts_session_created ON contexts(session_id, created_at);

	CREATE TABLE IF NOT EXISTS context_files (
		context_id TEXT NOT NULL REFERENCES contexts(id) ON DELETE CASCADE,
		file_path TEXT NOT NULL,
		change_type TEXT NOT NULL DEFAULT '',
		line_ranges TEXT NOT NULL DEFAULT '[]',
		diff_stats TEXT NOT NULL DEFAULT 'null'
	);
	CREATE INDEX IF NOT EXISTS idx_context_files_context ON context_files(context_id);

	CREATE TABLE IF NOT EXISTS file_index (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		file_path TEXT NOT NULL,
		content TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '',
		indexed_at TEXT NOT NULL,
		modified_time TEXT NOT NULL,
		embedding BLOB,
		metadata TEXT NOT NULL DEFAULT '{}'
	);
	CREATE INDEX IF NOT EXISTS idx_file_index_project ON file_index(project_id);

	CREATE TABLE IF NOT EXISTS relationships (
		from_context_id TEXT NOT NULL REFERENCES contexts(id) ON DELETE CASCADE,
		to_context_id TEXT NOT NULL REFERENCES contexts(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		strength REAL NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_relationships_from ON relationships(from_context_id);

	CREATE TABLE IF NOT EXISTS state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return errors.StorageError("failed to migrate schema", err)
	}
	return nil
}

func (s *SQLiteStore) checkConnected() error {
	if s.closed.Load() {
		return errors.New(errors.ErrCodeStorageOpen, "store is closed", nil)
	}
	return nil
}

func (s *SQLiteStore) IsConnected() bool {
	return !s.closed.Load()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil
	}
	s.closed.Store(true)
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// --- serialization helpers ---

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	if len(buf) == 0 {
		return nil
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}

func encodeTags(tags []string) string {
	return strings.Join(tags, ",")
}

func decodeTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func encodeMetadata(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeMetadata(s string) map[string]any {
	if s == "" {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return map[string]any{}
	}
	return m
}

func clampUnit(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// --- Projects ---

func (s *SQLiteStore) scanProject(row *sql.Row) (*Project, error) {
	p := &Project{}
	var createdAt string
	err := row.Scan(&p.ID, &p.Name, &p.Path, &p.Language, &p.Framework, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.StorageError("failed to scan project", err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return p, nil
}

func (s *SQLiteStore) GetProjectByPath(ctx context.Context, path string) (*Project, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT id, name, path, language, framework, created_at FROM projects WHERE path = ?`, path)
	return s.scanProject(row)
}

func (s *SQLiteStore) GetProjectByID(ctx context.Context, id string) (*Project, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT id, name, path, language, framework, created_at FROM projects WHERE id = ?`, id)
	return s.scanProject(row)
}

func (s *SQLiteStore) GetOrCreateProject(ctx context.Context, name, path, language, framework string) (*Project, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}

	existing, err := s.GetProjectByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	p := &Project{
		ID:        uuid.NewString(),
		Name:      name,
		Path:      path,
		Language:  language,
		Framework: framework,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, path, language, framework, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Path, p.Language, p.Framework, p.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		// Lost a create race against another call resolving the same path.
		if existing, gerr := s.GetProjectByPath(ctx, path); gerr == nil && existing != nil {
			return existing, nil
		}
		return nil, errors.StorageError("failed to create project", err)
	}

	return p, nil
}

func (s *SQLiteStore) ListProjects(ctx context.Context, limit int) ([]*Project, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 1000
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, path, language, framework, created_at FROM projects ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.StorageError("failed to list projects", err)
	}
	defer rows.Close()

	var out []*Project
	for rows.Next() {
		p := &Project{}
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.Path, &p.Language, &p.Framework, &createdAt); err != nil {
			return nil, errors.StorageError("failed to scan project", err)
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteProjects(ctx context.Context, ids []string) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StorageError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	q := fmt.Sprintf("DELETE FROM projects WHERE id IN (%s)", strings.Join(placeholders, ","))
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return errors.StorageError("failed to delete projects", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) EmptyProjects(ctx context.Context) ([]*Project, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.path, p.language, p.framework, p.created_at
		FROM projects p
		WHERE NOT EXISTS (
			SELECT 1 FROM sessions sess
			JOIN contexts c ON c.session_id = sess.id
			WHERE sess.project_id = p.id
		)
	`)
	if err != nil {
		return nil, errors.StorageError("failed to query empty projects", err)
	}
	defer rows.Close()

	var out []*Project
	for rows.Next() {
		p := &Project{}
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.Path, &p.Language, &p.Framework, &createdAt); err != nil {
			return nil, errors.StorageError("failed to scan project", err)
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// --- Sessions ---

func (s *SQLiteStore) scanSession(row interface {
	Scan(dest ...any) error
}) (*Session, error) {
	sess := &Session{}
	var startedAt string
	var endedAt sql.NullString
	var metadata string
	err := row.Scan(&sess.ID, &sess.ProjectID, &sess.Name, &sess.ToolUsed, &sess.Status, &startedAt, &endedAt, &metadata)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.StorageError("failed to scan session", err)
	}
	sess.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	if endedAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, endedAt.String)
		sess.EndedAt = &t
	}
	sess.Metadata = decodeMetadata(metadata)
	return sess, nil
}

const sessionColumns = `id, project_id, name, tool_used, status, started_at, ended_at, metadata`

func (s *SQLiteStore) CreateSession(ctx context.Context, projectID, name, toolUsed string, metadata map[string]any) (*Session, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}

	meta, err := encodeMetadata(metadata)
	if err != nil {
		return nil, errors.InvalidArgument("failed to encode session metadata", err)
	}

	sess := &Session{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Name:      name,
		ToolUsed:  toolUsed,
		Status:    SessionStatusActive,
		StartedAt: time.Now().UTC(),
		Metadata:  metadata,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, project_id, name, tool_used, status, started_at, ended_at, metadata) VALUES (?, ?, ?, ?, ?, ?, NULL, ?)`,
		sess.ID, sess.ProjectID, sess.Name, sess.ToolUsed, sess.Status, sess.StartedAt.Format(time.RFC3339Nano), meta)
	if err != nil {
		return nil, errors.StorageError("failed to create session", err)
	}
	return sess, nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	return s.scanSession(row)
}

// GetMainSession returns the earliest session of the project, reusable
// across ingests, reactivating it if it had ended.
func (s *SQLiteStore) GetMainSession(ctx context.Context, projectID string) (*Session, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE project_id = ? ORDER BY started_at ASC LIMIT 1`, projectID)
	sess, err := s.scanSession(row)
	if err != nil || sess == nil {
		return sess, err
	}
	if sess.Status == SessionStatusEnded {
		return s.ReactivateSession(ctx, sess.ID)
	}
	return sess, nil
}

func (s *SQLiteStore) ReactivateSession(ctx context.Context, id string) (*Session, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	// Keeps the original id: reactivation flips status in place, never
	// creates a new row.
	_, err := s.db.ExecContext(ctx, `UPDATE sessions SET status = ?, ended_at = NULL WHERE id = ?`, SessionStatusActive, id)
	if err != nil {
		return nil, errors.StorageError("failed to reactivate session", err)
	}
	return s.GetSession(ctx, id)
}

func (s *SQLiteStore) EndSession(ctx context.Context, id string) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `UPDATE sessions SET status = ?, ended_at = ? WHERE id = ?`,
		SessionStatusEnded, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return errors.StorageError("failed to end session", err)
	}
	return nil
}

func (s *SQLiteStore) SessionsByProject(ctx context.Context, projectID string) ([]*Session, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE project_id = ? ORDER BY started_at DESC`, projectID)
	if err != nil {
		return nil, errors.StorageError("failed to list sessions", err)
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		sess, err := s.scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// DeleteSession cascades to contexts and context_files via ON DELETE
// CASCADE; a single transaction guarantees the cascade is atomic.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StorageError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return errors.StorageError("failed to delete session", err)
	}
	return tx.Commit()
}

// --- Contexts ---

const contextColumns = `id, session_id, type, content, file_path, line_start, line_end, language, tags, quality_score, metadata, created_at, embedding, embedding_text, embedding_version, embedding_model, hit_count`

func (s *SQLiteStore) scanContext(row interface {
	Scan(dest ...any) error
}) (*Context, error) {
	c := &Context{}
	var lineStart, lineEnd sql.NullInt64
	var tags, createdAt, metadata, embeddingText, embeddingVersion, embeddingModel string
	var embedding []byte
	var hitCount int
	err := row.Scan(&c.ID, &c.SessionID, &c.Type, &c.Content, &c.FilePath, &lineStart, &lineEnd,
		&c.Language, &tags, &c.QualityScore, &metadata, &createdAt, &embedding,
		&embeddingText, &embeddingVersion, &embeddingModel, &hitCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.StorageError("failed to scan context", err)
	}

	if lineStart.Valid {
		v := int(lineStart.Int64)
		c.LineStart = &v
	}
	if lineEnd.Valid {
		v := int(lineEnd.Int64)
		c.LineEnd = &v
	}
	c.Tags = decodeTags(tags)
	c.Metadata = decodeMetadata(metadata)
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	c.Embedding = decodeVector(embedding)
	c.EmbeddingText = embeddingText
	c.EmbeddingVersion = embeddingVersion
	c.EmbeddingModel = embeddingModel
	return c, nil
}

func (s *SQLiteStore) CreateContext(ctx context.Context, c *Context) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.QualityScore = clampUnit(c.QualityScore)

	meta, err := encodeMetadata(c.Metadata)
	if err != nil {
		return errors.InvalidArgument("failed to encode context metadata", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contexts (id, session_id, type, content, file_path, line_start, line_end, language, tags, quality_score, metadata, created_at, embedding, embedding_text, embedding_version, embedding_model, hit_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
	`, c.ID, c.SessionID, c.Type, c.Content, c.FilePath, c.LineStart, c.LineEnd,
		c.Language, encodeTags(c.Tags), c.QualityScore, meta, c.CreatedAt.Format(time.RFC3339Nano),
		encodeVector(c.Embedding), c.EmbeddingText, c.EmbeddingVersion, c.EmbeddingModel)
	if err != nil {
		return errors.StorageError("failed to create context", err)
	}
	return nil
}

func (s *SQLiteStore) GetContextByID(ctx context.Context, id string) (*Context, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+contextColumns+` FROM contexts WHERE id = ?`, id)
	c, err := s.scanContext(row)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.NotFound(errors.ErrCodeContextNotFound, fmt.Sprintf("context %s not found", id))
	}
	return c, nil
}

// UpdateContext applies a partial update. It never touches the
// embedding columns or session_id; a caller must request regeneration
// of the embedding explicitly.
func (s *SQLiteStore) UpdateContext(ctx context.Context, id string, update ContextUpdate) error {
	if err := s.checkConnected(); err != nil {
		return err
	}

	sets := []string{}
	args := []any{}

	if update.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *update.Content)
	}
	if update.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, encodeTags(update.Tags))
	}
	if update.QualityScore != nil {
		sets = append(sets, "quality_score = ?")
		args = append(args, clampUnit(*update.QualityScore))
	}
	if update.Metadata != nil {
		meta, err := encodeMetadata(update.Metadata)
		if err != nil {
			return errors.InvalidArgument("failed to encode context metadata", err)
		}
		sets = append(sets, "metadata = ?")
		args = append(args, meta)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	q := fmt.Sprintf("UPDATE contexts SET %s WHERE id = ?", strings.Join(sets, ", "))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return errors.StorageError("failed to update context", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteContext(ctx context.Context, id string) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StorageError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM contexts WHERE id = ?`, id); err != nil {
		return errors.StorageError("failed to delete context", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) queryContexts(ctx context.Context, query string, args ...any) ([]*Context, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.StorageError("failed to query contexts", err)
	}
	defer rows.Close()

	var out []*Context
	for rows.Next() {
		c, err := s.scanContext(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ContextsBySession(ctx context.Context, sessionID string, limit int) ([]*Context, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	return s.queryContexts(ctx,
		`SELECT `+contextColumns+` FROM contexts WHERE session_id = ? ORDER BY created_at DESC LIMIT ?`,
		sessionID, limit)
}

func (s *SQLiteStore) ContextsByProject(ctx context.Context, projectID string, limit int) ([]*Context, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	return s.queryContexts(ctx, `
		SELECT c.id, c.session_id, c.type, c.content, c.file_path, c.line_start, c.line_end, c.language, c.tags,
		       c.quality_score, c.metadata, c.created_at, c.embedding, c.embedding_text, c.embedding_version, c.embedding_model, c.hit_count
		FROM contexts c
		JOIN sessions sess ON sess.id = c.session_id
		WHERE sess.project_id = ?
		ORDER BY c.created_at DESC
		LIMIT ?
	`, projectID, limit)
}

func (s *SQLiteStore) AllContexts(ctx context.Context, limit int) ([]*Context, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 1000
	}
	return s.queryContexts(ctx, `SELECT `+contextColumns+` FROM contexts ORDER BY created_at DESC LIMIT ?`, limit)
}

// ContextsForVectorSearch returns every context that carries an
// embedding within the given scope. An empty projectID/sessionID
// means "no restriction" on that axis.
func (s *SQLiteStore) ContextsForVectorSearch(ctx context.Context, projectID, sessionID string) ([]*Context, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}

	q := strings.Builder{}
	q.WriteString(`
		SELECT c.id, c.session_id, c.type, c.content, c.file_path, c.line_start, c.line_end, c.language, c.tags,
		       c.quality_score, c.metadata, c.created_at, c.embedding, c.embedding_text, c.embedding_version, c.embedding_model, c.hit_count
		FROM contexts c
		JOIN sessions sess ON sess.id = c.session_id
		WHERE c.embedding IS NOT NULL AND length(c.embedding) > 0
	`)
	var args []any
	if projectID != "" {
		q.WriteString(" AND sess.project_id = ?")
		args = append(args, projectID)
	}
	if sessionID != "" {
		q.WriteString(" AND c.session_id = ?")
		args = append(args, sessionID)
	}
	q.WriteString(" ORDER BY c.created_at DESC")

	return s.queryContexts(ctx, q.String(), args...)
}

func (s *SQLiteStore) ContextsWithoutEmbedding(ctx context.Context, limit int) ([]*Context, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 200
	}
	return s.queryContexts(ctx, `
		SELECT `+contextColumns+` FROM contexts
		WHERE embedding IS NULL OR length(embedding) = 0
		ORDER BY created_at DESC LIMIT ?
	`, limit)
}

func (s *SQLiteStore) UpdateContextEmbedding(ctx context.Context, id string, vec []float32, text, version, model string) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE contexts SET embedding = ?, embedding_text = ?, embedding_version = ?, embedding_model = ? WHERE id = ?`,
		encodeVector(vec), text, version, model, id)
	if err != nil {
		return errors.StorageError("failed to update context embedding", err)
	}
	return nil
}

// SearchKeyword returns contexts whose content, tags, file_path, or
// metadata contain any whitespace-split token of query. This is the
// DAO-level keyword baseline: results are not BM25-ranked, and no
// KeywordIndex is consulted.
func (s *SQLiteStore) SearchKeyword(ctx context.Context, query, projectID string, limit int) ([]*Context, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	q := strings.Builder{}
	q.WriteString(`
		SELECT DISTINCT c.id, c.session_id, c.type, c.content, c.file_path, c.line_start, c.line_end, c.language, c.tags,
		       c.quality_score, c.metadata, c.created_at, c.embedding, c.embedding_text, c.embedding_version, c.embedding_model, c.hit_count
		FROM contexts c
		JOIN sessions sess ON sess.id = c.session_id
		WHERE (`)
	var args []any
	clauses := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		clauses = append(clauses, "(c.content LIKE ? OR c.tags LIKE ? OR c.file_path LIKE ? OR c.metadata LIKE ?)")
		like := "%" + tok + "%"
		args = append(args, like, like, like, like)
	}
	q.WriteString(strings.Join(clauses, " OR "))
	q.WriteString(")")

	if projectID != "" {
		q.WriteString(" AND sess.project_id = ?")
		args = append(args, projectID)
	}
	q.WriteString(" ORDER BY c.created_at DESC LIMIT ?")
	args = append(args, limit)

	return s.queryContexts(ctx, q.String(), args...)
}

// --- ContextFiles ---

func (s *SQLiteStore) AddContextFiles(ctx context.Context, contextID string, entries []ContextFile) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StorageError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO context_files (context_id, file_path, change_type, line_ranges, diff_stats) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.StorageError("failed to prepare context_files insert", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		ranges, err := json.Marshal(e.LineRanges)
		if err != nil {
			return errors.InvalidArgument("failed to encode line ranges", err)
		}
		diff, err := json.Marshal(e.DiffStats)
		if err != nil {
			return errors.InvalidArgument("failed to encode diff stats", err)
		}
		if _, err := stmt.ExecContext(ctx, contextID, e.FilePath, string(e.ChangeType), string(ranges), string(diff)); err != nil {
			return errors.StorageError("failed to insert context file", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) DeleteContextFilesByContext(ctx context.Context, contextID string) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM context_files WHERE context_id = ?`, contextID); err != nil {
		return errors.StorageError("failed to delete context files", err)
	}
	return nil
}

func (s *SQLiteStore) ContextFilesByContext(ctx context.Context, contextID string) ([]ContextFile, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT context_id, file_path, change_type, line_ranges, diff_stats FROM context_files WHERE context_id = ?`, contextID)
	if err != nil {
		return nil, errors.StorageError("failed to query context files", err)
	}
	defer rows.Close()

	var out []ContextFile
	for rows.Next() {
		var cf ContextFile
		var changeType, lineRanges, diffStats string
		if err := rows.Scan(&cf.ContextID, &cf.FilePath, &changeType, &lineRanges, &diffStats); err != nil {
			return nil, errors.StorageError("failed to scan context file", err)
		}
		cf.ChangeType = ChangeType(changeType)
		_ = json.Unmarshal([]byte(lineRanges), &cf.LineRanges)
		if diffStats != "null" && diffStats != "" {
			var ds DiffStats
			if err := json.Unmarshal([]byte(diffStats), &ds); err == nil {
				cf.DiffStats = &ds
			}
		}
		out = append(out, cf)
	}
	return out, rows.Err()
}

// --- FileIndex ---

func (s *SQLiteStore) SaveFileIndexRow(ctx context.Context, row *FileIndexRow) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.IndexedAt.IsZero() {
		row.IndexedAt = time.Now().UTC()
	}

	meta, err := encodeMetadata(row.Metadata)
	if err != nil {
		return errors.InvalidArgument("failed to encode file index metadata", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO file_index (id, session_id, project_id, file_path, content, tags, indexed_at, modified_time, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content, tags = excluded.tags, indexed_at = excluded.indexed_at,
			modified_time = excluded.modified_time, embedding = excluded.embedding, metadata = excluded.metadata
	`, row.ID, row.SessionID, row.ProjectID, row.FilePath, row.Content, encodeTags(row.Tags),
		row.IndexedAt.Format(time.RFC3339Nano), row.ModifiedTime.Format(time.RFC3339Nano), encodeVector(row.Embedding), meta)
	if err != nil {
		return errors.StorageError("failed to save file index row", err)
	}
	return nil
}

func (s *SQLiteStore) scanFileIndexRow(row interface {
	Scan(dest ...any) error
}) (*FileIndexRow, error) {
	f := &FileIndexRow{}
	var tags, indexedAt, modifiedTime, metadata string
	var embedding []byte
	err := row.Scan(&f.ID, &f.SessionID, &f.ProjectID, &f.FilePath, &f.Content, &tags, &indexedAt, &modifiedTime, &embedding, &metadata)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.StorageError("failed to scan file index row", err)
	}
	f.Tags = decodeTags(tags)
	f.IndexedAt, _ = time.Parse(time.RFC3339Nano, indexedAt)
	f.ModifiedTime, _ = time.Parse(time.RFC3339Nano, modifiedTime)
	f.Embedding = decodeVector(embedding)
	f.Metadata = decodeMetadata(metadata)
	return f, nil
}

const fileIndexColumns = `id, session_id, project_id, file_path, content, tags, indexed_at, modified_time, embedding, metadata`

func (s *SQLiteStore) GetFileIndexRow(ctx context.Context, id string) (*FileIndexRow, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+fileIndexColumns+` FROM file_index WHERE id = ?`, id)
	return s.scanFileIndexRow(row)
}

func (s *SQLiteStore) DeleteFileIndexByProject(ctx context.Context, projectID string) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM file_index WHERE project_id = ?`, projectID); err != nil {
		return errors.StorageError("failed to delete file index rows", err)
	}
	return nil
}

func (s *SQLiteStore) FileIndexForVectorSearch(ctx context.Context, projectID, sessionID string) ([]*FileIndexRow, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}

	q := strings.Builder{}
	q.WriteString(`SELECT ` + fileIndexColumns + ` FROM file_index WHERE embedding IS NOT NULL AND length(embedding) > 0`)
	var args []any
	if projectID != "" {
		q.WriteString(" AND project_id = ?")
		args = append(args, projectID)
	}
	if sessionID != "" {
		q.WriteString(" AND session_id = ?")
		args = append(args, sessionID)
	}

	rows, err := s.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, errors.StorageError("failed to query file index", err)
	}
	defer rows.Close()

	var out []*FileIndexRow
	for rows.Next() {
		f, err := s.scanFileIndexRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// --- Relationships ---

func (s *SQLiteStore) AddRelationship(ctx context.Context, r Relationship) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO relationships (from_context_id, to_context_id, type, strength) VALUES (?, ?, ?, ?)`,
		r.FromContextID, r.ToContextID, r.Type, clampUnit(r.Strength))
	if err != nil {
		return errors.StorageError("failed to add relationship", err)
	}
	return nil
}

// RelationshipsFrom returns only direct edges; callers must not
// traverse transitively even though the graph can contain cycles.
func (s *SQLiteStore) RelationshipsFrom(ctx context.Context, contextID string, relType RelationshipType) ([]Relationship, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}

	q := `SELECT from_context_id, to_context_id, type, strength FROM relationships WHERE from_context_id = ?`
	args := []any{contextID}
	if relType != "" {
		q += " AND type = ?"
		args = append(args, relType)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.StorageError("failed to query relationships", err)
	}
	defer rows.Close()

	var out []Relationship
	for rows.Next() {
		var r Relationship
		if err := rows.Scan(&r.FromContextID, &r.ToContextID, &r.Type, &r.Strength); err != nil {
			return nil, errors.StorageError("failed to scan relationship", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- Stats and search bookkeeping ---

func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}

	st := &Stats{}
	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM sessions),
			(SELECT COUNT(*) FROM contexts),
			(SELECT COUNT(*) FROM file_index),
			(SELECT COUNT(*) FROM contexts WHERE embedding IS NOT NULL AND length(embedding) > 0)
	`)
	if err := row.Scan(&st.ProjectCount, &st.SessionCount, &st.ContextCount, &st.FileIndexCount, &st.EmbeddedContextCount); err != nil {
		return nil, errors.StorageError("failed to compute stats", err)
	}
	return st, nil
}

// RecordSearchHit increments a context's hit counter and stamps
// metadata.quality_metrics.last_accessed. Hit counters may be applied
// in any order and need not be transactional with the returned rows.
func (s *SQLiteStore) RecordSearchHit(ctx context.Context, contextID string) error {
	if err := s.checkConnected(); err != nil {
		return err
	}

	c, err := s.GetContextByID(ctx, contextID)
	if err != nil {
		return err
	}

	metrics, _ := c.Metadata["quality_metrics"].(map[string]any)
	if metrics == nil {
		metrics = map[string]any{}
	}
	metrics["last_accessed"] = time.Now().UTC().Format(time.RFC3339Nano)
	c.Metadata["quality_metrics"] = metrics

	meta, err := encodeMetadata(c.Metadata)
	if err != nil {
		return errors.InvalidArgument("failed to encode quality metrics", err)
	}

	_, err = s.db.ExecContext(ctx, `UPDATE contexts SET hit_count = hit_count + 1, metadata = ? WHERE id = ?`, meta, contextID)
	if err != nil {
		return errors.StorageError("failed to record search hit", err)
	}
	return nil
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool, error) {
	if err := s.checkConnected(); err != nil {
		return "", false, err
	}
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.StorageError("failed to read state", err)
	}
	return value, true, nil
}

func (s *SQLiteStore) SetState(ctx context.Context, key, value string) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return errors.StorageError("failed to write state", err)
	}
	return nil
}
