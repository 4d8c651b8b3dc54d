//go:build cgo

package graph

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store on a single SQLite database file. Edges live
// in one table keyed by kind; traversal runs in Go over per-hop queries.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time check that SQLiteStore satisfies Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path. ":memory:" opens a
// private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := "file::memory:?cache=private"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	// A private in-memory database exists per connection.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS files (
	path TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	resource_type TEXT NOT NULL DEFAULT '',
	node_count INTEGER NOT NULL DEFAULT 0,
	sub_resource_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS scene_nodes (
	node_key TEXT PRIMARY KEY,
	file_path TEXT NOT NULL,
	node_id INTEGER NOT NULL,
	uuid INTEGER NOT NULL,
	name TEXT NOT NULL,
	node_type TEXT NOT NULL DEFAULT '',
	level INTEGER NOT NULL,
	parent_id INTEGER NOT NULL,
	path TEXT NOT NULL,
	instance TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS clusters (
	name TEXT PRIMARY KEY,
	cohesion_score REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS edges (
	source_id TEXT NOT NULL,
	target_id TEXT NOT NULL,
	kind TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_nodes_file ON scene_nodes(file_path);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(kind, source_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(kind, target_id);
`

// InitSchema creates the tables and indexes if they do not exist.
func (s *SQLiteStore) InitSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("sqlite: init schema: %w", err)
	}
	return nil
}

// ---------- Write operations ----------

// AddFile inserts or replaces a file row.
func (s *SQLiteStore) AddFile(ctx context.Context, node FileNode) error {
	return s.exec(ctx, `
		INSERT INTO files (path, kind, resource_type, node_count, sub_resource_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			kind = excluded.kind,
			resource_type = excluded.resource_type,
			node_count = excluded.node_count,
			sub_resource_count = excluded.sub_resource_count`,
		node.Path, string(node.Kind), node.ResourceType, node.NodeCount, node.SubResourceCount)
}

// AddNode inserts or replaces a scene node row.
func (s *SQLiteStore) AddNode(ctx context.Context, node SceneNode) error {
	return s.exec(ctx, `
		INSERT OR REPLACE INTO scene_nodes
			(node_key, file_path, node_id, uuid, name, node_type, level, parent_id, path, instance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		node.Key(), node.FilePath, node.ID, node.UUID, node.Name, node.Type,
		node.Level, node.ParentID, node.Path, node.Instance)
}

// AddCluster inserts a cluster row.
func (s *SQLiteStore) AddCluster(ctx context.Context, node ClusterNode) error {
	return s.exec(ctx, `INSERT INTO clusters (name, cohesion_score) VALUES (?, ?)`,
		node.Name, node.CohesionScore)
}

// AddEdge inserts an edge row.
func (s *SQLiteStore) AddEdge(ctx context.Context, edge Edge) error {
	switch edge.Kind {
	case EdgeKindContains, EdgeKindParentOf, EdgeKindDependsOn, EdgeKindInstances, EdgeKindBelongs:
	default:
		return fmt.Errorf("sqlite: unsupported edge kind: %s", edge.Kind)
	}
	return s.exec(ctx, `INSERT INTO edges (source_id, target_id, kind) VALUES (?, ?, ?)`,
		edge.SourceID, edge.TargetID, string(edge.Kind))
}

// ---------- Read operations ----------

const fileColumns = `path, kind, resource_type, node_count, sub_resource_count`

// GetFile returns the file at path, or nil if not found.
func (s *SQLiteStore) GetFile(ctx context.Context, path string) (*FileNode, error) {
	rows, err := s.query(ctx, `SELECT `+fileColumns+` FROM files WHERE path = ?`, path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToFile(rows[0]), nil
}

// ListFiles returns all files sorted by path.
func (s *SQLiteStore) ListFiles(ctx context.Context) ([]FileNode, error) {
	rows, err := s.query(ctx, `SELECT `+fileColumns+` FROM files ORDER BY path`)
	if err != nil {
		return nil, err
	}
	out := make([]FileNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToFile(r))
	}
	return out, nil
}

const nodeColumns = `file_path, node_id, uuid, name, node_type, level, parent_id, path, instance`

// GetNode returns the scene node at nodePath in filePath, or nil if not found.
func (s *SQLiteStore) GetNode(ctx context.Context, filePath, nodePath string) (*SceneNode, error) {
	rows, err := s.query(ctx, `SELECT `+nodeColumns+` FROM scene_nodes WHERE node_key = ?`,
		NodeKey(filePath, nodePath))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToNode(rows[0]), nil
}

// QueryNodes returns scene nodes whose name or type contains query,
// case-insensitively for ASCII.
func (s *SQLiteStore) QueryNodes(ctx context.Context, query string, limit int) ([]SceneNode, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	q := `SELECT ` + nodeColumns + ` FROM scene_nodes
		WHERE lower(name) LIKE ? ESCAPE '\' OR lower(node_type) LIKE ? ESCAPE '\'
		ORDER BY file_path, node_id`
	args := []any{pattern, pattern}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	out := make([]SceneNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToNode(r))
	}
	return out, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ---------- Graph traversal ----------

// GetDependencies performs a BFS over DEPENDS_ON edges from path.
func (s *SQLiteStore) GetDependencies(ctx context.Context, path string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	return traverse(path, dir, maxDepth, s.neighbors(ctx))
}

func (s *SQLiteStore) neighbors(ctx context.Context) neighborFunc {
	return func(path string, dir Direction) ([]string, error) {
		var q string
		switch dir {
		case DirectionUpstream:
			q = `SELECT target_id FROM edges WHERE kind = ? AND source_id = ?`
		case DirectionDownstream:
			q = `SELECT source_id FROM edges WHERE kind = ? AND target_id = ?`
		default:
			return nil, fmt.Errorf("sqlite: unknown direction: %s", dir)
		}
		rows, err := s.query(ctx, q, string(EdgeKindDependsOn), path)
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(rows))
		for _, r := range rows {
			out = append(out, toString(r[0]))
		}
		return out, nil
	}
}

// AssessImpact computes the blast radius of changing the given files.
func (s *SQLiteStore) AssessImpact(ctx context.Context, changedFiles []string) (*ImpactResult, error) {
	total, err := s.count(ctx, "files")
	if err != nil {
		return nil, err
	}
	return assessImpact(changedFiles, total, s.neighbors(ctx))
}

// GetClusters returns all clusters with members taken from BELONGS edges.
func (s *SQLiteStore) GetClusters(ctx context.Context) ([]ClusterNode, error) {
	rows, err := s.query(ctx, `SELECT name, cohesion_score FROM clusters ORDER BY name`)
	if err != nil {
		return nil, err
	}
	out := make([]ClusterNode, 0, len(rows))
	for _, r := range rows {
		name := toString(r[0])
		memberRows, err := s.query(ctx,
			`SELECT source_id FROM edges WHERE kind = ? AND target_id = ? ORDER BY source_id`,
			string(EdgeKindBelongs), name)
		if err != nil {
			return nil, err
		}
		members := make([]string, 0, len(memberRows))
		for _, mr := range memberRows {
			members = append(members, toString(mr[0]))
		}
		out = append(out, ClusterNode{Name: name, CohesionScore: toFloat64(r[1]), Members: members})
	}
	return out, nil
}

// GetAllEdges returns all edges in insertion order.
func (s *SQLiteStore) GetAllEdges(ctx context.Context) ([]Edge, error) {
	rows, err := s.query(ctx, `SELECT source_id, target_id, kind FROM edges ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	edges := make([]Edge, 0, len(rows))
	for _, r := range rows {
		edges = append(edges, Edge{
			SourceID: toString(r[0]),
			TargetID: toString(r[1]),
			Kind:     EdgeKind(toString(r[2])),
		})
	}
	return edges, nil
}

// Stats returns row counts of every table.
func (s *SQLiteStore) Stats(ctx context.Context) (*GraphStats, error) {
	var st GraphStats
	for _, c := range []struct {
		table string
		dst   *int
	}{
		{"files", &st.FileCount},
		{"scene_nodes", &st.NodeCount},
		{"clusters", &st.ClusterCount},
		{"edges", &st.EdgeCount},
	} {
		n, err := s.count(ctx, c.table)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return &st, nil
}

// ---------- Internal helpers ----------

func (s *SQLiteStore) exec(ctx context.Context, q string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("sqlite: execute: %w", err)
	}
	return nil
}

// query collects all result rows as []any in column order.
func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([][]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlite: columns: %w", err)
	}
	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) count(ctx context.Context, table string) (int, error) {
	// Table name is a fixed internal constant, not user input.
	rows, err := s.query(ctx, fmt.Sprintf("SELECT count(*) FROM %s", table))
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}
