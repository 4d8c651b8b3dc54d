//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given path. The parent directory is created if needed.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(dbPath string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS File(
		path STRING,
		kind STRING,
		resource_type STRING,
		node_count INT64,
		sub_resource_count INT64,
		PRIMARY KEY(path)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS SceneNode(
		node_key STRING,
		file_path STRING,
		node_id INT64,
		uuid INT64,
		name STRING,
		node_type STRING,
		level INT64,
		parent_id INT64,
		path STRING,
		instance STRING,
		PRIMARY KEY(node_key)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Cluster(
		name STRING,
		cohesion_score DOUBLE,
		PRIMARY KEY(name)
	)`,
	`CREATE REL TABLE IF NOT EXISTS CONTAINS(FROM File TO SceneNode)`,
	`CREATE REL TABLE IF NOT EXISTS PARENT_OF(FROM SceneNode TO SceneNode)`,
	`CREATE REL TABLE IF NOT EXISTS DEPENDS_ON(FROM File TO File)`,
	`CREATE REL TABLE IF NOT EXISTS INSTANCES(FROM SceneNode TO File)`,
	`CREATE REL TABLE IF NOT EXISTS BELONGS_TO(FROM File TO Cluster)`,
}

// relTables lists the relationship tables with the edge kind they store.
var relTables = []struct {
	table string
	kind  EdgeKind
	from  string
	to    string
}{
	{"CONTAINS", EdgeKindContains, "(a:File)", "(b:SceneNode)"},
	{"PARENT_OF", EdgeKindParentOf, "(a:SceneNode)", "(b:SceneNode)"},
	{"DEPENDS_ON", EdgeKindDependsOn, "(a:File)", "(b:File)"},
	{"INSTANCES", EdgeKindInstances, "(a:SceneNode)", "(b:File)"},
	{"BELONGS_TO", EdgeKindBelongs, "(a:File)", "(b:Cluster)"},
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddFile inserts or replaces a File node.
func (s *KuzuStore) AddFile(_ context.Context, node FileNode) error {
	return s.exec(
		`MERGE (f:File {path: $path})
		 SET f.kind = $kind, f.resource_type = $rt, f.node_count = $nc, f.sub_resource_count = $sc`,
		map[string]any{
			"path": node.Path,
			"kind": string(node.Kind),
			"rt":   node.ResourceType,
			"nc":   int64(node.NodeCount),
			"sc":   int64(node.SubResourceCount),
		},
	)
}

// AddNode inserts a SceneNode.
func (s *KuzuStore) AddNode(_ context.Context, node SceneNode) error {
	return s.exec(
		`CREATE (n:SceneNode {
			node_key: $nk,
			file_path: $fp,
			node_id: $id,
			uuid: $uuid,
			name: $name,
			node_type: $nt,
			level: $level,
			parent_id: $parent,
			path: $path,
			instance: $inst
		})`,
		map[string]any{
			"nk":     node.Key(),
			"fp":     node.FilePath,
			"id":     int64(node.ID),
			"uuid":   int64(node.UUID),
			"name":   node.Name,
			"nt":     node.Type,
			"level":  int64(node.Level),
			"parent": int64(node.ParentID),
			"path":   node.Path,
			"inst":   node.Instance,
		},
	)
}

// AddCluster inserts a Cluster node.
func (s *KuzuStore) AddCluster(_ context.Context, node ClusterNode) error {
	return s.exec(
		"CREATE (c:Cluster {name: $name, cohesion_score: $score})",
		map[string]any{
			"name":  node.Name,
			"score": node.CohesionScore,
		},
	)
}

// AddEdge inserts a relationship edge between two existing nodes.
func (s *KuzuStore) AddEdge(_ context.Context, edge Edge) error {
	cypher, err := edgeCypher(edge.Kind)
	if err != nil {
		return err
	}
	return s.exec(cypher, map[string]any{
		"src": edge.SourceID,
		"dst": edge.TargetID,
	})
}

// edgeCypher returns the MATCH-CREATE Cypher for the given edge kind.
func edgeCypher(kind EdgeKind) (string, error) {
	switch kind {
	case EdgeKindContains:
		return `MATCH (a:File {path: $src}), (b:SceneNode {node_key: $dst})
				CREATE (a)-[:CONTAINS]->(b)`, nil
	case EdgeKindParentOf:
		return `MATCH (a:SceneNode {node_key: $src}), (b:SceneNode {node_key: $dst})
				CREATE (a)-[:PARENT_OF]->(b)`, nil
	case EdgeKindDependsOn:
		return `MATCH (a:File {path: $src}), (b:File {path: $dst})
				CREATE (a)-[:DEPENDS_ON]->(b)`, nil
	case EdgeKindInstances:
		return `MATCH (a:SceneNode {node_key: $src}), (b:File {path: $dst})
				CREATE (a)-[:INSTANCES]->(b)`, nil
	case EdgeKindBelongs:
		return `MATCH (a:File {path: $src}), (b:Cluster {name: $dst})
				CREATE (a)-[:BELONGS_TO]->(b)`, nil
	default:
		return "", fmt.Errorf("kuzu: unsupported edge kind: %s", kind)
	}
}

// ---------- Read operations ----------

// GetFile retrieves a single File node by path, or returns nil if not found.
func (s *KuzuStore) GetFile(_ context.Context, path string) (*FileNode, error) {
	rows, err := s.query(
		`MATCH (f:File {path: $path})
		 RETURN f.path, f.kind, f.resource_type, f.node_count, f.sub_resource_count`,
		map[string]any{"path": path},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToFile(rows[0]), nil
}

// ListFiles returns all File nodes sorted by path.
func (s *KuzuStore) ListFiles(_ context.Context) ([]FileNode, error) {
	rows, err := s.query(
		`MATCH (f:File)
		 RETURN f.path, f.kind, f.resource_type, f.node_count, f.sub_resource_count
		 ORDER BY f.path`,
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make([]FileNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToFile(r))
	}
	return out, nil
}

const sceneNodeColumns = `n.file_path, n.node_id, n.uuid, n.name, n.node_type, n.level, n.parent_id, n.path, n.instance`

// GetNode retrieves a single SceneNode, or nil if not found.
func (s *KuzuStore) GetNode(_ context.Context, filePath, nodePath string) (*SceneNode, error) {
	rows, err := s.query(
		"MATCH (n:SceneNode {node_key: $nk}) RETURN "+sceneNodeColumns,
		map[string]any{"nk": NodeKey(filePath, nodePath)},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToNode(rows[0]), nil
}

// QueryNodes returns scene nodes whose name or type contains the query
// string, case-insensitively.
func (s *KuzuStore) QueryNodes(_ context.Context, queryStr string, limit int) ([]SceneNode, error) {
	cypher := `MATCH (n:SceneNode)
		 WHERE lower(n.name) CONTAINS lower($q) OR lower(n.node_type) CONTAINS lower($q)
		 RETURN ` + sceneNodeColumns + `
		 ORDER BY n.file_path, n.node_id`
	params := map[string]any{"q": queryStr}
	if limit > 0 {
		cypher += " LIMIT $lim"
		params["lim"] = int64(limit)
	}
	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]SceneNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToNode(r))
	}
	return out, nil
}

// ---------- Graph traversal ----------

// GetDependencies performs a BFS over DEPENDS_ON edges starting from the
// given file path. It returns one DependencyChain per reachable file.
func (s *KuzuStore) GetDependencies(_ context.Context, path string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	return traverse(path, dir, maxDepth, s.fileNeighbors)
}

// fileNeighbors returns immediate file neighbors along DEPENDS_ON edges.
func (s *KuzuStore) fileNeighbors(path string, dir Direction) ([]string, error) {
	var cypher string
	switch dir {
	case DirectionUpstream:
		cypher = "MATCH (a:File {path: $path})-[:DEPENDS_ON]->(b:File) RETURN b.path"
	case DirectionDownstream:
		cypher = "MATCH (a:File)-[:DEPENDS_ON]->(b:File {path: $path}) RETURN a.path"
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
	}
	rows, err := s.query(cypher, map[string]any{"path": path})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	return out, nil
}

// AssessImpact computes the blast radius of the given set of changed files.
func (s *KuzuStore) AssessImpact(_ context.Context, changedFiles []string) (*ImpactResult, error) {
	totalFiles, err := s.countTable("File")
	if err != nil {
		return nil, err
	}
	return assessImpact(changedFiles, totalFiles, s.fileNeighbors)
}

// GetClusters returns all Cluster nodes with their members.
func (s *KuzuStore) GetClusters(_ context.Context) ([]ClusterNode, error) {
	rows, err := s.query(
		"MATCH (c:Cluster) RETURN c.name, c.cohesion_score ORDER BY c.name",
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make([]ClusterNode, 0, len(rows))
	for _, r := range rows {
		name := toString(r[0])
		memberRows, err := s.query(
			"MATCH (f:File)-[:BELONGS_TO]->(c:Cluster {name: $name}) RETURN f.path ORDER BY f.path",
			map[string]any{"name": name},
		)
		if err != nil {
			return nil, err
		}
		members := make([]string, 0, len(memberRows))
		for _, mr := range memberRows {
			members = append(members, toString(mr[0]))
		}
		out = append(out, ClusterNode{
			Name:          name,
			CohesionScore: toFloat64(r[1]),
			Members:       members,
		})
	}
	return out, nil
}

// GetAllEdges returns all edges across all relationship tables.
func (s *KuzuStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	var edges []Edge
	for _, rel := range relTables {
		cypher := fmt.Sprintf("MATCH %s-[:%s]->%s RETURN a.%s, b.%s",
			rel.from, rel.table, rel.to, keyColumn(rel.from), keyColumn(rel.to))
		rows, err := s.query(cypher, nil)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			edges = append(edges, Edge{
				SourceID: toString(r[0]),
				TargetID: toString(r[1]),
				Kind:     rel.kind,
			})
		}
	}
	return edges, nil
}

// keyColumn returns the primary key property of a pattern's node table.
func keyColumn(pattern string) string {
	switch pattern {
	case "(a:SceneNode)", "(b:SceneNode)":
		return "node_key"
	case "(a:Cluster)", "(b:Cluster)":
		return "name"
	default:
		return "path"
	}
}

// ---------- Stats ----------

// Stats returns counts of all node and edge tables.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	files, err := s.countTable("File")
	if err != nil {
		return nil, err
	}
	nodes, err := s.countTable("SceneNode")
	if err != nil {
		return nil, err
	}
	clusters, err := s.countTable("Cluster")
	if err != nil {
		return nil, err
	}
	edges, err := s.countEdges()
	if err != nil {
		return nil, err
	}
	return &GraphStats{
		FileCount:    files,
		NodeCount:    nodes,
		ClusterCount: clusters,
		EdgeCount:    edges,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable returns the number of rows in a node table.
func (s *KuzuStore) countTable(table string) (int, error) {
	// Table name is a fixed internal constant, not user input.
	rows, err := s.query(fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table), nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// countEdges returns the total number of edges across all relationship tables.
func (s *KuzuStore) countEdges() (int, error) {
	total := 0
	for _, rel := range relTables {
		rows, err := s.query(fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", rel.table), nil)
		if err != nil {
			return 0, err
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			total += toInt(rows[0][0])
		}
	}
	return total, nil
}
