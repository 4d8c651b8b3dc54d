package graph

import "fmt"

// rowToFile converts a 5-column result row into a FileNode.
// Column order: path, kind, resource_type, node_count, sub_resource_count.
func rowToFile(r []any) *FileNode {
	return &FileNode{
		Path:             toString(r[0]),
		Kind:             FileKind(toString(r[1])),
		ResourceType:     toString(r[2]),
		NodeCount:        toInt(r[3]),
		SubResourceCount: toInt(r[4]),
	}
}

// rowToNode converts a 9-column result row into a SceneNode.
// Column order: file_path, node_id, uuid, name, type, level, parent_id, path,
// instance.
func rowToNode(r []any) *SceneNode {
	return &SceneNode{
		FilePath: toString(r[0]),
		ID:       toInt(r[1]),
		UUID:     toInt(r[2]),
		Name:     toString(r[3]),
		Type:     toString(r[4]),
		Level:    toInt(r[5]),
		ParentID: toInt(r[6]),
		Path:     toString(r[7]),
		Instance: toString(r[8]),
	}
}

// Type coercion helpers for database rows. KuzuDB and SQLite return typed Go
// values (int64, float64, string, []byte); these coerce any to a concrete
// type.

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
