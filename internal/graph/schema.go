package graph

// --- Enums ---

// NodeKind classifies nodes in the scene index graph.
type NodeKind string

const (
	NodeKindFile    NodeKind = "file"
	NodeKindScene   NodeKind = "scene_node"
	NodeKindCluster NodeKind = "cluster"
)

// FileKind classifies indexed files.
type FileKind string

const (
	FileKindScene    FileKind = "scene"    // parsed .tscn
	FileKindResource FileKind = "resource" // parsed .tres
	FileKindExternal FileKind = "external" // referenced but not parsed (assets, missing files)
)

// EdgeKind classifies relationships between nodes.
type EdgeKind string

const (
	EdgeKindContains  EdgeKind = "CONTAINS"   // file -> scene node
	EdgeKindParentOf  EdgeKind = "PARENT_OF"  // scene node -> child scene node
	EdgeKindDependsOn EdgeKind = "DEPENDS_ON" // file -> file it references through ext_resource
	EdgeKindInstances EdgeKind = "INSTANCES"  // scene node -> instanced scene file
	EdgeKindBelongs   EdgeKind = "BELONGS"    // file -> cluster
)

// --- Models ---

// FileNode represents a scene, resource or external file in the index.
type FileNode struct {
	Path             string   `json:"path"` // virtual path, e.g. res://levels/Main.tscn
	Kind             FileKind `json:"kind"`
	ResourceType     string   `json:"resourceType,omitempty"`
	NodeCount        int      `json:"nodeCount"`
	SubResourceCount int      `json:"subResourceCount"`
}

// SceneNode represents one node of a parsed scene.
type SceneNode struct {
	FilePath string `json:"filePath"`
	ID       int    `json:"id"`   // node id within the file
	UUID     int    `json:"uuid"` // 16-bit path hash
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Level    int    `json:"level"`
	ParentID int    `json:"parentId"`
	Path     string `json:"path"`               // relative to the scene root, "." for the root
	Instance string `json:"instance,omitempty"` // virtual path of the instanced scene
}

// Key returns the node's identifier in edges: "filePath#path".
func (n SceneNode) Key() string {
	return NodeKey(n.FilePath, n.Path)
}

// NodeKey builds the edge identifier of the node at nodePath in filePath.
func NodeKey(filePath, nodePath string) string {
	return filePath + "#" + nodePath
}

// ClusterNode represents a group of files connected through dependencies.
type ClusterNode struct {
	Name          string   `json:"name"`
	CohesionScore float64  `json:"cohesionScore"`
	Members       []string `json:"members"` // file paths
}

// Edge represents a relationship between two nodes.
type Edge struct {
	SourceID string   `json:"sourceId"`
	TargetID string   `json:"targetId"`
	Kind     EdgeKind `json:"kind"`
}

// GraphStats summarizes a scene index.
type GraphStats struct {
	FileCount    int `json:"fileCount"`
	NodeCount    int `json:"nodeCount"`
	ClusterCount int `json:"clusterCount"`
	EdgeCount    int `json:"edgeCount"`
}

// DependencyChain is an ordered sequence of files forming a dependency path.
type DependencyChain struct {
	Nodes []string `json:"nodes"` // file paths in order
	Depth int      `json:"depth"`
}

// ImpactResult describes the blast radius of changing a set of files.
type ImpactResult struct {
	DirectlyAffected     []string `json:"directlyAffected"`     // files referencing a changed file
	TransitivelyAffected []string `json:"transitivelyAffected"` // full dependent closure
	RiskScore            float64  `json:"riskScore"`            // 0.0-1.0, share of indexed files affected
}
