package mcptools

import "github.com/dusk-indust/scenegraph/internal/graph"

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// BuildIndexInput is the input for the build_index MCP tool.
type BuildIndexInput struct {
	ProjectRoot string   `json:"projectRoot,omitempty" jsonschema:"absolute path of the project to index (default: the server's project root)"`
	ExcludeDirs []string `json:"excludeDirs,omitempty" jsonschema:"directory names to skip in addition to the configured ones"`
	Workers     int      `json:"workers,omitempty" jsonschema:"number of files parsed in parallel (default: configured value or GOMAXPROCS)"`
}

// BuildIndexOutput is the result of the build_index MCP tool.
type BuildIndexOutput struct {
	Indexed  int               `json:"indexed"`
	Failed   []graph.FileError `json:"failed,omitempty"`
	Clusters int               `json:"clusters"`
	Stats    graph.GraphStats  `json:"stats"`
}

// ParseSceneInput is the input for the parse_scene MCP tool.
type ParseSceneInput struct {
	Path        string `json:"path" jsonschema:"virtual path of the scene or resource, e.g. res://levels/Main.tscn"`
	ProjectRoot string `json:"projectRoot,omitempty" jsonschema:"absolute path of the project (default: the server's project root)"`
	Format      string `json:"format,omitempty" jsonschema:"json (default) for the parsed document or mermaid for the node tree diagram"`
}

// QueryNodesInput is the input for the query_nodes MCP tool.
type QueryNodesInput struct {
	Query string `json:"query" jsonschema:"search query for node names or types (substring match)"`
	Type  string `json:"type,omitempty" jsonschema:"only return nodes of this exact type, e.g. Sprite"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
}

// QueryNodesOutput is the result of the query_nodes MCP tool.
type QueryNodesOutput struct {
	Nodes []graph.SceneNode `json:"nodes"`
	Total int               `json:"total"`
}

// GetDependenciesInput is the input for the get_dependencies MCP tool.
type GetDependenciesInput struct {
	Path      string `json:"path" jsonschema:"virtual path of a scene, resource or referenced file"`
	Direction string `json:"direction,omitempty" jsonschema:"upstream (what it depends on) or downstream (what depends on it). Default: downstream"`
	MaxDepth  int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
}

// GetDependenciesOutput is the result of the get_dependencies MCP tool.
type GetDependenciesOutput struct {
	Chains []graph.DependencyChain `json:"chains"`
}

// AssessImpactInput is the input for the assess_impact MCP tool.
type AssessImpactInput struct {
	ChangedFiles []string `json:"changedFiles" jsonschema:"virtual paths of the files that will be modified"`
}

// AssessImpactOutput is the result of the assess_impact MCP tool.
type AssessImpactOutput struct {
	Impact graph.ImpactResult `json:"impact"`
}

// GetClustersInput is the input for the get_clusters MCP tool.
type GetClustersInput struct{}

// GetClustersOutput is the result of the get_clusters MCP tool.
type GetClustersOutput struct {
	Clusters []graph.ClusterNode `json:"clusters"`
}
