package mcp

// CreateSessionInput is the create_session tool's argument shape.
type CreateSessionInput struct {
	ProjectPath string `json:"project_path" jsonschema:"absolute path to the project root"`
	ToolUsed    string `json:"tool_used" jsonschema:"name of the calling AI tool, e.g. claude-code"`
	SessionName string `json:"session_name,omitempty" jsonschema:"optional human-readable session name"`
}

// CreateSessionOutput is the create_session tool's result.
type CreateSessionOutput struct {
	SessionID   string `json:"session_id"`
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	Message     string `json:"message"`
}

// GetCurrentSessionInput is the get_current_session tool's argument shape.
type GetCurrentSessionInput struct {
	ProjectPath string `json:"project_path" jsonschema:"absolute path to the project root"`
}

// GetCurrentSessionOutput is the get_current_session tool's result.
type GetCurrentSessionOutput struct {
	SessionID string `json:"session_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Message   string `json:"message"`
}

// ManageSessionInput is the manage_session tool's argument shape.
type ManageSessionInput struct {
	Action    string `json:"action" jsonschema:"one of end, delete, end_and_delete"`
	SessionID string `json:"session_id,omitempty" jsonschema:"target session id"`
	ProjectID string `json:"project_id,omitempty" jsonschema:"apply action to every session of this project"`
}

// ManageSessionOutput is the manage_session tool's result.
type ManageSessionOutput struct {
	Affected []string `json:"affected_session_ids"`
	Message  string   `json:"message"`
}

// ListProjectsInput is the list_projects tool's argument shape; its only
// parameter is an optional result limit.
type ListProjectsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of projects, default 50"`
}

// ProjectSummary is one row of a list_projects response.
type ProjectSummary struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	Language  string `json:"language,omitempty"`
	Framework string `json:"framework,omitempty"`
}

// ListProjectsOutput is the list_projects tool's result.
type ListProjectsOutput struct {
	Projects []ProjectSummary `json:"projects"`
}

// RecordContextInput is the record_context tool's argument shape.
type RecordContextInput struct {
	Content       string         `json:"content" jsonschema:"the text or code to remember"`
	ProjectPath   string         `json:"project_path" jsonschema:"absolute path to the project root"`
	SessionID     string         `json:"session_id,omitempty" jsonschema:"explicit session id; resolved automatically if omitted"`
	Type          string         `json:"type,omitempty" jsonschema:"context type; inferred automatically if omitted"`
	FilePath      string         `json:"file_path,omitempty" jsonschema:"single file this context concerns"`
	FilesChanged  []FileChangeIn `json:"files_changed,omitempty" jsonschema:"files touched by this context, for multi-file changes"`
	LineStart     int            `json:"line_start,omitempty"`
	LineEnd       int            `json:"line_end,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	ChangeType    string         `json:"change_type,omitempty"`
	ImpactLevel   string         `json:"impact_level,omitempty"`
	ForceRemember bool           `json:"force_remember,omitempty" jsonschema:"store even if this would normally be skipped"`
}

// FileChangeIn is one entry of record_context's files_changed array.
type FileChangeIn struct {
	FilePath   string          `json:"file_path"`
	ChangeType string          `json:"change_type,omitempty"`
	LineRanges []LineRangeIn   `json:"line_ranges,omitempty"`
	DiffStats  *DiffStatsInput `json:"diff_stats,omitempty"`
}

// LineRangeIn is an inclusive [start, end] span in a tool call argument.
type LineRangeIn struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DiffStatsInput mirrors store.DiffStats in a tool call argument.
type DiffStatsInput struct {
	Additions int `json:"additions,omitempty"`
	Deletions int `json:"deletions,omitempty"`
	Changes   int `json:"changes,omitempty"`
}

// RecordContextOutput is the record_context tool's result.
type RecordContextOutput struct {
	ContextID        string   `json:"context_id,omitempty"`
	Stored           bool     `json:"stored"`
	Tier             string   `json:"tier"`
	DuplicateWarning string   `json:"duplicate_warning,omitempty"`
	Message          string   `json:"message"`
	Files            []string `json:"files,omitempty"`
}

// GetContextInput is the get_context tool's argument shape.
type GetContextInput struct {
	ContextIDs   []string `json:"context_ids" jsonschema:"one or more context ids to retrieve"`
	RelationType string   `json:"relation_type,omitempty" jsonschema:"if set, also return contexts related to the given ids by this relation"`
}

// ContextOutput is one context row in a tool response.
type ContextOutput struct {
	ContextID    string         `json:"context_id"`
	Type         string         `json:"type"`
	Content      string         `json:"content"`
	FilePath     string         `json:"file_path,omitempty"`
	Files        []string       `json:"files,omitempty"`
	Language     string         `json:"language,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	QualityScore float64        `json:"quality_score"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    string         `json:"created_at"`
}

// GetContextOutput is the get_context tool's result.
type GetContextOutput struct {
	Contexts []ContextOutput `json:"contexts"`
	Related  []ContextOutput `json:"related,omitempty"`
}

// SemanticSearchInput is the semantic_search tool's argument shape.
type SemanticSearchInput struct {
	Query               string  `json:"query" jsonschema:"the search query"`
	ProjectPath         string  `json:"project_path,omitempty"`
	SessionID           string  `json:"session_id,omitempty"`
	FilePath            string  `json:"file_path,omitempty"`
	Type                string  `json:"type,omitempty"`
	Limit               int     `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`
	HybridWeight        float64 `json:"hybrid_weight,omitempty"`
}

// SearchResultOutput is one ranked result of semantic_search.
type SearchResultOutput struct {
	ContextID     string   `json:"context_id"`
	Type          string   `json:"type"`
	Content       string   `json:"content"`
	FilePath      string   `json:"file_path,omitempty"`
	Files         []string `json:"files,omitempty"`
	Language      string   `json:"language,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	QualityScore  float64  `json:"quality_score"`
	CreatedAt     string   `json:"created_at"`
	FromIndex     bool     `json:"from_index,omitempty"`
	VectorScore   float64  `json:"vector_score"`
	KeywordScore  float64  `json:"keyword_score"`
	HybridScore   float64  `json:"hybrid_score"`
	MetadataScore float64  `json:"metadata_score"`
	FinalScore    float64  `json:"final_score"`
}

// SemanticSearchOutput is the semantic_search tool's result.
type SemanticSearchOutput struct {
	Results       []SearchResultOutput `json:"results"`
	OriginalQuery string                `json:"original_query"`
	EnhancedQuery string                `json:"enhanced_query,omitempty"`
	Message       string                `json:"message,omitempty"`
}

// ListContextsInput is the list_contexts tool's argument shape. At least
// one of SessionID, ProjectPath, Since, or Type must be set.
type ListContextsInput struct {
	SessionID   string `json:"session_id,omitempty"`
	ProjectPath string `json:"project_path,omitempty"`
	Since       string `json:"since,omitempty" jsonschema:"RFC3339 timestamp; only contexts created at or after this time"`
	Type        string `json:"type,omitempty"`
	Limit       int    `json:"limit,omitempty" jsonschema:"maximum number of contexts, default 50"`
}

// ListContextsOutput is the list_contexts tool's result.
type ListContextsOutput struct {
	Contexts []ContextOutput `json:"contexts"`
}

// DeleteContextInput is the delete_context tool's argument shape.
type DeleteContextInput struct {
	ContextID string `json:"context_id"`
}

// DeleteContextOutput is the delete_context tool's result.
type DeleteContextOutput struct {
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}

// UpdateContextInput is the update_context tool's argument shape. Fields
// left nil/empty are not touched; the embedding is never touched here.
type UpdateContextInput struct {
	ContextID    string         `json:"context_id"`
	Content      string         `json:"content,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	QualityScore *float64       `json:"quality_score,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// UpdateContextOutput is the update_context tool's result.
type UpdateContextOutput struct {
	Updated bool   `json:"updated"`
	Message string `json:"message"`
}

// ExportMemoryGraphInput is the export_memory_graph tool's argument shape.
type ExportMemoryGraphInput struct {
	ProjectPath string `json:"project_path"`
	Limit       int    `json:"limit,omitempty"`
}

// GraphNode is one context node of an exported memory graph.
type GraphNode struct {
	ContextID string `json:"context_id"`
	Type      string `json:"type"`
	FilePath  string `json:"file_path,omitempty"`
	CreatedAt string `json:"created_at"`
}

// GraphEdge is one relationship edge of an exported memory graph.
type GraphEdge struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Type     string  `json:"type"`
	Strength float64 `json:"strength"`
}

// ExportMemoryGraphOutput is the export_memory_graph tool's result.
type ExportMemoryGraphOutput struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// GetMemoryStatusInput is the get_memory_status tool's argument shape
// (no parameters).
type GetMemoryStatusInput struct{}

// GetMemoryStatusOutput is the get_memory_status tool's result.
type GetMemoryStatusOutput struct {
	ProjectCount         int    `json:"project_count"`
	SessionCount         int    `json:"session_count"`
	ContextCount         int    `json:"context_count"`
	FileIndexCount       int    `json:"file_index_count"`
	EmbeddedContextCount int    `json:"embedded_context_count"`
	EmbedderModel        string `json:"embedder_model,omitempty"`
	EmbedderDimensions   int    `json:"embedder_dimensions,omitempty"`
	EmbedderAvailable    bool   `json:"embedder_available"`
}

// CleanupEmptyProjectsInput is the cleanup_empty_projects tool's argument
// shape. DryRun previews the projects that would be removed without
// deleting anything.
type CleanupEmptyProjectsInput struct {
	DryRun bool `json:"dry_run,omitempty"`
}

// CleanupEmptyProjectsOutput is the cleanup_empty_projects tool's result.
type CleanupEmptyProjectsOutput struct {
	RemovedProjectIDs []string `json:"removed_project_ids"`
	DryRun            bool     `json:"dry_run,omitempty"`
	Message           string   `json:"message"`
}
