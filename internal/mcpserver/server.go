package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lumensearch/hybrid"
	"github.com/lumensearch/hybrid/pkg/version"
)

// Persister durably records the add/delete operations applied to the
// in-memory engine, so a later process can rehydrate the same state.
// corpus.Store satisfies this through a thin adapter; tests can stub it.
type Persister interface {
	Put(ctx context.Context, id string, attributes map[string][]string, vector []float32) error
	Delete(ctx context.Context, id string) error
}

// Server bridges an *hybrid.Engine to MCP clients: add_document,
// delete_document, search_text, search_vector, search_substring,
// search_fuzzy, search_hybrid and stats tools.
type Server struct {
	mcp     *mcp.Server
	engine  *hybrid.Engine
	logger  *slog.Logger
	persist Persister
}

// Option configures a Server at construction time.
type Option func(*Server)

// WithPersister attaches a durable store that mirrors add_document and
// delete_document calls. Persistence failures are logged, not returned
// to the caller, since the in-memory engine has already applied the
// change by the time persistence runs.
func WithPersister(p Persister) Option {
	return func(s *Server) { s.persist = p }
}

// New builds a Server over engine and registers its tools.
func New(engine *hybrid.Engine, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine: engine,
		logger: logger,
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    "hybridctl",
			Version: version.Version,
		}, nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *mcp.Server { return s.mcp }

// Serve runs the server on the given transport ("stdio" is the only
// one currently implemented).
func (s *Server) Serve(ctx context.Context, transport string) error {
	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && err != context.Canceled {
			s.logger.Error("mcp server stopped with error", "error", err)
		}
		return err
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "add_document",
		Description: "Index a document: text attributes by field name, and an optional dense vector.",
	}, s.handleAddDocument)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_document",
		Description: "Remove a previously indexed document by id.",
	}, s.handleDeleteDocument)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_text",
		Description: "BM25FS+ lexical search over indexed text fields.",
	}, s.handleSearchText)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_vector",
		Description: "Dense vector similarity search over indexed embeddings.",
	}, s.handleSearchVector)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_substring",
		Description: "Substring search over normalized document text.",
	}, s.handleSearchSubstring)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_fuzzy",
		Description: "Bounded-edit-distance fuzzy search over normalized document text.",
	}, s.handleSearchFuzzy)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_hybrid",
		Description: "Fused lexical + vector search (rrf, combsum, or weighted).",
	}, s.handleSearchHybrid)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "stats",
		Description: "Report document and vector counts for the current index.",
	}, s.handleStats)

	s.logger.Debug("registered mcp tools", "count", 8)
}

// AddDocumentInput is the add_document tool's input schema.
type AddDocumentInput struct {
	ID         string              `json:"id" jsonschema:"unique document identifier"`
	Attributes map[string][]string `json:"attributes" jsonschema:"text field name to ordered values"`
	Vector     []float32           `json:"vector,omitempty" jsonschema:"optional dense embedding"`
}

// AddDocumentOutput is the add_document tool's output schema.
type AddDocumentOutput struct {
	OK bool `json:"ok"`
}

func (s *Server) handleAddDocument(ctx context.Context, _ *mcp.CallToolRequest, in AddDocumentInput) (*mcp.CallToolResult, AddDocumentOutput, error) {
	if in.ID == "" {
		return nil, AddDocumentOutput{}, NewInvalidParamsError("id is required")
	}
	err := s.engine.Add(hybrid.Document{
		ID:         hybrid.DocumentID(in.ID),
		Attributes: in.Attributes,
		Vector:     in.Vector,
	})
	if err != nil {
		return nil, AddDocumentOutput{}, MapError(err)
	}
	if s.persist != nil {
		if err := s.persist.Put(ctx, in.ID, in.Attributes, in.Vector); err != nil {
			s.logger.Warn("failed to persist document", "id", in.ID, "error", err)
		}
	}
	return nil, AddDocumentOutput{OK: true}, nil
}

// DeleteDocumentInput is the delete_document tool's input schema.
type DeleteDocumentInput struct {
	ID string `json:"id" jsonschema:"document identifier to remove"`
}

// DeleteDocumentOutput is the delete_document tool's output schema.
type DeleteDocumentOutput struct {
	OK bool `json:"ok"`
}

func (s *Server) handleDeleteDocument(ctx context.Context, _ *mcp.CallToolRequest, in DeleteDocumentInput) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	if in.ID == "" {
		return nil, DeleteDocumentOutput{}, NewInvalidParamsError("id is required")
	}
	if err := s.engine.Delete(hybrid.DocumentID(in.ID)); err != nil {
		return nil, DeleteDocumentOutput{}, MapError(err)
	}
	if s.persist != nil {
		if err := s.persist.Delete(ctx, in.ID); err != nil {
			s.logger.Warn("failed to persist deletion", "id", in.ID, "error", err)
		}
	}
	return nil, DeleteDocumentOutput{OK: true}, nil
}

// ResultOutput is one scored document in any search tool's output.
type ResultOutput struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// SearchTextInput is the search_text tool's input schema.
type SearchTextInput struct {
	Query string `json:"query" jsonschema:"the search query"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum results, default 10"`
}

// SearchResultsOutput wraps a list of scored results.
type SearchResultsOutput struct {
	Results []ResultOutput `json:"results"`
}

func (s *Server) handleSearchText(_ context.Context, _ *mcp.CallToolRequest, in SearchTextInput) (*mcp.CallToolResult, SearchResultsOutput, error) {
	if in.Query == "" {
		return nil, SearchResultsOutput{}, NewInvalidParamsError("query is required")
	}
	return nil, toResultsOutput(s.engine.SearchText(in.Query, topKOrDefault(in.TopK))), nil
}

// SearchVectorInput is the search_vector tool's input schema.
type SearchVectorInput struct {
	Vector []float32 `json:"vector" jsonschema:"the query embedding"`
	TopK   int       `json:"top_k,omitempty" jsonschema:"maximum results, default 10"`
}

func (s *Server) handleSearchVector(_ context.Context, _ *mcp.CallToolRequest, in SearchVectorInput) (*mcp.CallToolResult, SearchResultsOutput, error) {
	if len(in.Vector) == 0 {
		return nil, SearchResultsOutput{}, NewInvalidParamsError("vector is required")
	}
	results, err := s.engine.SearchVector(in.Vector, topKOrDefault(in.TopK))
	if err != nil {
		return nil, SearchResultsOutput{}, MapError(err)
	}
	return nil, toResultsOutput(results), nil
}

// SearchSubstringInput is the search_substring tool's input schema.
type SearchSubstringInput struct {
	Query string `json:"query" jsonschema:"substring to search for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum results, default 10"`
}

func (s *Server) handleSearchSubstring(_ context.Context, _ *mcp.CallToolRequest, in SearchSubstringInput) (*mcp.CallToolResult, SearchResultsOutput, error) {
	if in.Query == "" {
		return nil, SearchResultsOutput{}, NewInvalidParamsError("query is required")
	}
	return nil, toResultsOutput(s.engine.SearchSubstring(in.Query, topKOrDefault(in.TopK))), nil
}

// SearchFuzzyInput is the search_fuzzy tool's input schema.
type SearchFuzzyInput struct {
	Query    string `json:"query" jsonschema:"text to fuzzy-match"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"maximum results, default 10"`
	MaxEdits int    `json:"max_edits,omitempty" jsonschema:"maximum edit distance, default 2"`
}

func (s *Server) handleSearchFuzzy(_ context.Context, _ *mcp.CallToolRequest, in SearchFuzzyInput) (*mcp.CallToolResult, SearchResultsOutput, error) {
	if in.Query == "" {
		return nil, SearchResultsOutput{}, NewInvalidParamsError("query is required")
	}
	maxEdits := in.MaxEdits
	if maxEdits <= 0 {
		maxEdits = 2
	}
	return nil, toResultsOutput(s.engine.SearchFuzzy(in.Query, topKOrDefault(in.TopK), maxEdits)), nil
}

// SearchHybridInput is the search_hybrid tool's input schema.
type SearchHybridInput struct {
	Query    string    `json:"query,omitempty" jsonschema:"text query, optional if vector is given"`
	Vector   []float32 `json:"vector,omitempty" jsonschema:"embedding query, optional if query is given"`
	TopK     int       `json:"top_k,omitempty" jsonschema:"maximum results, default 10"`
	Strategy string    `json:"strategy,omitempty" jsonschema:"rrf, combsum, or weighted; default rrf"`
	Alpha    float64   `json:"alpha,omitempty" jsonschema:"weighted-strategy blend factor, default 0.5"`
}

func (s *Server) handleSearchHybrid(_ context.Context, _ *mcp.CallToolRequest, in SearchHybridInput) (*mcp.CallToolResult, SearchResultsOutput, error) {
	strategy := hybrid.RRF
	switch in.Strategy {
	case "combsum":
		strategy = hybrid.CombSUM
	case "weighted":
		strategy = hybrid.WeightedSum
	}
	alpha := in.Alpha
	if alpha == 0 {
		alpha = 0.5
	}

	results, err := s.engine.SearchHybrid(in.Query, in.Vector, topKOrDefault(in.TopK), strategy, alpha)
	if err != nil {
		return nil, SearchResultsOutput{}, MapError(err)
	}
	return nil, toResultsOutput(results), nil
}

// StatsInput is the stats tool's (empty) input schema.
type StatsInput struct{}

// StatsOutput is the stats tool's output schema.
type StatsOutput struct {
	DocumentCount   int       `json:"document_count"`
	VectorCount     int       `json:"vector_count"`
	VectorDimension int       `json:"vector_dimension"`
	AsOf            time.Time `json:"as_of"`
}

func (s *Server) handleStats(_ context.Context, _ *mcp.CallToolRequest, _ StatsInput) (*mcp.CallToolResult, StatsOutput, error) {
	stats := s.engine.Stats()
	return nil, StatsOutput{
		DocumentCount:   stats.DocumentCount,
		VectorCount:     stats.VectorCount,
		VectorDimension: stats.VectorDimension,
		AsOf:            time.Now(),
	}, nil
}

func topKOrDefault(k int) int {
	if k <= 0 {
		return 10
	}
	return k
}

func toResultsOutput(results []hybrid.Result) SearchResultsOutput {
	out := SearchResultsOutput{Results: make([]ResultOutput, 0, len(results))}
	for _, r := range results {
		out.Results = append(out.Results, ResultOutput{ID: string(r.ID), Score: r.Score})
	}
	return out
}
