package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/hindsight"
	"github.com/aretw0/hindsight/internal/logging"
	"github.com/aretw0/hindsight/internal/metrics"
	"github.com/aretw0/hindsight/internal/presentation/graph"
	"github.com/aretw0/hindsight/pkg/modelfile"
	"github.com/aretw0/hindsight/pkg/ports"
)

// SampleResult is the structured output of the sample_sequence tool.
type SampleResult struct {
	Model    string   `json:"model" jsonschema_description:"Name of the sampled model"`
	Hidden   []int    `json:"hidden" jsonschema_description:"Hidden state index per step"`
	Observed []int    `json:"observed" jsonschema_description:"Observation symbol index per step"`
	States   []string `json:"states,omitempty" jsonschema_description:"Labels for the hidden state indexes"`
	Symbols  []string `json:"symbols,omitempty" jsonschema_description:"Labels for the observation indexes"`
}

// PosteriorResult is the structured output of the posterior_marginals tool.
type PosteriorResult struct {
	Model         string      `json:"model" jsonschema_description:"Name of the queried model"`
	Mode          string      `json:"mode" jsonschema_description:"smooth (whole-sequence) or filter (prefix) conditioning"`
	Steps         [][]float64 `json:"steps,omitempty" jsonschema_description:"One distribution over hidden states per timestep"`
	Step          []float64   `json:"step,omitempty" jsonschema_description:"Distribution at the requested timestep"`
	Timestep      *int        `json:"timestep,omitempty" jsonschema_description:"The requested timestep, when one was given"`
	LogLikelihood float64     `json:"logLikelihood" jsonschema_description:"Log-probability of the whole observation sequence"`
}

// LikelihoodResult is the structured output of the sequence_likelihood tool.
type LikelihoodResult struct {
	Model         string  `json:"model" jsonschema_description:"Name of the queried model"`
	LogLikelihood float64 `json:"logLikelihood" jsonschema_description:"Log-probability of the observation sequence"`
}

// DescribeResult is the structured output of the describe_model tool.
type DescribeResult struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	States      []string    `json:"states"`
	Symbols     []string    `json:"symbols"`
	Initial     []float64   `json:"initial"`
	Transition  [][]float64 `json:"transition"`
	Emission    [][]float64 `json:"emission"`
	Mermaid     string      `json:"mermaid" jsonschema_description:"Mermaid flowchart of the transition structure"`
}

// Server exposes the inference engine and the model registry as an MCP
// server.
type Server struct {
	store     ports.ModelStore
	metrics   *metrics.Metrics
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option defines a functional option for configuring the Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics shares a collector set with other serving surfaces.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer creates a new MCP Server instance backed by the given registry.
func NewServer(store ports.ModelStore, opts ...Option) *Server {
	s := &Server{
		store:     store,
		mcpServer: server.NewMCPServer("hindsight-mcp", strings.TrimSpace(hindsight.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: sample_sequence
	sampleTool := mcp.NewTool("sample_sequence",
		mcp.WithDescription("Draw a synthetic hidden/observed trajectory from a registered model."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Name of a registered model")),
		mcp.WithNumber("steps", mcp.Required(), mcp.Description("Number of timesteps to sample (>= 1)")),
		mcp.WithNumber("seed", mcp.Description("Seed for reproducible draws (optional)")),
		mcp.WithOutputSchema[SampleResult](),
	)
	s.mcpServer.AddTool(sampleTool, mcp.NewStructuredToolHandler(s.handleSample))

	// TOOL: posterior_marginals
	posteriorTool := mcp.NewTool("posterior_marginals",
		mcp.WithDescription("Posterior distributions over hidden states given an observation sequence. "+
			"Mode 'smooth' conditions every step on the whole sequence; 'filter' conditions on the prefix."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Name of a registered model")),
		mcp.WithArray("observations", mcp.Required(),
			mcp.Description("Observation symbol indexes, one per timestep"),
			mcp.Items(map[string]any{"type": "integer"})),
		mcp.WithString("mode", mcp.Description("smooth (default) or filter")),
		mcp.WithNumber("timestep", mcp.Description("Return only the distribution at this timestep (optional)")),
		mcp.WithOutputSchema[PosteriorResult](),
	)
	s.mcpServer.AddTool(posteriorTool, mcp.NewStructuredToolHandler(s.handlePosterior))

	// TOOL: sequence_likelihood
	likelihoodTool := mcp.NewTool("sequence_likelihood",
		mcp.WithDescription("Log-likelihood of an observation sequence under a registered model."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Name of a registered model")),
		mcp.WithArray("observations", mcp.Required(),
			mcp.Description("Observation symbol indexes, one per timestep"),
			mcp.Items(map[string]any{"type": "integer"})),
		mcp.WithOutputSchema[LikelihoodResult](),
	)
	s.mcpServer.AddTool(likelihoodTool, mcp.NewStructuredToolHandler(s.handleLikelihood))

	// TOOL: describe_model
	describeTool := mcp.NewTool("describe_model",
		mcp.WithDescription("Full definition of a registered model, including a Mermaid chart of its transition structure."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Name of a registered model")),
		mcp.WithOutputSchema[DescribeResult](),
	)
	s.mcpServer.AddTool(describeTool, mcp.NewStructuredToolHandler(s.handleDescribe))

	// TOOL: list_models
	s.mcpServer.AddTool(mcp.NewTool("list_models",
		mcp.WithDescription("List the names of all registered models."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		names, err := s.store.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		if names == nil {
			names = []string{}
		}
		jsonBytes, _ := json.Marshal(map[string][]string{"models": names})
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Argument structs for the structured tools. MCP arguments arrive as
// map[string]interface{} with JSON numbers; mapstructure converts them into
// the typed fields.

type sampleArgs struct {
	Model string `mapstructure:"model"`
	Steps int    `mapstructure:"steps"`
	Seed  *int64 `mapstructure:"seed"`
}

type posteriorArgs struct {
	Model        string `mapstructure:"model"`
	Observations []int  `mapstructure:"observations"`
	Mode         string `mapstructure:"mode"`
	Timestep     *int   `mapstructure:"timestep"`
}

type likelihoodArgs struct {
	Model        string `mapstructure:"model"`
	Observations []int  `mapstructure:"observations"`
}

type describeArgs struct {
	Model string `mapstructure:"model"`
}

func (s *Server) handleSample(ctx context.Context, request mcp.CallToolRequest, raw map[string]interface{}) (SampleResult, error) {
	var args sampleArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return SampleResult{}, fmt.Errorf("invalid arguments: %w", err)
	}

	file, err := s.loadFile(ctx, args.Model)
	if err != nil {
		return SampleResult{}, err
	}
	opts := []hindsight.Option{hindsight.WithLogger(s.logger)}
	if args.Seed != nil {
		opts = append(opts, hindsight.WithSeed(*args.Seed))
	}
	eng, err := hindsight.FromFile(file, opts...)
	if err != nil {
		return SampleResult{}, err
	}

	start := time.Now()
	traj, err := eng.Sample(args.Steps)
	s.metrics.Observe(metrics.OpSample, time.Since(start).Seconds(), err)
	if err != nil {
		return SampleResult{}, fmt.Errorf("sample failed: %w", err)
	}
	s.metrics.SampledSteps.Add(float64(len(traj.Hidden)))

	return SampleResult{
		Model:    args.Model,
		Hidden:   traj.Hidden,
		Observed: traj.Observed,
		States:   eng.StateLabels(),
		Symbols:  eng.SymbolLabels(),
	}, nil
}

func (s *Server) handlePosterior(ctx context.Context, request mcp.CallToolRequest, raw map[string]interface{}) (PosteriorResult, error) {
	var args posteriorArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return PosteriorResult{}, fmt.Errorf("invalid arguments: %w", err)
	}

	mode := args.Mode
	if mode == "" {
		mode = "smooth"
	}

	eng, err := s.engine(ctx, args.Model)
	if err != nil {
		return PosteriorResult{}, err
	}

	op := metrics.OpSmooth
	run := eng.Smooth
	switch mode {
	case "smooth":
	case "filter":
		op = metrics.OpFilter
		run = eng.Filter
	default:
		return PosteriorResult{}, fmt.Errorf("unknown mode %q: want smooth or filter", mode)
	}

	start := time.Now()
	post, err := run(args.Observations)
	s.metrics.Observe(op, time.Since(start).Seconds(), err)
	if err != nil {
		return PosteriorResult{}, fmt.Errorf("%s failed: %w", mode, err)
	}

	result := PosteriorResult{
		Model:         args.Model,
		Mode:          mode,
		LogLikelihood: post.LogLikelihood,
	}
	if args.Timestep != nil {
		t := *args.Timestep
		if t < 0 || t >= len(post.Steps) {
			return PosteriorResult{}, fmt.Errorf("timestep %d out of range [0, %d)", t, len(post.Steps))
		}
		result.Timestep = args.Timestep
		result.Step = post.Steps[t]
	} else {
		result.Steps = post.Steps
	}
	return result, nil
}

func (s *Server) handleLikelihood(ctx context.Context, request mcp.CallToolRequest, raw map[string]interface{}) (LikelihoodResult, error) {
	var args likelihoodArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return LikelihoodResult{}, fmt.Errorf("invalid arguments: %w", err)
	}

	eng, err := s.engine(ctx, args.Model)
	if err != nil {
		return LikelihoodResult{}, err
	}

	start := time.Now()
	logLik, err := eng.LogLikelihood(args.Observations)
	s.metrics.Observe(metrics.OpLikelihood, time.Since(start).Seconds(), err)
	if err != nil {
		return LikelihoodResult{}, fmt.Errorf("likelihood failed: %w", err)
	}

	return LikelihoodResult{Model: args.Model, LogLikelihood: logLik}, nil
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest, raw map[string]interface{}) (DescribeResult, error) {
	var args describeArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return DescribeResult{}, fmt.Errorf("invalid arguments: %w", err)
	}

	file, err := s.loadFile(ctx, args.Model)
	if err != nil {
		return DescribeResult{}, err
	}

	return DescribeResult{
		Name:        file.Name,
		Description: file.Description,
		States:      file.StateLabels(),
		Symbols:     file.SymbolLabels(),
		Initial:     file.Initial,
		Transition:  file.Transition,
		Emission:    file.Emission,
		Mermaid:     graph.GenerateMermaid(file.StateLabels(), file.Transition, 0.01),
	}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: hindsight://models
	s.mcpServer.AddResource(mcp.NewResource("hindsight://models", "Registered Models",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		docs := make([]*modelfile.File, 0, len(names))
		for _, name := range names {
			file, err := s.store.Load(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("failed to load model %s: %w", name, err)
			}
			docs = append(docs, file)
		}
		jsonBytes, _ := json.Marshal(docs)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "hindsight://models",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func (s *Server) loadFile(ctx context.Context, name string) (*modelfile.File, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: no model named", ports.ErrModelNotFound)
	}
	return s.store.Load(ctx, name)
}

func (s *Server) engine(ctx context.Context, name string) (*hindsight.Engine, error) {
	file, err := s.loadFile(ctx, name)
	if err != nil {
		return nil, err
	}
	return hindsight.FromFile(file, hindsight.WithLogger(s.logger))
}
