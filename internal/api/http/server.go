package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/hindsight"
	"github.com/aretw0/hindsight/api"
	"github.com/aretw0/hindsight/internal/logging"
	"github.com/aretw0/hindsight/internal/metrics"
	"github.com/aretw0/hindsight/pkg/hmm"
	"github.com/aretw0/hindsight/pkg/modelfile"
	"github.com/aretw0/hindsight/pkg/ports"
	"github.com/aretw0/hindsight/pkg/sample"
)

// Server serves the inference and model registry API on top of a
// ports.ModelStore. Models are compiled per request; compilation is cheap
// next to the JSON round trip for the model sizes this API targets.
type Server struct {
	store   ports.ModelStore
	metrics *metrics.Metrics
	logger  *slog.Logger
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

// NewHandler creates the HTTP handler for the inference API. It fails when
// the embedded OpenAPI contract does not load, since request validation
// depends on it.
func NewHandler(store ports.ModelStore, opts ...Option) (http.Handler, error) {
	s := &Server{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}

	validator, err := newSpecValidator()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Get("/health", s.getHealth)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(api.Spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Use(validator.middleware(s.logger))
		r.Post("/smooth", s.postSmooth)
		r.Post("/filter", s.postFilter)
		r.Post("/likelihood", s.postLikelihood)
		r.Post("/sample", s.postSample)
		r.Get("/models", s.listModels)
		r.Get("/models/{name}", s.getModel)
		r.Put("/models/{name}", s.putModel)
		r.Delete("/models/{name}", s.deleteModel)
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Hindsight API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// specValidator checks incoming requests against the embedded contract
// before they reach the handlers.
type specValidator struct {
	router routers.Router
}

func newSpecValidator() (*specValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(api.Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build OpenAPI router: %w", err)
	}
	return &specValidator{router: router}, nil
}

func (v *specValidator) middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := v.router.FindRoute(r)
			if err != nil {
				// Not part of the contract; let the mux answer.
				next.ServeHTTP(w, r)
				return
			}
			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				logger.Warn("Request failed contract validation", "path", r.URL.Path, "err", err)
				http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// -- Request/response bodies --

type inferenceRequest struct {
	Model        string `json:"model"`
	Observations []int  `json:"observations"`
	Timestep     *int   `json:"timestep,omitempty"`
}

// posteriorResponse carries either the whole sequence (Steps) or, when the
// request named a timestep, that single distribution (Timestep + Step).
type posteriorResponse struct {
	Model         string      `json:"model"`
	Steps         [][]float64 `json:"steps,omitempty"`
	Timestep      *int        `json:"timestep,omitempty"`
	Step          []float64   `json:"step,omitempty"`
	LogLikelihood float64     `json:"logLikelihood"`
}

type likelihoodResponse struct {
	Model         string  `json:"model"`
	LogLikelihood float64 `json:"logLikelihood"`
}

type sampleRequest struct {
	Model string `json:"model"`
	Steps int    `json:"steps"`
	Seed  *int64 `json:"seed,omitempty"`
}

type sampleResponse struct {
	Model    string   `json:"model"`
	Hidden   []int    `json:"hidden"`
	Observed []int    `json:"observed"`
	States   []string `json:"states,omitempty"`
	Symbols  []string `json:"symbols,omitempty"`
}

// -- Inference handlers --

// postSmooth handles the POST /v1/smooth request.
func (s *Server) postSmooth(w http.ResponseWriter, r *http.Request) {
	s.infer(w, r, metrics.OpSmooth, (*hindsight.Engine).Smooth)
}

// postFilter handles the POST /v1/filter request.
func (s *Server) postFilter(w http.ResponseWriter, r *http.Request) {
	s.infer(w, r, metrics.OpFilter, (*hindsight.Engine).Filter)
}

func (s *Server) infer(w http.ResponseWriter, r *http.Request, op string,
	run func(*hindsight.Engine, []int) (*hindsight.Posterior, error)) {

	var body inferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Inference: invalid request body", "op", op, "err", err)
		return
	}

	eng, err := s.engine(r, body.Model)
	if err != nil {
		s.writeError(w, op, err)
		return
	}

	start := time.Now()
	post, err := run(eng, body.Observations)
	s.metrics.Observe(op, time.Since(start).Seconds(), err)
	if err != nil {
		s.writeError(w, op, err)
		return
	}

	resp := posteriorResponse{Model: body.Model, LogLikelihood: post.LogLikelihood}
	if body.Timestep != nil {
		t := *body.Timestep
		if t < 0 || t >= len(post.Steps) {
			s.writeError(w, op, fmt.Errorf("%w: %d not in [0, %d)", hmm.ErrInvalidTimestep, t, len(post.Steps)))
			return
		}
		resp.Timestep = body.Timestep
		resp.Step = post.Steps[t]
	} else {
		resp.Steps = post.Steps
	}
	s.writeJSON(w, resp)
}

// postLikelihood handles the POST /v1/likelihood request.
func (s *Server) postLikelihood(w http.ResponseWriter, r *http.Request) {
	var body inferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Likelihood: invalid request body", "err", err)
		return
	}

	eng, err := s.engine(r, body.Model)
	if err != nil {
		s.writeError(w, metrics.OpLikelihood, err)
		return
	}

	start := time.Now()
	logLik, err := eng.LogLikelihood(body.Observations)
	s.metrics.Observe(metrics.OpLikelihood, time.Since(start).Seconds(), err)
	if err != nil {
		s.writeError(w, metrics.OpLikelihood, err)
		return
	}

	s.writeJSON(w, likelihoodResponse{Model: body.Model, LogLikelihood: logLik})
}

// postSample handles the POST /v1/sample request.
func (s *Server) postSample(w http.ResponseWriter, r *http.Request) {
	var body sampleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Sample: invalid request body", "err", err)
		return
	}

	file, err := s.loadFile(r, body.Model)
	if err != nil {
		s.writeError(w, metrics.OpSample, err)
		return
	}
	opts := []hindsight.Option{hindsight.WithLogger(s.logger)}
	if body.Seed != nil {
		opts = append(opts, hindsight.WithSeed(*body.Seed))
	}
	eng, err := hindsight.FromFile(file, opts...)
	if err != nil {
		s.writeError(w, metrics.OpSample, err)
		return
	}

	start := time.Now()
	traj, err := eng.Sample(body.Steps)
	s.metrics.Observe(metrics.OpSample, time.Since(start).Seconds(), err)
	if err != nil {
		s.writeError(w, metrics.OpSample, err)
		return
	}
	s.metrics.SampledSteps.Add(float64(len(traj.Hidden)))

	s.writeJSON(w, sampleResponse{
		Model:    body.Model,
		Hidden:   traj.Hidden,
		Observed: traj.Observed,
		States:   eng.StateLabels(),
		Symbols:  eng.SymbolLabels(),
	})
}

// -- Registry handlers --

// listModels handles the GET /v1/models request.
func (s *Server) listModels(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, "ListModels", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, map[string][]string{"models": names})
}

// getModel handles the GET /v1/models/{name} request.
func (s *Server) getModel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	file, err := s.store.Load(r.Context(), name)
	if err != nil {
		s.writeError(w, "GetModel", err)
		return
	}
	s.writeJSON(w, file)
}

// putModel handles the PUT /v1/models/{name} request. The document must
// compile before it is stored; the path segment wins over any name field in
// the body.
func (s *Server) putModel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var file modelfile.File
	if err := json.NewDecoder(r.Body).Decode(&file); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PutModel: invalid request body", "err", err)
		return
	}
	file.Name = name

	if _, err := file.Model(); err != nil {
		s.writeError(w, "PutModel", err)
		return
	}
	if err := s.store.Save(r.Context(), name, &file); err != nil {
		s.writeError(w, "PutModel", err)
		return
	}

	s.logger.Info("Model registered", "model", name)
	w.WriteHeader(http.StatusNoContent)
}

// deleteModel handles the DELETE /v1/models/{name} request.
func (s *Server) deleteModel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.store.Delete(r.Context(), name); err != nil {
		s.writeError(w, "DeleteModel", err)
		return
	}
	s.logger.Info("Model removed", "model", name)
	w.WriteHeader(http.StatusNoContent)
}

// getHealth handles the GET /health request.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// -- Helpers --

func (s *Server) loadFile(r *http.Request, name string) (*modelfile.File, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: request names no model", ports.ErrModelNotFound)
	}
	return s.store.Load(r.Context(), name)
}

func (s *Server) engine(r *http.Request, name string) (*hindsight.Engine, error) {
	file, err := s.loadFile(r, name)
	if err != nil {
		return nil, err
	}
	return hindsight.FromFile(file, hindsight.WithLogger(s.logger))
}

// writeError maps domain errors onto HTTP status codes: invalid input 400,
// unknown model 404, zero-probability evidence 422, everything else 500.
func (s *Server) writeError(w http.ResponseWriter, what string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ports.ErrModelNotFound):
		status = http.StatusNotFound
	case errors.Is(err, hmm.ErrInvalidModel),
		errors.Is(err, hmm.ErrInvalidObservation),
		errors.Is(err, hmm.ErrInvalidTimestep),
		errors.Is(err, modelfile.ErrInvalidDocument),
		errors.Is(err, sample.ErrInvalidSteps):
		status = http.StatusBadRequest
	case errors.Is(err, hmm.ErrDegenerateMarginal):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(what+" failed", "err", err)
	} else {
		s.logger.Warn(what+" rejected", "status", status, "err", err)
	}
	http.Error(w, fmt.Sprintf("%s error: %v", what, err), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}
