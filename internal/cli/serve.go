package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/galvo/pkg/config"
	"github.com/matzehuels/galvo/pkg/errors"
	"github.com/matzehuels/galvo/pkg/laser"
	"github.com/matzehuels/galvo/pkg/observability"
	"github.com/matzehuels/galvo/pkg/pipeline"
)

const (
	defaultAddr    = ":8080"
	defaultMaxBody = 32 << 20

	headerRequestID = "X-Request-ID"
	headerFrames    = "X-Galvo-Frames"
	headerPoints    = "X-Galvo-Points"
	headerCacheHits = "X-Galvo-Cache-Hits"

	shutdownTimeout = 5 * time.Second
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr        string
	config      string
	maxBody     int64
	concurrency int
	cache       cacheFlags
}

// serveCommand creates the serve command, which exposes the render
// pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: defaultAddr, maxBody: defaultMaxBody}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render pipeline over HTTP",
		Long: `Serve the render pipeline over HTTP.

  POST /v1/render   JSON body {"frames": [...], "params": {...}, "sort": true, "center": true}
                    returns the ILDA stream (application/octet-stream)
  GET  /healthz     liveness probe

Request parameters override the server's configuration per request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "render parameter file (TOML)")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", opts.maxBody, "maximum request body size in bytes")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "frames rendered at once per request (default: one per CPU)")
	addCacheFlags(cmd, &opts.cache)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	params, err := loadParams(opts.config)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	s := &server{
		runner:      runner,
		params:      params,
		logger:      c.Logger,
		maxBody:     opts.maxBody,
		concurrency: opts.concurrency,
		refresh:     opts.cache.refresh,
	}
	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			c.Logger.Warn("shutdown", "error", err)
		}
	}()

	printInfo("Listening on %s", StyleLink.Render("http://"+opts.addr))
	c.Logger.Info("server started", "addr", opts.addr)

	if err := srv.ListenAndServe(); !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// =============================================================================
// Server
// =============================================================================

// server handles render requests with a shared runner.
type server struct {
	runner      *pipeline.Runner
	params      laser.Params
	logger      *log.Logger
	maxBody     int64
	concurrency int
	refresh     bool
}

// renderRequest is the body of POST /v1/render. Frames use the same
// document format as frame files.
type renderRequest struct {
	Frames []json.RawMessage `json:"frames"`
	Params map[string]any    `json:"params,omitempty"`
	Sort   *bool             `json:"sort,omitempty"`
	Center *bool             `json:"center,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/render", s.handleRender)

	return r
}

// requestID tags every request with an ID, echoes it in the response and
// reports the exchange to the HTTP hooks.
func (s *server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)

		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path, id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, id, status, time.Since(start))
		s.logger.Debug("handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"request_id", id,
			"duration", time.Since(start))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	opts, err := s.options(req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sources := make([]pipeline.Source, len(req.Frames))
	for i, raw := range req.Frames {
		src, err := pipeline.NewSource(fmt.Sprintf("frame-%04d", i), raw)
		if err != nil {
			s.writeError(w, err)
			return
		}
		sources[i] = src
	}

	res, err := s.runner.ExecuteSources(r.Context(), sources, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Encoded)))
	w.Header().Set(headerFrames, strconv.Itoa(len(res.Rendered)))
	w.Header().Set(headerPoints, strconv.Itoa(res.Stats.Points))
	w.Header().Set(headerCacheHits, strconv.Itoa(res.CacheHits))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Encoded)
}

// options builds the pipeline options of one request on top of the
// server's parameters.
func (s *server) options(req renderRequest) (pipeline.Options, error) {
	if len(req.Frames) == 0 {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "request has no frames")
	}

	params := s.params
	if err := config.Apply(&params, req.Params); err != nil {
		return pipeline.Options{}, err
	}

	opts := pipeline.Options{
		Params:      params,
		Concurrency: s.concurrency,
		Refresh:     s.refresh,
		Logger:      s.logger,
	}
	if req.Sort != nil {
		opts.NoSort = !*req.Sort
	}
	if req.Center != nil {
		opts.NoCenter = !*req.Center
	}
	return opts, nil
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case stderrors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.IsInputError(err):
		return http.StatusBadRequest
	case errors.IsLimitError(err):
		return http.StatusUnprocessableEntity
	case stderrors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("render request failed", "error", err)
	} else {
		s.logger.Debug("rejected request", "status", status, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:     err.Error(),
		Code:      string(errors.GetCode(err)),
		RequestID: w.Header().Get(headerRequestID),
	})
}
