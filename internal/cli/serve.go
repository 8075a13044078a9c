package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nabshq/nabs/pkg/graph"
	"github.com/nabshq/nabs/pkg/repo"
	"github.com/nabshq/nabs/pkg/target"
)

// newServeCmd creates the serve command, a small HTTP API over the
// workspace dependency graph. The graph is rebuilt per request so the
// server always reflects the manifests on disk; nothing is cached or
// persisted.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dependency graph over HTTP",
		Long: `Serve the workspace dependency graph over HTTP.

Endpoints:
  GET  /api/graph   the full graph as JSON
  POST /api/rdeps   {"targets": ["pkgs/a"]} -> packages affected by a change`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			ws, err := openWorkspace(c.Context())
			if err != nil {
				return err
			}
			return runServe(c.Context(), ws, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}

func runServe(ctx context.Context, r repo.Repository, addr string) error {
	logger := loggerFromContext(ctx)

	srv := &http.Server{
		Addr:        addr,
		Handler:     newRouter(r, logger),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("serving dependency graph", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

func newRouter(r repo.Repository, logger *log.Logger) http.Handler {
	router := chi.NewRouter()
	router.Use(requestLogger(logger))

	router.Get("/api/graph", handleGraph(r))
	router.Post("/api/rdeps", handleRDeps(r))

	return router
}

// requestLogger tags every request with a uuid and logs method, path,
// status and duration. The request-scoped logger rides on the context so
// handlers log with the request id attached.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			reqLogger := logger.With("request_id", uuid.NewString())

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, req.WithContext(withLogger(req.Context(), reqLogger)))

			reqLogger.Info("handled request",
				"method", req.Method, "path", req.URL.Path,
				"status", sw.status, "duration", time.Since(start).Round(time.Millisecond))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func handleGraph(r repo.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		g, _, err := buildWorkspaceGraph(req.Context(), r)
		if err != nil {
			writeError(w, req, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, req, http.StatusOK, graph.FromTargetGraph(g))
	}
}

type rdepsRequest struct {
	Targets []string `json:"targets"`
}

type rdepsResponse struct {
	Targets []string `json:"targets"`
}

func handleRDeps(r repo.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body rdepsRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, req, http.StatusBadRequest, err)
			return
		}
		if len(body.Targets) == 0 {
			writeJSON(w, req, http.StatusOK, rdepsResponse{Targets: []string{}})
			return
		}

		g, _, err := buildWorkspaceGraph(req.Context(), r)
		if err != nil {
			writeError(w, req, http.StatusInternalServerError, err)
			return
		}

		// requests name directories; expand each into all its flavors
		byName := make(map[string][]target.Target)
		for _, n := range g.Nodes() {
			byName[n.Name.String()] = append(byName[n.Name.String()], n)
		}
		var starts []target.Target
		for _, name := range body.Targets {
			ts, ok := byName[name]
			if !ok {
				writeError(w, req, http.StatusNotFound,
					fmt.Errorf("target %s is not a package in the graph", name))
				return
			}
			starts = append(starts, ts...)
		}

		affected, err := g.RDeps(starts)
		if err != nil {
			writeError(w, req, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, req, http.StatusOK, rdepsResponse{Targets: canonicalNames(affected)})
	}
}

func writeJSON(w http.ResponseWriter, req *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		loggerFromContext(req.Context()).Warn("failed writing response", "cause", err)
	}
}

func writeError(w http.ResponseWriter, req *http.Request, status int, err error) {
	loggerFromContext(req.Context()).Warn("request failed", "status", status, "cause", err)
	writeJSON(w, req, status, map[string]string{"error": err.Error()})
}
