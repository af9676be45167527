// Package http exposes the Kinoflow builder and playback over a JSON API.
// The server is stateless: every authoring request loads the graph, runs
// the editor operation and saves the result; playback state lives in the
// session store.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kinoflow/kinoflow/internal/logging"
	"github.com/kinoflow/kinoflow/internal/runtime"
	"github.com/kinoflow/kinoflow/internal/validator"
	"github.com/kinoflow/kinoflow/pkg/builder"
	"github.com/kinoflow/kinoflow/pkg/domain"
	"github.com/kinoflow/kinoflow/pkg/observability"
	"github.com/kinoflow/kinoflow/pkg/ports"
	"github.com/kinoflow/kinoflow/pkg/session"
)

// Server carries the collaborators behind the HTTP surface.
type Server struct {
	Repo     ports.GraphRepository
	Sessions *session.Manager
	Recorder ports.ResponseRecorder
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithLogger sets the server's structured logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.Logger = logger }
}

// WithRecorder sets the response-recording collaborator.
func WithRecorder(rec ports.ResponseRecorder) ServerOption {
	return func(s *Server) { s.Recorder = rec }
}

// WithMetrics enables the /metrics endpoint backed by the registry.
func WithMetrics(reg *prometheus.Registry) ServerOption {
	return func(s *Server) {
		s.Registry = reg
		s.Metrics = observability.NewMetrics(reg)
	}
}

// NewServer creates an HTTP server over the repository and session
// manager.
func NewServer(repo ports.GraphRepository, sessions *session.Manager, opts ...ServerOption) *Server {
	s := &Server{
		Repo:     repo,
		Sessions: sessions,
		Logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/graphs", func(r chi.Router) {
		r.Post("/", s.createGraph)
		r.Route("/{graphID}", func(r chi.Router) {
			r.Get("/", s.getGraph)
			r.Put("/", s.putGraph)
			r.Delete("/", s.deleteGraph)
			r.Get("/issues", s.getIssues)

			r.Post("/steps", s.addStep)
			r.Route("/steps/{stepID}", func(r chi.Router) {
				r.Patch("/", s.patchStep)
				r.Delete("/", s.deleteStep)
				r.Post("/duplicate", s.duplicateStep)
				r.Put("/rules/{index}", s.setRuleTarget)
				r.Post("/commit", s.commitStep)
			})

			r.Post("/sessions", s.startSession)
			r.Post("/sessions/{sessionID}/answers", s.submitAnswer)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// withEditor loads the graph, runs fn against a fresh editor and saves
// the mutated document back. Local state is authoritative: a failed save
// is reported so the author can retry without losing work.
func (s *Server) withEditor(w http.ResponseWriter, r *http.Request, fn func(*builder.Editor) (any, int)) {
	graphID := chi.URLParam(r, "graphID")
	g, err := s.Repo.Load(r.Context(), graphID)
	if err != nil {
		if errors.Is(err, domain.ErrGraphNotFound) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	ed := builder.NewEditor(builder.Open(g), builder.WithLogger(s.Logger))
	resp, status := fn(ed)

	if err := s.Repo.Save(r.Context(), g); err != nil {
		s.Logger.Error("graph save failed", "graph", graphID, "err", err)
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("save failed: %w", err))
		return
	}
	s.writeJSON(w, status, resp)
}

// --- authoring handlers ---

type createGraphRequest struct {
	Name string `json:"name"`
}

func (s *Server) createGraph(w http.ResponseWriter, r *http.Request) {
	var body createGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	store := builder.NewStore(body.Name)
	if err := s.Repo.Save(r.Context(), store.Graph()); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, store.Graph())
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.Repo.Load(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		if errors.Is(err, domain.ErrGraphNotFound) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, g)
}

func (s *Server) putGraph(w http.ResponseWriter, r *http.Request) {
	var g domain.Graph
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid graph document: %w", err))
		return
	}
	g.ID = chi.URLParam(r, "graphID")
	if err := s.Repo.Save(r.Context(), &g); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, &g)
}

func (s *Server) deleteGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.Repo.Delete(r.Context(), chi.URLParam(r, "graphID")); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getIssues(w http.ResponseWriter, r *http.Request) {
	g, err := s.Repo.Load(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	issues := validator.Validate(g)
	s.writeJSON(w, http.StatusOK, map[string]any{"issues": issues})
}

type addStepRequest struct {
	Position domain.Position `json:"position"`
}

func (s *Server) addStep(w http.ResponseWriter, r *http.Request) {
	var body addStepRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	s.withEditor(w, r, func(ed *builder.Editor) (any, int) {
		return ed.AddStep(body.Position), http.StatusCreated
	})
}

func (s *Server) duplicateStep(w http.ResponseWriter, r *http.Request) {
	stepID := chi.URLParam(r, "stepID")
	s.withEditor(w, r, func(ed *builder.Editor) (any, int) {
		n := ed.DuplicateStep(stepID)
		if n == nil {
			return map[string]string{"error": "step not found"}, http.StatusNotFound
		}
		return n, http.StatusCreated
	})
}

func (s *Server) deleteStep(w http.ResponseWriter, r *http.Request) {
	stepID := chi.URLParam(r, "stepID")
	s.withEditor(w, r, func(ed *builder.Editor) (any, int) {
		ed.DeleteStep(stepID)
		return map[string]string{"status": "deleted"}, http.StatusOK
	})
}

func (s *Server) patchStep(w http.ResponseWriter, r *http.Request) {
	var body patchStepRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	stepID := chi.URLParam(r, "stepID")
	s.withEditor(w, r, func(ed *builder.Editor) (any, int) {
		if err := applyStepPatch(ed, stepID, body); err != nil {
			return map[string]string{"error": err.Error()}, http.StatusBadRequest
		}
		n := ed.Store().NodeByID(stepID)
		if n == nil {
			return map[string]string{"error": "step not found"}, http.StatusNotFound
		}
		return n, http.StatusOK
	})
}

type setRuleTargetRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (s *Server) setRuleTarget(w http.ResponseWriter, r *http.Request) {
	var body setRuleTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	var index int
	if _, err := fmt.Sscanf(chi.URLParam(r, "index"), "%d", &index); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid rule index"))
		return
	}
	stepID := chi.URLParam(r, "stepID")
	s.withEditor(w, r, func(ed *builder.Editor) (any, int) {
		ed.SetRuleTarget(stepID, index, builder.RuleField(body.Field), body.Value)
		n := ed.Store().NodeByID(stepID)
		if n == nil {
			return map[string]string{"error": "step not found"}, http.StatusNotFound
		}
		return n, http.StatusOK
	})
}

func (s *Server) commitStep(w http.ResponseWriter, r *http.Request) {
	stepID := chi.URLParam(r, "stepID")
	s.withEditor(w, r, func(ed *builder.Editor) (any, int) {
		warnings := ed.CommitStep(stepID)
		return map[string]any{"warnings": warnings}, http.StatusOK
	})
}

// --- playback handlers ---

func (s *Server) playbackEngine(g *domain.Graph) *runtime.Engine {
	opts := []runtime.EngineOption{runtime.WithLogger(s.Logger)}
	if s.Recorder != nil {
		opts = append(opts, runtime.WithRecorder(s.Recorder))
	}
	if s.Metrics != nil {
		opts = append(opts, runtime.WithHooks(s.Metrics.Hooks()))
	}
	return runtime.NewEngine(g, opts...)
}

type startSessionRequest struct {
	Password string `json:"password,omitempty"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var body startSessionRequest
	// The body is optional; only password-protected campaigns need one.
	_ = json.NewDecoder(r.Body).Decode(&body)

	g, err := s.Repo.Load(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if g.Settings.Password != "" && body.Password != g.Settings.Password {
		s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "password required"})
		return
	}
	if open, reason := g.Settings.OpenAt(time.Now(), 0); !open {
		s.writeJSON(w, http.StatusForbidden, map[string]string{"error": reason})
		return
	}

	eng := s.playbackEngine(g)
	state := eng.Start(r.Context())
	if err := s.Sessions.Save(r.Context(), state.SessionID, state); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if s.Metrics != nil {
		s.Metrics.SessionsStarted.Inc()
	}
	s.writeJSON(w, http.StatusCreated, state)
}

type submitAnswerRequest struct {
	Answer domain.Answer `json:"answer"`
}

type submitAnswerResponse struct {
	Outcome domain.Outcome       `json:"outcome"`
	Session *domain.SessionState `json:"session"`
}

func (s *Server) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var body submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	g, err := s.Repo.Load(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	eng := s.playbackEngine(g)

	var resp submitAnswerResponse
	err = s.Sessions.WithLock(r.Context(), sessionID, func(ctx context.Context) error {
		state, err := s.Sessions.Store().Load(ctx, sessionID)
		if err != nil {
			return err
		}
		outcome, err := eng.SubmitAnswer(ctx, state, body.Answer)
		if err != nil {
			return err
		}
		if err := s.Sessions.Store().Save(ctx, sessionID, state); err != nil {
			return err
		}
		resp = submitAnswerResponse{Outcome: outcome, Session: state}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			s.writeError(w, http.StatusNotFound, err)
		case errors.Is(err, domain.ErrSessionEnded):
			s.writeError(w, http.StatusConflict, err)
		default:
			s.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}
