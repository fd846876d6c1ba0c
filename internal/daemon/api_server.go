package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"veritext/internal/config"
	"veritext/internal/detector"
	"veritext/internal/runs"
	"veritext/internal/services"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

type detectRequest struct {
	Text string `json:"text"`
	Path string `json:"path"`
}

type runView struct {
	ID        string          `json:"id"`
	Mode      string          `json:"mode"`
	Status    string          `json:"status"`
	Error     string          `json:"error,omitempty"`
	Metrics   json.RawMessage `json:"metrics,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

const maxDetectBody = 1 << 20 // 1 MiB of request body is plenty of text

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address is empty")
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", srv.handleHealth)
	mux.HandleFunc("/api/detect", srv.handleDetect)
	mux.HandleFunc("/api/runs", srv.handleRuns)
	mux.HandleFunc("/api/runs/", srv.handleRun)
	mux.HandleFunc("/api/reload", srv.handleReload)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	health := s.daemon.detector.Health()
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"running":     status.Running,
		"pid":         status.PID,
		"model_ready": health.Ready,
		"features":    health.Features,
		"detail":      health.Detail,
	})
}

func (s *apiServer) handleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req detectRequest
	body := http.MaxBytesReader(w, r.Body, maxDetectBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		result *detector.Result
		err    error
	)
	switch {
	case req.Path != "" && req.Text != "":
		s.writeError(w, http.StatusBadRequest, "provide either text or path, not both")
		return
	case req.Path != "":
		result, err = s.daemon.detector.DetectFile(r.Context(), req.Path)
	default:
		result, err = s.daemon.detector.Detect(r.Context(), req.Text)
	}
	if err != nil {
		s.writeError(w, statusForError(err), services.SafeMessage(err))
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	list, err := s.daemon.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, services.SafeMessage(err))
		return
	}
	views := make([]runView, 0, len(list))
	for _, run := range list {
		views = append(views, toRunView(run))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": views})
}

func (s *apiServer) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	run, err := s.daemon.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, statusForError(err), services.SafeMessage(err))
		return
	}
	s.writeJSON(w, http.StatusOK, toRunView(run))
}

// handleReload re-reads the model bundle, letting an operator pick up a
// freshly published model without restarting the daemon.
func (s *apiServer) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.daemon.detector.Reload(); err != nil {
		s.writeError(w, statusForError(err), services.SafeMessage(err))
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.detector.Health())
}

func toRunView(run *runs.Run) runView {
	view := runView{
		ID:        run.ID,
		Mode:      run.Mode,
		Status:    string(run.Status),
		Error:     run.ErrorDetail,
		CreatedAt: run.CreatedAt,
		UpdatedAt: run.UpdatedAt,
	}
	if run.MetricsJSON != "" {
		view.Metrics = json.RawMessage(run.MetricsJSON)
	}
	return view
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrModelNotTrained):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode api response", slog.String("error", err.Error()))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
