package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/elnormous/contenttype"
	"github.com/google/uuid"
	"github.com/mcncl/json2md/internal/present"
)

const requestIDHeader = "X-Request-Id"

var (
	jsonMediaType     = contenttype.NewMediaType("application/json")
	markdownMediaType = contenttype.NewMediaType("text/markdown")
	htmlMediaType     = contenttype.NewMediaType("text/html")
	// The JSON envelope comes first so clients without an Accept header get it.
	responseMediaTypes = []contenttype.MediaType{jsonMediaType, markdownMediaType, htmlMediaType}
)

// Handler returns the HTTP routes of the service.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /convert", s.handleConvert)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", jsonMediaType.String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

func (s *Service) handleConvert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	requestID := r.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, requestID)

	log := s.log.With(slog.String("request_id", requestID))
	ctx := r.Context()
	log.InfoContext(ctx, "http.convert.start")

	ctype, err := contenttype.GetMediaType(r)
	if err != nil || !ctype.Matches(jsonMediaType) {
		writeJSON(w, http.StatusUnsupportedMediaType, failure(http.StatusUnsupportedMediaType, "content-type must be application/json"))
		log.WarnContext(ctx, "content_type.unsupported")
		return
	}

	accepted, _, err := contenttype.GetAcceptableMediaType(r, responseMediaTypes)
	if err != nil {
		writeJSON(w, http.StatusNotAcceptable, failure(http.StatusNotAcceptable, "response can be application/json, text/markdown or text/html"))
		log.WarnContext(ctx, "accept.unsupported", slog.String("accept", r.Header.Get("Accept")))
		return
	}

	var req Request
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, failure(http.StatusRequestEntityTooLarge, "request body too large"))
			log.WarnContext(ctx, "json.decode.too_large", slog.Int64("limit", tooLarge.Limit))
			return
		}
		writeJSON(w, http.StatusBadRequest, failure(http.StatusBadRequest, "invalid request body: "+err.Error()))
		log.WarnContext(ctx, "json.decode.fail", slog.String("err", err.Error()))
		return
	}

	resp := s.convert(ctx, req, log)
	if resp.Code != http.StatusOK || accepted.Matches(jsonMediaType) {
		writeJSON(w, resp.Code, resp)
		log.InfoContext(ctx, "http.convert.done", slog.Int("status", resp.Code), slog.Duration("dur", time.Since(start)))
		return
	}

	out := *resp.Data
	format := present.FormatMarkdown
	if accepted.Matches(htmlMediaType) {
		format = present.FormatHTML
		out, err = present.HTML(out)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, failure(http.StatusInternalServerError, err.Error()))
			log.ErrorContext(ctx, "html.render.fail", slog.String("err", err.Error()))
			return
		}
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(out)); err != nil {
		log.ErrorContext(ctx, "http.write.fail", slog.String("err", err.Error()))
	}
	log.InfoContext(ctx, "http.convert.done", slog.Int("status", http.StatusOK), slog.String("format", string(format)), slog.Duration("dur", time.Since(start)))
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", jsonMediaType.String())
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// Run listens on cfg.Addr and serves until ctx is cancelled.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	return Serve(ctx, ln, cfg, logger)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully
// within cfg.ShutdownTimeout.
func Serve(ctx context.Context, ln net.Listener, cfg Config, logger *slog.Logger) error {
	svc := New(cfg, logger)
	srv := &http.Server{
		Handler:           svc.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		svc.log.Info("http.listen", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	svc.log.Info("http.shutdown")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
