package bot

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/robertkozin/video-link-resolver/resolve"
)

const (
	defaultTitle = "Video Download"
	maxBodySize  = 64 * 1024
)

// MediaResolver is satisfied by *resolve.Orchestrator.
type MediaResolver interface {
	Resolve(ctx context.Context, mediaURL string) (*resolve.MediaLinkResult, error)
}

type downloadRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// API serves the JSON download endpoint and the tester page.
func API(res MediaResolver) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", home)
	mux.HandleFunc("POST /api/download", download(res))
	mux.Handle("/try", SimpleServer(res))
	return mux
}

func home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Video Downloader API is Running. Use POST /api/download",
	})
}

func download(res MediaResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req downloadRequest
		err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req)
		req.URL = strings.TrimSpace(req.URL)
		if err != nil || req.URL == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "url is required"})
			return
		}

		result, err := res.Resolve(r.Context(), req.URL)
		if err != nil {
			if !errors.Is(err, resolve.ErrResolutionFailed) {
				slog.ErrorContext(r.Context(), "unexpected resolve error", "url", req.URL, "err", err)
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: resolve.ErrResolutionFailed.Error()})
			return
		}

		writeJSON(w, http.StatusOK, withDefaults(result))
	}
}

// withDefaults returns a copy with caller side defaults filled in.
func withDefaults(res *resolve.MediaLinkResult) resolve.MediaLinkResult {
	out := *res
	if out.Title == "" {
		out.Title = defaultTitle
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writing response", "status", status, "err", err)
	}
}
