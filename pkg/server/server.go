// Package server is the HTTP boundary that replaces the original reactive UI:
// one upload, one synchronous remix, one response.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/aurwrite/aurwrite/pkg/pipeline"
	"github.com/aurwrite/aurwrite/pkg/styles"
	"github.com/gorilla/mux"
)

// Upload cap, matching the original UI's limit.
const maxUploadBytes = 200 << 20

// Remixer is what the handlers need from the pipeline.
type Remixer interface {
	Remix(ctx context.Context, audio []byte, filename, style string) (*pipeline.Run, error)
}

type Server struct {
	remixer Remixer
	catalog *styles.Catalog
	engines func() map[string]bool
	router  *mux.Router
}

// New wires the routes. engines reports narration engine availability for
// the health endpoint and may be nil.
func New(remixer Remixer, catalog *styles.Catalog, engines func() map[string]bool) *Server {
	s := &Server{
		remixer: remixer,
		catalog: catalog,
		engines: engines,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/styles", s.handleStyles).Methods(http.MethodGet)
	r.HandleFunc("/api/remix", s.handleRemix).Methods(http.MethodPost)
	s.router = r

	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) ListenAndServe(addr string) error {
	log.Printf("Listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

type remixResponse struct {
	ID           string `json:"id"`
	Transcript   string `json:"transcript"`
	Story        string `json:"story"`
	AudioBase64  string `json:"audio_base64"`
	DownloadName string `json:"download_name"`
}

type errorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := map[string]any{"status": "ok"}
	if s.engines != nil {
		report["engines"] = s.engines()
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"styles": s.catalog.Names()})
}

func (s *Server) handleRemix(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form: " + err.Error()})
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing audio file"})
		return
	}
	defer file.Close()

	style := r.FormValue("style")
	if style == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing style"})
		return
	}

	audio, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "reading upload: " + err.Error()})
		return
	}

	run, err := s.remixer.Remix(r.Context(), audio, header.Filename, style)
	if err != nil {
		switch {
		case errors.Is(err, styles.ErrUnknownStyle):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, pipeline.ErrEmptyTranscript):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error: err.Error(),
				Hint:  "Transcription came back empty. Try a clearer recording.",
			})
		default:
			log.Printf("remix failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "remix failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, remixResponse{
		ID:           run.ID,
		Transcript:   run.Transcript,
		Story:        run.Story,
		AudioBase64:  base64.StdEncoding.EncodeToString(run.Audio),
		DownloadName: run.DownloadName,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("writing response: %v", err)
	}
}
