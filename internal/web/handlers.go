package web

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/atomic"

	"Yui-Editor/studio/internal/interfaces"
	"Yui-Editor/studio/internal/storage"
)

// Envelope status codes
const (
	statusFail = 0
	statusOK   = 1
)

// Reported by engine/meta
const (
	EngineName    = "yui-studio"
	EngineVersion = "1.0.0"
)

// maxUploadMemory bounds the multipart parser's in-memory buffer
const maxUploadMemory = 32 << 20

// Envelope is the body of every backend response
type Envelope struct {
	Status  int    `json:"status"`
	Msg     string `json:"msg"`
	Content any    `json:"content"`
}

// Handlers serves the authoring backend API on top of a StoryStore
type Handlers struct {
	store    interfaces.StoryStore
	files    *storage.FileStore
	logger   *log.Logger
	requests atomic.Int64
}

func NewHandlers(store interfaces.StoryStore, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.Default()
	}
	return &Handlers{
		store:  store,
		logger: logger,
	}
}

// WithFiles keeps uploaded bytes in fs and serves them under /files
func (h *Handlers) WithFiles(fs *storage.FileStore) *Handlers {
	h.files = fs
	return h
}

// Requests returns how many API requests reached the handlers
func (h *Handlers) Requests() int64 {
	return h.requests.Load()
}

func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"service":  EngineName,
		"requests": h.Requests(),
	})
}

// reply writes a successful envelope
func (h *Handlers) reply(w http.ResponseWriter, content any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(Envelope{Status: statusOK, Content: content})
}

// replyFail writes a failed envelope. The HTTP status stays 200; the
// envelope status carries the outcome.
func (h *Handlers) replyFail(w http.ResponseWriter, r *http.Request, msg string) {
	h.logger.Printf("FAIL: %s %s: %s", r.Method, r.URL.Path, msg)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(Envelope{Status: statusFail, Msg: msg})
}

// count tallies requests that reach the API routes
func (h *Handlers) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.requests.Inc()
		next.ServeHTTP(w, r)
	})
}

// CORS middleware
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Max-Age", "300")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter mounts every backend endpoint. Paths are matched with or
// without the trailing slash the client appends.
func NewRouter(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Request logging middleware
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.logger.Printf("REQUEST: %s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	})
	r.Use(middleware.StripSlashes)
	r.Use(corsMiddleware)

	r.Get("/health", h.HealthCheck)
	if h.files != nil {
		r.Get("/files/{task_id}/{rtype}/{name}", h.ServeResource)
	}

	r.Group(func(r chi.Router) {
		r.Use(h.count)

		r.HandleFunc("/init_project", h.InitProject)
		r.HandleFunc("/list_projects", h.ListProjects)
		r.HandleFunc("/remove_project", h.RemoveProject)
		r.HandleFunc("/remove_project_by_id", h.RemoveProjectByID)

		r.HandleFunc("/get_res", h.ListResources)
		r.HandleFunc("/upload", h.Upload)
		r.HandleFunc("/upload_files", h.UploadFiles)
		r.HandleFunc("/remove_res", h.RemoveResource)
		r.HandleFunc("/rename_res", h.RenameResource)

		r.Route("/engine", func(r chi.Router) {
			r.HandleFunc("/get_chapters", h.ListChapters)
			r.HandleFunc("/add_chapter", h.AddChapter)
			r.HandleFunc("/remove_chapter", h.RemoveChapter)
			r.HandleFunc("/get_frame_ids", h.ListFrameIDs)
			r.HandleFunc("/get_frame_names", h.ListFrameNames)
			r.HandleFunc("/append_frame", h.AppendFrame)
			r.HandleFunc("/remove_frame", h.RemoveFrame)
			r.HandleFunc("/get_frame", h.GetFrame)
			r.HandleFunc("/modify_frame", h.ModifyFrame)
			r.HandleFunc("/commit", h.Commit)
			r.HandleFunc("/meta", h.EngineMeta)
			r.HandleFunc("/get_struct", h.GetStruct)
		})
	})

	return r
}
