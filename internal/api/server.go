// Package api exposes the platform over HTTP: tutorial import/export and
// restructuring, publication jobs, and the community surfaces.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avergnaud/atelier/internal/config"
	"github.com/avergnaud/atelier/internal/content"
	"github.com/avergnaud/atelier/internal/publish"
	"github.com/avergnaud/atelier/internal/store"
)

// Server is the HTTP API server for atelier.
type Server struct {
	router    chi.Router
	svc       *content.Service
	community *store.CommunityStore
	publisher *publish.Publisher
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(svc *content.Service, community *store.CommunityStore, publisher *publish.Publisher, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		svc:       svc,
		community: community,
		publisher: publisher,
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.AtelierAPIKey, s.log))

		// Tutorial content.
		r.Post("/api/tutorials/import", s.handleImport)
		r.Post("/api/tutorials/import/upload", s.handleImportUpload)
		r.Get("/api/tutorials/{tutorialID}", s.handleGetTutorial)
		r.Patch("/api/tutorials/{tutorialID}", s.handleEditTutorial)
		r.Get("/api/tutorials/{tutorialID}/export", s.handleExport)
		r.Get("/api/tutorials/{tutorialID}/markdown", s.handleMarkdown)
		r.Get("/api/tutorials/{tutorialID}/html", s.handleTutorialHTML)

		// Restructuring.
		r.Post("/api/parts/{partID}/move", s.handleMovePart)
		r.Delete("/api/parts/{partID}", s.handleDeletePart)
		r.Post("/api/parts/{partID}/chapters", s.handleAddChapter)
		r.Post("/api/chapters/{chapterID}/move", s.handleMoveChapter)
		r.Delete("/api/chapters/{chapterID}", s.handleDeleteChapter)
		r.Post("/api/chapters/{chapterID}/extracts", s.handleAddExtract)
		r.Post("/api/extracts/{extractID}/move", s.handleMoveExtract)
		r.Delete("/api/extracts/{extractID}", s.handleDeleteExtract)

		// Publication.
		r.Post("/api/tutorials/{tutorialID}/publish", s.handlePublish)
		r.Get("/api/publish/{jobID}/status", s.handlePublishStatus)
		r.Get("/api/stats/render", s.handleRenderStats)

		// Community.
		r.Get("/api/forums", s.handleListForums)
		r.Post("/api/forums", s.handleCreateForum)
		r.Get("/api/forums/{forumID}/topics", s.handleListTopics)
		r.Post("/api/forums/{forumID}/topics", s.handleCreateTopic)
		r.Get("/api/topics/{topicID}/posts", s.handleListPosts)
		r.Post("/api/topics/{topicID}/posts", s.handleCreatePost)
		r.Patch("/api/topics/{topicID}", s.handleEditTopic)

		r.Get("/api/members", s.handleListMembers)
		r.Post("/api/members", s.handleCreateMember)
		r.Get("/api/members/{username}", s.handleGetMember)
		r.Patch("/api/members/{username}", s.handleEditMember)

		r.Post("/api/messages/threads", s.handleCreateThread)
		r.Get("/api/messages/threads", s.handleListThreads)
		r.Get("/api/messages/threads/{threadID}", s.handleGetThread)
		r.Post("/api/messages/threads/{threadID}", s.handleCreateMessage)

		r.Post("/api/galleries", s.handleCreateGallery)
		r.Get("/api/galleries/{galleryID}", s.handleGetGallery)
		r.Delete("/api/galleries/{galleryID}", s.handleDeleteGallery)
		r.Post("/api/galleries/{galleryID}/images", s.handleAddImage)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
