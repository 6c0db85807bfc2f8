package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avergnaud/atelier/internal/content"
	"github.com/avergnaud/atelier/internal/model"
	"github.com/avergnaud/atelier/internal/render"
)

func pageParams(r *http.Request) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

func (s *Server) handleListForums(w http.ResponseWriter, r *http.Request) {
	forums, err := s.community.ListForums(r.Context())
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"forums": forums})
}

func (s *Server) handleCreateForum(w http.ResponseWriter, r *http.Request) {
	var f model.Forum
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if f.Title == "" {
		jsonError(w, "title is required", http.StatusBadRequest)
		return
	}
	if err := s.community.CreateForum(r.Context(), &f); err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	forumID, err := urlID(r, "forumID")
	if err != nil {
		jsonError(w, "invalid forum id", http.StatusBadRequest)
		return
	}
	limit, offset := pageParams(r)
	topics, err := s.community.TopicsOfForum(r.Context(), forumID, limit, offset)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

type createTopicRequest struct {
	AuthorID int64  `json:"author_id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Text     string `json:"text"`
}

func (s *Server) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	forumID, err := urlID(r, "forumID")
	if err != nil {
		jsonError(w, "invalid forum id", http.StatusBadRequest)
		return
	}
	var req createTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.Text == "" {
		jsonError(w, "title and text are required", http.StatusBadRequest)
		return
	}
	topic := &model.Topic{
		ForumID:  forumID,
		AuthorID: req.AuthorID,
		Title:    req.Title,
		Subtitle: req.Subtitle,
	}
	first := &model.Post{AuthorID: req.AuthorID, Text: req.Text}
	if err := s.community.CreateTopic(r.Context(), topic, first); err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

type editTopicRequest struct {
	IsSolved *bool `json:"is_solved,omitempty"`
	IsLocked *bool `json:"is_locked,omitempty"`
	IsSticky *bool `json:"is_sticky,omitempty"`
}

func (s *Server) handleEditTopic(w http.ResponseWriter, r *http.Request) {
	topicID, err := urlID(r, "topicID")
	if err != nil {
		jsonError(w, "invalid topic id", http.StatusBadRequest)
		return
	}
	var req editTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	topic, err := s.community.GetTopic(r.Context(), topicID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if req.IsSolved != nil {
		topic.IsSolved = *req.IsSolved
	}
	if req.IsLocked != nil {
		topic.IsLocked = *req.IsLocked
	}
	if req.IsSticky != nil {
		topic.IsSticky = *req.IsSticky
	}
	if err := s.community.UpdateTopic(r.Context(), topic); err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

// postView is a post with its markdown rendered for display.
type postView struct {
	*model.Post
	HTML string `json:"html"`
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	topicID, err := urlID(r, "topicID")
	if err != nil {
		jsonError(w, "invalid topic id", http.StatusBadRequest)
		return
	}
	limit, offset := pageParams(r)
	posts, err := s.community.PostsOfTopic(r.Context(), topicID, limit, offset)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		html, err := render.ToHTML(p.Text)
		if err != nil {
			s.serviceError(w, err)
			return
		}
		views = append(views, postView{Post: p, HTML: html})
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": views})
}

type createPostRequest struct {
	AuthorID int64  `json:"author_id"`
	Text     string `json:"text"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	topicID, err := urlID(r, "topicID")
	if err != nil {
		jsonError(w, "invalid topic id", http.StatusBadRequest)
		return
	}
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}
	topic, err := s.community.GetTopic(r.Context(), topicID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if topic.IsLocked {
		jsonError(w, "topic is locked", http.StatusForbidden)
		return
	}
	post := &model.Post{TopicID: topicID, AuthorID: req.AuthorID, Text: req.Text}
	if err := s.community.CreatePost(r.Context(), post); err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	members, err := s.community.ListMembers(r.Context(), limit, offset)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}

type createMemberRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Biography string `json:"biography"`
	Signature string `json:"signature"`
	Site      string `json:"site"`
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Email == "" {
		jsonError(w, "username and email are required", http.StatusBadRequest)
		return
	}
	m := model.Member{
		Username:  req.Username,
		Email:     req.Email,
		Biography: req.Biography,
		Signature: req.Signature,
		Site:      req.Site,
	}
	if err := s.community.CreateMember(r.Context(), &m); err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	m, err := s.community.GetMemberByUsername(r.Context(), username)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type editMemberRequest struct {
	Biography *string `json:"biography,omitempty"`
	Signature *string `json:"signature,omitempty"`
	Site      *string `json:"site,omitempty"`
}

func (s *Server) handleEditMember(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	var req editMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	m, err := s.community.GetMemberByUsername(r.Context(), username)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if req.Biography != nil {
		m.Biography = *req.Biography
	}
	if req.Signature != nil {
		m.Signature = *req.Signature
	}
	if req.Site != nil {
		m.Site = *req.Site
	}
	if err := s.community.UpdateMember(r.Context(), m); err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type createThreadRequest struct {
	Title     string  `json:"title"`
	Subtitle  string  `json:"subtitle"`
	AuthorID  int64   `json:"author_id"`
	MemberIDs []int64 `json:"member_ids"`
	Text      string  `json:"text"`
}

func (s *Server) handleCreateThread(w http.ResponseWriter, r *http.Request) {
	var req createThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.Text == "" || len(req.MemberIDs) < 2 {
		jsonError(w, "title, text and at least two participants are required", http.StatusBadRequest)
		return
	}
	thread := &model.Thread{Title: req.Title, Subtitle: req.Subtitle}
	first := &model.Message{AuthorID: req.AuthorID, Text: req.Text}
	if err := s.community.CreateThread(r.Context(), thread, req.MemberIDs, first); err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, thread)
}

func (s *Server) handleListThreads(w http.ResponseWriter, r *http.Request) {
	memberID, err := strconv.ParseInt(r.URL.Query().Get("member_id"), 10, 64)
	if err != nil {
		jsonError(w, "member_id query parameter is required", http.StatusBadRequest)
		return
	}
	threads, err := s.community.ThreadsOfMember(r.Context(), memberID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"threads": threads})
}

func (s *Server) handleGetThread(w http.ResponseWriter, r *http.Request) {
	threadID, err := urlID(r, "threadID")
	if err != nil {
		jsonError(w, "invalid thread id", http.StatusBadRequest)
		return
	}
	thread, err := s.community.GetThread(r.Context(), threadID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	msgs, err := s.community.MessagesOfThread(r.Context(), threadID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"thread": thread, "messages": msgs})
}

type createMessageRequest struct {
	AuthorID int64  `json:"author_id"`
	Text     string `json:"text"`
}

func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	threadID, err := urlID(r, "threadID")
	if err != nil {
		jsonError(w, "invalid thread id", http.StatusBadRequest)
		return
	}
	var req createMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}
	msg := &model.Message{ThreadID: threadID, AuthorID: req.AuthorID, Text: req.Text}
	if err := s.community.CreateMessage(r.Context(), msg); err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleCreateGallery(w http.ResponseWriter, r *http.Request) {
	var g model.Gallery
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if g.Title == "" {
		jsonError(w, "title is required", http.StatusBadRequest)
		return
	}
	if g.Slug == "" {
		g.Slug = content.Slugify(g.Title)
	}
	if err := s.community.CreateGallery(r.Context(), &g); err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleGetGallery(w http.ResponseWriter, r *http.Request) {
	galleryID, err := urlID(r, "galleryID")
	if err != nil {
		jsonError(w, "invalid gallery id", http.StatusBadRequest)
		return
	}
	g, err := s.community.GetGallery(r.Context(), galleryID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	images, err := s.community.ImagesOfGallery(r.Context(), galleryID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"gallery": g, "images": images})
}

func (s *Server) handleDeleteGallery(w http.ResponseWriter, r *http.Request) {
	galleryID, err := urlID(r, "galleryID")
	if err != nil {
		jsonError(w, "invalid gallery id", http.StatusBadRequest)
		return
	}
	if err := s.community.DeleteGallery(r.Context(), galleryID); err != nil {
		s.serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddImage(w http.ResponseWriter, r *http.Request) {
	galleryID, err := urlID(r, "galleryID")
	if err != nil {
		jsonError(w, "invalid gallery id", http.StatusBadRequest)
		return
	}
	var img model.Image
	if err := json.NewDecoder(r.Body).Decode(&img); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if img.Title == "" || img.Physical == "" {
		jsonError(w, "title and physical path are required", http.StatusBadRequest)
		return
	}
	img.GalleryID = galleryID
	if img.Slug == "" {
		img.Slug = content.Slugify(img.Title)
	}
	if err := s.community.CreateImage(r.Context(), &img); err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}
