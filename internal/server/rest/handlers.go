package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

type textRequest struct {
	Text string `json:"text"`
}

type accessResponse struct {
	Access string `json:"access"`
}

type tokenResponse struct {
	Token string `json:"token,omitempty"`
}

type profileResponse struct {
	Access string `json:"access"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name"`
}

type commentResponse struct {
	Access string `json:"access"`
	Author string `json:"author"`
	Text   string `json:"text"`
	Time   int64  `json:"time"`
}

type postResponse struct {
	Access   string            `json:"access"`
	Author   string            `json:"author"`
	Text     string            `json:"text"`
	Time     int64             `json:"time"`
	Comments []commentResponse `json:"comments"`
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *RESTServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *RESTServer) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !readJSON(w, r, &req) {
		return
	}

	access, err := s.users.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, accessResponse{Access: access})
}

func (s *RESTServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !readJSON(w, r, &req) {
		return
	}

	token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrCredentialMismatch) {
			s.logger.Info(r.Context(), "login failed", "email", req.Email, "reason", err.Error())
			writeError(w, http.StatusUnauthorized, "wrong email or password")
			return
		}
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *RESTServer) handleProfile(w http.ResponseWriter, r *http.Request) {
	id := services.IdentityFrom(r.Context())

	u, err := s.users.Profile(r.Context(), id.UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{Access: u.AccessKey, Email: u.Email, Name: u.Name})
}

func (s *RESTServer) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Name == nil && req.Password == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	id := services.IdentityFrom(r.Context())
	token, err := s.users.UpdateProfile(r.Context(), id.UserID, services.ProfileUpdate{Name: req.Name, Password: req.Password})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *RESTServer) handlePublicProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.PublicProfile(r.Context(), chi.URLParam(r, "access"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{Access: u.AccessKey, Name: u.Name})
}

func (s *RESTServer) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !readJSON(w, r, &req) {
		return
	}

	id := services.IdentityFrom(r.Context())
	access, err := s.posts.CreatePost(r.Context(), id.UserID, req.Text)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, accessResponse{Access: access})
}

func (s *RESTServer) handleGetPost(w http.ResponseWriter, r *http.Request) {
	view, err := s.posts.GetPost(r.Context(), chi.URLParam(r, "access"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := postResponse{
		Access:   view.Post.AccessKey,
		Author:   view.Post.Author,
		Text:     view.Post.Text,
		Time:     view.Post.CreatedAt.UnixMilli(),
		Comments: make([]commentResponse, 0, len(view.Comments)),
	}
	for _, c := range view.Comments {
		resp.Comments = append(resp.Comments, commentResponse{
			Access: c.AccessKey,
			Author: c.Author,
			Text:   c.Text,
			Time:   c.CreatedAt.UnixMilli(),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *RESTServer) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !readJSON(w, r, &req) {
		return
	}

	id := services.IdentityFrom(r.Context())
	access, err := s.posts.AddComment(r.Context(), id.UserID, chi.URLParam(r, "access"), req.Text)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, accessResponse{Access: access})
}
