package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/zlnvch/stylussphere/service"
)

type Handler struct {
	Service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{Service: svc}
}

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signupResponse struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.Service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserExists):
			http.Error(w, "username already taken", http.StatusConflict)
		case errors.Is(err, service.ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("Signup failed: %v", err)
			http.Error(w, "signup failed", http.StatusInternalServerError)
		}
		return
	}

	resp := signupResponse{
		Username: user.Username,
		Token:    token,
	}
	h.sendResponse(w, resp)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.Service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		log.Printf("Login failed: %v", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	resp := loginResponse{
		Username: user.Username,
		Token:    token,
	}
	h.sendResponse(w, resp)
}

type logoutResponse struct {
	Success bool `json:"success"`
}

// HandleLogout revokes the caller's session. Logout is idempotent: a
// missing or already-revoked token still succeeds.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := h.getTokenFromAuthHeader(r)
	if err := h.Service.Logout(r.Context(), token); err != nil {
		log.Printf("Logout failed: %v", err)
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}

	resp := logoutResponse{
		Success: true,
	}
	h.sendResponse(w, resp)
}

type saveSnapshotRequest struct {
	Payload string `json:"payload"`
}

type saveSnapshotResponse struct {
	Id string `json:"id"`
}

func (h *Handler) HandleSnapshots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := h.getTokenFromAuthHeader(r)
	principal, err := h.Service.AuthenticateToken(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	var req saveSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id, err := h.Service.SaveSnapshot(r.Context(), principal.Username, []byte(req.Payload))
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("SaveSnapshot failed for user %s: %v", principal.Username, err)
		http.Error(w, "failed to save snapshot", http.StatusInternalServerError)
		return
	}

	resp := saveSnapshotResponse{
		Id: id,
	}
	h.sendResponse(w, resp)
}

type loadSnapshotResponse struct {
	Id      string `json:"id"`
	Payload string `json:"payload"`
}

// HandleSnapshotByID loads one of the caller's snapshots. Another
// user's snapshot id answers 404, same as an id that never existed.
func (h *Handler) HandleSnapshotByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := h.getTokenFromAuthHeader(r)
	principal, err := h.Service.AuthenticateToken(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/snapshots/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "invalid snapshot id", http.StatusBadRequest)
		return
	}

	payload, err := h.Service.LoadSnapshot(r.Context(), principal.Username, id)
	if err != nil {
		if errors.Is(err, service.ErrSnapshotNotFound) {
			http.Error(w, "snapshot not found", http.StatusNotFound)
			return
		}
		log.Printf("LoadSnapshot failed for user %s: %v", principal.Username, err)
		http.Error(w, "failed to load snapshot", http.StatusInternalServerError)
		return
	}

	resp := loadSnapshotResponse{
		Id:      id,
		Payload: string(payload),
	}
	h.sendResponse(w, resp)
}

func (h *Handler) sendResponse(w http.ResponseWriter, resp any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (h *Handler) getTokenFromAuthHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return ""
	}
	return strings.TrimPrefix(authHeader, prefix)
}
