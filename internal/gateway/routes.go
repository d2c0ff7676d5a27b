package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/store"
	"github.com/soyeahso/agentdeck/internal/version"
)

// registerRoutes sets up all HTTP routes on the server mux. Everything
// except /health goes through the auth middleware.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	api := http.NewServeMux()
	api.HandleFunc("GET /agents", s.handleListAgents)
	api.HandleFunc("GET /agents/templates", s.handleListTemplates)
	api.HandleFunc("GET /agents/{id}", s.handleGetAgent)
	api.HandleFunc("POST /agents", s.handleCreateAgent)
	api.HandleFunc("PUT /agents/{id}", s.handleUpdateAgent)
	api.HandleFunc("DELETE /agents/{id}", s.handleDeleteAgent)

	api.HandleFunc("GET /credentials", s.handleListCredentials)
	api.HandleFunc("POST /credentials", s.handleCreateCredential)
	api.HandleFunc("DELETE /credentials/{id}", s.handleDeleteCredential)
	api.HandleFunc("PATCH /credentials/{id}/active", s.handleToggleCredential)

	api.HandleFunc("GET /keys", s.handleListKeys)
	api.HandleFunc("POST /keys", s.handleCreateKey)
	api.HandleFunc("DELETE /keys/{id}", s.handleDeleteKey)
	api.HandleFunc("PATCH /keys/{id}/active", s.handleToggleKey)

	// Unmatched paths fall through to a JSON 404.
	api.HandleFunc("/", s.handleNotFound)

	mux.Handle("/", s.authMiddleware(api))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeFailure(w, http.StatusNotFound, "not found")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, envelope{
		"status":  "ok",
		"version": version.Version,
		"uptime":  time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// --- Agents ---

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)
	views, err := s.catalog.List(ident.OwnerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if views == nil {
		views = []domain.UnifiedAgentView{}
	}
	writeSuccess(w, http.StatusOK, envelope{"agents": views})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	defs, fileAgents := s.catalog.Templates()
	writeSuccess(w, http.StatusOK, envelope{
		"templates":       defs,
		"fileBasedAgents": fileAgents,
	})
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)

	id, err := domain.ParseAgentID(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	detail, err := s.catalog.Resolve(id, ident.OwnerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"agent": detail})
}

type createAgentRequest struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	SystemPrompt string `json:"systemPrompt"`
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)

	var req createAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.agents.Create(ident.OwnerID, req.Name, req.DisplayName, req.Description, req.SystemPrompt, false)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, envelope{"agent": rec})
}

type updateAgentRequest struct {
	Name         *string `json:"name"`
	DisplayName  *string `json:"displayName"`
	Description  *string `json:"description"`
	SystemPrompt *string `json:"systemPrompt"`
	Category     *string `json:"category"`
	IsActive     *bool   `json:"isActive"`
}

func (s *Server) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)

	row, ok := s.storedID(w, r)
	if !ok {
		return
	}

	var req updateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.agents.Update(ident.OwnerID, row, store.AgentUpdate{
		Name:         req.Name,
		DisplayName:  req.DisplayName,
		Description:  req.Description,
		SystemPrompt: req.SystemPrompt,
		Category:     req.Category,
		IsActive:     req.IsActive,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !updated {
		writeFailure(w, http.StatusNotFound, "not found")
		return
	}

	rec, err := s.agents.GetByID(row)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"agent": rec})
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)

	row, ok := s.storedID(w, r)
	if !ok {
		return
	}

	deleted, err := s.agents.Delete(ident.OwnerID, row)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !deleted {
		writeFailure(w, http.StatusNotFound, "not found")
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"message": "agent deleted"})
}

// storedID parses the path id and requires it to be a database row id.
// File ids are rejected: bundles are immutable through the API.
func (s *Server) storedID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := domain.ParseAgentID(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return 0, false
	}
	if id.Kind != domain.IDStored {
		writeFailure(w, http.StatusBadRequest, "file-based agents are read-only")
		return 0, false
	}
	return id.Row, true
}

// --- Credentials ---

func (s *Server) handleListCredentials(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)
	creds, err := s.creds.List(ident.OwnerID, r.URL.Query().Get("type"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if creds == nil {
		creds = []domain.Credential{}
	}
	writeSuccess(w, http.StatusOK, envelope{"credentials": creds})
}

type createCredentialRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

func (s *Server) handleCreateCredential(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)

	var req createCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cred, err := s.creds.Create(ident.OwnerID, req.Name, req.Type, req.Value, req.Description)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, envelope{"credential": cred})
}

func (s *Server) handleDeleteCredential(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)
	id, ok := numericID(w, r)
	if !ok {
		return
	}

	deleted, err := s.creds.Delete(ident.OwnerID, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !deleted {
		writeFailure(w, http.StatusNotFound, "not found")
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"message": "credential deleted"})
}

type toggleRequest struct {
	IsActive bool `json:"isActive"`
}

func (s *Server) handleToggleCredential(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)
	id, ok := numericID(w, r)
	if !ok {
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	toggled, err := s.creds.ToggleActive(ident.OwnerID, id, req.IsActive)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !toggled {
		writeFailure(w, http.StatusNotFound, "not found")
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"isActive": req.IsActive})
}

// --- API keys ---

func (s *Server) handleListKeys(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)
	keys, err := s.keys.List(ident.OwnerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if keys == nil {
		keys = []domain.APIKey{}
	}
	writeSuccess(w, http.StatusOK, envelope{"keys": keys})
}

type createKeyRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateKey(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)

	var req createKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	key, token, err := s.keys.Create(ident.OwnerID, req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	// The raw token appears in this response and nowhere else.
	writeSuccess(w, http.StatusCreated, envelope{"key": key, "token": token})
}

func (s *Server) handleDeleteKey(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)
	id, ok := numericID(w, r)
	if !ok {
		return
	}

	deleted, err := s.keys.Delete(ident.OwnerID, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !deleted {
		writeFailure(w, http.StatusNotFound, "not found")
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"message": "api key deleted"})
}

func (s *Server) handleToggleKey(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)
	id, ok := numericID(w, r)
	if !ok {
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	toggled, err := s.keys.ToggleActive(ident.OwnerID, id, req.IsActive)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !toggled {
		writeFailure(w, http.StatusNotFound, "not found")
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"isActive": req.IsActive})
}

// numericID parses a plain numeric path id for credential and key routes.
func numericID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeFailure(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
