package handler

import (
	"encoding/json"
	"net/http"

	"github.com/foldervault/foldervault/internal/ctxkeys"
	"github.com/foldervault/foldervault/internal/service"
)

type FolderHandler struct {
	folderService *service.FolderService
}

func NewFolderHandler(folderService *service.FolderService) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
	}
}

type folderRequest struct {
	Path string `json:"path"`
}

// List returns every folder. Routed behind the ADMIN role.
func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folderService.Folders()
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, folders)
}

func (h *FolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	folder, err := h.folderService.FolderByID(r.PathValue("id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, folder)
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	var req folderRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "malformed JSON request")
		return
	}

	folder, err := h.folderService.CreateFolder(req.Path, identity.Email)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, folder)
}

func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	var req folderRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "malformed JSON request")
		return
	}

	folder, err := h.folderService.UpdateFolder(r.PathValue("id"), req.Path, identity.Email)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, folder)
}

func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	err := h.folderService.DeleteFolder(r.PathValue("id"), identity.Email)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
