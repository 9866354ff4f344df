package handler

import (
	"encoding/json"
	"net/http"

	"github.com/foldervault/foldervault/internal/ctxkeys"
	"github.com/foldervault/foldervault/internal/service"
)

// StorageHandler binds the share and download endpoints to the folder
// service. The acting user always comes from the verified identity,
// never from the request body.
type StorageHandler struct {
	folderService *service.FolderService
}

func NewStorageHandler(folderService *service.FolderService) *StorageHandler {
	return &StorageHandler{
		folderService: folderService,
	}
}

type shareFolderRequest struct {
	FolderPath string   `json:"folderpath"`
	Emails     []string `json:"emails"`
}

func (h *StorageHandler) Share(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	var req shareFolderRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "malformed JSON request")
		return
	}

	folder, err := h.folderService.ShareFolder(req.FolderPath, req.Emails, identity.Email)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, folder)
}

func (h *StorageHandler) Download(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	folderPath := r.URL.Query().Get("folderpath")

	zipBytes, err := h.folderService.DownloadFolderAsZip(folderPath, identity.Email)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename=folder.zip`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(zipBytes)
}
