package service

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/foldervault/foldervault/internal/model"
	"github.com/foldervault/foldervault/internal/repository"
	"github.com/foldervault/foldervault/internal/storage"
	"github.com/google/uuid"
)

// FolderService enforces who may view, share, and download a folder, and
// assembles zip archives of a folder's files on demand.
type FolderService struct {
	folderRepository repository.FolderRepository
	fileRepository   repository.FileRepository
	userRepository   repository.UserRepository
	storage          storage.Storage
	emailService     *EmailService
}

func NewFolderService(
	folderRepository repository.FolderRepository,
	fileRepository repository.FileRepository,
	userRepository repository.UserRepository,
	storage storage.Storage,
	emailService *EmailService,
) *FolderService {
	return &FolderService{
		folderRepository: folderRepository,
		fileRepository:   fileRepository,
		userRepository:   userRepository,
		storage:          storage,
		emailService:     emailService,
	}
}

// ShareFolder replaces the folder's shared-with set with the users
// resolved from emails. Replacement is deliberate: grants absent from
// emails are revoked, not merged.
func (s *FolderService) ShareFolder(folderPath string, emails []string, ownerEmail string) (*model.Folder, error) {
	if strings.TrimSpace(folderPath) == "" {
		return nil, invalidArgument("folder path must not be blank")
	}
	if len(emails) == 0 {
		return nil, invalidArgument("emails list must not be empty")
	}

	owner, err := s.userRepository.ByEmail(ownerEmail)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("owner not found")
		}
		return nil, internalError("owner lookup failed", err)
	}

	folder, err := s.folderRepository.ByPathAndOwner(folderPath, owner.ID)
	if err != nil {
		if errors.Is(err, repository.ErrFolderNotFound) {
			return nil, notFound("folder not found or not owned by user")
		}
		return nil, internalError("folder lookup failed", err)
	}

	if folder.OwnerID != owner.ID {
		return nil, forbidden("only the folder owner can share the folder")
	}

	grantees := make([]*model.User, 0, len(emails))
	seen := make(map[string]bool)
	for _, email := range emails {
		grantee, err := s.userRepository.ByEmail(email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, notFound("user not found for email: " + email)
			}
			return nil, internalError("grantee lookup failed", err)
		}
		// The shared-with set never contains the owner
		if grantee.ID == owner.ID || seen[grantee.ID] {
			continue
		}
		seen[grantee.ID] = true
		grantees = append(grantees, grantee)
	}

	folder.SharedWith = grantees
	folder.UpdatedAt = time.Now()

	err = s.folderRepository.Save(folder)
	if err != nil {
		return nil, internalError("folder update failed", err)
	}

	s.emailService.SendShareNotifications(folder, owner)

	slog.Info("folder shared", "path", folder.Path, "owner", owner.Email, "grantees", len(grantees))
	return folder, nil
}

// DownloadFolderAsZip returns the complete zip archive of the folder's
// files. The requester must be the folder's owner or one of its
// grantees; nobody else learns whether the folder exists.
func (s *FolderService) DownloadFolderAsZip(folderPath, requesterEmail string) ([]byte, error) {
	if strings.TrimSpace(folderPath) == "" {
		return nil, invalidArgument("folder path must not be blank")
	}

	requester, err := s.userRepository.ByEmail(requesterEmail)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("requester not found")
		}
		return nil, internalError("requester lookup failed", err)
	}

	folder, err := s.resolveAccessible(folderPath, requester)
	if err != nil {
		return nil, err
	}

	return s.buildArchive(folder)
}

// resolveAccessible finds a folder at path the requester may read: their
// own first, then one shared with them.
func (s *FolderService) resolveAccessible(folderPath string, requester *model.User) (*model.Folder, error) {
	folder, err := s.folderRepository.ByPathAndOwner(folderPath, requester.ID)
	if err == nil {
		return folder, nil
	}
	if !errors.Is(err, repository.ErrFolderNotFound) {
		return nil, internalError("folder lookup failed", err)
	}

	shared, err := s.folderRepository.SharedWith(requester.ID)
	if err != nil {
		return nil, internalError("folder lookup failed", err)
	}
	for _, f := range shared {
		if f.Path == folderPath {
			return f, nil
		}
	}

	return nil, notFound("folder not found or not accessible")
}

// buildArchive writes one entry per file, named by the file's Name. A
// missing blob degrades to a zero-length entry; any other I/O failure
// aborts the whole archive.
func (s *FolderService) buildArchive(folder *model.Folder) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	for _, file := range folder.Files {
		entry, err := zw.Create(file.Name)
		if err != nil {
			return nil, internalError("archive construction failed", err)
		}

		blob, err := s.storage.Open(file.StoragePath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Warn("file blob missing, writing empty entry", "file", file.Name, "path", file.StoragePath)
				continue
			}
			return nil, internalError("archive construction failed", err)
		}

		_, err = io.Copy(entry, blob)
		blob.Close()
		if err != nil {
			return nil, internalError("archive construction failed", err)
		}
	}

	err := zw.Close()
	if err != nil {
		return nil, internalError("archive construction failed", err)
	}

	return buf.Bytes(), nil
}

// Folders returns every folder. Restricted to admins at the transport layer.
func (s *FolderService) Folders() ([]*model.Folder, error) {
	folders, err := s.folderRepository.All()
	if err != nil {
		return nil, internalError("folder listing failed", err)
	}
	return folders, nil
}

func (s *FolderService) FolderByID(id string) (*model.Folder, error) {
	folder, err := s.folderRepository.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrFolderNotFound) {
			return nil, notFound("folder not found")
		}
		return nil, internalError("folder lookup failed", err)
	}
	return folder, nil
}

// CreateFolder creates an empty folder owned by ownerEmail.
func (s *FolderService) CreateFolder(folderPath, ownerEmail string) (*model.Folder, error) {
	if strings.TrimSpace(folderPath) == "" {
		return nil, invalidArgument("folder path must not be blank")
	}

	owner, err := s.userRepository.ByEmail(ownerEmail)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("owner not found")
		}
		return nil, internalError("owner lookup failed", err)
	}

	now := time.Now()
	folder := &model.Folder{
		ID:         uuid.New().String(),
		Path:       folderPath,
		OwnerID:    owner.ID,
		Owner:      owner,
		SharedWith: []*model.User{},
		Files:      []*model.File{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.folderRepository.Create(folder)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePath) {
			return nil, invalidArgument("folder path already exists")
		}
		return nil, internalError("folder creation failed", err)
	}

	return folder, nil
}

// UpdateFolder renames a folder. Only the owner may update it.
func (s *FolderService) UpdateFolder(id, folderPath, actorEmail string) (*model.Folder, error) {
	if strings.TrimSpace(folderPath) == "" {
		return nil, invalidArgument("folder path must not be blank")
	}

	actor, err := s.userRepository.ByEmail(actorEmail)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("owner not found")
		}
		return nil, internalError("owner lookup failed", err)
	}

	folder, err := s.FolderByID(id)
	if err != nil {
		return nil, err
	}

	if folder.OwnerID != actor.ID {
		return nil, forbidden("only the folder owner can update the folder")
	}

	folder.Path = folderPath
	folder.UpdatedAt = time.Now()

	err = s.folderRepository.Save(folder)
	if err != nil {
		return nil, internalError("folder update failed", err)
	}

	return folder, nil
}

// DeleteFolder removes a folder, its file records, and their stored
// blobs. Only the owner may delete it. Blob removal is best effort.
func (s *FolderService) DeleteFolder(id, actorEmail string) error {
	actor, err := s.userRepository.ByEmail(actorEmail)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound("owner not found")
		}
		return internalError("owner lookup failed", err)
	}

	folder, err := s.FolderByID(id)
	if err != nil {
		return err
	}

	if folder.OwnerID != actor.ID {
		return forbidden("only the folder owner can delete the folder")
	}

	files, err := s.fileRepository.ByFolder(folder.ID)
	if err != nil {
		return internalError("folder deletion failed", err)
	}

	err = s.folderRepository.Delete(folder.ID)
	if err != nil {
		return internalError("folder deletion failed", err)
	}

	for _, file := range files {
		delErr := s.storage.Delete(file.StoragePath)
		if delErr != nil && !errors.Is(delErr, fs.ErrNotExist) {
			slog.Error("failed to delete blob", "error", delErr, "path", file.StoragePath)
		}
	}

	return nil
}
