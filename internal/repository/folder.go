package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/foldervault/foldervault/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrFolderNotFound = errors.New("folder not found")
	ErrDuplicatePath  = errors.New("folder path already exists for owner")
)

// FolderRepository materializes the full folder graph (owner, shared-with
// users, files) on every read. Reads run inside one transaction so the
// graph is a consistent snapshot; Save replaces the shared-with set and
// the folder row atomically.
type FolderRepository interface {
	Create(folder *model.Folder) error
	ByID(id string) (*model.Folder, error)
	ByPathAndOwner(path, ownerID string) (*model.Folder, error)
	SharedWith(userID string) ([]*model.Folder, error)
	All() ([]*model.Folder, error)
	Save(folder *model.Folder) error
	Delete(id string) error
}

type folderRepository struct {
	db *sqlx.DB
}

func NewFolderRepository(db *sqlx.DB) FolderRepository {
	return &folderRepository{db: db}
}

func (r *folderRepository) Create(folder *model.Folder) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO folders (id, path, owner_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`

	_, err = tx.Exec(query, folder.ID, folder.Path, folder.OwnerID, folder.CreatedAt, folder.UpdatedAt)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrDuplicatePath
		}
		return err
	}

	err = insertSharedWith(tx, folder.ID, folder.SharedWith)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *folderRepository) ByID(id string) (*model.Folder, error) {
	return r.loadOne(`SELECT * FROM folders WHERE id = $1`, id)
}

func (r *folderRepository) ByPathAndOwner(path, ownerID string) (*model.Folder, error) {
	return r.loadOne(`SELECT * FROM folders WHERE path = $1 AND owner_id = $2`, path, ownerID)
}

// SharedWith returns every folder that lists the user as a grantee.
func (r *folderRepository) SharedWith(userID string) ([]*model.Folder, error) {
	query := `SELECT f.* FROM folders f
	          JOIN folder_shared_with sw ON sw.folder_id = f.id
	          WHERE sw.user_id = $1
	          ORDER BY f.path`
	return r.loadMany(query, userID)
}

func (r *folderRepository) All() ([]*model.Folder, error) {
	return r.loadMany(`SELECT * FROM folders ORDER BY path`)
}

// Save upserts the folder row by ID and replaces the shared-with set with
// folder.SharedWith, all in one transaction. Prior grants not present in
// the new set are revoked.
func (r *folderRepository) Save(folder *model.Folder) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE folders SET path = $1, owner_id = $2, updated_at = $3 WHERE id = $4`,
		folder.Path, folder.OwnerID, folder.UpdatedAt, folder.ID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		_, err = tx.Exec(`INSERT INTO folders (id, path, owner_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
			folder.ID, folder.Path, folder.OwnerID, folder.CreatedAt, folder.UpdatedAt)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(`DELETE FROM folder_shared_with WHERE folder_id = $1`, folder.ID)
	if err != nil {
		return err
	}

	err = insertSharedWith(tx, folder.ID, folder.SharedWith)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes the folder, its share grants, and its file records.
// File rows are deleted explicitly rather than leaning on FK cascades so
// the ownership rule is visible here.
func (r *folderRepository) Delete(id string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM files WHERE folder_id = $1`, id)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`DELETE FROM folder_shared_with WHERE folder_id = $1`, id)
	if err != nil {
		return err
	}

	res, err := tx.Exec(`DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFolderNotFound
	}

	return tx.Commit()
}

func (r *folderRepository) loadOne(query string, args ...any) (*model.Folder, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	folder := &model.Folder{}
	err = tx.Get(folder, query, args...)
	if err == sql.ErrNoRows {
		return nil, ErrFolderNotFound
	}
	if err != nil {
		return nil, err
	}

	err = hydrateFolder(tx, folder)
	if err != nil {
		return nil, err
	}

	return folder, tx.Commit()
}

func (r *folderRepository) loadMany(query string, args ...any) ([]*model.Folder, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var folders []*model.Folder
	err = tx.Select(&folders, query, args...)
	if err != nil {
		return nil, err
	}

	for _, folder := range folders {
		err = hydrateFolder(tx, folder)
		if err != nil {
			return nil, err
		}
	}

	return folders, tx.Commit()
}

// hydrateFolder loads the owner, shared-with set, and files for a folder
// row within the caller's transaction. Files come back ordered by name so
// archive layout is deterministic.
func hydrateFolder(tx *sqlx.Tx, folder *model.Folder) error {
	owner, err := userByID(tx, folder.OwnerID)
	if err != nil {
		return err
	}
	folder.Owner = owner

	folder.SharedWith = []*model.User{}
	var sharedIDs []string
	err = tx.Select(&sharedIDs, `SELECT user_id FROM folder_shared_with WHERE folder_id = $1 ORDER BY user_id`, folder.ID)
	if err != nil {
		return err
	}
	for _, id := range sharedIDs {
		user, err := userByID(tx, id)
		if err != nil {
			return err
		}
		folder.SharedWith = append(folder.SharedWith, user)
	}

	folder.Files = []*model.File{}
	return tx.Select(&folder.Files, `SELECT * FROM files WHERE folder_id = $1 ORDER BY name`, folder.ID)
}

func insertSharedWith(tx *sqlx.Tx, folderID string, users []*model.User) error {
	for _, user := range users {
		_, err := tx.Exec(`INSERT INTO folder_shared_with (folder_id, user_id) VALUES ($1, $2)`, folderID, user.ID)
		if err != nil {
			return err
		}
	}
	return nil
}
