package repository

import (
	"database/sql"
	"errors"

	"github.com/foldervault/foldervault/internal/model"
	"github.com/jmoiron/sqlx"
)

var ErrFileNotFound = errors.New("file not found")

type FileRepository interface {
	Create(file *model.File) error
	ByID(id string) (*model.File, error)
	ByFolder(folderID string) ([]*model.File, error)
	Delete(id string) error
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(file *model.File) error {
	query := `INSERT INTO files (id, folder_id, name, storage_path, size, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		file.ID,
		file.FolderID,
		file.Name,
		file.StoragePath,
		file.Size,
		file.CreatedAt,
		file.UpdatedAt,
	)

	return err
}

func (r *fileRepository) ByID(id string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE id = $1`

	err := r.db.Get(file, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}

	return file, err
}

func (r *fileRepository) ByFolder(folderID string) ([]*model.File, error) {
	var files []*model.File
	query := `SELECT * FROM files WHERE folder_id = $1 ORDER BY name`

	err := r.db.Select(&files, query, folderID)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrFileNotFound
	}

	return nil
}
