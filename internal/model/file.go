package model

import (
	"time"
)

// File belongs to exactly one folder. StoragePath is an opaque locator
// resolved by the storage backend; Name is what ends up in archives.
type File struct {
	ID          string    `db:"id" json:"id"`
	FolderID    string    `db:"folder_id" json:"-"`
	Name        string    `db:"name" json:"name"`
	StoragePath string    `db:"storage_path" json:"-"`
	Size        int64     `db:"size" json:"size"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
