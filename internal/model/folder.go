package model

import (
	"time"
)

// Folder is a user-owned collection of files. Path is unique per owner,
// not globally. SharedWith holds the grantees and never contains the
// owner; Files come back ordered by name.
type Folder struct {
	ID        string    `db:"id" json:"id"`
	Path      string    `db:"path" json:"path"`
	OwnerID   string    `db:"owner_id" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Loaded relations (not columns)
	Owner      *User   `db:"-" json:"owner"`
	SharedWith []*User `db:"-" json:"sharedWith"`
	Files      []*File `db:"-" json:"files"`
}

// IsSharedWith reports whether the user is a grantee of this folder.
func (f *Folder) IsSharedWith(userID string) bool {
	for _, u := range f.SharedWith {
		if u.ID == userID {
			return true
		}
	}
	return false
}
