package tabs

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tabserv/internal/models"
)

var (
	ErrTabNotFound   = errors.New("tab not found")
	ErrDuplicateName = errors.New("tab name already exists")
)

// Update lists the tab fields to overwrite. Nil fields are left alone.
type Update struct {
	Table          *int
	User           *string
	UserType       *string
	WaiterRequest  *bool
	WaiterText     *string
	SupportRequest *bool
	SupportText    *string
}

// IsEmpty reports whether u changes nothing.
func (u Update) IsEmpty() bool {
	return u.Table == nil && u.User == nil && u.UserType == nil &&
		u.WaiterRequest == nil && u.WaiterText == nil &&
		u.SupportRequest == nil && u.SupportText == nil
}

// Store persists tabs keyed by their unique name.
type Store interface {
	Create(ctx context.Context, tab *models.Tab) (primitive.ObjectID, error)
	List(ctx context.Context) ([]models.Tab, error)
	Delete(ctx context.Context, name string) error
	Rename(ctx context.Context, oldName, newName string) error
	Update(ctx context.Context, name string, u Update) error
}
