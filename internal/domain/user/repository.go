package user

import (
	"context"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	// ListAdmins returns every active admin, used as movement alert recipients.
	ListAdmins(ctx context.Context) ([]User, error)
}
