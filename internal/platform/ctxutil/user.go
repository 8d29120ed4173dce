package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type userDataKey struct{}

type UserData struct {
	UserID uuid.UUID
	Email  string
}

func WithUserData(ctx context.Context, ud *UserData) context.Context {
	return context.WithValue(ctx, userDataKey{}, ud)
}

func GetUserData(ctx context.Context) *UserData {
	val := ctx.Value(userDataKey{})
	if ud, ok := val.(*UserData); ok {
		return ud
	}
	return nil
}
