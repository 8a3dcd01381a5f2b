package auth

import (
	"context"

	"github.com/IDINaXI/Nutrio/internal/userctx"
)

func WithUserID(ctx context.Context, userID int64) context.Context {
	return userctx.WithUserID(ctx, userID)
}

func GetUserID(ctx context.Context) (int64, bool) {
	return userctx.GetUserID(ctx)
}
