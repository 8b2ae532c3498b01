package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
	"github.com/angelmondragon/resellerhub-backend/pkg/outbox"
)

type contextKey string

const (
	ctxAccountID contextKey = "account_id"
	ctxRole      contextKey = "actor_role"
)

func AccountIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccountID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// WithAccount injects the authenticated account and role into the context.
func WithAccount(ctx context.Context, accountID uuid.UUID, role enums.AccountRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxAccountID, accountID.String())
	return context.WithValue(ctx, ctxRole, string(role))
}

// ActorFromContext builds the outbox actor for the authenticated caller.
func ActorFromContext(ctx context.Context) *outbox.ActorRef {
	accountID, err := uuid.Parse(AccountIDFromContext(ctx))
	if err != nil {
		return nil
	}
	return &outbox.ActorRef{AccountID: accountID, Role: RoleFromContext(ctx)}
}
