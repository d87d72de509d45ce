package auth

import "context"

type contextKey string

const (
	contextKeyOwner   contextKey = "auth.owner_id"
	contextKeyRole    contextKey = "auth.role"
	contextKeySubject contextKey = "auth.subject"
)

// WithIdentity stores auth identity details in context.
func WithIdentity(ctx context.Context, ownerID string, role Role, subject string) context.Context {
	ctx = context.WithValue(ctx, contextKeyOwner, ownerID)
	ctx = context.WithValue(ctx, contextKeyRole, role)
	ctx = context.WithValue(ctx, contextKeySubject, subject)
	return ctx
}

// OwnerIDFromContext extracts owner id from context.
func OwnerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value := ctx.Value(contextKeyOwner)
	if ownerID, ok := value.(string); ok {
		return ownerID
	}
	return ""
}

// RoleFromContext extracts role from context.
func RoleFromContext(ctx context.Context) Role {
	if ctx == nil {
		return ""
	}
	value := ctx.Value(contextKeyRole)
	if role, ok := value.(Role); ok {
		return role
	}
	if role, ok := value.(string); ok {
		if normalized, valid := NormalizeRole(role); valid {
			return normalized
		}
	}
	return ""
}

// ResolveOwnerScope returns the owner id a request may read data for.
// Owners are always pinned to their own id. Admins may name another
// owner via requested, or leave it empty for a system-wide scope;
// repositories treat an empty owner id as spanning all owners.
func ResolveOwnerScope(ctx context.Context, requested string) string {
	if RoleAtLeast(RoleFromContext(ctx), RoleAdmin) {
		return requested
	}
	return OwnerIDFromContext(ctx)
}

// SubjectFromContext extracts subject from context.
func SubjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value := ctx.Value(contextKeySubject)
	if subject, ok := value.(string); ok {
		return subject
	}
	return ""
}
