package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hrms-platform/internal/cache"
	"hrms-platform/internal/models"
	"hrms-platform/internal/repository"
)

// OwnerResolver resolves the owning-employee id of a resource from its path
// identifier. It must never consult the request body.
type OwnerResolver func(ctx context.Context, resourceID uuid.UUID) (uuid.UUID, error)

// RequireRoles returns middleware that rejects requesters whose role is not
// in the allow-list. Authentication must already have succeeded.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			Abort(c, NewUnauthorizedError(ErrCodeNoCredential, "authentication required"))
			return
		}
		if _, ok := allowed[principal.Role]; !ok {
			Abort(c, NewForbiddenError(ErrCodeInsufficientRole, "insufficient role"))
			return
		}
		c.Next()
	}
}

// RequireOwnership returns middleware enforcing the ownership rule on
// employee-scoped resources: ADMIN and HR pass unconditionally; an EMPLOYEE
// passes only when the resource's owning employee matches their linked
// employee record. The owner is resolved from the path parameter, never the
// body. Role checks composed before this one run first; the first failing
// rule wins.
func RequireOwnership(param string, resolve OwnerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			Abort(c, NewUnauthorizedError(ErrCodeNoCredential, "authentication required"))
			return
		}
		if principal.Role == models.RoleAdmin || principal.Role == models.RoleHR {
			c.Next()
			return
		}

		if principal.EmployeeID == nil {
			Abort(c, NewForbiddenError(ErrCodeNotOwner, "not resource owner"))
			return
		}

		resourceID, err := uuid.Parse(c.Param(param))
		if err != nil {
			Abort(c, NewValidationError("invalid resource id"))
			return
		}

		owner, err := resolve(c.Request.Context(), resourceID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				Abort(c, NewNotFoundError("resource"))
				return
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		if owner != *principal.EmployeeID {
			Abort(c, NewForbiddenError(ErrCodeNotOwner, "not resource owner"))
			return
		}
		c.Next()
	}
}

// CachedOwnerResolver wraps an OwnerResolver with the Redis ownership cache.
// Cache errors fall through to the underlying resolver.
func CachedOwnerResolver(entityType string, ownerCache *cache.OwnershipCache, resolve OwnerResolver) OwnerResolver {
	if ownerCache == nil || !ownerCache.IsAvailable() {
		return resolve
	}
	return func(ctx context.Context, resourceID uuid.UUID) (uuid.UUID, error) {
		if owner, err := ownerCache.Get(ctx, entityType, resourceID.String()); err == nil && owner != uuid.Nil {
			return owner, nil
		}
		owner, err := resolve(ctx, resourceID)
		if err != nil {
			return uuid.Nil, err
		}
		_ = ownerCache.Set(ctx, entityType, resourceID.String(), owner)
		return owner, nil
	}
}
