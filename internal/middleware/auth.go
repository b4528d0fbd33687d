package middleware

import (
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/authz"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/constants"
	apierrors "github.com/i11iaore1/to-do-list-pet-backend/internal/errors"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/repository"
	"gorm.io/gorm"
)

// RequireAuth checks if the user is authenticated via session and resolves
// the acting user. Inactive accounts are rejected even with a live session.
func RequireAuth(userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(constants.ContextKeyUserID)

		if userID == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		id, ok := toUint64(userID)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := userRepo.FindByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.Unauthorized(c, "")
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}
		if !user.IsActive {
			apierrors.Unauthorized(c, "Account is deactivated")
			c.Abort()
			return
		}

		// Store identity in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyActor, authz.Actor{ID: user.ID, IsStaff: user.IsStaff})
		c.Next()
	}
}

// RequireStaff allows only staff accounts through. Must run after
// RequireAuth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := GetActor(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !actor.IsStaff {
			apierrors.Forbidden(c, "Staff access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUint64(userID)
}

// GetActor retrieves the acting user's identity from context
func GetActor(c *gin.Context) (authz.Actor, bool) {
	value, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return authz.Actor{}, false
	}
	actor, ok := value.(authz.Actor)
	return actor, ok
}

func toUint64(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
