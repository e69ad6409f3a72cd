package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

// PrincipalSource turns a verified session into a caller with an ability.
type PrincipalSource interface {
	PrincipalFor(ctx context.Context, session *model.Session) *ability.Principal
}

type AuthMiddleware struct {
	tokens     auth.JWTService
	principals PrincipalSource
	metrics    *metrics.Metrics
}

func NewAuthMiddleware(tokens auth.JWTService, principals PrincipalSource, m *metrics.Metrics) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:     tokens,
		principals: principals,
		metrics:    m,
	}
}

// Authenticate verifies the bearer token and stores the caller's principal
// on the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			httputil.RespondWithError(c, errors.Unauthorized(nil))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			httputil.RespondWithError(c, errors.Unauthorized(nil))
			return
		}

		session, err := m.tokens.Validate(parts[1])
		if err != nil {
			log.Debug().Err(err).Str("request_id", c.GetString(ContextRequestID)).Msg("rejected token")
			httputil.RespondWithError(c, errors.Unauthorized(err))
			return
		}

		ctx := c.Request.Context()
		p := m.principals.PrincipalFor(ctx, session)
		ctx = ability.WithPrincipal(ctx, p)
		ctx = audit.WithClientInfo(ctx, c.ClientIP(), c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)
		c.Set(ContextUserID, p.UserID.String())
		c.Next()
	}
}

// Require refuses the request unless the caller's ability allows action on
// subject.
func (m *AuthMiddleware) Require(action ability.Action, subject ability.Subject) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := ability.FromContext(c.Request.Context())
		if !p.Can(action, subject) {
			m.metrics.Denied(string(action), string(subject))
			log.Info().
				Str("request_id", c.GetString(ContextRequestID)).
				Stringer("role", p.RoleID).
				Str("action", string(action)).
				Str("subject", string(subject)).
				Msg("permission denied")
			httputil.RespondWithError(c, errors.Forbidden(""))
			return
		}
		c.Next()
	}
}
