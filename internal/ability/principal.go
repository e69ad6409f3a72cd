package ability

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// Principal is an authenticated caller together with the ability built for
// their role.
type Principal struct {
	UserID  uuid.UUID
	RoleID  model.RoleID
	IsAdmin bool
	Email   string
	Ability *Ability

	anonymous bool
}

// Anonymous is a caller with no session. It can do nothing.
func Anonymous() *Principal {
	return &Principal{RoleID: model.RoleGuest, Ability: Build(nil), anonymous: true}
}

// Authenticated is false only for Anonymous. A guest-role user with a
// session is authenticated.
func (p *Principal) Authenticated() bool {
	return p != nil && !p.anonymous
}

// IsSuperAdmin is true only for the env-configured credential.
func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.RoleID == model.RoleSuperAdmin
}

// Privileged reports whether p may override payment locks: the env super
// admin, or any caller holding {manage, all}.
func (p *Principal) Privileged() bool {
	if p == nil {
		return false
	}
	return p.IsSuperAdmin() || p.Ability.Can(ActionManage, SubjectAll)
}

func (p *Principal) Can(action Action, subject Subject) bool {
	return p != nil && p.Ability.Can(action, subject)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored on ctx, or Anonymous.
func FromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey{}).(*Principal); ok && p != nil {
		return p
	}
	return Anonymous()
}
