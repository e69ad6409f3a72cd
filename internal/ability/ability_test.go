package ability

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

var (
	allActions  = []Action{ActionManage, ActionRead, ActionCreate, ActionUpdate, ActionDelete}
	allSubjects = []Subject{SubjectUser, SubjectPatient, SubjectDoctor, SubjectAppointment, SubjectDashboard, SubjectInvoices, SubjectAll, Subject("Pharmacy")}
)

func TestManageAllAllowsEverything(t *testing.T) {
	a := Build([]Rule{{Action: ActionRead, Subject: SubjectDoctor}, {Action: ActionManage, Subject: SubjectAll}})

	for _, act := range allActions {
		for _, sub := range allSubjects {
			assert.True(t, a.Can(act, sub), "%s %s", act, sub)
		}
	}
}

func TestEmptyAbilityDeniesEverything(t *testing.T) {
	for _, a := range []*Ability{Build(nil), Build([]Rule{}), nil} {
		for _, act := range allActions {
			for _, sub := range allSubjects {
				assert.False(t, a.Can(act, sub), "%s %s", act, sub)
				assert.False(t, a.CanField(act, sub, ""), "%s %s", act, sub)
			}
		}
	}
}

func TestWildcards(t *testing.T) {
	a := Build([]Rule{
		{Action: ActionManage, Subject: SubjectPatient},
		{Action: ActionRead, Subject: SubjectAll},
	})

	assert.True(t, a.Can(ActionDelete, SubjectPatient))
	assert.True(t, a.Can(ActionRead, SubjectInvoices))
	assert.False(t, a.Can(ActionDelete, SubjectDoctor))
	assert.False(t, a.Can(ActionManage, SubjectAll))
}

func TestCanField(t *testing.T) {
	a := Build([]Rule{
		{Action: ActionUpdate, Subject: SubjectPatient, Fields: []string{"phone", "address"}},
		{Action: ActionRead, Subject: SubjectPatient},
	})

	assert.True(t, a.CanField(ActionUpdate, SubjectPatient, "phone"))
	assert.False(t, a.CanField(ActionUpdate, SubjectPatient, "name"))
	assert.True(t, a.CanField(ActionRead, SubjectPatient, "name"))
	assert.False(t, a.CanField(ActionUpdate, SubjectDoctor, "phone"))
}

func TestCanFieldUnresolvedFieldIsPermissive(t *testing.T) {
	a := Build([]Rule{{Action: ActionUpdate, Subject: SubjectPatient, Fields: []string{"phone"}}})

	assert.True(t, a.CanField(ActionUpdate, SubjectPatient, ""))
	assert.False(t, a.CanField(ActionDelete, SubjectPatient, ""))
}

func TestBuildCopiesRules(t *testing.T) {
	rules := []Rule{{Action: ActionRead, Subject: SubjectDoctor}}
	a := Build(rules)
	rules[0] = Rule{Action: ActionManage, Subject: SubjectAll}

	assert.False(t, a.Can(ActionDelete, SubjectUser))
	assert.Len(t, a.Rules(), 1)
}

func TestNewRule(t *testing.T) {
	r, err := NewRule("update", "Patient", "phone")
	require.NoError(t, err)
	assert.Equal(t, Rule{Action: ActionUpdate, Subject: SubjectPatient, Fields: []string{"phone"}}, r)

	_, err = NewRule("approve", "Patient")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	_, err = NewRule("read", "patients")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSubject)
}

func TestPrincipalPrivileged(t *testing.T) {
	super := &Principal{RoleID: model.RoleSuperAdmin, Ability: Build(nil)}
	superuser := &Principal{RoleID: model.RoleSuperuser, Ability: Build(RulesForRole(model.RoleSuperuser))}
	admin := &Principal{RoleID: model.RoleAdmin, Ability: Build(RulesForRole(model.RoleAdmin))}

	assert.True(t, super.Privileged())
	assert.True(t, superuser.Privileged())
	assert.False(t, admin.Privileged())
	assert.False(t, (*Principal)(nil).Privileged())
	assert.False(t, Anonymous().Privileged())
}

func TestPrincipalContext(t *testing.T) {
	p := &Principal{RoleID: model.RoleDoctor, Ability: Build(RulesForRole(model.RoleDoctor))}
	ctx := WithPrincipal(context.Background(), p)

	assert.Same(t, p, FromContext(ctx))
	assert.False(t, FromContext(context.Background()).Can(ActionRead, SubjectDoctor))
}

func TestPrincipalAuthenticated(t *testing.T) {
	guest := &Principal{UserID: uuid.New(), RoleID: model.RoleGuest, Ability: Build(RulesForRole(model.RoleGuest))}

	assert.True(t, guest.Authenticated())
	assert.True(t, (&Principal{RoleID: model.RoleSuperAdmin}).Authenticated())
	assert.False(t, Anonymous().Authenticated())
	assert.False(t, FromContext(context.Background()).Authenticated())
	assert.False(t, (*Principal)(nil).Authenticated())
}
