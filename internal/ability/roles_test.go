package ability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/clinic-api/internal/model"
)

func TestDoctorRole(t *testing.T) {
	a := Build(RulesForRole(model.RoleDoctor))

	assert.False(t, a.Can(ActionDelete, SubjectPatient))
	assert.False(t, a.Can(ActionManage, SubjectUser))
	assert.True(t, a.Can(ActionUpdate, SubjectAppointment))
	assert.True(t, a.Can(ActionRead, SubjectInvoices))
	assert.False(t, a.Can(ActionUpdate, SubjectInvoices))
}

func TestPatientRole(t *testing.T) {
	a := Build(RulesForRole(model.RolePatient))

	assert.True(t, a.Can(ActionCreate, SubjectAppointment))
	assert.False(t, a.Can(ActionUpdate, SubjectDoctor))
	assert.False(t, a.Can(ActionRead, SubjectDashboard))
}

func TestRoleTable(t *testing.T) {
	tests := []struct {
		role  model.RoleID
		rules int
	}{
		{model.RoleSuperAdmin, 1},
		{model.RoleSuperuser, 1},
		{model.RoleAdmin, 6},
		{model.RoleDoctor, 8},
		{model.RolePatient, 4},
		{model.RoleGuest, 2},
		{model.RoleID(999), 0},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			assert.Len(t, RulesForRole(tt.role), tt.rules)
		})
	}
}

func TestAdminRole(t *testing.T) {
	a := Build(RulesForRole(model.RoleAdmin))

	assert.True(t, a.Can(ActionDelete, SubjectInvoices))
	assert.True(t, a.Can(ActionRead, SubjectDashboard))
	assert.False(t, a.Can(ActionUpdate, SubjectDashboard))
	assert.False(t, a.Can(ActionManage, SubjectAll))
}

func TestGuestRole(t *testing.T) {
	a := Build(RulesForRole(model.RoleGuest))

	assert.True(t, a.Can(ActionRead, SubjectDoctor))
	assert.True(t, a.Can(ActionRead, SubjectAppointment))
	assert.False(t, a.Can(ActionCreate, SubjectAppointment))
}

func TestRulesForRoleReturnsCopy(t *testing.T) {
	rules := RulesForRole(model.RoleSuperuser)
	rules[0].Subject = SubjectDoctor

	assert.Equal(t, SubjectAll, RulesForRole(model.RoleSuperuser)[0].Subject)
}
