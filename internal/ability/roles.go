package ability

import "github.com/jwalitptl/clinic-api/internal/model"

var roleRules = map[string][]Rule{
	"superadmin": {
		{Action: ActionManage, Subject: SubjectAll},
	},
	"admin": {
		{Action: ActionManage, Subject: SubjectUser},
		{Action: ActionManage, Subject: SubjectPatient},
		{Action: ActionManage, Subject: SubjectDoctor},
		{Action: ActionManage, Subject: SubjectAppointment},
		{Action: ActionManage, Subject: SubjectInvoices},
		{Action: ActionRead, Subject: SubjectDashboard},
	},
	"doctor": {
		{Action: ActionRead, Subject: SubjectDoctor},
		{Action: ActionUpdate, Subject: SubjectDoctor},
		{Action: ActionRead, Subject: SubjectPatient},
		{Action: ActionRead, Subject: SubjectAppointment},
		{Action: ActionUpdate, Subject: SubjectAppointment},
		{Action: ActionCreate, Subject: SubjectAppointment},
		{Action: ActionRead, Subject: SubjectDashboard},
		{Action: ActionRead, Subject: SubjectInvoices},
	},
	"patient": {
		{Action: ActionRead, Subject: SubjectPatient},
		{Action: ActionRead, Subject: SubjectAppointment},
		{Action: ActionCreate, Subject: SubjectAppointment},
		{Action: ActionRead, Subject: SubjectInvoices},
	},
	"guest": {
		{Action: ActionRead, Subject: SubjectDoctor},
		{Action: ActionRead, Subject: SubjectAppointment},
	},
}

// RulesForRole returns the fixed rule table entry for a role. Unknown roles
// get no rules.
func RulesForRole(role model.RoleID) []Rule {
	rules := roleRules[role.Name()]
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}
