package ability

import (
	"strings"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// Persisted grants use upper-case plural names. Only these map to subjects.
var subjectLexicon = map[string]Subject{
	"USERS":        SubjectUser,
	"USER":         SubjectUser,
	"PATIENTS":     SubjectPatient,
	"PATIENT":      SubjectPatient,
	"DOCTORS":      SubjectDoctor,
	"DOCTOR":       SubjectDoctor,
	"APPOINTMENTS": SubjectAppointment,
	"APPOINTMENT":  SubjectAppointment,
	"DASHBOARD":    SubjectDashboard,
	"ALL":          SubjectAll,
}

// FromGrants converts persisted role grants into rules. Rows with
// CanAccess == 0 are dropped, and rows whose subject or action is not in the
// lexicon are skipped without error.
func FromGrants(grants []model.RolePermission) []Rule {
	rules := make([]Rule, 0, len(grants))
	for _, g := range grants {
		if g.CanAccess == 0 {
			continue
		}
		subject, ok := subjectLexicon[strings.ToUpper(strings.TrimSpace(g.Subject))]
		if !ok {
			continue
		}
		action := Action(strings.ToLower(strings.TrimSpace(g.Action)))
		if !action.Valid() {
			continue
		}
		rules = append(rules, Rule{Action: action, Subject: subject})
	}
	return rules
}

// KnownGrant reports whether a grant row would survive FromGrants' lexicon
// filter, ignoring CanAccess.
func KnownGrant(g model.RolePermission) bool {
	if _, ok := subjectLexicon[strings.ToUpper(strings.TrimSpace(g.Subject))]; !ok {
		return false
	}
	return Action(strings.ToLower(strings.TrimSpace(g.Action))).Valid()
}
