package ability

import (
	stderrors "errors"
	"fmt"

	"github.com/jwalitptl/clinic-api/pkg/errors"
)

// Action is the operation a rule authorizes.
type Action string

const (
	ActionManage Action = "manage"
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Subject is the resource type a rule applies to.
type Subject string

const (
	SubjectUser        Subject = "User"
	SubjectPatient     Subject = "Patient"
	SubjectDoctor      Subject = "Doctor"
	SubjectAppointment Subject = "Appointment"
	SubjectDashboard   Subject = "Dashboard"
	SubjectInvoices    Subject = "Invoices"
	SubjectAll         Subject = "all"
)

var (
	ErrUnknownAction  = stderrors.New("ability: unknown action")
	ErrUnknownSubject = stderrors.New("ability: unknown subject")
)

func (a Action) Valid() bool {
	switch a {
	case ActionManage, ActionRead, ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

func (s Subject) Valid() bool {
	switch s {
	case SubjectUser, SubjectPatient, SubjectDoctor, SubjectAppointment,
		SubjectDashboard, SubjectInvoices, SubjectAll:
		return true
	}
	return false
}

// Rule grants one action on one subject, optionally limited to a set of
// fields. Conditions are carried for clients and never evaluated here.
type Rule struct {
	Action     Action                 `json:"action"`
	Subject    Subject                `json:"subject"`
	Fields     []string               `json:"fields,omitempty"`
	Conditions map[string]interface{} `json:"conditions,omitempty"`
}

// NewRule builds a rule from raw strings, rejecting anything outside the
// known action and subject sets.
func NewRule(action, subject string, fields ...string) (Rule, error) {
	a := Action(action)
	if !a.Valid() {
		return Rule{}, errors.BadRequest(fmt.Sprintf("unknown action %q", action), ErrUnknownAction)
	}
	s := Subject(subject)
	if !s.Valid() {
		return Rule{}, errors.BadRequest(fmt.Sprintf("unknown subject %q", subject), ErrUnknownSubject)
	}

	r := Rule{Action: a, Subject: s}
	if len(fields) > 0 {
		r.Fields = append([]string(nil), fields...)
	}
	return r, nil
}

func (r Rule) matches(action Action, subject Subject) bool {
	return (r.Action == action || r.Action == ActionManage) &&
		(r.Subject == subject || r.Subject == SubjectAll)
}

func (r Rule) allowsField(field string) bool {
	if len(r.Fields) == 0 {
		return true
	}
	for _, f := range r.Fields {
		if f == field {
			return true
		}
	}
	return false
}
