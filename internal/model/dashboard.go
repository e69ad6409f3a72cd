package model

import "github.com/shopspring/decimal"

type DashboardStats struct {
	Patients           int64            `json:"patients" db:"patients"`
	Doctors            int64            `json:"doctors" db:"doctors"`
	AppointmentsTotal  int64            `json:"appointments_total" db:"appointments_total"`
	AppointmentsStatus map[string]int64 `json:"appointments_by_status" db:"-"`
	InvoicesTotal      int64            `json:"invoices_total" db:"invoices_total"`
	Revenue            decimal.Decimal  `json:"revenue" db:"revenue"`
	Outstanding        decimal.Decimal  `json:"outstanding" db:"outstanding"`
}

type StatusCount struct {
	Status string `db:"status"`
	Count  int64  `db:"count"`
}
