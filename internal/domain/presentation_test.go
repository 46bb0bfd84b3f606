package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusColor(t *testing.T) {
	tests := []struct {
		resource, status, want string
	}{
		{"users", "suspended", "red"},
		{"users", "pending_verification", "orange"},
		{"services", "draft", "default"},
		{"bookings", "in_progress", "purple"},
		{"bookings", "refunded", "magenta"},
		{"transactions", "reversed", "magenta"},
		{"remittances", "in_transit", "geekblue"},
		{"remittances", "on_hold", "volcano"},
		{"beneficiaries", "blocked", "red"},
		{"savings_circles", "forming", "blue"},
		{"notifications", "read", "cyan"},
		{"bookings", "teleported", "default"},
		{"unknown", "active", "default"},
	}
	for _, tt := range tests {
		t.Run(tt.resource+"/"+tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusColor(tt.resource, tt.status))
		})
	}
}

func TestTypeColor(t *testing.T) {
	assert.Equal(t, "lime", TypeColor("transactions", "deposit"))
	assert.Equal(t, "orange", TypeColor("transactions", "withdrawal"))
	assert.Equal(t, "green", TypeColor("notifications", "in_app"))
	assert.Equal(t, "default", TypeColor("notifications", "pigeon"))
	assert.Equal(t, "default", TypeColor("users", "credit"))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "IN PROGRESS", StatusLabel("in_progress"))
	assert.Equal(t, "PENDING VERIFICATION", StatusLabel("pending_verification"))
	assert.Equal(t, "", StatusLabel(""))
}

func TestRemittanceStep(t *testing.T) {
	assert.Equal(t, 0, RemittanceStep("pending"))
	assert.Equal(t, 4, RemittanceStep("in_transit"))
	assert.Equal(t, 6, RemittanceStep("completed"))
	assert.Equal(t, -1, RemittanceStep("failed"))
	assert.Equal(t, -1, RemittanceStep("on_hold"))

	steps := RemittanceSteps()
	steps[0] = "mutated"
	assert.Equal(t, 0, RemittanceStep("pending"), "steps are copied")
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		currency string
		amount   float64
		want     string
	}{
		{"NGN", 15000, "NGN 15,000"},
		{"", 975000, "NGN 975,000"},
		{"GBP", 500, "GBP 500"},
		{"USD", 1234567.891, "USD 1,234,567.891"},
		{"USD", 0.1234, "USD 0.123"},
		{"NGN", -2500.5, "NGN -2,500.5"},
		{"NGN", 0, "NGN 0"},
		{"NGN", -0.0001, "NGN 0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.currency, tt.amount))
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
	tests := []struct {
		name        string
		in          any
		date, dtime string
	}{
		{"timestamptz", "2024-03-09T14:05:27.123456+00:00", "09 Mar 2024", "09 Mar 2024 14:05"},
		{"utc suffix", "2024-03-09T14:05:27Z", "09 Mar 2024", "09 Mar 2024 14:05"},
		{"offset converted to utc", "2024-03-10T00:30:00+01:00", "09 Mar 2024", "09 Mar 2024 23:30"},
		{"zoneless timestamp", "2024-03-09T14:05:27.5", "09 Mar 2024", "09 Mar 2024 14:05"},
		{"postgres text form", "2024-03-09 14:05:27+00", "09 Mar 2024", "09 Mar 2024 14:05"},
		{"date column", "2024-03-09", "09 Mar 2024", "09 Mar 2024 00:00"},
		{"time value", ts, "09 Mar 2024", "09 Mar 2024 14:05"},
		{"time pointer", &ts, "09 Mar 2024", "09 Mar 2024 14:05"},
		{"nil pointer", (*time.Time)(nil), "-", "-"},
		{"null", nil, "-", "-"},
		{"empty", "", "-", "-"},
		{"garbage", "next tuesday", "-", "-"},
		{"wrong type", 1710000000, "-", "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.date, FormatDate(tt.in))
			assert.Equal(t, tt.dtime, FormatDateTime(tt.in))
		})
	}
}

func TestProfileNames(t *testing.T) {
	var nilParty *Party
	assert.Equal(t, "", nilParty.Name())
	assert.Equal(t, "Ada Obi", (&Party{Profile: &Profile{FirstName: "Ada", LastName: "Obi"}}).Name())
	assert.Equal(t, "Obi", (&Profile{LastName: "Obi"}).FullName())
	assert.Equal(t, "", (&Party{}).Name())
}
