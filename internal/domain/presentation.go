package domain

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DefaultColor is the tag colour for any value without an entry.
const DefaultColor = "default"

// DefaultCurrency is used when a record carries no currency.
const DefaultCurrency = "NGN"

var statusColors = map[string]map[string]string{
	"users": {
		"active":               "green",
		"inactive":             "default",
		"suspended":            "red",
		"pending_verification": "orange",
	},
	"services": {
		"active":   "green",
		"draft":    "default",
		"paused":   "orange",
		"archived": "red",
	},
	"bookings": {
		"pending":     "orange",
		"confirmed":   "blue",
		"paid":        "cyan",
		"in_progress": "purple",
		"completed":   "green",
		"cancelled":   "red",
		"refunded":    "magenta",
	},
	"transactions": {
		"pending":    "orange",
		"processing": "blue",
		"completed":  "green",
		"failed":     "red",
		"reversed":   "magenta",
	},
	"remittances": {
		"pending":    "orange",
		"quoted":     "blue",
		"initiated":  "cyan",
		"processing": "purple",
		"in_transit": "geekblue",
		"delivered":  "lime",
		"completed":  "green",
		"failed":     "red",
		"cancelled":  "default",
		"refunded":   "magenta",
		"on_hold":    "volcano",
	},
	"beneficiaries": {
		"active":               "green",
		"inactive":             "default",
		"pending_verification": "orange",
		"blocked":              "red",
	},
	"savings_circles": {
		"forming":   "blue",
		"active":    "green",
		"paused":    "orange",
		"completed": "cyan",
		"dissolved": "red",
	},
	"notifications": {
		"pending":   "orange",
		"sent":      "blue",
		"delivered": "green",
		"failed":    "red",
		"read":      "cyan",
	},
}

var typeColors = map[string]map[string]string{
	"transactions": {
		"credit":     "green",
		"debit":      "red",
		"transfer":   "blue",
		"payment":    "purple",
		"refund":     "cyan",
		"withdrawal": "orange",
		"deposit":    "lime",
	},
	"notifications": {
		"push":   "purple",
		"sms":    "blue",
		"email":  "cyan",
		"in_app": "green",
	},
}

// StatusColor returns the tag colour the dashboard shows for a status.
func StatusColor(resource, status string) string {
	return lookupColor(statusColors, resource, status)
}

// TypeColor returns the tag colour for a transaction or notification type.
func TypeColor(resource, typ string) string {
	return lookupColor(typeColors, resource, typ)
}

func lookupColor(table map[string]map[string]string, resource, value string) string {
	if c, ok := table[resource][value]; ok {
		return c
	}
	return DefaultColor
}

// StatusLabel renders a status for display: in_progress becomes IN PROGRESS.
func StatusLabel(status string) string {
	return strings.ToUpper(strings.ReplaceAll(status, "_", " "))
}

var remittanceSteps = []string{"pending", "quoted", "initiated", "processing", "in_transit", "delivered", "completed"}

// RemittanceSteps returns the happy-path progression of a remittance.
func RemittanceSteps() []string {
	return slices.Clone(remittanceSteps)
}

// RemittanceStep is the index of status in RemittanceSteps, or -1 for a
// status off the happy path (failed, cancelled, refunded, on_hold).
func RemittanceStep(status string) int {
	return slices.Index(remittanceSteps, status)
}

// FormatAmount renders "<currency> <amount>" with thousands separators and at
// most three fraction digits. An empty currency means NGN.
func FormatAmount(currency string, amount float64) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return currency + " " + groupThousands(amount)
}

func groupThousands(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	s := strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	if b.String() == "0" {
		sign = ""
	}
	return sign + b.String()
}

// Display layouts for calendar dates and timestamps. Times are shown in UTC.
const (
	DateLayout     = "02 Jan 2006"
	DateTimeLayout = "02 Jan 2006 15:04"
)

// timeLayouts covers timestamptz, zoneless timestamp and date columns as the
// graph service serialises them. Fractional seconds parse under every layout.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z07",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTime reads a timestamp or date value. Values without a zone are UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a date as "02 Jan 2006", or "-" when v is null or
// unparseable.
func FormatDate(v any) string {
	return formatTime(v, DateLayout)
}

// FormatDateTime renders a timestamp as "02 Jan 2006 15:04", or "-".
func FormatDateTime(v any) string {
	return formatTime(v, DateTimeLayout)
}

func formatTime(v any, layout string) string {
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case *time.Time:
		if x != nil {
			t = *x
		}
	case string:
		t, _ = ParseTime(x)
	}
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(layout)
}
