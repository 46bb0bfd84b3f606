package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
)

type Capability string

const (
	CapList   Capability = "list"
	CapShow   Capability = "show"
	CapEdit   Capability = "edit"
	CapCreate Capability = "create"
	CapDelete Capability = "delete"
)

var (
	ErrUnknownField = errors.New("unknown_field")
	ErrInvalidValue = errors.New("invalid_value")
	ErrNotSupported = errors.New("operation_not_supported")
	ErrEmptyEdit    = errors.New("empty_edit")
)

type FieldKind string

const (
	KindString FieldKind = "string"
	KindNumber FieldKind = "number"
)

// EditableField describes one field an admin may change.
type EditableField struct {
	Name     string    `json:"name"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required,omitempty"`
	Options  []string  `json:"options,omitempty"`
}

// Resource is a graph collection the dashboard can browse.
type Resource struct {
	Name         string          `json:"name"`
	Label        string          `json:"label"`
	Path         string          `json:"path"`
	IDType       string          `json:"-"`
	Selection    string          `json:"-"`
	Capabilities []Capability    `json:"capabilities"`
	Editable     []EditableField `json:"editable,omitempty"`
}

func (r Resource) Can(c Capability) bool {
	return slices.Contains(r.Capabilities, c)
}

// ValidateEdit checks a partial update against the editable fields. Numbers
// may arrive as JSON numbers or numeric strings; they are returned as float64.
func (r Resource) ValidateEdit(values map[string]any) (map[string]any, error) {
	if !r.Can(CapEdit) {
		return nil, fmt.Errorf("%w: %s cannot be edited", ErrNotSupported, r.Name)
	}
	if len(values) == 0 {
		return nil, ErrEmptyEdit
	}

	out := make(map[string]any, len(values))
	for name, v := range values {
		f, ok := r.field(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, r.Name, name)
		}
		clean, err := f.coerce(v)
		if err != nil {
			return nil, err
		}
		out[name] = clean
	}
	return out, nil
}

func (r Resource) field(name string) (EditableField, bool) {
	for _, f := range r.Editable {
		if f.Name == name {
			return f, true
		}
	}
	return EditableField{}, false
}

func (f EditableField) coerce(v any) (any, error) {
	switch f.Kind {
	case KindNumber:
		var n float64
		switch x := v.(type) {
		case float64:
			n = x
		case int:
			n = float64(x)
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidValue, f.Name)
			}
			n = parsed
		default:
			return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidValue, f.Name)
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidValue, f.Name)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: %s must not be negative", ErrInvalidValue, f.Name)
		}
		return n, nil
	default:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidValue, f.Name)
		}
		if f.Required && strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidValue, f.Name)
		}
		if len(f.Options) > 0 && !slices.Contains(f.Options, s) {
			return nil, fmt.Errorf("%w: %s must be one of %s", ErrInvalidValue, f.Name, strings.Join(f.Options, ", "))
		}
		return s, nil
	}
}

const partySelection = "id profile { first_name last_name }"

var resources = map[string]Resource{
	"users": {
		Name:         "users",
		Label:        "Users",
		Path:         "/users",
		Selection:    "id email phone role status created_at profile { first_name last_name }",
		Capabilities: []Capability{CapList, CapShow, CapEdit},
		Editable: []EditableField{
			{Name: "role", Kind: KindString, Options: []string{"consumer", "provider", "admin"}},
			{Name: "status", Kind: KindString, Options: []string{"active", "inactive", "suspended", "pending_verification"}},
		},
	},
	"services": {
		Name:  "services",
		Label: "Services",
		Path:  "/services",
		Selection: "id title description base_price currency average_rating booking_count status " +
			"category { name } provider { " + partySelection + " }",
		Capabilities: []Capability{CapList, CapShow, CapEdit},
		Editable: []EditableField{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "description", Kind: KindString},
			{Name: "base_price", Kind: KindNumber},
			{Name: "status", Kind: KindString, Options: []string{"active", "draft", "paused", "archived"}},
		},
	},
	"bookings": {
		Name:  "bookings",
		Label: "Bookings",
		Path:  "/bookings",
		Selection: "id reference scheduled_date scheduled_time_start scheduled_time_end " +
			"service_address service_city service_state total_amount currency status " +
			"created_at paid_at started_at completed_at cancelled_at service { title } " +
			"consumer { " + partySelection + " } provider { " + partySelection + " }",
		Capabilities: []Capability{CapList, CapShow},
	},
	"transactions": {
		Name:  "transactions",
		Label: "Transactions",
		Path:  "/transactions",
		Selection: "id reference type amount fee currency balance_before balance_after status " +
			"description external_reference initiated_at completed_at created_at",
		Capabilities: []Capability{CapList, CapShow},
	},
	"remittances": {
		Name:  "remittances",
		Label: "Remittances",
		Path:  "/remittances",
		Selection: "id reference source_amount source_currency target_amount target_currency " +
			"fx_rate total_fee delivery_method purpose status compliance_status compliance_notes " +
			"aml_checked aml_checked_at external_reference estimated_delivery created_at " +
			"user { " + partySelection + " } beneficiary { first_name last_name }",
		Capabilities: []Capability{CapList, CapShow},
	},
	"beneficiaries": {
		Name:  "beneficiaries",
		Label: "Beneficiaries",
		Path:  "/beneficiaries",
		Selection: "id first_name middle_name last_name nickname relationship country state city " +
			"address_line phone_primary phone_secondary email preferred_delivery_method " +
			"preferred_currency bank_name account_name account_number mobile_wallet_provider " +
			"mobile_wallet_number is_favorite status verification_status transfer_count " +
			"total_transferred last_transfer_at",
		Capabilities: []Capability{CapList, CapShow},
	},
	"savings_circles": {
		Name:  "savings_circles",
		Label: "Savings Circles",
		Path:  "/savings-circles",
		Selection: "id name description contribution_amount contribution_frequency currency " +
			"max_members current_cycle total_cycles total_contributed total_disbursed " +
			"start_date next_contribution_date status creator { " + partySelection + " }",
		Capabilities: []Capability{CapList, CapShow},
	},
	"notifications": {
		Name:         "notifications",
		Label:        "Notifications",
		Path:         "/notifications",
		Selection:    "id type title body status sent_at created_at user { " + partySelection + " }",
		Capabilities: []Capability{CapList},
	},
}

// LookupResource finds a resource by name or route path ("savings-circles").
func LookupResource(name string) (Resource, bool) {
	if r, ok := resources[name]; ok {
		return withDefaults(r), true
	}
	for _, r := range resources {
		if strings.TrimPrefix(r.Path, "/") == name {
			return withDefaults(r), true
		}
	}
	return Resource{}, false
}

// Resources lists every resource sorted by name.
func Resources() []Resource {
	out := make([]Resource, 0, len(resources))
	for _, r := range resources {
		out = append(out, withDefaults(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func withDefaults(r Resource) Resource {
	if r.IDType == "" {
		r.IDType = "uuid"
	}
	return r
}
