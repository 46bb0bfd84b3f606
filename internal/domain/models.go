package domain

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName joins first and last name, skipping blanks.
func (p *Profile) FullName() string {
	if p == nil {
		return ""
	}
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Party is a user reference embedded in another record.
type Party struct {
	ID      uuid.UUID `json:"id"`
	Profile *Profile  `json:"profile,omitempty"`
}

func (p *Party) Name() string {
	if p == nil {
		return ""
	}
	return p.Profile.FullName()
}

type User struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	Profile   *Profile   `json:"profile,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type Category struct {
	Name string `json:"name"`
}

type Service struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      *Category `json:"category,omitempty"`
	Provider      *Party    `json:"provider,omitempty"`
	BasePrice     float64   `json:"base_price"`
	Currency      string    `json:"currency"`
	AverageRating float64   `json:"average_rating"`
	BookingCount  int       `json:"booking_count"`
	Status        string    `json:"status"`
}

type ServiceRef struct {
	Title string `json:"title"`
}

type Booking struct {
	ID                 uuid.UUID   `json:"id"`
	Reference          string      `json:"reference"`
	Service            *ServiceRef `json:"service,omitempty"`
	Consumer           *Party      `json:"consumer,omitempty"`
	Provider           *Party      `json:"provider,omitempty"`
	ScheduledDate      string      `json:"scheduled_date"`
	ScheduledTimeStart string      `json:"scheduled_time_start"`
	ScheduledTimeEnd   string      `json:"scheduled_time_end"`
	ServiceAddress     string      `json:"service_address"`
	ServiceCity        string      `json:"service_city"`
	ServiceState       string      `json:"service_state"`
	TotalAmount        float64     `json:"total_amount"`
	Currency           string      `json:"currency"`
	Status             string      `json:"status"`
	CreatedAt          *time.Time  `json:"created_at,omitempty"`
	PaidAt             *time.Time  `json:"paid_at,omitempty"`
	StartedAt          *time.Time  `json:"started_at,omitempty"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`
	CancelledAt        *time.Time  `json:"cancelled_at,omitempty"`
}

type Transaction struct {
	ID                uuid.UUID  `json:"id"`
	Reference         string     `json:"reference"`
	Type              string     `json:"type"`
	Amount            float64    `json:"amount"`
	Fee               float64    `json:"fee"`
	Currency          string     `json:"currency"`
	BalanceBefore     float64    `json:"balance_before"`
	BalanceAfter      float64    `json:"balance_after"`
	Status            string     `json:"status"`
	Description       string     `json:"description"`
	ExternalReference string     `json:"external_reference"`
	InitiatedAt       *time.Time `json:"initiated_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
}

type BeneficiaryRef struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Remittance struct {
	ID                uuid.UUID       `json:"id"`
	Reference         string          `json:"reference"`
	User              *Party          `json:"user,omitempty"`
	Beneficiary       *BeneficiaryRef `json:"beneficiary,omitempty"`
	SourceAmount      float64         `json:"source_amount"`
	SourceCurrency    string          `json:"source_currency"`
	TargetAmount      float64         `json:"target_amount"`
	TargetCurrency    string          `json:"target_currency"`
	FXRate            float64         `json:"fx_rate"`
	TotalFee          float64         `json:"total_fee"`
	DeliveryMethod    string          `json:"delivery_method"`
	Purpose           string          `json:"purpose"`
	Status            string          `json:"status"`
	ComplianceStatus  string          `json:"compliance_status"`
	ComplianceNotes   string          `json:"compliance_notes"`
	AMLChecked        bool            `json:"aml_checked"`
	AMLCheckedAt      *time.Time      `json:"aml_checked_at,omitempty"`
	ExternalReference string          `json:"external_reference"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty"`
	CreatedAt         *time.Time      `json:"created_at,omitempty"`
}

type Beneficiary struct {
	ID                      uuid.UUID  `json:"id"`
	FirstName               string     `json:"first_name"`
	MiddleName              string     `json:"middle_name"`
	LastName                string     `json:"last_name"`
	Nickname                string     `json:"nickname"`
	Relationship            string     `json:"relationship"`
	Country                 string     `json:"country"`
	State                   string     `json:"state"`
	City                    string     `json:"city"`
	AddressLine             string     `json:"address_line"`
	PhonePrimary            string     `json:"phone_primary"`
	PhoneSecondary          string     `json:"phone_secondary"`
	Email                   string     `json:"email"`
	PreferredDeliveryMethod string     `json:"preferred_delivery_method"`
	PreferredCurrency       string     `json:"preferred_currency"`
	BankName                string     `json:"bank_name"`
	AccountName             string     `json:"account_name"`
	AccountNumber           string     `json:"account_number"`
	MobileWalletProvider    string     `json:"mobile_wallet_provider"`
	MobileWalletNumber      string     `json:"mobile_wallet_number"`
	IsFavorite              bool       `json:"is_favorite"`
	Status                  string     `json:"status"`
	VerificationStatus      string     `json:"verification_status"`
	TransferCount           int        `json:"transfer_count"`
	TotalTransferred        float64    `json:"total_transferred"`
	LastTransferAt          *time.Time `json:"last_transfer_at,omitempty"`
}

type SavingsCircle struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	Description           string    `json:"description"`
	Creator               *Party    `json:"creator,omitempty"`
	ContributionAmount    float64   `json:"contribution_amount"`
	ContributionFrequency string    `json:"contribution_frequency"`
	Currency              string    `json:"currency"`
	MaxMembers            int       `json:"max_members"`
	CurrentCycle          int       `json:"current_cycle"`
	TotalCycles           int       `json:"total_cycles"`
	TotalContributed      float64   `json:"total_contributed"`
	TotalDisbursed        float64   `json:"total_disbursed"`
	StartDate             string    `json:"start_date"`
	NextContributionDate  string    `json:"next_contribution_date"`
	Status                string    `json:"status"`
}

type Notification struct {
	ID        uuid.UUID  `json:"id"`
	User      *Party     `json:"user,omitempty"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Status    string     `json:"status"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Page is one slice of a list plus the total matching count.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}
