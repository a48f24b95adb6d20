package domain

import (
	"errors"
	"time"
)

type BillingPlan string

const (
	PlanMonthly BillingPlan = "monthly"
	PlanAnnual  BillingPlan = "annual"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentActive  PaymentStatus = "active"
)

// ContractVersion is stamped on every contract acceptance row.
const ContractVersion = "v1"

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrWrongStep    = errors.New("operation not allowed on the current step")
)

// Guardian is the adult submitting the registration. Its ID is the key every
// other row of a registration points at.
type Guardian struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Address       string        `json:"address"`
	PostCode      string        `json:"post_code"`
	HomePhone     *string       `json:"home_phone"`
	MobilePhone   string        `json:"mobile_phone"`
	WorkPhone     *string       `json:"work_phone"`
	Relationship  string        `json:"relationship"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
}

type Member struct {
	UserID                   string      `json:"user_id"`
	Name                     string      `json:"name"`
	Package                  string      `json:"package"`
	PackageQuantity          int         `json:"package_quantity"`
	Activity                 string      `json:"activity"`
	Day                      string      `json:"day"`
	Time                     string      `json:"time"`
	DateOfBirth              string      `json:"date_of_birth"`
	Gender                   string      `json:"gender"`
	SiblingAttends           bool        `json:"sibling_attends"`
	HasMedicalConditions     bool        `json:"has_medical_conditions"`
	MedicalConditionsDetails *string     `json:"medical_conditions_details"`
	HasAllergies             bool        `json:"has_allergies"`
	AllergiesDetails         *string     `json:"allergies_details"`
	HasInjury                bool        `json:"has_injury"`
	InjuryDetails            *string     `json:"injury_details"`
	PhotoConsent             bool        `json:"photo_consent"`
	FirstAidConsent          bool        `json:"first_aid_consent"`
	MembershipOption         BillingPlan `json:"membership_option"`
	BranchID                 *string     `json:"branch_id"`
}

type EmergencyContact struct {
	UserID       string  `json:"user_id"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	PostCode     string  `json:"post_code"`
	HomePhone    *string `json:"home_phone"`
	MobilePhone  string  `json:"mobile_phone"`
	WorkPhone    *string `json:"work_phone"`
	Relationship string  `json:"relationship"`
}

type Signature struct {
	UserID    string `json:"user_id"`
	Data      string `json:"signature_data"`
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
}

type ContractAcceptance struct {
	UserID          string    `json:"user_id"`
	AcceptedAt      time.Time `json:"accepted_at"`
	ContractVersion string    `json:"contract_version"`
}

// Registration is the full record set written for one submission.
type Registration struct {
	Guardian           Guardian
	Member             Member
	EmergencyContact   EmergencyContact
	Signature          Signature
	ContractAcceptance ContractAcceptance
}

// PaymentProfile is what the payment flow needs to know about a registered
// guardian.
type PaymentProfile struct {
	UserID          string
	Name            string
	Email           string
	Address         string
	PostCode        string
	MemberName      string
	Plan            BillingPlan
	Package         string
	PackageQuantity int
	BranchID        string
}

// Confirmation is the payload of a contract confirmation notification.
type Confirmation struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	MemberName    string `json:"memberName"`
	SignatureData string `json:"signatureData"`
}

// Mandate is what the payment provider returns once a redirect flow is
// completed.
type Mandate struct {
	MandateID  string `json:"mandate_id"`
	CustomerID string `json:"customer_id"`
}

// StoreError names the write that failed, e.g. "insert member".
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }
