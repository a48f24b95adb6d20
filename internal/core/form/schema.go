package form

import (
	"strconv"
	"strings"
)

// Field names match the JSON keys of State.
const (
	FieldMemberName      = "memberName"
	FieldPackage         = "package"
	FieldPackageQuantity = "packageQuantity"
	FieldActivity        = "activity"
	FieldDay             = "day"
	FieldTime            = "time"
	FieldDateOfBirth     = "dateOfBirth"
	FieldGender          = "gender"

	FieldGuardianName         = "guardianName"
	FieldGuardianEmail        = "guardianEmail"
	FieldGuardianAddress      = "guardianAddress"
	FieldGuardianPostCode     = "guardianPostCode"
	FieldGuardianHomePhone    = "guardianHomePhone"
	FieldGuardianMobilePhone  = "guardianMobilePhone"
	FieldGuardianWorkPhone    = "guardianWorkPhone"
	FieldGuardianRelationship = "guardianRelationship"

	FieldEmergencyName         = "emergencyName"
	FieldEmergencyAddress      = "emergencyAddress"
	FieldEmergencyPostCode     = "emergencyPostCode"
	FieldEmergencyHomePhone    = "emergencyHomePhone"
	FieldEmergencyMobilePhone  = "emergencyMobilePhone"
	FieldEmergencyWorkPhone    = "emergencyWorkPhone"
	FieldEmergencyRelationship = "emergencyRelationship"

	FieldHasMedicalConditions     = "hasMedicalConditions"
	FieldMedicalConditionsDetails = "medicalConditionsDetails"
	FieldHasAllergies             = "hasAllergies"
	FieldAllergiesDetails         = "allergiesDetails"
	FieldHasInjury                = "hasInjury"
	FieldInjuryDetails            = "injuryDetails"

	FieldMembershipOption = "membershipOption"
	FieldContractRead     = "contractRead"
	FieldContractAgreed   = "contractAgreed"
	FieldSignatureData    = "signatureData"
)

// Allowed values of the enumerated fields.
var (
	Packages        = []string{"Bronze", "Silver", "Gold", "Platinum"}
	Activities      = []string{"gymnastics", "trampolining"}
	Days            = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	Times           = []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00", "17:00", "18:00"}
	Genders         = []string{"male", "female", "other", "prefer-not-to-say"}
	MembershipPlans = []string{"monthly", "annual"}
)

// MaxPackageQuantity caps how many packages one member can book.
const MaxPackageQuantity = 21

// MinSignatureLength is the shortest string accepted as an encoded signature
// image. A blank 1x1 PNG data URL is already longer than this.
const MinSignatureLength = 64

// Rule binds a field to the check it must pass. When is consulted first; a
// rule whose When returns false is skipped entirely.
type Rule struct {
	Field   string
	When    func(State) bool
	Value   func(State) any
	Tag     string
	Message string
}

func text(v string) string { return strings.TrimSpace(v) }

func oneOf(values []string) string { return "oneof=" + strings.Join(values, " ") }

// rules is the declarative rule table for the whole form. Fields without an
// entry (boolean flags, consents) are always valid.
var rules = []Rule{
	{Field: FieldMemberName, Value: func(s State) any { return text(s.MemberName) }, Tag: "required,min=2", Message: "Full name is required"},
	{Field: FieldPackage, Value: func(s State) any { return s.Package }, Tag: "required," + oneOf(Packages), Message: "Package is required"},
	{Field: FieldPackageQuantity, Value: func(s State) any { return s.PackageQuantity }, Tag: "omitempty,min=1,max=" + strconv.Itoa(MaxPackageQuantity), Message: "Package quantity must be between 1 and 21"},
	{Field: FieldActivity, Value: func(s State) any { return s.Activity }, Tag: "required," + oneOf(Activities), Message: "Sport is required"},
	{Field: FieldDay, Value: func(s State) any { return s.Day }, Tag: "required," + oneOf(Days), Message: "Day is required"},
	{Field: FieldTime, Value: func(s State) any { return s.Time }, Tag: "required," + oneOf(Times), Message: "Time is required"},
	{Field: FieldDateOfBirth, Value: func(s State) any { return text(s.DateOfBirth) }, Tag: "required,datetime=2006-01-02,notfuture", Message: "Date of birth is required"},
	{Field: FieldGender, Value: func(s State) any { return s.Gender }, Tag: "required," + oneOf(Genders), Message: "Gender is required"},

	{Field: FieldGuardianName, Value: func(s State) any { return text(s.GuardianName) }, Tag: "required,min=2", Message: "Guardian name is required"},
	{Field: FieldGuardianEmail, Value: func(s State) any { return text(s.GuardianEmail) }, Tag: "required,email", Message: "Valid email is required"},
	{Field: FieldGuardianAddress, Value: func(s State) any { return text(s.GuardianAddress) }, Tag: "required,min=5", Message: "Address is required"},
	{Field: FieldGuardianPostCode, Value: func(s State) any { return text(s.GuardianPostCode) }, Tag: "required,min=5", Message: "Post code is required"},
	{Field: FieldGuardianMobilePhone, Value: func(s State) any { return text(s.GuardianMobilePhone) }, Tag: "required,phone", Message: "Mobile phone is required"},
	{Field: FieldGuardianRelationship, Value: func(s State) any { return text(s.GuardianRelationship) }, Tag: "required", Message: "Relationship is required"},

	{Field: FieldEmergencyName, Value: func(s State) any { return text(s.EmergencyName) }, Tag: "required,min=2", Message: "Emergency contact name is required"},
	{Field: FieldEmergencyAddress, Value: func(s State) any { return text(s.EmergencyAddress) }, Tag: "required,min=5", Message: "Address is required"},
	{Field: FieldEmergencyPostCode, Value: func(s State) any { return text(s.EmergencyPostCode) }, Tag: "required,min=5", Message: "Post code is required"},
	{Field: FieldEmergencyMobilePhone, Value: func(s State) any { return text(s.EmergencyMobilePhone) }, Tag: "required,phone", Message: "Mobile phone is required"},
	{Field: FieldEmergencyRelationship, Value: func(s State) any { return text(s.EmergencyRelationship) }, Tag: "required", Message: "Relationship is required"},

	{
		Field:   FieldMedicalConditionsDetails,
		When:    func(s State) bool { return s.HasMedicalConditions },
		Value:   func(s State) any { return text(s.MedicalConditionsDetails) },
		Tag:     "required",
		Message: "Please provide details of the medical conditions",
	},
	{
		Field:   FieldAllergiesDetails,
		When:    func(s State) bool { return s.HasAllergies },
		Value:   func(s State) any { return text(s.AllergiesDetails) },
		Tag:     "required",
		Message: "Please provide details of the allergies",
	},
	{
		Field:   FieldInjuryDetails,
		When:    func(s State) bool { return s.HasInjury },
		Value:   func(s State) any { return text(s.InjuryDetails) },
		Tag:     "required",
		Message: "Please provide details of the injury",
	},

	{Field: FieldMembershipOption, Value: func(s State) any { return s.MembershipOption }, Tag: "required," + oneOf(MembershipPlans), Message: "Please select a membership option"},
	{Field: FieldContractRead, Value: func(s State) any { return s.ContractRead }, Tag: "istrue", Message: "You must read the contract before proceeding"},
	{Field: FieldContractAgreed, Value: func(s State) any { return s.ContractAgreed }, Tag: "istrue", Message: "You must agree to the terms and conditions"},
	{Field: FieldSignatureData, Value: func(s State) any { return s.SignatureData }, Tag: "required,imagedata", Message: "Signature is required"},
}

// Rules returns a copy of the rule table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}
