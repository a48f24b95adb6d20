package form

// DefaultIPAddress is sent when the client address was never resolved.
const DefaultIPAddress = "127.0.0.1"

// State holds every value entered across all steps of the registration form.
type State struct {
	// Member
	MemberName      string `json:"memberName"`
	Package         string `json:"package"`
	PackageQuantity int    `json:"packageQuantity"`
	Activity        string `json:"activity"`
	Day             string `json:"day"`
	Time            string `json:"time"`
	DateOfBirth     string `json:"dateOfBirth"`
	Gender          string `json:"gender"`
	SiblingAttends  bool   `json:"siblingAttends"`
	BranchID        string `json:"branchId,omitempty"`

	// Guardian
	GuardianName         string `json:"guardianName"`
	GuardianEmail        string `json:"guardianEmail"`
	GuardianAddress      string `json:"guardianAddress"`
	GuardianPostCode     string `json:"guardianPostCode"`
	GuardianHomePhone    string `json:"guardianHomePhone"`
	GuardianMobilePhone  string `json:"guardianMobilePhone"`
	GuardianWorkPhone    string `json:"guardianWorkPhone"`
	GuardianRelationship string `json:"guardianRelationship"`

	// Emergency contact
	EmergencyName         string `json:"emergencyName"`
	EmergencyAddress      string `json:"emergencyAddress"`
	EmergencyPostCode     string `json:"emergencyPostCode"`
	EmergencyHomePhone    string `json:"emergencyHomePhone"`
	EmergencyMobilePhone  string `json:"emergencyMobilePhone"`
	EmergencyWorkPhone    string `json:"emergencyWorkPhone"`
	EmergencyRelationship string `json:"emergencyRelationship"`

	// Medical
	HasMedicalConditions     bool   `json:"hasMedicalConditions"`
	MedicalConditionsDetails string `json:"medicalConditionsDetails"`
	HasAllergies             bool   `json:"hasAllergies"`
	AllergiesDetails         string `json:"allergiesDetails"`
	HasInjury                bool   `json:"hasInjury"`
	InjuryDetails            string `json:"injuryDetails"`

	// Consent
	PhotoConsent    bool `json:"photoConsent"`
	FirstAidConsent bool `json:"firstAidConsent"`

	MembershipOption string `json:"membershipOption"`
	IPAddress        string `json:"ipAddress"`

	ContractRead   bool   `json:"contractRead"`
	ContractAgreed bool   `json:"contractAgreed"`
	SignatureData  string `json:"signatureData"`
}

// NewState returns a state populated with the defaults a fresh form starts
// with.
func NewState() State {
	return State{
		PackageQuantity:  1,
		PhotoConsent:     true,
		FirstAidConsent:  true,
		MembershipOption: "monthly",
		IPAddress:        DefaultIPAddress,
	}
}
