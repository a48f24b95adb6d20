package form

import "fmt"

type StepID string

const (
	StepMemberInfo       StepID = "member-info"
	StepGuardianInfo     StepID = "guardian-info"
	StepEmergencyContact StepID = "emergency-contact"
	StepMedicalInfo      StepID = "medical-info"
	StepConsent          StepID = "consent"
	StepPaymentInfo      StepID = "payment-info"
	StepContract         StepID = "contract"
	StepSignature        StepID = "signature"
)

type Step struct {
	ID     StepID   `json:"id"`
	Label  string   `json:"label"`
	Fields []string `json:"fields"`
}

var steps = []Step{
	{
		ID:    StepMemberInfo,
		Label: "Member Info",
		Fields: []string{
			FieldMemberName, FieldPackage, FieldPackageQuantity, FieldActivity,
			FieldDay, FieldTime, FieldDateOfBirth, FieldGender,
		},
	},
	{
		ID:    StepGuardianInfo,
		Label: "Guardian Info",
		Fields: []string{
			FieldGuardianName, FieldGuardianEmail, FieldGuardianAddress, FieldGuardianPostCode,
			FieldGuardianHomePhone, FieldGuardianMobilePhone, FieldGuardianWorkPhone, FieldGuardianRelationship,
		},
	},
	{
		ID:    StepEmergencyContact,
		Label: "Emergency Contact",
		Fields: []string{
			FieldEmergencyName, FieldEmergencyAddress, FieldEmergencyPostCode,
			FieldEmergencyHomePhone, FieldEmergencyMobilePhone, FieldEmergencyWorkPhone, FieldEmergencyRelationship,
		},
	},
	{
		// Detail rules carry their own When predicate, so listing them here
		// only validates them while the matching flag is set.
		ID:    StepMedicalInfo,
		Label: "Medical Info",
		Fields: []string{
			FieldHasMedicalConditions, FieldMedicalConditionsDetails,
			FieldHasAllergies, FieldAllergiesDetails,
			FieldHasInjury, FieldInjuryDetails,
		},
	},
	{ID: StepConsent, Label: "Consent"},
	{ID: StepPaymentInfo, Label: "Payment", Fields: []string{FieldMembershipOption}},
	{ID: StepContract, Label: "Contract", Fields: []string{FieldContractRead}},
	{ID: StepSignature, Label: "Signature", Fields: []string{FieldContractAgreed, FieldSignatureData}},
}

// Steps returns the fixed step order.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// Transition describes the outcome of a next/previous request.
type Transition struct {
	From        StepID `json:"from"`
	To          StepID `json:"to"`
	Moved       bool   `json:"moved"`
	ScrollToTop bool   `json:"scrollToTop"`
	Result      Result `json:"result"`
}

// Sequencer walks the fixed step order. Exactly one step is active; it moves
// forward only when the active step's fields validate.
type Sequencer struct {
	validator *Validator
	index     int
}

func NewSequencer(v *Validator) *Sequencer {
	return &Sequencer{validator: v}
}

// RestoreSequencer positions a sequencer on a previously saved step.
func RestoreSequencer(v *Validator, id StepID) (*Sequencer, error) {
	for i, st := range steps {
		if st.ID == id {
			return &Sequencer{validator: v, index: i}, nil
		}
	}
	return nil, fmt.Errorf("unknown step %q", id)
}

func (s *Sequencer) Current() Step { return steps[s.index] }

// Index is the zero-based position of the active step.
func (s *Sequencer) Index() int { return s.index }

func (s *Sequencer) IsFirst() bool { return s.index == 0 }

func (s *Sequencer) IsLast() bool { return s.index == len(steps)-1 }

// Progress is (1-based position) / (step count).
func (s *Sequencer) Progress() float64 {
	return float64(s.index+1) / float64(len(steps))
}

// ValidateCurrent runs the active step's rules without moving.
func (s *Sequencer) ValidateCurrent(state State) Result {
	return s.validator.Validate(state, steps[s.index].Fields...)
}

// Next validates the active step and advances when it passes. On the last
// step it only validates: submitting is a separate action.
func (s *Sequencer) Next(state State) Transition {
	from := steps[s.index].ID
	res := s.ValidateCurrent(state)
	t := Transition{From: from, To: from, Result: res}
	if !res.Valid || s.IsLast() {
		return t
	}
	s.index++
	t.To = steps[s.index].ID
	t.Moved = true
	t.ScrollToTop = true
	return t
}

// Previous moves one step back without validating. It does nothing on the
// first step.
func (s *Sequencer) Previous() Transition {
	from := steps[s.index].ID
	t := Transition{From: from, To: from, Result: Result{Valid: true}}
	if s.index == 0 {
		return t
	}
	s.index--
	t.To = steps[s.index].ID
	t.Moved = true
	t.ScrollToTop = true
	return t
}
