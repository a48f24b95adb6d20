package mocks

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"

	"github.com/fma-academy/registration-service/internal/core/form"
)

// SignatureDataURL returns a small PNG data URL that passes the signature
// rule.
func SignatureDataURL() string {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 5; x < 35; x++ {
		img.Set(x, 10, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// ValidFormState returns a form that passes every step.
func ValidFormState() form.State {
	s := form.NewState()
	s.MemberName = "John Doe"
	s.Package = "Gold"
	s.Activity = "gymnastics"
	s.Day = "monday"
	s.Time = "14:00"
	s.DateOfBirth = "2014-01-01"
	s.Gender = "male"

	s.GuardianName = "Jane Doe"
	s.GuardianEmail = "jane.doe@example.com"
	s.GuardianAddress = "123 Main St"
	s.GuardianPostCode = "AB12 3CD"
	s.GuardianMobilePhone = "07700 900123"
	s.GuardianRelationship = "Parent"

	s.EmergencyName = "Bob Smith"
	s.EmergencyAddress = "456 Oak St"
	s.EmergencyPostCode = "EF45 6GH"
	s.EmergencyMobilePhone = "0987654321"
	s.EmergencyRelationship = "Grandparent"

	s.MembershipOption = "annual"
	s.ContractRead = true
	s.ContractAgreed = true
	s.SignatureData = SignatureDataURL()
	return s
}
