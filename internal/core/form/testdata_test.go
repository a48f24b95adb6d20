package form

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// signatureDataURL renders a small PNG with one dark pixel.
func signatureDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	img.Set(5, 5, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func validState(t *testing.T) State {
	t.Helper()
	s := NewState()
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
	s.SignatureData = signatureDataURL(t)
	return s
}
