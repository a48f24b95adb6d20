package form

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MinPhoneDigits is the number of digits a phone number must carry.
const MinPhoneDigits = 10

// Result is the outcome of validating a set of fields.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Err returns a *ValidationError for a failed result and nil otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Fields: r.Errors}
}

// ValidationError carries every failing field with its message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

// Validator evaluates the rule table against a State. It is safe for
// concurrent use once constructed.
type Validator struct {
	validate *validator.Validate
	byField  map[string][]Rule
	order    []string
	now      func() time.Time
}

func NewValidator() *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		byField:  make(map[string][]Rule),
		now:      time.Now,
	}

	mustRegister(v.validate, "phone", func(fl validator.FieldLevel) bool {
		return countDigits(fl.Field().String()) >= MinPhoneDigits
	})
	mustRegister(v.validate, "istrue", func(fl validator.FieldLevel) bool {
		return fl.Field().Bool()
	})
	mustRegister(v.validate, "notfuture", func(fl validator.FieldLevel) bool {
		t, err := time.Parse("2006-01-02", fl.Field().String())
		if err != nil {
			return false
		}
		return !t.After(v.now())
	})
	mustRegister(v.validate, "imagedata", func(fl validator.FieldLevel) bool {
		return IsEncodedImage(fl.Field().String())
	})

	for _, r := range rules {
		if _, seen := v.byField[r.Field]; !seen {
			v.order = append(v.order, r.Field)
		}
		v.byField[r.Field] = append(v.byField[r.Field], r)
	}
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("form: register %s validation: %v", tag, err))
	}
}

// Validate checks only the named fields. Unknown names and fields without
// rules pass.
func (v *Validator) Validate(s State, fields ...string) Result {
	res := Result{Valid: true}
	for _, field := range fields {
		if msg, ok := v.check(s, field); !ok {
			if res.Errors == nil {
				res.Errors = make(map[string]string)
			}
			res.Valid = false
			res.Errors[field] = msg
		}
	}
	return res
}

// ValidateAll checks every field in the rule table.
func (v *Validator) ValidateAll(s State) Result {
	return v.Validate(s, v.order...)
}

func (v *Validator) check(s State, field string) (string, bool) {
	for _, r := range v.byField[field] {
		if r.When != nil && !r.When(s) {
			continue
		}
		if err := v.validate.Var(r.Value(s), r.Tag); err != nil {
			return r.Message, false
		}
	}
	return "", true
}

func countDigits(s string) int {
	n := 0
	for _, c := range s {
		if unicode.IsDigit(c) {
			n++
		}
	}
	return n
}

// IsEncodedImage reports whether s is a data URL whose base64 payload
// decodes as a PNG or JPEG image.
func IsEncodedImage(s string) bool {
	if len(s) < MinSignatureLength || !strings.HasPrefix(s, "data:image/") {
		return false
	}
	comma := strings.IndexByte(s, ',')
	if comma < 0 || !strings.HasSuffix(s[:comma], ";base64") {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(s[comma+1:])
	if err != nil {
		return false
	}
	_, _, err = image.DecodeConfig(bytes.NewReader(raw))
	return err == nil
}
