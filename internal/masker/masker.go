// Package masker applies the reversible rotation used to obfuscate PII
// fields. This is deliberately light obfuscation, not cryptography: the
// downstream warehouse must be able to recover the original values.
package masker

import (
	"errors"

	"github.com/loginflow-systems/login-etl/internal/models"
)

// Mask left-rotates s by ceil(len/2): the head is the first ceil(n/2)
// characters and the result is tail + head. The ceil convention is fixed;
// Unmask must rotate by the same offset or stored values silently corrupt.
// Rotation works on runes so multi-byte identifiers round-trip intact.
// An empty string is a validation failure, not a no-op.
func Mask(s string) (string, error) {
	if s == "" {
		return "", models.NewValidationError("", "cannot mask empty value")
	}
	runes := []rune(s)
	head := (len(runes) + 1) / 2
	return string(runes[head:]) + string(runes[:head]), nil
}

// Unmask inverts Mask: the head of length ceil(n/2) now sits at the end of
// the masked value, so the original is the last ceil(n/2) characters
// followed by the rest.
func Unmask(s string) (string, error) {
	if s == "" {
		return "", models.NewValidationError("", "cannot unmask empty value")
	}
	runes := []rune(s)
	head := (len(runes) + 1) / 2
	tail := len(runes) - head
	return string(runes[tail:]) + string(runes[:tail]), nil
}

// Masker applies Mask to a configured list of PII fields on a CleanRecord.
// Fields not in the list pass through untouched.
type Masker struct {
	fields []string
}

// New builds a Masker for the designated PII fields.
func New(fields []string) *Masker {
	return &Masker{fields: fields}
}

// DefaultFields is the PII field list used when configuration does not
// override it.
func DefaultFields() []string {
	return []string{models.FieldUserID, models.FieldDeviceID, models.FieldIP}
}

// Apply masks each designated field in place. The ip field is optional on
// raw records, so an empty IP is skipped rather than rejected; user and
// device identifiers were already required non-empty by the normalizer.
func (m *Masker) Apply(rec *models.CleanRecord) error {
	for _, field := range m.fields {
		var err error
		switch field {
		case models.FieldUserID:
			rec.UserID, err = mask(field, rec.UserID)
		case models.FieldDeviceID:
			rec.DeviceID, err = mask(field, rec.DeviceID)
		case models.FieldIP:
			if rec.IP == "" {
				continue
			}
			rec.IP, err = mask(field, rec.IP)
		default:
			return models.NewValidationError(field, "not a maskable field")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// mask attaches the field name to any validation error from Mask, which
// only knows the value.
func mask(field, value string) (string, error) {
	masked, err := Mask(value)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return "", models.NewValidationError(field, verr.Reason)
		}
		return "", err
	}
	return masked, nil
}
