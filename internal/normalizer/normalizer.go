// Package normalizer canonicalizes raw login records into CleanRecords.
package normalizer

import (
	"strings"
	"time"

	"github.com/loginflow-systems/login-etl/internal/models"
)

// requiredFields must be present and non-empty on every raw record.
var requiredFields = []string{
	models.FieldRecordID,
	models.FieldUserID,
	models.FieldDeviceID,
	models.FieldAppVersion,
	models.FieldCreatedAt,
}

// createdAtLayouts are tried in order. Layouts without an offset are parsed
// in the process-local zone: the producer's calendar semantics are assumed
// to reflect local time, and no timezone correction is attempted beyond
// passing through whatever offset the source carries.
var createdAtLayouts = []struct {
	layout string
	naive  bool
}{
	{layout: time.RFC3339, naive: false},
	{layout: "2006-01-02T15:04:05", naive: true},
	{layout: "2006-01-02 15:04:05", naive: true},
	{layout: "2006-01-02", naive: true},
}

// Normalize validates required fields and produces a CleanRecord with a
// separator-stripped app version and a timezone-aware creation timestamp.
// PII fields are copied through unmasked; masking is a separate stage.
func Normalize(raw models.RawRecord) (*models.CleanRecord, error) {
	for _, field := range requiredFields {
		v, ok := raw.Get(field)
		if !ok {
			return nil, models.NewValidationError(field, "missing")
		}
		if v == "" {
			return nil, models.NewValidationError(field, "empty")
		}
	}

	createdAt, err := ParseCreatedAt(raw[models.FieldCreatedAt])
	if err != nil {
		return nil, err
	}

	return &models.CleanRecord{
		RecordID:   raw[models.FieldRecordID],
		UserID:     raw[models.FieldUserID],
		DeviceID:   raw[models.FieldDeviceID],
		IP:         raw[models.FieldIP],
		DeviceType: raw[models.FieldDeviceType],
		Locale:     raw[models.FieldLocale],
		AppVersion: NormalizeVersion(raw[models.FieldAppVersion]),
		CreatedAt:  createdAt,
	}, nil
}

// NormalizeVersion strips every "." separator from a version identifier,
// e.g. "2.3.0" -> "230". All other characters pass through unchanged, so
// the operation is idempotent.
func NormalizeVersion(v string) string {
	return strings.ReplaceAll(v, ".", "")
}

// ParseCreatedAt resolves a source timestamp string into a timezone-aware
// time.Time. Naive layouts are interpreted in the local zone.
func ParseCreatedAt(s string) (time.Time, error) {
	for _, candidate := range createdAtLayouts {
		if candidate.naive {
			if t, err := time.ParseInLocation(candidate.layout, s, time.Local); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.Parse(candidate.layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, models.NewValidationError(models.FieldCreatedAt, "unrecognized timestamp format")
}
