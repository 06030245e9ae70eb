package models

import "time"

// Field names as they appear in raw queue payloads and in the PII field list.
const (
	FieldRecordID   = "record_id"
	FieldUserID     = "user_id"
	FieldDeviceID   = "device_id"
	FieldIP         = "ip"
	FieldDeviceType = "device_type"
	FieldLocale     = "locale"
	FieldAppVersion = "app_version"
	FieldCreatedAt  = "created_at"
)

// RawRecord is a login event exactly as decoded from a queue message body.
// No shape is guaranteed beyond "JSON object"; field presence is checked by
// the normalizer, not the decoder, so partially malformed records can still
// be logged with their offending field.
type RawRecord map[string]string

// Get returns the value for a field and whether the field was present.
func (r RawRecord) Get(field string) (string, bool) {
	v, ok := r[field]
	return v, ok
}

// CleanRecord is a fully transformed login event ready for persistence.
// UserID, DeviceID and IP hold masked values by the time the record reaches
// the sink.
type CleanRecord struct {
	RecordID   string
	UserID     string
	DeviceID   string
	IP         string
	DeviceType string
	Locale     string
	AppVersion string
	CreatedAt  time.Time
}
