package store

import "errors"

// Validation errors returned by Save and SaveRecord.
var (
	// ErrEmptyUserID is returned when a record has no owner.
	ErrEmptyUserID = errors.New("user id must not be empty")

	// ErrEmptyURL is returned when a record has no URL.
	ErrEmptyURL = errors.New("url must not be empty")

	// ErrInvalidStatus is returned for a status other than safe, suspicious or malicious.
	ErrInvalidStatus = errors.New("invalid domain status")

	// ErrInvalidRiskScore is returned for a score outside [0,100].
	ErrInvalidRiskScore = errors.New("risk score out of range")
)
