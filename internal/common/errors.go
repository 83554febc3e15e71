package common

import (
	"fmt"

	"github.com/go-errors/errors"
)

// ErrorCode classifies the failures returned by the public API.
type ErrorCode int

const (
	InvalidStructure ErrorCode = iota + 1
	InvalidSchema
	InvalidClaimRequest
	RegistryFull
	IndexNotIssued
	RevocationIndexInUse
	MissingClaimForAttribute
	UnsatisfiablePredicate
	ChallengeMismatch
	MissingPublicData
	MasterSecretMismatch
	ProofInvalid
	WitnessRevoked
	WitnessOutOfDate
	NonceReused
)

var codeNames = map[ErrorCode]string{
	InvalidStructure:         "invalid structure",
	InvalidSchema:            "invalid schema",
	InvalidClaimRequest:      "invalid claim request",
	RegistryFull:             "revocation registry full",
	IndexNotIssued:           "revocation index not issued",
	RevocationIndexInUse:     "revocation index in use",
	MissingClaimForAttribute: "missing claim for attribute",
	UnsatisfiablePredicate:   "unsatisfiable predicate",
	ChallengeMismatch:        "challenge mismatch",
	MissingPublicData:        "missing public data",
	MasterSecretMismatch:     "master secret mismatch",
	ProofInvalid:             "proof invalid",
	WitnessRevoked:           "witness revoked",
	WitnessOutOfDate:         "witness out of date",
	NonceReused:              "nonce reused",
}

func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("error code %d", int(c))
}

// Error is a classified error. Two Errors match under errors.Is when their codes are equal
// and the target carries no cause, so that sentinels of the form &Error{Code: c} can be
// compared against.
type Error struct {
	Code ErrorCode
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == nil && t.Code == e.Code
}

// ErrorStack returns the stack trace of the cause, if it has one.
func (e *Error) ErrorStack() string {
	var goerr *errors.Error
	if errors.As(e.Err, &goerr) {
		return goerr.ErrorStack()
	}
	return e.Error()
}

// Errorf returns a new classified error with a stack trace.
func Errorf(code ErrorCode, format string, a ...interface{}) error {
	return &Error{Code: code, Err: errors.Wrap(fmt.Sprintf(format, a...), 1)}
}

// WrapError classifies err, recording a stack trace if it does not have one yet.
// If err already has a classification it is returned as is.
func WrapError(code ErrorCode, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Code: code, Err: errors.Wrap(err, 1)}
}
