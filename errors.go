package anoncreds

import (
	"github.com/privacybydesign/anoncreds/internal/common"
)

type (
	// Error is the error type returned by all operations of this package. Use errors.Is with
	// one of the sentinels below to classify an error.
	Error = common.Error

	// ErrorCode is the classification of an Error.
	ErrorCode = common.ErrorCode
)

var (
	ErrInvalidStructure         = &Error{Code: common.InvalidStructure}
	ErrInvalidSchema            = &Error{Code: common.InvalidSchema}
	ErrInvalidClaimRequest      = &Error{Code: common.InvalidClaimRequest}
	ErrRegistryFull             = &Error{Code: common.RegistryFull}
	ErrIndexNotIssued           = &Error{Code: common.IndexNotIssued}
	ErrRevocationIndexInUse     = &Error{Code: common.RevocationIndexInUse}
	ErrMissingClaimForAttribute = &Error{Code: common.MissingClaimForAttribute}
	ErrUnsatisfiablePredicate   = &Error{Code: common.UnsatisfiablePredicate}
	ErrChallengeMismatch        = &Error{Code: common.ChallengeMismatch}
	ErrMissingPublicData        = &Error{Code: common.MissingPublicData}
	ErrMasterSecretMismatch     = &Error{Code: common.MasterSecretMismatch}
	ErrProofInvalid             = &Error{Code: common.ProofInvalid}
	ErrWitnessRevoked           = &Error{Code: common.WitnessRevoked}
	ErrWitnessOutOfDate         = &Error{Code: common.WitnessOutOfDate}
	ErrNonceReused              = &Error{Code: common.NonceReused}
)
