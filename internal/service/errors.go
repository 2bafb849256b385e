package service

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// ErrorKind classifies expected, recoverable outcomes of core operations.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindInvalidState ErrorKind = "invalid_state"
	KindIneligible   ErrorKind = "ineligible"
	KindDuplicate    ErrorKind = "duplicate"
	KindValidation   ErrorKind = "validation"
	// KindInternal covers storage and connectivity failures. Callers should not retry blindly.
	KindInternal ErrorKind = "internal"
)

// Error is a classified failure carrying the most specific reason tag for the caller.
type Error struct {
	Kind    ErrorKind
	Reason  string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, reason, message string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message}
}

var (
	ErrStudentNotFound     = newError(KindNotFound, "student-not-found", "student not found")
	ErrAlumniNotFound      = newError(KindNotFound, "alumni-not-found", "alumni not found")
	ErrOpportunityNotFound = newError(KindNotFound, "opportunity-not-found", "opportunity not found")
	ErrApplicationNotFound = newError(KindNotFound, "application-not-found", "application not found")
	ErrResumeNotFound      = newError(KindNotFound, "resume-not-found", "no resume on file")

	ErrNotOpportunityOwner = newError(KindUnauthorized, "not-owner", "you are not authorized to manage this opportunity")
	ErrNotApplicationOwner = newError(KindUnauthorized, "not-owner", "you are not authorized to update this application")
	ErrNotApplicant        = newError(KindUnauthorized, "not-applicant", "you are not authorized to view this application")
	ErrOutsideInstitution  = newError(KindUnauthorized, "institution-mismatch", "you can only view profiles of students from your college")

	ErrIneligibleClosed         = newError(KindIneligible, "closed", "opportunity is closed")
	ErrIneligibleResumeRequired = newError(KindIneligible, "resume-required", "upload a resume before applying")
	ErrIneligibleInstitution    = newError(KindIneligible, "institution-mismatch", "opportunity belongs to a different college")

	ErrDuplicateApplication = newError(KindDuplicate, "already-applied", "you have already applied to this opportunity")
	ErrDuplicateAccount     = newError(KindDuplicate, "email-taken", "an account with this email already exists")

	ErrAlreadyShortlisted   = newError(KindInvalidState, "already-shortlisted", "application is already shortlisted")
	ErrAlreadyReferred      = newError(KindInvalidState, "already-referred", "application is already referred")
	ErrAlreadyRejected      = newError(KindInvalidState, "already-rejected", "application is already rejected")
	ErrCannotRejectReferred = newError(KindInvalidState, "referred", "cannot reject a referred application")
	ErrConcurrentUpdate     = newError(KindInvalidState, "concurrent-update", "application was updated concurrently, retry")

	ErrInvalidTargetStatus = newError(KindValidation, "invalid-status", "status must be shortlisted, referred or rejected")
	ErrInvalidInstitution  = newError(KindValidation, "institution-required", "institution name is required")
	ErrInvalidReferrals    = newError(KindValidation, "referral-target", "number of referrals must be at least 1")
	ErrResumeFileMissing   = newError(KindValidation, "resume-file-required", "resume file is required")
	ErrResumeTooLarge      = newError(KindValidation, "resume-too-large", "resume exceeds the maximum allowed size")
	ErrResumeType          = newError(KindValidation, "resume-type", "only PDF resumes are supported")
)

// KindOf classifies err. Validator failures count as validation; anything unclassified is internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return KindValidation
	}

	return KindInternal
}

// ReasonOf returns the reason tag of a classified error, or "" otherwise.
func ReasonOf(err error) string {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Reason
	}
	return ""
}
