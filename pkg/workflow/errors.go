// Package workflow is the grant lifecycle rule engine: the proposal status
// transition table, the gate predicates for contracts, monitoring,
// disbursement tranches, research outputs and seminars, and the named errors
// every gate failure surfaces. It holds no storage or transport concerns so
// the rules can be tested in isolation.
package workflow

import (
	"errors"
	"net/http"
)

// GateError is a workflow precondition failure. Code is a stable machine
// readable reason the UI renders remediation guidance from; these are
// expected outcomes, not faults.
type GateError struct {
	Code    string
	Message string
	Status  int
}

func (e *GateError) Error() string {
	return e.Message
}

// AsGateError unwraps err into a GateError if it is one.
func AsGateError(err error) (*GateError, bool) {
	var ge *GateError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

func newGateError(code, message string) *GateError {
	return &GateError{Code: code, Message: message, Status: http.StatusBadRequest}
}

func newConflictError(code, message string) *GateError {
	return &GateError{Code: code, Message: message, Status: http.StatusConflict}
}

// Lifecycle errors.
var (
	ErrInvalidTransition     = newGateError("INVALID_TRANSITION", "proposal status transition is not allowed")
	ErrPeriodNotOpen         = newGateError("PERIOD_NOT_OPEN", "the submission period is not open")
	ErrDuplicateKetua        = newConflictError("DUPLICATE_KETUA_IN_PERIODE", "investigator already leads a proposal in this period")
	ErrNotInvestigator       = &GateError{Code: "NOT_INVESTIGATOR", Message: "caller is not a registered investigator", Status: http.StatusForbidden}
	ErrProposalNotEditable   = newGateError("PROPOSAL_NOT_EDITABLE", "only DRAFT or REVISI proposals can be edited")
	ErrProposalNotDeletable  = newGateError("PROPOSAL_NOT_DELETABLE", "only DRAFT proposals can be deleted")
	ErrProposalHasReviewers  = newGateError("PROPOSAL_HAS_REVIEWERS", "proposals with assigned reviewers cannot be deleted")
	ErrProposalIncomplete    = newGateError("PROPOSAL_INCOMPLETE", "title, abstract and proposal file are required before submission")
	ErrReviewsIncomplete     = newGateError("REVIEWS_INCOMPLETE", "not every assigned reviewer has completed their review")
	ErrClearanceNoteRequired = newGateError("CLEARANCE_NOTE_REQUIRED", "a note is required when administrative clearance fails")
)

// Contract gate errors.
var (
	ErrProposalNotAccepted   = newGateError("PROPOSAL_NOT_ACCEPTED", "only accepted proposals can be issued a contract")
	ErrContractAlreadyExists = newConflictError("CONTRACT_ALREADY_EXISTS", "a contract already exists for this proposal")
	ErrContractAlreadySigned = newGateError("CONTRACT_ALREADY_SIGNED", "the contract has already been signed")
	ErrSignedFilesRequired   = newGateError("SIGNED_FILES_REQUIRED", "both the signed contract and decree files are required")
)

// Monitoring gate errors.
var (
	ErrProposalNotRunning    = newGateError("PROPOSAL_NOT_RUNNING", "reports can only be submitted while the proposal is running")
	ErrReportNotSubmitted    = newGateError("REPORT_NOT_SUBMITTED", "the report has not been uploaded yet")
	ErrReportAlreadyVerified = newGateError("REPORT_ALREADY_VERIFIED", "the report has already been verified")
)

// Disbursement ledger errors.
var (
	ErrProposalNotActive                 = newGateError("PROPOSAL_NOT_ACTIVE", "tranches can only be requested for accepted, running or completed proposals")
	ErrContractNotSigned                 = newGateError("CONTRACT_NOT_SIGNED", "the contract has not been signed")
	ErrInsufficientProgressVerifications = newGateError("INSUFFICIENT_PROGRESS_VERIFICATIONS", "at least two approved progress reports are required")
	ErrPriorTrancheNotReleased           = newGateError("PRIOR_TRANCHE_NOT_RELEASED", "the prior tranche has not been released")
	ErrNoVerifiedOutput                  = newGateError("NO_VERIFIED_OUTPUT", "at least one verified research output is required")
	ErrTrancheAlreadyRequested           = newConflictError("TRANCHE_ALREADY_REQUESTED", "this tranche has already been requested")
	ErrTrancheNotPending                 = newGateError("TRANCHE_NOT_PENDING", "only pending tranches can be released or rejected")
	ErrProofFileRequired                 = newGateError("PROOF_FILE_REQUIRED", "a transfer proof file is required to release a tranche")
)

// Output eligibility errors.
var (
	ErrCategoryNotAllowedForScheme = newGateError("CATEGORY_NOT_ALLOWED_FOR_SCHEME", "this output category is not allowed for the proposal's scheme type")
	ErrFinalReportNotVerified      = newGateError("FINAL_REPORT_NOT_VERIFIED", "the final report has not been verified")
	ErrOutputVerified              = newGateError("OUTPUT_ALREADY_VERIFIED", "a verified output cannot be changed or deleted")
)

// Seminar scheduler errors.
var (
	ErrClearanceNotPassed = newGateError("ADMIN_CLEARANCE_NOT_PASSED", "administrative clearance has not been passed")
	ErrSeminarNotActive   = newGateError("SEMINAR_NOT_ACTIVE", "only scheduled seminars can be updated")
)
