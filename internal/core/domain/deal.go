package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/apperrors"
)

// DealStatus is the business lifecycle state of a deal.
type DealStatus string

const (
	StatusPending  DealStatus = "pending"
	StatusApproved DealStatus = "approved"
	StatusRejected DealStatus = "rejected"
)

// ApprovalLevel is a stage in the ordered approval workflow.
type ApprovalLevel string

const (
	LevelFrontOffice        ApprovalLevel = "front_office"
	LevelBackOfficeVerifier ApprovalLevel = "back_office_verifier"
	LevelBackOfficeFinal    ApprovalLevel = "back_office_final"
)

// ApprovalOrder is the workflow sequence a deal moves through on approval.
var ApprovalOrder = []ApprovalLevel{LevelFrontOffice, LevelBackOfficeVerifier, LevelBackOfficeFinal}

// NextApprovalLevel returns the level after the given one, and false when the
// given level is already the final one.
func NextApprovalLevel(level ApprovalLevel) (ApprovalLevel, bool) {
	for i, l := range ApprovalOrder {
		if l == level && i+1 < len(ApprovalOrder) {
			return ApprovalOrder[i+1], true
		}
	}
	return level, false
}

// IsBackOfficeLevel reports whether the level belongs to the back office.
func IsBackOfficeLevel(level ApprovalLevel) bool {
	return level == LevelBackOfficeVerifier || level == LevelBackOfficeFinal
}

// ApprovalStep is one completed workflow transition, kept in the deal's chain.
type ApprovalStep struct {
	Level     ApprovalLevel `json:"level"`
	Status    DealStatus    `json:"status"`
	ActorID   string        `json:"actorID"`
	Comment   string        `json:"comment,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Workflow is the approval state shared by every deal kind.
type Workflow struct {
	Status               DealStatus     `json:"status"`
	ApprovalStatus       DealStatus     `json:"approvalStatus"`
	CurrentApprovalLevel ApprovalLevel  `json:"currentApprovalLevel"`
	ApprovalChain        []ApprovalStep `json:"approvalChain"`
	SubmittedBy          string         `json:"submittedBy"`
	Comment              string         `json:"comment"`
}

// NewWorkflow is the state every freshly created deal starts in.
func NewWorkflow(submittedBy string) Workflow {
	return Workflow{
		Status:               StatusPending,
		ApprovalStatus:       StatusPending,
		CurrentApprovalLevel: LevelFrontOffice,
		SubmittedBy:          submittedBy,
	}
}

// IsTerminal reports whether the deal has been accepted by the final approval
// level; a terminal deal is immutable.
func (w *Workflow) IsTerminal() bool {
	return w.Status == StatusApproved && w.CurrentApprovalLevel == LevelBackOfficeFinal
}

// ApplyDecision advances the workflow with an authorizer's approve/reject
// decision. Rejection requires a non-empty comment. Rejection at any back
// office level sends the deal back to the start: status and approval status
// reset to pending and the level drops to front_office no matter who created
// the deal. Front-office rejection marks the deal rejected, which restricts
// further edits to the original creator.
func (w *Workflow) ApplyDecision(status DealStatus, comment string, p Principal, now time.Time) error {
	if !p.IsAuthorizer() {
		return fmt.Errorf("%w: role %s may not change deal status", apperrors.ErrForbidden, p.Role)
	}
	if w.IsTerminal() {
		return fmt.Errorf("%w: deal already accepted at final approval level", apperrors.ErrConflict)
	}

	switch status {
	case StatusRejected:
		if comment == "" {
			return fmt.Errorf("%w: comment is required when rejecting a deal", apperrors.ErrValidation)
		}
		w.ApprovalChain = append(w.ApprovalChain, ApprovalStep{
			Level:     w.CurrentApprovalLevel,
			Status:    StatusRejected,
			ActorID:   p.UserID,
			Comment:   comment,
			Timestamp: now,
		})
		w.Comment = comment
		if IsBackOfficeLevel(w.CurrentApprovalLevel) {
			w.Status = StatusPending
			w.ApprovalStatus = StatusPending
			w.CurrentApprovalLevel = LevelFrontOffice
		} else {
			w.Status = StatusRejected
			w.ApprovalStatus = StatusRejected
		}
	case StatusApproved:
		w.ApprovalChain = append(w.ApprovalChain, ApprovalStep{
			Level:     w.CurrentApprovalLevel,
			Status:    StatusApproved,
			ActorID:   p.UserID,
			Comment:   comment,
			Timestamp: now,
		})
		w.ApprovalStatus = StatusApproved
		if next, ok := NextApprovalLevel(w.CurrentApprovalLevel); ok {
			w.CurrentApprovalLevel = next
			w.Status = StatusPending
			w.ApprovalStatus = StatusPending
		} else {
			w.Status = StatusApproved
		}
	default:
		return fmt.Errorf("%w: invalid target status %q", apperrors.ErrValidation, status)
	}
	return nil
}

// Escalate moves only the workflow position without touching business fields.
// Only authorizers may escalate.
func (w *Workflow) Escalate(approvalStatus DealStatus, level ApprovalLevel, p Principal) error {
	if !p.IsAuthorizer() {
		return fmt.Errorf("%w: role %s may not escalate a deal", apperrors.ErrForbidden, p.Role)
	}
	if w.IsTerminal() {
		return fmt.Errorf("%w: deal already accepted at final approval level", apperrors.ErrConflict)
	}
	if approvalStatus != "" {
		w.ApprovalStatus = approvalStatus
	}
	if level != "" {
		w.CurrentApprovalLevel = level
	}
	return nil
}

// Resubmit is applied when a non-authorizer edits business fields: the deal
// goes back under review.
func (w *Workflow) Resubmit() {
	w.Status = StatusPending
	w.ApprovalStatus = StatusPending
}

// Deal is a generic treasury transaction carried through the approval workflow
// and mirrored into the general ledger.
type Deal struct {
	DealNumber        string          `json:"dealNumber"` // unique, immutable once assigned
	SourceAccountID   string          `json:"sourceAccountID"`
	Category          string          `json:"category"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	CounterpartyID    string          `json:"counterpartyID"`
	CounterpartyType  string          `json:"counterpartyType"`
	TransactionTypeID string          `json:"transactionTypeID"`
	ProductType       ProductType     `json:"productType"`
	TradeDate         time.Time       `json:"tradeDate"`
	ValueDate         time.Time       `json:"valueDate"`
	Description       string          `json:"description"`
	SettlementMode    string          `json:"settlementMode"`
	Portfolio         string          `json:"portfolio"`
	Strategy          string          `json:"strategy"`

	Workflow
	AuditFields
}
