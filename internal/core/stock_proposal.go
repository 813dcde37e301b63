package core

import (
	"errors"
	"fmt"
	"strings"
)

// StockAdjustment is a single proposed ledger change in a StockProposal.
type StockAdjustment struct {
	Barcode string `json:"barcode" jsonschema_description:"The exact product barcode the adjustment applies to, case preserved"`
	Delta   int64  `json:"delta" jsonschema_description:"Signed change in quantity on hand: positive for goods received, negative for shrinkage or corrections"`
	Note    string `json:"note" jsonschema_description:"Short explanation of this adjustment, e.g. 'received 2 cartons'"`
}

// StockProposal is the assistant-generated interpretation of a natural
// language receiving or correction note. It is never applied directly: the
// caller confirms it, then each adjustment goes through the stock ledger's
// normal non-negative checks.
type StockProposal struct {
	Summary     string            `json:"summary" jsonschema_description:"One-line summary of the stock event"`
	Confidence  float64           `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
	Reasoning   string            `json:"reasoning" jsonschema_description:"Explanation for the proposed adjustments"`
	Adjustments []StockAdjustment `json:"adjustments" jsonschema_description:"List of per-product quantity adjustments"`
}

// ClarificationRequest is returned by the assistant when the note is too
// ambiguous to propose adjustments.
type ClarificationRequest struct {
	Message string `json:"message" jsonschema_description:"A question asking the operator for the missing details"`
}

// AssistantResponse wraps the assistant output to branch between a usable
// StockProposal and a ClarificationRequest. Exactly one is set.
type AssistantResponse struct {
	IsClarificationRequest bool                  `json:"is_clarification_request" jsonschema_description:"Set to true ONLY if you lack enough information to propose adjustments"`
	Clarification          *ClarificationRequest `json:"clarification,omitempty" jsonschema_description:"Required if is_clarification_request is true"`
	Proposal               *StockProposal        `json:"proposal,omitempty" jsonschema_description:"Required if is_clarification_request is false"`
}

// Normalize cleans up common formatting issues in model output.
// Barcodes keep their case; they are case-sensitive identifiers.
func (p *StockProposal) Normalize() {
	p.Summary = strings.TrimSpace(p.Summary)
	for i := range p.Adjustments {
		a := &p.Adjustments[i]
		a.Barcode = strings.TrimSpace(a.Barcode)
		a.Note = strings.TrimSpace(a.Note)
	}
}

// Validate enforces structural rules before a proposal may be offered for
// confirmation.
func (p *StockProposal) Validate() error {
	if len(p.Adjustments) == 0 {
		return errors.New("proposal must contain at least one adjustment")
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("confidence must be within [0, 1], got %g", p.Confidence)
	}
	seen := make(map[string]bool, len(p.Adjustments))
	for i, a := range p.Adjustments {
		if a.Barcode == "" {
			return fmt.Errorf("adjustment %d: barcode must not be empty", i+1)
		}
		if a.Delta == 0 {
			return fmt.Errorf("adjustment %d: delta must not be zero", i+1)
		}
		if seen[a.Barcode] {
			return fmt.Errorf("adjustment %d: duplicate barcode %q", i+1, a.Barcode)
		}
		seen[a.Barcode] = true
	}
	return nil
}
