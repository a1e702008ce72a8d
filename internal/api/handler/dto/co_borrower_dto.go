package dto

import (
	"fmt"
	"strings"
	"time"

	"loan-marketplace/internal/domain/borrower"
	"loan-marketplace/internal/domain/financial"
)

type RecordKYCRequest struct {
	Verified  bool   `json:"verified"`
	Reference string `json:"reference"`
	Reverify  bool   `json:"reverify"`
}

func (r *RecordKYCRequest) Validate() error {
	if r.Verified && strings.TrimSpace(r.Reference) == "" {
		return fmt.Errorf("reference is required when marking KYC verified")
	}
	return nil
}

type CoBorrowerResponse struct {
	ID               int64             `json:"id"`
	BorrowerID       int64             `json:"borrowerId"`
	Name             string            `json:"name"`
	Relation         string            `json:"relation"`
	KYC              borrower.KYC      `json:"kyc"`
	FinancialSummary financial.Summary `json:"financialSummary"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

type EvidenceResponse struct {
	Category    string             `json:"category"`
	ArtifactURL string             `json:"artifactUrl"`
	Provider    string             `json:"provider"`
	Confidence  float64            `json:"confidence"`
	NeedsReview bool               `json:"needsReview"`
	CoBorrower  CoBorrowerResponse `json:"coBorrower"`
}

func NewCoBorrowerResponse(co *borrower.CoBorrower) CoBorrowerResponse {
	summary := co.Summary
	summary.FOIR = round2(summary.FOIR)
	return CoBorrowerResponse{
		ID:               co.ID,
		BorrowerID:       co.BorrowerID,
		Name:             co.Name,
		Relation:         co.Relation,
		KYC:              co.KYC,
		FinancialSummary: summary,
		UpdatedAt:        co.UpdatedAt,
	}
}

func NewEvidenceResponse(o *borrower.EvidenceOutcome) EvidenceResponse {
	return EvidenceResponse{
		Category:    string(o.Category),
		ArtifactURL: o.ArtifactURL,
		Provider:    o.Provider,
		Confidence:  round2(o.Confidence),
		NeedsReview: o.NeedsReview,
		CoBorrower:  NewCoBorrowerResponse(o.CoBorrower),
	}
}
