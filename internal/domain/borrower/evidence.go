package borrower

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"loan-marketplace/internal/domain/financial"
	"loan-marketplace/internal/infrastructure/extraction"
	"loan-marketplace/internal/pkg/apperrors"
)

const MaxEvidenceBytes = 10 << 20

var (
	monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
	yearPattern  = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

type ArtifactStore interface {
	Put(ctx context.Context, localPath, key string) (string, error)
}

type Extractor interface {
	Extract(ctx context.Context, req extraction.Request) extraction.Result
}

// Upload is one evidence document. Period is the salary month (YYYY-MM) for
// slips and the assessment year (YYYY-YY) for tax documents.
type Upload struct {
	Category    financial.Category
	Period      string
	FileName    string
	ContentType string
	Body        io.Reader
}

type EvidenceOutcome struct {
	CoBorrower  *CoBorrower
	Category    financial.Category
	ArtifactURL string
	Provider    string
	Confidence  float64
	NeedsReview bool
}

type EvidenceService struct {
	borrowers Service
	store     ArtifactStore
	extractor Extractor
	tempDir   string
	logger    *slog.Logger
}

func NewEvidenceService(borrowers Service, store ArtifactStore, extractor Extractor, tempDir string, logger *slog.Logger) *EvidenceService {
	return &EvidenceService{
		borrowers: borrowers,
		store:     store,
		extractor: extractor,
		tempDir:   tempDir,
		logger:    logger.With("component", "EvidenceService"),
	}
}

// Ingest stores the document, extracts its fields and merges the resulting
// record into the co-borrower's evidence. A document no provider could read is
// kept as a fallback record flagged for review.
func (s *EvidenceService) Ingest(ctx context.Context, borrowerID, coBorrowerID int64, up Upload) (*EvidenceOutcome, error) {
	if err := validateUpload(up); err != nil {
		return nil, err
	}
	if _, err := s.borrowers.GetCoBorrower(ctx, borrowerID, coBorrowerID); err != nil {
		return nil, err
	}

	content, tmpPath, err := s.spool(up.Body)
	if tmpPath != "" {
		defer func() {
			if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
				s.logger.WarnContext(ctx, "Failed to remove temporary upload", "path", tmpPath, "error", rmErr)
			}
		}()
	}
	if err != nil {
		return nil, err
	}

	key := artifactKey(coBorrowerID, up)
	url, err := s.store.Put(ctx, tmpPath, key)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to store evidence artifact", "key", key, "error", err)
		return nil, fmt.Errorf("%w: could not store evidence: %v", apperrors.ErrInternalServer, err)
	}

	res := s.extractor.Extract(ctx, extraction.Request{
		Category:    string(up.Category),
		Period:      up.Period,
		FileName:    up.FileName,
		ContentType: up.ContentType,
		Content:     content,
	})

	prov := financial.Provenance{Source: res.Provider, Confidence: res.Confidence, ArtifactURL: url}
	mutate, mapped := mapRecord(up, res.Fields, prov)
	if res.Fallback || !mapped {
		if !res.Fallback {
			s.logger.WarnContext(ctx, "Provider result missing required fields, recording fallback",
				"category", up.Category, "provider", res.Provider)
		}
		prov = financial.Provenance{
			Source:      "fallback",
			Confidence:  extraction.FallbackConfidence,
			NeedsReview: true,
			ArtifactURL: url,
		}
		mutate = fallbackRecord(up, prov)
	}

	co, err := s.borrowers.ApplyEvidence(ctx, borrowerID, coBorrowerID, mutate)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Evidence ingested",
		"coBorrowerID", coBorrowerID, "category", up.Category, "provider", prov.Source, "needsReview", prov.NeedsReview)
	return &EvidenceOutcome{
		CoBorrower:  co,
		Category:    up.Category,
		ArtifactURL: url,
		Provider:    prov.Source,
		Confidence:  prov.Confidence,
		NeedsReview: prov.NeedsReview,
	}, nil
}

func (s *EvidenceService) spool(body io.Reader) ([]byte, string, error) {
	tmp, err := os.CreateTemp(s.tempDir, "evidence-*")
	if err != nil {
		return nil, "", fmt.Errorf("%w: could not create temporary file: %v", apperrors.ErrInternalServer, err)
	}
	path := tmp.Name()

	content, err := io.ReadAll(io.LimitReader(body, MaxEvidenceBytes+1))
	if err != nil {
		tmp.Close()
		return nil, path, fmt.Errorf("%w: could not read upload: %v", apperrors.ErrInternalServer, err)
	}
	if len(content) == 0 {
		tmp.Close()
		return nil, path, apperrors.NewValidationError("file", "uploaded file is empty")
	}
	if len(content) > MaxEvidenceBytes {
		tmp.Close()
		return nil, path, apperrors.NewValidationError("file", "uploaded file exceeds the 10 MiB limit")
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return nil, path, fmt.Errorf("%w: could not write temporary file: %v", apperrors.ErrInternalServer, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, path, fmt.Errorf("%w: could not write temporary file: %v", apperrors.ErrInternalServer, err)
	}
	return content, path, nil
}

func validateUpload(up Upload) error {
	if !up.Category.Valid() {
		return apperrors.NewValidationError("category", fmt.Sprintf("unknown evidence category %q", up.Category))
	}
	if up.Body == nil {
		return apperrors.NewValidationError("file", "a file is required")
	}
	switch up.Category {
	case financial.CategorySalarySlip:
		if !monthPattern.MatchString(up.Period) {
			return apperrors.NewValidationError("period", "salary slips need a period in YYYY-MM form")
		}
	case financial.CategoryTaxReturn, financial.CategoryEmployerCertificate:
		if !yearPattern.MatchString(up.Period) {
			return apperrors.NewValidationError("period", "tax documents need an assessment year in YYYY-YY form")
		}
	}
	return nil
}

func artifactKey(coBorrowerID int64, up Upload) string {
	name := filepath.Base(strings.ReplaceAll(up.FileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "document"
	}
	period := up.Period
	if period == "" {
		period = "latest"
	}
	return fmt.Sprintf("co-borrowers/%d/%s/%s/%s", coBorrowerID, up.Category, period, name)
}
