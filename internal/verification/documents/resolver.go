// Package documents locates verification files and decides which documents a
// subject must supply.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"verigate/internal/verification/models"
	id "verigate/pkg/domain"
	"verigate/pkg/platform/sentinel"
)

// DocumentFinder loads the review row for one document type.
type DocumentFinder interface {
	FindBySubmissionAndType(ctx context.Context, submissionID id.SubmissionID, docType models.DocumentType) (*models.VerificationDocument, error)
}

// SubmissionFinder loads a submission.
type SubmissionFinder interface {
	FindByID(ctx context.Context, submissionID id.SubmissionID) (*models.Submission, error)
}

// Resolver finds the file backing a document. Newer submissions carry a
// VerificationDocument row; older ones only a flat field in their data bag.
type Resolver struct {
	docs        DocumentFinder
	submissions SubmissionFinder
}

func NewResolver(docs DocumentFinder, submissions SubmissionFinder) *Resolver {
	return &Resolver{docs: docs, submissions: submissions}
}

// Resolve returns the file reference for docType, or sentinel.ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, submissionID id.SubmissionID, docType models.DocumentType) (models.FileRef, error) {
	doc, err := r.docs.FindBySubmissionAndType(ctx, submissionID, docType)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return "", fmt.Errorf("find document %s: %w", docType, err)
	}
	if ref, ok := fromDocument(doc); ok {
		return ref, nil
	}

	sub, err := r.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return "", fmt.Errorf("find submission: %w", err)
	}
	if ref, ok := fromLegacyField(sub, docType); ok {
		return ref, nil
	}
	return "", fmt.Errorf("document %s: %w", docType, sentinel.ErrNotFound)
}

// ResolveLoaded applies the same tiers to rows the caller already holds.
func ResolveLoaded(sub *models.Submission, doc *models.VerificationDocument, docType models.DocumentType) (models.FileRef, error) {
	if ref, ok := fromDocument(doc); ok {
		return ref, nil
	}
	if ref, ok := fromLegacyField(sub, docType); ok {
		return ref, nil
	}
	return "", fmt.Errorf("document %s: %w", docType, sentinel.ErrNotFound)
}

func fromDocument(doc *models.VerificationDocument) (models.FileRef, bool) {
	if doc == nil {
		return "", false
	}
	ref := models.FileRef(strings.TrimSpace(string(doc.FileRef)))
	return ref, ref != ""
}

func fromLegacyField(sub *models.Submission, docType models.DocumentType) (models.FileRef, bool) {
	if sub == nil || docType.LegacyField() == "" {
		return "", false
	}
	ref := models.FileRef(sub.Data.String(docType.LegacyField()))
	return ref, ref != ""
}
