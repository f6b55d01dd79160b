package documents

import "verigate/internal/verification/models"

// Profile is the slice of a submission that decides required documents.
type Profile struct {
	SubjectType models.SubjectType
	IDType      models.IDType
	EntityType  models.EntityType
}

// ProfileOf derives a Profile from submission data.
func ProfileOf(sub *models.Submission) Profile {
	return Profile{
		SubjectType: sub.SubjectType,
		IDType:      models.ParseIDType(sub.Data.String(models.KeyIDType)),
		EntityType:  models.ParseEntityType(sub.Data.String(models.KeyBusinessType)),
	}
}

// RequiredDocumentsFor lists the documents that must be approved before a
// submission can be sent to the provider. Order is stable.
func RequiredDocumentsFor(p Profile) []models.DocumentType {
	switch p.SubjectType {
	case models.SubjectBusiness:
		docs := []models.DocumentType{models.DocFormation, models.DocOwnership, models.DocProofOfAddress}
		if p.EntityType.IsNonprofit() {
			docs = append(docs, models.DocDeterminationLetter)
		}
		return docs
	case models.SubjectIndividual:
		docs := []models.DocumentType{models.DocIDFront}
		if !p.IDType.IsPassportClass() {
			docs = append(docs, models.DocIDBack)
		}
		return append(docs, models.DocProofOfAddress)
	}
	return nil
}
