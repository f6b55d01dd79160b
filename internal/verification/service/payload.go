package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"verigate/internal/provider"
	"verigate/internal/verification/documents"
	"verigate/internal/verification/models"
	dErrors "verigate/pkg/domain-errors"
	"verigate/pkg/platform/sentinel"
)

const defaultIssuingCountry = "USA"

// identity is the identifying data of one human, taken either from an
// individual submission or from an associated person.
type identity struct {
	SSN            string
	IDType         models.IDType
	IDNumber       string
	IssuingCountry string
	Front          models.FileRef
	Back           models.FileRef
}

func identityOfPerson(p *models.Person) identity {
	return identity{
		SSN:            p.SSN,
		IDType:         p.IDType,
		IDNumber:       p.IDNumber,
		IssuingCountry: p.IDIssuingCountry,
		Front:          p.IDFrontRef,
		Back:           p.IDBackRef,
	}
}

func identityOfSubmission(sub *models.Submission, front, back models.FileRef) identity {
	return identity{
		SSN:            sub.Data.String(models.KeySSN),
		IDType:         models.ParseIDType(sub.Data.String(models.KeyIDType)),
		IDNumber:       sub.Data.String(models.KeyIDNumber),
		IssuingCountry: sub.Data.String(models.KeyIDIssuingCountry),
		Front:          front,
		Back:           back,
	}
}

// identifyingInfoFor renders the provider's identifying_information list: a
// tax number entry when an SSN is known, then the government id with its
// images. Passport-class ids never carry a back image.
func identifyingInfoFor(ctx context.Context, files documents.FileStore, ident identity) ([]provider.IdentifyingInfo, error) {
	var out []provider.IdentifyingInfo
	if ident.SSN != "" {
		out = append(out, provider.IdentifyingInfo{
			Type:           "ssn",
			IssuingCountry: defaultIssuingCountry,
			Number:         ident.SSN,
		})
	}
	if ident.IDType == "" {
		return out, nil
	}
	info := provider.IdentifyingInfo{
		Type:           string(ident.IDType),
		IssuingCountry: firstNonEmpty(ident.IssuingCountry, defaultIssuingCountry),
		Number:         ident.IDNumber,
	}
	if ident.Front != "" {
		att, err := documents.Load(ctx, files, ident.Front)
		if err != nil {
			return nil, fileError(models.DocIDFront, err)
		}
		info.ImageFront = att.DataURI()
	}
	if ident.Back != "" && !ident.IDType.IsPassportClass() {
		att, err := documents.Load(ctx, files, ident.Back)
		if err != nil {
			return nil, fileError(models.DocIDBack, err)
		}
		info.ImageBack = att.DataURI()
	}
	return append(out, info), nil
}

// BuildCustomerPayload assembles the provider representation of sub. The same
// inputs always produce the same payload: documents follow the required order
// and optional fields appear only when present.
func BuildCustomerPayload(ctx context.Context, files documents.FileStore, sub *models.Submission, docs map[models.DocumentType]*models.VerificationDocument) (provider.CustomerPayload, error) {
	d := sub.Data
	payload := provider.CustomerPayload{
		Email: d.String(models.KeyEmail),
		Phone: d.String(models.KeyPhone),
	}
	required := documents.RequiredDocumentsFor(documents.ProfileOf(sub))

	switch sub.SubjectType {
	case models.SubjectIndividual:
		payload.Type = provider.CustomerIndividual
		payload.FirstName = d.String(models.KeyFirstName)
		payload.MiddleName = d.String(models.KeyMiddleName)
		payload.LastName = d.String(models.KeyLastName)
		payload.BirthDate = d.String(models.KeyBirthDate)
		payload.ResidentialAddress = providerAddress(d.Address(""))

		front, err := resolveImage(sub, docs, models.DocIDFront, required)
		if err != nil {
			return provider.CustomerPayload{}, err
		}
		back, err := resolveImage(sub, docs, models.DocIDBack, required)
		if err != nil {
			return provider.CustomerPayload{}, err
		}
		info, err := identifyingInfoFor(ctx, files, identityOfSubmission(sub, front, back))
		if err != nil {
			return provider.CustomerPayload{}, err
		}
		payload.IdentifyingInformation = info

	case models.SubjectBusiness:
		payload.Type = provider.CustomerBusiness
		payload.BusinessLegalName = d.String(models.KeyBusinessName)
		payload.BusinessTradeName = d.String(models.KeyBusinessTradeName)
		payload.BusinessDescription = d.String(models.KeyBusinessDesc)
		payload.BusinessType = d.String(models.KeyBusinessType)
		payload.RegisteredAddress = providerAddress(d.Address(models.RegisteredPrefix))
		payload.Website = d.String(models.KeyWebsite)
		if ein := d.String(models.KeyEIN); ein != "" {
			payload.IdentifyingInformation = []provider.IdentifyingInfo{{
				Type:           "ein",
				IssuingCountry: firstNonEmpty(d.String(models.RegisteredPrefix+models.KeyAddressCountry), defaultIssuingCountry),
				Number:         ein,
			}}
		}

	default:
		return provider.CustomerPayload{}, dErrors.New(dErrors.CodeInvalidInput, "unknown subject type")
	}
	payload.SignedAgreementID = d.String(models.KeySignedAgreementID)

	for _, docType := range required {
		if docType == models.DocIDFront || docType == models.DocIDBack {
			continue
		}
		ref, err := documents.ResolveLoaded(sub, docs[docType], docType)
		if err != nil {
			return provider.CustomerPayload{}, fileError(docType, err)
		}
		att, err := documents.Load(ctx, files, ref)
		if err != nil {
			return provider.CustomerPayload{}, fileError(docType, err)
		}
		payload.Documents = append(payload.Documents, provider.Document{
			Purposes: []string{docType.ProviderPurpose()},
			File:     att.DataURI(),
		})
	}
	return payload, nil
}

// personPayload renders one associated person for the reconciler.
func (s *Service) personPayload(ctx context.Context, p *models.Person) (provider.PersonPayload, error) {
	info, err := identifyingInfoFor(ctx, s.files, identityOfPerson(p))
	if err != nil {
		return provider.PersonPayload{}, err
	}
	payload := provider.PersonPayload{
		FirstName:              p.FirstName,
		LastName:               p.LastName,
		Email:                  p.Email,
		BirthDate:              p.BirthDate,
		Title:                  p.Title,
		HasOwnership:           p.HasOwnership,
		HasControl:             p.HasControl || p.Role == models.RoleControl,
		IsSigner:               p.IsSigner,
		OwnershipPercentage:    p.OwnershipPercentage,
		IdentifyingInformation: info,
	}
	if !p.Address.IsZero() {
		payload.ResidentialAddress = providerAddress(p.Address)
	}
	return payload, nil
}

// resolveImage finds an id image. A missing image is only an error when the
// profile requires it.
func resolveImage(sub *models.Submission, docs map[models.DocumentType]*models.VerificationDocument, docType models.DocumentType, required []models.DocumentType) (models.FileRef, error) {
	ref, err := documents.ResolveLoaded(sub, docs[docType], docType)
	if err == nil {
		return ref, nil
	}
	if errors.Is(err, sentinel.ErrNotFound) && !slices.Contains(required, docType) {
		return "", nil
	}
	return "", fileError(docType, err)
}

func providerAddress(a models.Address) *provider.Address {
	if a.IsZero() {
		return nil
	}
	return &provider.Address{
		StreetLine1: a.Line1,
		StreetLine2: a.Line2,
		City:        a.City,
		Subdivision: a.Subdivision,
		PostalCode:  a.PostalCode,
		Country:     a.Country,
	}
}

func fileError(docType models.DocumentType, err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("file for %s not found", docType))
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("failed to read file for %s", docType))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
