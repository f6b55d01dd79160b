package handler

import (
	"time"

	"verigate/internal/provider"
	"verigate/internal/verification/models"
	"verigate/internal/verification/service"
)

type SubmissionResponse struct {
	ID                 string                   `json:"id"`
	SubjectID          string                   `json:"subject_id"`
	SubjectType        string                   `json:"subject_type"`
	Status             string                   `json:"status"`
	ProviderCustomerID string                   `json:"provider_customer_id,omitempty"`
	ProviderResponse   *models.ProviderSnapshot `json:"provider_response,omitempty"`
	RequestedFields    []string                 `json:"requested_fields,omitempty"`
	RequestMessage     string                   `json:"request_message,omitempty"`
	RejectionReason    string                   `json:"rejection_reason,omitempty"`
	ApprovedAt         *time.Time               `json:"approved_at,omitempty"`
	RejectedAt         *time.Time               `json:"rejected_at,omitempty"`
	UpdatedAt          time.Time                `json:"updated_at"`
	Documents          []DocumentResponse       `json:"documents"`
	Persons            []PersonResponse         `json:"persons,omitempty"`
	Integration        *IntegrationResponse     `json:"integration,omitempty"`
}

type DocumentResponse struct {
	Type            string     `json:"type"`
	ReviewStatus    string     `json:"review_status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}

type PersonResponse struct {
	ID                  string `json:"id"`
	Role                string `json:"role"`
	Email               string `json:"email"`
	RemoteID            string `json:"remote_id,omitempty"`
	VerificationLinkURL string `json:"verification_link_url,omitempty"`
}

type IntegrationResponse struct {
	ProviderCustomerID  string     `json:"provider_customer_id,omitempty"`
	KYCStatus           string     `json:"kyc_status"`
	KYBStatus           string     `json:"kyb_status"`
	VerificationLinkURL string     `json:"verification_link_url,omitempty"`
	ProvisionedAt       *time.Time `json:"provisioned_at,omitempty"`
}

type ApprovalResponse struct {
	SubmissionID       string                  `json:"submission_id"`
	Status             string                  `json:"status"`
	ProviderCustomerID string                  `json:"provider_customer_id"`
	CustomerCreated    bool                    `json:"customer_created"`
	Provisioned        bool                    `json:"provisioned"`
	Reconfirmed        bool                    `json:"reconfirmed"`
	Reconciliation     *ReconciliationResponse `json:"reconciliation,omitempty"`
}

type ReconciliationResponse struct {
	Created   int      `json:"created"`
	Adopted   int      `json:"adopted"`
	Failed    int      `json:"failed"`
	Anomalies []string `json:"stale_remote_ids,omitempty"`
	LinkURL   string   `json:"verification_link_url,omitempty"`
}

// ValidationDetails lists what blocked an approval.
type ValidationDetails struct {
	MissingDocuments []string `json:"missing_documents,omitempty"`
	MissingFields    []string `json:"missing_fields,omitempty"`
}

type WebhooksResponse struct {
	Webhooks []provider.WebhookRef `json:"webhooks"`
}

func FromView(view *service.SubmissionView) SubmissionResponse {
	sub := view.Submission
	resp := SubmissionResponse{
		ID:                 sub.ID.String(),
		SubjectID:          sub.SubjectID.String(),
		SubjectType:        string(sub.SubjectType),
		Status:             string(sub.Status),
		ProviderCustomerID: sub.ProviderCustomerID,
		ProviderResponse:   sub.ProviderResponse,
		RequestedFields:    sub.RequestedFields,
		RequestMessage:     sub.RequestMessage,
		RejectionReason:    sub.RejectionReason,
		ApprovedAt:         sub.ApprovedAt,
		RejectedAt:         sub.RejectedAt,
		UpdatedAt:          sub.UpdatedAt,
		Documents:          make([]DocumentResponse, 0, len(view.Documents)),
	}
	for _, doc := range view.Documents {
		resp.Documents = append(resp.Documents, DocumentResponse{
			Type:            string(doc.Type),
			ReviewStatus:    string(doc.ReviewStatus),
			RejectionReason: doc.RejectionReason,
			ReviewedAt:      doc.ReviewedAt,
		})
	}
	for _, p := range view.Persons {
		resp.Persons = append(resp.Persons, PersonResponse{
			ID:                  p.ID.String(),
			Role:                string(p.Role),
			Email:               p.Email,
			RemoteID:            p.RemoteID,
			VerificationLinkURL: p.VerificationLinkURL,
		})
	}
	if in := view.Integration; in != nil {
		resp.Integration = &IntegrationResponse{
			ProviderCustomerID:  in.ProviderCustomerID,
			KYCStatus:           string(in.KYCStatus),
			KYBStatus:           string(in.KYBStatus),
			VerificationLinkURL: in.VerificationLinkURL,
			ProvisionedAt:       in.ProvisionedAt,
		}
	}
	return resp
}

func FromOutcome(outcome *service.ApprovalOutcome) ApprovalResponse {
	resp := ApprovalResponse{
		SubmissionID:       outcome.SubmissionID.String(),
		Status:             string(outcome.Status),
		ProviderCustomerID: outcome.ProviderCustomerID,
		CustomerCreated:    outcome.CustomerCreated,
		Provisioned:        outcome.Provisioned,
		Reconfirmed:        outcome.Reconfirmed,
	}
	if rec := outcome.Reconciliation; rec != nil {
		r := &ReconciliationResponse{
			Created: rec.Created,
			Adopted: rec.Adopted,
			Failed:  rec.Failed,
			LinkURL: rec.LinkURL,
		}
		for _, a := range rec.Anomalies {
			r.Anomalies = append(r.Anomalies, a.StaleRemoteID)
		}
		resp.Reconciliation = r
	}
	return resp
}

func FromValidationError(verr *service.ValidationError) ValidationDetails {
	details := ValidationDetails{MissingFields: verr.MissingFields}
	for _, d := range verr.MissingDocuments {
		details.MissingDocuments = append(details.MissingDocuments, string(d))
	}
	return details
}
