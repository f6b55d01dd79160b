package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "verigate/pkg/domain"
	dErrors "verigate/pkg/domain-errors"
)

func TestParseDocumentType(t *testing.T) {
	got, err := ParseDocumentType(" ID_Back ")
	require.NoError(t, err)
	assert.Equal(t, DocIDBack, got)
	assert.Equal(t, "id_back_image", got.LegacyField())

	_, err = ParseDocumentType("selfie")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestPolicyPredicates(t *testing.T) {
	assert.True(t, ParseIDType(" Passport ").IsPassportClass())
	assert.True(t, IDTypePassportCard.IsPassportClass())
	assert.False(t, IDTypeDriversLicense.IsPassportClass())

	assert.True(t, ParseEntityType("Nonprofit_Corporation").IsNonprofit())
	assert.False(t, ParseEntityType("llc").IsNonprofit())
}

func TestAddressMissing(t *testing.T) {
	assert.Equal(t, []string{"line1", "city", "postal_code", "country"}, Address{}.Missing())
	assert.Empty(t, Address{Line1: "1 Main", City: "Austin", PostalCode: "78701", Country: "USA"}.Missing())
}

func TestData(t *testing.T) {
	d := Data{"website": "  https://acme.test ", "count": float64(3), "flag": "yes", "nil": nil}
	assert.Equal(t, "https://acme.test", d.String("website"))
	assert.Equal(t, "3", d.String("count"))
	assert.Equal(t, "", d.String("nil"))
	assert.Equal(t, "", d.String("absent"))
	assert.True(t, d.Bool("flag"))
	assert.False(t, d.Bool("website"))

	clone := d.Clone()
	clone["website"] = "changed"
	assert.Equal(t, "https://acme.test", d.String("website"))
}

func TestPersonBackfillIdentity(t *testing.T) {
	p := &Person{SSN: "111-22-3333"}

	changed := p.BackfillIdentity("999-99-9999", IDTypePassport, "X123")
	assert.True(t, changed)
	assert.Equal(t, "111-22-3333", p.SSN, "populated field must not be overwritten")
	assert.Equal(t, IDTypePassport, p.IDType)
	assert.Equal(t, "X123", p.IDNumber)

	assert.False(t, p.BackfillIdentity("", "", ""))
}

func TestProviderSnapshotMerge(t *testing.T) {
	existing := &ProviderSnapshot{
		Customer:          json.RawMessage(`{"id":"cus_1","status":"under_review"}`),
		AssociatedPersons: map[string]json.RawMessage{"ap_1": json.RawMessage(`{"id":"ap_1"}`)},
	}
	incoming := &ProviderSnapshot{
		Customer:          json.RawMessage(`{"id":"cus_1","status":"approved"}`),
		AssociatedPersons: map[string]json.RawMessage{"ap_2": json.RawMessage(`{"id":"ap_2"}`)},
	}

	merged := existing.Merge(incoming)
	assert.JSONEq(t, `{"id":"cus_1","status":"approved"}`, string(merged.Customer))
	assert.Len(t, merged.AssociatedPersons, 2)

	var nilSnap *ProviderSnapshot
	assert.True(t, nilSnap.IsEmpty())
	assert.False(t, nilSnap.Merge(incoming).IsEmpty())
}

func TestSubmissionTransitions(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	actor := id.ActorID(uuid.New())

	t.Run("approval keeps snapshot", func(t *testing.T) {
		s := NewSubmission(id.NewSubjectID(), SubjectBusiness, nil, now)
		s.MarkApproved(&ProviderSnapshot{Customer: json.RawMessage(`{}`)}, actor, now)
		assert.Equal(t, StatusApproved, s.Status)
		assert.False(t, s.ProviderResponse.IsEmpty())
		require.NotNil(t, s.ApprovedBy)
		assert.Equal(t, actor, *s.ApprovedBy)
	})

	t.Run("rejection and more-info clear snapshot", func(t *testing.T) {
		s := NewSubmission(id.NewSubjectID(), SubjectIndividual, nil, now)
		s.MarkApproved(&ProviderSnapshot{Customer: json.RawMessage(`{}`)}, actor, now)
		s.MarkRejected("blurry id", actor, now)
		assert.Equal(t, StatusRejected, s.Status)
		assert.Nil(t, s.ProviderResponse)

		s.MarkApproved(&ProviderSnapshot{Customer: json.RawMessage(`{}`)}, actor, now)
		s.MarkNeedsMoreInfo([]string{"id_back"}, "please re-upload", now)
		assert.Equal(t, StatusNeedsMoreInfo, s.Status)
		assert.Nil(t, s.ProviderResponse)
		assert.Equal(t, []string{"id_back"}, s.RequestedFields)
	})

	t.Run("admin review window", func(t *testing.T) {
		s := NewSubmission(id.NewSubjectID(), SubjectIndividual, nil, now)
		for _, st := range []Status{StatusNotStarted, StatusUnderReview, StatusIncomplete} {
			s.Status = st
			assert.True(t, s.AwaitingAdminReview(), st)
		}
		for _, st := range []Status{StatusApproved, StatusRejected, StatusNeedsMoreInfo, StatusPaused} {
			s.Status = st
			assert.False(t, s.AwaitingAdminReview(), st)
		}
	})
}

func TestIntegrationStatusFor(t *testing.T) {
	now := time.Now()
	in := NewIntegration(id.NewSubjectID(), now)
	in.SetStatusFor(SubjectBusiness, StatusAwaitingUBO, now)
	in.SetStatusFor(SubjectIndividual, StatusApproved, now)

	assert.Equal(t, StatusAwaitingUBO, in.StatusFor(SubjectBusiness))
	assert.Equal(t, StatusApproved, in.StatusFor(SubjectIndividual))
	assert.False(t, in.HasCustomer())
}
