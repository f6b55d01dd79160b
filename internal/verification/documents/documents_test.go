package documents

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verigate/internal/verification/models"
	id "verigate/pkg/domain"
	"verigate/pkg/platform/sentinel"
)

type stubDocs map[models.DocumentType]*models.VerificationDocument

func (s stubDocs) FindBySubmissionAndType(_ context.Context, _ id.SubmissionID, t models.DocumentType) (*models.VerificationDocument, error) {
	if d, ok := s[t]; ok {
		return d, nil
	}
	return nil, sentinel.ErrNotFound
}

type stubSubmissions struct {
	sub *models.Submission
	err error
}

func (s stubSubmissions) FindByID(context.Context, id.SubmissionID) (*models.Submission, error) {
	return s.sub, s.err
}

func TestResolver(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	sub := models.NewSubmission(id.NewSubjectID(), models.SubjectBusiness, models.Data{
		"formation_document_file": "legacy/formation.pdf",
		"proof_of_address_file":   "legacy/poa.pdf",
	}, now)

	t.Run("document row wins over legacy field", func(t *testing.T) {
		docs := stubDocs{models.DocFormation: models.NewVerificationDocument(sub.ID, models.DocFormation, "uploads/formation.pdf", now)}
		ref, err := NewResolver(docs, stubSubmissions{sub: sub}).Resolve(ctx, sub.ID, models.DocFormation)
		require.NoError(t, err)
		assert.Equal(t, models.FileRef("uploads/formation.pdf"), ref)
	})

	t.Run("row without file falls back to legacy field", func(t *testing.T) {
		docs := stubDocs{models.DocProofOfAddress: models.NewVerificationDocument(sub.ID, models.DocProofOfAddress, "  ", now)}
		ref, err := NewResolver(docs, stubSubmissions{sub: sub}).Resolve(ctx, sub.ID, models.DocProofOfAddress)
		require.NoError(t, err)
		assert.Equal(t, models.FileRef("legacy/poa.pdf"), ref)
	})

	t.Run("absent everywhere is not found", func(t *testing.T) {
		_, err := NewResolver(stubDocs{}, stubSubmissions{sub: sub}).Resolve(ctx, sub.ID, models.DocOwnership)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("store failure is propagated", func(t *testing.T) {
		boom := errors.New("db down")
		_, err := NewResolver(stubDocs{}, stubSubmissions{err: boom}).Resolve(ctx, sub.ID, models.DocOwnership)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("resolve loaded uses the same tiers", func(t *testing.T) {
		ref, err := ResolveLoaded(sub, nil, models.DocFormation)
		require.NoError(t, err)
		assert.Equal(t, models.FileRef("legacy/formation.pdf"), ref)

		_, err = ResolveLoaded(sub, nil, models.DocIDBack)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "id.png"), []byte{0x89, 'P', 'N', 'G'}, 0o600))
	store := NewLocalStore(root)
	ctx := context.Background()

	t.Run("reads file and infers mime", func(t *testing.T) {
		att, err := Load(ctx, store, "sub/id.png")
		require.NoError(t, err)
		assert.Equal(t, "image/png", att.MimeType)
		assert.True(t, strings.HasPrefix(att.DataURI(), "data:image/png;base64,"))
		assert.Equal(t, "data:image/png;base64,iVBORw==", att.DataURI())
	})

	t.Run("missing file is not found", func(t *testing.T) {
		_, err := store.ReadBytes(ctx, "sub/missing.pdf")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("parent traversal is refused", func(t *testing.T) {
		_, err := store.ReadBytes(ctx, "../etc/passwd")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("empty path is refused", func(t *testing.T) {
		_, err := store.ReadBytes(ctx, "")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestMimeTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", MimeTypeFor("a/b/c.PDF"))
	assert.Equal(t, "image/jpeg", MimeTypeFor("photo.jpeg"))
	assert.Equal(t, "application/octet-stream", MimeTypeFor("noext"))
	assert.Equal(t, "application/octet-stream", MimeTypeFor("file.zzunknown"))
}

func TestRequiredDocumentsFor(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    []models.DocumentType
	}{
		{
			name:    "individual with drivers license needs both sides",
			profile: Profile{SubjectType: models.SubjectIndividual, IDType: models.IDTypeDriversLicense},
			want:    []models.DocumentType{models.DocIDFront, models.DocIDBack, models.DocProofOfAddress},
		},
		{
			name:    "individual with passport needs front only",
			profile: Profile{SubjectType: models.SubjectIndividual, IDType: models.IDTypePassport},
			want:    []models.DocumentType{models.DocIDFront, models.DocProofOfAddress},
		},
		{
			name:    "individual without id type is treated as two-sided",
			profile: Profile{SubjectType: models.SubjectIndividual},
			want:    []models.DocumentType{models.DocIDFront, models.DocIDBack, models.DocProofOfAddress},
		},
		{
			name:    "business",
			profile: Profile{SubjectType: models.SubjectBusiness, EntityType: "llc"},
			want:    []models.DocumentType{models.DocFormation, models.DocOwnership, models.DocProofOfAddress},
		},
		{
			name:    "nonprofit business adds determination letter",
			profile: Profile{SubjectType: models.SubjectBusiness, EntityType: "501c3"},
			want:    []models.DocumentType{models.DocFormation, models.DocOwnership, models.DocProofOfAddress, models.DocDeterminationLetter},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RequiredDocumentsFor(tt.profile))
		})
	}
}

func TestProfileOf(t *testing.T) {
	sub := models.NewSubmission(id.NewSubjectID(), models.SubjectBusiness, models.Data{
		models.KeyBusinessType: " NonProfit ",
	}, time.Now())
	p := ProfileOf(sub)
	assert.Equal(t, models.SubjectBusiness, p.SubjectType)
	assert.True(t, p.EntityType.IsNonprofit())
}
