package documents

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"lend/internal/domain"
)

func uploads(names ...string) []*domain.UploadedDocument {
	docs := make([]*domain.UploadedDocument, 0, len(names))
	for _, n := range names {
		docs = append(docs, &domain.UploadedDocument{
			ID:           uuid.New(),
			DocumentName: n,
			UploadStatus: domain.UploadStatusPending,
		})
	}
	return docs
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "aadhaarcard", Normalize("AADHAAR_CARD"))
	assert.Equal(t, "aadhaarcard", Normalize("Aadhaar Card"))
	assert.Equal(t, "pancard", Normalize("PAN-card!"))
	assert.Equal(t, "", Normalize("___"))
}

func TestMatchesContainment(t *testing.T) {
	// Equality and containment in both directions.
	assert.True(t, Matches("Salary Slip", "salary_slip"))
	assert.True(t, Matches("Salary Slip", "Latest Salary Slip March"))
	assert.True(t, Matches("Latest Salary Slip", "salary slip"))
	assert.False(t, Matches("Salary Slip", "Bank Statement"))
	assert.False(t, Matches("", "anything"))
}

func TestMatchesSynonyms(t *testing.T) {
	// aadhar <-> aadhaar
	assert.True(t, Matches("Aadhar Card", "AADHAAR_CARD"))
	assert.True(t, Matches("aadhaar", "Aadhar front"))

	// Any PAN upload satisfies any PAN request.
	assert.True(t, Matches("PAN Card", "pan_front.jpg"))
	assert.True(t, Matches("Copy of PAN", "company pan"))
	assert.False(t, Matches("PAN Card", "aadhaar card"))
}

func TestResolutionCommutativeUnderNormalization(t *testing.T) {
	assert.True(t, AllSatisfied(domain.DocumentList{"Aadhar Card"}, uploads("AADHAAR_CARD")))
	assert.True(t, AllSatisfied(domain.DocumentList{"AADHAAR_CARD"}, uploads("Aadhar Card")))
}

func TestPending(t *testing.T) {
	requested := domain.DocumentList{"Aadhar Card", "PAN Card", "Salary Slip"}

	pending := Pending(requested, uploads("aadhaar_front", "pan.pdf"))
	assert.Equal(t, []string{"Salary Slip"}, pending)

	assert.Empty(t, Pending(requested, uploads("aadhaar", "pan", "salary slip jan")))
	assert.Empty(t, Pending(nil, nil))
}

func TestPendingIgnoresRejectedUploads(t *testing.T) {
	requested := domain.DocumentList{"Aadhar Card"}

	rejected := []*domain.UploadedDocument{{
		ID:           uuid.New(),
		DocumentName: "aadhaar card",
		UploadStatus: domain.UploadStatusRejected,
	}}
	assert.Equal(t, []string{"Aadhar Card"}, Pending(requested, rejected))
	assert.False(t, AllSatisfied(requested, rejected))

	// A fresh upload alongside the rejected one closes the request again.
	reuploaded := append(rejected, &domain.UploadedDocument{
		ID:           uuid.New(),
		DocumentName: "AADHAAR_CARD",
		UploadStatus: domain.UploadStatusPending,
	})
	assert.Empty(t, Pending(requested, reuploaded))

	// Verified uploads count like pending ones.
	verified := []*domain.UploadedDocument{{
		ID:           uuid.New(),
		DocumentName: "aadhaar card",
		UploadStatus: domain.UploadStatusVerified,
	}}
	assert.True(t, AllSatisfied(requested, verified))
}

func TestLatestRequestSupersedesOlder(t *testing.T) {
	appID := uuid.New()
	now := time.Now().UTC()

	// Most-recent-first, as GetValidationHistory returns it.
	actions := []*domain.ValidationAction{
		{
			ID:            uuid.New(),
			ApplicationID: appID,
			ActionType:    domain.ActionNeedDocument,
			Payload:       domain.DocumentList{"Bank Statement"},
			CreatedAt:     now,
		},
		{
			ID:            uuid.New(),
			ApplicationID: appID,
			ActionType:    domain.ActionNeedDocument,
			Payload:       domain.DocumentList{"Aadhar Card", "PAN Card"},
			CreatedAt:     now.Add(-time.Hour),
		},
	}

	latest := LatestRequest(actions)
	assert.Equal(t, domain.DocumentList{"Bank Statement"}, latest)
}

func TestLatestRequestNoneOutstanding(t *testing.T) {
	assert.Nil(t, LatestRequest(nil))
	assert.Nil(t, LatestRequest([]*domain.ValidationAction{}))
}
