// Package documents reconciles admin-requested documents against borrower
// uploads. Matching is a small, closed rule set (normalization plus two
// synonym rules) kept deliberately enumerable for audit; it must not grow
// into general fuzzy matching.
package documents

import (
	"strings"

	"lend/internal/domain"
)

// Synonym pairs recognized beyond containment matching.
const (
	aadhaarShort = "aadhar"
	aadhaarLong  = "aadhaar"
	panToken     = "pan"
)

// Normalize lower-cases a document name and strips every non-alphanumeric
// character, so "AADHAAR_CARD" and "aadhaar card" compare equal.
func Normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Matches reports whether an uploaded document name satisfies a requested
// one. Both names are normalized first; a match is equality, containment in
// either direction, the aadhar/aadhaar synonym, or both names mentioning PAN.
func Matches(requested, uploaded string) bool {
	req := Normalize(requested)
	up := Normalize(uploaded)
	if req == "" || up == "" {
		return false
	}

	if req == up || strings.Contains(req, up) || strings.Contains(up, req) {
		return true
	}

	if strings.Contains(req, panToken) && strings.Contains(up, panToken) {
		return true
	}

	return aadhaarVariant(req) && aadhaarVariant(up)
}

func aadhaarVariant(normalized string) bool {
	return strings.Contains(normalized, aadhaarShort) || strings.Contains(normalized, aadhaarLong)
}

// LatestRequest returns the document list of the most recent need_document
// action. Older actions of the same type are superseded, never accumulated.
// The actions slice is expected most-recent-first, as the validation history
// collaborator returns it.
func LatestRequest(actions []*domain.ValidationAction) domain.DocumentList {
	for _, action := range actions {
		if action.ActionType == domain.ActionNeedDocument {
			return action.Payload
		}
	}
	return nil
}

// Pending returns the requested names with no matching upload. A rejected
// upload does not count: the admin sent it back, so the request stays open
// until the borrower uploads again. Every other status counts, including
// pending uploads awaiting verification.
func Pending(requested domain.DocumentList, uploaded []*domain.UploadedDocument) []string {
	var pending []string
	for _, req := range requested {
		satisfied := false
		for _, doc := range uploaded {
			if doc.UploadStatus == domain.UploadStatusRejected {
				continue
			}
			if Matches(req, doc.DocumentName) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			pending = append(pending, req)
		}
	}
	return pending
}

// AllSatisfied reports whether every requested document has been uploaded.
func AllSatisfied(requested domain.DocumentList, uploaded []*domain.UploadedDocument) bool {
	return len(Pending(requested, uploaded)) == 0
}
