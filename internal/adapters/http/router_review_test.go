package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/medreview/slide-compliance/internal/core/domain"
	"github.com/medreview/slide-compliance/internal/core/review"
)

func openReviewSession(t *testing.T, fx *routerFixture) {
	t.Helper()
	res := fx.do(t, http.MethodPost, "/v1/decks/deck-1/review", nil)
	if res.Code != http.StatusCreated {
		t.Fatalf("open review status = %d, want 201; body: %s", res.Code, res.Body.String())
	}
}

func decodeFindings(t *testing.T, body []byte) []domain.Finding {
	t.Helper()
	var payload struct {
		Findings []domain.Finding `json:"findings"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode findings: %v", err)
	}
	return payload.Findings
}

func TestOpenReviewReturnsSessionState(t *testing.T) {
	fx := newRouterFixture(t)

	res := fx.do(t, http.MethodPost, "/v1/decks/deck-1/review", nil)
	if res.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", res.Code)
	}

	var payload struct {
		DeckID    string           `json:"deck_id"`
		RunID     string           `json:"run_id"`
		Augmented bool             `json:"augmented"`
		Findings  []domain.Finding `json:"findings"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if payload.RunID != "run-1" || !payload.Augmented || len(payload.Findings) != 2 {
		t.Fatalf("session = %+v", payload)
	}
}

func TestReviewEndpointsRequireOpenSession(t *testing.T) {
	fx := newRouterFixture(t)

	res := fx.do(t, http.MethodGet, "/v1/decks/deck-1/review/findings", nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 before open", res.Code)
	}
}

func TestListFindingsSorted(t *testing.T) {
	fx := newRouterFixture(t)
	openReviewSession(t, fx)

	res := fx.do(t, http.MethodGet, "/v1/decks/deck-1/review/findings?sort=correctionType&order=asc", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	findings := decodeFindings(t, res.Body.Bytes())
	if len(findings) != 2 {
		t.Fatalf("got %d findings", len(findings))
	}
	// required sorts before optional
	if findings[0].ID != "f2" || findings[1].ID != "f1" {
		t.Fatalf("order = %s, %s", findings[0].ID, findings[1].ID)
	}
}

func TestListFindingsUnknownSortKey(t *testing.T) {
	fx := newRouterFixture(t)
	openReviewSession(t, fx)

	res := fx.do(t, http.MethodGet, "/v1/decks/deck-1/review/findings?sort=category", nil)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.Code)
	}
}

func TestAddPatchAndNavigateFindings(t *testing.T) {
	fx := newRouterFixture(t)
	openReviewSession(t, fx)

	res := fx.do(t, http.MethodPost, "/v1/decks/deck-1/review/findings", strings.NewReader(`{
		"slideNumber": 3, "category": "citation", "issue": "出典なし", "suggestion": "付ける"
	}`))
	if res.Code != http.StatusCreated {
		t.Fatalf("add status = %d, want 201; body: %s", res.Code, res.Body.String())
	}
	var added domain.Finding
	if err := json.Unmarshal(res.Body.Bytes(), &added); err != nil {
		t.Fatalf("decode added: %v", err)
	}
	if added.ID == "" || added.CorrectionType != domain.CorrectionOptional {
		t.Fatalf("added = %+v", added)
	}

	res = fx.do(t, http.MethodPatch, "/v1/decks/deck-1/review/findings/"+added.ID,
		strings.NewReader(`{"issue": "出典が古い"}`))
	if res.Code != http.StatusOK {
		t.Fatalf("patch status = %d, want 200", res.Code)
	}
	var patched domain.Finding
	if err := json.Unmarshal(res.Body.Bytes(), &patched); err != nil {
		t.Fatalf("decode patched: %v", err)
	}
	if patched.Issue != "出典が古い" {
		t.Fatalf("patched issue = %q", patched.Issue)
	}

	res = fx.do(t, http.MethodGet, "/v1/decks/deck-1/review/findings/"+added.ID+"/navigation", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("navigation status = %d, want 200", res.Code)
	}
	var nav review.Navigation
	if err := json.Unmarshal(res.Body.Bytes(), &nav); err != nil {
		t.Fatalf("decode navigation: %v", err)
	}
	if !nav.HasPrev || nav.HasNext {
		t.Fatalf("appended finding must be last: %+v", nav)
	}
}

func TestAddFindingInvalidPayload(t *testing.T) {
	fx := newRouterFixture(t)
	openReviewSession(t, fx)

	res := fx.do(t, http.MethodPost, "/v1/decks/deck-1/review/findings", strings.NewReader(`{
		"slideNumber": 0, "category": "citation", "issue": "x", "suggestion": "y"
	}`))
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.Code)
	}
}

func TestSaveFindingResortsStore(t *testing.T) {
	fx := newRouterFixture(t)
	openReviewSession(t, fx)

	res := fx.do(t, http.MethodPut, "/v1/decks/deck-1/review/findings/f1", strings.NewReader(`{
		"slideNumber": 1, "category": "expression", "basis": "薬機法 第66条",
		"issue": "誇大", "suggestion": "直す", "correctionType": "optional"
	}`))
	if res.Code != http.StatusOK {
		t.Fatalf("save status = %d, want 200; body: %s", res.Code, res.Body.String())
	}

	list := fx.do(t, http.MethodGet, "/v1/decks/deck-1/review/findings", nil)
	findings := decodeFindings(t, list.Body.Bytes())
	if findings[0].SlideNumber > findings[1].SlideNumber {
		t.Fatalf("store must be resorted by slide number: %+v", findings)
	}
}

func TestDeleteAndUndoFinding(t *testing.T) {
	fx := newRouterFixture(t)
	openReviewSession(t, fx)

	res := fx.do(t, http.MethodDelete, "/v1/decks/deck-1/review/findings/f1", nil)
	if res.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", res.Code)
	}

	list := fx.do(t, http.MethodGet, "/v1/decks/deck-1/review/findings", nil)
	if got := len(decodeFindings(t, list.Body.Bytes())); got != 1 {
		t.Fatalf("findings after delete = %d, want 1", got)
	}

	res = fx.do(t, http.MethodPost, "/v1/decks/deck-1/review/undo", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("undo status = %d, want 200", res.Code)
	}
	var undo struct {
		Restored bool `json:"restored"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &undo); err != nil {
		t.Fatalf("decode undo: %v", err)
	}
	if !undo.Restored {
		t.Fatalf("expected restore")
	}

	list = fx.do(t, http.MethodGet, "/v1/decks/deck-1/review/findings", nil)
	if got := len(decodeFindings(t, list.Body.Bytes())); got != 2 {
		t.Fatalf("findings after undo = %d, want 2", got)
	}

	res = fx.do(t, http.MethodPost, "/v1/decks/deck-1/review/undo", nil)
	if err := json.Unmarshal(res.Body.Bytes(), &undo); err != nil {
		t.Fatalf("decode second undo: %v", err)
	}
	if undo.Restored {
		t.Fatalf("second undo must report no restore")
	}
}

func TestDeleteUnknownFinding(t *testing.T) {
	fx := newRouterFixture(t)
	openReviewSession(t, fx)

	res := fx.do(t, http.MethodDelete, "/v1/decks/deck-1/review/findings/missing", nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", res.Code)
	}
}

func TestCloseReview(t *testing.T) {
	fx := newRouterFixture(t)
	openReviewSession(t, fx)

	res := fx.do(t, http.MethodDelete, "/v1/decks/deck-1/review", nil)
	if res.Code != http.StatusNoContent {
		t.Fatalf("close status = %d, want 204", res.Code)
	}

	res = fx.do(t, http.MethodGet, "/v1/decks/deck-1/review/findings", nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("status after close = %d, want 404", res.Code)
	}
}
