package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/medreview/slide-compliance/internal/core/domain"
	"github.com/medreview/slide-compliance/internal/core/ports"
	"github.com/medreview/slide-compliance/internal/core/review"
	"github.com/medreview/slide-compliance/internal/core/usecase"
)

const maxUploadBytes = 100 << 20

type Router struct {
	ingestUC ports.DeckIngestor
	reviewUC *usecase.ReviewUseCase
	decks    ports.DeckRepository
	analyses ports.AnalysisRepository
	storage  ports.ObjectStorage
	queue    ports.MessageQueue
	exporter ports.FindingExporter
}

func NewRouter(
	ingestUC ports.DeckIngestor,
	reviewUC *usecase.ReviewUseCase,
	decks ports.DeckRepository,
	analyses ports.AnalysisRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	exporter ports.FindingExporter,
) *Router {
	return &Router{
		ingestUC: ingestUC,
		reviewUC: reviewUC,
		decks:    decks,
		analyses: analyses,
		storage:  storage,
		queue:    queue,
		exporter: exporter,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)

	mux.HandleFunc("POST /v1/decks", rt.uploadDeck)
	mux.HandleFunc("GET /v1/decks", rt.listDecks)
	mux.HandleFunc("GET /v1/decks/{id}", rt.getDeck)
	mux.HandleFunc("DELETE /v1/decks/{id}", rt.deleteDeck)

	mux.HandleFunc("POST /v1/decks/{id}/analyses", rt.requestAnalysis)
	mux.HandleFunc("GET /v1/decks/{id}/analyses/latest", rt.latestAnalysis)
	mux.HandleFunc("GET /v1/decks/{id}/export", rt.exportFindings)

	mux.HandleFunc("POST /v1/decks/{id}/review", rt.openReview)
	mux.HandleFunc("DELETE /v1/decks/{id}/review", rt.closeReview)
	mux.HandleFunc("GET /v1/decks/{id}/review/findings", rt.listFindings)
	mux.HandleFunc("POST /v1/decks/{id}/review/findings", rt.addFinding)
	mux.HandleFunc("PATCH /v1/decks/{id}/review/findings/{findingID}", rt.patchFinding)
	mux.HandleFunc("PUT /v1/decks/{id}/review/findings/{findingID}", rt.saveFinding)
	mux.HandleFunc("DELETE /v1/decks/{id}/review/findings/{findingID}", rt.deleteFinding)
	mux.HandleFunc("GET /v1/decks/{id}/review/findings/{findingID}/navigation", rt.findingNavigation)
	mux.HandleFunc("POST /v1/decks/{id}/review/undo", rt.undoDelete)

	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDeck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("multipart field 'file' is required"))
		return
	}
	defer file.Close()

	deck, err := rt.ingestUC.Upload(r.Context(), fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, deck)
}

func (rt *Router) listDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := rt.decks.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"decks": decks})
}

func (rt *Router) getDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := rt.decks.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (rt *Router) deleteDeck(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("id")

	deck, err := rt.decks.GetByID(r.Context(), deckID)
	if err != nil {
		writeError(w, err)
		return
	}

	rt.reviewUC.Close(deckID)
	if err := rt.storage.Delete(r.Context(), deck.StoragePath); err != nil {
		writeError(w, err)
		return
	}
	if err := rt.decks.Delete(r.Context(), deckID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) requestAnalysis(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("id")

	if _, err := rt.decks.GetByID(r.Context(), deckID); err != nil {
		writeError(w, err)
		return
	}
	if err := rt.queue.PublishAnalysisRequested(r.Context(), deckID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"deck_id": deckID, "status": "requested"})
}

func (rt *Router) latestAnalysis(w http.ResponseWriter, r *http.Request) {
	run, err := rt.analyses.GetLatestRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (rt *Router) exportFindings(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("id")

	run, err := rt.analyses.GetLatestRun(r.Context(), deckID)
	if err != nil {
		writeError(w, err)
		return
	}

	// The basis column only exists once the augmentation pass ran.
	includeBasis := run.State == domain.RunStateAugmented
	data, err := rt.exporter.Export(run.Findings, includeBasis)
	if err != nil {
		writeError(w, err)
		return
	}

	filename := fmt.Sprintf("analysis_%s.xlsx", deckID)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", url.PathEscape(filename)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rt *Router) openReview(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("id")

	session, err := rt.reviewUC.Open(r.Context(), deckID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"deck_id":   session.DeckID,
		"run_id":    session.RunID,
		"augmented": session.Augmented,
		"findings":  session.Store.Findings(),
	})
}

func (rt *Router) closeReview(w http.ResponseWriter, r *http.Request) {
	rt.reviewUC.Close(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) listFindings(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("id")

	key := review.SortBySlideNumber
	if raw := r.URL.Query().Get("sort"); raw != "" {
		parsed, ok := review.ParseSortKey(raw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorBody("unknown sort key"))
			return
		}
		key = parsed
	}
	order := review.OrderAscending
	if raw := r.URL.Query().Get("order"); raw != "" {
		parsed, ok := review.ParseSortOrder(raw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorBody("unknown sort order"))
			return
		}
		order = parsed
	}

	findings, err := rt.reviewUC.SortedView(deckID, key, order)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"findings": findings})
}

func (rt *Router) addFinding(w http.ResponseWriter, r *http.Request) {
	var draft domain.Finding
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}

	stored, err := rt.reviewUC.AddFinding(r.Context(), r.PathValue("id"), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (rt *Router) patchFinding(w http.ResponseWriter, r *http.Request) {
	var patch domain.FindingPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}

	updated, err := rt.reviewUC.UpdateFinding(r.Context(), r.PathValue("id"), r.PathValue("findingID"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (rt *Router) saveFinding(w http.ResponseWriter, r *http.Request) {
	var finding domain.Finding
	if err := json.NewDecoder(r.Body).Decode(&finding); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}
	finding.ID = r.PathValue("findingID")

	saved, err := rt.reviewUC.SaveFinding(r.Context(), r.PathValue("id"), finding)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (rt *Router) deleteFinding(w http.ResponseWriter, r *http.Request) {
	err := rt.reviewUC.DeleteFinding(r.Context(), r.PathValue("id"), r.PathValue("findingID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) findingNavigation(w http.ResponseWriter, r *http.Request) {
	nav, err := rt.reviewUC.Navigation(r.PathValue("id"), r.PathValue("findingID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nav)
}

func (rt *Router) undoDelete(w http.ResponseWriter, r *http.Request) {
	restored, err := rt.reviewUC.UndoDelete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"restored": restored})
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), errorBody(err.Error()))
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
