// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/faqbot-project/faqbot/lib/netutil"
	"github.com/faqbot-project/faqbot/lib/rules"
	"github.com/faqbot-project/faqbot/lib/service"
)

// apiHandler serves the rules HTTP API. Routing relies on the method
// patterns of http.ServeMux, so wrong-method requests get 405 without
// explicit handling here.
type apiHandler struct {
	store  *rules.Store
	logger *slog.Logger

	// apiToken guards the mutating endpoint when non-nil. A nil token
	// leaves POST /qa open; the deployment must then keep the listen
	// address on a trusted network.
	apiToken []byte
}

func newAPIHandler(store *rules.Store, apiToken []byte, logger *slog.Logger) http.Handler {
	handler := &apiHandler{
		store:    store,
		logger:   logger,
		apiToken: apiToken,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /qa", handler.listRules)
	mux.HandleFunc("POST /qa", handler.saveRule)
	mux.HandleFunc("GET /suggest", handler.suggest)
	return mux
}

// upsertRequest is the body of POST /qa. The field names mirror the
// rules file vocabulary: the stored response is called an answer at
// the API surface.
type upsertRequest struct {
	Keyword string `json:"keyword"`
	Answer  string `json:"answer"`
}

// listRules returns the full current mapping as a JSON object. The
// snapshot re-reads the rules file, so rules added by the chat bot
// moments ago are included.
func (h *apiHandler) listRules(writer http.ResponseWriter, _ *http.Request) {
	writeJSON(writer, http.StatusOK, h.store.Snapshot())
}

// saveRule validates and persists one keyword rule, overwriting any
// prior response for the same canonical keyword.
func (h *apiHandler) saveRule(writer http.ResponseWriter, request *http.Request) {
	if h.apiToken != nil {
		if err := service.VerifyBearerToken(h.apiToken, request.Header.Get("Authorization")); err != nil {
			h.logger.Warn("rejected rule save", "error", err, "remote", request.RemoteAddr)
			writeError(writer, http.StatusUnauthorized, "invalid or missing bearer token")
			return
		}
	}

	var body upsertRequest
	if err := netutil.DecodeBody(request.Body, &body); err != nil {
		writeError(writer, http.StatusUnprocessableEntity, "request body must be a JSON object with keyword and answer")
		return
	}

	if err := h.store.Upsert(body.Keyword, body.Answer); err != nil {
		if rules.IsValidationError(err) {
			writeError(writer, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("rule save failed", "error", err)
		writeError(writer, http.StatusInternalServerError, "failed to save rule")
		return
	}

	writeJSON(writer, http.StatusOK, map[string]string{"message": "QA rule saved."})
}

// suggestResponse is the body of GET /suggest: a single uppercase
// rendering of the query, with a fresh ID so clients can track which
// suggestion the user picked.
type suggestResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// suggest uppercases the q query parameter.
func (h *apiHandler) suggest(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		writeError(writer, http.StatusUnprocessableEntity, "query parameter q is required")
		return
	}
	writeJSON(writer, http.StatusOK, suggestResponse{
		ID:    uuid.NewString(),
		Title: "Caps",
		Text:  strings.ToUpper(query),
	})
}

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(payload)
}

func writeError(writer http.ResponseWriter, status int, detail string) {
	writeJSON(writer, status, map[string]string{"detail": detail})
}
