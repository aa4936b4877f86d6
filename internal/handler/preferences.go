package handler

import (
	"encoding/json"
	"net/http"

	"trustmap/internal/preferences"

	"github.com/gorilla/mux"
)

const maxPreferencesBody = 64 << 10

type PreferencesHandler struct {
	prefs *preferences.BestEffort
}

func NewPreferencesHandler(prefs *preferences.BestEffort) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs}
}

// Get always answers 200; storage trouble shows up as defaults.
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.prefs.Load(r.Context(), mux.Vars(r)["user"]))
}

// Put stores the body for {user}. A malformed body is the only failure the
// caller sees; a storage failure is reported as saved=false.
func (h *PreferencesHandler) Put(w http.ResponseWriter, r *http.Request) {
	prefs := preferences.DefaultPrefs()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPreferencesBody)).Decode(&prefs); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	prefs = prefs.Normalized()
	saved := h.prefs.Save(r.Context(), mux.Vars(r)["user"], prefs)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"saved":       saved,
		"preferences": prefs,
	})
}
