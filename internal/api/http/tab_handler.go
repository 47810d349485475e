package http

import (
	"net/http"
)

func (s *Server) createTab(w http.ResponseWriter, r *http.Request) {
	var req createTabRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	tab, participants, err := s.tabs.CreateTab(r.Context(), actor(r), req.Name, req.OwnerDisplayName, req.Participants)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, toTabResponse(tab, participants))
}

func (s *Server) listTabs(w http.ResponseWriter, r *http.Request) {
	tabs, err := s.tabs.ListTabs(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := make([]tabResponse, len(tabs))
	for i := range tabs {
		res[i] = toTabResponse(&tabs[i], nil)
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"tabs": res})
}

func (s *Server) getTab(w http.ResponseWriter, r *http.Request) {
	tabID, err := pathID(r, "tabID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	tab, participants, err := s.tabs.GetTab(r.Context(), actor(r), tabID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toTabResponse(tab, participants))
}

func (s *Server) closeTab(w http.ResponseWriter, r *http.Request) {
	tabID, err := pathID(r, "tabID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	tab, err := s.tabs.CloseTab(r.Context(), actor(r), tabID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toTabResponse(tab, nil))
}

func (s *Server) addParticipant(w http.ResponseWriter, r *http.Request) {
	tabID, err := pathID(r, "tabID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req addParticipantRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	p, err := s.tabs.AddParticipant(r.Context(), actor(r), tabID, req.DisplayName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, toParticipantResponse(*p))
}

func (s *Server) claimParticipant(w http.ResponseWriter, r *http.Request) {
	tabID, err := pathID(r, "tabID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	participantID, err := pathID(r, "participantID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := s.tabs.ClaimParticipant(r.Context(), actor(r), tabID, participantID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toParticipantResponse(*p))
}
