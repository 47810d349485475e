package http

import (
	"context"
	"net/http"

	"partytab-backend/internal/domain"
)

func (s *Server) getSettlement(w http.ResponseWriter, r *http.Request) {
	tabID, err := pathID(r, "tabID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	settlement, err := s.settlements.GetSettlement(r.Context(), actor(r), tabID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

func (s *Server) listAcknowledgements(w http.ResponseWriter, r *http.Request) {
	tabID, err := pathID(r, "tabID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	acks, actions, err := s.settlements.ListAcknowledgements(r.Context(), actor(r), tabID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if acks == nil {
		acks = []domain.Acknowledgement{}
	}
	if actions == nil {
		actions = []domain.AcknowledgementAction{}
	}
	respondWithJSON(w, http.StatusOK, acknowledgementsResponse{Acknowledgements: acks, Actions: actions})
}

func (s *Server) markPaid(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.settlements.MarkPaid)
}

func (s *Server) confirmReceived(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.settlements.ConfirmReceived)
}

type transitionFunc func(ctx context.Context, userID, tabID, fromID, toID int32) (*domain.SettlementTransfer, error)

func (s *Server) transition(w http.ResponseWriter, r *http.Request, apply transitionFunc) {
	tabID, err := pathID(r, "tabID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transferRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	transfer, err := apply(r.Context(), actor(r), tabID, req.FromParticipantID, req.ToParticipantID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toTransferResponse(*transfer))
}
