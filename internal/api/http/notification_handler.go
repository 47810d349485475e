package http

import (
	"net/http"

	"partytab-backend/internal/domain"
)

func (s *Server) getNotifications(w http.ResponseWriter, r *http.Request) {
	notes, total, err := s.notifications.GetNotifications(r.Context(), actor(r), queryInt32(r, "page"), queryInt32(r, "page_size"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	respondWithJSON(w, http.StatusOK, notificationsResponse{Notifications: notes, TotalCount: total})
}

func (s *Server) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "notificationID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.notifications.MarkAsRead(r.Context(), actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
