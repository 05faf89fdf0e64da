package controllers

import (
	"net/http"

	"github.com/chokistore/backend/api/responses"
	"github.com/chokistore/backend/internal/notifications"
	"github.com/chokistore/backend/pkg/logger"
)

// ListNotifications returns the caller's unexpired notifications.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("notifications"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		active, err := svc.ListActive(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"notifications": active})
	}
}
