package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/chokistore/backend/api/middleware"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
)

func requireUserID(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return userID, nil
}

func unavailable(name string) error {
	return pkgerrors.Newf(pkgerrors.CodeInternal, "%s service unavailable", name)
}
