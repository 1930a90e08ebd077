package handlers

import (
	"net/http"

	"github.com/goccy/go-json"

	"flowforge-backend/domain/core/valueobjects"
	"flowforge-backend/pkg/common"
	pkgerrors "flowforge-backend/pkg/errors"
)

// actorFrom resolves the acting operator for audit stamping. The auth
// middleware guarantees a user is present.
func actorFrom(r *http.Request) valueobjects.UserRef {
	user, _ := common.GetUser(r.Context())
	return valueobjects.UserRef{ID: user.ID, Name: user.Name, Email: user.Email}
}

// decodeBody decodes a JSON request body, responding with a validation error
// on failure
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError("invalid request body").WithCause(err))
		return false
	}
	return true
}
