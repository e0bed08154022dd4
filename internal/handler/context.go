package handler

import (
	"net/http"

	"knowledgebase/internal/httputil"
)

// requestScope is the caller and workspace of a workspace-scoped request
type requestScope struct {
	userID      string
	workspaceID string
}

// scope reads the authenticated user and the {workspaceID} path value.
// It writes the error response itself and returns false when either is missing.
func scope(w http.ResponseWriter, r *http.Request) (requestScope, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return requestScope{}, false
	}
	workspaceID := r.PathValue("workspaceID")
	if workspaceID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "workspace ID is required")
		return requestScope{}, false
	}
	return requestScope{userID: userID, workspaceID: workspaceID}, true
}

// pathID returns the named path value or answers 400
func pathID(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	id := r.PathValue(name)
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required")
		return "", false
	}
	return id, true
}
