package core

import "net/http"

// FaviconHandler handles requests for /favicon.ico by returning a 204 No Content.
// This prevents 404 errors in logs for browsers that automatically request it.
// It avoids serving an actual icon file, keeping the API server focused.
// It sets the HeadersFavicon caching headers itself.
func FaviconHandler(w http.ResponseWriter, r *http.Request) {
	SetHeaders(w, HeadersFavicon)
	w.WriteHeader(http.StatusNoContent)
}
