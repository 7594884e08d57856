package ui

import (
	"net/http"

	"github.com/go-chi/render"

	"datapilot/internal/errors"
)

// errorResponse is the JSON body for every failed API call
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// apiError maps an application error onto an HTTP response. User errors get
// a 4xx with the message passed through; everything else is logged and
// masked behind a 500.
func (a *App) apiError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)

	status := http.StatusInternalServerError
	if errors.IsUserError(err) {
		if code == errors.CodeNotFound {
			status = http.StatusNotFound
		} else {
			status = http.StatusBadRequest
		}
	}

	body := errorResponse{Error: err.Error(), Code: code}
	if status == http.StatusInternalServerError {
		a.logger.Error("[api] %s %s: %v", r.Method, r.URL.Path, err)
		body.Error = "internal error"
	}

	render.Status(r, status)
	render.JSON(w, r, body)
}
