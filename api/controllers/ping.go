package controllers

import (
	"net/http"

	"github.com/floorline/backoffice/api/middleware"
	"github.com/floorline/backoffice/api/responses"
)

func Ping() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"status": "ok"}
		if staff := middleware.StaffIDFromContext(r.Context()); staff != "" {
			payload["staff_id"] = staff
		}
		responses.WriteSuccess(w, payload)
	}
}
