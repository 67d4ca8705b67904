package handlers

import (
	"net/http"

	"github.com/bluecart/commerce/internal/transport/http/response"
)

func Health(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.Data(w, http.StatusOK, map[string]string{"status": "ok", "service": service})
	}
}
