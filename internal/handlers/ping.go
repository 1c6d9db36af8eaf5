package handlers

import (
	"net/http"

	"github.com/senyabanana/gig-service/internal/utils"
)

// PingHandler проверяет доступность сервера.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to write response")
	}
}
