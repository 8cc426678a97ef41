package handler

import (
	"net/http"

	"github.com/parley-chat/parley/shared/api"
	"github.com/parley-chat/parley/shared/utils"
)

func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	list, err := h.notifications.List(r.Context(), user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NotificationsResponse{Notifications: list})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	found, err := h.search.Search(r.Context(), user.Id, r.URL.Query().Get("query"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.SearchResponse{Messages: found})
}
