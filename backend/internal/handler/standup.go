package handler

import (
	"net/http"

	"github.com/parley-chat/parley/shared/api"
	"github.com/parley-chat/parley/shared/utils"
)

func (h *Handler) StartStandup(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	channel, ok := pathId(w, r, "id")
	if !ok {
		return
	}
	var body api.StandupStartRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	finish, err := h.standup.Start(r.Context(), channel, user.Id, *body.Length)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.StandupStartResponse{TimeFinish: finish})
}

func (h *Handler) ActiveStandup(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	channel, ok := pathId(w, r, "id")
	if !ok {
		return
	}

	status, err := h.standup.Active(r.Context(), channel, user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) SendStandup(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	channel, ok := pathId(w, r, "id")
	if !ok {
		return
	}
	var body api.StandupSendRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.standup.Send(r.Context(), channel, user.Id, body.Message); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
