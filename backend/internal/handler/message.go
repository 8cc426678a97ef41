package handler

import (
	"net/http"
	"strconv"

	"github.com/parley-chat/parley/shared/api"
	"github.com/parley-chat/parley/shared/domain"
	"github.com/parley-chat/parley/shared/utils"
)

func (h *Handler) SendMessage(kind domain.ContainerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}
		ref, ok := containerRef(w, r, kind)
		if !ok {
			return
		}
		var body api.SendMessageRequest
		if err := utils.DecodeValidate(r.Body, &body); err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}

		id, err := h.message.Send(r.Context(), ref, user.Id, body.Message)
		if err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusCreated, api.MessageIdResponse{MessageId: id})
	}
}

func (h *Handler) SendMessageLater(kind domain.ContainerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}
		ref, ok := containerRef(w, r, kind)
		if !ok {
			return
		}
		var body api.SendLaterRequest
		if err := utils.DecodeValidate(r.Body, &body); err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}

		id, err := h.message.SendLater(r.Context(), ref, user.Id, body.Message, body.TimeSent)
		if err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusCreated, api.MessageIdResponse{MessageId: id})
	}
}

// ListMessages serves one page, newest first. start defaults to 0;
// render=html adds a sanitized HTML body to each message.
func (h *Handler) ListMessages(kind domain.ContainerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}
		ref, ok := containerRef(w, r, kind)
		if !ok {
			return
		}
		start := 0
		if s := r.URL.Query().Get("start"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				http.Error(w, "start must be an integer", http.StatusBadRequest)
				return
			}
			start = v
		}

		page, err := h.message.List(r.Context(), ref, user.Id, start)
		if err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}

		render := r.URL.Query().Get("render") == "html"
		resp := api.PageResponse{Messages: make([]api.MessageResponse, 0, len(page.Messages)), Start: page.Start, End: page.End}
		for _, m := range page.Messages {
			item := api.MessageResponse{MessageView: m}
			if render {
				item.Html = h.renderer.Render(m.Text)
			}
			resp.Messages = append(resp.Messages, item)
		}
		utils.WriteJSON(w, http.StatusOK, resp)
	}
}

func (h *Handler) EditMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathId(w, r, "message")
	if !ok {
		return
	}
	var body api.EditMessageRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.message.Edit(r.Context(), id, user.Id, body.Message); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) RemoveMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathId(w, r, "message")
	if !ok {
		return
	}

	if err := h.message.Remove(r.Context(), id, user.Id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) ShareMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathId(w, r, "message")
	if !ok {
		return
	}
	var body api.ShareMessageRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	target := domain.ShareTarget{ChannelId: body.ChannelId, DmId: body.DmId}
	sharedId, err := h.message.Share(r.Context(), id, user.Id, body.Message, target)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.MessageIdResponse{MessageId: sharedId})
}

type reactFunc func(h *Handler, r *http.Request, id domain.MsgId, user domain.UserId, react domain.ReactId) error

func (h *Handler) reactHandler(apply reactFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, ok := pathId(w, r, "message")
		if !ok {
			return
		}
		var body api.ReactRequest
		if err := utils.DecodeValidate(r.Body, &body); err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}

		if err := apply(h, r, id, user.Id, body.ReactId); err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func (h *Handler) React() http.HandlerFunc {
	return h.reactHandler(func(h *Handler, r *http.Request, id domain.MsgId, user domain.UserId, react domain.ReactId) error {
		return h.message.React(r.Context(), id, user, react)
	})
}

func (h *Handler) Unreact() http.HandlerFunc {
	return h.reactHandler(func(h *Handler, r *http.Request, id domain.MsgId, user domain.UserId, react domain.ReactId) error {
		return h.message.Unreact(r.Context(), id, user, react)
	})
}

func (h *Handler) PinMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathId(w, r, "message")
	if !ok {
		return
	}

	if err := h.message.Pin(r.Context(), id, user.Id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) UnpinMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathId(w, r, "message")
	if !ok {
		return
	}

	if err := h.message.Unpin(r.Context(), id, user.Id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
