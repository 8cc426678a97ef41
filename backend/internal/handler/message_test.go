package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-chat/parley/shared/api"
	"github.com/parley-chat/parley/shared/domain"
	internal_errors "github.com/parley-chat/parley/shared/errors"
)

func TestSendMessageHandler(t *testing.T) {
	t.Run("channel route passes channel ref", func(t *testing.T) {
		// Arrange
		h, msg, _, _, _ := newTestHandler()
		msg.MockSend = func(ref domain.ContainerRef, author domain.UserId, text domain.MsgText) (domain.MsgId, error) {
			assert.Equal(t, domain.ChannelRef(10), ref)
			assert.Equal(t, testUser.Id, author)
			assert.Equal(t, "hi @bob", text)
			return 42, nil
		}

		// Act
		rr := serve(h, http.MethodPost, "/channels/10/messages", `{"message":"hi @bob"}`, false)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, `{"messageId":42}`, rr.Body.String())
	})

	t.Run("dm route passes dm ref", func(t *testing.T) {
		h, msg, _, _, _ := newTestHandler()
		var got domain.ContainerRef
		msg.MockSend = func(ref domain.ContainerRef, author domain.UserId, text domain.MsgText) (domain.MsgId, error) {
			got = ref
			return 1, nil
		}

		rr := serve(h, http.MethodPost, "/dms/20/messages", `{"message":"x"}`, false)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, domain.DmRef(20), got)
	})

	t.Run("service errors keep their status", func(t *testing.T) {
		tests := []struct {
			err  error
			code int
		}{
			{internal_errors.InvalidArgument("message is empty"), http.StatusBadRequest},
			{internal_errors.Forbidden("not a member"), http.StatusForbidden},
			{internal_errors.NotFound("channel 10 not found"), http.StatusNotFound},
			{errors.New("disk on fire"), http.StatusInternalServerError},
		}
		for _, tt := range tests {
			h, msg, _, _, _ := newTestHandler()
			msg.MockSend = func(domain.ContainerRef, domain.UserId, domain.MsgText) (domain.MsgId, error) { return 0, tt.err }

			rr := serve(h, http.MethodPost, "/channels/10/messages", `{"message":"x"}`, false)

			assert.Equal(t, tt.code, rr.Code)
			assert.NotContains(t, rr.Body.String(), "disk on fire")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		h, _, _, _, _ := newTestHandler()
		rr := serve(h, http.MethodPost, "/channels/10/messages", `{invalid json::}`, false)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Body is invalid json")
	})

	t.Run("bad container id", func(t *testing.T) {
		h, _, _, _, _ := newTestHandler()
		rr := serve(h, http.MethodPost, "/channels/abc/messages", `{"message":"x"}`, false)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("no user in context", func(t *testing.T) {
		h, _, _, _, _ := newTestHandler()
		rr := serve(h, http.MethodPost, "/channels/10/messages", `{"message":"x"}`, true)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Unauthorized")
	})
}

func TestSendMessageLaterHandler(t *testing.T) {
	t.Run("passes time sent", func(t *testing.T) {
		h, msg, _, _, _ := newTestHandler()
		msg.MockSendLater = func(ref domain.ContainerRef, author domain.UserId, text domain.MsgText, sentAt domain.UnixTime) (domain.MsgId, error) {
			assert.Equal(t, domain.DmRef(3), ref)
			assert.Equal(t, domain.UnixTime(1700000100), sentAt)
			return 5, nil
		}

		rr := serve(h, http.MethodPost, "/dms/3/messages/later", `{"message":"x","timeSent":1700000100}`, false)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, `{"messageId":5}`, rr.Body.String())
	})

	t.Run("time sent is required", func(t *testing.T) {
		h, _, _, _, _ := newTestHandler()
		rr := serve(h, http.MethodPost, "/dms/3/messages/later", `{"message":"x"}`, false)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Required fields missing")
	})
}

func TestListMessagesHandler(t *testing.T) {
	page := &domain.Page{
		Messages: []domain.MessageView{{Id: 2, AuthorId: 1, Text: "hey", Reacts: []domain.React{}, ChannelId: 10, DmId: domain.NoContainer}},
		Start:    0,
		End:      -1,
	}

	t.Run("defaults start to zero", func(t *testing.T) {
		h, msg, _, _, _ := newTestHandler()
		msg.MockList = func(ref domain.ContainerRef, requester domain.UserId, start int) (*domain.Page, error) {
			assert.Equal(t, domain.ChannelRef(10), ref)
			assert.Equal(t, 0, start)
			return page, nil
		}

		rr := serve(h, http.MethodGet, "/channels/10/messages", "", false)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp api.PageResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, -1, resp.End)
		require.Len(t, resp.Messages, 1)
		assert.Equal(t, "hey", resp.Messages[0].Text)
		assert.Empty(t, resp.Messages[0].Html)
	})

	t.Run("render html", func(t *testing.T) {
		h, msg, _, _, _ := newTestHandler()
		msg.MockList = func(ref domain.ContainerRef, requester domain.UserId, start int) (*domain.Page, error) {
			assert.Equal(t, 50, start)
			return page, nil
		}

		rr := serve(h, http.MethodGet, "/dms/1/messages?start=50&render=html", "", false)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp api.PageResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "<p>HEY</p>", resp.Messages[0].Html)
	})

	t.Run("start must be an integer", func(t *testing.T) {
		h, _, _, _, _ := newTestHandler()
		rr := serve(h, http.MethodGet, "/channels/10/messages?start=x", "", false)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("empty page is an empty array", func(t *testing.T) {
		h, _, _, _, _ := newTestHandler()
		rr := serve(h, http.MethodGet, "/channels/10/messages", "", false)
		assert.JSONEq(t, `{"messages":[],"start":0,"end":-1}`, rr.Body.String())
	})
}

func TestEditRemoveHandlers(t *testing.T) {
	t.Run("edit", func(t *testing.T) {
		h, msg, _, _, _ := newTestHandler()
		msg.MockEdit = func(id domain.MsgId, editor domain.UserId, text domain.MsgText) error {
			assert.Equal(t, domain.MsgId(9), id)
			assert.Equal(t, "", text)
			return nil
		}

		rr := serve(h, http.MethodPut, "/messages/9", `{"message":""}`, false)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("remove forbidden", func(t *testing.T) {
		h, msg, _, _, _ := newTestHandler()
		msg.MockRemove = func(id domain.MsgId, requester domain.UserId) error {
			return internal_errors.Forbidden("not allowed to modify message %d", id)
		}

		rr := serve(h, http.MethodDelete, "/messages/9", "", false)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "not allowed to modify message 9")
	})
}

func TestShareHandler(t *testing.T) {
	h, msg, _, _, _ := newTestHandler()
	msg.MockShare = func(ogId domain.MsgId, requester domain.UserId, text domain.MsgText, target domain.ShareTarget) (domain.MsgId, error) {
		assert.Equal(t, domain.MsgId(4), ogId)
		assert.Equal(t, "look", text)
		require.NotNil(t, target.DmId)
		assert.Equal(t, domain.DmId(20), *target.DmId)
		require.NotNil(t, target.ChannelId)
		assert.Equal(t, domain.NoContainer, *target.ChannelId)
		return 11, nil
	}

	rr := serve(h, http.MethodPost, "/messages/4/share", `{"message":"look","channelId":-1,"dmId":20}`, false)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"messageId":11}`, rr.Body.String())
}

func TestReactPinHandlers(t *testing.T) {
	t.Run("react and unreact", func(t *testing.T) {
		h, msg, _, _, _ := newTestHandler()
		var calls []string
		msg.MockReact = func(id domain.MsgId, user domain.UserId, react domain.ReactId) error {
			assert.Equal(t, domain.ReactThumbsUp, react)
			calls = append(calls, "react")
			return nil
		}
		msg.MockUnreact = func(id domain.MsgId, user domain.UserId, react domain.ReactId) error {
			calls = append(calls, "unreact")
			return internal_errors.InvalidArgument("not reacted")
		}

		assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/messages/1/react", `{"reactId":1}`, false).Code)
		assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodPost, "/messages/1/unreact", `{"reactId":1}`, false).Code)
		assert.Equal(t, []string{"react", "unreact"}, calls)
	})

	t.Run("react id is required", func(t *testing.T) {
		h, _, _, _, _ := newTestHandler()
		rr := serve(h, http.MethodPost, "/messages/1/react", `{}`, false)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("pin and unpin", func(t *testing.T) {
		h, msg, _, _, _ := newTestHandler()
		msg.MockPin = func(id domain.MsgId, user domain.UserId) error { return nil }
		msg.MockUnpin = func(id domain.MsgId, user domain.UserId) error {
			return internal_errors.Forbidden("not allowed")
		}

		assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/messages/1/pin", "", false).Code)
		assert.Equal(t, http.StatusForbidden, serve(h, http.MethodPost, "/messages/1/unpin", "", false).Code)
	})
}
