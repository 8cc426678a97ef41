package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/parley-chat/parley/shared/domain"
	mw "github.com/parley-chat/parley/shared/middleware"
)

type MockMessageService struct {
	MockSend      func(ref domain.ContainerRef, author domain.UserId, text domain.MsgText) (domain.MsgId, error)
	MockSendLater func(ref domain.ContainerRef, author domain.UserId, text domain.MsgText, sentAt domain.UnixTime) (domain.MsgId, error)
	MockEdit      func(id domain.MsgId, editor domain.UserId, text domain.MsgText) error
	MockRemove    func(id domain.MsgId, requester domain.UserId) error
	MockShare     func(ogId domain.MsgId, requester domain.UserId, text domain.MsgText, target domain.ShareTarget) (domain.MsgId, error)
	MockList      func(ref domain.ContainerRef, requester domain.UserId, start int) (*domain.Page, error)
	MockReact     func(id domain.MsgId, user domain.UserId, react domain.ReactId) error
	MockUnreact   func(id domain.MsgId, user domain.UserId, react domain.ReactId) error
	MockPin       func(id domain.MsgId, user domain.UserId) error
	MockUnpin     func(id domain.MsgId, user domain.UserId) error
}

func (m *MockMessageService) Send(ctx context.Context, ref domain.ContainerRef, author domain.UserId, text domain.MsgText) (domain.MsgId, error) {
	if m.MockSend != nil {
		return m.MockSend(ref, author, text)
	}
	return 0, nil
}

func (m *MockMessageService) SendLater(ctx context.Context, ref domain.ContainerRef, author domain.UserId, text domain.MsgText, sentAt domain.UnixTime) (domain.MsgId, error) {
	if m.MockSendLater != nil {
		return m.MockSendLater(ref, author, text, sentAt)
	}
	return 0, nil
}

func (m *MockMessageService) Edit(ctx context.Context, id domain.MsgId, editor domain.UserId, text domain.MsgText) error {
	if m.MockEdit != nil {
		return m.MockEdit(id, editor, text)
	}
	return nil
}

func (m *MockMessageService) Remove(ctx context.Context, id domain.MsgId, requester domain.UserId) error {
	if m.MockRemove != nil {
		return m.MockRemove(id, requester)
	}
	return nil
}

func (m *MockMessageService) Share(ctx context.Context, ogId domain.MsgId, requester domain.UserId, text domain.MsgText, target domain.ShareTarget) (domain.MsgId, error) {
	if m.MockShare != nil {
		return m.MockShare(ogId, requester, text, target)
	}
	return 0, nil
}

func (m *MockMessageService) List(ctx context.Context, ref domain.ContainerRef, requester domain.UserId, start int) (*domain.Page, error) {
	if m.MockList != nil {
		return m.MockList(ref, requester, start)
	}
	return &domain.Page{Messages: []domain.MessageView{}, End: -1}, nil
}

func (m *MockMessageService) React(ctx context.Context, id domain.MsgId, user domain.UserId, react domain.ReactId) error {
	if m.MockReact != nil {
		return m.MockReact(id, user, react)
	}
	return nil
}

func (m *MockMessageService) Unreact(ctx context.Context, id domain.MsgId, user domain.UserId, react domain.ReactId) error {
	if m.MockUnreact != nil {
		return m.MockUnreact(id, user, react)
	}
	return nil
}

func (m *MockMessageService) Pin(ctx context.Context, id domain.MsgId, user domain.UserId) error {
	if m.MockPin != nil {
		return m.MockPin(id, user)
	}
	return nil
}

func (m *MockMessageService) Unpin(ctx context.Context, id domain.MsgId, user domain.UserId) error {
	if m.MockUnpin != nil {
		return m.MockUnpin(id, user)
	}
	return nil
}

type MockStandupService struct {
	MockStart  func(channel domain.ChannelId, user domain.UserId, length int64) (domain.UnixTime, error)
	MockActive func(channel domain.ChannelId, user domain.UserId) (*domain.StandupStatus, error)
	MockSend   func(channel domain.ChannelId, user domain.UserId, text domain.MsgText) error
}

func (m *MockStandupService) Start(ctx context.Context, channel domain.ChannelId, user domain.UserId, length int64) (domain.UnixTime, error) {
	if m.MockStart != nil {
		return m.MockStart(channel, user, length)
	}
	return 0, nil
}

func (m *MockStandupService) Active(ctx context.Context, channel domain.ChannelId, user domain.UserId) (*domain.StandupStatus, error) {
	if m.MockActive != nil {
		return m.MockActive(channel, user)
	}
	return &domain.StandupStatus{}, nil
}

func (m *MockStandupService) Send(ctx context.Context, channel domain.ChannelId, user domain.UserId, text domain.MsgText) error {
	if m.MockSend != nil {
		return m.MockSend(channel, user, text)
	}
	return nil
}

type MockNotificationService struct {
	MockList func(user domain.UserId) ([]domain.Notification, error)
}

func (m *MockNotificationService) List(ctx context.Context, user domain.UserId) ([]domain.Notification, error) {
	if m.MockList != nil {
		return m.MockList(user)
	}
	return []domain.Notification{}, nil
}

type MockSearchService struct {
	MockSearch func(user domain.UserId, query string) ([]domain.MessageView, error)
}

func (m *MockSearchService) Search(ctx context.Context, user domain.UserId, query string) ([]domain.MessageView, error) {
	if m.MockSearch != nil {
		return m.MockSearch(user, query)
	}
	return []domain.MessageView{}, nil
}

type MockHealthChecker struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

type upperRenderer struct{}

func (upperRenderer) Render(text string) string { return "<p>" + strings.ToUpper(text) + "</p>" }

var testUser = &domain.User{Id: 7, Handle: "alice"}

// setupRouter mounts the handler the same way the api router does, minus auth.
func setupRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	for _, c := range []struct {
		prefix string
		kind   domain.ContainerKind
	}{{"/channels", domain.KindChannel}, {"/dms", domain.KindDm}} {
		r.Post(c.prefix+"/{id}/messages", h.SendMessage(c.kind))
		r.Post(c.prefix+"/{id}/messages/later", h.SendMessageLater(c.kind))
		r.Get(c.prefix+"/{id}/messages", h.ListMessages(c.kind))
	}
	r.Put("/messages/{message}", h.EditMessage)
	r.Delete("/messages/{message}", h.RemoveMessage)
	r.Post("/messages/{message}/share", h.ShareMessage)
	r.Post("/messages/{message}/react", h.React())
	r.Post("/messages/{message}/unreact", h.Unreact())
	r.Post("/messages/{message}/pin", h.PinMessage)
	r.Post("/messages/{message}/unpin", h.UnpinMessage)
	r.Post("/channels/{id}/standup/start", h.StartStandup)
	r.Get("/channels/{id}/standup/active", h.ActiveStandup)
	r.Post("/channels/{id}/standup/send", h.SendStandup)
	r.Get("/notifications", h.Notifications)
	r.Get("/search", h.Search)
	return r
}

func newTestHandler() (*Handler, *MockMessageService, *MockStandupService, *MockNotificationService, *MockSearchService) {
	msg := &MockMessageService{}
	standup := &MockStandupService{}
	notif := &MockNotificationService{}
	search := &MockSearchService{}
	return New(msg, standup, notif, search, upperRenderer{}, &MockHealthChecker{}), msg, standup, notif, search
}

// serve runs one request as testUser unless anonymous is set.
func serve(h *Handler, method, url, body string, anonymous bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	if !anonymous {
		req = req.WithContext(context.WithValue(req.Context(), mw.UserClaimsKey, testUser))
	}
	rr := httptest.NewRecorder()
	setupRouter(h).ServeHTTP(rr, req)
	return rr
}
