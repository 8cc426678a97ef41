package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parley-chat/parley/backend/internal/service"
	"github.com/parley-chat/parley/shared/domain"
	mw "github.com/parley-chat/parley/shared/middleware"
	"github.com/parley-chat/parley/shared/utils"
)

// HealthChecker reports whether the snapshot store answers.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Renderer turns a message body into HTML for render=html.
type Renderer interface {
	Render(text string) string
}

type Handler struct {
	message       service.MessageService
	standup       service.StandupService
	notifications service.NotificationService
	search        service.SearchService
	renderer      Renderer
	health        HealthChecker
}

func New(
	message service.MessageService,
	standup service.StandupService,
	notifications service.NotificationService,
	search service.SearchService,
	renderer Renderer,
	health HealthChecker,
) *Handler {
	return &Handler{
		message:       message,
		standup:       standup,
		notifications: notifications,
		search:        search,
		renderer:      renderer,
		health:        health,
	}
}

// requireUser returns the authenticated user or writes 401.
func requireUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	return user, true
}

func pathId(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := utils.ParseInt64(name, chi.URLParam(r, name))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return 0, false
	}
	return id, true
}

// containerRef reads {id} as a channel or DM id depending on the route.
func containerRef(w http.ResponseWriter, r *http.Request, kind domain.ContainerKind) (domain.ContainerRef, bool) {
	id, ok := pathId(w, r, "id")
	if !ok {
		return domain.ContainerRef{}, false
	}
	return domain.ContainerRef{Kind: kind, Id: id}, true
}
