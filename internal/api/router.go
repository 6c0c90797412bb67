package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/foodrescue/internal/lifecycle"
	"github.com/erazemk/foodrescue/internal/model"
	"github.com/erazemk/foodrescue/internal/store"
)

// Deps are what the API handlers run on.
type Deps struct {
	DB            *sql.DB
	Posts         *store.PostStore
	Engine        *lifecycle.Engine
	SessionSecret string
	// TopN is the leaderboard length on the dashboard.
	TopN int
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	sessionHandler := &SessionHandler{DB: d.DB, Secret: d.SessionSecret}
	postsHandler := &PostsHandler{Engine: d.Engine}
	dashboardHandler := &DashboardHandler{Posts: d.Posts, TopN: d.TopN}
	exportHandler := &ExportHandler{DB: d.DB, Posts: d.Posts}

	authMW := AuthMiddleware(d.SessionSecret, d.DB)
	requireDonor := RequireRole(model.RoleDonor)
	requireVolunteer := RequireRole(model.RoleVolunteer)

	// Public.
	mux.HandleFunc("POST /api/session", sessionHandler.Start)
	mux.HandleFunc("GET /api/dashboard", dashboardHandler.Get)
	mux.HandleFunc("GET /api/export", exportHandler.Export)

	// Any session.
	mux.Handle("GET /api/session", authMW(http.HandlerFunc(sessionHandler.Get)))
	mux.Handle("POST /api/session/logout", authMW(http.HandlerFunc(sessionHandler.Logout)))
	mux.Handle("GET /api/posts", authMW(http.HandlerFunc(postsHandler.List)))
	mux.Handle("GET /api/posts/{id}", authMW(http.HandlerFunc(postsHandler.Get)))
	mux.Handle("POST /api/posts/{id}/complete", authMW(http.HandlerFunc(postsHandler.Complete)))

	// Donors.
	mux.Handle("POST /api/posts", authMW(requireDonor(http.HandlerFunc(postsHandler.Create))))
	mux.Handle("POST /api/posts/{id}/cancel", authMW(requireDonor(http.HandlerFunc(postsHandler.Cancel))))

	// Volunteers.
	mux.Handle("POST /api/posts/{id}/claim", authMW(requireVolunteer(http.HandlerFunc(postsHandler.Claim))))

	return mux
}
