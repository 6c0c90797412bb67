package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/foodrescue/internal/auth"
	"github.com/erazemk/foodrescue/internal/lifecycle"
	"github.com/erazemk/foodrescue/internal/model"
)

// PostsHandler handles donation post endpoints.
type PostsHandler struct {
	Engine *lifecycle.Engine
}

type claimResponse struct {
	ID            string `json:"id"`
	VolunteerCode string `json:"volunteer_code"`
}

type completeRequest struct {
	Code string `json:"code"`
}

// List handles GET /api/posts. Query parameters: status, veg_type, min_qty,
// only_unexpired and mine. With mine=true a donor sees their own posts and a
// volunteer their own claims. Results are newest first.
func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	q := r.URL.Query()
	f := lifecycle.ListFilter{NewestFirst: true}

	if v := q.Get("status"); v != "" {
		st := model.ParseStatus(v)
		if !st.Valid() {
			jsonError(w, http.StatusBadRequest, "invalid status")
			return
		}
		f.Status = st
	}

	if v := q.Get("veg_type"); v != "" {
		vt, err := model.ParseVegType(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid veg_type")
			return
		}
		f.VegType = vt
	}

	if v := q.Get("min_qty"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, http.StatusBadRequest, "invalid min_qty")
			return
		}
		f.MinQty = n
	}

	if v := q.Get("only_unexpired"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid only_unexpired")
			return
		}
		f.OnlyUnexpired = b
	}

	if v := q.Get("mine"); v != "" {
		mine, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid mine")
			return
		}
		if mine && claims.Role == model.RoleDonor {
			f.Donor = claims.Identity()
		} else if mine {
			f.Claimer = claims.Identity()
		}
	}

	posts, err := h.Engine.List(r.Context(), f)
	if err != nil {
		engineError(w, r, "list", err)
		return
	}

	viewer := claims.Identity()
	for i := range posts {
		posts[i] = posts[i].RedactFor(viewer)
	}
	jsonResponse(w, http.StatusOK, posts)
}

// Get handles GET /api/posts/{id}.
func (h *PostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Engine.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		engineError(w, r, "get", err)
		return
	}
	jsonResponse(w, http.StatusOK, p.RedactFor(GetClaims(r.Context()).Identity()))
}

// Create handles POST /api/posts.
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in lifecycle.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	p, err := h.Engine.Create(r.Context(), claims.Identity(), in)
	if err != nil {
		engineError(w, r, "create", err)
		return
	}

	slog.Info("post created", "post", p.ID, "donor", p.DonorName,
		"meals", p.QtyMeals, "ready_until", p.ReadyUntilHHMM)
	jsonResponse(w, http.StatusCreated, p.RedactFor(claims.Identity()))
}

// Claim handles POST /api/posts/{id}/claim.
func (h *PostsHandler) Claim(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id := r.PathValue("id")

	code, err := h.Engine.Claim(r.Context(), id, claims.Identity())
	if err != nil {
		engineError(w, r, "claim", err)
		return
	}

	slog.Info("post claimed", "post", id, "volunteer", claims.Name)
	jsonResponse(w, http.StatusOK, claimResponse{ID: id, VolunteerCode: code})
}

// Complete handles POST /api/posts/{id}/complete. The acting side is the
// session's role; the body carries the other side's code.
func (h *PostsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	existing, err := h.Engine.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		engineError(w, r, "complete", err)
		return
	}
	// Posts in any other state fall through to the engine's conflict.
	if existing.Status == model.StatusClaimed && !onHandover(*existing, claims) {
		jsonError(w, http.StatusForbidden, "only the donor or volunteer on this handover can complete it")
		return
	}

	p, err := h.Engine.Complete(r.Context(), existing.ID, req.Code, model.Actor(claims.Role))
	if err != nil {
		engineError(w, r, "complete", err)
		return
	}

	slog.Info("post completed", "post", p.ID, "by", claims.Role,
		"donor", p.DonorName, "volunteer", p.ClaimerName, "meals", p.QtyMeals)
	jsonResponse(w, http.StatusOK, p.RedactFor(claims.Identity()))
}

// onHandover reports whether the session belongs to the party of p that
// plays the session's role.
func onHandover(p model.Post, claims *auth.Claims) bool {
	if claims.Role == model.RoleDonor {
		return p.Donor().Same(claims.Identity())
	}
	return p.Claimer().Same(claims.Identity())
}

// Cancel handles POST /api/posts/{id}/cancel. Only the donor who posted it
// may cancel a post.
func (h *PostsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	existing, err := h.Engine.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		engineError(w, r, "cancel", err)
		return
	}
	if !existing.Donor().Same(claims.Identity()) {
		jsonError(w, http.StatusForbidden, "only the donor who posted it can cancel this post")
		return
	}

	p, err := h.Engine.Cancel(r.Context(), existing.ID)
	if err != nil {
		engineError(w, r, "cancel", err)
		return
	}

	slog.Info("post cancelled", "post", p.ID, "donor", p.DonorName)
	jsonResponse(w, http.StatusOK, p.RedactFor(claims.Identity()))
}
