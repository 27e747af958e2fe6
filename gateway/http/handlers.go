package http

import (
	"context"
	"net/http"

	"github.com/c360/coworking/booking"
	"github.com/c360/coworking/errors"
)

// userRequest is the inbound user body. booking.User never serializes its
// password, so writes go through this type.
type userRequest struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

func (u userRequest) user() booking.User {
	return booking.User{
		ID:         u.ID,
		FirstName:  u.FirstName,
		MiddleName: u.MiddleName,
		LastName:   u.LastName,
		Email:      u.Email,
		Password:   u.Password,
	}
}

// listed writes items, or 404 with emptyMessage when there are none
func listed[T any](g *Gateway, w http.ResponseWriter, r *http.Request, items []T, err error, emptyMessage string) {
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	if len(items) == 0 {
		g.writeError(w, r, errors.NotFoundf("Gateway", "list", "%s", emptyMessage))
		return
	}
	g.writeJSON(w, http.StatusOK, items)
}

// respond writes v with status, or the error reply
func respond[T any](g *Gateway, w http.ResponseWriter, r *http.Request, status int, v T, err error) {
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	g.writeJSON(w, status, v)
}

// withID runs fn with the parsed {id} path segment
func (g *Gateway) withID(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64)) {
	id, err := pathID(r)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	fn(r.Context(), id)
}

func (g *Gateway) deleted(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Spaces

func (g *Gateway) createSpace(w http.ResponseWriter, r *http.Request) {
	var space booking.Space
	if !g.decode(w, r, spaceSchema, &space) {
		return
	}
	created, err := g.spaces.Create(r.Context(), space)
	respond(g, w, r, http.StatusCreated, created, err)
}

func (g *Gateway) createSpaces(w http.ResponseWriter, r *http.Request) {
	var spaces []booking.Space
	if !g.decode(w, r, spacesSchema, &spaces) {
		return
	}
	created, err := g.spaces.CreateBatch(r.Context(), spaces)
	respond(g, w, r, http.StatusCreated, created, err)
}

func (g *Gateway) listSpaces(w http.ResponseWriter, r *http.Request) {
	spaces, err := g.spaces.List(r.Context())
	listed(g, w, r, spaces, err, "No coworking spaces found")
}

func (g *Gateway) getSpace(w http.ResponseWriter, r *http.Request) {
	g.withID(w, r, func(ctx context.Context, id int64) {
		space, err := g.spaces.Get(ctx, id)
		respond(g, w, r, http.StatusOK, space, err)
	})
}

func (g *Gateway) updateSpace(w http.ResponseWriter, r *http.Request) {
	g.withID(w, r, func(ctx context.Context, id int64) {
		var space booking.Space
		if !g.decode(w, r, spaceSchema, &space) {
			return
		}
		updated, err := g.spaces.Update(ctx, id, space)
		respond(g, w, r, http.StatusOK, updated, err)
	})
}

func (g *Gateway) deleteSpace(w http.ResponseWriter, r *http.Request) {
	g.withID(w, r, func(ctx context.Context, id int64) {
		g.deleted(w, r, g.spaces.Delete(ctx, id))
	})
}

// Users

func (g *Gateway) createUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !g.decode(w, r, userSchema, &req) {
		return
	}
	created, err := g.users.Create(r.Context(), req.user())
	respond(g, w, r, http.StatusCreated, created, err)
}

func (g *Gateway) createUsers(w http.ResponseWriter, r *http.Request) {
	var reqs []userRequest
	if !g.decode(w, r, usersSchema, &reqs) {
		return
	}
	users := make([]booking.User, len(reqs))
	for i, req := range reqs {
		users[i] = req.user()
	}
	created, err := g.users.CreateBatch(r.Context(), users)
	respond(g, w, r, http.StatusCreated, created, err)
}

func (g *Gateway) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := g.users.List(r.Context())
	listed(g, w, r, users, err, "No users found")
}

func (g *Gateway) getUser(w http.ResponseWriter, r *http.Request) {
	g.withID(w, r, func(ctx context.Context, id int64) {
		user, err := g.users.Get(ctx, id)
		respond(g, w, r, http.StatusOK, user, err)
	})
}

func (g *Gateway) updateUser(w http.ResponseWriter, r *http.Request) {
	g.withID(w, r, func(ctx context.Context, id int64) {
		var req userRequest
		if !g.decode(w, r, userSchema, &req) {
			return
		}
		updated, err := g.users.Update(ctx, id, req.user())
		respond(g, w, r, http.StatusOK, updated, err)
	})
}

func (g *Gateway) deleteUser(w http.ResponseWriter, r *http.Request) {
	g.withID(w, r, func(ctx context.Context, id int64) {
		g.deleted(w, r, g.users.Delete(ctx, id))
	})
}

func (g *Gateway) usersWithReservations(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		g.writeError(w, r, errors.Invalidf("Gateway", "usersWithReservations",
			"Query parameter 'date' is required"))
		return
	}
	date, err := booking.ParseDate(raw)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	users, err := g.users.WithReservationsOn(r.Context(), date)
	listed(g, w, r, users, err, "No users found with reservations on "+date.String())
}

func (g *Gateway) usersBySpace(w http.ResponseWriter, r *http.Request) {
	g.withID(w, r, func(ctx context.Context, id int64) {
		users, err := g.users.BySpace(ctx, id)
		listed(g, w, r, users, err, "No users found for this coworking space")
	})
}

// Reservations

func (g *Gateway) createReservation(w http.ResponseWriter, r *http.Request) {
	var reservation booking.Reservation
	if !g.decode(w, r, reservationSchema, &reservation) {
		return
	}
	created, err := g.reservations.Create(r.Context(), reservation)
	respond(g, w, r, http.StatusCreated, created, err)
}

func (g *Gateway) createReservations(w http.ResponseWriter, r *http.Request) {
	var reservations []booking.Reservation
	if !g.decode(w, r, reservationsSchema, &reservations) {
		return
	}
	created, err := g.reservations.CreateBatch(r.Context(), reservations)
	respond(g, w, r, http.StatusCreated, created, err)
}

func (g *Gateway) listReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := g.reservations.List(r.Context())
	listed(g, w, r, reservations, err, "No reservations found")
}

func (g *Gateway) getReservation(w http.ResponseWriter, r *http.Request) {
	g.withID(w, r, func(ctx context.Context, id int64) {
		reservation, err := g.reservations.Get(ctx, id)
		respond(g, w, r, http.StatusOK, reservation, err)
	})
}

func (g *Gateway) updateReservation(w http.ResponseWriter, r *http.Request) {
	g.withID(w, r, func(ctx context.Context, id int64) {
		var reservation booking.Reservation
		if !g.decode(w, r, reservationSchema, &reservation) {
			return
		}
		updated, err := g.reservations.Update(ctx, id, reservation)
		respond(g, w, r, http.StatusOK, updated, err)
	})
}

func (g *Gateway) deleteReservation(w http.ResponseWriter, r *http.Request) {
	g.withID(w, r, func(ctx context.Context, id int64) {
		g.deleted(w, r, g.reservations.Delete(ctx, id))
	})
}

// Diagnostics

func (g *Gateway) cacheStats(w http.ResponseWriter, r *http.Request) {
	if g.caches == nil {
		g.writeError(w, r, errors.NotFoundf("Gateway", "cacheStats", "Cache statistics are not available"))
		return
	}
	g.writeJSON(w, http.StatusOK, g.caches.Stats())
}

// VisitCountResponse answers /visits/count
type VisitCountResponse struct {
	URL   string `json:"url"`
	Count int64  `json:"count"`
}

func (g *Gateway) visitCount(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		g.writeError(w, r, errors.Invalidf("Gateway", "visitCount", "Query parameter 'url' is required"))
		return
	}
	g.writeJSON(w, http.StatusOK, VisitCountResponse{URL: url, Count: g.visits.Count(url)})
}

func (g *Gateway) allVisits(w http.ResponseWriter, _ *http.Request) {
	g.writeJSON(w, http.StatusOK, g.visits.All())
}
