package handlers

import (
	"context"
	"net/http"

	"github.com/cx-tal-miterani/airport-booking/internal/database"
)

// Store is the persistence of one catalog resource. T is the write model,
// V the list view and D the detail view.
type Store[T, V, D any] interface {
	List(ctx context.Context, q database.ListQuery) ([]V, error)
	Detail(ctx context.Context, id int64) (*D, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, id int64, item *T) error
	Delete(ctx context.Context, id int64) error
}

// Resource serves list, retrieve, create, update, partial update and
// delete for a catalog store.
type Resource[T, V, D any] struct {
	h        *Handler
	store    Store[T, V, D]
	filtered bool
}

// NewResource wraps store. When filtered is set the list accepts route
// filters in its query string.
func NewResource[T, V, D any](h *Handler, store Store[T, V, D], filtered bool) *Resource[T, V, D] {
	return &Resource[T, V, D]{h: h, store: store, filtered: filtered}
}

func (res *Resource[T, V, D]) List(w http.ResponseWriter, r *http.Request) {
	var q database.ListQuery
	if res.filtered {
		f, err := database.ParseRouteFilter(r.URL.Query())
		if err != nil {
			res.h.writeError(w, r, err)
			return
		}
		q.Route = f
	}

	items, err := res.store.List(r.Context(), q)
	if err != nil {
		res.h.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []V{}
	}
	respondJSON(w, http.StatusOK, items)
}

func (res *Resource[T, V, D]) Retrieve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		res.h.writeError(w, r, err)
		return
	}

	item, err := res.store.Detail(r.Context(), id)
	if err != nil {
		res.h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (res *Resource[T, V, D]) Create(w http.ResponseWriter, r *http.Request) {
	item := new(T)
	if err := res.h.decodeValid(r, item); err != nil {
		res.h.writeError(w, r, err)
		return
	}

	if err := res.store.Create(r.Context(), item); err != nil {
		res.h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// Update replaces every writable field of the item.
func (res *Resource[T, V, D]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		res.h.writeError(w, r, err)
		return
	}

	item := new(T)
	if err := res.h.decodeValid(r, item); err != nil {
		res.h.writeError(w, r, err)
		return
	}
	res.save(w, r, id, item)
}

// PartialUpdate applies the body over the stored item, so absent fields
// keep their values.
func (res *Resource[T, V, D]) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		res.h.writeError(w, r, err)
		return
	}

	item, err := res.store.Get(r.Context(), id)
	if err != nil {
		res.h.writeError(w, r, err)
		return
	}
	if err := res.h.decodeValid(r, item); err != nil {
		res.h.writeError(w, r, err)
		return
	}
	res.save(w, r, id, item)
}

func (res *Resource[T, V, D]) save(w http.ResponseWriter, r *http.Request, id int64, item *T) {
	if err := res.store.Update(r.Context(), id, item); err != nil {
		res.h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (res *Resource[T, V, D]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		res.h.writeError(w, r, err)
		return
	}

	if err := res.store.Delete(r.Context(), id); err != nil {
		res.h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
