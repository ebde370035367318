package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cx-tal-miterani/airport-booking/internal/database"
)

type mockRouteStore struct {
	mock.Mock
}

func (m *mockRouteStore) List(ctx context.Context, q database.ListQuery) ([]database.RouteView, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.RouteView), args.Error(1)
}

func (m *mockRouteStore) Detail(ctx context.Context, id int64) (*database.RouteView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.RouteView), args.Error(1)
}

func (m *mockRouteStore) Get(ctx context.Context, id int64) (*database.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Route), args.Error(1)
}

func (m *mockRouteStore) Create(ctx context.Context, r *database.Route) error {
	args := m.Called(ctx, r)
	if args.Error(0) == nil {
		r.ID = 9
		r.Description = "From A to B"
	}
	return args.Error(0)
}

func (m *mockRouteStore) Update(ctx context.Context, id int64, r *database.Route) error {
	args := m.Called(ctx, id, r)
	if args.Error(0) == nil {
		r.ID = id
	}
	return args.Error(0)
}

func (m *mockRouteStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func setupResourceRouter(res *Resource[database.Route, database.RouteView, database.RouteView]) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/routes/", res.List).Methods(http.MethodGet)
	r.HandleFunc("/routes/", res.Create).Methods(http.MethodPost)
	r.HandleFunc("/routes/{id}/", res.Retrieve).Methods(http.MethodGet)
	r.HandleFunc("/routes/{id}/", res.Update).Methods(http.MethodPut)
	r.HandleFunc("/routes/{id}/", res.PartialUpdate).Methods(http.MethodPatch)
	r.HandleFunc("/routes/{id}/", res.Delete).Methods(http.MethodDelete)
	return r
}

func newRouteResource(filtered bool) (*mockRouteStore, *mux.Router) {
	handler, _, _, _ := newTestHandler()
	store := new(mockRouteStore)
	return store, setupResourceRouter(NewResource[database.Route, database.RouteView, database.RouteView](handler, store, filtered))
}

func TestResource_ListAppliesFilter(t *testing.T) {
	store, router := newRouteResource(true)

	want := database.ListQuery{Route: database.RouteFilter{
		Countries: &database.Pair[string]{Source: "Ukraine", Destination: "Poland"},
	}}
	store.On("List", mock.Anything, want).Return([]database.RouteView{{ID: 1}}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/routes/?countries=Ukraine-Poland", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	store.AssertExpectations(t)
}

func TestResource_ListRejectsMalformedFilter(t *testing.T) {
	store, router := newRouteResource(true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/routes/?airports=1-x", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrors(t, rec), "airports")
	store.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestResource_ListIgnoresQueryWhenUnfiltered(t *testing.T) {
	store, router := newRouteResource(false)
	store.On("List", mock.Anything, database.ListQuery{}).Return(nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/routes/?airports=bad", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestResource_Retrieve(t *testing.T) {
	store, router := newRouteResource(true)
	store.On("Detail", mock.Anything, int64(4)).Return(&database.RouteView{ID: 4, Description: "From A to B"}, nil)
	store.On("Detail", mock.Anything, int64(5)).Return(nil, database.ErrNotFound)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/routes/4/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "From A to B")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/routes/5/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResource_Create(t *testing.T) {
	store, router := newRouteResource(true)
	store.On("Create", mock.Anything, mock.AnythingOfType("*database.Route")).Return(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/routes/",
		bytes.NewBufferString(`{"source":1,"destination":2,"distance":500}`)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var got database.Route
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, int64(9), got.ID)
	assert.Equal(t, "From A to B", got.Description)
}

func TestResource_CreateValidation(t *testing.T) {
	store, router := newRouteResource(true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/routes/",
		bytes.NewBufferString(`{"source":1,"distance":0}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decodeErrors(t, rec)
	assert.Contains(t, errs, "destination")
	assert.Contains(t, errs, "distance")
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestResource_CreateMissingReference(t *testing.T) {
	store, router := newRouteResource(true)
	store.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("airport 7: %w", database.ErrNotFound))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/routes/",
		bytes.NewBufferString(`{"source":1,"destination":7,"distance":500}`)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResource_PartialUpdateKeepsAbsentFields(t *testing.T) {
	store, router := newRouteResource(true)

	stored := &database.Route{ID: 3, SourceID: 1, DestinationID: 2, Distance: 500, Description: "old"}
	store.On("Get", mock.Anything, int64(3)).Return(stored, nil)
	store.On("Update", mock.Anything, int64(3), mock.MatchedBy(func(r *database.Route) bool {
		return r.SourceID == 1 && r.DestinationID == 2 && r.Distance == 750
	})).Return(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/routes/3/", bytes.NewBufferString(`{"distance":750}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	store.AssertExpectations(t)
}

func TestResource_UpdateReplacesAllFields(t *testing.T) {
	store, router := newRouteResource(true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/routes/3/", bytes.NewBufferString(`{"distance":750}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestResource_Delete(t *testing.T) {
	store, router := newRouteResource(true)
	store.On("Delete", mock.Anything, int64(3)).Return(nil)
	store.On("Delete", mock.Anything, int64(4)).Return(database.ErrNotFound)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/routes/3/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/routes/4/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
