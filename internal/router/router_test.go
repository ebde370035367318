package router

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cx-tal-miterani/airport-booking/internal/auth"
	"github.com/cx-tal-miterani/airport-booking/internal/database"
	"github.com/cx-tal-miterani/airport-booking/internal/handlers"
	"github.com/cx-tal-miterani/airport-booking/internal/service/mocks"
)

type noStream struct{}

func (noStream) Serve(w http.ResponseWriter, r *http.Request, flightID int64) {
	w.WriteHeader(http.StatusSwitchingProtocols)
}

type testEnv struct {
	router   http.Handler
	db       pgxmock.PgxPoolIface
	bookings *mocks.MockBookingService
	user     string
	staff    string
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(db.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	bookings := new(mocks.MockBookingService)
	users := new(mocks.MockUserService)
	issuer := auth.NewIssuer("router-secret", time.Hour)

	userToken, err := issuer.Issue(1, false)
	require.NoError(t, err)
	staffToken, err := issuer.Issue(2, true)
	require.NoError(t, err)

	store := database.NewStore(db, database.MatchContains)
	r := SetupRouter(Deps{
		Handler: handlers.NewHandler(bookings, users, store.Flights, noStream{}, log),
		Store:   store,
		Tokens:  issuer,
		Log:     log,
	})
	return &testEnv{router: r, db: db, bookings: bookings, user: userToken, staff: staffToken}
}

func (e *testEnv) do(method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Operational(t *testing.T) {
	env := setup(t)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", "", nil).Code)

	rec := env.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	env := setup(t)

	for _, path := range []string{
		"/api/airport/countries/",
		"/api/airport/flights/1/",
		"/api/airport/orders/",
		"/api/airport/flights/1/ws",
		"/api/user/me/",
	} {
		assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, path, "", nil).Code, path)
	}
}

func TestRouter_CatalogReadForUsers(t *testing.T) {
	env := setup(t)

	env.db.ExpectQuery(`SELECT id, name FROM airplane_types`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "wide-body"))

	rec := env.do(http.MethodGet, "/api/airport/airplane-types/", env.user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"name":"wide-body"}]`, rec.Body.String())
	assert.NoError(t, env.db.ExpectationsWereMet())
}

func TestRouter_CatalogWriteForStaffOnly(t *testing.T) {
	env := setup(t)
	body := []byte(`{"name":"narrow-body"}`)

	rec := env.do(http.MethodPost, "/api/airport/airplane-types", env.user, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	env.db.ExpectQuery(`INSERT INTO airplane_types`).
		WithArgs("narrow-body").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))

	rec = env.do(http.MethodPost, "/api/airport/airplane-types", env.staff, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":5,"name":"narrow-body"}`, rec.Body.String())
	assert.NoError(t, env.db.ExpectationsWereMet())
}

func TestRouter_Orders(t *testing.T) {
	env := setup(t)

	env.bookings.On("ListOrders", mock.Anything).Return([]database.Order{}, nil)
	rec := env.do(http.MethodGet, "/api/airport/orders", env.user, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, method := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete} {
		rec := env.do(method, "/api/airport/orders/1/", env.staff, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
	}
}

func TestRouter_Preflight(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodOptions, "/api/airport/orders/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
