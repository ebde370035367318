package router

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/cx-tal-miterani/airport-booking/internal/database"
	"github.com/cx-tal-miterani/airport-booking/internal/handlers"
	"github.com/cx-tal-miterani/airport-booking/internal/middlewares"
)

// Deps is everything the router wires into routes.
type Deps struct {
	Handler *handlers.Handler
	Store   *database.Store
	Tokens  middlewares.TokenParser
	// Redis backs idempotent order creation. Nil disables it.
	Redis redis.Cmdable
	Log   *logrus.Logger
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(d Deps) http.Handler {
	r := mux.NewRouter()
	h := d.Handler

	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.Metrics)
	r.Use(middlewares.CORS)

	r.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Users
	user := r.PathPrefix("/api/user").Subrouter()
	user.HandleFunc("/register", h.Register).Methods(http.MethodPost, http.MethodOptions)
	user.HandleFunc("/token", h.Token).Methods(http.MethodPost, http.MethodOptions)

	me := user.PathPrefix("/me").Subrouter()
	me.Use(middlewares.Authenticate(d.Tokens))
	me.HandleFunc("", h.Me).Methods(http.MethodGet, http.MethodOptions)

	api := r.PathPrefix("/api/airport").Subrouter()
	api.Use(middlewares.Authenticate(d.Tokens))

	// Orders
	orders := api.PathPrefix("/orders").Subrouter()
	orders.HandleFunc("", h.ListOrders).Methods(http.MethodGet, http.MethodOptions)
	orders.Handle("", middlewares.Idempotency(d.Redis, d.Log)(http.HandlerFunc(h.CreateOrder))).Methods(http.MethodPost)
	orders.HandleFunc("/{id}", h.GetOrder).Methods(http.MethodGet, http.MethodOptions)
	orders.HandleFunc("/{id}", handlers.MethodNotAllowed).Methods(http.MethodPut, http.MethodPatch, http.MethodDelete)

	// Live seat updates
	api.HandleFunc("/flights/{id}/ws", h.FlightSeats).Methods(http.MethodGet)

	// Catalog
	catalog := api.NewRoute().Subrouter()
	catalog.Use(middlewares.AdminOrReadOnly)

	s := d.Store
	mount(catalog, "/airplane-types", handlers.NewResource[database.AirplaneType, database.AirplaneType, database.AirplaneType](h, s.AirplaneTypes, false))
	mount(catalog, "/airplanes", handlers.NewResource[database.Airplane, database.AirplaneView, database.AirplaneView](h, s.Airplanes, false))
	mount(catalog, "/countries", handlers.NewResource[database.Country, database.CountryView, database.CountryView](h, s.Countries, false))
	mount(catalog, "/cities", handlers.NewResource[database.City, database.CityView, database.CityView](h, s.Cities, false))
	mount(catalog, "/airports", handlers.NewResource[database.Airport, database.AirportView, database.AirportView](h, s.Airports, false))
	mount(catalog, "/routes", handlers.NewResource[database.Route, database.RouteView, database.RouteView](h, s.Routes, true))
	mount(catalog, "/crews", handlers.NewResource[database.Crew, database.Crew, database.Crew](h, s.Crews, false))
	mount(catalog, "/flights", handlers.NewResource[database.Flight, database.FlightView, database.FlightDetail](h, s.Flights, true))

	return trimSlash(r)
}

// resource is the handler set of one catalog collection.
type resource interface {
	List(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	Retrieve(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	PartialUpdate(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
}

func mount(r *mux.Router, prefix string, res resource) {
	sub := r.PathPrefix(prefix).Subrouter()
	sub.HandleFunc("", res.List).Methods(http.MethodGet, http.MethodOptions)
	sub.HandleFunc("", res.Create).Methods(http.MethodPost)
	sub.HandleFunc("/{id:[0-9]+}", res.Retrieve).Methods(http.MethodGet, http.MethodOptions)
	sub.HandleFunc("/{id:[0-9]+}", res.Update).Methods(http.MethodPut)
	sub.HandleFunc("/{id:[0-9]+}", res.PartialUpdate).Methods(http.MethodPatch)
	sub.HandleFunc("/{id:[0-9]+}", res.Delete).Methods(http.MethodDelete)
}

// trimSlash serves "/api/airport/routes/" and "/api/airport/routes" alike.
func trimSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := r.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
			r.URL.Path = strings.TrimRight(p, "/")
		}
		next.ServeHTTP(w, r)
	})
}
