package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orange-brew/internal/auth"
	"orange-brew/internal/catalog"
	"orange-brew/internal/orders"
)

type Deps struct {
	Auth       *auth.Service
	Catalog    *catalog.Service
	Orders     *orders.Service
	UploadsDir string
	Metrics    *Metrics
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Uploaded receipts are public by stored filename.
	fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadsDir)))
	r.Handle("/uploads/*", fs)

	ah := &AuthHandler{Auth: d.Auth}
	ch := &CatalogHandler{Catalog: d.Catalog}
	oh := &OrdersHandler{Orders: d.Orders, Metrics: d.Metrics}

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", ah.register)
			ar.Post("/login", ah.login)
			ar.Group(func(pr chi.Router) {
				pr.Use(Authenticator(d.Auth))
				pr.Get("/me", ah.me)
				pr.Route("/users", func(ur chi.Router) {
					ur.Use(RequireRole(auth.RoleAdmin))
					ur.Get("/", ah.listUsers)
					ur.Post("/", ah.createUser)
					ur.Patch("/{id}", ah.updateUserRole)
					ur.Delete("/{id}", ah.deleteUser)
				})
			})
		})

		api.Route("/products", func(pr chi.Router) {
			pr.Get("/", ch.list)
			pr.Group(func(wr chi.Router) {
				wr.Use(Authenticator(d.Auth), RequireRole(auth.RoleAdmin))
				wr.Post("/", ch.create)
				wr.Put("/{id}", ch.update)
				wr.Delete("/{id}", ch.delete)
			})
		})

		api.Route("/orders", func(or chi.Router) {
			or.Use(Authenticator(d.Auth))
			or.Post("/", oh.create)
			or.Get("/", oh.list)
			or.Get("/{id}", oh.get)
			or.Get("/{id}/status", oh.status)
			or.With(RequireRole(auth.RoleAdmin, auth.RoleCashier)).
				Patch("/{id}/status", oh.updateStatus)
		})

		api.With(Authenticator(d.Auth), RequireRole(auth.RoleAdmin, auth.RoleCashier)).
			Patch("/payments/{id}/status", oh.updatePaymentStatus)
	})

	return r
}
