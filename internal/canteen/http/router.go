package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/notify"
	"github.com/canteenhq/canteen/internal/canteen/service"
	"github.com/canteenhq/canteen/internal/canteen/store"
	"github.com/canteenhq/canteen/pkg/httpx"
	"github.com/canteenhq/canteen/pkg/slogx"

	_ "github.com/canteenhq/canteen/api/canteen" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     httpx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	hub   *notify.Hub

	AuthService      *service.AuthService
	AllowanceService *service.AllowanceService
	TransferService  *service.TransferService
	OrderService     *service.OrderService
	MenuService      *service.MenuService
	UserService      *service.UserService
}

func NewRouter(
	verifier httpx.Verifier,
	buildVersion string,
	st store.Store,
	hub *notify.Hub,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		hub:          hub,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerBalance()
	r.registerTransfers()
	r.registerOrders()
	r.registerMenu()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Canteen Coin & Ordering Service API
//	@version		0.1.0
//	@description	Cafeteria ordering backend with a daily coin allowance, peer-to-peer coin
//	@description	transfers, menu management, and admin order reporting.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	signin := &SignInHandler{AuthService: r.AuthService}
	register := &RegisterHandler{AuthService: r.AuthService}
	me := &MeHandler{UserService: r.UserService, AllowanceService: r.AllowanceService}

	// Credentials endpoints get the strict per-IP limit.
	r.Mux.Handle("POST /v1/auth/signin",
		httpx.Chain(signin,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(register,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("GET /v1/me",
		httpx.Chain(me,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerBalance() {
	reconcile := &BalanceReconcileHandler{AllowanceService: r.AllowanceService}

	r.Mux.Handle("POST /v1/balance/reconcile",
		httpx.Chain(reconcile,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerTransfers() {
	create := &TransferCreateHandler{
		TransferService:  r.TransferService,
		AllowanceService: r.AllowanceService,
	}
	orphaned := &TransferOrphanedHandler{TransferService: r.TransferService}

	r.Mux.Handle("POST /v1/transfers",
		httpx.Chain(create,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/transfers/orphaned",
		httpx.Chain(orphaned,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole("admin"),
		),
	)
}

func (r *Router) registerOrders() {
	submit := &OrderSubmitHandler{OrderService: r.OrderService}
	list := &OrderListHandler{OrderService: r.OrderService}
	export := &OrderExportHandler{OrderService: r.OrderService}
	watch := &WatchHandler{Hub: r.hub, Topic: notify.TopicOrders}

	r.Mux.Handle("POST /v1/orders",
		httpx.Chain(submit,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/orders",
		httpx.Chain(list,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole("admin"),
		),
	)
	r.Mux.Handle("GET /v1/orders/export",
		httpx.Chain(export,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole("admin"),
		),
	)
	r.Mux.Handle("GET /v1/orders/watch",
		httpx.Chain(watch,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole("admin"),
		),
	)
}

func (r *Router) registerMenu() {
	list := &MenuListHandler{MenuService: r.MenuService}
	create := &MenuCreateHandler{MenuService: r.MenuService}
	update := &MenuUpdateHandler{MenuService: r.MenuService}
	del := &MenuDeleteHandler{MenuService: r.MenuService}
	watch := &WatchHandler{Hub: r.hub, Topic: notify.TopicMenu}

	r.Mux.Handle("GET /v1/menu",
		httpx.Chain(list,
			httpx.AuthnMiddleware(r.verifier),
		),
	)
	r.Mux.Handle("GET /v1/menu/watch",
		httpx.Chain(watch,
			httpx.AuthnMiddleware(r.verifier),
		),
	)
	r.Mux.Handle("POST /v1/menu",
		httpx.Chain(create,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole("admin"),
		),
	)
	r.Mux.Handle("PUT /v1/menu/{id}",
		httpx.Chain(update,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole("admin"),
		),
	)
	r.Mux.Handle("DELETE /v1/menu/{id}",
		httpx.Chain(del,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole("admin"),
		),
	)
}

func (r *Router) registerUsers() {
	del := &UserDeleteHandler{UserService: r.UserService}
	password := &UserPasswordHandler{AuthService: r.AuthService}

	r.Mux.Handle("DELETE /v1/users/{id}",
		httpx.Chain(del,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole("admin"),
		),
	)
	r.Mux.Handle("PUT /v1/users/{id}/password",
		httpx.Chain(password,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole("admin"),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
