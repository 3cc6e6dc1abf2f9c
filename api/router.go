package api

import (
	"log/slog"
	"net/http"

	"downtime-tracker/domain"
	"downtime-tracker/realtime"
)

// Deps bundles everything the HTTP surface needs. The realtime handler is
// mounted on its single fixed path here, next to the JSON API that feeds it.
type Deps struct {
	Log        *slog.Logger
	Auth       *AuthHandler
	Machines   *MachineHandler
	Tickets    *TicketHandler
	Batches    *BatchHandler
	Users      *UserHandler
	Realtime   *realtime.Handler
	Resolver   realtime.Authenticator
	CookieName string
}

func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	authed := RequireAuth(deps.Log, deps.Resolver, deps.CookieName)
	adminOnly := RequireRole(domain.RoleAdmin)
	supervision := RequireRole(domain.RoleSupervisor, domain.RoleAdmin)
	maintenance := RequireRole(domain.RoleMaintenanceChief, domain.RoleAdmin)

	mux.HandleFunc("POST /api/login", deps.Auth.Login)
	mux.HandleFunc("POST /api/logout", deps.Auth.Logout)
	mux.Handle("GET /api/me", authed(http.HandlerFunc(deps.Auth.Me)))
	mux.Handle("POST /api/register", authed(adminOnly(http.HandlerFunc(deps.Auth.Register))))

	mux.Handle("GET /api/users/technicians", authed(maintenance(http.HandlerFunc(deps.Users.Technicians))))

	mux.Handle("GET /api/machines", authed(http.HandlerFunc(deps.Machines.List)))
	mux.Handle("PATCH /api/machines/{id}/status", authed(supervision(http.HandlerFunc(deps.Machines.UpdateStatus))))
	mux.Handle("POST /api/machines/{id}/stoppages", authed(http.HandlerFunc(deps.Machines.ReportStoppage)))

	mux.Handle("POST /api/tickets", authed(http.HandlerFunc(deps.Tickets.Create)))
	mux.Handle("POST /api/tickets/{id}/assign", authed(maintenance(http.HandlerFunc(deps.Tickets.Assign))))
	mux.Handle("POST /api/tickets/{id}/accept", authed(RequireRole(domain.RoleTechnician)(http.HandlerFunc(deps.Tickets.Accept))))
	mux.Handle("POST /api/tickets/{id}/close", authed(RequireRole(domain.RoleTechnician, domain.RoleMaintenanceChief, domain.RoleAdmin)(http.HandlerFunc(deps.Tickets.Close))))

	mux.Handle("POST /api/batches", authed(http.HandlerFunc(deps.Batches.Start)))
	mux.Handle("POST /api/batches/{id}/finish", authed(http.HandlerFunc(deps.Batches.Finish)))

	// The one upgrade path. Anything else never reaches the upgrader.
	mux.Handle("GET /ws", deps.Realtime)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return mux
}
