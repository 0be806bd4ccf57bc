package routes

import (
	"net/http"

	"github.com/clipline/barbershop-backend/internal/api/handlers"
	"github.com/clipline/barbershop-backend/internal/api/middleware"
	"github.com/clipline/barbershop-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	customerHandler     *handlers.CustomerHandler
	appointmentHandler  *handlers.AppointmentHandler
	availabilityHandler *handlers.AvailabilityHandler
	syncHandler         *handlers.SyncHandler
	catalogHandler      *handlers.CatalogHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	customerHandler *handlers.CustomerHandler,
	appointmentHandler *handlers.AppointmentHandler,
	availabilityHandler *handlers.AvailabilityHandler,
	syncHandler *handlers.SyncHandler,
	catalogHandler *handlers.CatalogHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                 http.NewServeMux(),
		customerHandler:     customerHandler,
		appointmentHandler:  appointmentHandler,
		availabilityHandler: availabilityHandler,
		syncHandler:         syncHandler,
		catalogHandler:      catalogHandler,
		metrics:             metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Customer endpoints
	r.mux.HandleFunc("POST /api/customers", r.customerHandler.CreateCustomer)
	r.mux.HandleFunc("GET /api/customers", r.customerHandler.ListCustomers)
	r.mux.HandleFunc("GET /api/customers/{id}", r.customerHandler.GetCustomer)
	r.mux.HandleFunc("PATCH /api/customers/{id}", r.customerHandler.UpdateCustomer)
	r.mux.HandleFunc("DELETE /api/customers/{id}", r.customerHandler.DeleteCustomer)
	r.mux.HandleFunc("POST /api/customers/{id}/sync", r.customerHandler.SyncCustomer)

	// Appointment endpoints
	r.mux.HandleFunc("POST /api/appointments", r.appointmentHandler.BookAppointment)
	r.mux.HandleFunc("GET /api/appointments", r.appointmentHandler.ListAppointments)
	r.mux.HandleFunc("POST /api/appointments/status", r.appointmentHandler.UpdateStatusBatch)
	r.mux.HandleFunc("GET /api/appointments/{id}", r.appointmentHandler.GetAppointment)
	r.mux.HandleFunc("PATCH /api/appointments/{id}/status", r.appointmentHandler.UpdateStatus)
	r.mux.HandleFunc("POST /api/appointments/{id}/cancel", r.appointmentHandler.CancelAppointment)
	r.mux.HandleFunc("POST /api/appointments/{id}/reschedule", r.appointmentHandler.RescheduleAppointment)

	// Availability endpoints
	r.mux.HandleFunc("GET /api/availability/slots", r.availabilityHandler.GetSlots)

	// Reconciliation endpoints
	r.mux.HandleFunc("POST /api/sync/customers", r.syncHandler.SyncCustomers)

	// Catalog endpoints
	r.mux.HandleFunc("GET /api/catalog/services", r.catalogHandler.GetServices)
	r.mux.HandleFunc("GET /api/catalog/units", r.catalogHandler.GetUnits)
	r.mux.HandleFunc("GET /api/catalog/company", r.catalogHandler.GetCompanyInfo)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so headers are set even on errors
	handler = middleware.CORSMiddleware(handler)

	return handler
}
