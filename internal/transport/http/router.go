package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
)

// NewRouter wires every exposed operation of the demand-matching subsystem.
func NewRouter(schedules *SchedulesHandler, waitlist *WaitlistHandler) http.Handler {
	router := httprouter.New()

	router.POST("/v1/schedules", schedules.Create)
	router.POST("/v1/schedules/:id/pause", schedules.Pause)
	router.POST("/v1/schedules/:id/resume", schedules.Resume)
	router.POST("/v1/schedules/:id/skip", schedules.SkipNext)
	router.POST("/v1/schedules/:id/cancel", schedules.Cancel)
	router.PATCH("/v1/schedules/:id", schedules.Update)
	router.GET("/v1/schedules/:id/stats", schedules.Stats)
	router.GET("/v1/customers/:id/schedules", schedules.ListForCustomer)
	router.GET("/v1/barbers/:id/schedules", schedules.ListForBarber)

	router.POST("/v1/waitlist", waitlist.Join)
	router.DELETE("/v1/waitlist/:id", waitlist.Leave)
	router.GET("/v1/waitlist/:id/position", waitlist.Position)
	router.POST("/v1/waitlist/:id/accept", waitlist.AcceptOffer)
	router.POST("/v1/waitlist/:id/decline", waitlist.DeclineOffer)
	router.POST("/v1/barbers/:id/slots/release", waitlist.ReleaseSlot)

	router.POST("/v1/admin/processor/tick", schedules.RunProcessorTick)
	router.POST("/v1/admin/sweeper/tick", waitlist.RunSweepTick)

	router.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return router
}

// NewValidator returns the request validator shared by the handlers.
func NewValidator() *validator.Validate {
	return validator.New()
}
