// README: Session handler forwards UI intents to the ride machine and answers with the new snapshot.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"goride/internal/modules/location"
	"goride/internal/modules/ride"
	"goride/internal/types"
)

type SessionHandler struct {
	machine *ride.Machine
}

func NewSessionHandler(machine *ride.Machine) *SessionHandler {
	return &SessionHandler{machine: machine}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type searchReq struct {
	Field location.Field `json:"field"`
	Text  string         `json:"text"`
}

type focusReq struct {
	Field location.Field `json:"field"`
}

type selectReq struct {
	Address string `json:"address"`
}

type vehicleReq struct {
	ID string `json:"id"`
}

type paymentReq struct {
	Method ride.PaymentMethod `json:"method"`
}

// Get handles GET /api/session.
func (h *SessionHandler) Get(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.machine.Snapshot())
}

// Login handles POST /api/session/login.
func (h *SessionHandler) Login(c *gin.Context) {
	var req loginReq
	if !bind(c, &req) {
		return
	}
	h.respond(c, h.machine.Login(req.Email, req.Password))
}

// UseCurrentLocation handles POST /api/session/current-location.
func (h *SessionHandler) UseCurrentLocation(c *gin.Context) {
	h.respond(c, h.machine.UseCurrentLocation())
}

// SetSearchText handles PUT /api/session/search.
func (h *SessionHandler) SetSearchText(c *gin.Context) {
	var req searchReq
	if !bind(c, &req) {
		return
	}
	h.respond(c, h.machine.SetSearchText(req.Field, req.Text))
}

// Focus handles POST /api/session/focus. An empty field blurs.
func (h *SessionHandler) Focus(c *gin.Context) {
	var req focusReq
	if !bind(c, &req) {
		return
	}
	h.respond(c, h.machine.FocusField(req.Field))
}

// MapTap handles POST /api/session/map-tap.
func (h *SessionHandler) MapTap(c *gin.Context) {
	var req types.Point
	if !bind(c, &req) {
		return
	}
	h.respond(c, h.machine.MapTapped(req))
}

// SelectSuggestion handles POST /api/session/suggestions/select.
func (h *SessionHandler) SelectSuggestion(c *gin.Context) {
	var req selectReq
	if !bind(c, &req) {
		return
	}
	h.respond(c, h.machine.SelectSuggestion(req.Address))
}

// FindRides handles POST /api/session/find-rides.
func (h *SessionHandler) FindRides(c *gin.Context) {
	h.respond(c, h.machine.FindRides())
}

// SelectVehicle handles POST /api/session/vehicle.
func (h *SessionHandler) SelectVehicle(c *gin.Context) {
	var req vehicleReq
	if !bind(c, &req) {
		return
	}
	h.respond(c, h.machine.SelectVehicle(req.ID))
}

// Proceed handles POST /api/session/proceed.
func (h *SessionHandler) Proceed(c *gin.Context) {
	h.respond(c, h.machine.ProceedToPayment())
}

// SetPaymentMethod handles PUT /api/session/payment-method.
func (h *SessionHandler) SetPaymentMethod(c *gin.Context) {
	var req paymentReq
	if !bind(c, &req) {
		return
	}
	h.respond(c, h.machine.SetPaymentMethod(req.Method))
}

// ConfirmPayment handles POST /api/session/confirm-payment.
func (h *SessionHandler) ConfirmPayment(c *gin.Context) {
	h.respond(c, h.machine.ConfirmPayment())
}

// Cancel handles POST /api/session/cancel.
func (h *SessionHandler) Cancel(c *gin.Context) {
	h.respond(c, h.machine.CancelRide())
}

// Back handles POST /api/session/back.
func (h *SessionHandler) Back(c *gin.Context) {
	h.respond(c, h.machine.NavigateBack())
}

func (h *SessionHandler) respond(c *gin.Context, err error) {
	if err != nil {
		writeSessionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, h.machine.Snapshot())
}

func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}
