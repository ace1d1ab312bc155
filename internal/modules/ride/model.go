// README: Booking stages, payment methods and the session snapshot shown to the UI.
package ride

import (
	"goride/internal/modules/location"
	"goride/internal/modules/pricing"
	"goride/internal/types"
)

type Stage string

const (
	StageLogin           Stage = "login"
	StageLocationSelect  Stage = "location_select"
	StageVehicleSelect   Stage = "vehicle_select"
	StagePayment         Stage = "payment"
	StageSearchingDriver Stage = "searching_driver"
	StageRideActive      Stage = "ride_active"
	// StageRideCompleted has no inbound transition: a ride ends only by cancel.
	StageRideCompleted Stage = "ride_completed"
)

// AllowedTransitions represents the booking flow (diagram) as code.
var AllowedTransitions = map[Stage][]Stage{
	StageLogin:           {StageLocationSelect},
	StageLocationSelect:  {StageVehicleSelect},
	StageVehicleSelect:   {StageLocationSelect, StagePayment},
	StagePayment:         {StageVehicleSelect, StageSearchingDriver},
	StageSearchingDriver: {StageRideActive},
	StageRideActive:      {StageLocationSelect},
}

func CanTransition(from, to Stage) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentUPI  PaymentMethod = "UPI"
	PaymentCard PaymentMethod = "CARD"
	PaymentCash PaymentMethod = "CASH"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentUPI, PaymentCard, PaymentCash:
		return true
	}
	return false
}

// Snapshot is a copy of the session at one point in time. It shares no
// memory with the machine.
type Snapshot struct {
	Stage           Stage                   `json:"stage"`
	UserName        string                  `json:"userName"`
	UserCoords      types.Point             `json:"userCoords"`
	Pickup          *location.Location      `json:"pickup"`
	Dropoff         *location.Location      `json:"dropoff"`
	PickupQuery     string                  `json:"pickupQuery"`
	DropoffQuery    string                  `json:"dropoffQuery"`
	ActiveField     location.Field          `json:"activeField"`
	Suggestions     []string                `json:"suggestions"`
	Vehicles        []pricing.VehicleOption `json:"vehicles"`
	LoadingFares    bool                    `json:"loadingFares"`
	SelectedVehicle *pricing.VehicleOption  `json:"selectedVehicle"`
	PaymentMethod   PaymentMethod           `json:"paymentMethod"`
	DriverPosition  *types.Point            `json:"driverPosition"`
	RideETASeconds  int                     `json:"rideEtaSeconds"`
	ETALabel        string                  `json:"etaLabel,omitempty"`
	DriverDistance  float64                 `json:"driverDistanceKm,omitempty"`

	// CanFindRides and CanProceed drive the enabled state of the two
	// forward buttons.
	CanFindRides bool `json:"canFindRides"`
	CanProceed   bool `json:"canProceed"`

	// Version increases with every published change.
	Version uint64 `json:"version"`
}
