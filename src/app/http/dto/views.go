package dto

import (
	"workshop/src/core/domain"
)

// CreatedOnLayout renders timestamps as "05 March, 2021, 14:07:09".
const CreatedOnLayout = "02 January, 2006, 15:04:05"

// MechanicPublicView is the public projection of a mechanic. It never
// carries contact details.
type MechanicPublicView struct {
	ID           int64  `json:"id"`
	MechanicCode string `json:"mechanic_code"`
}

// OwnerView is the projection of a vehicle owner.
type OwnerView struct {
	Email  string `json:"email"`
	Number string `json:"number"`
}

// VehicleView is the projection of a vehicle.
type VehicleView struct {
	ID    int64     `json:"id"`
	VIN   string    `json:"vin"`
	Owner OwnerView `json:"owner"`
}

// ServiceRequestView is a service request joined with its mechanic and vehicle.
type ServiceRequestView struct {
	ID             int64              `json:"id"`
	Mechanic       MechanicPublicView `json:"mechanic"`
	Vehicle        VehicleView        `json:"vehicle"`
	ProblemDetails string             `json:"problem_details"`
	Status         string             `json:"status"`
	CreatedOn      string             `json:"created_on"`
}

// VehicleProjector turns a vehicle record into the view embedded in service
// request views. Callers that own the vehicle representation supply their own.
type VehicleProjector interface {
	ProjectVehicle(v *domain.Vehicle) VehicleView
}

// VehicleProjectorFunc adapts a function to VehicleProjector.
type VehicleProjectorFunc func(v *domain.Vehicle) VehicleView

// ProjectVehicle calls f(v).
func (f VehicleProjectorFunc) ProjectVehicle(v *domain.Vehicle) VehicleView {
	return f(v)
}

// DefaultVehicleProjector exposes id, vin and the owner's email and number.
type DefaultVehicleProjector struct{}

// ProjectVehicle implements VehicleProjector. A vehicle without a loaded
// owner projects an empty owner.
func (DefaultVehicleProjector) ProjectVehicle(v *domain.Vehicle) VehicleView {
	view := VehicleView{
		ID:  v.ID,
		VIN: v.VIN,
	}
	if v.Owner != nil {
		view.Owner = OwnerView{
			Email:  v.Owner.Email,
			Number: v.Owner.Number,
		}
	}
	return view
}

// ProjectMechanicPublic projects a mechanic onto its public fields.
func ProjectMechanicPublic(m *domain.Mechanic) MechanicPublicView {
	return MechanicPublicView{
		ID:           m.ID,
		MechanicCode: m.MechanicCode,
	}
}

// ProjectServiceRequest builds the view of a service request. The mechanic
// and vehicle relations must already be loaded; a nil relation yields a
// ProjectionError and no view. A nil projector uses DefaultVehicleProjector.
func ProjectServiceRequest(sr *domain.ServiceRequest, vehicles VehicleProjector) (ServiceRequestView, error) {
	if sr == nil {
		return ServiceRequestView{}, &ProjectionError{Record: "service_request", Relation: "self"}
	}
	if sr.Mechanic == nil {
		return ServiceRequestView{}, &ProjectionError{Record: "service_request", RecordID: sr.ID, Relation: "mechanic"}
	}
	if sr.Vehicle == nil {
		return ServiceRequestView{}, &ProjectionError{Record: "service_request", RecordID: sr.ID, Relation: "vehicle"}
	}
	if vehicles == nil {
		vehicles = DefaultVehicleProjector{}
	}

	return ServiceRequestView{
		ID:             sr.ID,
		Mechanic:       ProjectMechanicPublic(sr.Mechanic),
		Vehicle:        vehicles.ProjectVehicle(sr.Vehicle),
		ProblemDetails: sr.ProblemDetails,
		Status:         string(sr.Status),
		CreatedOn:      sr.CreatedOn.UTC().Format(CreatedOnLayout),
	}, nil
}

// ProjectServiceRequests projects a list of service requests, stopping at the
// first record that cannot be projected.
func ProjectServiceRequests(records []domain.ServiceRequest, vehicles VehicleProjector) ([]ServiceRequestView, error) {
	views := make([]ServiceRequestView, 0, len(records))
	for i := range records {
		view, err := ProjectServiceRequest(&records[i], vehicles)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}
