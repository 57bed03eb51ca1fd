package domain

import "time"

// ServiceStatus represents the lifecycle of a service request.
type ServiceStatus string

const (
	ServicePending   ServiceStatus = "pending"
	ServiceFinished  ServiceStatus = "finished"
	ServiceCancelled ServiceStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s ServiceStatus) Valid() bool {
	switch s {
	case ServicePending, ServiceFinished, ServiceCancelled:
		return true
	}
	return false
}

// Owner is the user a vehicle is registered to.
type Owner struct {
	ID     int64
	Email  string
	Number string
}

// Mechanic is a workshop mechanic. Email and Number are contact details and
// must not leave the service through public views.
type Mechanic struct {
	ID           int64
	MechanicCode string
	Email        string
	Number       string
	CreatedOn    time.Time
}

// Vehicle is a registered vehicle.
type Vehicle struct {
	ID      int64
	VIN     string
	PinCode string
	Year    int
	Status  string
	Owner   *Owner
}

// ServiceRequest is a request raised against a mechanic for a vehicle.
// Mechanic and Vehicle are populated by the repository; nil means the
// relation was not loaded.
type ServiceRequest struct {
	ID             int64
	Mechanic       *Mechanic
	Vehicle        *Vehicle
	ProblemDetails string
	Status         ServiceStatus
	CreatedOn      time.Time
	UpdatedOn      *time.Time
}
