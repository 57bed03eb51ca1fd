package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"workshop/src/core/domain"
	"workshop/src/core/ports"
)

// Repeat budget accepted for a contact request that asks for repeats.
const (
	MinRepeats = 1
	MaxRepeats = 100
)

// MerchantService handles the merchant-facing workshop flows.
type MerchantService struct {
	repo         ports.WorkshopRepository
	dispatcher   ports.MechanicDispatcher
	allowedHosts map[string]struct{}
	log          *slog.Logger
}

// NewMerchantService creates a MerchantService. An empty allowedHosts list
// lets contact requests reach any host.
func NewMerchantService(repo ports.WorkshopRepository, dispatcher ports.MechanicDispatcher, allowedHosts []string, log *slog.Logger) *MerchantService {
	hosts := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			hosts[h] = struct{}{}
		}
	}
	return &MerchantService{
		repo:         repo,
		dispatcher:   dispatcher,
		allowedHosts: hosts,
		log:          log,
	}
}

// ContactMechanicInput is a validated contact request plus the fields that
// are forwarded to the mechanic API.
type ContactMechanicInput struct {
	MechanicAPI    string
	RepeatIfFailed bool
	Repeats        int

	MechanicCode   string
	ProblemDetails string
	VIN            string

	Authorization string
}

// ContactMechanicResult is what the mechanic API answered.
type ContactMechanicResult struct {
	StatusCode int
	Body       any
	Attempts   int
}

// ContactMechanic forwards a merchant's request to the mechanic API it names.
func (s *MerchantService) ContactMechanic(ctx context.Context, in ContactMechanicInput) (*ContactMechanicResult, error) {
	repeats := 0
	if in.RepeatIfFailed {
		if in.Repeats < MinRepeats {
			return nil, domain.NewValidationError("number_of_repeats", fmt.Sprintf("must be at least %d", MinRepeats))
		}
		if in.Repeats > MaxRepeats {
			return nil, domain.NewUnavailableError(fmt.Sprintf("number_of_repeats may not exceed %d", MaxRepeats))
		}
		repeats = in.Repeats
	}

	if err := s.checkEndpoint(in.MechanicAPI); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("mechanic_api", in.MechanicAPI)
	query.Set("repeat_request_if_failed", strconv.FormatBool(in.RepeatIfFailed))
	if in.RepeatIfFailed {
		query.Set("number_of_repeats", strconv.Itoa(repeats))
	}
	setIfPresent(query, "mechanic_code", in.MechanicCode)
	setIfPresent(query, "problem_details", in.ProblemDetails)
	setIfPresent(query, "vin", in.VIN)

	res, err := s.dispatcher.Dispatch(ctx, ports.DispatchRequest{
		Endpoint:      in.MechanicAPI,
		Query:         query,
		Authorization: in.Authorization,
		Repeats:       repeats,
	})
	if err != nil {
		s.log.Warn("mechanic api dispatch failed",
			"mechanic_api", in.MechanicAPI,
			"repeats", repeats,
			"error", err,
		)
		return nil, err
	}

	s.log.Info("mechanic api contacted",
		"mechanic_api", in.MechanicAPI,
		"status", res.StatusCode,
		"attempts", res.Attempts,
	)

	return &ContactMechanicResult{
		StatusCode: res.StatusCode,
		Body:       res.Body,
		Attempts:   res.Attempts,
	}, nil
}

// ListServiceRequests returns the service requests raised for a vehicle.
func (s *MerchantService) ListServiceRequests(ctx context.Context, vin string) ([]domain.ServiceRequest, error) {
	if strings.TrimSpace(vin) == "" {
		return nil, domain.NewValidationError("vin", "required")
	}
	return s.repo.ListServiceRequestsByVIN(ctx, vin)
}

// GetMechanic looks a mechanic up by its public code.
func (s *MerchantService) GetMechanic(ctx context.Context, code string) (*domain.Mechanic, error) {
	if strings.TrimSpace(code) == "" {
		return nil, domain.NewValidationError("mechanic_code", "required")
	}
	return s.repo.GetMechanicByCode(ctx, code)
}

func (s *MerchantService) checkEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return domain.NewValidationError("mechanic_api", "must be an absolute http(s) URL")
	}
	if len(s.allowedHosts) == 0 {
		return nil
	}
	if _, ok := s.allowedHosts[strings.ToLower(u.Hostname())]; !ok {
		return domain.NewValidationError("mechanic_api", "host is not allowed")
	}
	return nil
}

func setIfPresent(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
