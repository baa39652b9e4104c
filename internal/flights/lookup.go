package flights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"layoverlink/backend/internal/config"
	"layoverlink/backend/internal/models"
)

// Resolver computes a layover window from an arrival/departure flight pair.
// Session creation treats any error as "fall back to manual duration".
type Resolver interface {
	CalculateLayover(ctx context.Context, arrivalFlight, departureFlight string) (*LayoverResult, error)
}

// LayoverResult is the computed layover window.
type LayoverResult struct {
	FlightInfo      models.FlightInfo
	SessionDuration int // minutes
	ExpiresAt       time.Time
}

var (
	ErrNoAPIKey        = errors.New("flights: API key not configured")
	ErrFlightNotFound  = errors.New("flights: one or both flights not found")
	ErrInvalidTimes    = errors.New("flights: invalid flight times")
	ErrNegativeLayover = errors.New("flights: departure is before arrival")
)

// Flight is one looked-up flight with its schedule endpoints.
type Flight struct {
	FlightNumber string
	Airline      string
	Departure    Endpoint
	Arrival      Endpoint
	Status       string
}

// Endpoint is one side of a flight. Times are RFC3339 strings as returned by
// the upstream API; empty when unknown.
type Endpoint struct {
	Airport   string
	IATA      string
	Timezone  string
	Scheduled string
	Estimated string
	Actual    string
}

// BestTime picks the most reliable known time: actual > estimated > scheduled.
func (e Endpoint) BestTime() (time.Time, error) {
	for _, raw := range []string{e.Actual, e.Estimated, e.Scheduled} {
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			continue
		}
		return t, nil
	}
	return time.Time{}, ErrInvalidTimes
}

// Client talks to the aviationstack flight-schedule API.
type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

// NewClient builds a Client with the upstream's 5-second timeout.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: "http://api.aviationstack.com/v1",
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

type apiEndpoint struct {
	Airport   string `json:"airport"`
	IATA      string `json:"iata"`
	Timezone  string `json:"timezone"`
	Scheduled string `json:"scheduled"`
	Estimated string `json:"estimated"`
	Actual    string `json:"actual"`
}

type apiFlight struct {
	Airline struct {
		Name string `json:"name"`
		IATA string `json:"iata"`
	} `json:"airline"`
	Departure    apiEndpoint `json:"departure"`
	Arrival      apiEndpoint `json:"arrival"`
	FlightStatus string      `json:"flight_status"`
}

type apiResponse struct {
	Data []apiFlight `json:"data"`
}

// LookupFlight fetches the schedule for a flight code such as "AA1234".
func (c *Client) LookupFlight(ctx context.Context, flightNumber string) (*Flight, error) {
	if c.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	code := strings.ToUpper(strings.TrimSpace(flightNumber))

	params := url.Values{}
	params.Set("access_key", c.APIKey)
	params.Set("flight_iata", code)
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/flights?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flights: lookup for %s failed: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flights: lookup for %s returned status %d", code, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("flights: failed to decode response for %s: %w", code, err)
	}
	if len(body.Data) == 0 {
		return nil, nil
	}

	f := body.Data[0]
	return &Flight{
		FlightNumber: code,
		Airline:      f.Airline.Name,
		Departure:    Endpoint(f.Departure),
		Arrival:      Endpoint(f.Arrival),
		Status:       f.FlightStatus,
	}, nil
}

// CalculateLayover resolves both flights and derives the session window: the
// layover length between the first flight's arrival and the second flight's
// departure, with the session ending a safety margin before departure.
func (c *Client) CalculateLayover(ctx context.Context, arrivalFlight, departureFlight string) (*LayoverResult, error) {
	arrival, err := c.LookupFlight(ctx, arrivalFlight)
	if err != nil {
		return nil, err
	}
	departure, err := c.LookupFlight(ctx, departureFlight)
	if err != nil {
		return nil, err
	}
	if arrival == nil || departure == nil {
		return nil, ErrFlightNotFound
	}

	arrivalTime, err := arrival.Arrival.BestTime()
	if err != nil {
		return nil, err
	}
	departureTime, err := departure.Departure.BestTime()
	if err != nil {
		return nil, err
	}

	layoverMinutes := int(departureTime.Sub(arrivalTime) / time.Minute)
	if layoverMinutes <= 0 {
		return nil, ErrNegativeLayover
	}

	sessionDuration := layoverMinutes - int(config.DepartureSafetyMargin/time.Minute)
	if sessionDuration < config.MinSessionMinutes {
		sessionDuration = config.MinSessionMinutes
	}

	return &LayoverResult{
		FlightInfo: models.FlightInfo{
			Arrival: models.FlightLeg{
				Flight:   arrival.FlightNumber,
				Airport:  arrival.Arrival.Airport,
				Time:     arrivalTime.Format(time.RFC3339),
				Timezone: arrival.Arrival.Timezone,
			},
			Departure: models.FlightLeg{
				Flight:   departure.FlightNumber,
				Airport:  departure.Departure.Airport,
				Time:     departureTime.Format(time.RFC3339),
				Timezone: departure.Departure.Timezone,
			},
			LayoverMinutes: layoverMinutes,
		},
		SessionDuration: sessionDuration,
		ExpiresAt:       departureTime.Add(-config.DepartureSafetyMargin),
	}, nil
}
