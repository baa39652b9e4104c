package flights_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"layoverlink/backend/internal/flights"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureServer serves canned aviationstack responses keyed by flight code.
func fixtureServer(t *testing.T, fixtures map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/flights", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("access_key"))

		code := r.URL.Query().Get("flight_iata")
		body, ok := fixtures[code]
		if !ok {
			body = `{"data":[]}`
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
}

func testClient(server *httptest.Server) *flights.Client {
	client := flights.NewClient("test-key")
	client.BaseURL = server.URL
	client.HTTP = server.Client()
	return client
}

func flightJSON(airline, depAirport, depTime, arrAirport, arrTime string) string {
	return fmt.Sprintf(`{"data":[{
		"airline":{"name":"%s","iata":""},
		"departure":{"airport":"%s","iata":"","timezone":"UTC","scheduled":"%s"},
		"arrival":{"airport":"%s","iata":"","timezone":"UTC","scheduled":"%s"},
		"flight_status":"scheduled"
	}]}`, airline, depAirport, depTime, arrAirport, arrTime)
}

func TestCalculateLayover(t *testing.T) {
	server := fixtureServer(t, map[string]string{
		"UA100": flightJSON("United", "ORD", "2026-08-31T06:00:00+00:00", "EWR", "2026-08-31T10:00:00+00:00"),
		"DL200": flightJSON("Delta", "EWR", "2026-08-31T16:00:00+00:00", "ATL", "2026-08-31T19:00:00+00:00"),
	})
	defer server.Close()

	result, err := testClient(server).CalculateLayover(context.Background(), "ua100", "dl200")
	require.NoError(t, err)

	// 10:00 arrival to 16:00 departure is a 6 hour layover; the session ends
	// 30 minutes before departure.
	assert.Equal(t, 360, result.FlightInfo.LayoverMinutes)
	assert.Equal(t, 330, result.SessionDuration)
	expected, _ := time.Parse(time.RFC3339, "2026-08-31T15:30:00+00:00")
	assert.True(t, result.ExpiresAt.Equal(expected), "expiresAt %v", result.ExpiresAt)

	assert.Equal(t, "UA100", result.FlightInfo.Arrival.Flight)
	assert.Equal(t, "EWR", result.FlightInfo.Arrival.Airport)
	assert.Equal(t, "DL200", result.FlightInfo.Departure.Flight)
	assert.Equal(t, "EWR", result.FlightInfo.Departure.Airport)
}

func TestCalculateLayover_ShortLayoverFloor(t *testing.T) {
	server := fixtureServer(t, map[string]string{
		"UA100": flightJSON("United", "ORD", "2026-08-31T06:00:00+00:00", "EWR", "2026-08-31T10:00:00+00:00"),
		"DL200": flightJSON("Delta", "EWR", "2026-08-31T10:45:00+00:00", "ATL", "2026-08-31T13:00:00+00:00"),
	})
	defer server.Close()

	result, err := testClient(server).CalculateLayover(context.Background(), "UA100", "DL200")
	require.NoError(t, err)

	// 45 minute layover minus the margin is under the floor.
	assert.Equal(t, 45, result.FlightInfo.LayoverMinutes)
	assert.Equal(t, 30, result.SessionDuration)
}

func TestCalculateLayover_FlightNotFound(t *testing.T) {
	server := fixtureServer(t, map[string]string{
		"UA100": flightJSON("United", "ORD", "2026-08-31T06:00:00+00:00", "EWR", "2026-08-31T10:00:00+00:00"),
	})
	defer server.Close()

	_, err := testClient(server).CalculateLayover(context.Background(), "UA100", "XX999")
	assert.ErrorIs(t, err, flights.ErrFlightNotFound)
}

func TestCalculateLayover_DepartureBeforeArrival(t *testing.T) {
	server := fixtureServer(t, map[string]string{
		"UA100": flightJSON("United", "ORD", "2026-08-31T06:00:00+00:00", "EWR", "2026-08-31T10:00:00+00:00"),
		"DL200": flightJSON("Delta", "EWR", "2026-08-31T09:00:00+00:00", "ATL", "2026-08-31T12:00:00+00:00"),
	})
	defer server.Close()

	_, err := testClient(server).CalculateLayover(context.Background(), "UA100", "DL200")
	assert.ErrorIs(t, err, flights.ErrNegativeLayover)
}

func TestLookupFlight_NoAPIKey(t *testing.T) {
	client := flights.NewClient("")
	_, err := client.LookupFlight(context.Background(), "UA100")
	assert.ErrorIs(t, err, flights.ErrNoAPIKey)
}

func TestEndpoint_BestTimePriority(t *testing.T) {
	e := flights.Endpoint{
		Scheduled: "2026-08-31T10:00:00+00:00",
		Estimated: "2026-08-31T10:10:00+00:00",
		Actual:    "2026-08-31T10:20:00+00:00",
	}

	got, err := e.BestTime()
	require.NoError(t, err)
	assert.Equal(t, 20, got.Minute(), "actual time wins over estimated and scheduled")

	e.Actual = ""
	got, err = e.BestTime()
	require.NoError(t, err)
	assert.Equal(t, 10, got.Minute(), "estimated wins over scheduled")

	e.Estimated = ""
	got, err = e.BestTime()
	require.NoError(t, err)
	assert.Equal(t, 0, got.Minute())

	e.Scheduled = ""
	_, err = e.BestTime()
	assert.ErrorIs(t, err, flights.ErrInvalidTimes)
}
