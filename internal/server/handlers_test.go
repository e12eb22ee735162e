package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stian-overasen/connectlog/internal/readiness"
	"github.com/stian-overasen/connectlog/internal/service"
)

type stubSummaries struct {
	gotMonths int
	summaries []service.Summary
	err       error
}

func (s *stubSummaries) Summaries(_ context.Context, months int) ([]service.Summary, error) {
	s.gotMonths = months
	return s.summaries, s.err
}

type stubActivities struct {
	gotMonths int
	records   []service.ActivityRecord
	err       error
}

func (s *stubActivities) Activities(_ context.Context, months int) ([]service.ActivityRecord, error) {
	s.gotMonths = months
	return s.records, s.err
}

type stubReadiness struct {
	gotEnergy *int
	result    *readiness.Result
	err       error
}

func (s *stubReadiness) Today(_ context.Context, energy *int) (*readiness.Result, error) {
	s.gotEnergy = energy
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func intPtr(v int) *int { return &v }

func newTestRouter(summaries SummaryProvider, activities ActivityProvider, rdns ReadinessProvider) *mux.Router {
	router := mux.NewRouter()
	NewHandler(router, summaries, activities, rdns)
	return router
}

func doRequest(t *testing.T, router *mux.Router, target string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("GET", target, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandleIndex(t *testing.T) {
	router := newTestRouter(&stubSummaries{}, &stubActivities{}, &stubReadiness{})

	rr := doRequest(t, router, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "connectlog", body["name"])
	assert.Contains(t, body["endpoints"], "/api/readiness")
}

func TestHandleSummary(t *testing.T) {
	summaries := &stubSummaries{
		summaries: []service.Summary{
			{Date: "2024-06-15", Steps: intPtr(8000)},
			{Date: "2024-06-14"},
		},
	}
	router := newTestRouter(summaries, &stubActivities{}, &stubReadiness{})

	rr := doRequest(t, router, "/api/summary")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, summaries.gotMonths, "default period is two months")

	var body struct {
		Summaries []service.Summary `json:"summaries"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Summaries, 2)
	assert.Equal(t, "2024-06-15", body.Summaries[0].Date)
	assert.Nil(t, body.Summaries[1].Steps)
}

func TestHandleSummaryMonthsParam(t *testing.T) {
	tests := []struct {
		months     string
		wantStatus int
		wantMonths int
	}{
		{"6", http.StatusOK, 6},
		{"1", http.StatusOK, 1},
		{"0", http.StatusBadRequest, 0},
		{"-2", http.StatusBadRequest, 0},
		{"abc", http.StatusBadRequest, 0},
		{"2.5", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.months, func(t *testing.T) {
			summaries := &stubSummaries{}
			router := newTestRouter(summaries, &stubActivities{}, &stubReadiness{})

			rr := doRequest(t, router, fmt.Sprintf("/api/summary?months=%s", tt.months))
			require.Equal(t, tt.wantStatus, rr.Code)

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantMonths, summaries.gotMonths)
			} else {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.Equal(t, "months must be a positive integer", body["error"])
			}
		})
	}
}

func TestHandleSummaryUpstreamError(t *testing.T) {
	summaries := &stubSummaries{err: errors.New("garmin down")}
	router := newTestRouter(summaries, &stubActivities{}, &stubReadiness{})

	rr := doRequest(t, router, "/api/summary")
	require.Equal(t, http.StatusBadGateway, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "failed to fetch summaries", body["error"])
}

func TestHandleActivities(t *testing.T) {
	duration := "1h 02m 03s"
	activities := &stubActivities{
		records: []service.ActivityRecord{
			{Datetime: "2024-06-15 07:30:00", Duration: &duration},
		},
	}
	router := newTestRouter(&stubSummaries{}, activities, &stubReadiness{})

	rr := doRequest(t, router, "/api/activities?months=3")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 3, activities.gotMonths)

	var body struct {
		Activities []service.ActivityRecord `json:"activities"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Activities, 1)
	assert.Equal(t, "2024-06-15 07:30:00", body.Activities[0].Datetime)
}

func TestHandleActivitiesUpstreamError(t *testing.T) {
	activities := &stubActivities{err: errors.New("garmin down")}
	router := newTestRouter(&stubSummaries{}, activities, &stubReadiness{})

	rr := doRequest(t, router, "/api/activities")
	require.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestHandleReadiness(t *testing.T) {
	rdns := &stubReadiness{
		result: &readiness.Result{
			Date:           "2024-06-15",
			OverallStatus:  readiness.StatusGreen,
			Recommendation: "Training OK",
		},
	}
	router := newTestRouter(&stubSummaries{}, &stubActivities{}, rdns)

	rr := doRequest(t, router, "/api/readiness")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, rdns.gotEnergy, "no energy param means nil, not zero")

	var body readiness.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, readiness.StatusGreen, body.OverallStatus)
	assert.Equal(t, "Training OK", body.Recommendation)
}

func TestHandleReadinessEnergyParam(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		rdns := &stubReadiness{result: &readiness.Result{OverallStatus: readiness.StatusYellow}}
		router := newTestRouter(&stubSummaries{}, &stubActivities{}, rdns)

		rr := doRequest(t, router, "/api/readiness?energy=7")
		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, rdns.gotEnergy)
		assert.Equal(t, 7, *rdns.gotEnergy)
	})

	t.Run("non-integer", func(t *testing.T) {
		router := newTestRouter(&stubSummaries{}, &stubActivities{}, &stubReadiness{})

		rr := doRequest(t, router, "/api/readiness?energy=7.5")
		require.Equal(t, http.StatusBadRequest, rr.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "energy must be an integer", body["error"])
	})

	t.Run("out of range", func(t *testing.T) {
		rdns := &stubReadiness{err: fmt.Errorf("%w: got 11", readiness.ErrInvalidEnergyScore)}
		router := newTestRouter(&stubSummaries{}, &stubActivities{}, rdns)

		rr := doRequest(t, router, "/api/readiness?energy=11")
		require.Equal(t, http.StatusBadRequest, rr.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Contains(t, body["error"], "energy score must be between 1 and 10")
	})
}

func TestHandleReadinessUpstreamError(t *testing.T) {
	rdns := &stubReadiness{err: errors.New("garmin down")}
	router := newTestRouter(&stubSummaries{}, &stubActivities{}, rdns)

	rr := doRequest(t, router, "/api/readiness")
	require.Equal(t, http.StatusBadGateway, rr.Code)
}
