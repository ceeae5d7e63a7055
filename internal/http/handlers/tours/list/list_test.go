package list

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, params url.Values) ([]*models.Tour, error) {
	args := m.Called(ctx, params)
	res, _ := args.Get(0).([]*models.Tour)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestListHandler(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		params      url.Values
		result      []*models.Tour
		err         error
		wantStatus  int
		wantResults int
	}{
		{
			name:        "фильтр и сортировка",
			url:         "/api/v1/tours?difficulty=easy&price[lt]=1500&sort=-price",
			params:      url.Values{"difficulty": {"easy"}, "price[lt]": {"1500"}, "sort": {"-price"}},
			result:      []*models.Tour{{Name: "The Forest Hiker", Price: 397}, {Name: "The City Wanderer", Price: 1197}},
			wantStatus:  http.StatusOK,
			wantResults: 2,
		},
		{
			name:       "некорректное значение",
			url:        "/api/v1/tours?duration[gte]=five",
			params:     url.Values{"duration[gte]": {"five"}},
			err:        apperr.Cast("duration", "five"),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("List", mock.Anything, tt.params).Return(tt.result, tt.err).Once()
			h := New(newNoopLogger(), svc, response.NewErrors(newNoopLogger(), false))

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				var resp response.Response
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				require.NotNil(t, resp.Results)
				assert.Equal(t, tt.wantResults, *resp.Results)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestTopFiveCheap(t *testing.T) {
	svc := new(MockService)
	want := url.Values{
		"limit":  {"5"},
		"sort":   {"-ratingsAverage,price"},
		"fields": {"name,duration,price,difficulty,summary,ratingsAverage"},
		"page":   {"1"},
	}
	svc.On("List", mock.Anything, want).Return([]*models.Tour{}, nil).Once()
	h := TopFiveCheap(New(newNoopLogger(), svc, response.NewErrors(newNoopLogger(), false)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours/top-five-cheap?limit=50&page=1", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "limit=50&page=1", req.URL.RawQuery, "исходный запрос не меняется")
	svc.AssertExpectations(t)
}
