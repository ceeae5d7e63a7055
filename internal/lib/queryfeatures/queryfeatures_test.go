package queryfeatures

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/magabrotheeeer/natours/internal/apperr"
)

var tourOptions = Options{
	Schema: Schema{
		"price":          Number,
		"duration":       Number,
		"ratingsAverage": Number,
		"secretTour":     Bool,
		"startDates":     Date,
		"difficulty":     String,
	},
}

func mustParse(t *testing.T, raw string) url.Values {
	t.Helper()
	v, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return v
}

func TestBuild_Filter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		base  bson.M
		want  bson.M
	}{
		{
			name:  "reserved keys are dropped",
			query: "page=2&sort=price&limit=5&fields=name",
			want:  bson.M{},
		},
		{
			name:  "equality with cast",
			query: "difficulty=easy&duration=5",
			want:  bson.M{"difficulty": "easy", "duration": float64(5)},
		},
		{
			name:  "comparison operators",
			query: "duration[gte]=5&price[lt]=1500&price[gt]=100",
			want: bson.M{
				"duration": bson.M{"$gte": float64(5)},
				"price":    bson.M{"$lt": float64(1500), "$gt": float64(100)},
			},
		},
		{
			name:  "repeated parameter becomes $in",
			query: "duration=5&duration=9",
			want:  bson.M{"duration": bson.M{"$in": bson.A{float64(5), float64(9)}}},
		},
		{
			name:  "base filter kept",
			query: "difficulty=easy",
			base:  bson.M{"secretTour": bson.M{"$ne": true}},
			want:  bson.M{"secretTour": bson.M{"$ne": true}, "difficulty": "easy"},
		},
		{
			name:  "clash with base filter uses $and",
			query: "secretTour=true",
			base:  bson.M{"secretTour": bson.M{"$ne": true}},
			want: bson.M{"$and": bson.A{
				bson.M{"secretTour": bson.M{"$ne": true}},
				bson.M{"secretTour": true},
			}},
		},
		{
			name:  "dates are parsed",
			query: "startDates[gte]=2021-01-01",
			want:  bson.M{"startDates": bson.M{"$gte": time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Build(tt.base, mustParse(t, tt.query), tourOptions)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Filter)
		})
	}
}

func TestBuild_FilterErrors(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		message string
	}{
		{name: "cast failure", query: "price[gte]=cheap", message: "cheap is not a valid data for price"},
		{name: "unknown operator", query: "price[ne]=5", message: "Unsupported operator ne for price"},
		{name: "operator injection", query: "price[$where]=1", message: "Invalid query parameter price[$where]"},
		{name: "bad bool", query: "secretTour=maybe", message: "maybe is not a valid data for secretTour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(nil, mustParse(t, tt.query), tourOptions)
			require.Error(t, err)
			d := apperr.Inspect(err)
			assert.Equal(t, apperr.CodeValidation, d.Code)
			assert.Equal(t, tt.message, d.Message)
		})
	}
}

func TestBuild_Sort(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bson.D
	}{
		{
			name:  "default sort is newest first",
			query: "",
			want:  bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}},
		},
		{
			name:  "descending price then name",
			query: "sort=-price,name",
			want:  bson.D{{Key: "price", Value: -1}, {Key: "name", Value: 1}, {Key: "_id", Value: 1}},
		},
		{
			name:  "explicit _id is not duplicated",
			query: "sort=-_id",
			want:  bson.D{{Key: "_id", Value: -1}},
		},
		{
			name:  "last sort parameter wins",
			query: "sort=price&sort=-duration",
			want:  bson.D{{Key: "duration", Value: -1}, {Key: "_id", Value: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Build(nil, mustParse(t, tt.query), tourOptions)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Sort)
		})
	}
}

func TestBuild_Fields(t *testing.T) {
	opts := tourOptions
	opts.Hidden = []string{"password"}

	tests := []struct {
		name    string
		query   string
		want    bson.M
		wantErr bool
	}{
		{name: "default excludes version", query: "", want: bson.M{"__v": 0, "password": 0}},
		{name: "inclusion", query: "fields=name,duration,price", want: bson.M{"name": 1, "duration": 1, "price": 1}},
		{name: "exclusion", query: "fields=-summary", want: bson.M{"summary": 0, "__v": 0, "password": 0}},
		{name: "hidden field cannot be selected", query: "fields=name,password", want: bson.M{"name": 1}},
		{name: "inclusion without id", query: "fields=name,-_id", want: bson.M{"name": 1, "_id": 0}},
		{name: "mixed projection", query: "fields=name,-price", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Build(nil, mustParse(t, tt.query), opts)
			if tt.wantErr {
				assert.True(t, apperr.Is(err, apperr.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Projection)
		})
	}
}

func TestBuild_Paginate(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantSkip  int64
		wantLimit int64
		wantPage  int64
	}{
		{name: "defaults", query: "", wantSkip: 0, wantLimit: 100, wantPage: 1},
		{name: "third page of ten", query: "page=3&limit=10", wantSkip: 20, wantLimit: 10, wantPage: 3},
		{name: "garbage falls back", query: "page=abc&limit=-4", wantSkip: 0, wantLimit: 100, wantPage: 1},
		{name: "far page is allowed", query: "page=1000&limit=2", wantSkip: 1998, wantLimit: 2, wantPage: 1000},
		{name: "limit is capped", query: "page=2&limit=5000", wantSkip: MaxLimit, wantLimit: MaxLimit, wantPage: 2},
		{name: "max page does not wrap negative", query: "page=9223372036854775807&limit=2", wantSkip: MaxSkip, wantLimit: 2, wantPage: math.MaxInt64},
		{name: "huge page does not wrap to first page", query: "page=4611686018427387905&limit=4", wantSkip: MaxSkip, wantLimit: 4, wantPage: 4611686018427387905},
		{name: "last page before clamp", query: "page=1000001&limit=1000", wantSkip: 1000000000, wantLimit: 1000, wantPage: 1000001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Build(nil, mustParse(t, tt.query), tourOptions)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSkip, q.Skip)
			assert.Equal(t, tt.wantLimit, q.Limit)
			assert.Equal(t, tt.wantPage, q.Page)

			opts := q.FindOptions()
			require.NotNil(t, opts.Skip)
			require.NotNil(t, opts.Limit)
			assert.Equal(t, tt.wantSkip, *opts.Skip)
			assert.Equal(t, tt.wantLimit, *opts.Limit)
		})
	}
}

func TestBuild_HiddenFieldsCannotBeQueried(t *testing.T) {
	opts := Options{Hidden: []string{"password"}}

	for _, raw := range []string{"password=x", "password[gt]=a", "sort=password"} {
		_, err := Build(nil, mustParse(t, raw), opts)
		assert.True(t, apperr.Is(err, apperr.CodeValidation), raw)
	}
}

func TestFeatures_FirstErrorSticks(t *testing.T) {
	f := New(nil, mustParse(t, "price[gte]=x&sort=bad field"), tourOptions).Filter().Sort()
	_, err := f.Query()
	require.Error(t, err)
	assert.Contains(t, apperr.Inspect(err).Message, "x is not a valid data for price")
}
