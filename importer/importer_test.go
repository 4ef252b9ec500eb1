package importer_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "capacity-planner/errors"
	"capacity-planner/importer"
	"capacity-planner/logging"
	"capacity-planner/models"
	"capacity-planner/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDecode(t *testing.T) {
	tests := map[string]struct {
		body    string
		want    []importer.Record
		wantErr bool
		errIs   error
	}{
		"array with snake case": {
			body: `[{"pool_name":"Eng","total_quantity":32},{"pool_name":"Ops","total_quantity":8}]`,
			want: []importer.Record{{PoolName: "Eng", TotalQuantity: 32}, {PoolName: "Ops", TotalQuantity: 8}},
		},
		"single object camel case": {
			body: `{"poolName":"Sales","totalQuantity":12}`,
			want: []importer.Record{{PoolName: "Sales", TotalQuantity: 12}},
		},
		"numeric string and alternate keys": {
			body: `[{"name":"Support","quantity":"5.5"},{"name":"Data","total":3}]`,
			want: []importer.Record{{PoolName: "Support", TotalQuantity: 5.5}, {PoolName: "Data", TotalQuantity: 3}},
		},
		"explicit zero total": {
			body: `[{"pool_name":"Eng","total_quantity":0}]`,
			want: []importer.Record{{PoolName: "Eng", TotalQuantity: 0}},
		},
		"missing total": {
			body:    `[{"pool_name":"Eng"},{"pool_name":"Ops","headcount":12}]`,
			wantErr: true,
			errIs:   apperrors.ErrInvalidDemand,
		},
		"null total": {
			body:    `[{"pool_name":"Eng","total_quantity":null}]`,
			wantErr: true,
			errIs:   apperrors.ErrInvalidDemand,
		},
		"nameless entries skipped": {
			body: `[{"total_quantity":4},{"pool_name":"Eng","total_quantity":1}]`,
			want: []importer.Record{{PoolName: "Eng", TotalQuantity: 1}},
		},
		"empty body": {
			body: "  ",
			want: nil,
		},
		"malformed json": {
			body:    `[{"pool_name":`,
			wantErr: true,
		},
		"negative total": {
			body:    `[{"pool_name":"Eng","total_quantity":-1}]`,
			wantErr: true,
			errIs:   apperrors.ErrInvalidDemand,
		},
		"non numeric string": {
			body:    `[{"pool_name":"Eng","total_quantity":"lots"}]`,
			wantErr: true,
			errIs:   apperrors.ErrInvalidDemand,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := importer.Decode([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					assert.ErrorIs(t, err, tt.errIs)
				}
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetch_Errors(t *testing.T) {
	tests := map[string]struct {
		status int
		body   string
		kind   importer.Kind
	}{
		"server error": {status: http.StatusBadGateway, body: "oops", kind: importer.KindServer},
		"not found":    {status: http.StatusNotFound, body: "", kind: importer.KindServer},
		"malformed":    {status: http.StatusOK, body: "{not json", kind: importer.KindPayload},
		"empty array":  {status: http.StatusOK, body: "[]", kind: importer.KindPayload},
		"all nameless": {status: http.StatusOK, body: `[{"total":3}]`, kind: importer.KindPayload},
		"no totals":    {status: http.StatusOK, body: `[{"pool_name":"Eng"}]`, kind: importer.KindPayload},
	}

	client := importer.NewClient()
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)

			_, err := client.Fetch(context.Background(), srv.URL)

			var se *importer.SyncError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.kind, se.Kind)
			assert.Equal(t, srv.URL, se.URL)
		})
	}
}

func TestFetch_EmptyIsNoRecords(t *testing.T) {
	srv := serve(t, http.StatusOK, "[]")

	_, err := importer.NewClient().Fetch(context.Background(), srv.URL)

	assert.ErrorIs(t, err, apperrors.ErrNoRecords)
}

func TestFetch_NetworkErrors(t *testing.T) {
	srv := serve(t, http.StatusOK, "[]")
	closedURL := srv.URL
	srv.Close()

	for name, url := range map[string]string{
		"invalid url": "not a url",
		"refused":     closedURL,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := importer.NewClient().Fetch(context.Background(), url)

			var se *importer.SyncError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, importer.KindNetwork, se.Kind)
		})
	}
}

func TestMapRecords(t *testing.T) {
	records := []importer.Record{{PoolName: "Eng", TotalQuantity: 32}, {PoolName: "Ops", TotalQuantity: 0}}

	pools := importer.MapRecords(records, 8)

	require.Len(t, pools, 2)
	assert.NotEqual(t, pools[0].ID, pools[1].ID)
	assert.NotEmpty(t, pools[0].ID)
	assert.Equal(t, "Eng", pools[0].Name)
	assert.Equal(t, []float64{4, 4, 4, 4, 4, 4, 4, 4}, pools[0].Demand)
	assert.Equal(t, models.Palette[0], pools[0].Color)
	assert.Equal(t, models.Palette[1], pools[1].Color)
	assert.Equal(t, models.Auto(0.0), pools[1].TalentPartners)
	assert.Zero(t, pools[1].TotalDemand())
}

func TestSync(t *testing.T) {
	srv := serve(t, http.StatusOK, `[{"pool_name":"Eng","total_quantity":32},{"poolName":"Ops","total":"16"}]`)
	ws, err := workspace.New(models.DefaultConfig(), models.DefaultPools(), workspace.WithLogger(logging.Discard()))
	require.NoError(t, err)

	pools, err := importer.NewClient().Sync(context.Background(), ws, srv.URL)

	require.NoError(t, err)
	require.Len(t, pools, 2)
	assert.Equal(t, "Eng", pools[0].Name)
	// 2 + 1 hires per week -> 3 TPs split 2:1
	assert.InDelta(t, 2.0, pools[0].TalentPartners.Value, 1e-9)
	assert.InDelta(t, 1.0, pools[1].TalentPartners.Value, 1e-9)
	assert.InDelta(t, 48, ws.Results().Aggregate.TotalDemand, 1e-9)
}

func TestSync_FailureKeepsState(t *testing.T) {
	srv := serve(t, http.StatusInternalServerError, "")
	ws, err := workspace.New(models.DefaultConfig(), models.DefaultPools(), workspace.WithLogger(logging.Discard()))
	require.NoError(t, err)
	before := ws.Pools()

	_, err = importer.NewClient().Sync(context.Background(), ws, srv.URL)

	assert.Error(t, err)
	assert.Equal(t, before, ws.Pools())
}

func TestSync_MissingTotalKeepsState(t *testing.T) {
	srv := serve(t, http.StatusOK, `[{"pool_name":"Eng","total_quantity":12},{"pool_name":"Ops"}]`)
	ws, err := workspace.New(models.DefaultConfig(), models.DefaultPools(), workspace.WithLogger(logging.Discard()))
	require.NoError(t, err)
	before := ws.Pools()

	_, err = importer.NewClient().Sync(context.Background(), ws, srv.URL)

	var se *importer.SyncError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, importer.KindPayload, se.Kind)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDemand)
	assert.Equal(t, before, ws.Pools())
}
