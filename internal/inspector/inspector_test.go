package inspector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routelens/routelens/internal/endpoint"
	"github.com/routelens/routelens/internal/logger"
)

// testInspector points an inspector at an httptest server instead of the
// localhost:port address Connect would normally build.
func testInspector(t *testing.T, handler http.Handler) (*Inspector, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	port, err := strconv.Atoi(srv.URL[strings.LastIndex(srv.URL, ":")+1:])
	require.NoError(t, err)

	in := New(DefaultConfig(port), logger.NewJSON(logger.ErrorLevel))
	in.baseURL = srv.URL
	return in, srv
}

func TestConnect_HealthOK(t *testing.T) {
	in, _ := testInspector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	assert.NoError(t, in.Connect(context.Background()))
}

func TestConnect_NoHealthEndpointStillAlive(t *testing.T) {
	in, _ := testInspector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	assert.NoError(t, in.Connect(context.Background()))
}

func TestConnect_UnexpectedStatus(t *testing.T) {
	in, _ := testInspector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	assert.Error(t, in.Connect(context.Background()))
}

func TestConnect_ServerDown(t *testing.T) {
	in := New(DefaultConfig(1), logger.NewJSON(logger.ErrorLevel))
	assert.Error(t, in.Connect(context.Background()))
}

func TestInspect_ObjectResponse(t *testing.T) {
	in, _ := testInspector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))

	rec := &endpoint.Record{Method: "GET", Path: "/health"}
	n := in.Inspect(context.Background(), []*endpoint.Record{rec})

	assert.Equal(t, 1, n)
	require.Len(t, rec.DataShapes, 1)
	assert.Equal(t, "Response", rec.DataShapes[0].Name)
	assert.Equal(t, "Status response", rec.DataShapes[0].Description)
	assert.Contains(t, rec.DataShapes[0].ExampleBody, `"status"`)
}

func TestInspect_UserArrayResponse(t *testing.T) {
	in, _ := testInspector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": 1, "name": "a"},
			{"id": 2, "name": "b"},
		})
	}))

	rec := &endpoint.Record{Method: "GET", Path: "/api/users"}
	in.Inspect(context.Background(), []*endpoint.Record{rec})

	require.Len(t, rec.DataShapes, 1)
	assert.Equal(t, "Array of user objects", rec.DataShapes[0].Description)
	// Only the first element is shown as the example.
	assert.Equal(t, 1, strings.Count(rec.DataShapes[0].ExampleBody, `"id"`))
}

func TestInspect_EmptyArrayResponse(t *testing.T) {
	in, _ := testInspector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	}))

	rec := &endpoint.Record{Method: "GET", Path: "/items"}
	in.Inspect(context.Background(), []*endpoint.Record{rec})

	require.Len(t, rec.DataShapes, 1)
	assert.Equal(t, "Empty array response", rec.DataShapes[0].Description)
	assert.Equal(t, "[]", rec.DataShapes[0].ExampleBody)
}

func TestInspect_HTMLResponseUsesTitle(t *testing.T) {
	in, _ := testInspector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><head><title>Admin Panel</title></head><body></body></html>"))
	}))

	rec := &endpoint.Record{Method: "GET", Path: "/admin"}
	in.Inspect(context.Background(), []*endpoint.Record{rec})

	require.Len(t, rec.DataShapes, 1)
	assert.Equal(t, "HTML page: Admin Panel", rec.DataShapes[0].Description)
}

func TestInspect_SubstitutesParamExamples(t *testing.T) {
	var requested string
	in, _ := testInspector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 123}`))
	}))

	rec := &endpoint.Record{Method: "GET", Path: "/users/:id"}
	in.Inspect(context.Background(), []*endpoint.Record{rec})

	assert.Equal(t, "/users/123", requested)
}

func TestInspect_PostCreateRecordsRequestAndResponse(t *testing.T) {
	in, _ := testInspector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 3, "name": "Sample User"}`))
	}))

	rec := &endpoint.Record{Method: "POST", Path: "/api/users"}
	n := in.Inspect(context.Background(), []*endpoint.Record{rec})

	assert.Equal(t, 1, n)
	require.Len(t, rec.DataShapes, 2)
	assert.Equal(t, "Request", rec.DataShapes[0].Name)
	assert.Contains(t, rec.DataShapes[0].ExampleBody, "sample@example.com")
	assert.Equal(t, "Response", rec.DataShapes[1].Name)
}

func TestInspect_SkipsIneligibleMethods(t *testing.T) {
	hits := 0
	in, _ := testInspector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))

	records := []*endpoint.Record{
		{Method: "DELETE", Path: "/users/:id"},
		{Method: "POST", Path: "/orders"}, // no create/users hint
	}
	n := in.Inspect(context.Background(), records)

	assert.Equal(t, 0, n)
	assert.Equal(t, 0, hits)
}

func TestInspect_Non200SkippedQuietly(t *testing.T) {
	in, _ := testInspector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rec := &endpoint.Record{Method: "GET", Path: "/broken"}
	n := in.Inspect(context.Background(), []*endpoint.Record{rec})

	assert.Equal(t, 0, n)
	assert.Empty(t, rec.DataShapes)
}
