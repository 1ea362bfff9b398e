package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tienda/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"id": 1}`))
	}))
	defer server.Close()

	client := api.NewClient(server.URL, func() string { return "abc.def.ghi" })

	var out struct {
		ID int `json:"id"`
	}
	err := client.Do(context.Background(), http.MethodGet, "/productos/1", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc.def.ghi", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, 1, out.ID)
}

func TestClient_OmitsAuthorizationWithoutToken(t *testing.T) {
	var sawHeader bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawHeader = r.Header["Authorization"]
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := api.NewClient(server.URL, func() string { return "" })

	var out []struct{}
	err := client.Do(context.Background(), http.MethodGet, "/productos", nil, &out)
	require.NoError(t, err)
	assert.False(t, sawHeader, "no Authorization header should be sent for an anonymous session")
}

func TestClient_NoContentIsNotAParseFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := api.NewClient(server.URL, nil)

	out := map[string]string{"untouched": "yes"}
	err := client.Do(context.Background(), http.MethodDelete, "/productos/eliminar/1", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "yes", out["untouched"])
}

func TestClient_ErrorBodyMessageIsSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message": "producto con pedidos asociados"}`))
	}))
	defer server.Close()

	client := api.NewClient(server.URL, nil)

	err := client.Do(context.Background(), http.MethodDelete, "/productos/eliminar/1", nil, nil)
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "producto con pedidos asociados", apiErr.Message)
}

func TestClient_GenericMessageWhenErrorBodyIsNotJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := api.NewClient(server.URL, nil)

	err := client.Do(context.Background(), http.MethodGet, "/pedidos", nil, nil)
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "server error 502", apiErr.Message)
}

func TestClient_NotFoundDetection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "Pedido no encontrado"}`))
	}))
	defer server.Close()

	client := api.NewClient(server.URL, nil)

	err := client.Do(context.Background(), http.MethodGet, "/pedidos/obtener/99", nil, nil)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}
