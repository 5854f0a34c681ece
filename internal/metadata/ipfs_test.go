package metadata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCID = "bafkreigh2akiscaildcqabsyg3dfr6chu3fgpregiymsck7e7aqa4s52zy"

func TestIPFSBackend_Put(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v0/add", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("cid-version"))
		assert.Equal(t, "true", r.URL.Query().Get("pin"))

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		body, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"n"}`, string(body))

		json.NewEncoder(w).Encode(addResponse{Name: "metadata.json", Hash: testCID, Size: "12"})
	}))
	defer server.Close()

	c, err := NewIPFSBackend(server.URL+"/", nil).Put(context.Background(), []byte(`{"name":"n"}`))
	require.NoError(t, err)
	assert.Equal(t, testCID, c.String())
}

func TestIPFSBackend_PutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "repo locked", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewIPFSBackend(server.URL, nil).Put(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repo locked")
}

func TestIPFSBackend_BadHash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"Name":"f","Hash":"Qm","Size":"1"}`)
	}))
	defer server.Close()

	_, err := NewIPFSBackend(server.URL, nil).Put(context.Background(), []byte("x"))
	assert.Error(t, err)
}
