package fetch

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4 payload"))
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	body, err := c.Fetch(srv.URL + "/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 payload"), body)
}

func TestFetchNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	_, err := c.Fetch(srv.URL + "/missing.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := NewClient(time.Second)
	_, err := c.Fetch(srv.URL)
	assert.Error(t, err)
}

func TestNewClientDefaultTimeout(t *testing.T) {
	c := NewClient(0)
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
}
