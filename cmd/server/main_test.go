package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewHTTPServer(t *testing.T) {
	handler := http.NotFoundHandler()

	for _, port := range []string{"8081", ":8081"} {
		srv := newHTTPServer(port, handler)

		assert.Equal(t, ":8081", srv.Addr)
		assert.NotNil(t, srv.Handler)
		assert.Zero(t, srv.WriteTimeout)
		assert.Equal(t, 10*time.Second, srv.ReadHeaderTimeout)
	}
}
