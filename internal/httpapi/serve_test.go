package httpapi

import (
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServeWithOptions_GracefulShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	router := NewRouter(newTestSolver(t), Options{}, nil)
	server := &http.Server{Handler: router}
	sigCh := make(chan os.Signal, 1)

	done := make(chan error, 1)
	go func() {
		done <- ServeWithOptions(server, time.Second, zap.NewNop(), listener, sigCh)
	}()

	resp, err := http.Get("http://" + listener.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	sigCh <- os.Interrupt

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServeWithOptions_ListenerError(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, listener.Close())

	server := &http.Server{Handler: http.NotFoundHandler()}
	err = ServeWithOptions(server, time.Second, zap.NewNop(), listener, make(chan os.Signal))
	assert.ErrorContains(t, err, "serve http")
}
