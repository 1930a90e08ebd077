package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flowforge-backend/pkg/common"
)

func TestLogging_AttachesRequestIDToContext(t *testing.T) {
	var got string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID, ok := common.GetRequestID(r.Context())
		require.True(t, ok)
		got = reqID
	})

	handler := chimiddleware.RequestID(Logging(zap.NewNop())(inner))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.NotEmpty(t, got, "downstream handlers see the request id")
}
