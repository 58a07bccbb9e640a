package api_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/psiclinic/clinic-cli/internal/apiclient"
	"github.com/psiclinic/clinic-cli/internal/model"
	"github.com/psiclinic/clinic-cli/internal/stubserver"
	"github.com/psiclinic/clinic-cli/pkg/logger"
	"github.com/psiclinic/clinic-cli/pkg/metrics"
)

// bootAPI starts a seeded in-memory backend and returns a signed-in
// client pointed at it.
func bootAPI(t *testing.T) *apiclient.Client {
	t.Helper()

	store := stubserver.NewStore()
	require.NoError(t, stubserver.SeedDemo(store))

	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel})
	srv := stubserver.New(stubserver.Config{
		JWTSecret:     "integration-test-secret",
		TokenExpiry:   time.Hour,
		RatePerSecond: 1000,
		RateBurst:     1000,
	}, store, log)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client := apiclient.New(apiclient.Config{
		BaseURL:        ts.URL,
		Timeout:        5 * time.Second,
		RatePerSecond:  1000,
		RateBurst:      1000,
		BreakerMax:     50,
		BreakerTimeout: time.Second,
	}, metrics.New("test", nil), log)

	_, err := client.Auth().Login(context.Background(), &model.LoginRequest{
		Email:    stubserver.DemoEmail,
		Password: stubserver.DemoPassword,
	})
	require.NoError(t, err)

	return client
}
