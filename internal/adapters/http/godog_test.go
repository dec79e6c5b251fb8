package http

import (
	"net/http/httptest"
	"testing"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/go-api-errors/test/bdd"
)

func TestFeatures(t *testing.T) {
	s, err := buildStack(testConfig())
	require.NoError(t, err)

	server := httptest.NewServer(s.engine)
	t.Cleanup(server.Close)

	suite := godog.TestSuite{
		ScenarioInitializer: bdd.Initializer(func() string { return server.URL }),
		Options: &godog.Options{
			Format:   "progress",
			Paths:    []string{"../../../test/features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
