//go:build integration

package integration

import (
	"os"
	"testing"

	"github.com/cucumber/godog"

	"github.com/jsamuelsen/go-api-errors/test/bdd"
)

// baseURL is the address of the running service under test.
func baseURL() string {
	if url := os.Getenv("BASE_URL"); url != "" {
		return url
	}

	return "http://localhost:8080"
}

// TestFeatures runs the feature suite against a running service. Scenarios
// tagged @inprocess rely on debug routes the binary does not serve.
func TestFeatures(t *testing.T) {
	tags := "~@inprocess"
	if extra := os.Getenv("GODOG_TAGS"); extra != "" {
		tags += " && " + extra
	}

	suite := godog.TestSuite{
		ScenarioInitializer: bdd.Initializer(baseURL),
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../features"},
			TestingT: t,
			Tags:     tags,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
