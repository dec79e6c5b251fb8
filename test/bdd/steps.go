// Package bdd holds the godog step definitions shared by the in-process and
// black-box feature suites.
package bdd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// envelope is the error/success body every API response uses.
type envelope struct {
	Success *bool               `json:"success"`
	Message any                 `json:"message"`
	Data    any                 `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

// scenario holds state shared across step definitions within a scenario.
type scenario struct {
	baseURL string
	client  *http.Client
	headers http.Header

	response *http.Response
	body     []byte
}

// Initializer returns a scenario initializer for a service at baseURL.
// baseURL is evaluated when each scenario starts.
func Initializer(baseURL func() string) func(*godog.ScenarioContext) {
	return func(ctx *godog.ScenarioContext) {
		sc := &scenario{client: &http.Client{Timeout: 10 * time.Second}}

		ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
			sc.baseURL = strings.TrimSuffix(baseURL(), "/")
			sc.headers = make(http.Header)
			sc.response = nil
			sc.body = nil

			return ctx, nil
		})

		ctx.Step(`^the service is running$`, sc.theServiceIsRunning)
		ctx.Step(`^I am signed in as "([^"]*)"$`, sc.header("X-User-ID"))
		ctx.Step(`^I have the role "([^"]*)"$`, sc.header("X-User-Roles"))
		ctx.Step(`^I prefer the language "([^"]*)"$`, sc.header("Accept-Language"))
		ctx.Step(`^I request (GET|POST|PUT|DELETE) "([^"]*)"$`, sc.iRequest)
		ctx.Step(`^I request (POST|PUT) "([^"]*)" with body:$`, sc.iRequestWithBody)
		ctx.Step(`^the response status should be (\d+)$`, sc.theResponseStatusShouldBe)
		ctx.Step(`^the response should contain "([^"]*)"$`, sc.theResponseShouldContain)
		ctx.Step(`^the response should not contain "([^"]*)"$`, sc.theResponseShouldNotContain)
		ctx.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, sc.theResponseHeaderShouldBe)
		ctx.Step(`^the response should be an error envelope$`, sc.theResponseShouldBeAnErrorEnvelope)
		ctx.Step(`^the envelope message should be "([^"]*)"$`, sc.theEnvelopeMessageShouldBe)
		ctx.Step(`^the envelope should list errors for "([^"]*)"$`, sc.theEnvelopeShouldListErrorsFor)
	}
}

func (sc *scenario) theServiceIsRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sc.baseURL+"/-/live", http.NoBody)
	if err != nil {
		return err
	}

	resp, err := sc.client.Do(req)
	if err != nil {
		return fmt.Errorf("service is not running at %s: %w", sc.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("liveness check failed with status %d", resp.StatusCode)
	}

	return nil
}

func (sc *scenario) header(name string) func(string) error {
	return func(value string) error {
		sc.headers.Set(name, value)
		return nil
	}
}

func (sc *scenario) iRequest(ctx context.Context, method, path string) error {
	return sc.send(ctx, method, path, nil)
}

func (sc *scenario) iRequestWithBody(ctx context.Context, method, path string, body *godog.DocString) error {
	return sc.send(ctx, method, path, strings.NewReader(body.Content))
}

func (sc *scenario) send(ctx context.Context, method, path string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, method, sc.baseURL+path, body)
	if err != nil {
		return err
	}

	req.Header = sc.headers.Clone()
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := sc.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	sc.response = resp

	sc.body, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	return nil
}

func (sc *scenario) theResponseStatusShouldBe(expected int) error {
	if sc.response == nil {
		return errors.New("no response received")
	}

	if sc.response.StatusCode != expected {
		return fmt.Errorf("expected status %d, got %d. Body: %s", expected, sc.response.StatusCode, sc.body)
	}

	return nil
}

func (sc *scenario) theResponseShouldContain(text string) error {
	if !strings.Contains(string(sc.body), text) {
		return fmt.Errorf("response body does not contain %q.\nBody: %s", text, sc.body)
	}

	return nil
}

func (sc *scenario) theResponseShouldNotContain(text string) error {
	if strings.Contains(string(sc.body), text) {
		return fmt.Errorf("response body leaks %q.\nBody: %s", text, sc.body)
	}

	return nil
}

func (sc *scenario) theResponseHeaderShouldBe(name, expected string) error {
	if sc.response == nil {
		return errors.New("no response received")
	}

	if got := sc.response.Header.Get(name); got != expected {
		return fmt.Errorf("expected header %s to be %q, got %q", name, expected, got)
	}

	return nil
}

func (sc *scenario) envelope() (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(sc.body, &env); err != nil {
		return nil, fmt.Errorf("response is not a JSON envelope: %w. Body: %s", err, sc.body)
	}

	if env.Success == nil {
		return nil, fmt.Errorf("response has no success field. Body: %s", sc.body)
	}

	return &env, nil
}

func (sc *scenario) theResponseShouldBeAnErrorEnvelope() error {
	env, err := sc.envelope()
	if err != nil {
		return err
	}

	if *env.Success {
		return errors.New("expected success to be false")
	}

	if env.Data != nil {
		return fmt.Errorf("expected data to be null, got %v", env.Data)
	}

	return nil
}

func (sc *scenario) theEnvelopeMessageShouldBe(expected string) error {
	env, err := sc.envelope()
	if err != nil {
		return err
	}

	if env.Message != expected {
		return fmt.Errorf("expected message %q, got %v", expected, env.Message)
	}

	return nil
}

func (sc *scenario) theEnvelopeShouldListErrorsFor(fields string) error {
	env, err := sc.envelope()
	if err != nil {
		return err
	}

	for _, field := range strings.Split(fields, ",") {
		field = strings.TrimSpace(field)
		if _, ok := env.Errors[field]; !ok {
			keys := make([]string, 0, len(env.Errors))
			for k := range env.Errors {
				keys = append(keys, k)
			}

			slices.Sort(keys)

			return fmt.Errorf("expected errors for %q, got fields %v", field, keys)
		}
	}

	return nil
}
