// Command smoke-check exercises a running deployment: health, the public
// read endpoints and, when SMOKE_ADMIN_PASSWORD is set, the login/session/logout
// cycle and a few admin reads.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/consultorio-web/consultorio-backend/types"
)

const (
	baseURLEnvVar  = "API_BASE_URL"
	passwordEnvVar = "SMOKE_ADMIN_PASSWORD"
	userEnvVar     = "SMOKE_ADMIN_USER"
	defaultBaseURL = "http://localhost:8080"
)

type check struct {
	Name   string
	Method string
	Path   string
	Body   any
	Auth   bool
	Want   int
}

type result struct {
	Name   string
	OK     bool
	Status int
	Detail string
}

var publicChecks = []check{
	{Name: "Liveness", Method: http.MethodGet, Path: "/health/liveness", Want: http.StatusOK},
	{Name: "Readiness", Method: http.MethodGet, Path: "/health/readiness", Want: http.StatusOK},
	{Name: "Content", Method: http.MethodGet, Path: "/v1/contenido", Want: http.StatusOK},
	{Name: "Services", Method: http.MethodGet, Path: "/v1/servicios", Want: http.StatusOK},
	{Name: "Resources", Method: http.MethodGet, Path: "/v1/recursos", Want: http.StatusOK},
	{Name: "Admin without session", Method: http.MethodGet, Path: "/v1/admin/estadisticas", Want: http.StatusUnauthorized},
}

var adminChecks = []check{
	{Name: "Session", Method: http.MethodGet, Path: "/v1/admin/session", Auth: true, Want: http.StatusOK},
	{Name: "Stats", Method: http.MethodGet, Path: "/v1/admin/estadisticas", Auth: true, Want: http.StatusOK},
	{Name: "Submissions", Method: http.MethodGet, Path: "/v1/admin/respuestas", Auth: true, Want: http.StatusOK},
	{Name: "Forms", Method: http.MethodGet, Path: "/v1/admin/formularios", Auth: true, Want: http.StatusOK},
	{Name: "Logout", Method: http.MethodPost, Path: "/v1/admin/logout", Auth: true, Want: http.StatusOK},
	{Name: "Session after logout", Method: http.MethodGet, Path: "/v1/admin/session", Auth: true, Want: http.StatusUnauthorized},
}

func main() {
	baseURL := os.Getenv(baseURLEnvVar)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	fmt.Printf("Target API: %s\n\n", baseURL)

	c := &checker{client: &http.Client{Timeout: 10 * time.Second}, baseURL: baseURL}
	results := c.run(context.Background(), os.Getenv(userEnvVar), os.Getenv(passwordEnvVar))

	passed := 0
	for _, r := range results {
		if r.OK {
			passed++
			fmt.Printf("PASS %-24s HTTP %d\n", r.Name, r.Status)
		} else {
			fmt.Printf("FAIL %-24s HTTP %d %s\n", r.Name, r.Status, r.Detail)
		}
	}
	fmt.Printf("\nPassed: %d/%d\n", passed, len(results))
	if passed != len(results) {
		os.Exit(1)
	}
}

type checker struct {
	client  *http.Client
	baseURL string
}

// run executes the public checks and, given a password, the admin ones.
func (c *checker) run(ctx context.Context, username, password string) []result {
	var results []result
	for _, ch := range publicChecks {
		results = append(results, c.do(ctx, ch, ""))
	}
	if password == "" {
		return results
	}

	token, res := c.login(ctx, username, password)
	results = append(results, res)
	if token == "" {
		return results
	}
	for _, ch := range adminChecks {
		results = append(results, c.do(ctx, ch, token))
	}
	return results
}

func (c *checker) login(ctx context.Context, username, password string) (string, result) {
	ch := check{Name: "Login", Method: http.MethodPost, Path: "/api/login", Body: types.LoginRequest{Username: username, Password: password}, Want: http.StatusOK}
	status, body, err := c.send(ctx, ch, "")
	res := result{Name: ch.Name, Status: status}
	if err != nil {
		res.Detail = err.Error()
		return "", res
	}

	var resp types.LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil || !resp.Success || resp.Token == "" {
		res.Detail = string(body)
		return "", res
	}
	res.OK = status == ch.Want
	return resp.Token, res
}

func (c *checker) do(ctx context.Context, ch check, token string) result {
	status, body, err := c.send(ctx, ch, token)
	res := result{Name: ch.Name, Status: status, OK: err == nil && status == ch.Want}
	switch {
	case err != nil:
		res.Detail = err.Error()
	case !res.OK:
		res.Detail = fmt.Sprintf("expected %d: %s", ch.Want, body)
	}
	return res
}

func (c *checker) send(ctx context.Context, ch check, token string) (int, []byte, error) {
	var body io.Reader
	if ch.Body != nil {
		payload, err := json.Marshal(ch.Body)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, ch.Method, c.baseURL+ch.Path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if ch.Auth && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	return resp.StatusCode, data, err
}
