package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	accesshandler "soulbound/internal/access/handler"
	accessports "soulbound/internal/access/ports"
	accessservice "soulbound/internal/access/service"
	accessstore "soulbound/internal/access/store"
	credentialhandler "soulbound/internal/credential/handler"
	credentialservice "soulbound/internal/credential/service"
	credentialstore "soulbound/internal/credential/store"
	"soulbound/internal/events"
	jwttoken "soulbound/internal/jwt_token"
	"soulbound/internal/platform/health"
	registryhandler "soulbound/internal/registry/handler"
	registryservice "soulbound/internal/registry/service"
	registrystore "soulbound/internal/registry/store"
	transport "soulbound/internal/transport/http"
	"soulbound/pkg/domain"
	"soulbound/pkg/secrets"
)

const (
	ownerIdentity = domain.Identity("0x00000000000000000000000000000000000000aa")
	ownerToken    = "e2e-owner-token"
	signingKey    = "e2e-signing-key"
)

var (
	hashOnce       sync.Once
	ownerTokenHash string
)

// TestContext runs the full API in-process and holds state between steps.
// Every scenario gets a fresh server with empty in-memory stores.
type TestContext struct {
	Server     *httptest.Server
	HTTPClient *http.Client
	JWT        *jwttoken.Service

	LastResponse     *http.Response
	LastResponseBody []byte
	LastCredentialID string

	identities map[string]domain.Identity
	nextID     int
}

// NewTestContext wires the services against in-memory stores and starts an
// in-process HTTP server.
func NewTestContext() *TestContext {
	hashOnce.Do(func() {
		hash, err := secrets.Hash(ownerToken)
		if err != nil {
			panic(err)
		}
		ownerTokenHash = hash
	})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	eventStore := events.NewInMemoryStore()
	publisher := events.NewPublisher(eventStore, events.WithLogger(log))

	registrySvc := registryservice.New(ownerIdentity, registrystore.NewInMemory(),
		registryservice.WithLogger(log),
		registryservice.WithEventPublisher(publisher),
	)

	credStore := credentialstore.NewInMemory()
	accessSvc := accessservice.New(ownerIdentity, accessports.NewStoreAdapter(credStore), accessstore.NewInMemory(),
		accessservice.WithLogger(log),
		accessservice.WithEventPublisher(publisher),
	)
	credentialSvc := credentialservice.New(registrySvc, credStore,
		credentialservice.WithLogger(log),
		credentialservice.WithEventPublisher(publisher),
		credentialservice.WithAccessGranter(accessSvc),
	)

	jwtSvc := jwttoken.NewService(signingKey, "soulbound", time.Hour)

	router := transport.New(transport.Config{
		Logger:         log,
		TokenValidator: jwtSvc,
		Owner:          ownerIdentity,
		OwnerTokenHash: ownerTokenHash,
		Registry:       registryhandler.New(registrySvc, log),
		Credentials:    credentialhandler.New(credentialSvc, log),
		Access:         accesshandler.New(accessSvc, log),
		Events:         events.NewHandler(eventStore, log),
		Health:         health.New(),
	})

	return &TestContext{
		Server:     httptest.NewServer(router),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		JWT:        jwtSvc,
		identities: make(map[string]domain.Identity),
	}
}

// Close shuts the in-process server down.
func (tc *TestContext) Close() {
	if tc.Server != nil {
		tc.Server.Close()
	}
}

// Identity maps a scenario-friendly name to a stable ledger identity. The
// mapping is per scenario; "the owner" always resolves to the registry owner.
func (tc *TestContext) Identity(name string) domain.Identity {
	if name == "the owner" {
		return ownerIdentity
	}
	if id, ok := tc.identities[name]; ok {
		return id
	}
	tc.nextID++
	id := domain.Identity(fmt.Sprintf("0x%040d", tc.nextID))
	tc.identities[name] = id
	return id
}

// CallerHeaders mints a bearer token for the named caller.
func (tc *TestContext) CallerHeaders(name string) (map[string]string, error) {
	token, err := tc.JWT.Generate(tc.Identity(name), time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to mint caller token: %w", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

// OwnerHeaders returns the registry-owner admin token header.
func (tc *TestContext) OwnerHeaders() map[string]string {
	return map[string]string{"X-Owner-Token": ownerToken}
}

// POST makes a POST request and stores the response.
func (tc *TestContext) POST(path string, body interface{}, headers map[string]string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), "POST", tc.Server.URL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return tc.do(req)
}

// GET makes a GET request and stores the response.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), "GET", tc.Server.URL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a field from the JSON response.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

// ResponseContains checks if the response body contains a field or text.
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}

	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err == nil {
		if _, ok := data[text]; ok {
			return true
		}
	}
	return false
}

// SaveCredentialID remembers the id of the credential in the last response so
// later steps can reference "the credential".
func (tc *TestContext) SaveCredentialID() {
	id, err := tc.GetResponseField("id")
	if err != nil {
		return
	}
	if n, ok := id.(float64); ok {
		tc.LastCredentialID = fmt.Sprintf("%.0f", n)
	}
}
