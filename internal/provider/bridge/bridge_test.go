package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verigate/internal/provider"
	"verigate/internal/provider/contract"
	"verigate/internal/provider/fake"
)

const testAPIKey = "sk-test"

// newProviderServer exposes a fake provider over the Bridge REST surface.
func newProviderServer(t *testing.T, backend *fake.Provider) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get(headerAPIKey) != testAPIKey {
				writeAPIError(w, http.StatusUnauthorized, "invalid api key")
				return
			}
			if req.Method == http.MethodPost && req.Header.Get(headerIdempotencyKey) == "" {
				writeAPIError(w, http.StatusBadRequest, "missing idempotency key")
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/v0/customers", func(w http.ResponseWriter, req *http.Request) {
		var payload provider.CustomerPayload
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeAPIError(w, http.StatusBadRequest, "bad json")
			return
		}
		writeResult(w, backend.CreateCustomer(req.Context(), payload))
	})
	r.Put("/v0/customers/{id}", func(w http.ResponseWriter, req *http.Request) {
		var payload provider.CustomerPayload
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeAPIError(w, http.StatusBadRequest, "bad json")
			return
		}
		writeResult(w, backend.UpdateCustomer(req.Context(), chi.URLParam(req, "id"), payload))
	})
	r.Get("/v0/customers/{id}", func(w http.ResponseWriter, req *http.Request) {
		writeResult(w, backend.GetCustomer(req.Context(), chi.URLParam(req, "id")))
	})
	r.Get("/v0/customers/{id}/associated_persons", func(w http.ResponseWriter, req *http.Request) {
		res := backend.ListAssociatedPersons(req.Context(), chi.URLParam(req, "id"))
		persons, err := res.Unwrap()
		if err != nil {
			writeProviderError(w, res.Err())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": len(persons), "data": persons})
	})
	r.Post("/v0/customers/{id}/associated_persons", func(w http.ResponseWriter, req *http.Request) {
		var payload provider.PersonPayload
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeAPIError(w, http.StatusBadRequest, "bad json")
			return
		}
		writeResult(w, backend.CreateAssociatedPerson(req.Context(), chi.URLParam(req, "id"), payload))
	})
	r.Get("/v0/customers/{id}/kyc_link", func(w http.ResponseWriter, req *http.Request) {
		writeResult(w, backend.IssueVerificationLink(req.Context(), chi.URLParam(req, "id")))
	})
	r.Get("/v0/webhooks", func(w http.ResponseWriter, req *http.Request) {
		res := backend.ListWebhooks(req.Context())
		hooks, _ := res.Value()
		writeJSON(w, http.StatusOK, map[string]any{"data": hooks})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func writeResult[T any](w http.ResponseWriter, res provider.Result[T]) {
	v, err := res.Unwrap()
	if err != nil {
		writeProviderError(w, res.Err())
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func writeProviderError(w http.ResponseWriter, err *provider.Error) {
	status := err.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	writeAPIError(w, status, err.Message)
}

func writeAPIError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"code": http.StatusText(status), "message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestBridgeContract(t *testing.T) {
	s := &contract.Suite{
		Name: "bridge",
		NewClient: func(t *testing.T) provider.Client {
			srv := newProviderServer(t, fake.New())
			return New(srv.URL, testAPIKey, 5*time.Second)
		},
	}
	s.Run(t)
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveProviderCall(op, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, op+":"+outcome)
}

func TestBridgeClient(t *testing.T) {
	ctx := context.Background()

	t.Run("sends api key and idempotency key on create", func(t *testing.T) {
		var gotKey, gotIdem string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get(headerAPIKey)
			gotIdem = r.Header.Get(headerIdempotencyKey)
			writeJSON(w, http.StatusCreated, map[string]string{"id": "cus_1", "status": "not_started"})
		}))
		defer srv.Close()

		c := New(srv.URL, "secret", time.Second, WithIdempotencyKeys(func() string { return "idem-1" }))
		ref, err := c.CreateCustomer(ctx, provider.CustomerPayload{Type: provider.CustomerIndividual}).Unwrap()
		require.NoError(t, err)
		assert.Equal(t, "cus_1", ref.ID)
		assert.JSONEq(t, `{"id":"cus_1","status":"not_started"}`, string(ref.Raw))
		assert.Equal(t, "secret", gotKey)
		assert.Equal(t, "idem-1", gotIdem)
	})

	t.Run("no idempotency key on reads", func(t *testing.T) {
		var gotIdem string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotIdem = r.Header.Get(headerIdempotencyKey)
			writeJSON(w, http.StatusOK, map[string]string{"id": "cus_1", "status": "active"})
		}))
		defer srv.Close()

		_, err := New(srv.URL, "k", time.Second).GetCustomer(ctx, "cus_1").Unwrap()
		require.NoError(t, err)
		assert.Empty(t, gotIdem)
	})

	t.Run("maps status codes to categories", func(t *testing.T) {
		cases := []struct {
			status   int
			category provider.ErrorCategory
		}{
			{http.StatusUnauthorized, provider.ErrorAuthentication},
			{http.StatusForbidden, provider.ErrorAuthentication},
			{http.StatusNotFound, provider.ErrorNotFound},
			{http.StatusBadRequest, provider.ErrorValidation},
			{http.StatusUnprocessableEntity, provider.ErrorValidation},
			{http.StatusTooManyRequests, provider.ErrorRateLimited},
			{http.StatusBadGateway, provider.ErrorProviderOutage},
			{http.StatusServiceUnavailable, provider.ErrorProviderOutage},
			{http.StatusConflict, provider.ErrorContractMismatch},
		}
		for _, tc := range cases {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeAPIError(w, tc.status, "provider says no")
			}))
			res := New(srv.URL, "k", time.Second).GetCustomer(ctx, "cus_1")
			srv.Close()

			require.False(t, res.OK(), "status %d", tc.status)
			assert.Equal(t, tc.category, res.Err().Category, "status %d", tc.status)
			assert.Equal(t, tc.status, res.Err().StatusCode)
		}
	})

	t.Run("validation message comes from provider body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeAPIError(w, http.StatusBadRequest, "email is invalid")
		}))
		defer srv.Close()

		res := New(srv.URL, "k", time.Second).CreateCustomer(ctx, provider.CustomerPayload{Type: provider.CustomerIndividual})
		require.False(t, res.OK())
		assert.Equal(t, "email is invalid", res.Err().Message)
	})

	t.Run("malformed body is bad_data", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{not json`))
		}))
		defer srv.Close()

		res := New(srv.URL, "k", time.Second).GetCustomer(ctx, "cus_1")
		require.False(t, res.OK())
		assert.Equal(t, provider.ErrorBadData, res.Err().Category)
	})

	t.Run("deadline maps to timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		res := New(srv.URL, "k", 50*time.Millisecond).GetCustomer(ctx, "cus_1")
		require.False(t, res.OK())
		assert.Equal(t, provider.ErrorTimeout, res.Err().Category)
		assert.True(t, res.Err().Retryable)
	})

	t.Run("create without id is contract mismatch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "active"})
		}))
		defer srv.Close()

		res := New(srv.URL, "k", time.Second).CreateCustomer(ctx, provider.CustomerPayload{Type: provider.CustomerIndividual})
		require.False(t, res.OK())
		assert.Equal(t, provider.ErrorContractMismatch, res.Err().Category)
	})

	t.Run("observer records outcome per operation", func(t *testing.T) {
		srv := newProviderServer(t, fake.New())
		obs := &recordingObserver{}
		c := New(srv.URL, testAPIKey, time.Second, WithObserver(obs))

		c.GetCustomer(ctx, "missing")
		c.ListWebhooks(ctx)

		assert.Equal(t, []string{"get_customer:not_found", "list_webhooks:ok"}, obs.calls)
	})

	t.Run("wrong api key is authentication failure", func(t *testing.T) {
		srv := newProviderServer(t, fake.New())
		res := New(srv.URL, "wrong", time.Second).ListWebhooks(ctx)
		require.False(t, res.OK())
		assert.Equal(t, provider.ErrorAuthentication, res.Err().Category)
	})
}

func TestParseResponse(t *testing.T) {
	t.Run("empty success body is accepted", func(t *testing.T) {
		var out map[string]any
		raw, err := parseResponse(provider.OpGetCustomer, http.StatusNoContent, nil, &out)
		assert.Nil(t, err)
		assert.Empty(t, raw)
	})

	t.Run("falls back to status text without message", func(t *testing.T) {
		_, err := parseResponse(provider.OpGetCustomer, http.StatusTooManyRequests, []byte(`oops`), nil)
		require.NotNil(t, err)
		assert.Equal(t, "Too Many Requests", err.Message)
		assert.True(t, err.Retryable)
	})
}
