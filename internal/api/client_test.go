// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleuronvilik/toplivres-devgdk/internal/api"
	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/apperr"
)

// staticCreds is a fixed-token credential source.
type staticCreds string

func (c staticCreds) Token() string { return string(c) }

/*
TestClient_RequestHeaders verifies every request carries the accept header,
a correlation ID, the bearer token, and, on mutations only, the CSRF
header.
*/
func TestClient_RequestHeaders(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		got = request.Clone(context.Background())
		writer.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := api.NewClient(server.URL, server.Client(), nil, staticCreds("tok-123"), func() string {
		return "csrf-456"
	})

	_, err := client.Books(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "Bearer tok-123", got.Header.Get("Authorization"))
	assert.NotEmpty(t, got.Header.Get(api.HeaderXRequestID))
	assert.Empty(t, got.Header.Get(api.HeaderCSRFToken), "GET must not carry CSRF")

	err = client.CancelOrder(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "csrf-456", got.Header.Get(api.HeaderCSRFToken))
}

/*
TestClient_DecodesFieldErrors verifies the {errors:{field:[...]}} payload
shape becomes structured details.
*/
func TestClient_DecodesFieldErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = writer.Write([]byte(`{"errors":{"title":["obligatoire","trop court"]}}`))
	}))
	defer server.Close()

	client := api.NewClient(server.URL, server.Client(), nil, staticCreds(""), nil)

	_, err := client.AddBook(context.Background(), "", 0)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusUnprocessableEntity, ae.HTTPStatus)
	require.Len(t, ae.Details, 2)
	assert.Equal(t, "title", ae.Details[0].Field)
}

/*
TestClient_DecodesMessageErrors verifies the {msg:"..."} payload shape and
the status-to-code mapping.
*/
func TestClient_DecodesMessageErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   string
	}{
		{"unauthorized", 401, `{"msg":"non autorisé"}`, "UNAUTHORIZED"},
		{"not_found", 404, `{"msg":"introuvable"}`, "NOT_FOUND"},
		{"server_error", 500, `{}`, "SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				writer.WriteHeader(tt.status)
				_, _ = writer.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := api.NewClient(server.URL, server.Client(), nil, staticCreds(""), nil)
			_, err := client.Me(context.Background())

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, tt.code, ae.Code)
			assert.Equal(t, tt.status, ae.HTTPStatus)
		})
	}
}

/*
TestClient_OrderForbiddenBecomesBlocked verifies the 403 on order
submission is reclassified as the order-blocked business signal, carrying
the server's banner message.
*/
func TestClient_OrderForbiddenBecomesBlocked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusForbidden)
		_, _ = writer.Write([]byte(`{"msg":"Tu as déjà une demande en cours."}`))
	}))
	defer server.Close()

	client := api.NewClient(server.URL, server.Client(), nil, staticCreds("tok"), func() string { return "csrf" })

	err := client.CreateOrder(context.Background(), []api.OperationItem{{BookID: 1, Quantity: 2}})
	require.True(t, apperr.IsBlocked(err))
	assert.Equal(t, "Tu as déjà une demande en cours.", apperr.As(err).Message)
}

/*
TestOperation_Time verifies date parsing across the server's historical
formats, with the unparsable fallback.
*/
func TestOperation_Time(t *testing.T) {
	tests := []struct {
		name string
		date string
		ok   bool
	}{
		{"rfc3339", "2026-08-01T10:00:00Z", true},
		{"datetime", "2026-08-01 10:00:00", true},
		{"date_only", "2026-08-01", true},
		{"empty", "", false},
		{"garbage", "yesterday", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := api.Operation{Date: tt.date}.Time()
			assert.Equal(t, tt.ok, ok)
		})
	}
}
