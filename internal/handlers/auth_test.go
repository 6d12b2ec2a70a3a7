package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	mux, users, _ := newTestMux(t)

	body := registerUser(t, mux, "Alice", "alice@x.com", "secret1")
	assert.Equal(t, "Alice", body["name"])
	assert.Equal(t, "alice@x.com", body["email"])
	assert.NotEmpty(t, body["id"])
	assert.NotEmpty(t, body["created_at"])
	// The plaintext never appears in responses or storage
	assert.NotContains(t, body, "password")

	id, err := uuid.Parse(body["id"].(string))
	require.NoError(t, err)
	stored, ok := users.get(id)
	require.True(t, ok)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
}

func TestRegister_Validation(t *testing.T) {
	mux, _, _ := newTestMux(t)

	cases := []struct {
		name string
		body string
	}{
		{"short name", `{"name":"A","email":"a@x.com","password":"secret1"}`},
		{"one rune name", `{"name":"é","email":"a@x.com","password":"secret1"}`},
		{"long name", `{"name":"` + strings.Repeat("A", 51) + `","email":"a@x.com","password":"secret1"}`},
		{"long multibyte name", `{"name":"` + strings.Repeat("é", 51) + `","email":"a@x.com","password":"secret1"}`},
		{"bad email", `{"name":"Alice","email":"not-an-email","password":"secret1"}`},
		{"short password", `{"name":"Alice","email":"a@x.com","password":"12345"}`},
		{"not json", `{"name":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apitest.New().
				Handler(mux).
				Post("/api/auth/register").
				Body(tc.body).
				Expect(t).
				Status(http.StatusBadRequest).
				End()
		})
	}
}

// Name length counts characters, not bytes.
func TestRegister_MultibyteNameLength(t *testing.T) {
	mux, _, _ := newTestMux(t)

	name := strings.Repeat("é", 50)
	apitest.New().
		Handler(mux).
		Post("/api/auth/register").
		Body(`{"name":"` + name + `","email":"a@x.com","password":"secret1"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.name", name)).
		End()
}

func TestRegister_DuplicateEmail(t *testing.T) {
	mux, users, _ := newTestMux(t)

	registerUser(t, mux, "Alice", "alice@x.com", "secret1")

	apitest.New().
		Handler(mux).
		Post("/api/auth/register").
		Body(`{"name":"Impostor","email":"alice@x.com","password":"other123"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "Email already registered")).
		End()

	// Exactly one record survives for the address
	assert.Equal(t, 1, users.countByEmail("alice@x.com"))
}

func TestLogin_RoundTripThroughMe(t *testing.T) {
	mux, _, _ := newTestMux(t)

	created := registerUser(t, mux, "Alice", "alice@x.com", "secret1")
	token := loginUser(t, mux, "alice@x.com", "secret1")

	apitest.New().
		Handler(mux).
		Get("/api/auth/me").
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.id", created["id"])).
		Assert(jsonpath.Equal("$.email", "alice@x.com")).
		Assert(jsonpath.Equal("$.name", "Alice")).
		End()
}

func TestLogin_ReturnsBearerToken(t *testing.T) {
	mux, _, _ := newTestMux(t)
	registerUser(t, mux, "Alice", "alice@x.com", "secret1")

	apitest.New().
		Handler(mux).
		Post("/api/auth/login").
		Body(`{"email":"alice@x.com","password":"secret1"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.token_type", "bearer")).
		Assert(jsonpath.Present("$.access_token")).
		End()
}

// Wrong password and unknown email must be indistinguishable.
func TestLogin_FailureShapeDoesNotLeakExistence(t *testing.T) {
	mux, _, _ := newTestMux(t)
	registerUser(t, mux, "Alice", "alice@x.com", "secret1")

	wrongPassword := doJSON(t, mux, http.MethodPost, "/api/auth/login", "",
		`{"email":"alice@x.com","password":"wrongpass"}`)
	unknownEmail := doJSON(t, mux, http.MethodPost, "/api/auth/login", "",
		`{"email":"nobody@x.com","password":"wrongpass"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Equal(t, wrongPassword.Header().Get("WWW-Authenticate"), unknownEmail.Header().Get("WWW-Authenticate"))
}

func TestMe_RequiresToken(t *testing.T) {
	mux, _, _ := newTestMux(t)

	rec := doJSON(t, mux, http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestHealth(t *testing.T) {
	mux, _, _ := newTestMux(t)

	apitest.New().
		Handler(mux).
		Get("/api/health").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.status", "healthy")).
		Assert(jsonpath.Present("$.timestamp")).
		End()
}
