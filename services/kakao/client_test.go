package kakao

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestAuthURLCarriesAppKeyAndState(t *testing.T) {
	client := NewClient("app-key-1", "http://localhost:8980/callback", nil)

	u := client.AuthURL("state-xyz")
	if !strings.Contains(u, "client_id=app-key-1") {
		t.Errorf("url %q missing client_id", u)
	}
	if !strings.Contains(u, "state=state-xyz") {
		t.Errorf("url %q missing state", u)
	}
	if !strings.Contains(u, "kauth.kakao.com") {
		t.Errorf("url %q should point at kauth.kakao.com", u)
	}
}

func TestExchangeCodeSendsAppKeyAsFormParam(t *testing.T) {
	var gotForm string
	var gotAuthHeader string
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.Host != "kauth.kakao.com" {
				t.Errorf("unexpected host %s", req.URL.Host)
			}
			body, _ := io.ReadAll(req.Body)
			gotForm = string(body)
			gotAuthHeader = req.Header.Get("Authorization")
			return jsonResponse(http.StatusOK, `{"access_token":"at-1","refresh_token":"rt-1","token_type":"bearer"}`), nil
		}),
	}
	client := NewClient("app-key-1", "http://localhost:8980/callback", httpc)

	token, err := client.ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}
	if token.AccessToken != "at-1" || token.RefreshToken != "rt-1" {
		t.Errorf("token = %+v", token)
	}
	// Kakao takes the app key in the form body, not basic auth.
	if gotAuthHeader != "" {
		t.Errorf("Authorization = %q, want none", gotAuthHeader)
	}
	if !strings.Contains(gotForm, "client_id=app-key-1") {
		t.Errorf("form %q missing client_id", gotForm)
	}
	if !strings.Contains(gotForm, "code=auth-code") {
		t.Errorf("form %q missing code", gotForm)
	}
}

func TestExchangeCodeFailure(t *testing.T) {
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusBadRequest, `{"error":"invalid_grant"}`), nil
		}),
	}
	client := NewClient("app-key-1", "http://localhost:8980/callback", httpc)

	if _, err := client.ExchangeCode(context.Background(), "spent-code"); err == nil {
		t.Fatal("want error for rejected code")
	}
}

func TestProfileNormalizesUser(t *testing.T) {
	var gotAuth string
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.Host != "kapi.kakao.com" {
				t.Errorf("unexpected host %s", req.URL.Host)
			}
			gotAuth = req.Header.Get("Authorization")
			return jsonResponse(http.StatusOK, `{
				"id": 987654321,
				"kakao_account": {
					"email": "alice@example.com",
					"profile": {"nickname": "Alice", "profile_image_url": "https://img.example.com/a.png"}
				}
			}`), nil
		}),
	}
	client := NewClient("app-key-1", "", httpc)

	user, err := client.Profile(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if user.ID != "987654321" {
		t.Errorf("ID = %q, want numeric id as string", user.ID)
	}
	if user.Name != "Alice" || user.Email != "alice@example.com" {
		t.Errorf("user = %+v", user)
	}
	if user.ProfileImage != "https://img.example.com/a.png" {
		t.Errorf("ProfileImage = %q", user.ProfileImage)
	}
}

func TestProfileFallbackName(t *testing.T) {
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"id": 42}`), nil
		}),
	}
	client := NewClient("app-key-1", "", httpc)

	user, err := client.Profile(context.Background(), "tok-1")
	if err != nil {
		t.Fatal(err)
	}
	if user.Name != "Kakao user" {
		t.Errorf("Name = %q, want fallback", user.Name)
	}
}

func TestProfileErrorIncludesBody(t *testing.T) {
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			resp := jsonResponse(http.StatusUnauthorized, `{"msg":"this access token does not exist"}`)
			resp.Status = "401 Unauthorized"
			return resp, nil
		}),
	}
	client := NewClient("app-key-1", "", httpc)

	_, err := client.Profile(context.Background(), "bad-token")
	if err == nil {
		t.Fatal("want error")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("error %q should include the upstream body", err)
	}
}
