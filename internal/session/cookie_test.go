package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec(CookieConfig{Secret: "secret"})
	id := uuid.New().String()

	value, err := codec.Encode(id)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := codec.Decode(value)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != id {
		t.Fatalf("Decode() = %q, want %q", got, id)
	}
}

func TestCodecRejectsForeignSignature(t *testing.T) {
	value, _ := NewCodec(CookieConfig{Secret: "other"}).Encode(uuid.New().String())

	if _, err := NewCodec(CookieConfig{Secret: "secret"}).Decode(value); err == nil {
		t.Fatalf("Decode() accepted a cookie signed with another secret")
	}
}

func TestResolveIssuesCookieOnce(t *testing.T) {
	codec := NewCodec(CookieConfig{Name: "sid", Secret: "secret"})

	rec := httptest.NewRecorder()
	id, err := codec.Resolve(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "sid" || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	again, err := codec.Resolve(rec, req)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if again != id {
		t.Fatalf("Resolve() = %q, want %q", again, id)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("Resolve() reissued a valid cookie")
	}
}

func TestResolveReplacesTamperedCookie(t *testing.T) {
	codec := NewCodec(CookieConfig{Name: "sid", Secret: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "not-a-token"})
	rec := httptest.NewRecorder()

	id, err := codec.Resolve(rec, req)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("Resolve() = %q, not a uuid", id)
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Fatalf("Resolve() did not issue a replacement cookie")
	}
}

func TestSetReplacesSessionID(t *testing.T) {
	codec := NewCodec(CookieConfig{Name: "sid", Secret: "secret"})

	rec := httptest.NewRecorder()
	old, err := codec.Resolve(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatal(err)
	}

	fresh := NewID()
	if fresh == old {
		t.Fatal("NewID() repeated an id")
	}
	rec = httptest.NewRecorder()
	if err := codec.Set(rec, fresh); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	got, err := codec.Resolve(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatal(err)
	}
	if got != fresh {
		t.Errorf("Resolve() after Set = %q, want %q", got, fresh)
	}
}
