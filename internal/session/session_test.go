package session

import (
	"net/http"
	"testing"
	"time"

	"github.com/dataaqu/weforward/internal/testutil"
)

func TestNewSessionManager(t *testing.T) {
	db := testutil.TestDB(t)

	sm := New(db, 12*time.Hour, false)
	if sm.Lifetime != 12*time.Hour {
		t.Errorf("lifetime = %v, want 12h", sm.Lifetime)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("samesite = %v, want Lax", sm.Cookie.SameSite)
	}
	if !sm.Cookie.Secure {
		t.Error("cookie must be Secure outside development")
	}

	dev := New(db, time.Hour, true)
	if dev.Cookie.Secure {
		t.Error("development cookie must not require TLS")
	}
}
