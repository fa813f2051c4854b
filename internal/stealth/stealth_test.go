package stealth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestTransportAppliesFingerprint(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
	}))
	defer srv.Close()

	client := &http.Client{Transport: &StealthTransport{
		Fingerprint: NewFingerprintPool(),
		Delay:       NewHumanDelay(ProfileNone),
		RateLimiter: rate.NewLimiter(rate.Inf, 1),
	}}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.Contains(t, gotUA, "Safari/605.1.15")
	require.Equal(t, "ro-RO,ro;q=0.9", gotLang)
}

func TestTransportRespectsRobots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := &http.Client{Transport: &StealthTransport{
		Robots: NewRobotsChecker(srv.Client(), true),
	}}

	resp, err := client.Get(srv.URL + "/anunt/ok")
	require.NoError(t, err)
	resp.Body.Close()

	_, err = client.Get(srv.URL + "/private/x")
	require.ErrorIs(t, err, ErrRobotsDisallowed)
}

func TestRobotsMissingAllowsAll(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	u, err := url.Parse(srv.URL + "/anything")
	require.NoError(t, err)
	require.True(t, NewRobotsChecker(srv.Client(), true).IsAllowed(context.Background(), "test", u))
}

func TestDelayProfiles(t *testing.T) {
	_, err := ParseDelayProfile("warp")
	require.Error(t, err)

	p, err := ParseDelayProfile("none")
	require.NoError(t, err)
	require.Zero(t, NewHumanDelay(p).RequestDelay())

	d := NewHumanDelay(ProfileAggressive).RequestDelay()
	require.GreaterOrEqual(t, d, 200*time.Millisecond)
	require.Less(t, d, 800*time.Millisecond)
}

func TestProxyRotatorFromList(t *testing.T) {
	r, err := ProxyRotatorFromList("")
	require.NoError(t, err)
	require.Nil(t, r)

	r, err = ProxyRotatorFromList("http://user:pw@10.0.0.1:3128, socks5://10.0.0.2:1080")
	require.NoError(t, err)
	require.Equal(t, "http://10.0.0.1:3128", r.Next().Name())
	require.Equal(t, "socks5://10.0.0.2:1080", r.Next().Name())
	require.Equal(t, "http://10.0.0.1:3128", r.Next().Name())

	_, err = ProxyRotatorFromList("ftp://nope")
	require.Error(t, err)
}
