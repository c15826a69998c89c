package hasura

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Secret    string
	Query     string
	Variables map[string]interface{}
}

// fakeHasura answers every request with the canned body and status and
// records what it received.
type fakeHasura struct {
	mu       sync.Mutex
	status   int
	body     string
	requests []recordedRequest
}

func (f *fakeHasura) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Secret:    r.Header.Get(AdminSecretHeader),
		Query:     payload.Query,
		Variables: payload.Variables,
	})
	status, body := f.status, f.body
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func newFake(t *testing.T, status int, body string) (*fakeHasura, *httptest.Server) {
	t.Helper()
	f := &fakeHasura{status: status, body: body}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func TestSearchGifsSendsPatternAndOffset(t *testing.T) {
	fake, srv := newFake(t, 0, `{"data":{"gifs":[{"url":"https://x/1.gif","category":"cat"}]}}`)
	c := NewClient(srv.URL, "s3cret")

	gifs, err := c.SearchGifs(context.Background(), "cat", 20, 40)
	require.NoError(t, err)
	assert.Equal(t, []Gif{{URL: "https://x/1.gif", Category: "cat"}}, gifs)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, "s3cret", req.Secret)
	assert.Contains(t, req.Query, "offset: $offset")
	assert.Equal(t, "%cat%", req.Variables["category"])
	assert.EqualValues(t, 20, req.Variables["limit"])
	assert.EqualValues(t, 40, req.Variables["offset"])
}

func TestSampleGifsOmitsOffset(t *testing.T) {
	fake, srv := newFake(t, 0, `{"data":{"gifs":[]}}`)
	c := NewClient(srv.URL, "")

	gifs, err := c.SampleGifs(context.Background(), "dog", 9)
	require.NoError(t, err)
	assert.Empty(t, gifs)

	req := fake.requests[0]
	assert.Empty(t, req.Secret)
	assert.Equal(t, "dog", req.Variables["category"])
	assert.NotContains(t, req.Variables, "offset")
}

func TestUserByIDMissingIsNil(t *testing.T) {
	_, srv := newFake(t, 0, `{"data":{"users_by_pk":null}}`)
	c := NewClient(srv.URL, "s3cret")

	user, err := c.UserByID(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestInsertUserForwardsMobile(t *testing.T) {
	fake, srv := newFake(t, 0, `{"data":{"insert_users_one":{"id":7,"name":"Ada","email":"ada@example.com","mobile":12345}}}`)
	c := NewClient(srv.URL, "s3cret")

	user, err := c.InsertUser(context.Background(), "Ada", "ada@example.com", 12345)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, User{ID: 7, Name: "Ada", Email: "ada@example.com", Mobile: 12345}, *user)
	assert.EqualValues(t, 12345, fake.requests[0].Variables["mobile"])
}

func TestGraphQLErrorBecomesUpstreamError(t *testing.T) {
	_, srv := newFake(t, 0, `{"errors":[{"message":"Uniqueness violation"},{"message":"second"}]}`)
	c := NewClient(srv.URL, "s3cret")

	_, err := c.InsertUser(context.Background(), "Ada", "ada@example.com", 1)
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "Uniqueness violation", upstream.Message)
	assert.Equal(t, "Uniqueness violation", err.Error())
	assert.Equal(t, http.StatusOK, upstream.StatusCode)
}

func TestNon2xxBecomesUpstreamError(t *testing.T) {
	_, srv := newFake(t, http.StatusInternalServerError, `oops`)
	c := NewClient(srv.URL, "")

	_, err := c.Users(context.Background())
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	assert.Equal(t, "Hasura error", upstream.Message)
}

func TestNon2xxKeepsFirstErrorFromBody(t *testing.T) {
	_, srv := newFake(t, http.StatusBadRequest, `{"errors":[{"message":"field 'gifs' not found"},{"message":"second"}]}`)
	c := NewClient(srv.URL, "")

	_, err := c.SearchGifs(context.Background(), "cat", 20, 0)
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadRequest, upstream.StatusCode)
	assert.Equal(t, "field 'gifs' not found", upstream.Message)
	assert.Equal(t, "field 'gifs' not found", FirstMessage(err))
}

func TestHTTPClientTimeoutApplies(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := NewClient(srv.URL, "", WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))

	_, err := c.Users(context.Background())
	require.Error(t, err)

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestTransportFailureBecomesNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, "")
	_, err := c.Users(context.Background())
	require.Error(t, err)

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestFirstMessageFallback(t *testing.T) {
	assert.Equal(t, "Hasura error", FirstMessage(errors.New("")))
	assert.Equal(t, "bad", FirstMessage(&UpstreamError{Message: "bad"}))
}

func TestMetricsCountOutcomes(t *testing.T) {
	_, srv := newFake(t, 0, `{"data":{"users":[]}}`)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := NewClient(srv.URL, "", WithMetrics(m))

	_, err := c.Users(context.Background())
	require.NoError(t, err)
	_, err = c.Users(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("Users", outcomeOK)))
}
