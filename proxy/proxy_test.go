package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuj73/gifzoo/hasura"
)

type fakeUpstream struct {
	users    []hasura.User
	err      error
	inserted []hasura.User
	calls    int
}

func (f *fakeUpstream) Users(ctx context.Context) ([]hasura.User, error) {
	f.calls++
	return f.users, f.err
}

func (f *fakeUpstream) UserByID(ctx context.Context, id int) (*hasura.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUpstream) InsertUser(ctx context.Context, name, email string, mobile int) (*hasura.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u := hasura.User{ID: len(f.users) + 1, Name: name, Email: email, Mobile: mobile}
	f.users = append(f.users, u)
	f.inserted = append(f.inserted, u)
	return &u, nil
}

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func post(t *testing.T, h http.Handler, query string, variables map[string]interface{}) gqlResponse {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"query": query, "variables": variables})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, GraphQLPath, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func newTestHandler(t *testing.T, up Upstream) http.Handler {
	t.Helper()
	h, err := NewHandler(up, prometheus.NewRegistry())
	require.NoError(t, err)
	return h
}

func TestGetUsers(t *testing.T) {
	up := &fakeUpstream{users: []hasura.User{
		{ID: 1, Name: "Ada", Email: "ada@example.com", Mobile: 111},
		{ID: 2, Name: "Linus", Email: "linus@example.com", Mobile: 222},
	}}
	h := newTestHandler(t, up)

	resp := post(t, h, `{ getUsers { id name email mobile } }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `[
		{"id":1,"name":"Ada","email":"ada@example.com","mobile":111},
		{"id":2,"name":"Linus","email":"linus@example.com","mobile":222}
	]`, string(resp.Data["getUsers"]))
	assert.Equal(t, 1, up.calls)
}

func TestGetUserByIDMissingIsNull(t *testing.T) {
	up := &fakeUpstream{users: []hasura.User{{ID: 1, Name: "Ada"}}}
	h := newTestHandler(t, up)

	resp := post(t, h, `query ($id: Int!) { getUserById(id: $id) { id name } }`, map[string]interface{}{"id": 99})
	assert.Empty(t, resp.Errors)
	assert.Equal(t, "null", string(resp.Data["getUserById"]))

	resp = post(t, h, `query ($id: Int!) { getUserById(id: $id) { id name } }`, map[string]interface{}{"id": 1})
	assert.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"id":1,"name":"Ada"}`, string(resp.Data["getUserById"]))
}

func TestAddUserForwardsAllArguments(t *testing.T) {
	up := &fakeUpstream{}
	h := newTestHandler(t, up)

	resp := post(t, h, `mutation { addUser(name: "Grace", email: "grace@example.com", mobile: 98765) { id name mobile } }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"id":1,"name":"Grace","mobile":98765}`, string(resp.Data["addUser"]))
	require.Len(t, up.inserted, 1)
	assert.Equal(t, "grace@example.com", up.inserted[0].Email)
	assert.Equal(t, 98765, up.inserted[0].Mobile)
}

func TestUpstreamErrorMessageIsForwarded(t *testing.T) {
	up := &fakeUpstream{err: &hasura.UpstreamError{Op: "InsertUser", Message: "Uniqueness violation"}}
	h := newTestHandler(t, up)

	resp := post(t, h, `mutation { addUser(name: "Grace", email: "g@example.com", mobile: 1) { id } }`, nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Uniqueness violation", resp.Errors[0].Message)
}

func TestNetworkErrorUsesGenericMessage(t *testing.T) {
	up := &fakeUpstream{err: &hasura.NetworkError{Op: "Users", Err: errors.New("dial tcp: refused")}}
	h := newTestHandler(t, up)

	resp := post(t, h, `{ getUsers { id } }`, nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Hasura error", resp.Errors[0].Message)
}

func TestGetServesGraphiQL(t *testing.T) {
	h := newTestHandler(t, &fakeUpstream{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, GraphQLPath, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "GraphiQL")
}

func TestGetRunsQueryForJSONClients(t *testing.T) {
	up := &fakeUpstream{users: []hasura.User{{ID: 1, Name: "Ada"}}}
	h := newTestHandler(t, up)

	target := GraphQLPath + "?" + url.Values{
		"query":     {`query One($id: Int!) { getUserById(id: $id) { id name } }`},
		"variables": {`{"id":1}`},
	}.Encode()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"id":1,"name":"Ada"}`, string(resp.Data["getUserById"]))
}

func TestGetWithQueryStillServesGraphiQLToBrowsers(t *testing.T) {
	up := &fakeUpstream{}
	h := newTestHandler(t, up)

	req := httptest.NewRequest(http.MethodGet, GraphQLPath+"?query="+url.QueryEscape(`{ getUsers { id } }`), nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Contains(t, rec.Body.String(), "GraphiQL")
	assert.Zero(t, up.calls)
}

func TestGetRejectsMutation(t *testing.T) {
	up := &fakeUpstream{}
	h := newTestHandler(t, up)

	query := `mutation { addUser(name: "Ada", email: "ada@example.com", mobile: 1) { id } }`
	req := httptest.NewRequest(http.MethodGet, GraphQLPath+"?query="+url.QueryEscape(query), nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "POST")
	assert.Zero(t, up.calls)
	assert.Empty(t, up.inserted)
}

func TestGetRejectsBadVariables(t *testing.T) {
	h := newTestHandler(t, &fakeUpstream{})

	target := GraphQLPath + "?" + url.Values{
		"query":     {`{ getUsers { id } }`},
		"variables": {`{not json`},
	}.Encode()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreflight(t *testing.T) {
	h := newTestHandler(t, &fakeUpstream{})

	req := httptest.NewRequest(http.MethodOptions, GraphQLPath, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "content-type", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestEndToEndAgainstHasura(t *testing.T) {
	var gotSecret string
	hasuraSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get(hasura.AdminSecretHeader)
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"users_by_pk":null}}`))
	}))
	defer hasuraSrv.Close()

	reg := prometheus.NewRegistry()
	client := hasura.NewClient(hasuraSrv.URL, "s3cret", hasura.WithMetrics(hasura.NewMetrics(reg)))
	h, err := NewHandler(client, reg)
	require.NoError(t, err)

	resp := post(t, h, `{ getUserById(id: 5) { id } }`, nil)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, "null", string(resp.Data["getUserById"]))
	assert.Equal(t, "s3cret", gotSecret)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, MetricsPath, nil))
	assert.Contains(t, rec.Body.String(), `gifzoo_upstream_requests_total{operation="UserByPK",outcome="ok"} 1`)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveListener(ctx, ln, newTestHandler(t, &fakeUpstream{})) }()

	url := "http://" + ln.Addr().String() + GraphQLPath
	require.Eventually(t, func() bool {
		resp, err := http.Post(url, "application/json", strings.NewReader(`{"query":"{ getUsers { id } }"}`))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeReportsBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	err = Serve(context.Background(), ln.Addr().String(), http.NotFoundHandler())
	assert.Error(t, err)
}
