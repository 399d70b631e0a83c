package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beesaferoot/fritter/internal/config"
	"github.com/beesaferoot/fritter/internal/testutil"
)

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, base string) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: base, http: &http.Client{Jar: jar}}
}

func (c *client) do(method, path, body string, out interface{}) int {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, strings.NewReader(body))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(data, out), string(data))
	}
	return resp.StatusCode
}

type idDoc struct {
	ID string `json:"id"`
}

func TestEndToEnd(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{SessionSecret: string(testutil.SessionSecret)}
	ts := httptest.NewServer(New(cfg, db).Handler())
	defer ts.Close()

	alyssa := newClient(t, ts.URL)
	ben := newClient(t, ts.URL)
	require.Equal(t, http.StatusCreated, alyssa.do(http.MethodPost, "/api/users", `{"username":"alyssa","password":"pw"}`, nil))
	require.Equal(t, http.StatusCreated, ben.do(http.MethodPost, "/api/users", `{"username":"ben","password":"pw"}`, nil))

	var benUser struct {
		User idDoc `json:"user"`
	}
	require.Equal(t, http.StatusOK, ben.do(http.MethodGet, "/api/users/session", "", &benUser))

	var created struct {
		Freet idDoc `json:"freet"`
	}
	require.Equal(t, http.StatusCreated, alyssa.do(http.MethodPost, "/api/freets", `{"content":"write to alyssa@mit.edu"}`, &created))
	freetID := created.Freet.ID

	var rating struct {
		Warnings [][2]string `json:"warnings"`
	}
	require.Equal(t, http.StatusOK, alyssa.do(http.MethodGet, "/api/ratings?freetId="+freetID, "", &rating))
	assert.Equal(t, [][2]string{{"email", "alyssa@mit.edu"}}, rating.Warnings)

	var table struct {
		Table idDoc `json:"table"`
	}
	require.Equal(t, http.StatusCreated, alyssa.do(http.MethodPost, "/api/tables", `{"tablename":"study"}`, &table))
	tablePath := "/api/tables/" + table.Table.ID
	require.Equal(t, http.StatusOK, alyssa.do(http.MethodPatch, tablePath,
		fmt.Sprintf(`{"users":["%s"],"freets":["%s"]}`, benUser.User.ID, freetID), nil))
	assert.Equal(t, http.StatusForbidden, ben.do(http.MethodDelete, tablePath, "", nil))

	require.Equal(t, http.StatusCreated, ben.do(http.MethodPost, "/api/votes", fmt.Sprintf(`{"freetId":"%s","upvote":true}`, freetID), nil))
	var tally struct {
		Score int `json:"score"`
	}
	require.Equal(t, http.StatusOK, ben.do(http.MethodGet, "/api/votes?freetId="+freetID, "", &tally))
	assert.Equal(t, 1, tally.Score)

	require.Equal(t, http.StatusOK, alyssa.do(http.MethodDelete, "/api/freets/"+freetID, "", nil))
	assert.Equal(t, http.StatusNotFound, alyssa.do(http.MethodGet, "/api/ratings?freetId="+freetID, "", nil))

	var shown struct {
		Freets []idDoc `json:"freets"`
		Users  []idDoc `json:"users"`
	}
	require.Equal(t, http.StatusOK, ben.do(http.MethodGet, tablePath, "", &shown))
	assert.Empty(t, shown.Freets)
	assert.Len(t, shown.Users, 1)
}

func TestRunShutsDown(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{Addr: "127.0.0.1:0", SessionSecret: string(testutil.SessionSecret)}
	srv := New(cfg, db)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
