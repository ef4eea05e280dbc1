package client_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukemcguire/docscrape/api"
	"github.com/lukemcguire/docscrape/client"
	"github.com/lukemcguire/docscrape/crawler"
	"github.com/lukemcguire/docscrape/result"
	"github.com/lukemcguire/docscrape/task"
)

type cannedCrawler struct{ res *result.Result }

func (c cannedCrawler) Run(context.Context, string, crawler.ProgressFunc) (*result.Result, error) {
	return c.res, nil
}

func newServer(t *testing.T) (*client.Client, *task.Runner) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	runner := task.NewRunner(task.NewStore(), cannedCrawler{res: &result.Result{
		SeedURL:  "https://docs.example.com/guide",
		BasePath: "/guide",
		Pages:    []result.Page{{URL: "https://docs.example.com/guide", Markdown: "# Guide"}},
	}})
	h := api.NewHandler(t.Context(), runner, nil)
	ts := httptest.NewServer(api.NewRouter(api.Config{}, h, nil, nil))
	t.Cleanup(ts.Close)

	return client.New(ts.URL+"/", ts.Client()), runner
}

func TestClientRoundTrip(t *testing.T) {
	c, runner := newServer(t)
	ctx := t.Context()

	id, err := c.Scrape(ctx, api.ScrapeRequest{URL: "https://docs.example.com/guide"})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	runner.Wait()

	snap, err := c.Progress(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, snap.Status)

	res, err := c.Result(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "# Guide", res.Content)
	assert.Equal(t, 1, res.PageCount)

	var buf bytes.Buffer
	name, err := c.Download(ctx, id, &buf)
	require.NoError(t, err)
	assert.Equal(t, "# Guide", buf.String())
	assert.Regexp(t, `^docs_example_com_\d{8}\.md$`, name)
}

func TestClientErrors(t *testing.T) {
	c, _ := newServer(t)
	ctx := t.Context()

	_, err := c.Progress(ctx, "missing")
	assert.ErrorIs(t, err, client.ErrNotFound)

	_, err = c.Scrape(ctx, api.ScrapeRequest{URL: "ftp://example.com"})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr), "Scrape() error = %v", err)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "http or https")
}

func TestClientUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	c := client.New(ts.URL, nil)
	_, err := c.Progress(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, client.ErrNotFound))
}
