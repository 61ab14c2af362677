package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(i int) *int    { return &i }
func boolPtr(b bool) *bool { return &b }

func TestConvert_Success(t *testing.T) {
	svc := New(DefaultConfig(), testLogger())

	resp := svc.Convert(context.Background(), Request{
		JSONData: `{"title":"My Document","content":"Hello World","sections":[{"name":"Section 1","text":"Content here"}]}`,
	})

	require.Equal(t, 200, resp.Code)
	require.NotNil(t, resp.Data)
	assert.Equal(t, MessageOK, resp.Message)
	assert.Equal(t,
		"# title\n\nMy Document\n\n# content\n\nHello World\n\n# sections\n\n## Section 1\n\n### text\n\nContent here\n",
		*resp.Data)
}

func TestConvert_Options(t *testing.T) {
	svc := New(DefaultConfig(), testLogger())

	resp := svc.Convert(context.Background(), Request{
		JSONData: `{"a": {"b": {"c": 1}}, "list": [{"x": 1}]}`,
		Options: &RequestOptions{
			MaxHeadingLevel:     intPtr(2),
			IncludeTypes:        boolPtr(true),
			ProcessArrayObjects: boolPtr(false),
			UseOrderedLists:     boolPtr(true),
		},
	})

	require.Equal(t, 200, resp.Code, resp.Message)
	assert.Equal(t,
		"# a\n\n## b\n\n1. **c**: *Type: number* 1\n\n# list\n\n- {\"x\":1}\n",
		*resp.Data)
}

func TestConvert_Failures(t *testing.T) {
	svc := New(DefaultConfig(), testLogger())

	tests := []struct {
		name    string
		req     Request
		code    int
		message string
	}{
		{
			name:    "malformed json",
			req:     Request{JSONData: `{"a": `},
			code:    400,
			message: "unable to parse JSON string",
		},
		{
			name:    "empty json",
			req:     Request{JSONData: ""},
			code:    400,
			message: "unable to parse JSON string",
		},
		{
			name:    "multiple values",
			req:     Request{JSONData: `{} {}`},
			code:    400,
			message: "unable to parse JSON string",
		},
		{
			name:    "level out of range",
			req:     Request{JSONData: `{}`, Options: &RequestOptions{MaxHeadingLevel: intPtr(9)}},
			code:    400,
			message: "invalid options",
		},
		{
			name:    "zero level",
			req:     Request{JSONData: `{}`, Options: &RequestOptions{MinHeadingLevel: intPtr(0)}},
			code:    400,
			message: "invalid options",
		},
		{
			name:    "levels reversed",
			req:     Request{JSONData: `{}`, Options: &RequestOptions{MinHeadingLevel: intPtr(5), MaxHeadingLevel: intPtr(2)}},
			code:    400,
			message: "invalid options",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := svc.Convert(context.Background(), tt.req)
			assert.Equal(t, tt.code, resp.Code)
			assert.Nil(t, resp.Data)
			assert.Contains(t, resp.Message, tt.message)
		})
	}
}

func TestConvert_LoneSurrogate(t *testing.T) {
	svc := New(DefaultConfig(), testLogger())

	resp := svc.Convert(context.Background(), Request{JSONData: `{"a": "\ud800"}`})
	require.Equal(t, 200, resp.Code, resp.Message)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "# a\n\n\uFFFD\n", *resp.Data)
}

func TestConvert_RecursionLimitIsServerError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDepth = 3
	svc := New(cfg, testLogger())

	resp := svc.Convert(context.Background(), Request{JSONData: `{"a":{"b":{"c":{"d":1}}}}`})
	assert.Equal(t, 500, resp.Code)
	assert.Nil(t, resp.Data)
	assert.Contains(t, resp.Message, "JSON to Markdown conversion failed")
}

func TestRequestOptions_RenderOptions(t *testing.T) {
	var none *RequestOptions
	opts := none.RenderOptions(50)
	assert.Equal(t, 50, opts.MaxDepth)
	assert.True(t, opts.ProcessArrayObjects())
	assert.NoError(t, none.Validate())

	opts = (&RequestOptions{ProcessArrayObjects: boolPtr(true)}).RenderOptions(0)
	assert.True(t, opts.ProcessArrayObjects())

	opts = (&RequestOptions{MinHeadingLevel: intPtr(2), ProcessArrayObjects: boolPtr(false)}).RenderOptions(0)
	assert.Equal(t, 2, opts.MinHeadingLevel)
	assert.False(t, opts.ProcessArrayObjects())
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("JSON2MD_ADDR", "127.0.0.1:9999")
	t.Setenv("JSON2MD_MAX_BODY_BYTES", "2048")
	t.Setenv("JSON2MD_MAX_DEPTH", "64")
	t.Setenv("JSON2MD_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, Config{
		Addr:            "127.0.0.1:9999",
		MaxBodyBytes:    2048,
		MaxDepth:        64,
		ShutdownTimeout: 3 * time.Second,
	}, cfg)
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	for _, name := range []string{"JSON2MD_ADDR", "JSON2MD_MAX_BODY_BYTES", "JSON2MD_MAX_DEPTH", "JSON2MD_SHUTDOWN_TIMEOUT"} {
		t.Setenv(name, "")
	}

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigFromEnv_Invalid(t *testing.T) {
	t.Setenv("JSON2MD_MAX_DEPTH", "-1")

	_, err := ConfigFromEnv()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid service configuration"))
}
