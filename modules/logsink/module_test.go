package logsink

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/kamelrun/internal/ctxlog"
	"github.com/vk/kamelrun/internal/endpoint"
	"github.com/vk/kamelrun/internal/registry"
)

func openSink(t *testing.T, uri string) registry.Sink {
	t.Helper()
	ep, err := endpoint.Parse(uri)
	require.NoError(t, err)
	sink, err := (&Factory{}).Open(context.Background(), ep)
	require.NoError(t, err)
	return sink
}

func TestSink_Deliver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger.With("route", "java"))

	sink := openSink(t, "log:info")
	require.NoError(t, sink.Deliver(ctx, &registry.Exchange{RouteID: "java", Body: "Hello Camel K from java"}))
	require.NoError(t, sink.Close())

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Hello Camel K from java", record["msg"])
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "info", record["logger"])
	assert.Equal(t, "java", record["route"])
}

func TestSink_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	require.NoError(t, openSink(t, "log:quiet?level=debug").Deliver(ctx, &registry.Exchange{Body: "hidden"}))
	require.NoError(t, openSink(t, "log:off?level=OFF").Deliver(ctx, &registry.Exchange{Body: "dropped"}))
	require.NoError(t, openSink(t, "log:loud?level=WARN").Deliver(ctx, &registry.Exchange{Body: "shown"}))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "msg=shown")
}

func TestParseOptions_Invalid(t *testing.T) {
	for _, uri := range []string{"log:info?level=LOUD", "log:info?colour=red", "log:info?showAll=maybe", "log:info?maxChars=x", "log:"} {
		ep, err := endpoint.Parse(uri)
		require.NoError(t, err)
		assert.Error(t, (&Factory{}).Validate(ep), uri)
	}
}

func TestSink_FormattingOptions(t *testing.T) {
	ex := &registry.Exchange{
		ID:      "ex-1",
		Body:    "Hello Camel K from java",
		Headers: map[string]string{"CamelTimerCounter": "1", "CamelTimerName": "java"},
	}

	testCases := []struct {
		name   string
		uri    string
		assert func(t *testing.T, record map[string]any)
	}{
		{
			name: "showAll false keeps the plain record",
			uri:  "log:info?showAll=false",
			assert: func(t *testing.T, record map[string]any) {
				assert.Equal(t, "Hello Camel K from java", record["msg"])
				assert.NotContains(t, record, "headers")
				assert.NotContains(t, record, "exchangeId")
			},
		},
		{
			name: "showAll adds headers and exchange details",
			uri:  "log:info?showAll=true",
			assert: func(t *testing.T, record map[string]any) {
				assert.Equal(t, "Hello Camel K from java", record["msg"])
				assert.Equal(t, "ex-1", record["exchangeId"])
				assert.Equal(t, "String", record["bodyType"])
				assert.Equal(t, map[string]any{"CamelTimerCounter": "1", "CamelTimerName": "java"}, record["headers"])
			},
		},
		{
			name: "showHeaders only",
			uri:  "log:info?showHeaders=true&multiline=true&skipBodyLineSeparator=false",
			assert: func(t *testing.T, record map[string]any) {
				assert.Contains(t, record, "headers")
				assert.NotContains(t, record, "bodyType")
			},
		},
		{
			name: "showBody false drops the body",
			uri:  "log:info?showBody=false",
			assert: func(t *testing.T, record map[string]any) {
				assert.Equal(t, "", record["msg"])
			},
		},
		{
			name: "maxChars truncates",
			uri:  "log:info?maxChars=5",
			assert: func(t *testing.T, record map[string]any) {
				assert.Equal(t, "Hello...", record["msg"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
			ctx := ctxlog.WithLogger(context.Background(), logger)

			require.NoError(t, openSink(t, tc.uri).Deliver(ctx, ex))

			var record map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
			tc.assert(t, record)
		})
	}
}

func TestParseOptions_IgnoredOptions(t *testing.T) {
	ep, err := endpoint.Parse("log:info?showStackTrace=true&multiline=true&level=WARN")
	require.NoError(t, err)

	opts, err := ParseOptions(ep)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, opts.Level)
	assert.Equal(t, []string{"multiline", "showStackTrace"}, opts.Ignored)
	assert.True(t, opts.ShowBody)
	assert.False(t, opts.ShowHeaders)
}
