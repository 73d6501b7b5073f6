package kamel_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/kamelrun/internal/ctxlog"
	"github.com/vk/kamelrun/internal/dsl"
	"github.com/vk/kamelrun/internal/kamel"
	"github.com/vk/kamelrun/internal/registry"
	"github.com/vk/kamelrun/internal/source"
	"github.com/vk/kamelrun/modules/logsink"
	"github.com/vk/kamelrun/modules/timer"
)

func TestInit_EveryLanguageLoads(t *testing.T) {
	reg := registry.New()
	(&timer.Module{}).Register(reg)
	(&logsink.Module{}).Register(reg)
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	testCases := []struct {
		file    string
		lang    string
		routeID string
	}{
		{file: "Routes.java", lang: "java", routeID: "java"},
		{file: "Routes.groovy", lang: "groovy", routeID: "groovy"},
		{file: "routes.kts", lang: "kotlin", routeID: "kotlin"},
		{file: "routes.js", lang: "js", routeID: "js"},
		{file: "routes.yaml", lang: "yaml", routeID: "route1"},
		{file: "routes.yml", lang: "yaml", routeID: "route1"},
		{file: "routes.xml", lang: "xml", routeID: "xml"},
	}
	for _, tc := range testCases {
		t.Run(tc.file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.file)
			require.NoError(t, kamel.Init(path))

			in, err := source.NewLoader(source.Options{Registry: reg}).LoadFile(ctx, path)
			require.NoError(t, err)
			assert.Equal(t, "routes", in.Name)
			assert.Equal(t, tc.lang, in.Language)
			require.Len(t, in.Routes, 1)
			r := in.Routes[0]
			assert.Equal(t, tc.routeID, r.ID)
			assert.Equal(t, "1000", r.From.Param("period", ""))
			require.NotNil(t, r.Body)
			assert.Equal(t, "Hello Camel K from ${routeId}", r.Body.Text)
		})
	}
}

func TestScaffold_JavaClassName(t *testing.T) {
	content, err := kamel.Scaffold("/work/MyRoutes.java")
	require.NoError(t, err)
	assert.Contains(t, string(content), "public class MyRoutes extends RouteBuilder {")
	assert.Contains(t, string(content), "{{time:1000}}")
}

func TestScaffold_InvalidNames(t *testing.T) {
	testCases := []struct {
		path   string
		target error
	}{
		{path: "lowercase.java", target: kamel.ErrInvalidFileName},
		{path: "my-route.groovy", target: kamel.ErrInvalidFileName},
		{path: "Bad Name.java", target: kamel.ErrInvalidFileName},
		{path: "routes.txt", target: dsl.ErrUnsupportedLanguage},
		{path: "_.yaml", target: kamel.ErrInvalidName},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			_, err := kamel.Scaffold(tc.path)
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

func TestInit_DoesNotOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Existing.java")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0o644))

	err := kamel.Init(path)
	require.ErrorIs(t, err, kamel.ErrSourceExists)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(content))
}
