package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/kamelrun/internal/config"
	"github.com/vk/kamelrun/internal/ctxlog"
	"github.com/vk/kamelrun/internal/placeholder"
	"github.com/vk/kamelrun/internal/registry"
	"github.com/vk/kamelrun/modules/logsink"
	"github.com/vk/kamelrun/modules/timer"
)

const helloWorld = `// camel-k: language=java dependency=camel:jackson trait=logging.level=DEBUG

import org.apache.camel.builder.RouteBuilder;

public class HelloWorld extends RouteBuilder {
  @Override
  public void configure() throws Exception {
      from("timer:java?period=1000")
        .routeId("java")
        .setBody()
          .simple("Hello Camel K from ${routeId}")
        .to("log:info");
  }
}
`

const simpleProperty = `// camel-k: language=java

import org.apache.camel.builder.RouteBuilder;

public class SimpleProperty extends RouteBuilder {
  @Override
  public void configure() throws Exception {
      from("timer:java?period={{time:1000}}")
        .setBody()
          .simple("{{firstProperty}} and {{secondProperty:two}}")
        .to("log:info");
  }
}
`

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testRegistry() *registry.Registry {
	reg := registry.New()
	(&timer.Module{}).Register(reg)
	(&logsink.Module{}).Register(reg)
	return reg
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_HelloWorld(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "HelloWorld.java", helloWorld)

	in, err := NewLoader(Options{Registry: testRegistry()}).LoadFile(testContext(), path)
	require.NoError(t, err)

	assert.Equal(t, "hello-world", in.Name)
	assert.Equal(t, "java", in.Language)
	require.Len(t, in.Dependencies, 1)
	assert.Equal(t, "camel:jackson", in.Dependencies[0].Coordinates())
	assert.Equal(t, []string{"logging.level=DEBUG"}, in.Traits)

	require.Len(t, in.Routes, 1)
	r := in.Routes[0]
	assert.Equal(t, "java", r.ID)
	assert.False(t, r.Generated)
	assert.Equal(t, "timer", r.From.Component)
	assert.Equal(t, "java", r.From.Path)
	assert.Equal(t, "1000", r.From.Param("period", ""))
	require.NotNil(t, r.Body)
	assert.Equal(t, "Hello Camel K from ${routeId}", r.Body.Text)
	assert.Equal(t, config.SinkTo, r.Sink.Kind)
	assert.Equal(t, "log", r.Sink.Endpoint.Component)
	assert.Equal(t, "info", r.Sink.Endpoint.Path)
}

func TestLoadFile_Placeholders(t *testing.T) {
	testCases := []struct {
		name       string
		opts       Options
		env        map[string]string
		wantPeriod string
		wantBody   string
	}{
		{
			name:       "defaults apply when unset",
			opts:       Options{Properties: map[string]string{"firstProperty": "one"}},
			wantPeriod: "1000",
			wantBody:   "one and two",
		},
		{
			name: "overrides win over defaults",
			opts: Options{Properties: map[string]string{
				"firstProperty": "one", "secondProperty": "2", "time": "250",
			}},
			wantPeriod: "250",
			wantBody:   "one and 2",
		},
		{
			name:       "environment is used only when enabled",
			opts:       Options{UseEnv: true},
			env:        map[string]string{"FIRSTPROPERTY": "from-env", "TIME": "50"},
			wantPeriod: "50",
			wantBody:   "from-env and two",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			path := writeFile(t, t.TempDir(), "SimpleProperty.java", simpleProperty)

			in, err := NewLoader(tc.opts).LoadFile(testContext(), path)
			require.NoError(t, err)
			require.Len(t, in.Routes, 1)
			r := in.Routes[0]
			assert.Equal(t, "route1", r.ID)
			assert.True(t, r.Generated)
			assert.Equal(t, tc.wantPeriod, r.From.Param("period", ""))
			assert.Equal(t, tc.wantBody, r.Body.Text)
		})
	}
}

func TestLoadFile_MissingPlaceholdersFailFast(t *testing.T) {
	t.Setenv("FIRSTPROPERTY", "ignored-without-opt-in")
	path := writeFile(t, t.TempDir(), "SimpleProperty.java", `// camel-k: language=java
import org.apache.camel.builder.RouteBuilder;
public class SimpleProperty extends RouteBuilder {
  public void configure() throws Exception {
    from("timer:java?period=1000")
      .setBody().simple("{{firstProperty}} {{secondProperty}}")
      .to("log:info");
  }
}
`)

	_, err := NewLoader(Options{}).LoadFile(testContext(), path)
	require.Error(t, err)
	var missing *placeholder.MissingError
	require.True(t, errors.As(err, &missing), "expected MissingError, got %v", err)
	assert.ElementsMatch(t, []string{"firstProperty", "secondProperty"}, missing.Names)
}

func TestLoadFile_PropertyPrecedence(t *testing.T) {
	dir := t.TempDir()
	cliFile := writeFile(t, dir, "cli.properties", "who=cli-file\nwhat=cli-file\nwhere=cli-file\n")
	writeFile(t, dir, "conf/app.properties", "what=modeline-file\nwhere=modeline-file\n")
	path := writeFile(t, dir, "routes.yaml", `# camel-k: language=yaml property=file:conf/app.properties property=where=modeline
- from:
    uri: "timer:tick"
    steps:
      - setBody:
          simple: "{{who}} {{what}} {{where}} {{when:later}}"
      - to: "log:info"
`)

	in, err := NewLoader(Options{
		PropertyFiles: []string{cliFile},
		Properties:    map[string]string{"when": "now"},
	}).LoadFile(testContext(), path)
	require.NoError(t, err)
	assert.Equal(t, "cli-file modeline-file modeline now", in.Routes[0].Body.Text)
	assert.Equal(t, []string{filepath.Join(dir, "conf/app.properties")}, in.PropertyFiles)
}

func TestLoadFile_Invalid(t *testing.T) {
	testCases := []struct {
		name        string
		file        string
		content     string
		errContains string
	}{
		{
			name:        "unknown component",
			file:        "Unknown.java",
			content:     "from(\"cron:tab\").to(\"log:info\");",
			errContains: "unknown component",
		},
		{
			name:        "sink used as trigger",
			file:        "Backwards.java",
			content:     "from(\"log:info\").to(\"log:info\");",
			errContains: "cannot start a route",
		},
		{
			name:        "bad modeline dependency",
			file:        "BadDep.java",
			content:     "// camel-k: dependency=nodash\nfrom(\"timer:x\").to(\"log:info\");",
			errContains: "dependency",
		},
		{
			name:        "invalid integration name",
			file:        "routes.yaml",
			content:     "# camel-k: name=Not_Valid\n- from:\n    uri: timer:x\n    steps:\n      - to: log:info\n",
			errContains: "Not_Valid",
		},
		{
			name:        "duplicate route ids",
			file:        "routes.yaml",
			content:     "- route:\n    id: a\n    from:\n      uri: timer:x\n      steps:\n        - to: log:info\n- route:\n    id: a\n    from:\n      uri: timer:y\n      steps:\n        - to: log:info\n",
			errContains: "duplicate route id 'a'",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tc.file, tc.content)
			_, err := NewLoader(Options{Registry: testRegistry()}).LoadFile(testContext(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "HelloWorld.java", helloWorld)
	writeFile(t, dir, "nested/routes.yaml", "- from:\n    uri: timer:yaml\n    steps:\n      - to: log:info\n- from:\n    uri: timer:other\n    steps:\n      - log: \"${body}\"\n")
	writeFile(t, dir, "README.md", "not a source")

	model, err := NewLoader(Options{Registry: testRegistry()}).Load(testContext(), dir)
	require.NoError(t, err)
	require.Len(t, model.Integrations, 2)
	assert.Equal(t, 3, model.Routes())

	names := []string{model.Integrations[0].Name, model.Integrations[1].Name}
	assert.ElementsMatch(t, []string{"hello-world", "routes"}, names)
}

func TestLoad_DuplicateIntegrationNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a/HelloWorld.java", helloWorld)
	writeFile(t, dir, "b/HelloWorld.java", helloWorld)

	_, err := NewLoader(Options{}).Load(testContext(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "integration name 'hello-world' is declared by both")
}

func TestLoad_NoSources(t *testing.T) {
	_, err := NewLoader(Options{}).Load(testContext(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no integration sources found")
}

func TestReadHeader(t *testing.T) {
	path := writeFile(t, t.TempDir(), "SimpleProperty.java", simpleProperty)

	in, err := ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, "simple-property", in.Name)
	assert.Equal(t, "java", in.Language)
	assert.Empty(t, in.Routes)
	assert.Equal(t, simpleProperty, string(in.Content))
}

func TestLoadFile_NoRoutesKeepsDependencies(t *testing.T) {
	var logs bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)))

	in, err := NewLoader(Options{Registry: testRegistry()}).LoadFile(ctx, filepath.Join("..", "dsl", "testdata", "NoRoutes.java"))
	require.NoError(t, err)

	assert.Equal(t, "no-routes", in.Name)
	assert.Empty(t, in.Routes)
	require.Len(t, in.Dependencies, 1)
	assert.Equal(t, "mvn:org.apache.commons:commons-math3:3.6.1", in.Dependencies[0].Coordinates())
	assert.Contains(t, logs.String(), "Source declares no routes.")
}

func TestLoadFile_YAMLParametersAreEscaped(t *testing.T) {
	path := writeFile(t, t.TempDir(), "params.yaml", `- from:
    uri: "timer:tick"
    parameters:
      period: "{{time:10}}"
      note: "a&b=c #d + e"
      tag: "{{tag}}"
    steps:
      - to: "log:info"
`)

	in, err := NewLoader(Options{Properties: map[string]string{"tag": "x&y"}}).LoadFile(testContext(), path)
	require.NoError(t, err)

	require.Len(t, in.Routes, 1)
	from := in.Routes[0].From
	assert.Equal(t, "tick", from.Path)
	assert.Equal(t, "10", from.Param("period", ""))
	assert.Equal(t, "a&b=c #d + e", from.Param("note", ""))
	assert.Equal(t, "x&y", from.Param("tag", ""))
	assert.Len(t, from.Params, 3)
}

func TestLoadFile_LogFormattingOptions(t *testing.T) {
	path := writeFile(t, t.TempDir(), "routes.kts", `// camel-k: language=kotlin
from("timer:kotlin?period=1000")
    .routeId("kotlin")
    .setBody()
        .simple("Hello Camel K from \${routeId}")
    .to("log:info?showAll=false&multiline=true")
`)

	in, err := NewLoader(Options{Registry: testRegistry()}).LoadFile(testContext(), path)
	require.NoError(t, err)
	require.Len(t, in.Routes, 1)
	assert.Equal(t, "false", in.Routes[0].Sink.Endpoint.Param("showAll", ""))
}
