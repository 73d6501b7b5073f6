package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vk/kamelrun/internal/cli"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Placeholders without defaults and without values make loading fail
	// inside app.NewApp, which panics.
	source := `// camel-k: language=java

import org.apache.camel.builder.RouteBuilder;

public class SimpleProperty extends RouteBuilder {
  @Override
  public void configure() throws Exception {
    from("timer:java?period=1000")
      .setBody()
        .simple("{{firstProperty}} {{secondProperty}}")
      .to("log:info");
  }
}
`
	filePath := filepath.Join(t.TempDir(), "SimpleProperty.java")
	require.NoError(t, os.WriteFile(filePath, []byte(source), 0o600))
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, out, []string{"run", filePath})

	// --- Assert ---
	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), "application startup panicked")
	require.Contains(t, runErr.Error(), "firstProperty")
	require.Contains(t, runErr.Error(), "secondProperty")
	require.NotContains(t, out.String(), "Starting routes")
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, out, []string{"-h"})

	require.NoError(t, err)
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, out, []string{"run", "--this-is-not-a-valid-flag"})

	require.Error(t, err)
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_HelloWorld(t *testing.T) {
	t.Parallel()

	source := `// camel-k: language=java

import org.apache.camel.builder.RouteBuilder;

public class HelloWorld extends RouteBuilder {
  @Override
  public void configure() throws Exception {
    from("timer:java?period=20&repeatCount=2")
      .routeId("java")
      .setBody()
        .simple("Hello Camel K from ${routeId}")
      .to("log:info");
  }
}
`
	filePath := filepath.Join(t.TempDir(), "HelloWorld.java")
	require.NoError(t, os.WriteFile(filePath, []byte(source), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out := &bytes.Buffer{}
	err := run(ctx, out, out, []string{"run", "--log-format", "text", filePath})

	require.NoError(t, err)
	require.Equal(t, 2, bytes.Count(out.Bytes(), []byte(`msg="Hello Camel K from java"`)))
}
