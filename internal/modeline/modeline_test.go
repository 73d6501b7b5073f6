package modeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/kamelrun/internal/config"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected []config.Directive
	}{
		{
			name: "java language directive",
			content: `// camel-k: language=java

import org.apache.camel.builder.RouteBuilder;
`,
			expected: []config.Directive{{Key: "language", Value: "java", Line: 1}},
		},
		{
			name: "maven dependency directive",
			content: `// camel-k: dependency=mvn:org.apache.commons:commons-math3:3.6.1

import org.apache.camel.builder.RouteBuilder;
`,
			expected: []config.Directive{{Key: "dependency", Value: "mvn:org.apache.commons:commons-math3:3.6.1", Line: 1}},
		},
		{
			name:    "several options on one line",
			content: "// camel-k: language=java name=hello trait=logging.level=DEBUG\nclass X {}\n",
			expected: []config.Directive{
				{Key: "language", Value: "java", Line: 1},
				{Key: "name", Value: "hello", Line: 1},
				{Key: "trait", Value: "logging.level=DEBUG", Line: 1},
			},
		},
		{
			name:    "quoted value keeps spaces",
			content: "# camel-k: property=\"greeting=Hello world\"\n- from:\n",
			expected: []config.Directive{
				{Key: "property", Value: "greeting=Hello world", Line: 1},
			},
		},
		{
			name:    "xml comment after prolog",
			content: "<?xml version=\"1.0\"?>\n<!-- camel-k: language=xml -->\n<routes/>\n",
			expected: []config.Directive{
				{Key: "language", Value: "xml", Line: 2},
			},
		},
		{
			name:    "license block before modeline",
			content: "/*\n * Licensed under the Apache License.\n */\n// camel-k: namespace=test\nimport x;\n",
			expected: []config.Directive{
				{Key: "namespace", Value: "test", Line: 4},
			},
		},
		{
			name:     "modeline after code is ignored",
			content:  "import x;\n// camel-k: language=java\n",
			expected: nil,
		},
		{
			name:     "plain comments are skipped",
			content:  "// Write your routes here\n",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			directives, err := Parse([]byte(tc.content))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, directives)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("// camel-k: colour=blue\n"))
	require.ErrorIs(t, err, ErrUnknownDirective)

	_, err = Parse([]byte("// camel-k: language\n"))
	require.ErrorIs(t, err, ErrMalformedDirective)

	_, err = Parse([]byte("// camel-k: property=\"a=b\n"))
	require.ErrorIs(t, err, ErrMalformedDirective)
}

func TestApply(t *testing.T) {
	directives, err := Parse([]byte(`// camel-k: language=Java name=greeter namespace=team-a
// camel-k: dependency=camel:jackson dependency=mvn:org.apache.commons:commons-math3:3.6.1
// camel-k: property=time=2000 property=file:app.properties trait=logging.level=DEBUG env=A=1
class X {}
`))
	require.NoError(t, err)

	in := &config.Integration{}
	require.NoError(t, Apply(in, directives))

	assert.Equal(t, "java", in.Language)
	assert.Equal(t, "greeter", in.Name)
	assert.Equal(t, "team-a", in.Namespace)
	assert.Equal(t, map[string]string{"time": "2000"}, in.Properties)
	assert.Equal(t, []string{"app.properties"}, in.PropertyFiles)
	assert.Equal(t, []string{"logging.level=DEBUG"}, in.Traits)
	assert.Equal(t, []string{"A=1"}, in.Env)
	require.Len(t, in.Dependencies, 2)
	assert.Equal(t, "camel:jackson", in.Dependencies[0].Coordinates())
	assert.Equal(t, "commons-math3", in.Dependencies[1].ArtifactID)
	assert.Len(t, in.Directives, 9)
}

func TestApply_BadProperty(t *testing.T) {
	in := &config.Integration{}
	err := Apply(in, []config.Directive{{Key: KeyProperty, Value: "novalue", Line: 1}})
	require.ErrorIs(t, err, ErrMalformedDirective)
}

func TestParseDependency(t *testing.T) {
	testCases := []struct {
		raw       string
		expectErr bool
		expected  config.Dependency
	}{
		{
			raw: "mvn:org.apache.commons:commons-math3:3.6.1",
			expected: config.Dependency{
				Kind: config.DependencyMaven, GroupID: "org.apache.commons", ArtifactID: "commons-math3", Version: "3.6.1",
				Raw: "mvn:org.apache.commons:commons-math3:3.6.1",
			},
		},
		{
			raw:      "mvn:org.acme:lib",
			expected: config.Dependency{Kind: config.DependencyMaven, GroupID: "org.acme", ArtifactID: "lib", Raw: "mvn:org.acme:lib"},
		},
		{
			raw:      "org.acme:lib:1.0",
			expected: config.Dependency{Kind: config.DependencyMaven, GroupID: "org.acme", ArtifactID: "lib", Version: "1.0", Raw: "org.acme:lib:1.0"},
		},
		{
			raw:      "camel:jackson",
			expected: config.Dependency{Kind: config.DependencyCamel, ArtifactID: "jackson", Raw: "camel:jackson"},
		},
		{
			raw:      "camel-jackson",
			expected: config.Dependency{Kind: config.DependencyCamel, ArtifactID: "jackson", Raw: "camel-jackson"},
		},
		{
			raw:      "my-lib",
			expected: config.Dependency{Kind: config.DependencyArtifact, ArtifactID: "my-lib", Raw: "my-lib"},
		},
		{raw: "", expectErr: true},
		{raw: "jackson", expectErr: true},
		{raw: "org.acme:lib", expectErr: true},
		{raw: "a:b:c:d", expectErr: true},
		{raw: "mvn:org.acme", expectErr: true},
		{raw: "mvn:org.acme::1.0", expectErr: true},
		{raw: "camel:", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			dep, err := ParseDependency(tc.raw)
			if tc.expectErr {
				require.ErrorIs(t, err, ErrInvalidDependency)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, dep)
		})
	}
}

func TestDependency_Coordinates(t *testing.T) {
	dep, err := ParseDependency("org.acme:lib:1.0")
	require.NoError(t, err)
	assert.Equal(t, "mvn:org.acme:lib:1.0", dep.Coordinates())

	dep, err = ParseDependency("camel-jackson")
	require.NoError(t, err)
	assert.Equal(t, "camel:jackson", dep.Coordinates())
}
