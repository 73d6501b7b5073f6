package simple

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileAndEvaluate(t *testing.T) {
	scope := &Scope{
		RouteID:    "java",
		CamelID:    "hello-world",
		ExchangeID: "ex-1",
		Body:       "payload",
		Headers:    map[string]string{"CamelTimerCounter": "3"},
	}

	testCases := []struct {
		name     string
		lang     Language
		text     string
		expected string
	}{
		{
			name:     "route id substitution",
			lang:     LanguageSimple,
			text:     "Hello Camel K from ${routeId}",
			expected: "Hello Camel K from java",
		},
		{
			name:     "static text is verbatim",
			lang:     LanguageSimple,
			text:     "Hello Camel from Java",
			expected: "Hello Camel from Java",
		},
		{
			name:     "body only",
			lang:     "",
			text:     "${body}",
			expected: "payload",
		},
		{
			name:     "header traversal",
			lang:     LanguageSimple,
			text:     "tick #${header.CamelTimerCounter} of ${camelId}",
			expected: "tick #3 of hello-world",
		},
		{
			name:     "constant is not evaluated",
			lang:     LanguageConstant,
			text:     "Hello ${routeId}",
			expected: "Hello ${routeId}",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			expr, err := Compile(tc.lang, tc.text)
			require.NoError(t, err)

			out, err := expr.Evaluate(scope)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out)
		})
	}
}

func TestCompile_UnknownReference(t *testing.T) {
	_, err := Compile(LanguageSimple, "Hello ${user.name} and ${routeId}")
	require.ErrorIs(t, err, ErrUnknownReference)
	assert.Contains(t, err.Error(), "user")
}

func TestCompile_Syntax(t *testing.T) {
	_, err := Compile(LanguageSimple, "Hello ${routeId")
	require.Error(t, err)
}

func TestCompile_UnsupportedLanguage(t *testing.T) {
	_, err := Compile("groovy", "x")
	require.Error(t, err)
}

func TestExpression_References(t *testing.T) {
	expr, err := Compile(LanguageSimple, "${routeId}-${header.CamelTimerCounter}-${routeId}")
	require.NoError(t, err)
	assert.Equal(t, []string{"header.CamelTimerCounter", "routeId"}, expr.References())
	assert.False(t, expr.IsStatic())

	static, err := Compile(LanguageSimple, "plain")
	require.NoError(t, err)
	assert.True(t, static.IsStatic())
	assert.Empty(t, static.References())
}

func TestEvaluate_AbsentHeaderIsEmpty(t *testing.T) {
	expr, err := Compile(LanguageSimple, `tick ${header.missing}|${headers["also-missing"]}|${exchangeProperty.gone}|${header.CamelTimerName}`)
	require.NoError(t, err)

	out, err := expr.Evaluate(&Scope{RouteID: "r", Headers: map[string]string{"CamelTimerName": "x"}})
	require.NoError(t, err)
	assert.Equal(t, "tick |||x", out)

	out, err = expr.Evaluate(&Scope{RouteID: "r"})
	require.NoError(t, err)
	assert.Equal(t, "tick |||", out)
}

func TestEvaluate_AttributeOfStringFails(t *testing.T) {
	expr, err := Compile(LanguageSimple, "${header.CamelTimerName.first}")
	require.NoError(t, err)

	_, err = expr.Evaluate(&Scope{Headers: map[string]string{"CamelTimerName": "x"}})
	require.Error(t, err)
}

func TestCompile_PercentBraceIsLiteral(t *testing.T) {
	testCases := []struct {
		text     string
		expected string
	}{
		{text: "100%{ok} for ${routeId}", expected: "100%{ok} for java"},
		{text: "100%{ok}", expected: "100%{ok}"},
		{text: "%{if true}x%{endif} ${body}", expected: "%{if true}x%{endif} b"},
	}
	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			expr, err := Compile(LanguageSimple, tc.text)
			require.NoError(t, err)
			out, err := expr.Evaluate(&Scope{RouteID: "java", Body: "b"})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out)
		})
	}
}
