package kamel

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/vk/kamelrun/internal/dsl"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Templates use [[ ]] so that {{property}} placeholders pass through.
var templates = template.Must(
	template.New("").Delims("[[", "]]").ParseFS(templateFS, "templates/*.tmpl"),
)

var (
	// ErrSourceExists is returned by Init when the target file is present.
	ErrSourceExists = errors.New("source file already exists")
	// ErrInvalidFileName is returned for file names the language rejects.
	ErrInvalidFileName = errors.New("invalid source file name")
)

var classNameRe = regexp.MustCompile(`^[A-Z][a-zA-Z_$0-9]*$`)

// Scaffold renders the starter integration for the language of path. Java
// and Groovy sources need a file stem that is a valid class name.
func Scaffold(path string) ([]byte, error) {
	lang, err := dsl.Detect(path, "")
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return nil, fmt.Errorf("%w: %s has an empty name", ErrInvalidFileName, path)
	}
	if (lang == dsl.Java || lang == dsl.Groovy) && !classNameRe.MatchString(stem) {
		return nil, fmt.Errorf("%w: %s must follow the %s naming convention %s", ErrInvalidFileName, base, lang, classNameRe.String())
	}
	if err := ValidName(NameFromPath(path)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(lang)+".tmpl", struct{ Name string }{Name: stem}); err != nil {
		return nil, fmt.Errorf("rendering %s template: %w", lang, err)
	}
	return buf.Bytes(), nil
}

// Init writes the starter integration to path. An existing file is never
// overwritten.
func Init(path string) error {
	content, err := Scaffold(path)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrSourceExists, path)
		}
		return err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
