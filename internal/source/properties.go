package source

import (
	"github.com/vk/kamelrun/internal/config"
	"github.com/vk/kamelrun/internal/placeholder"
)

// properties builds the property source for one integration. Precedence,
// lowest first: environment (opt-in), command-line property files,
// modeline property files, modeline properties, command-line properties.
func (l *Loader) properties(in *config.Integration) (placeholder.Source, error) {
	var layers []map[string]string
	files := append(append([]string(nil), l.opts.PropertyFiles...), in.PropertyFiles...)
	for _, f := range files {
		values, err := placeholder.LoadFile(f)
		if err != nil {
			return nil, err
		}
		layers = append(layers, values)
	}
	layers = append(layers, in.Properties, l.opts.Properties)

	set := placeholder.Layered(layers...)
	if l.opts.UseEnv {
		return placeholder.Chain{set, placeholder.Env{}}, nil
	}
	return set, nil
}
