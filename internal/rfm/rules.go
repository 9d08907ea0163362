package rfm

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LoadRules reads an ordered rule table from a YAML file of the form:
//
//	rules:
//	  - pattern: "[1-2][1-2]"
//	    label: hibernating
//
// Coverage is checked by NewSegmenter, not here.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rfm: read rules %s", path)
	}

	var wrapper struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "rfm: parse rules")
	}
	if len(wrapper.Rules) == 0 {
		return nil, eris.Errorf("rfm: rules file %s defines no rules", path)
	}
	return wrapper.Rules, nil
}
