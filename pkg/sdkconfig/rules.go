package sdkconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule describes a dependency expansion: whenever Trigger appears as a
// boolean-true override, every entry in Requires must be present too.
//
// Rules exist because appending raw sdkconfig lines bypasses the
// toolchain's own Kconfig "select" resolution; each rule mirrors the
// minimal dependency set menuconfig would have applied for a known
// feature.
type Rule struct {
	// Trigger is the configuration key that fires the rule when set
	// to a boolean-true value.
	Trigger string `yaml:"trigger"`

	// Requires lists the KEY=value entries implied by the trigger.
	Requires []string `yaml:"requires"`
}

// BuiltinRules returns the compiled-in rule table.
func BuiltinRules() []Rule {
	return []Rule{
		{
			Trigger: "CONFIG_USE_ESP_BLUFI_WIFI_PROVISIONING",
			Requires: []string{
				"CONFIG_BT_ENABLED=y",
				"CONFIG_BT_BLUEDROID_ENABLED=y",
				"CONFIG_BT_BLE_42_FEATURES_SUPPORTED=y",
				"CONFIG_BT_BLE_50_FEATURES_SUPPORTED=n",
				"CONFIG_BT_BLE_BLUFI_ENABLE=y",
				"CONFIG_MBEDTLS_DHM_C=y",
			},
		},
	}
}

// LoadRules reads additional rules from a YAML document. The file
// holds a list of {trigger, requires} entries; loaded rules apply
// after the builtin table, in file order.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	for i, r := range rules {
		if r.Trigger == "" {
			return nil, fmt.Errorf("rules file %s: rule %d has no trigger", path, i)
		}
	}

	return rules, nil
}
