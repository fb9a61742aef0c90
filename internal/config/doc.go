// Package config defines the YAML settings of ans-renamer and provides helpers
// to load, validate and save them.
//
// Every field is optional: an absent settings file, or an absent field, falls
// back to the fixed rename table under the "arquivos" root.
package config
