package airutil

import (
	"os"

	"github.com/drone/envsubst"
)

// ExpandEnv substitutes $VAR and ${VAR} references using the
// process environment. Input that cannot be parsed is returned
// unchanged.
func ExpandEnv(s string) string {
	val, err := envsubst.EvalEnv(s)
	if err != nil {
		return s
	}
	return val
}

// ExpandAll expands each of the given strings in place.
func ExpandAll(values ...*string) {
	for _, v := range values {
		if v == nil {
			continue
		}
		*v = ExpandEnv(*v)
	}
}

// SetDefaultEnv sets key to value only when key is unset or empty.
// It reports whether the variable was changed.
func SetDefaultEnv(key, value string) (bool, error) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return false, nil
	}
	if err := os.Setenv(key, value); err != nil {
		return false, err
	}
	return true, nil
}
