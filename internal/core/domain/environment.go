package domain

import (
	"sort"
	"strings"
)

// EnvVar is a single exported variable
type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Environment describes how a job activates its runtime before running
type Environment struct {
	Modules     []string          `json:"modules,omitempty"`
	Name        string            `json:"name"`
	Activate    string            `json:"activate"` // e.g. "source activate"
	Vars        map[string]string `json:"vars,omitempty"`
	Interpreter string            `json:"interpreter"` // may reference $ENV_NAME
}

// SortedVars returns the custom variables ordered by name
func (e Environment) SortedVars() []EnvVar {
	vars := make([]EnvVar, 0, len(e.Vars))
	for k, v := range e.Vars {
		vars = append(vars, EnvVar{Name: k, Value: v})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}

// ResolveInterpreter expands $ENV_NAME and ${ENV_NAME} in the interpreter path.
// Other variables are left for the shell.
func (e Environment) ResolveInterpreter() string {
	r := strings.NewReplacer("${ENV_NAME}", e.Name, "$ENV_NAME", e.Name)
	return r.Replace(e.Interpreter)
}

// Environ appends the custom variables to base in KEY=VALUE form
func (e Environment) Environ(base []string) []string {
	env := make([]string, 0, len(base)+len(e.Vars)+1)
	env = append(env, base...)
	if e.Name != "" {
		env = append(env, "ENV_NAME="+e.Name)
	}
	for _, v := range e.SortedVars() {
		env = append(env, v.Name+"="+v.Value)
	}
	return env
}
