// Package slurm provides the SLURM batch scheduler adapter: job script
// rendering, sbatch submission and squeue/sacct state queries.
package slurm

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/template"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/crabzie/foldbatch/internal/core/port"
)

// ScriptCmdPrefix is the prefix of every scheduler directive
const ScriptCmdPrefix = "#SBATCH"

var jobScriptTemplate = `#!/bin/bash
` + ScriptCmdPrefix + ` --job-name={{.Job.Name}}
` + ScriptCmdPrefix + ` --nodes={{.Job.Nodes}}
{{- if gt .Job.CPUsPerTask 0}}
` + ScriptCmdPrefix + ` --cpus-per-task={{.Job.CPUsPerTask}}
{{- end}}
` + ScriptCmdPrefix + ` --partition={{.Job.Partition}}
{{- with .Job.QOS}}
` + ScriptCmdPrefix + ` --qos={{.}}
{{- end}}
` + ScriptCmdPrefix + ` --time={{timelimit .Job.TimeLimit}}
{{- with .Job.GPU.String}}
` + ScriptCmdPrefix + ` --gpus={{.}}
{{- end}}
{{- with .Job.Array}}
` + ScriptCmdPrefix + ` --array={{.String}}
{{- end}}
{{- with .Job.Memory}}
` + ScriptCmdPrefix + ` --mem={{.}}
{{- end}}
` + ScriptCmdPrefix + ` --output={{.Output}}
` + ScriptCmdPrefix + ` --error={{.Error}}
{{- with .Job.Export}}
` + ScriptCmdPrefix + ` --export={{.}}
{{- end}}
{{- if .Job.Exclusive}}
` + ScriptCmdPrefix + ` --exclusive
{{- end}}
{{- with .Job.MailType}}
` + ScriptCmdPrefix + ` --mail-type={{.}}
{{- end}}
{{- with .Job.MailUser}}
` + ScriptCmdPrefix + ` --mail-user={{.}}
{{- end}}

cd $SLURM_SUBMIT_DIR
{{- range .Env.Modules}}
module load {{.}}
{{- end}}
{{- with .Env.Name}}
ENV_NAME={{quote .}}
{{- end}}
{{- if and .Env.Name .Env.Activate}}
{{.Env.Activate}} $ENV_NAME
{{- end}}
{{- range .Vars}}
export {{.Name}}={{quote .Value}}
{{- end}}

{{.Command}}
`

type scriptData struct {
	Job     domain.JobDescriptor
	Env     domain.Environment
	Vars    []domain.EnvVar
	Output  string
	Error   string
	Command string
}

type renderer struct {
	tmpl *template.Template
}

// NewRenderer creates the job script renderer
func NewRenderer() port.ScriptRenderer {
	funcs := template.FuncMap{
		"timelimit": domain.FormatTimeLimit,
		"quote":     shellQuote,
	}
	return &renderer{
		tmpl: template.Must(template.New("sbatch").Funcs(funcs).Parse(jobScriptTemplate)),
	}
}

// Render validates the descriptor and writes the batch script to w
func (r *renderer) Render(w io.Writer, job domain.JobDescriptor, env domain.Environment, command string) error {
	if err := job.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(command) == "" {
		return fmt.Errorf("%w: empty command", domain.ErrInvalidDescriptor)
	}

	out, errPattern := job.LogPatterns()
	data := scriptData{
		Job:     job,
		Env:     env,
		Vars:    env.SortedVars(),
		Output:  out,
		Error:   errPattern,
		Command: command,
	}
	if err := r.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render job script: %w", err)
	}
	return nil
}

var shellSafe = regexp.MustCompile(`^[A-Za-z0-9_./:=,+@%-]+$`)

// shellQuote single quotes s unless it is made of shell-safe characters only
func shellQuote(s string) string {
	if shellSafe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
