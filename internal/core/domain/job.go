package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Default log file patterns, %j is expanded by the scheduler to the job id
const (
	DefaultOutputPattern = "slurm.%j.out"
	DefaultErrorPattern  = "slurm.%j.err"
)

// GPURequest is a generic resource request like "a100:1"
type GPURequest struct {
	Count int    `json:"count"`
	Type  string `json:"type,omitempty"`
}

// String renders the request in scheduler syntax, empty when no GPU is requested
func (g GPURequest) String() string {
	if g.Count <= 0 {
		return ""
	}
	if g.Type == "" {
		return strconv.Itoa(g.Count)
	}
	return g.Type + ":" + strconv.Itoa(g.Count)
}

// ArrayRange is an inclusive job array index range
type ArrayRange struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

func (a ArrayRange) String() string {
	return fmt.Sprintf("%d-%d", a.First, a.Last)
}

// Len returns the number of array tasks
func (a ArrayRange) Len() int {
	return a.Last - a.First + 1
}

// JobDescriptor is the resource request handed to the cluster scheduler
type JobDescriptor struct {
	Name        string        `json:"name"`
	Nodes       int           `json:"nodes"`
	CPUsPerTask int           `json:"cpus_per_task"`
	GPU         GPURequest    `json:"gpu"`
	Memory      string        `json:"memory"` // "32G", "0" means all node memory
	TimeLimit   time.Duration `json:"time_limit"`
	Partition   string        `json:"partition"`
	QOS         string        `json:"qos,omitempty"`
	Array       *ArrayRange   `json:"array,omitempty"`
	Output      string        `json:"output"`
	Error       string        `json:"error"`
	Export      string        `json:"export,omitempty"` // NONE, ALL or a variable list
	Exclusive   bool          `json:"exclusive"`
	MailType    string        `json:"mail_type,omitempty"`
	MailUser    string        `json:"mail_user,omitempty"`
}

// WithArray returns a copy of the descriptor covering n array tasks
func (d JobDescriptor) WithArray(n int) JobDescriptor {
	d.Array = &ArrayRange{First: 0, Last: n - 1}
	return d
}

// LogPatterns returns output and error patterns, falling back to the defaults
func (d JobDescriptor) LogPatterns() (string, string) {
	out, errPattern := d.Output, d.Error
	if out == "" {
		out = DefaultOutputPattern
	}
	if errPattern == "" {
		errPattern = DefaultErrorPattern
	}
	return out, errPattern
}

// Validate rejects descriptors the scheduler would refuse
func (d JobDescriptor) Validate() error {
	var problems []string

	if strings.TrimSpace(d.Name) == "" {
		problems = append(problems, "job name is empty")
	}
	if d.Nodes < 1 {
		problems = append(problems, fmt.Sprintf("node count %d < 1", d.Nodes))
	}
	if d.CPUsPerTask < 0 {
		problems = append(problems, fmt.Sprintf("cpu count %d is negative", d.CPUsPerTask))
	}
	if d.GPU.Count < 0 {
		problems = append(problems, fmt.Sprintf("gpu count %d is negative", d.GPU.Count))
	}
	if d.Memory != "" {
		if _, err := humanize.ParseBytes(d.Memory); err != nil {
			problems = append(problems, fmt.Sprintf("memory %q: %v", d.Memory, err))
		}
	}
	if d.TimeLimit <= 0 {
		problems = append(problems, "time limit must be positive")
	}
	if strings.TrimSpace(d.Partition) == "" {
		problems = append(problems, "partition is empty")
	}
	if d.Array != nil && (d.Array.First < 0 || d.Array.First > d.Array.Last) {
		problems = append(problems, fmt.Sprintf("array range %s is invalid", d.Array))
	}
	if d.MailUser != "" && d.MailType == "" {
		problems = append(problems, "mail user set without mail type")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDescriptor, strings.Join(problems, "; "))
	}
	return nil
}

// FormatTimeLimit renders a duration as D-HH:MM:SS, rounded up to the second
func FormatTimeLimit(d time.Duration) string {
	secs := int64((d + time.Second - 1) / time.Second)
	days := secs / 86400
	secs %= 86400
	return fmt.Sprintf("%d-%02d:%02d:%02d", days, secs/3600, (secs%3600)/60, secs%60)
}
