package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// LogEntry matches the Zap JSON structure of the submitter & tracker logs
type LogEntry struct {
	Level      string `json:"level"`
	Logger     string `json:"logger"`
	Msg        string `json:"msg"`
	JobID      int64  `json:"job_id"`
	Folder     string `json:"folder"`
	Input      string `json:"input"`
	From       string `json:"from"`
	To         string `json:"to"`
	ArrayTasks int    `json:"array_tasks"`
	Error      string `json:"error"`
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[37m"
)

// monitor pretty prints submission activity from foldbatch JSON logs, read
// from stdin or followed from a log file
func main() {
	file := flag.String("file", "", "log file to follow, stdin when empty")
	flag.Parse()

	fmt.Println(colorCyan + "Fold Batch Activity Monitor Starting..." + colorReset)
	fmt.Println("-------------------------------------------------------------------------")

	var in io.Reader = os.Stdin
	var cmd *exec.Cmd
	if *file != "" {
		cmd = exec.Command("tail", "-n", "+1", "-F", *file)
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			fmt.Printf("Error creating stdout pipe: %v\n", err)
			os.Exit(1)
		}
		if err := cmd.Start(); err != nil {
			fmt.Printf("Error starting tail command: %v\n", err)
			os.Exit(1)
		}
		in = stdout
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		var entry LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			// Not a JSON log or different format, ignore
			continue
		}
		if line, ok := prettify(entry); ok {
			fmt.Println(line)
		}
	}

	if cmd != nil {
		if err := cmd.Wait(); err != nil {
			fmt.Printf("tail command exited: %v\n", err)
		}
	}
}

func prettify(entry LogEntry) (string, bool) {
	label := colorGray + "[" + strings.Trim(entry.Logger, "[]") + "]" + colorReset

	switch {
	case entry.Msg == "Submitted jobs for file":
		return fmt.Sprintf("%s 📤 "+colorYellow+"Submitted:"+colorReset+" job %d (%d tasks) from %s", label, entry.JobID, entry.ArrayTasks, entry.Folder), true
	case entry.Msg == "Received submission":
		return fmt.Sprintf("%s 📥 "+colorBlue+"Tracking:"+colorReset+" job %d for %s", label, entry.JobID, entry.Input), true
	case entry.Msg == "Submission state updated" && entry.To == "COMPLETED":
		return fmt.Sprintf("%s ✅ "+colorGreen+"Completed:"+colorReset+" job %d in %s", label, entry.JobID, entry.Folder), true
	case entry.Msg == "Submission state updated" && entry.To == "FAILED":
		return fmt.Sprintf("%s ❌ "+colorRed+"Failed:"+colorReset+" job %d in %s", label, entry.JobID, entry.Folder), true
	case entry.Msg == "Submission state updated":
		return fmt.Sprintf("%s ⚙️  "+colorBlue+"%s -> %s:"+colorReset+" job %d", label, entry.From, entry.To, entry.JobID), true
	case strings.EqualFold(entry.Level, "error"):
		return fmt.Sprintf("%s ❌ "+colorRed+"ERROR:"+colorReset+" %s %s", label, entry.Msg, entry.Error), true
	}
	return "", false
}
