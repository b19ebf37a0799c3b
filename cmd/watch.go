/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"bennypowers.dev/cem/internal/logging"
	W "bennypowers.dev/cem/watcher"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	watchProjectPath string
	watchExec        string
	watchRun         string
	watchSilent      bool
)

// watchCmd is the thin CLI driver described in spec.md §6: it owns argument
// parsing, human-readable console output, and external command execution —
// everything the watcher library itself deliberately leaves out.
var watchCmd = &cobra.Command{
	Use:   "watch [files or glob patterns]",
	Short: "Watch entry files and their import graph for changes",
	Long: `Tracks a set of entry source files, computes their transitive import
graph across module styles, and reports additions, modifications, and
deletions attributed either to an entry or to one of its dependencies.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectRoot := watchProjectPath
		if projectRoot == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("determine project path: %w", err)
			}
			projectRoot = cwd
		} else {
			abs, err := expandPath(projectRoot)
			if err != nil {
				return fmt.Errorf("invalid --project-path: %w", err)
			}
			projectRoot = abs
		}

		runCmd := watchRun
		execCmd := watchExec
		if execCmd == "" {
			execCmd = runCmd
		}

		entries, globs := classifyArgs(args, projectRoot)
		if len(entries) == 0 && len(globs) == 0 && runCmd != "" {
			if implicit, ok := implicitEntryFromCommand(runCmd); ok {
				entries = append(entries, implicit)
			}
		}

		if len(entries) == 0 && len(globs) == 0 {
			return fmt.Errorf("watcher: no entries or glob patterns supplied")
		}

		w, err := W.Setup(W.Config{
			Project:     filepath.Base(projectRoot),
			ProjectRoot: projectRoot,
			Entries:     entries,
			GlobEntries: globs,
		})
		if err != nil {
			return fmt.Errorf("setup watcher: %w", err)
		}

		if !watchSilent {
			logging.Info("Watching %d entr%s under %s", len(w.Entries()), plural(len(w.Entries())), projectRoot)
		}

		if runCmd != "" {
			runExternalCommand(runCmd, nil)
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		w.Watch(W.DefaultPollInterval, func(changes []W.EntryChange) {
			if !watchSilent {
				for _, c := range changes {
					logging.Info("%s: %s", c.ChangeType, c.Entry)
				}
			}
			if execCmd != "" && len(changes) > 0 {
				runExternalCommand(execCmd, &changes[0])
			}
		})

		<-sigChan
		if !watchSilent {
			logging.Info("Shutting down watcher...")
		}
		w.Stop()
		return nil
	},
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// classifyArgs splits positional CLI arguments into explicit entry paths
// and glob patterns, the way spec.md §6 describes ("positional arguments
// are entry paths or globs"), using the same glob-character heuristic
// workspace.isGlobPattern applies elsewhere in this codebase.
func classifyArgs(args []string, projectRoot string) (entries, globs []string) {
	for _, a := range args {
		if strings.ContainsAny(a, "*?[]{}") {
			globs = append(globs, a)
			continue
		}
		if filepath.IsAbs(a) {
			entries = append(entries, a)
		} else {
			entries = append(entries, filepath.Join(projectRoot, a))
		}
	}
	return entries, globs
}

// implicitEntryFromCommand implements the -r/--run heuristic from spec.md
// §6: when no entries were supplied, the first token in cmd that looks like
// a path (starts with "." or "/") becomes the implicit entry.
func implicitEntryFromCommand(cmd string) (string, bool) {
	for _, tok := range strings.Fields(cmd) {
		if strings.HasPrefix(tok, ".") || strings.HasPrefix(tok, "/") {
			return tok, true
		}
	}
	return "", false
}

// runExternalCommand runs cmd synchronously, substituting the "[info]"
// placeholder with a JSON serialization of change (when non-nil) and
// exporting the same JSON via the CEM_WATCH_INFO environment variable, per
// spec.md §6.
func runExternalCommand(cmdStr string, change *W.EntryChange) {
	info := "null"
	if change != nil {
		if b, err := json.Marshal(change); err == nil {
			info = string(b)
		}
	}
	substituted := strings.ReplaceAll(cmdStr, "[info]", info)

	shell := "sh"
	shellFlag := "-c"
	if runtime.GOOS == "windows" {
		shell = "cmd"
		shellFlag = "/c"
	}

	c := exec.Command(shell, shellFlag, substituted)
	c.Env = append(os.Environ(), "CEM_WATCH_INFO="+info)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		pterm.Warning.Printf("command failed: %v\n", err)
	}
}

func init() {
	watchCmd.Flags().StringVarP(&watchProjectPath, "project-path", "p", "", "project root; defaults to current working directory")
	watchCmd.Flags().StringVarP(&watchExec, "exec", "x", "", "command executed synchronously on each change batch")
	watchCmd.Flags().StringVarP(&watchRun, "run", "r", "", "like --exec, but also runs once at startup")
	watchCmd.Flags().BoolVarP(&watchSilent, "silent", "s", false, "suppress informational output")
	rootCmd.AddCommand(watchCmd)
}
