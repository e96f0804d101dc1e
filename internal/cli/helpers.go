package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/runoshun/whatstask/internal/app"
	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

// Environment variables read by the CLI.
const (
	EnvDataDir = "WHATSTASK_DIR"
	EnvUser    = "WHATSTASK_USER"
)

// dateLayout is the accepted absolute date format.
const dateLayout = "2006-01-02"

// ResolveDataDir returns the data directory for args: the --dir flag,
// then WHATSTASK_DIR, then the nearest .whatstask directory above cwd,
// then cwd/.whatstask.
func ResolveDataDir(args []string, getenv func(string) string, cwd string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--dir="); ok {
			return v
		}
		if arg == "--dir" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := getenv(EnvDataDir); v != "" {
		return v
	}
	for dir := cwd; ; {
		candidate := filepath.Join(dir, domain.DefaultDataDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return filepath.Join(cwd, domain.DefaultDataDirName)
}

// actorID returns the acting user from --as or WHATSTASK_USER.
func actorID(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("as"); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	return os.Getenv(EnvUser)
}

// resolveTaskID expands a task ID prefix.
func resolveTaskID(cmd *cobra.Command, c *app.Container, ref string) (string, error) {
	return shared.ResolveTaskID(cmd.Context(), c.Tasks, ref)
}

// parseDate accepts YYYY-MM-DD, "today", "tomorrow" or "+Nd".
func parseDate(s string, now time.Time) (time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch s = strings.TrimSpace(strings.ToLower(s)); {
	case s == "today":
		return today, nil
	case s == "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case strings.HasPrefix(s, "+") && strings.HasSuffix(s, "d"):
		n, err := strconv.Atoi(s[1 : len(s)-1])
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("invalid relative date %q: %w", s, domain.ErrValidationFailed)
		}
		return today.AddDate(0, 0, n), nil
	}
	t, err := time.ParseInLocation(dateLayout, s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, domain.ErrValidationFailed)
	}
	return t, nil
}

// assigneeFlags are the flags that name an assignee.
type assigneeFlags struct {
	User  string
	Name  string
	Phone string
}

func (f *assigneeFlags) register(cmd *cobra.Command, verb string) {
	cmd.Flags().StringVar(&f.User, "user", "", "Registered user ID to "+verb)
	cmd.Flags().StringVar(&f.Name, "name", "", "External contact name to "+verb)
	cmd.Flags().StringVar(&f.Phone, "phone", "", "External contact WhatsApp number")
}

// candidate returns the requested assignee, or nil when no flag is set.
func (f *assigneeFlags) candidate() (*shared.Candidate, error) {
	switch {
	case f.User != "" && (f.Name != "" || f.Phone != ""):
		return nil, fmt.Errorf("--user cannot be combined with --name/--phone: %w", domain.ErrValidationFailed)
	case f.User != "":
		c := shared.InternalCandidate(f.User)
		return &c, nil
	case f.Name != "" || f.Phone != "":
		c := shared.ExternalCandidate(f.Name, f.Phone)
		return &c, nil
	default:
		return nil, nil
	}
}

// minPrefixLen is the shortest task ID prefix shown in lists.
const minPrefixLen = 8

// prefixLen returns the shortest prefix length, at least minPrefixLen,
// that keeps every ID in ids distinct.
func prefixLen(ids []string) int {
	n := minPrefixLen
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	for i := 1; i < len(sorted); i++ {
		a, b := sorted[i-1], sorted[i]
		common := 0
		for common < len(a) && common < len(b) && a[common] == b[common] {
			common++
		}
		n = max(n, common+1)
	}
	return n
}

// shortID cuts id to n characters.
func shortID(id string, n int) string {
	if len(id) > n {
		return id[:n]
	}
	return id
}

// printWarnings writes advisory notification failures.
func printWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		_, _ = fmt.Fprintf(w, "Warning: %s\n", msg)
	}
}

// formatDate renders an optional date.
func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateLayout)
}
