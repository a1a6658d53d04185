package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Its-donkey/eventpage/internal/ui/markup"
)

// ErrCheckFailed is returned when any checked document has errors.
var ErrCheckFailed = errors.New("markup check failed")

const fetchTimeout = 10 * time.Second

func newCheckCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file-or-url>...",
		Short: "Check HTML against the page component markup",
		Long: `Parses each document and reports countdown, navbar and popup markup that the
page components cannot bind to (errors) or will silently degrade on (warnings).
Exits non-zero when any document has errors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			client := &http.Client{Timeout: fetchTimeout}
			failed := 0
			for _, target := range args {
				rep, err := checkTarget(client, target)
				if err != nil {
					return err
				}
				printReport(out, target, rep, root.verbose)
				if !rep.OK() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d documents", ErrCheckFailed, failed, len(args))
			}
			return nil
		},
	}
}

func checkTarget(client *http.Client, target string) (markup.Report, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		resp, err := client.Get(target)
		if err != nil {
			return markup.Report{}, fmt.Errorf("fetch %s: %w", target, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return markup.Report{}, fmt.Errorf("fetch %s: status %d", target, resp.StatusCode)
		}
		return markup.Check(resp.Body)
	}
	f, err := os.Open(target)
	if err != nil {
		return markup.Report{}, fmt.Errorf("open %s: %w", target, err)
	}
	defer f.Close()
	return markup.Check(f)
}

func printReport(w io.Writer, target string, rep markup.Report, verbose bool) {
	status := "ok"
	if !rep.OK() {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s: %s (%d counters, %d steps, %d errors, %d warnings)\n",
		target, status, rep.Counters, rep.Steps, len(rep.Errors()), len(rep.Warnings()))
	for _, f := range rep.Errors() {
		fmt.Fprintf(w, "  %s\n", f)
	}
	if verbose || !rep.OK() {
		for _, f := range rep.Warnings() {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
}
