package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"invodex/internal/pipeline"
)

var watchInterval time.Duration

var uploadCmd = &cobra.Command{
	Use:   "upload <files...>",
	Short: "Upload invoice documents and run extraction on them",
	Long: `Upload one or more invoice documents and extract structured invoices
from them. Files are validated locally (type, size, PDF structure),
uploaded concurrently, and each upload is followed by an extraction
pass. Progress is printed until every file has settled.`,
	Example: `  invodex upload scan.pdf
  invodex upload invoices/*.png --watch-interval 1s`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().DurationVar(&watchInterval, "watch-interval", 500*time.Millisecond, "how often to print progress updates")
}

func runUpload(cmd *cobra.Command, args []string) error {
	p := pipeline.New(apiClient(), 0, nil)

	accepted, rejected := p.Submit(cmd.Context(), args...)
	for _, r := range rejected {
		fmt.Fprintf(os.Stderr, "rejected %s: %s\n", r.Path, r.Reason)
	}
	if len(accepted) == 0 {
		return fmt.Errorf("no files accepted")
	}

	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	// Print a line whenever a file's status or progress changes, so the
	// output stays readable when several files are in flight at once.
	seen := make(map[string]string)
	render := func() {
		for _, st := range p.List() {
			line := progressLine(st)
			if seen[st.ID] == line {
				continue
			}
			seen[st.ID] = line
			fmt.Println(line)
		}
	}

	for {
		select {
		case <-done:
			render()
			return summarizeUploads(p.List())
		case <-ticker.C:
			render()
		}
	}
}

func progressLine(st pipeline.FileState) string {
	switch st.Status {
	case pipeline.StatusCompleted:
		number := ""
		if st.Result.Invoice != nil {
			number = st.Result.Invoice.InvoiceNumber
		}
		return fmt.Sprintf("%-30s completed  invoice %s (%s)", st.Name, st.Result.InvoiceID, number)
	case pipeline.StatusError:
		return fmt.Sprintf("%-30s error      %s", st.Name, st.Err)
	default:
		return fmt.Sprintf("%-30s %-10s %3d%%", st.Name, st.Status, st.Progress)
	}
}

func summarizeUploads(states []pipeline.FileState) error {
	completed, failed := 0, 0
	for _, st := range states {
		switch st.Status {
		case pipeline.StatusCompleted:
			completed++
		case pipeline.StatusError:
			failed++
		}
	}
	fmt.Printf("\n%d completed, %d failed\n", completed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, completed+failed)
	}
	return nil
}
