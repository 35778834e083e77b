package migrator

import (
	"fmt"
	"strings"
	"time"
)

func (app *App) printSummary(r Report) {
	if app.out == nil {
		return
	}
	line := strings.Repeat("=", 60)

	fmt.Fprintln(app.out, line)
	fmt.Fprintln(app.out, "MIGRATION SUMMARY")
	fmt.Fprintln(app.out, line)
	fmt.Fprintf(app.out, "Total files found:            %d\n", r.Upload.Total)
	fmt.Fprintf(app.out, "Successfully uploaded:        %d\n", r.Upload.Uploaded)
	fmt.Fprintf(app.out, "Skipped (already uploaded):   %d\n", r.Upload.Skipped)
	fmt.Fprintf(app.out, "Failed uploads:               %d\n", r.Upload.Failed)
	if r.Rewritten {
		fmt.Fprintf(app.out, "Links updated:                %d\n", r.Rewrite.LinksUpdated)
		fmt.Fprintf(app.out, "Blocks / pages modified:      %d / %d\n", r.Rewrite.BlocksModified, r.Rewrite.PagesModified)
		if r.Rewrite.LinksNotFound > 0 {
			fmt.Fprintf(app.out, "Unresolved links:             %d\n", r.Rewrite.LinksNotFound)
		}
		fmt.Fprintf(app.out, "Output:                       %s\n", r.Output)
	}
	fmt.Fprintf(app.out, "Elapsed:                      %s\n", r.Elapsed.Round(time.Second))
	fmt.Fprintln(app.out, line)
}
