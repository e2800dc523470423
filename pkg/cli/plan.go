package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/relcopy/pkg/domain/model"
)

var (
	planHeader = color.New(color.Bold)
	planKey    = color.New(color.FgCyan)
	planAsset  = color.New(color.FgGreen)
	planNone   = color.New(color.Faint)
)

// printPlan shows what a copy run would create without doing it
func printPlan(w io.Writer, input *model.CopyInput, release *model.Release) {
	planHeader.Fprintf(w, "Release %s: %s -> %s\n", release.TagName, input.From.FullName(), input.To.FullName())

	planKey.Fprint(w, "  name:             ")
	printOptional(w, release.GetName())
	planKey.Fprint(w, "  target_commitish: ")
	fmt.Fprintln(w, release.TargetCommitish)
	planKey.Fprint(w, "  prerelease:       ")
	fmt.Fprintln(w, release.Prerelease)
	planKey.Fprint(w, "  body:             ")
	if body := release.GetBody(); body == "" {
		planNone.Fprintln(w, "(none)")
	} else {
		fmt.Fprintf(w, "%d bytes\n", len(body))
	}

	planKey.Fprintf(w, "  assets (%d):\n", len(release.Assets))
	for _, asset := range release.Assets {
		planAsset.Fprintf(w, "    - %s", asset.Name)
		fmt.Fprintf(w, " (%d bytes)\n", asset.Size)
	}
}

func printOptional(w io.Writer, s string) {
	if s == "" {
		planNone.Fprintln(w, "(none)")
		return
	}
	fmt.Fprintln(w, s)
}
