package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrianliechti/scanpress/pkg/converter"
	"github.com/adrianliechti/scanpress/pkg/markdown"

	"github.com/spf13/cobra"
)

const (
	resourcesDir = "resources"
	outputDir    = "output"

	previewLength = 500
)

func convertCommand() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "convert <file> [output.pdf]",
		Short: "Convert a scanned PDF or image into a new PDF",
		Long: fmt.Sprintf("Convert a scanned PDF or image into a new PDF.\n\n"+
			"Supported formats: jpg, jpeg, png, gif, webp, pdf\n\n"+
			"Relative inputs are also looked up in ./%s, relative outputs are written to ./%s.", resourcesDir, outputDir),

		Args: cobra.RangeArgs(1, 2),

		RunE: func(cmd *cobra.Command, args []string) error {
			input := resolveInput(args[0])

			output := converter.OutputName(input)

			if len(args) > 1 {
				output = args[1]
			}

			return runConvert(cmd, model, input, resolveOutput(output))
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "OCR model to use")

	return cmd
}

func runConvert(cmd *cobra.Command, model, input, output string) error {
	data, err := os.ReadFile(input)

	if err != nil {
		return fmt.Errorf("read input: %w (also checked %s)", err, filepath.Join(resourcesDir, filepath.Base(input)))
	}

	cfg, err := loadConfig()

	if err != nil {
		return err
	}

	c, err := cfg.NewConverter(model)

	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Converting %s with %s\n", input, c.Model())

	result, err := c.Convert(cmd.Context(), converter.File{
		Name:    filepath.Base(input),
		Content: data,
	})

	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}

	if err := os.WriteFile(output, result.PDF, 0o644); err != nil {
		return err
	}

	printResult(w, input, output, result)

	return nil
}

func printResult(w io.Writer, input, output string, result *converter.Result) {
	rule := strings.Repeat("-", 40)

	preview := markdown.Preview(result.Markdown, previewLength)

	if len([]rune(result.Markdown)) > previewLength {
		preview += "..."
	}

	fmt.Fprintf(w, "\nText preview:\n%s\n%s\n%s\n", rule, preview, rule)

	fmt.Fprintf(w, "\nSummary\n")
	fmt.Fprintf(w, "  Input file:   %s\n", input)
	fmt.Fprintf(w, "  Output PDF:   %s\n", output)
	fmt.Fprintf(w, "  Pages:        %d\n", result.Pages)
	fmt.Fprintf(w, "  Text length:  %d characters\n", len([]rune(result.Markdown)))
	fmt.Fprintf(w, "  Images:       %d\n", len(result.Images))

	if !result.Usage.IsZero() {
		fmt.Fprintf(w, "  OCR usage:    %d input, %d output, %d total tokens", result.Usage.InputTokens, result.Usage.OutputTokens, result.Usage.TotalTokens)

		if result.Usage.Pages > 0 {
			fmt.Fprintf(w, ", %d pages processed", result.Usage.Pages)
		}

		fmt.Fprintln(w)
	}
}

// resolveInput keeps absolute and existing paths and otherwise looks the
// file up in the resources directory. Unknown names are returned unchanged
// so the read reports the original path.
func resolveInput(name string) string {
	if filepath.IsAbs(name) || exists(name) {
		return name
	}

	if p := filepath.Join(resourcesDir, name); exists(p) {
		return p
	}

	return name
}

// resolveOutput places relative paths in the output directory.
func resolveOutput(name string) string {
	if filepath.IsAbs(name) {
		return name
	}

	return filepath.Join(outputDir, name)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
