package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newParseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse OCR text that was already extracted",
		Example: `  statement-scanner parse ocr.txt
  pbpaste | statement-scanner parse --locale sv -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) > 0 {
				path = args[0]
			}

			text, err := readText(cmd, path)
			if err != nil {
				return err
			}

			svc, err := a.service(false)
			if err != nil {
				return err
			}
			out, err := svc.ParseText(text, a.flags.locale)
			if err != nil {
				return err
			}
			return a.render(cmd, out.Result)
		},
	}
}

func readText(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
