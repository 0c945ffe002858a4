package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/statement-scanner/internal/extractor"
	"github.com/insightdelivered/statement-scanner/internal/logging"
	"github.com/insightdelivered/statement-scanner/internal/models"
)

func newScanCommand(a *app) *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:   "scan <image|pdf>...",
		Short: "Extract text from statement photos or PDFs and parse it",
		Example: `  statement-scanner scan IMG_0412.jpg
  statement-scanner scan --format csv -o august.csv page1.jpg page2.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if parallel < 1 {
				return fmt.Errorf("--parallel must be at least 1, got %d", parallel)
			}

			svc, err := a.service(true)
			if err != nil {
				return err
			}

			results := make([]*models.ScanResult, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(parallel)
			for i, path := range args {
				g.Go(func() error {
					data, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("reading %s: %w", path, err)
					}
					img := extractor.NewImage(filepath.Base(path), data, "")
					out, err := svc.ScanImage(ctx, img, a.flags.locale)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					a.logger.Info("scanned",
						logging.F(logging.FieldFile, path),
						logging.F(logging.FieldProvider, out.Provider),
						logging.F(logging.FieldCount, len(out.Result.Transactions)))
					results[i] = out.Result
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			return a.render(cmd, results...)
		},
	}

	cmd.Flags().IntVarP(&parallel, "parallel", "p", 2, "number of files scanned at once")
	return cmd
}
