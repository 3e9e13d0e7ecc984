package main

import (
	"github.com/golang/geo/r2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/footprint-rjmcmc/internal/imaging"
	"github.com/ironsheep/footprint-rjmcmc/internal/params"
)

func newGradientCmd(root *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "gradient <image>",
		Short: "Write the smoothed gradient magnitude of an image as PNG",
		Long: `Renders the gradient field the gradient energy model integrates, using the
running box, sigma and subsampling of the resolved parameters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := params.Load(root.config, nil)
			if err != nil {
				return err
			}
			box := r2.EmptyRect()
			if !p.Box.IsZero() {
				box = r2.RectFromPoints(
					r2.Point{X: p.Box.MinX, Y: p.Box.MinY},
					r2.Point{X: p.Box.MaxX, Y: p.Box.MaxY},
				)
			}

			ev, err := imaging.LoadEvidence(imaging.NewImageCache(), args[0], box, p.Energy.Subsampling)
			if err != nil {
				return err
			}
			if err := imaging.SavePNG(out, ev.Gradient(p.Energy.Sigma).Magnitude()); err != nil {
				return err
			}
			root.logger.Info("gradient written",
				zap.String("path", out),
				zap.Float64("sigma", p.Energy.Sigma),
				zap.Int("subsampling", p.Energy.Subsampling),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "gradient.png", "output PNG")
	return cmd
}
