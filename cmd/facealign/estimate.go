package main

import (
	"encoding/json"
	"fmt"
	"io"

	"facealign/internal/alignment"
	"facealign/internal/similarity"
	"facealign/pkg/geometry"

	"github.com/spf13/cobra"
)

// estimateReport is the --json output of the estimate command.
type estimateReport struct {
	Template  string               `json:"template"`
	Forward   geometry.Homogeneous `json:"forward"`
	Inverse   geometry.Homogeneous `json:"inverse"`
	Affine    [2][3]float64        `json:"affine"`
	Params    similarity.Params    `json:"params"`
	Residual  float64              `json:"residual"`
	MeanError float64              `json:"mean_error"`
}

func estimateCmd(s *settings) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "estimate PROJECT",
		Short: "Estimate the similarity transform for a project's landmarks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := s.load(cmd)
			if err != nil {
				return err
			}
			proj, err := loadProject(args[0])
			if err != nil {
				return err
			}
			opts, err := alignmentOptions(cfg, proj)
			if err != nil {
				return err
			}

			result, err := alignment.Estimate(proj.Landmarks, opts)
			if err != nil {
				return err
			}

			report := estimateReport{
				Template:  opts.Template.Name,
				Forward:   result.Transform.Forward,
				Inverse:   result.Transform.Inverse,
				Affine:    result.Affine.ToMatrix(),
				Params:    result.Params,
				Residual:  similarity.ResidualNorm(result.Transform.Forward, proj.Landmarks, result.Reference),
				MeanError: result.MeanError,
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func printReport(w io.Writer, r estimateReport) {
	fmt.Fprintf(w, "Template: %s\n", r.Template)
	fmt.Fprintf(w, "\nForward (row vector, [x y 1]·T):\n")
	printMatrix(w, r.Forward[:])
	fmt.Fprintf(w, "\nInverse:\n")
	printMatrix(w, r.Inverse[:])
	fmt.Fprintf(w, "\nAffine 2x3 (column vector):\n")
	printMatrix(w, [][3]float64{r.Affine[0], r.Affine[1]})

	fmt.Fprintf(w, "\nScale:       %.6f\n", r.Params.Scale)
	fmt.Fprintf(w, "Rotation:    %.4f°\n", r.Params.RotationDegrees())
	fmt.Fprintf(w, "Reflected:   %v\n", r.Params.Reflected)
	fmt.Fprintf(w, "Translation: (%.4f, %.4f)\n", r.Params.TX, r.Params.TY)
	fmt.Fprintf(w, "Residual:    %.6f\n", r.Residual)
	fmt.Fprintf(w, "Mean error:  %.4f px\n", r.MeanError)
}

func printMatrix(w io.Writer, rows [][3]float64) {
	for _, row := range rows {
		fmt.Fprintf(w, "  [%12.6f %12.6f %12.6f]\n", row[0], row[1], row[2])
	}
}
