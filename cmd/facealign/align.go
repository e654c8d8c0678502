package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"facealign/internal/alignment"
	"facealign/internal/imageio"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func alignCmd(s *settings) *cobra.Command {
	var (
		output   string
		noUpdate bool
	)
	cmd := &cobra.Command{
		Use:   "align PROJECT",
		Short: "Warp a project's image onto the reference template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectPath := args[0]

			cfg, err := s.load(cmd)
			if err != nil {
				return err
			}
			proj, err := loadProject(projectPath)
			if err != nil {
				return err
			}
			opts, err := alignmentOptions(cfg, proj)
			if err != nil {
				return err
			}

			imagePath := proj.GetImagePath(projectPath)
			if imagePath == "" {
				return fmt.Errorf("project %s has no image", projectPath)
			}
			img, err := imageio.Load(imagePath)
			if err != nil {
				return fmt.Errorf("load %s: %w", imagePath, err)
			}

			result, err := alignment.AlignFace(img, proj.Landmarks, opts)
			if err != nil {
				return err
			}

			if output == "" {
				output = proj.DefaultOutputPath(projectPath, cfg.Output.Suffix, strings.ToLower(cfg.Output.Format))
				if cfg.Output.Dir != "" {
					output = filepath.Join(cfg.Output.Dir, filepath.Base(output))
				}
			}
			saveOpts := imageio.SaveOptions{Quality: cfg.Output.Quality, Lossless: cfg.Output.Lossless}
			if err := imageio.Save(output, result.Image, saveOpts); err != nil {
				return fmt.Errorf("save %s: %w", output, err)
			}
			log.Info().Str("output", output).Msg("Wrote aligned image")

			if noUpdate {
				return nil
			}
			proj.RecordResult(projectPath, result.Transform, result.MeanError, output)
			if err := proj.Save(projectPath); err != nil {
				return fmt.Errorf("save project: %w", err)
			}
			log.Debug().Str("project", projectPath).Msg("Recorded alignment result")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output image path (default: next to the input image, or in output.dir when set)")
	cmd.Flags().BoolVar(&noUpdate, "no-update", false, "Do not write the result back into the project file")
	return cmd
}
