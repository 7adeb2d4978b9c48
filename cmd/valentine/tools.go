package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DaanHessen/valentine-tui/internal/media"
	"github.com/DaanHessen/valentine-tui/internal/util"
)

func newPhotosCmd(f *flags) *cobra.Command {
	var (
		dir    string
		prefix string
		rename bool
	)
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "Scan a photo directory and write the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			files, err := media.ScanDir(os.DirFS(dir), ".")
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return errors.Errorf("no images found in %s", dir)
			}
			if rename {
				if files, err = media.RenameSequential(dir, files); err != nil {
					return err
				}
			}
			photos := media.BuildManifest(files, prefix)
			if err := media.WriteManifest(cfg.Manifest, photos); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d photos to %s\n", len(photos), cfg.Manifest)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "public/img/photos", "directory holding the photos")
	cmd.Flags().StringVar(&prefix, "prefix", "/img/photos", "src prefix written to the manifest")
	cmd.Flags().BoolVar(&rename, "rename", false, "rename files to photo1.ext, photo2.ext, ... first")
	return cmd
}

func newKeepsakeCmd(f *flags) *cobra.Command {
	var (
		out     string
		columns int
		cell    int
	)
	cmd := &cobra.Command{
		Use:   "keepsake",
		Short: "Render the validated collage to a PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			logger, err := util.NewLogger(cfg.LogFile, cfg.Debug)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			candidates, err := media.LoadManifest(cfg.Manifest)
			if err != nil {
				return err
			}
			assets := os.DirFS(cfg.Assets)
			photos := media.NewValidator(media.FSProber{FS: assets}, cfg.ProbeConcurrency, logger).
				Validate(cmd.Context(), candidates)

			file, err := os.Create(out)
			if err != nil {
				return errors.Wrapf(err, "create %s", out)
			}
			err = media.RenderKeepsake(file, assets, photos, media.KeepsakeOptions{
				Columns:  columns,
				CellSize: cell,
				Title:    "Our Story in Pictures",
			})
			if cerr := file.Close(); err == nil && cerr != nil {
				err = errors.Wrapf(cerr, "close %s", out)
			}
			if err != nil {
				return err
			}
			logger.Info("keepsake written", zap.String("path", out), zap.Int("photos", len(photos)))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d photos)\n", out, len(photos))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "keepsake.png", "output PNG")
	cmd.Flags().IntVar(&columns, "columns", 4, "grid columns")
	cmd.Flags().IntVar(&cell, "cell", 180, "cell size in pixels")
	return cmd
}
