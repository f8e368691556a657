package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCloneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone",
		Short: "Clone one URL and write the HTML to a file or stdout",
		Args:  cobra.NoArgs,
		RunE:  runClone,
	}
	cmd.Flags().String("url", "", "website to clone")
	cmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func runClone(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	rawURL, _ := cmd.Flags().GetString("url")
	out, _ := cmd.Flags().GetString("out")

	application, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	result, err := application.cloner.Clone(cmd.Context(), rawURL)
	if err != nil {
		return err
	}
	logger.Info("Clone finished", zap.String("url", result.URL), zap.String("source", result.Source), zap.Int("bytes", len(result.HTML)))

	if out == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), result.HTML)
		return err
	}
	if err := os.WriteFile(out, []byte(result.HTML), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}
