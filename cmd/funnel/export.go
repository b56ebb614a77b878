package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reviewfunnel/funnel/application/service"
)

func exportCmd(envFile *string) *cobra.Command {
	var output string

	kinds := make([]string, 0, len(service.ExportKinds()))
	for _, k := range service.ExportKinds() {
		kinds = append(kinds, string(k))
	}

	cmd := &cobra.Command{
		Use:       fmt.Sprintf("export <%s>", strings.Join(kinds, "|")),
		Short:     "Write an operator spreadsheet",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			kind := service.ExportKind(args[0])
			if output == "" {
				output = args[0] + ".xlsx"
			}

			client, logger, err := openClient(*envFile)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			defer func() { err = errors.Join(err, f.Close()) }()

			if err := client.Exports.Write(cmd.Context(), kind, f); err != nil {
				return err
			}
			logger.Info("export written", "kind", kind, "path", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: <kind>.xlsx)")

	return cmd
}
