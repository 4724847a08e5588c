package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/maynagashev/brewtrack/internal/bottle"
	"github.com/maynagashev/brewtrack/internal/config"
)

func newParseCmd(a *app) *cobra.Command {
	var extraPlatforms []string

	cmd := &cobra.Command{
		Use:     "parse <project> <filename>",
		Short:   "Разобрать имя файла бутылки",
		Example: "  brewtrack parse rona rona-2.17.7.arm64_sequoia.bottle.tar.gz",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("extra-platforms") {
				a.cfg.Brew.ExtraPlatforms = extraPlatforms
			}
			identity, err := bottle.NewParser(a.cfg.Brew.ExtraPlatforms...).Parse(args[0], args[1])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), identity)
		},
	}
	cmd.Flags().StringSliceVar(&extraPlatforms, "extra-platforms", nil,
		fmt.Sprintf("Дополнительные теги платформ (env: %s)", config.EnvExtraPlatforms))
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("ошибка вывода JSON: %w", err)
	}
	return nil
}
