package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maynagashev/brewtrack/internal/bottle"
	"github.com/maynagashev/brewtrack/internal/config"
	"github.com/maynagashev/brewtrack/internal/models"
	"github.com/maynagashev/brewtrack/internal/resolver"
)

// resolvedBottle - разобранная бутылка вместе с адресом перенаправления.
type resolvedBottle struct {
	models.BottleIdentity
	URL string `json:"url"`
}

// newResolveCmd - команда проверки перенаправления без записи в хранилище.
func newResolveCmd(a *app) *cobra.Command {
	var (
		projectsFile string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:     "resolve <project> <filename>",
		Short:   "Показать адрес, на который будет перенаправлено скачивание",
		Example: "  brewtrack resolve rona rona-2.17.7.x86_64_linux.bottle.tar.gz",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("projects-file") {
				a.cfg.Brew.ProjectsFile = projectsFile
			}
			identity, err := bottle.NewParser(a.cfg.Brew.ExtraPlatforms...).Parse(args[0], args[1])
			if err != nil {
				return err
			}

			registry, err := resolver.LoadRegistry(a.cfg.Brew.ProjectsFile)
			if err != nil {
				return err
			}
			location, err := registry.Resolve(identity)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resolvedBottle{BottleIdentity: identity, URL: location})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), location)
			return err
		},
	}
	cmd.Flags().StringVar(&projectsFile, "projects-file", "",
		fmt.Sprintf("YAML-файл реестра проектов (env: %s)", config.EnvProjectsFile))
	cmd.Flags().BoolVar(&asJSON, "json", false, "Вывести разобранную бутылку и адрес в JSON")
	return cmd
}
