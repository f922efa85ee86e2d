package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/weykent/runitsv/pkg/errors"
	"github.com/weykent/runitsv/pkg/service"
)

func newInitCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init <definition-file>",
		Short: "Write a starter service definition",
		Long: `Writes a starter definition to the given path. The format follows
the file extension: .toml, .yaml or .yml.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeStarter(args[0], name)
		},
	}
	cmd.Flags().StringVar(&name, "name", "myservice", "Service name for the starter definition")
	return cmd
}

func writeStarter(path, name string) error {
	if _, err := os.Lstat(path); err == nil {
		return errors.Newf(errors.ErrConfigInvalid, "refusing to overwrite %s", path)
	}

	def := service.NewDefinition(name, "#!/bin/sh\nexec my-daemon 2>&1\n")

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		data, err = toml.Marshal(def)
	case ".yaml", ".yml":
		data, err = yaml.Marshal(def)
	default:
		return errors.Newf(errors.ErrConfigInvalid, "unsupported definition format: %s", path)
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "marshalling starter definition")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, errors.ErrFS, "writing %s", path)
	}
	fmt.Printf("Wrote starter definition to %s\n", path)
	return nil
}
