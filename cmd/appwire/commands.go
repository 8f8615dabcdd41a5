// Package appwire implements the appwire command line tool.
package appwire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/appwire/appwire/internal/version"
	"github.com/appwire/appwire/pkg/app"
	"github.com/appwire/appwire/pkg/definition"
	"github.com/appwire/appwire/pkg/logging"
	"github.com/appwire/appwire/pkg/markup"
	"github.com/appwire/appwire/pkg/style"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "appwire",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)

	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: MsgValidateShort,
		Long:  MsgValidateLong,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.validate")
			renderer := style.ForTerminal(style.IsTerminal(os.Stdout))

			failed := 0
			for _, path := range args {
				doc, err := loadDocument(path)
				if err == nil {
					err = checkDocument(doc)
				}
				if err != nil {
					failed++
					logger.Debug().Err(err).Str("file", path).Msg("Validation failed")
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, renderer.RenderError(err))
					continue
				}

				actions, stores, widgets, elements := doc.Counts()
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d actions, %d stores, %d widgets, %d elements)\n",
					path, actions, stores, widgets, elements)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed validation", failed, len(args))
			}
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <file>",
		Short: MsgListShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}

			renderer := style.ForTerminal(style.IsTerminal(os.Stdout))
			fmt.Fprintln(cmd.OutOrStdout(), renderer.RenderDocument(args[0], doc))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "appwire version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}

// loadDocument reads a definition from path. Markup extensions go
// through the scanner; everything else is parsed by extension.
func loadDocument(path string) (*definition.Document, error) {
	path = resolvePath(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".xml":
		return markup.ScanFile(path)
	default:
		return definition.Load(path)
	}
}

// resolvePath falls back to the XDG config directory when the file is
// not found relative to the working directory.
func resolvePath(path string) string {
	if _, err := os.Stat(path); err == nil || filepath.IsAbs(path) {
		return path
	}
	fallback := filepath.Join(xdg.ConfigHome, "appwire", path)
	if _, err := os.Stat(fallback); err == nil {
		return fallback
	}
	return path
}

// checkDocument loads the document into a scratch application so batch
// validation and registration run without constructing anything. Module
// entries resolve against a stub loader; a real application supplies its
// own resolver.
func checkDocument(doc *definition.Document) error {
	resolver := app.ModuleResolverFunc(func(ctx context.Context, module string) (app.Factory, error) {
		return func(ctx context.Context, opts app.Options) (any, error) {
			return nil, fmt.Errorf("module %q is not loadable here", module)
		}, nil
	})

	scratch := app.New(app.WithModuleResolver(resolver))
	defer scratch.Destroy()

	_, err := scratch.LoadDefinition(doc.Definition())
	return err
}
