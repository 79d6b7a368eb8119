package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-bookshelf-client/apiclient"
	"github.com/jrsteele09/go-bookshelf-client/auth"
	"github.com/jrsteele09/go-bookshelf-client/books"
	"github.com/jrsteele09/go-bookshelf-client/internal/config"
	"github.com/jrsteele09/go-bookshelf-client/internal/logging"
	"github.com/jrsteele09/go-bookshelf-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app is what every subcommand works against, built once per invocation.
type app struct {
	cfg    config.Config
	out    io.Writer
	store  *token.Store
	closer io.Closer
	client *apiclient.Client
	auth   *auth.Service
	books  *books.Service
}

func (a *app) close() {
	if a.closer == nil {
		return
	}
	if err := a.closer.Close(); err != nil {
		log.Debug().Err(err).Msg("failed to close token store")
	}
}

type rootFlags struct {
	baseURL    string
	tokenStore string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	a := &app{}
	flags := rootFlags{}

	cmd := &cobra.Command{
		Use:           "bookshelf",
		Short:         "Command line client for the bookshelf API",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			return a.init(cmd.Context(), flags)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			displayAppname(a.out, a.cfg.GetAppName())
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&flags.baseURL, "api-url", "", "API base URL (default from BOOKSHELF_API_URL)")
	cmd.PersistentFlags().StringVar(&flags.tokenStore, "token-store", "", "token store: memory, file or redis (default from BOOKSHELF_TOKEN_STORE)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoAmICommand(a),
		newPopularCommand(a),
		newSearchCommand(a),
		newBookCommand(a),
		newFavoritesCommand(a),
	)
	return cmd
}

func (a *app) init(ctx context.Context, flags rootFlags) error {
	a.cfg = config.New()
	level := a.cfg.GetLogLevel()
	if flags.verbose {
		level = "debug"
	}
	logging.Setup(level, "DEV")

	kind := a.cfg.GetTokenStore()
	if flags.tokenStore != "" {
		kind = config.TokenStoreKind(flags.tokenStore)
	}
	store, closer, err := openTokenStore(ctx, kind, a.cfg)
	if err != nil {
		return err
	}
	a.store, a.closer = store, closer

	clientCfg := apiclient.ConfigFrom(a.cfg)
	if flags.baseURL != "" {
		clientCfg.BaseURL = flags.baseURL
	}
	a.client, err = apiclient.New(clientCfg,
		apiclient.WithTokenStore(store),
		apiclient.WithRateLimit(a.cfg.GetRateLimit(), a.cfg.GetRateBurst()),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create API client")
	}
	a.client.OnAuthError(func() {
		fmt.Fprintln(os.Stderr, "Session expired, run `bookshelf login` again.")
	})

	if a.auth, err = auth.NewService(a.client); err != nil {
		return err
	}
	a.books, err = books.NewService(a.client)
	return err
}

func displayAppname(out io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(out, myFigure.String())
}
