package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/jrsteele09/go-bookshelf-client/books"
	"github.com/spf13/cobra"
)

func newPopularCommand(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "popular",
		Short: "List the most popular books",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.books.Popular(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printBooks(a.out, list)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of books")
	return cmd
}

func newSearchCommand(a *app) *cobra.Command {
	params := books.SearchParams{}
	var sortBy string
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Query = strings.Join(args, " ")
			params.SortBy = books.SortField(sortBy)
			result, err := a.books.Search(cmd.Context(), params)
			if err != nil {
				return err
			}
			if err := printBooks(a.out, result.Books); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "\npage %d of %d, %d results\n", result.Page, result.TotalPages, result.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&params.Author, "author", "", "filter by author")
	cmd.Flags().StringSliceVar(&params.Genres, "genre", nil, "filter by genre, repeatable")
	cmd.Flags().StringVar(&params.Language, "language", "", "filter by language")
	cmd.Flags().IntVar(&params.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&params.Limit, "limit", 20, "page size")
	cmd.Flags().StringVar(&sortBy, "sort", "", "title, author, publishedDate or rating")
	cmd.Flags().StringVar(&params.SortOrder, "order", "", "asc or desc")
	return cmd
}

func newBookCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "book <id>",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.books.ByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s\nby %s (%d)\n", b.Title, b.Author, b.PublishedYear)
			fmt.Fprintf(a.out, "Genres: %s\nRating: %.1f from %d reviews\n", strings.Join(b.Genres, ", "), b.Rating, b.ReviewCount)
			if b.Description != "" {
				fmt.Fprintf(a.out, "\n%s\n", b.Description)
			}
			return nil
		},
	}
}

func newFavoritesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "favorites",
		Short: "List your favorite books",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.books.Favorites(cmd.Context())
			if err != nil {
				return err
			}
			return printBooks(a.out, list)
		},
	}
}

func printBooks(out io.Writer, list []books.Book) error {
	table := uitable.New()
	table.MaxColWidth = 48
	table.Separator = "  "
	table.AddRow("ID", "TITLE", "AUTHOR", "RATING")
	for _, b := range list {
		table.AddRow(b.ID, b.Title, b.Author, fmt.Sprintf("%.1f", b.Rating))
	}
	_, err := fmt.Fprintln(out, table.String())
	return err
}
