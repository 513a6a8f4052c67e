package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"petclinic/internal/domain/owners"
	"petclinic/internal/router"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newOwnersCmd() *cobra.Command {
	var (
		lastName  string
		firstName string
		page      int
		size      int
	)

	cmd := &cobra.Command{
		Use:   "owners",
		Short: "List owners from the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			if cfg.DB.InMemory() {
				return errors.New("owners: db.dsn (DB_DSN) is required")
			}
			if page < 1 {
				return errors.New("owners: --page must be >= 1")
			}

			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			in := router.NewInterceptor(cfg.Timing.Methods, log, nil, nil)
			svc := owners.NewService(router.OwnersRepository(db, in))

			res, err := svc.FindOwners(cmd.Context(), owners.Search{
				LastName:  lastName,
				FirstName: firstName,
			}, owners.Pageable{Page: page - 1, Size: size})
			if err != nil {
				return err
			}
			return printOwners(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name prefix")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name substring (wins over --last-name)")
	cmd.Flags().IntVar(&page, "page", 1, "page number (1-based)")
	cmd.Flags().IntVar(&size, "size", owners.DefaultPageSize, "page size")
	return cmd
}

func printOwners(w io.Writer, res owners.Page[owners.Owner]) error {
	if len(res.Content) == 0 {
		fmt.Fprintln(w, "No owners found")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Name", "Address", "City", "Telephone", "Pets")
	for _, o := range res.Content {
		pets := make([]string, 0, len(o.Pets))
		for _, p := range o.Pets {
			pets = append(pets, p.Name)
		}
		if err := table.Append(
			o.FirstName+" "+o.LastName,
			o.Address,
			o.City,
			o.Telephone,
			strings.Join(pets, ", "),
		); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nPage %d of %d (%d owners)\n", res.Number+1, res.TotalPages, res.TotalElements)
	return nil
}
