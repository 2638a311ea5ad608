// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"brixi/internal/database"
	"brixi/internal/models"
	"brixi/internal/sitebuilder"
	"brixi/internal/store"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Inspect generated sites",
}

var siteShowHTML bool

var siteShowCmd = &cobra.Command{
	Use:   "show <siteName>",
	Short: "Print a stored site record",
	Args:  cobra.ExactArgs(1),
	RunE:  runSiteShow,
}

func init() {
	rootCmd.AddCommand(siteCmd)
	siteCmd.AddCommand(siteShowCmd)
	siteShowCmd.Flags().BoolVar(&siteShowHTML, "html", false, "print the stored HTML document")
}

func runSiteShow(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := sitebuilder.ValidateSiteName(name); err != nil {
		return err
	}

	cfg, err := setup()
	if err != nil {
		return err
	}
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	site, err := store.NewSiteStore(db).FindByName(cmd.Context(), name)
	if err != nil {
		return err
	}
	if site == nil {
		return fmt.Errorf("site %q not found", name)
	}

	printSite(cmd.OutOrStdout(), site, siteShowHTML)
	return nil
}

func printSite(w io.Writer, site *models.Site, withHTML bool) {
	if withHTML {
		fmt.Fprintln(w, site.HTML)
		return
	}
	fmt.Fprintf(w, "id:       %s\n", site.ID)
	fmt.Fprintf(w, "name:     %s\n", site.SiteName)
	fmt.Fprintf(w, "size:     %d bytes\n", site.Size())
	fmt.Fprintf(w, "created:  %s\n", site.CreatedAt.Format("2006-01-02 15:04"))
}
