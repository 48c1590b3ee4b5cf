package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"roomadmin/internal/form"
	"roomadmin/internal/page"

	"github.com/spf13/cobra"
)

func newRoomTypesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "room-types",
		Aliases: []string{"types"},
		Short:   "Manage room types",
	}
	cmd.AddCommand(newRoomTypesListCmd(a))
	cmd.AddCommand(newRoomTypesSaveCmd(a, false))
	cmd.AddCommand(newRoomTypesSaveCmd(a, true))
	cmd.AddCommand(newRoomTypesDeleteCmd(a))
	return cmd
}

func (a *app) roomTypesPage() *page.RoomTypesPage {
	return page.NewRoomTypesPage(a.api, a.session, a.log)
}

func printRoomTypes(cmd *cobra.Command, p *page.RoomTypesPage) error {
	if p.Empty() {
		fmt.Fprintln(cmd.OutOrStdout(), "No room types found.")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, rt := range p.RoomTypes() {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", rt.ID, rt.TypeName, rt.Description)
	}
	return tw.Flush()
}

func newRoomTypesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List room types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := a.roomTypesPage()
			if err := p.Mount(cmd.Context()); err != nil {
				return bannerError(p.Banner(), err)
			}
			return printRoomTypes(cmd, p)
		},
	}
}

func newRoomTypesSaveCmd(a *app, edit bool) *cobra.Command {
	var name, description string
	use, short := "create", "Create a room type"
	if edit {
		use, short = "update <id>", "Update a room type"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args: func(cmd *cobra.Command, args []string) error {
			if edit {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.NoArgs(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := a.roomTypesPage()
			if err := p.Mount(ctx); err != nil {
				return bannerError(p.Banner(), err)
			}

			var f *form.RoomTypeForm
			if edit {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if f, err = p.OpenEdit(id); err != nil {
					return bannerError(p.Banner(), err)
				}
			} else {
				f = p.OpenCreate()
			}
			if cmd.Flags().Changed("name") {
				f.SetTypeName(name)
			}
			if cmd.Flags().Changed("description") {
				f.SetDescription(description)
			}

			ok, err := p.Submit(ctx)
			if err != nil {
				var verr *form.ValidationError
				if errors.As(err, &verr) {
					return fmt.Errorf("%w: %s", err, formatFieldErrors(verr.Fields))
				}
				return bannerError(p.Banner(), err)
			}
			if !ok {
				return bannerError(p.Banner(), nil)
			}
			return printRoomTypes(cmd, p)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "type name")
	cmd.Flags().StringVar(&description, "description", "", "description")
	return cmd
}

func newRoomTypesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a room type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p := a.roomTypesPage()
			if !p.Delete(cmd.Context(), id) {
				return bannerError(p.Banner(), nil)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Room type %d deleted.\n", id)
			return nil
		},
	}
}
