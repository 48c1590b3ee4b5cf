package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"roomadmin/internal/domain"
	"roomadmin/internal/form"
	"roomadmin/internal/page"

	"github.com/spf13/cobra"
)

func newRoomsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List, search and edit rooms",
	}
	cmd.AddCommand(newRoomsListCmd(a))
	cmd.AddCommand(newRoomsSearchCmd(a))
	cmd.AddCommand(newRoomsGetCmd(a))
	cmd.AddCommand(newRoomsSaveCmd(a, false))
	cmd.AddCommand(newRoomsSaveCmd(a, true))
	cmd.AddCommand(newRoomsDeleteCmd(a))
	cmd.AddCommand(newRoomsToggleCmd(a))
	cmd.AddCommand(newRoomsExportCmd(a))
	return cmd
}

func (a *app) roomsPage() *page.RoomsPage {
	return page.NewRoomsPage(a.api, a.session, a.cfg.Export.Sheet, a.log)
}

// bannerError turns the page's banner into the command error.
func bannerError(banner string, fallback error) error {
	if banner != "" {
		return errors.New(banner)
	}
	if fallback != nil {
		return fallback
	}
	return errors.New("request failed")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func printRooms(w io.Writer, rooms []domain.Room) error {
	if len(rooms) == 0 {
		_, err := fmt.Fprintln(w, "No rooms found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tBRANCH\tBUILDING\tLEVEL\tTYPE\tSPACE\tRENT\tAVAILABLE\tUTILITIES")
	for _, r := range rooms {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%g\t%s\t%t\t%d/%d\n",
			r.ID, r.RoomNumber, r.BranchName, r.BuildingName, r.LevelName, r.RoomTypeName,
			r.RoomSpace, r.RentalFee.StringFixed(2), r.IsAvailable, r.ActiveUtilityCount(), len(r.Utilities))
	}
	return tw.Flush()
}

func newRoomsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every room",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := a.roomsPage()
			if err := p.Mount(cmd.Context()); err != nil {
				return bannerError(p.Banner(), err)
			}
			return printRooms(cmd.OutOrStdout(), p.Rooms())
		},
	}
}

func newRoomsSearchCmd(a *app) *cobra.Command {
	var filters []string
	cmd := &cobra.Command{
		Use:   "search --filter key=value ...",
		Short: "Search rooms by branchId, buildingId, levelId, roomTypeId, isAvailable, min/max space and rent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p := a.roomsPage()
			if err := p.Mount(ctx); err != nil {
				return bannerError(p.Banner(), err)
			}
			for _, f := range filters {
				name, value, ok := strings.Cut(f, "=")
				if !ok {
					return fmt.Errorf("filter %q: want key=value", f)
				}
				if err := p.SetFilter(ctx, strings.TrimSpace(name), strings.TrimSpace(value)); err != nil {
					return err
				}
			}
			if err := p.RunSearch(ctx); err != nil {
				return bannerError(p.Banner(), err)
			}
			return printRooms(cmd.OutOrStdout(), p.Rooms())
		},
	}
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "search criterion, repeatable (\"all\" or empty clears it)")
	return cmd
}

func newRoomsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one room with its utilities and images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p := a.roomsPage()
			if err := p.OpenDetail(cmd.Context(), id); err != nil {
				return bannerError(p.Banner(), err)
			}
			room, _ := p.Detail.Room()
			out, err := json.MarshalIndent(room, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			fmt.Fprintf(cmd.OutOrStdout(), "Utilities: %s\n", p.Detail.Summary())
			return nil
		},
	}
}

type roomOptions struct {
	Branch, Building, Level int64
	Number                  string
	RoomType                string
	Space                   string
	Rent                    string
	MeterType               string
	Utilities               []int64
	Images                  []string
	RemoveImages            []string
}

func newRoomsSaveCmd(a *app, edit bool) *cobra.Command {
	var opts roomOptions
	use, short, done := "create", "Create a room", "created"
	if edit {
		use, short, done = "update <id>", "Update a room; unset flags keep their current value", "updated"
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
			p := a.roomsPage()
			var (
				f   *form.RoomForm
				err error
			)
			if edit {
				id, perr := parseID(args[0])
				if perr != nil {
					return perr
				}
				f, err = p.OpenEdit(ctx, id)
			} else {
				f, err = p.OpenCreate(ctx)
			}
			if err != nil {
				return bannerError(p.Banner(), err)
			}
			defer p.CloseForm()

			if err := applyRoomOptions(cmd, f, opts); err != nil {
				return err
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
			if banner := p.Banner(); banner != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), banner)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Room %s.\n", done)
			return printRooms(cmd.OutOrStdout(), p.Rooms())
		},
	}
	fl := cmd.Flags()
	fl.Int64Var(&opts.Branch, "branch", 0, "branch id")
	fl.Int64Var(&opts.Building, "building", 0, "building id")
	fl.Int64Var(&opts.Level, "level", 0, "level id")
	fl.StringVar(&opts.Number, "number", "", "room number")
	fl.StringVar(&opts.RoomType, "type", "", "room type id")
	fl.StringVar(&opts.Space, "space", "", "room space")
	fl.StringVar(&opts.Rent, "rent", "", "monthly rental fee")
	fl.StringArrayVar(&opts.Images, "image", nil, "image file to upload, repeatable")
	if edit {
		fl.StringVar(&opts.MeterType, "meter", "", "meter type (ELECTRICITY or WATER)")
		fl.StringArrayVar(&opts.RemoveImages, "remove-image", nil, "existing image URL to remove, repeatable")
	} else {
		fl.Int64SliceVar(&opts.Utilities, "utility", nil, "utility type id to associate, repeatable")
	}
	return cmd
}

func applyRoomOptions(cmd *cobra.Command, f *form.RoomForm, opts roomOptions) error {
	ctx := cmd.Context()
	fl := cmd.Flags()
	if fl.Changed("branch") {
		if err := f.SelectBranch(ctx, opts.Branch); err != nil {
			return err
		}
	}
	if fl.Changed("building") {
		if err := f.SelectBuilding(ctx, opts.Building); err != nil {
			return err
		}
	}
	if fl.Changed("level") {
		if err := f.SelectLevel(ctx, opts.Level); err != nil {
			return err
		}
	}
	if fl.Changed("number") {
		f.SetRoomNumber(opts.Number)
	}
	if fl.Changed("type") {
		f.SetRoomType(opts.RoomType)
	}
	if fl.Changed("space") {
		f.SetRoomSpace(opts.Space)
	}
	if fl.Changed("rent") {
		f.SetRentalFee(opts.Rent)
	}
	if fl.Changed("meter") {
		f.SetMeterType(opts.MeterType)
	}
	for _, id := range opts.Utilities {
		if err := f.ToggleUtility(id); err != nil {
			return err
		}
	}
	for _, url := range opts.RemoveImages {
		ok, err := f.MarkImageForRemoval(url)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("room has no image %q", url)
		}
	}
	for _, path := range opts.Images {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		f.StageImage(filepath.Base(path), "", data)
	}
	return nil
}

func formatFieldErrors(fields form.FieldErrors) string {
	parts := make([]string, 0, len(fields))
	for name, msg := range fields {
		parts = append(parts, name+": "+msg)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func newRoomsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p := a.roomsPage()
			if !p.Delete(cmd.Context(), id) {
				return bannerError(p.Banner(), nil)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Room %d deleted.\n", id)
			return nil
		},
	}
}

func newRoomsToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <room-id> <utility-type-id>",
		Short: "Flip one utility of a room between active and inactive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := parseID(args[0])
			if err != nil {
				return err
			}
			utilityID, err := parseID(args[1])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p := a.roomsPage()
			if err := p.OpenDetail(ctx, roomID); err != nil {
				return bannerError(p.Banner(), err)
			}
			if err := p.ToggleUtility(ctx, utilityID); err != nil {
				return bannerError(p.Banner(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Utilities: %s\n", p.Detail.Summary())
			return nil
		},
	}
}

func newRoomsExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export --out rooms.xlsx",
		Short: "Write the room list to an xlsx workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := a.roomsPage()
			if err := p.Mount(cmd.Context()); err != nil {
				return bannerError(p.Banner(), err)
			}
			data, err := p.Export()
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rooms to %s.\n", len(p.Rooms()), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "rooms.xlsx", "output file")
	return cmd
}
