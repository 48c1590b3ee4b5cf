package page

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"roomadmin/internal/cascade"
	"roomadmin/internal/client"
	"roomadmin/internal/detail"
	"roomadmin/internal/domain"
	"roomadmin/internal/export"
	"roomadmin/internal/form"
	"roomadmin/internal/search"
	"roomadmin/internal/service"

	"go.uber.org/zap"
)

var ErrNoForm = errors.New("no form is open")

// RoomsPage 房间管理页面控制器
// Owns the room store, the search filter, the detail view and at most one open
// create/edit form.
type RoomsPage struct {
	api    *client.Client
	gate   Gate
	logger *zap.Logger
	sheet  string

	Store    *service.RoomStore
	Search   *search.Filter
	Detail   *detail.View
	Previews *form.PreviewRegistry

	mu     sync.Mutex
	form   *form.RoomForm
	banner banner
}

// NewRoomsPage 创建房间页面
func NewRoomsPage(api *client.Client, gate Gate, exportSheet string, logger *zap.Logger) *RoomsPage {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := service.NewRoomStore(api.Rooms, logger)
	return &RoomsPage{
		api:      api,
		gate:     gate,
		logger:   logger,
		sheet:    exportSheet,
		Store:    store,
		Search:   search.New(cascade.NewLocation(api.Locations, logger), store, logger),
		Detail:   detail.NewView(api.Rooms, logger),
		Previews: form.NewPreviewRegistry(),
	}
}

// Mount loads the room list and the search filter's branch options.
func (p *RoomsPage) Mount(ctx context.Context) error {
	if err := p.Store.Load(ctx); err != nil {
		p.fail(ctx, "load rooms", err)
		return err
	}
	if err := p.Search.Location.Start(ctx); err != nil {
		p.fail(ctx, "load branches", err)
		return err
	}
	return nil
}

func (p *RoomsPage) references() form.ReferenceSources {
	return form.ReferenceSources{
		Branches:     p.api.Locations.Branches,
		RoomTypes:    p.api.RoomTypes.List,
		UtilityTypes: p.api.UtilityTypes.List,
	}
}

// OpenCreate opens an empty form once its reference data is in.
func (p *RoomsPage) OpenCreate(ctx context.Context) (*form.RoomForm, error) {
	f := form.NewRoomForm(cascade.NewLocation(p.api.Locations, p.logger), p.Previews, p.logger)
	return p.open(ctx, f)
}

// OpenEdit fetches the room's current record and opens a form seeded from it.
func (p *RoomsPage) OpenEdit(ctx context.Context, roomID int64) (*form.RoomForm, error) {
	room, err := p.api.Rooms.Get(ctx, roomID)
	if err != nil {
		p.fail(ctx, "open edit form", err)
		return nil, err
	}
	f := form.NewEditRoomForm(*room, cascade.NewLocation(p.api.Locations, p.logger), p.Previews, p.logger)
	return p.open(ctx, f)
}

func (p *RoomsPage) open(ctx context.Context, f *form.RoomForm) (*form.RoomForm, error) {
	if err := f.Mount(ctx, p.references()); err != nil {
		f.Close()
		p.fail(ctx, "open "+f.Mode().String()+" form", err)
		return nil, err
	}
	p.mu.Lock()
	prev := p.form
	p.form = f
	p.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
	return f, nil
}

// Form returns the open form, nil when the modal is closed.
func (p *RoomsPage) Form() *form.RoomForm {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form
}

// CloseForm discards the open form and its staged previews.
func (p *RoomsPage) CloseForm() {
	p.mu.Lock()
	f := p.form
	p.form = nil
	p.mu.Unlock()
	if f != nil {
		f.Close()
	}
}

// Submit saves the open form. Validation errors stay on the form; the modal
// closes only after a successful write.
func (p *RoomsPage) Submit(ctx context.Context) (bool, error) {
	f := p.Form()
	if f == nil {
		return false, ErrNoForm
	}
	if err := guard(ctx, p.gate, &p.banner, p.logger, "submit room"); err != nil {
		return false, err
	}
	payload, err := f.BuildPayload()
	if err != nil {
		return false, err
	}

	var ok bool
	if f.Mode() == form.ModeEdit {
		ok = p.Store.Update(ctx, f.RoomID(), payload)
	} else {
		ok = p.Store.Create(ctx, payload)
	}
	if !ok {
		p.fail(ctx, "submit room", p.Store.Err())
		return false, nil
	}
	p.CloseForm()
	if err := p.Store.Err(); err != nil {
		p.fail(ctx, "reload rooms", err)
	}
	return true, nil
}

// Delete removes a room after the credential check.
func (p *RoomsPage) Delete(ctx context.Context, roomID int64) bool {
	if guard(ctx, p.gate, &p.banner, p.logger, "delete room") != nil {
		return false
	}
	if !p.Store.Delete(ctx, roomID) {
		p.fail(ctx, "delete room", p.Store.Err())
		return false
	}
	return true
}

func (p *RoomsPage) OpenDetail(ctx context.Context, roomID int64) error {
	if err := p.Detail.Open(ctx, roomID); err != nil {
		p.fail(ctx, "open room detail", err)
		return err
	}
	return nil
}

func (p *RoomsPage) CloseDetail() { p.Detail.Close() }

// ToggleUtility flips one utility of the room shown in the detail view.
func (p *RoomsPage) ToggleUtility(ctx context.Context, utilityTypeID int64) error {
	if err := guard(ctx, p.gate, &p.banner, p.logger, "toggle utility"); err != nil {
		return err
	}
	err := p.Detail.ToggleUtility(ctx, utilityTypeID)
	if err != nil && !errors.Is(err, detail.ErrToggleInFlight) {
		p.fail(ctx, "toggle utility", err)
	}
	return err
}

func (p *RoomsPage) SetFilter(ctx context.Context, name, value string) error {
	if err := p.Search.Set(ctx, name, value); err != nil {
		if !errors.Is(err, search.ErrUnknownField) {
			p.fail(ctx, "set filter "+name, err)
		}
		return err
	}
	return nil
}

func (p *RoomsPage) RunSearch(ctx context.Context) error {
	if err := p.Search.Submit(ctx); err != nil {
		p.fail(ctx, "search rooms", err)
		return err
	}
	return nil
}

func (p *RoomsPage) ResetSearch() { p.Search.Reset() }

// Rooms is the list currently shown.
func (p *RoomsPage) Rooms() []domain.Room { return p.Store.Filtered() }

// Empty is true when there is nothing to show and nothing went wrong.
func (p *RoomsPage) Empty() bool {
	return !p.Store.Loading() && p.Store.Err() == nil && len(p.Store.Filtered()) == 0
}

func (p *RoomsPage) Banner() string { return p.banner.get() }

func (p *RoomsPage) DismissBanner() {
	p.banner.set("")
	p.Store.ClearError()
}

// Export renders the shown list as an xlsx workbook.
func (p *RoomsPage) Export() ([]byte, error) {
	data, err := export.Rooms(p.Rooms(), p.sheet)
	if err != nil {
		p.logger.Error("Failed to export rooms", zap.Error(err))
		p.banner.set(fmt.Sprintf("Export failed: %v", err))
		return nil, err
	}
	return data, nil
}

func (p *RoomsPage) fail(ctx context.Context, action string, err error) {
	surface(ctx, p.gate, &p.banner, p.logger, action, err)
}
