package page

import (
	"context"
	"fmt"
	"sync"

	"roomadmin/internal/client"
	"roomadmin/internal/domain"
	"roomadmin/internal/form"
	"roomadmin/internal/service"

	"go.uber.org/zap"
)

// RoomTypesPage 房型管理页面控制器
type RoomTypesPage struct {
	gate   Gate
	logger *zap.Logger

	Store *service.RoomTypeStore

	mu     sync.Mutex
	form   *form.RoomTypeForm
	banner banner
}

func NewRoomTypesPage(api *client.Client, gate Gate, logger *zap.Logger) *RoomTypesPage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomTypesPage{
		gate:   gate,
		logger: logger,
		Store:  service.NewRoomTypeStore(api.RoomTypes, logger),
	}
}

func (p *RoomTypesPage) Mount(ctx context.Context) error {
	if err := p.Store.Load(ctx); err != nil {
		surface(ctx, p.gate, &p.banner, p.logger, "load room types", err)
		return err
	}
	return nil
}

func (p *RoomTypesPage) OpenCreate() *form.RoomTypeForm {
	f := form.NewRoomTypeForm()
	p.mu.Lock()
	p.form = f
	p.mu.Unlock()
	return f
}

// OpenEdit seeds the form from the loaded list.
func (p *RoomTypesPage) OpenEdit(id int64) (*form.RoomTypeForm, error) {
	for _, rt := range p.Store.RoomTypes() {
		if rt.ID == id {
			f := form.NewEditRoomTypeForm(rt)
			p.mu.Lock()
			p.form = f
			p.mu.Unlock()
			return f, nil
		}
	}
	err := fmt.Errorf("room type %d: %w", id, client.ErrNotFound)
	p.banner.set(client.MessageOf(err))
	return nil, err
}

func (p *RoomTypesPage) Form() *form.RoomTypeForm {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form
}

func (p *RoomTypesPage) CloseForm() {
	p.mu.Lock()
	p.form = nil
	p.mu.Unlock()
}

func (p *RoomTypesPage) Submit(ctx context.Context) (bool, error) {
	f := p.Form()
	if f == nil {
		return false, ErrNoForm
	}
	if err := guard(ctx, p.gate, &p.banner, p.logger, "submit room type"); err != nil {
		return false, err
	}
	in, err := f.Input()
	if err != nil {
		return false, err
	}

	var ok bool
	if f.Mode() == form.ModeEdit {
		ok = p.Store.Update(ctx, f.ID(), in)
	} else {
		ok = p.Store.Create(ctx, in)
	}
	if !ok {
		surface(ctx, p.gate, &p.banner, p.logger, "submit room type", p.Store.Err())
		return false, nil
	}
	p.CloseForm()
	return true, nil
}

// Delete does not check whether rooms still use the type.
func (p *RoomTypesPage) Delete(ctx context.Context, id int64) bool {
	if guard(ctx, p.gate, &p.banner, p.logger, "delete room type") != nil {
		return false
	}
	if !p.Store.Delete(ctx, id) {
		surface(ctx, p.gate, &p.banner, p.logger, "delete room type", p.Store.Err())
		return false
	}
	return true
}

func (p *RoomTypesPage) RoomTypes() []domain.RoomType { return p.Store.RoomTypes() }

func (p *RoomTypesPage) Empty() bool {
	return !p.Store.Loading() && p.Store.Err() == nil && len(p.Store.RoomTypes()) == 0
}

func (p *RoomTypesPage) Banner() string { return p.banner.get() }

func (p *RoomTypesPage) DismissBanner() {
	p.banner.set("")
	p.Store.ClearError()
}
