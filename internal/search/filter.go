package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"roomadmin/internal/cascade"
	"roomadmin/internal/domain"

	"go.uber.org/zap"
)

var ErrUnknownField = errors.New("unknown search field")

// fields accepted by Set, mirroring domain.RoomFilter.
var fields = map[string]bool{
	"branchId": true, "buildingId": true, "levelId": true, "roomTypeId": true,
	"isAvailable": true, "minSpace": true, "maxSpace": true, "minRent": true, "maxRent": true,
}

// cascadeNodes binds the hierarchical keys to their selector.
var cascadeNodes = map[string]cascade.Node{
	"branchId":   cascade.Branch,
	"buildingId": cascade.Building,
	"levelId":    cascade.Level,
}

// descendants of each hierarchical key; a change always clears these.
var descendants = map[string][]string{
	"branchId":   {"buildingId", "levelId"},
	"buildingId": {"levelId"},
}

// Store is the part of service.RoomStore the filter drives.
type Store interface {
	Search(ctx context.Context, filter domain.RoomFilter) error
	ResetSearch()
}

// Filter 房间搜索条件表单
// Keys are present only while constrained. Names containing Id, Space or Rent
// hold numbers; everything else stays a string.
type Filter struct {
	values   map[string]any
	Location *cascade.Selection
	store    Store
	logger   *zap.Logger
}

func New(loc *cascade.Selection, store Store, logger *zap.Logger) *Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filter{values: map[string]any{}, Location: loc, store: store, logger: logger}
}

func numeric(name string) bool {
	return strings.Contains(name, "Id") || strings.Contains(name, "Space") || strings.Contains(name, "Rent")
}

func coerce(name, raw string) (any, error) {
	if name == "isAvailable" {
		if _, err := strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("%s: %q is not true or false", name, raw)
		}
		return raw, nil
	}
	if strings.HasSuffix(name, "Id") {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a whole number", name, raw)
		}
		return n, nil
	}
	if numeric(name) {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", name, raw)
		}
		return n, nil
	}
	return raw, nil
}

// Set applies one change. An empty value or "all" removes the key. Changing a
// hierarchical key clears its descendants and reloads the direct child options.
func (f *Filter) Set(ctx context.Context, name, raw string) error {
	if !fields[name] {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	raw = strings.TrimSpace(raw)
	remove := raw == "" || strings.EqualFold(raw, "all")

	var value any
	if !remove {
		v, err := coerce(name, raw)
		if err != nil {
			return err
		}
		value = v
	}

	for _, d := range descendants[name] {
		delete(f.values, d)
	}
	if remove {
		delete(f.values, name)
	} else {
		f.values[name] = value
	}

	node, hierarchical := cascadeNodes[name]
	if !hierarchical || f.Location == nil {
		return nil
	}
	if remove {
		f.Location.Clear(node)
		return nil
	}
	return f.Location.Select(ctx, node, value.(int64))
}

// Get returns the stored value of name: int64, float64 or string.
func (f *Filter) Get(name string) (any, bool) {
	v, ok := f.values[name]
	return v, ok
}

func (f *Filter) Len() int { return len(f.values) }

// Filter converts the stored values; isAvailable becomes a bool here.
func (f *Filter) Filter() domain.RoomFilter {
	q := url.Values{}
	for name, v := range f.values {
		switch t := v.(type) {
		case int64:
			q.Set(name, strconv.FormatInt(t, 10))
		case float64:
			q.Set(name, strconv.FormatFloat(t, 'f', -1, 64))
		case string:
			q.Set(name, t)
		}
	}
	return domain.ParseRoomFilter(q)
}

// Submit runs the server-side search with the current values.
func (f *Filter) Submit(ctx context.Context) error {
	filter := f.Filter()
	f.logger.Debug("Submitting room search", zap.Any("filter", filter.Values()))
	return f.store.Search(ctx, filter)
}

// Reset clears every value and selector and shows the full list again.
func (f *Filter) Reset() {
	f.values = map[string]any{}
	if f.Location != nil {
		f.Location.Reset()
	}
	f.store.ResetSearch()
}
