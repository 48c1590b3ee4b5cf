package form

import (
	"strings"

	"roomadmin/internal/client"
	"roomadmin/internal/domain"
)

type roomTypeInput struct {
	TypeName    string `form:"typeName" validate:"required"`
	Description string `form:"description" validate:"required"`
}

var roomTypeMessages = map[string]string{
	"typeName.required":    "Type name is required",
	"description.required": "Description is required",
}

// RoomTypeForm 房型表单
type RoomTypeForm struct {
	mode        Mode
	id          int64
	typeName    string
	description string
	errors      FieldErrors
}

func NewRoomTypeForm() *RoomTypeForm {
	return &RoomTypeForm{mode: ModeCreate, errors: FieldErrors{}}
}

func NewEditRoomTypeForm(rt domain.RoomType) *RoomTypeForm {
	return &RoomTypeForm{
		mode:        ModeEdit,
		id:          rt.ID,
		typeName:    rt.TypeName,
		description: rt.Description,
		errors:      FieldErrors{},
	}
}

func (f *RoomTypeForm) Mode() Mode { return f.mode }
func (f *RoomTypeForm) ID() int64  { return f.id }

func (f *RoomTypeForm) SetTypeName(v string) {
	f.typeName = v
	delete(f.errors, "typeName")
}

func (f *RoomTypeForm) SetDescription(v string) {
	f.description = v
	delete(f.errors, "description")
}

func (f *RoomTypeForm) Errors() FieldErrors {
	out := make(FieldErrors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Input validates and returns the JSON body for create/update.
func (f *RoomTypeForm) Input() (client.RoomTypeInput, error) {
	in := roomTypeInput{
		TypeName:    strings.TrimSpace(f.typeName),
		Description: strings.TrimSpace(f.description),
	}
	errs := FieldErrors{}
	collect(validate.Struct(in), errs, roomTypeMessages)
	f.errors = errs
	if len(errs) > 0 {
		return client.RoomTypeInput{}, &ValidationError{Fields: f.Errors()}
	}
	return client.RoomTypeInput{TypeName: in.TypeName, Description: in.Description}, nil
}
