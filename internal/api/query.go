package api

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// defaultHours is the spreadsheet export window when hours is omitted.
const defaultHours = 48

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("query"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

type weatherReportQuery struct {
	Lat  *float64 `query:"lat" validate:"required,gte=-90,lte=90"`
	Lon  *float64 `query:"lon" validate:"required,gte=-180,lte=180"`
	Days int      `query:"days" validate:"gte=1,lte=7"`
}

type excelQuery struct {
	Hours int      `query:"hours" validate:"gte=1,lte=240"`
	Lat   *float64 `query:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon   *float64 `query:"lon" validate:"omitempty,gte=-180,lte=180"`
}

type pdfQuery struct {
	Lat   *float64 `query:"lat" validate:"required,gte=-90,lte=90"`
	Lon   *float64 `query:"lon" validate:"required,gte=-180,lte=180"`
	Start string   `query:"start"`
	End   string   `query:"end"`
}

// queryParser collects the first conversion error so handlers can parse
// every parameter and check once.
type queryParser struct {
	values url.Values
	err    error
}

func (p *queryParser) float(name string) *float64 {
	s := p.values.Get(name)
	if s == "" || p.err != nil {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = fmt.Errorf("%s must be a number", name)
		return nil
	}
	return &v
}

func (p *queryParser) int(name string, def int) int {
	s := p.values.Get(name)
	if s == "" || p.err != nil {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.err = fmt.Errorf("%s must be an integer", name)
		return def
	}
	return v
}

// validationMessage turns a validator error into a client-facing message
// naming the offending query parameter.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
