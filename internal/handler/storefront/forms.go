package storefront

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/dukerupert/whiffwear/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report form field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Quantities are capped per submission; stock ceilings clamp further.
type addItemForm struct {
	ProductID string `form:"product_id" validate:"required,max=64"`
	Quantity  int    `form:"quantity" validate:"gte=1,lte=999"`
}

type updateItemForm struct {
	ProductID string `form:"product_id" validate:"required,max=64"`
	Quantity  int    `form:"quantity" validate:"gte=0,lte=999"`
}

type removeItemForm struct {
	ProductID string `form:"product_id" validate:"required,max=64"`
}

type discountForm struct {
	Code string `form:"code" validate:"max=32"`
}

// bindAddItem parses and validates POST /cart/add. Quantity defaults to 1.
func bindAddItem(r *http.Request) (addItemForm, error) {
	const op = "cart.add"
	if err := r.ParseForm(); err != nil {
		return addItemForm{}, domain.Invalid(op, "Invalid form data")
	}

	form := addItemForm{
		ProductID: strings.TrimSpace(r.FormValue("product_id")),
		Quantity:  1,
	}
	if raw := strings.TrimSpace(r.FormValue("quantity")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return form, domain.Invalid(op, "quantity: Must be numeric")
		}
		form.Quantity = n
	}
	return form, validateForm(op, form)
}

// bindUpdateItem parses and validates POST /cart/update. Quantity is required.
func bindUpdateItem(r *http.Request) (updateItemForm, error) {
	const op = "cart.update"
	if err := r.ParseForm(); err != nil {
		return updateItemForm{}, domain.Invalid(op, "Invalid form data")
	}

	form := updateItemForm{ProductID: strings.TrimSpace(r.FormValue("product_id"))}
	n, err := strconv.Atoi(strings.TrimSpace(r.FormValue("quantity")))
	if err != nil {
		return form, domain.Invalid(op, "quantity: Must be numeric")
	}
	form.Quantity = n
	return form, validateForm(op, form)
}

func bindRemoveItem(r *http.Request) (removeItemForm, error) {
	const op = "cart.remove"
	if err := r.ParseForm(); err != nil {
		return removeItemForm{}, domain.Invalid(op, "Invalid form data")
	}
	form := removeItemForm{ProductID: strings.TrimSpace(r.FormValue("product_id"))}
	return form, validateForm(op, form)
}

func bindDiscount(r *http.Request) (discountForm, error) {
	const op = "cart.discount"
	if err := r.ParseForm(); err != nil {
		return discountForm{}, domain.Invalid(op, "Invalid form data")
	}
	form := discountForm{Code: strings.TrimSpace(r.FormValue("code"))}
	return form, validateForm(op, form)
}

// validateForm runs the struct tags and reports the first failing field.
func validateForm(op string, form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errs, ok := err.(validator.ValidationErrors); ok {
		fieldErrs = errs
	}
	if len(fieldErrs) == 0 {
		return domain.WrapError(err, domain.EINVALID, op, "Invalid form data")
	}
	fe := fieldErrs[0]
	return domain.WrapError(err, domain.EINVALID, op, fe.Field()+": "+validationMessage(fe))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "gte":
		return "Must be at least " + e.Param()
	case "lte":
		return "Must be at most " + e.Param()
	default:
		return "Invalid value"
	}
}
