package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	playground "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"accounting/internal/models"
	"accounting/internal/money"
)

const DateLayout = "2006-01-02"

// Errors lists every field that failed, keyed by its JSON name.
type Errors struct {
	Problems []string
}

func (e *Errors) Error() string {
	return "invalid request: " + strings.Join(e.Problems, "; ")
}

var (
	once     sync.Once
	validate *playground.Validate
)

func instance() *playground.Validate {
	once.Do(func() {
		validate = playground.New(playground.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
		mustRegister("date", isDate)
		mustRegister("money", isMoney)
		mustRegister("positive_money", isPositiveMoney)
		mustRegister("account_type", func(fl playground.FieldLevel) bool {
			return models.AccountType(fl.Field().String()).IsValid()
		})
		mustRegister("payment_method", func(fl playground.FieldLevel) bool {
			return models.PaymentMethod(fl.Field().String()).IsValid()
		})
		mustRegister("payment_type", func(fl playground.FieldLevel) bool {
			return models.PaymentType(fl.Field().String()).IsValid()
		})
		mustRegister("payable_kind", func(fl playground.FieldLevel) bool {
			return models.PayableKind(fl.Field().String()).IsValid()
		})
	})
	return validate
}

func mustRegister(tag string, fn playground.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s: %v", tag, err))
	}
}

func isDate(fl playground.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

func isMoney(fl playground.FieldLevel) bool {
	d, err := money.Parse(fl.Field().String())
	return err == nil && !d.IsNegative()
}

func isPositiveMoney(fl playground.FieldLevel) bool {
	_, err := money.ParsePositive(fl.Field().String())
	return err == nil
}

// Struct checks a request body against its validate tags.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return &Errors{Problems: problems}
}

func describe(fe playground.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "date":
		return field + " must be a date in YYYY-MM-DD form"
	case "money":
		return field + " must be a non-negative amount with at most two decimals"
	case "positive_money":
		return field + " must be a positive amount with at most two decimals"
	case "account_type":
		return field + " must be asset, liability, equity, revenue or expense"
	case "payment_method":
		return field + " is not a known payment method"
	case "payment_type":
		return field + " is not a known payment type"
	case "payable_kind":
		return field + " must be invoice, purchase_order, expense or refund"
	case "email":
		return field + " must be an email address"
	case "oneof":
		return field + " must be one of " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	default:
		return field + " is invalid"
	}
}

// Date parses a YYYY-MM-DD string already checked by the date tag.
func Date(raw string) time.Time {
	t, _ := time.Parse(DateLayout, raw)
	return t
}

// OptionalDate is Date for omitempty fields.
func OptionalDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t := Date(raw)
	return &t
}

// Amount parses a decimal string already checked by a money tag; empty is zero.
func Amount(raw string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	d, _ := decimal.NewFromString(raw)
	return d
}
