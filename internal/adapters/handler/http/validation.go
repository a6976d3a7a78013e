package http

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/clock"
)

var registerOnce sync.Once

// RegisterValidators adds the calendar tags used by request structs to gin's
// validator: daykey (YYYY-MM-DD), monthkey (YYYY-MM) and weekday (0-6).
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err = v.RegisterValidation("daykey", validDayKey); err != nil {
			return
		}
		if err = v.RegisterValidation("monthkey", validMonthKey); err != nil {
			return
		}
		err = v.RegisterValidation("weekday", validWeekday)
	})
	return err
}

func validDayKey(fl validator.FieldLevel) bool {
	_, ok := clock.ParseDayKey(fl.Field().String(), time.UTC)
	return ok
}

func validMonthKey(fl validator.FieldLevel) bool {
	_, ok := clock.ParseMonthKey(fl.Field().String(), time.UTC)
	return ok
}

func validWeekday(fl validator.FieldLevel) bool {
	d := fl.Field().Int()
	return d >= 0 && d <= 6
}
