package handler

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/yanex66/vouchly/internal/config"
	"github.com/yanex66/vouchly/internal/service"
)

type Handler struct {
	cfg          *config.Config
	sessions     *session.Store
	validate     *validator.Validate
	userSvc      *service.UserService
	catalogSvc   *service.CatalogService
	reviewSvc    *service.ReviewService
	referralSvc  *service.ReferralService
	ledgerSvc    *service.LedgerService
	payoutSvc    *service.PayoutService
	dashboardSvc *service.DashboardService
}

// Services groups the services the public API depends on.
type Services struct {
	User      *service.UserService
	Catalog   *service.CatalogService
	Review    *service.ReviewService
	Referral  *service.ReferralService
	Ledger    *service.LedgerService
	Payout    *service.PayoutService
	Dashboard *service.DashboardService
}

func New(cfg *config.Config, sessions *session.Store, svc Services) *Handler {
	return &Handler{
		cfg:          cfg,
		sessions:     sessions,
		validate:     newValidator(),
		userSvc:      svc.User,
		catalogSvc:   svc.Catalog,
		reviewSvc:    svc.Review,
		referralSvc:  svc.Referral,
		ledgerSvc:    svc.Ledger,
		payoutSvc:    svc.Payout,
		dashboardSvc: svc.Dashboard,
	}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Amount accepts a JSON string or number and keeps its exact text, so that
// parsing and precision checks happen in one place.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	if string(b) == "null" {
		*a = ""
		return nil
	}
	*a = Amount(b)
	return nil
}

func (a Amount) String() string {
	return string(a)
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}
