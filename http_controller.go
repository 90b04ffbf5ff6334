package gate

import (
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// HTTPGate is the transport seam the controller drives. RouteAuthenticator
// implements it.
type HTTPGate interface {
	Login(ctx router.Context, payload LoginPayload) error
	Provision(ctx router.Context, payload ProvisionPayload) error
	Logout(ctx router.Context)
}

// RegisterGateRoutes mounts the JSON API on app
func RegisterGateRoutes[T any](app router.Router[T], opts ...GateControllerOption) {

	controller := NewGateController(opts...)

	app.
		Get(controller.Routes.CheckoutSession, controller.CheckoutSessionShow).
		SetName("checkout-session.get")

	app.
		Post(controller.Routes.CheckoutSession, controller.CheckoutSessionCreate).
		SetName("checkout-session.post")

	app.
		Post(controller.Routes.Accounts, controller.AccountCreate).
		SetName("accounts.post")

	app.
		Post(controller.Routes.Login, controller.LoginPost).
		SetName("sign-in.post")

	app.
		Post(controller.Routes.Logout, controller.LogoutPost).
		SetName("sign-out.post")
}

type GateControllerRoutes struct {
	CheckoutSession string
	Accounts        string
	Login           string
	Logout          string
}

type GateController struct {
	Debug    bool
	Logger   Logger
	Routes   *GateControllerRoutes
	Auther   HTTPGate
	Verifier Verifier
	Starter  CheckoutStarter
}

type GateControllerOption func(*GateController) *GateController

func NewGateController(opts ...GateControllerOption) *GateController {
	c := &GateController{
		Logger: defLogger{},
		Routes: &GateControllerRoutes{
			CheckoutSession: "/api/checkout-session",
			Accounts:        "/api/accounts",
			Login:           "/api/login",
			Logout:          "/api/logout",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing HTTPGate in gate controller...")
	}

	if c.Verifier == nil {
		panic("Missing Verifier in gate controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) GateControllerOption {
	return func(c *GateController) *GateController {
		c.Logger = logger
		return c
	}
}

func WithHTTPGate(auther HTTPGate) GateControllerOption {
	return func(c *GateController) *GateController {
		c.Auther = auther
		return c
	}
}

func WithVerifier(verifier Verifier) GateControllerOption {
	return func(c *GateController) *GateController {
		c.Verifier = verifier
		return c
	}
}

func WithCheckoutStarter(starter CheckoutStarter) GateControllerOption {
	return func(c *GateController) *GateController {
		c.Starter = starter
		return c
	}
}

func WithControllerDebug(debug bool) GateControllerOption {
	return func(c *GateController) *GateController {
		c.Debug = debug
		return c
	}
}

// checkoutSessionResponse is the client-facing projection of a verified
// checkout. Identifiers and amounts only, never credential material.
type checkoutSessionResponse struct {
	ID             string `json:"id"`
	Mode           string `json:"mode"`
	CustomerEmail  string `json:"customerEmail"`
	CustomerID     string `json:"customerId,omitempty"`
	SubscriptionID string `json:"subscriptionId,omitempty"`
	AmountTotal    int64  `json:"amountTotal"`
	Currency       string `json:"currency"`
	AccountExists  bool   `json:"accountExists"`
}

// CheckoutSessionShow verifies the session_id query reference and reports the
// checkout outcome, including whether an account already exists for it
func (a *GateController) CheckoutSessionShow(ctx router.Context) error {
	reference := ctx.Query("session_id", "")

	outcome, err := a.Verifier.Verify(ctx.Context(), reference)
	if err != nil {
		return a.respondError(ctx, err)
	}

	if a.Debug {
		fmt.Println("======= CHECKOUT VERIFY =======")
		fmt.Println(print.MaybePrettyJSON(outcome))
		fmt.Println("===============================")
	}

	return ctx.JSON(http.StatusOK, checkoutSessionResponse{
		ID:             outcome.Reference,
		Mode:           string(outcome.Mode),
		CustomerEmail:  outcome.Email,
		CustomerID:     outcome.CustomerID,
		SubscriptionID: outcome.SubscriptionID,
		AmountTotal:    outcome.AmountTotal,
		Currency:       outcome.Currency,
		AccountExists:  outcome.AccountExists,
	})
}

// StartCheckoutRequest payload
type StartCheckoutRequest struct {
	PriceID string `form:"price_id" json:"price_id"`
	Mode    string `form:"mode" json:"mode"`
}

// Validate will run validation rules
func (r StartCheckoutRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.PriceID,
			validation.Required,
		),
		validation.Field(
			&r.Mode,
			validation.Required,
			validation.In(string(ModeOneTime), string(ModeRecurring)),
		),
	)
}

// CheckoutSessionCreate starts a new hosted checkout and returns its redirect
// URL
func (a *GateController) CheckoutSessionCreate(ctx router.Context) error {
	if a.Starter == nil {
		return a.respondError(ctx, errors.New("checkout creation is not enabled", errors.CategoryOperation).
			WithCode(http.StatusNotImplemented))
	}

	payload := new(StartCheckoutRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.respondError(ctx, errors.Wrap(err, errors.CategoryBadInput, "failed to parse request body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(ctx, err)
	}

	intent, err := a.Starter.Start(ctx.Context(), StartCheckoutInput{
		PriceID: payload.PriceID,
		Mode:    CheckoutMode(payload.Mode),
	})
	if err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]string{
		"id":  intent.ID,
		"url": intent.URL,
	})
}

// AccountCreateRequest payload
type AccountCreateRequest struct {
	SessionID string `form:"session_id" json:"session_id"`
	Password  string `form:"password" json:"password"`
}

// GetReference returns the checkout session reference
func (r AccountCreateRequest) GetReference() string {
	return r.SessionID
}

// GetPassword will return the password
func (r AccountCreateRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r AccountCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.SessionID,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(MinPasswordLength, 100),
		),
	)
}

// AccountCreate provisions credentials against the payload's checkout and
// starts a session
func (a *GateController) AccountCreate(ctx router.Context) error {
	payload := new(AccountCreateRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.respondError(ctx, errors.Wrap(err, errors.CategoryBadInput, "failed to parse request body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(ctx, err)
	}

	if err := a.Auther.Provision(ctx, payload); err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, map[string]bool{
		"ok": true,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// GetEmail returns the email
func (r LoginRequest) GetEmail() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *GateController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.respondError(ctx, errors.Wrap(err, errors.CategoryBadInput, "failed to parse request body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(ctx, err)
	}

	if a.Debug {
		fmt.Println("======= GATE LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(map[string]string{"email": payload.Email}))
		fmt.Println("=========================")
	}

	if err := a.Auther.Login(ctx, payload); err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]bool{
		"ok": true,
	})
}

// LogoutPost clears the session cookie. Always succeeds, session or not.
func (a *GateController) LogoutPost(ctx router.Context) error {
	a.Auther.Logout(ctx)
	return ctx.JSON(http.StatusOK, map[string]bool{
		"ok": true,
	})
}

// respondValidation maps ozzo validation failures to a 400 with per-field
// messages
func (a *GateController) respondValidation(ctx router.Context, err error) error {
	fields := map[string]string{}
	if verr, ok := err.(validation.Errors); ok {
		for name, ferr := range verr {
			fields[name] = ferr.Error()
		}
	}

	return ctx.JSON(http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"message": "validation failed",
			"code":    "VALIDATION",
			"fields":  fields,
		},
	})
}

// respondError maps domain errors to their HTTP status. Only the public
// message and text code leave the process; metadata stays in the logs.
func (a *GateController) respondError(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		a.Logger.Error("unhandled error: %s", err)
		return ctx.JSON(http.StatusInternalServerError, map[string]any{
			"error": map[string]any{
				"message": "internal server error",
				"code":    TextCodeBillingUpstream,
			},
		})
	}

	status := richErr.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}

	message := richErr.Message
	if status >= http.StatusInternalServerError {
		a.Logger.Error("request failed: %s metadata: %v", err, richErr.Metadata)
		message = "internal server error"
	}

	return ctx.JSON(status, map[string]any{
		"error": map[string]any{
			"message": message,
			"code":    richErr.TextCode,
		},
	})
}
