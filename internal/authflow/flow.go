package authflow

import (
	"context"
	"errors"
	"fmt"
)

// Result is the {status, message} envelope every auth endpoint answers with.
type Result struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// API is the server surface the flow drives. *APIClient implements it over
// HTTP. A non-nil error means the call itself failed, not that the server
// said no.
type API interface {
	Login(ctx context.Context, identifier, secret string) (Result, error)
	RequestResetLink(ctx context.Context, identifier string) (Result, error)
	ResetPassword(ctx context.Context, token, newSecret, confirmationSecret string) (Result, error)
	Logout(ctx context.Context) (Result, error)
}

type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeError
)

// Notice is a transient submission-level message.
type Notice struct {
	Kind NoticeKind
	Text string
}

// MsgUnavailable is shown when a call fails before the server answers.
const MsgUnavailable = "service unavailable, try again"

var ErrCannotSubmit = errors.New("form cannot be submitted")

// Flow owns the three forms, the entry view and the current route. It is
// driven from a single UI goroutine and is not safe for concurrent use.
type Flow struct {
	api      API
	view     View
	route    string
	login    LoginForm
	forgot   ForgotPasswordForm
	reset    ResetPasswordForm
	notify   func(Notice)
	navigate func(route string)
}

type Option func(*Flow)

// WithNotify registers the notice sink (toast, status line).
func WithNotify(fn func(Notice)) Option {
	return func(f *Flow) { f.notify = fn }
}

// WithNavigate registers a callback run after every route change.
func WithNavigate(fn func(route string)) Option {
	return func(f *Flow) { f.navigate = fn }
}

func New(api API, opts ...Option) *Flow {
	f := &Flow{
		api:      api,
		view:     LoginView,
		route:    RouteEntry,
		notify:   func(Notice) {},
		navigate: func(string) {},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) View() View                          { return f.view }
func (f *Flow) Route() string                       { return f.route }
func (f *Flow) Login() *LoginForm                   { return &f.login }
func (f *Flow) ForgotPassword() *ForgotPasswordForm { return &f.forgot }
func (f *Flow) ResetPassword() *ResetPasswordForm   { return &f.reset }

// Toggle switches between the login and forgot-password views.
func (f *Flow) Toggle() {
	f.view = f.view.Toggle()
}

func (f *Flow) goTo(route string) {
	f.route = route
	if route == RouteEntry {
		f.view = LoginView
	}
	f.navigate(route)
}

func (f *Flow) transportFailure(err error) error {
	f.notify(Notice{Kind: NoticeError, Text: MsgUnavailable})
	return err
}

// SubmitLogin sends the login form. On success the flow moves to the
// dashboard; a rejection leaves it on the form with Failed set.
func (f *Flow) SubmitLogin(ctx context.Context) (Result, error) {
	form := &f.login
	if !form.CanSubmit() {
		return Result{}, ErrCannotSubmit
	}
	form.submitting = true
	defer func() { form.submitting = false }()

	res, err := f.api.Login(ctx, form.identifier, form.secret)
	if err != nil {
		form.message = MsgUnavailable
		return Result{}, f.transportFailure(fmt.Errorf("login: %w", err))
	}

	form.message = res.Message
	if !res.Status {
		form.failed = true
		f.notify(Notice{Kind: NoticeError, Text: res.Message})
		return res, nil
	}

	f.notify(Notice{Kind: NoticeSuccess, Text: res.Message})
	f.goTo(RouteDashboard)
	return res, nil
}

// SubmitForgotPassword asks for a reset link and, on success, moves to the
// reset route to wait for it.
func (f *Flow) SubmitForgotPassword(ctx context.Context) (Result, error) {
	form := &f.forgot
	if !form.CanSubmit() {
		return Result{}, ErrCannotSubmit
	}
	form.submitting = true
	defer func() { form.submitting = false }()

	res, err := f.api.RequestResetLink(ctx, form.identifier)
	if err != nil {
		form.message = MsgUnavailable
		return Result{}, f.transportFailure(fmt.Errorf("request reset link: %w", err))
	}

	form.message = res.Message
	if !res.Status {
		f.notify(Notice{Kind: NoticeError, Text: res.Message})
		return res, nil
	}

	f.notify(Notice{Kind: NoticeSuccess, Text: res.Message})
	f.goTo(RouteResetPassword)
	return res, nil
}

// SubmitResetPassword sends the new secret with the link's token and
// returns to the entry route on success.
func (f *Flow) SubmitResetPassword(ctx context.Context) (Result, error) {
	form := &f.reset
	if !form.CanSubmit() {
		return Result{}, ErrCannotSubmit
	}
	form.submitting = true
	defer func() { form.submitting = false }()

	res, err := f.api.ResetPassword(ctx, form.token, form.newSecret, form.confirmation)
	if err != nil {
		form.message = MsgUnavailable
		return Result{}, f.transportFailure(fmt.Errorf("reset password: %w", err))
	}

	form.message = res.Message
	if !res.Status {
		f.notify(Notice{Kind: NoticeError, Text: res.Message})
		return res, nil
	}

	f.notify(Notice{Kind: NoticeSuccess, Text: res.Message})
	f.reset = ResetPasswordForm{}
	f.goTo(RouteEntry)
	return res, nil
}

// Logout always lands on the entry route, even when the server call fails.
func (f *Flow) Logout(ctx context.Context) (Result, error) {
	res, err := f.api.Logout(ctx)
	f.login = LoginForm{}
	f.goTo(RouteEntry)
	if err != nil {
		return Result{Status: true, Message: "signed out"}, f.transportFailure(fmt.Errorf("logout: %w", err))
	}
	f.notify(Notice{Kind: NoticeSuccess, Text: res.Message})
	return res, nil
}
