package authflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ErlanBelekov/admin-console/internal/authflow"
)

type fakeAPI struct {
	login            func(ctx context.Context, identifier, secret string) (authflow.Result, error)
	requestResetLink func(ctx context.Context, identifier string) (authflow.Result, error)
	resetPassword    func(ctx context.Context, token, newSecret, confirmationSecret string) (authflow.Result, error)
	logout           func(ctx context.Context) (authflow.Result, error)
}

func (f *fakeAPI) Login(ctx context.Context, identifier, secret string) (authflow.Result, error) {
	return f.login(ctx, identifier, secret)
}

func (f *fakeAPI) RequestResetLink(ctx context.Context, identifier string) (authflow.Result, error) {
	return f.requestResetLink(ctx, identifier)
}

func (f *fakeAPI) ResetPassword(ctx context.Context, token, newSecret, confirmationSecret string) (authflow.Result, error) {
	return f.resetPassword(ctx, token, newSecret, confirmationSecret)
}

func (f *fakeAPI) Logout(ctx context.Context) (authflow.Result, error) {
	return f.logout(ctx)
}

type recorder struct {
	notices []authflow.Notice
	routes  []string
}

func newFlow(api authflow.API) (*authflow.Flow, *recorder) {
	rec := &recorder{}
	fl := authflow.New(api,
		authflow.WithNotify(func(n authflow.Notice) { rec.notices = append(rec.notices, n) }),
		authflow.WithNavigate(func(r string) { rec.routes = append(rec.routes, r) }),
	)
	return fl, rec
}

func TestFlow_StartsOnLoginAndToggles(t *testing.T) {
	fl, _ := newFlow(&fakeAPI{})
	if fl.View() != authflow.LoginView || fl.Route() != authflow.RouteEntry {
		t.Fatalf("start = %v %q", fl.View(), fl.Route())
	}
	fl.Toggle()
	if fl.View() != authflow.ForgotPasswordView {
		t.Errorf("View = %v after toggle", fl.View())
	}
	fl.Toggle()
	if fl.View() != authflow.LoginView {
		t.Errorf("View = %v after second toggle", fl.View())
	}
}

func TestSubmitLogin_Success(t *testing.T) {
	var fl *authflow.Flow
	api := &fakeAPI{login: func(ctx context.Context, id, secret string) (authflow.Result, error) {
		if !fl.Login().Submitting() {
			t.Error("Submitting not set during the call")
		}
		if fl.Login().CanSubmit() {
			t.Error("CanSubmit true while submitting")
		}
		if _, err := fl.SubmitLogin(ctx); !errors.Is(err, authflow.ErrCannotSubmit) {
			t.Errorf("re-entrant submit: %v", err)
		}
		return authflow.Result{Status: true, Message: "authentication successful"}, nil
	}}
	fl, rec := newFlow(api)

	fl.Login().SetIdentifier("admin@example.com")
	fl.Login().SetSecret("Password1234")
	res, err := fl.SubmitLogin(context.Background())
	if err != nil || !res.Status {
		t.Fatalf("SubmitLogin = %+v, %v", res, err)
	}
	if fl.Login().Submitting() {
		t.Error("Submitting left set")
	}
	if fl.Route() != authflow.RouteDashboard {
		t.Errorf("Route = %q", fl.Route())
	}
	if len(rec.notices) != 1 || rec.notices[0].Kind != authflow.NoticeSuccess {
		t.Errorf("notices = %+v", rec.notices)
	}
}

func TestSubmitLogin_Rejected(t *testing.T) {
	fl, rec := newFlow(&fakeAPI{login: func(context.Context, string, string) (authflow.Result, error) {
		return authflow.Result{Status: false, Message: "authentication failed"}, nil
	}})
	fl.Login().SetIdentifier("admin@example.com")
	fl.Login().SetSecret("Wrong12345")

	if _, err := fl.SubmitLogin(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fl.Login().Failed() || fl.Login().Message() != "authentication failed" {
		t.Errorf("form = failed:%v message:%q", fl.Login().Failed(), fl.Login().Message())
	}
	if fl.Route() != authflow.RouteEntry || len(rec.routes) != 0 {
		t.Errorf("navigated on failure: %v", rec.routes)
	}
	if rec.notices[0].Kind != authflow.NoticeError {
		t.Errorf("notice = %+v", rec.notices[0])
	}

	fl.Login().SetSecret("Password1234")
	if fl.Login().Failed() {
		t.Error("Failed should clear on edit")
	}
}

func TestSubmitLogin_TransportErrorResetsSubmitting(t *testing.T) {
	netErr := errors.New("connection refused")
	fl, rec := newFlow(&fakeAPI{login: func(context.Context, string, string) (authflow.Result, error) {
		return authflow.Result{}, netErr
	}})
	fl.Login().SetIdentifier("admin@example.com")
	fl.Login().SetSecret("Password1234")

	if _, err := fl.SubmitLogin(context.Background()); !errors.Is(err, netErr) {
		t.Fatalf("want wrapped netErr, got %v", err)
	}
	if fl.Login().Submitting() {
		t.Error("Submitting left set after transport error")
	}
	if !fl.Login().CanSubmit() {
		t.Error("form should be submittable again")
	}
	if rec.notices[0].Text != authflow.MsgUnavailable {
		t.Errorf("notice = %+v", rec.notices[0])
	}
}

func TestSubmitLogin_PanicStillResetsSubmitting(t *testing.T) {
	fl, _ := newFlow(&fakeAPI{login: func(context.Context, string, string) (authflow.Result, error) {
		panic("boom")
	}})
	fl.Login().SetIdentifier("admin@example.com")
	fl.Login().SetSecret("Password1234")

	func() {
		defer func() { _ = recover() }()
		_, _ = fl.SubmitLogin(context.Background())
	}()
	if fl.Login().Submitting() {
		t.Error("Submitting left set after panic")
	}
}

func TestSubmitLogin_InvalidFormNotSent(t *testing.T) {
	fl, _ := newFlow(&fakeAPI{login: func(context.Context, string, string) (authflow.Result, error) {
		t.Error("API called with an invalid form")
		return authflow.Result{}, nil
	}})
	fl.Login().SetIdentifier("bad")
	fl.Login().SetSecret("Password1234")
	if _, err := fl.SubmitLogin(context.Background()); !errors.Is(err, authflow.ErrCannotSubmit) {
		t.Errorf("want ErrCannotSubmit, got %v", err)
	}
}

func TestSubmitForgotPassword(t *testing.T) {
	var gotID string
	fl, _ := newFlow(&fakeAPI{requestResetLink: func(_ context.Context, id string) (authflow.Result, error) {
		gotID = id
		return authflow.Result{Status: true, Message: "reset link sent"}, nil
	}})
	fl.Toggle()
	fl.ForgotPassword().SetIdentifier("admin@example.com")

	if _, err := fl.SubmitForgotPassword(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID != "admin@example.com" {
		t.Errorf("identifier = %q", gotID)
	}
	if fl.Route() != authflow.RouteResetPassword {
		t.Errorf("Route = %q", fl.Route())
	}
}

func TestSubmitForgotPassword_NotFoundStays(t *testing.T) {
	fl, _ := newFlow(&fakeAPI{requestResetLink: func(context.Context, string) (authflow.Result, error) {
		return authflow.Result{Status: false, Message: "not found"}, nil
	}})
	fl.Toggle()
	fl.ForgotPassword().SetIdentifier("ghost@example.com")

	if _, err := fl.SubmitForgotPassword(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fl.Route() != authflow.RouteEntry || fl.View() != authflow.ForgotPasswordView {
		t.Errorf("route=%q view=%v", fl.Route(), fl.View())
	}
	if fl.ForgotPassword().Message() != "not found" {
		t.Errorf("Message = %q", fl.ForgotPassword().Message())
	}
}

func TestSubmitResetPassword_SuccessReturnsToLogin(t *testing.T) {
	var got [3]string
	fl, rec := newFlow(&fakeAPI{resetPassword: func(_ context.Context, tok, n, c string) (authflow.Result, error) {
		got = [3]string{tok, n, c}
		return authflow.Result{Status: true, Message: "password updated"}, nil
	}})
	fl.Toggle()
	form := fl.ResetPassword()
	form.SetToken("tok")
	form.SetNewSecret("Abcdef12")
	form.SetConfirmation("Abcdef12")

	if _, err := fl.SubmitResetPassword(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != [3]string{"tok", "Abcdef12", "Abcdef12"} {
		t.Errorf("API got %v", got)
	}
	if fl.Route() != authflow.RouteEntry || fl.View() != authflow.LoginView {
		t.Errorf("route=%q view=%v", fl.Route(), fl.View())
	}
	if fl.ResetPassword().Token() != "" {
		t.Error("reset form not cleared")
	}
	if len(rec.routes) != 1 || rec.routes[0] != authflow.RouteEntry {
		t.Errorf("routes = %v", rec.routes)
	}
}

func TestLogout_AlwaysReturnsToEntry(t *testing.T) {
	fl, _ := newFlow(&fakeAPI{
		login: func(context.Context, string, string) (authflow.Result, error) {
			return authflow.Result{Status: true}, nil
		},
		logout: func(context.Context) (authflow.Result, error) {
			return authflow.Result{}, errors.New("offline")
		},
	})
	fl.Login().SetIdentifier("admin@example.com")
	fl.Login().SetSecret("Password1234")
	_, _ = fl.SubmitLogin(context.Background())

	res, err := fl.Logout(context.Background())
	if err == nil {
		t.Error("transport error not reported")
	}
	if !res.Status || fl.Route() != authflow.RouteEntry {
		t.Errorf("res=%+v route=%q", res, fl.Route())
	}
	if fl.Login().Identifier() != "" {
		t.Error("login form not cleared")
	}
}
