// Package authflow is the presentation-side state of the console's sign-in
// screens: which form is showing, what the user typed, whether submit is
// allowed, and where to go after each call returns. It has no rendering; a
// front end (see cmd/console) reads the state and feeds input back in.
package authflow

// View is the form shown on the public entry route.
type View int

const (
	LoginView View = iota
	ForgotPasswordView
)

func (v View) String() string {
	switch v {
	case LoginView:
		return "login"
	case ForgotPasswordView:
		return "forgot-password"
	default:
		return "unknown"
	}
}

// Toggle is the only transition between the two entry views.
func (v View) Toggle() View {
	if v == LoginView {
		return ForgotPasswordView
	}
	return LoginView
}

// Routes the flow navigates between.
const (
	RouteEntry         = "/"
	RouteDashboard     = "/dashboard"
	RouteResetPassword = "/reset-password"
)
