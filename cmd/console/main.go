// console is a terminal front end for the sign-in screens. It drives the
// same flow a browser would against a running server.
// Run: go run ./cmd/console -addr http://localhost:8080
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/ErlanBelekov/admin-console/internal/authflow"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	flag.Parse()

	api, err := authflow.NewAPIClient(*addr)
	if err != nil {
		log.Fatalf("client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &console{
		api: api,
		in:  bufio.NewScanner(os.Stdin),
		out: os.Stdout,
	}
	c.flow = authflow.New(api,
		authflow.WithNotify(c.notice),
		authflow.WithNavigate(func(route string) { fmt.Fprintf(c.out, "-> %s\n", route) }),
	)

	if err := c.run(ctx); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

type console struct {
	api  *authflow.APIClient
	flow *authflow.Flow
	in   *bufio.Scanner
	out  io.Writer
}

func (c *console) notice(n authflow.Notice) {
	tag := "ok"
	if n.Kind == authflow.NoticeError {
		tag = "error"
	}
	fmt.Fprintf(c.out, "[%s] %s\n", tag, n.Text)
}

func (c *console) run(ctx context.Context) error {
	for ctx.Err() == nil {
		var err error
		switch c.flow.Route() {
		case authflow.RouteDashboard:
			err = c.dashboard(ctx)
		case authflow.RouteResetPassword:
			err = c.resetPassword(ctx)
		default:
			if c.flow.View() == authflow.ForgotPasswordView {
				err = c.forgotPassword(ctx)
			} else {
				err = c.login(ctx)
			}
		}
		if err != nil {
			return err
		}
	}
	return ctx.Err()
}

func (c *console) prompt(label string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *console) login(ctx context.Context) error {
	fmt.Fprintln(c.out, "\n== Sign in ==  (leave the identifier empty to request a reset link)")
	form := c.flow.Login()

	id, err := c.prompt("identifier")
	if err != nil {
		return err
	}
	if id == "" {
		c.flow.Toggle()
		return nil
	}
	form.SetIdentifier(id)
	if msg := form.IdentifierError(); msg != "" {
		fmt.Fprintln(c.out, msg)
		return nil
	}

	secret, err := c.prompt("password")
	if err != nil {
		return err
	}
	form.SetSecret(secret)

	return c.submitted(c.flow.SubmitLogin(ctx))
}

func (c *console) forgotPassword(ctx context.Context) error {
	fmt.Fprintln(c.out, "\n== Forgot password ==  (leave empty to go back)")
	form := c.flow.ForgotPassword()

	id, err := c.prompt("identifier")
	if err != nil {
		return err
	}
	if id == "" {
		c.flow.Toggle()
		return nil
	}
	form.SetIdentifier(id)
	if msg := form.IdentifierError(); msg != "" {
		fmt.Fprintln(c.out, msg)
		return nil
	}

	return c.submitted(c.flow.SubmitForgotPassword(ctx))
}

func (c *console) resetPassword(ctx context.Context) error {
	fmt.Fprintln(c.out, "\n== Reset password ==")
	form := c.flow.ResetPassword()

	if form.Token() == "" {
		link, err := c.prompt("paste the reset link from the email")
		if err != nil {
			return err
		}
		if err := form.SetLink(link); err != nil {
			fmt.Fprintln(c.out, err)
			return nil
		}
	}

	secret, err := c.prompt("new password")
	if err != nil {
		return err
	}
	form.SetNewSecret(secret)
	if msg := form.SecretError(); msg != "" {
		fmt.Fprintln(c.out, msg)
		return nil
	}

	confirm, err := c.prompt("confirm password")
	if err != nil {
		return err
	}
	form.SetConfirmation(confirm)
	if msg := form.ConfirmationError(); msg != "" {
		fmt.Fprintln(c.out, msg)
		return nil
	}

	return c.submitted(c.flow.SubmitResetPassword(ctx))
}

func (c *console) dashboard(ctx context.Context) error {
	s, err := c.api.Session(ctx)
	switch {
	case errors.Is(err, authflow.ErrNotSignedIn):
		fmt.Fprintln(c.out, "session is no longer valid")
		_, _ = c.flow.Logout(ctx)
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintf(c.out, "\n== Dashboard ==\nsigned in as %s until %s\n", s.Subject, s.ExpiresAt.Local().Format("Jan 2 15:04"))
	cmd, err := c.prompt("[l]ogout or [q]uit")
	if err != nil {
		return err
	}
	switch cmd {
	case "l", "logout":
		_, err := c.flow.Logout(ctx)
		return c.submitted(authflow.Result{}, err)
	case "q", "quit":
		return io.EOF
	}
	return nil
}

// submitted reports a call's outcome. Validation and transport failures are
// shown and the loop carries on.
func (c *console) submitted(_ authflow.Result, err error) error {
	switch {
	case err == nil:
	case errors.Is(err, authflow.ErrCannotSubmit):
		fmt.Fprintln(c.out, "check the highlighted fields and try again")
	default:
		fmt.Fprintf(c.out, "%v\n", err)
	}
	return nil
}
