package authflow

import (
	"errors"
	"net/url"

	"github.com/ErlanBelekov/admin-console/internal/validate"
)

// Field messages shown next to inputs.
const (
	MsgInvalidIdentifier = "enter a valid email address"
	MsgWeakSecret        = "use 8 to 20 letters and digits, including upper case, lower case and a digit"
	MsgSecretsDiffer     = "passwords do not match"
)

const (
	minLoginSecret = 8
	maxLoginSecret = 20
)

func fieldError(ok bool, msg string) string {
	if ok {
		return ""
	}
	return msg
}

// LoginForm holds the login inputs. Errors are recomputed on every Set call.
type LoginForm struct {
	identifier    string
	secret        string
	identifierErr string
	failed        bool
	submitting    bool
	message       string
}

func (f *LoginForm) SetIdentifier(s string) {
	f.identifier = s
	f.identifierErr = fieldError(validate.Identifier(s), MsgInvalidIdentifier)
	f.failed = false
}

func (f *LoginForm) SetSecret(s string) {
	f.secret = s
	f.failed = false
}

func (f *LoginForm) Identifier() string      { return f.identifier }
func (f *LoginForm) IdentifierError() string { return f.identifierErr }
func (f *LoginForm) Submitting() bool        { return f.submitting }
func (f *LoginForm) Message() string         { return f.message }

// Failed reports whether the last submit was rejected and the inputs have
// not been edited since. Front ends mark both fields when it is set.
func (f *LoginForm) Failed() bool { return f.failed }

// CanSubmit only checks the secret's length; the server decides whether it
// is right.
func (f *LoginForm) CanSubmit() bool {
	return !f.submitting &&
		f.identifier != "" &&
		f.identifierErr == "" &&
		len(f.secret) >= minLoginSecret &&
		len(f.secret) <= maxLoginSecret
}

// ForgotPasswordForm asks for the identifier a reset link goes to.
type ForgotPasswordForm struct {
	identifier    string
	identifierErr string
	submitting    bool
	message       string
}

func (f *ForgotPasswordForm) SetIdentifier(s string) {
	f.identifier = s
	f.identifierErr = fieldError(validate.Identifier(s), MsgInvalidIdentifier)
}

func (f *ForgotPasswordForm) Identifier() string      { return f.identifier }
func (f *ForgotPasswordForm) IdentifierError() string { return f.identifierErr }
func (f *ForgotPasswordForm) Submitting() bool        { return f.submitting }
func (f *ForgotPasswordForm) Message() string         { return f.message }

func (f *ForgotPasswordForm) CanSubmit() bool {
	return !f.submitting && f.identifier != "" && f.identifierErr == ""
}

// ResetPasswordForm is the form behind the emailed reset link.
type ResetPasswordForm struct {
	token        string
	newSecret    string
	confirmation string
	secretErr    string
	confirmErr   string
	submitting   bool
	message      string
}

var ErrNoResetToken = errors.New("link has no reset token")

// SetLink takes the token from a reset link (or bare query string).
func (f *ResetPasswordForm) SetLink(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return err
	}
	tok := u.Query().Get("token")
	if tok == "" {
		return ErrNoResetToken
	}
	f.token = tok
	return nil
}

func (f *ResetPasswordForm) SetToken(token string) { f.token = token }

func (f *ResetPasswordForm) SetNewSecret(s string) {
	f.newSecret = s
	f.secretErr = fieldError(validate.Secret(s), MsgWeakSecret)
	f.recheckConfirmation()
}

func (f *ResetPasswordForm) SetConfirmation(s string) {
	f.confirmation = s
	f.recheckConfirmation()
}

// The mismatch message waits until something has been typed in the
// confirmation field.
func (f *ResetPasswordForm) recheckConfirmation() {
	f.confirmErr = fieldError(f.confirmation == "" || f.confirmation == f.newSecret, MsgSecretsDiffer)
}

func (f *ResetPasswordForm) Token() string             { return f.token }
func (f *ResetPasswordForm) SecretError() string       { return f.secretErr }
func (f *ResetPasswordForm) ConfirmationError() string { return f.confirmErr }
func (f *ResetPasswordForm) Submitting() bool          { return f.submitting }
func (f *ResetPasswordForm) Message() string           { return f.message }

func (f *ResetPasswordForm) CanSubmit() bool {
	return !f.submitting &&
		f.token != "" &&
		f.newSecret != "" &&
		f.confirmation != "" &&
		f.secretErr == "" &&
		f.newSecret == f.confirmation
}
