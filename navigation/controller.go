package navigation

import (
	"sync"

	"github.com/jrsteele09/sportify-auth-client/forms"
)

// Modal is the auth dialog currently shown. At most one is open.
type Modal int

const (
	ModalNone Modal = iota
	ModalPlayerSignIn
	ModalManagerSignIn
	ModalPlayerSignUp
	ModalManagerSignUp
	ModalPlayerPasswordReset
	ModalManagerPasswordReset
	ModalTwoFactor
	ModalVerifyEmail
)

var modalNames = map[Modal]string{
	ModalNone:                 "none",
	ModalPlayerSignIn:         "player sign in",
	ModalManagerSignIn:        "manager sign in",
	ModalPlayerSignUp:         "player sign up",
	ModalManagerSignUp:        "manager sign up",
	ModalPlayerPasswordReset:  "player password reset",
	ModalManagerPasswordReset: "manager password reset",
	ModalTwoFactor:            "two factor",
	ModalVerifyEmail:          "verify email",
}

func (m Modal) String() string {
	return modalNames[m]
}

func (m Modal) manager() bool {
	return m == ModalManagerSignIn || m == ModalManagerSignUp || m == ModalManagerPasswordReset
}

// Controller is the single owner of the auth modal state. Every move between
// sign-in, sign-up, password reset and second factor goes through one of its
// transitions.
type Controller struct {
	mu     sync.Mutex
	active Modal
	// origin is the sign-in modal a second factor or email verification
	// returns to when cancelled
	origin Modal
}

func NewController() *Controller {
	return &Controller{}
}

func (c *Controller) Active() Modal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Open shows m, closing whatever was open.
func (c *Controller) Open(m Modal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = m
	c.origin = ModalNone
}

func (c *Controller) Close() {
	c.Open(ModalNone)
}

// SwitchToSignUp moves from a sign-in modal to the sign-up of the same role.
func (c *Controller) SwitchToSignUp() {
	c.switchRole(ModalPlayerSignUp, ModalManagerSignUp)
}

// SwitchToSignIn moves to the sign-in of the current modal's role.
func (c *Controller) SwitchToSignIn() {
	c.switchRole(ModalPlayerSignIn, ModalManagerSignIn)
}

func (c *Controller) SwitchToPasswordReset() {
	c.switchRole(ModalPlayerPasswordReset, ModalManagerPasswordReset)
}

func (c *Controller) switchRole(player, manager Modal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active.manager() {
		c.active = manager
	} else {
		c.active = player
	}
	c.origin = ModalNone
}

// StepUpRequired closes the sign-in modal and opens the second factor
// prompt. A restarted second factor keeps returning to the original sign-in.
func (c *Controller) StepUpRequired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != ModalTwoFactor {
		c.origin = c.active
	}
	c.active = ModalTwoFactor
}

// StepUpCancelled returns to the sign-in modal that asked for the second
// factor.
func (c *Controller) StepUpCancelled() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != ModalTwoFactor {
		return
	}
	c.active = c.origin
	c.origin = ModalNone
}

func (c *Controller) StepUpVerified() {
	c.Close()
}

// Apply moves the modal state on after a form submission.
func (c *Controller) Apply(outcome forms.Outcome) {
	switch outcome.Kind {
	case forms.OutcomeSuccess:
		c.Close()
	case forms.OutcomeStepUp:
		c.StepUpRequired()
	case forms.OutcomeVerificationRequired:
		c.mu.Lock()
		c.origin = c.active
		c.active = ModalVerifyEmail
		c.mu.Unlock()
	case forms.OutcomePendingApproval:
		c.Open(ModalManagerSignIn)
	}
}
