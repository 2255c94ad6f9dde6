package navigation_test

import (
	"testing"

	"github.com/jrsteele09/sportify-auth-client/forms"
	"github.com/jrsteele09/sportify-auth-client/navigation"
	"github.com/stretchr/testify/require"
)

func TestController_StepUpClosesSignIn(t *testing.T) {
	c := navigation.NewController()
	c.Open(navigation.ModalManagerSignIn)

	c.Apply(forms.Outcome{Kind: forms.OutcomeStepUp})
	require.Equal(t, navigation.ModalTwoFactor, c.Active())

	c.StepUpCancelled()
	require.Equal(t, navigation.ModalManagerSignIn, c.Active())

	c.StepUpRequired()
	c.StepUpVerified()
	require.Equal(t, navigation.ModalNone, c.Active())
}

func TestController_RepeatedStepUpKeepsOrigin(t *testing.T) {
	c := navigation.NewController()
	c.Open(navigation.ModalPlayerSignIn)

	c.StepUpRequired()
	c.Apply(forms.Outcome{Kind: forms.OutcomeStepUp})
	require.Equal(t, navigation.ModalTwoFactor, c.Active())

	c.StepUpCancelled()
	require.Equal(t, navigation.ModalPlayerSignIn, c.Active())
}

func TestController_SwitchKeepsRole(t *testing.T) {
	c := navigation.NewController()

	c.Open(navigation.ModalManagerSignIn)
	c.SwitchToSignUp()
	require.Equal(t, navigation.ModalManagerSignUp, c.Active())
	c.SwitchToSignIn()
	require.Equal(t, navigation.ModalManagerSignIn, c.Active())
	c.SwitchToPasswordReset()
	require.Equal(t, navigation.ModalManagerPasswordReset, c.Active())

	c.Open(navigation.ModalPlayerSignIn)
	c.SwitchToPasswordReset()
	require.Equal(t, navigation.ModalPlayerPasswordReset, c.Active())
	c.SwitchToSignIn()
	require.Equal(t, navigation.ModalPlayerSignIn, c.Active())
}

func TestController_ApplyOutcome(t *testing.T) {
	tests := map[string]struct {
		from    navigation.Modal
		outcome forms.OutcomeKind
		want    navigation.Modal
	}{
		"success closes":              {navigation.ModalPlayerSignIn, forms.OutcomeSuccess, navigation.ModalNone},
		"failure stays":               {navigation.ModalPlayerSignIn, forms.OutcomeFailure, navigation.ModalPlayerSignIn},
		"unverified asks for code":    {navigation.ModalPlayerSignIn, forms.OutcomeVerificationRequired, navigation.ModalVerifyEmail},
		"pending approval to sign in": {navigation.ModalManagerSignUp, forms.OutcomePendingApproval, navigation.ModalManagerSignIn},
		"dismissed stays":             {navigation.ModalNone, forms.OutcomeDismissed, navigation.ModalNone},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := navigation.NewController()
			c.Open(tt.from)
			c.Apply(forms.Outcome{Kind: tt.outcome})
			require.Equal(t, tt.want, c.Active())
		})
	}
}

func TestController_CancelOutsideStepUpIsNoop(t *testing.T) {
	c := navigation.NewController()
	c.Open(navigation.ModalPlayerSignUp)
	c.StepUpCancelled()
	require.Equal(t, navigation.ModalPlayerSignUp, c.Active())
	require.Equal(t, "player sign up", c.Active().String())
}
