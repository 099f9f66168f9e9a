package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/velora-digital/siteauth/internal/common"
)

// TwoFactorEnable starts enrollment and shows the secret for authenticator
// setup. The secret stays verifiable for a limited time; a fresh one is
// issued automatically when it expires.
func (a *App) TwoFactorEnable(ctx context.Context) error {
	enrollment, err := a.twoFactor.Enable(ctx)
	if err != nil {
		printlnFn("Could not start two-factor enrollment:", err)
		return err
	}

	printlnFn("Scan this otpauth URL with your authenticator app:")
	printlnFn(enrollment.QRPayload)
	if enrollment.Issuer != "" {
		printlnFn(fmt.Sprintf("Manual entry: issuer %q, account %q, secret %s",
			enrollment.Issuer, enrollment.Account, enrollment.Secret))
	} else {
		printlnFn("Manual entry secret:", enrollment.Secret)
	}
	printlnFn("Then run '2fa-verify' with a code from the app.")
	return nil
}

// TwoFactorVerify submits one code and, on success, prints the recovery codes
// for the user to save. They are shown until acknowledged with '2fa-ack'.
func (a *App) TwoFactorVerify(ctx context.Context) error {
	code, err := getSimpleText(a.reader, "Enter the 6-digit code", os.Stdout)
	if err != nil {
		return err
	}

	codes, err := a.twoFactor.Verify(ctx, code)
	if err != nil {
		printlnFn("Verification failed:", err)
		return err
	}

	printlnFn("Two-factor authentication is now enabled.")
	printlnFn("Save these recovery codes somewhere safe; they will not be shown again after '2fa-ack':")
	for _, c := range codes {
		printlnFn("  " + c)
	}
	return nil
}

// TwoFactorAck confirms the recovery codes were saved and discards them.
func (a *App) TwoFactorAck(ctx context.Context) error {
	if a.twoFactor.RecoveryCodes() == nil {
		printlnFn("No recovery codes are pending.")
		return nil
	}
	a.twoFactor.AcknowledgeRecoveryCodes()
	printlnFn("Recovery codes discarded.")
	return nil
}

// TwoFactorDisable turns two-factor off after a password step-up check.
func (a *App) TwoFactorDisable(ctx context.Context) error {
	password, err := getPassword("Enter your password to confirm", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.twoFactor.Disable(ctx, string(password)); err != nil {
		printlnFn("Could not disable two-factor authentication:", err)
		return err
	}
	printlnFn("Two-factor authentication disabled.")
	return nil
}

func (a *App) TwoFactorStatus(ctx context.Context) error {
	printlnFn("Two-factor state:", a.twoFactor.State().String())
	if enrollment := a.twoFactor.Enrollment(); enrollment != nil {
		printlnFn("Enrollment expires at", enrollment.Deadline.Format("15:04:05"))
	}
	if a.twoFactor.RecoveryCodes() != nil {
		printlnFn("Recovery codes are pending acknowledgment; run '2fa-ack' once saved.")
	}
	return nil
}
