// Package enforcer drives the per-site encryption-mode enforcement run.
package enforcer

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/JakobMund/ear-server-tools/internal/model/site"
	"github.com/JakobMund/ear-server-tools/internal/service/rest"
	"github.com/JakobMund/ear-server-tools/pkg/utils"
)

// API is the slice of the REST client the enforcer drives. *rest.Client
// satisfies it; tests substitute a fake.
type API interface {
	SignIn(ctx context.Context, username, password, siteContentURL string) (rest.Session, error)
	SwitchSite(ctx context.Context, s rest.Session, siteContentURL string) (rest.Session, error)
	SignOut(ctx context.Context, s rest.Session) error
	QuerySites(ctx context.Context, s rest.Session) ([]site.Site, error)
	SetEncryptionMode(ctx context.Context, s rest.Session, siteID, mode string) (string, error)
}

// Credentials carry the operator identity for the run. Site is the content
// URL of the sign-in site; empty means the server's default site.
type Credentials struct {
	Username string
	Password string
	Site     string
}

// Enforcer applies one target encryption mode to every site on a server.
type Enforcer struct {
	api    API
	server string
	out    io.Writer
}

// New returns an enforcer reporting per-site progress to out. server is
// only used in operator-facing messages.
func New(api API, server string, out io.Writer) *Enforcer {
	return &Enforcer{api: api, server: server, out: out}
}

// Run signs in, enumerates every site, brings each one to targetMode, and
// signs out. Exactly one session is live at a time; switching sites
// supersedes the previous token. Once sign-in has succeeded the token is
// invalidated on every exit path, including failures part-way through the
// loop. A sign-in failure aborts before any site is touched.
func (e *Enforcer) Run(ctx context.Context, creds Credentials, targetMode string) error {
	session, err := e.api.SignIn(ctx, creds.Username, creds.Password, creds.Site)
	if err != nil {
		return err
	}
	defer func() {
		// Sign-out runs even when ctx is already cancelled; a dangling
		// token outlives the process otherwise. Failure here is reported
		// but never fails the run.
		if signOutErr := e.api.SignOut(context.WithoutCancel(ctx), session); signOutErr != nil {
			log.Printf("[enforce] sign out failed: %v", signOutErr)
		}
	}()

	sites, err := e.api.QuerySites(ctx, session)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.out, "\nSetting encryption mode for all sites on %s to %s\n\n", e.server, targetMode)

	for _, st := range sites {
		// Skip the switch when the listed site is already the active one;
		// after sign-in that is the sign-in site, later whichever site the
		// previous iteration switched to.
		if st.ID != session.SiteID {
			session, err = e.api.SwitchSite(ctx, session, st.ContentURL)
			if err != nil {
				return err
			}
		}

		name := utils.EncodeForDisplay(st.Name)
		if st.EncryptionMode != targetMode {
			fmt.Fprintf(e.out, "%s: Setting encryption mode from %s to %s\n", name, st.EncryptionMode, targetMode)
			if _, err := e.api.SetEncryptionMode(ctx, session, session.SiteID, targetMode); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(e.out, "%s: Encryption mode already set to %s\n", name, st.EncryptionMode)
		}
	}
	return nil
}
