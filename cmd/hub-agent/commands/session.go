package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"sellerhub-agent/internal/domain"
	"sellerhub-agent/internal/domain/model"
)

func sessionKind(cmd *cli.Command) model.SessionKind {
	if cmd.Bool("secondary") {
		return model.SessionSecondary
	}
	return model.SessionPrimary
}

func SessionSetAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("config"), cmd.Bool("dev"))
	if err != nil {
		return err
	}
	defer app.Close()

	kind := sessionKind(cmd)
	if err := app.Sessions.Activate(ctx, &model.AuthSession{
		Kind:     kind,
		Token:    cmd.String("token"),
		UserName: cmd.String("user"),
		SellerID: cmd.String("seller"),
	}); err != nil {
		return err
	}
	app.Log.Info().Str("kind", string(kind)).Msg("session stored")
	return nil
}

func SessionClearAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("config"), cmd.Bool("dev"))
	if err != nil {
		return err
	}
	defer app.Close()

	kind := sessionKind(cmd)
	if err := app.Sessions.Deactivate(ctx, kind); err != nil {
		return err
	}
	app.Log.Info().Str("kind", string(kind)).Msg("session cleared")
	return nil
}

func SessionShowAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("config"), cmd.Bool("dev"))
	if err != nil {
		return err
	}
	defer app.Close()

	for _, kind := range []model.SessionKind{model.SessionPrimary, model.SessionSecondary} {
		sess, err := app.Sessions.Current(ctx, kind)
		if errors.Is(err, domain.ErrNotFound) {
			fmt.Printf("%s: (none)\n", kind)
			continue
		}
		if err != nil {
			return err
		}
		exp := "no expiry"
		if !sess.ExpiresAt.IsZero() {
			exp = sess.ExpiresAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%s: user=%s seller=%s expires=%s\n", kind, sess.UserName, sess.SellerID, exp)
	}
	return nil
}
