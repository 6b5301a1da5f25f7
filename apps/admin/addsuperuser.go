package main

import (
	"context"
	"time"

	"github.com/belajarku/backend/core"
	"github.com/belajarku/backend/core/user"
)

// addSuperUser updates or creates a user.User holding every role.
func (cli *commandLine) addSuperUser(uname, email, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	create := false

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: uname})
	if err == user.ErrNotFound {
		usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email})
	}
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		create = true
		usr = user.User{
			Username:  uname,
			Email:     email,
			CreatedAt: now,
		}
	}

	usr.Roles = user.AllRoles
	usr.IsActive = true
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if create {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	return err
}
