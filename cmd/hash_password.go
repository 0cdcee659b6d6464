package main

import (
	"errors"
	"fmt"

	"github.com/andressep95/session-auth/pkg/hash"
	"github.com/urfave/cli/v2"
)

func hashPasswordCmd() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "Print the stored form of a password",
		ArgsUsage: "<password>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("expected exactly one password argument")
			}
			hashed, err := hash.HashPassword(c.Args().First())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, hashed)
			return err
		},
	}
}
