/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package cmd

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/radondb/qplan/xbase"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewPingCommand creates the ping command.
func NewPingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check qplan is ready to plan",
		RunE:  pingCommandFn,
	}
	addEndpointFlag(cmd)
	return cmd
}

func pingCommandFn(cmd *cobra.Command, args []string) error {
	code, body, err := xbase.HTTPGet(adminURL("/v1/qplan/ping"))
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return errors.Errorf("qplancli.ping.response[%d]:%s", code, strings.TrimSpace(string(body)))
	}
	fmt.Fprintln(cmd.OutOrStdout(), "OK")
	return nil
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the partitioning catalog of qplan",
		RunE:  catalogCommandFn,
	}
	addEndpointFlag(cmd)
	return cmd
}

func catalogCommandFn(cmd *cobra.Command, args []string) error {
	code, body, err := xbase.HTTPGet(adminURL("/v1/debug/catalogz"))
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return errors.Errorf("qplancli.catalog.response[%d]:%s", code, strings.TrimSpace(string(body)))
	}
	return printJSON(cmd, body)
}
