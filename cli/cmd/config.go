/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package cmd

import (
	"net/http"
	"strings"

	"github.com/radondb/qplan/xbase"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var configFlags struct {
	defaultDatabase     string
	scanRatingLimit     int
	subChunksPerMessage int
}

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update the planner config of qplan",
	}
	addEndpointFlag(cmd)
	cmd.AddCommand(NewConfigShowCommand())
	cmd.AddCommand(NewConfigSetCommand())
	return cmd
}

// NewConfigShowCommand creates the config show command.
func NewConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the config of qplan",
		RunE:  configShowCommandFn,
	}
	return cmd
}

func configShowCommandFn(cmd *cobra.Command, args []string) error {
	code, body, err := xbase.HTTPGet(adminURL("/v1/debug/configz"))
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return errors.Errorf("qplancli.config.show.response[%d]:%s", code, strings.TrimSpace(string(body)))
	}
	return printJSON(cmd, body)
}

// NewConfigSetCommand creates the config set command, only the flags
// given are changed.
func NewConfigSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the planner config of qplan",
		RunE:  configSetCommandFn,
	}
	cmd.Flags().StringVar(&configFlags.defaultDatabase, "default-database", "", "database of unqualified tables")
	cmd.Flags().IntVar(&configFlags.scanRatingLimit, "scan-rating-limit", 0, "ceiling of the query scan rating")
	cmd.Flags().IntVar(&configFlags.subChunksPerMessage, "subchunks-per-message", 0, "subchunk ids per message fragment")
	return cmd
}

func configSetCommandFn(cmd *cobra.Command, args []string) error {
	req := map[string]interface{}{}
	flags := cmd.Flags()
	if flags.Changed("default-database") {
		req["default-database"] = configFlags.defaultDatabase
	}
	if flags.Changed("scan-rating-limit") {
		req["scan-rating-limit"] = configFlags.scanRatingLimit
	}
	if flags.Changed("subchunks-per-message") {
		req["subchunks-per-message"] = configFlags.subChunksPerMessage
	}
	if len(req) == 0 {
		return errors.New("qplancli.config.set.nothing.to.change")
	}

	code, body, err := xbase.HTTPPut(adminURL("/v1/qplan/config"), req)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return errors.Errorf("qplancli.config.set.response[%d]:%s", code, strings.TrimSpace(string(body)))
	}
	log.Info("qplancli.config.set%v.done", req)
	return nil
}
