/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/radondb/qplan/xbase"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <query> [<query>...]",
		Short: "Plan queries on qplan and print the plans",
		Args:  cobra.MinimumNArgs(1),
		RunE:  explainCommandFn,
	}
	addEndpointFlag(cmd)
	return cmd
}

func explainCommandFn(cmd *cobra.Command, args []string) error {
	type request struct {
		Query   string   `json:"query,omitempty"`
		Queries []string `json:"queries,omitempty"`
	}

	req := &request{}
	if len(args) == 1 {
		req.Query = args[0]
	} else {
		req.Queries = args
	}
	code, body, err := xbase.HTTPPost(adminURL("/v1/qplan/explain"), req)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return errors.Errorf("qplancli.explain.response[%d]:%s", code, strings.TrimSpace(string(body)))
	}
	return printJSON(cmd, body)
}

func printJSON(cmd *cobra.Command, body []byte) error {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		return errors.WithStack(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.String())
	return nil
}
