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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xelabs/go-mysqlstack/xlog"
)

var (
	log        = xlog.NewStdLog(xlog.Level(xlog.INFO))
	localFlags = LocalFlags{}
)

// LocalFlags are flags that defined for local.
type LocalFlags struct {
	endpoint string
}

func addEndpointFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&localFlags.endpoint, "endpoint", "127.0.0.1:8080", "admin endpoint of qplan")
}

func adminURL(path string) string {
	return fmt.Sprintf("http://%s%s", localFlags.endpoint, path)
}

func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOutput(buf)
	root.SetArgs(args)

	_, err = root.ExecuteC()
	return buf.String(), err
}
