// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command serve attaches grouped options imperatively and shares one group
// between two subcommands.
//
//	go run ./example/serve tcp --listen :8080
//	go run ./example/serve unix   # exit 2
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/yeetrun/optgroup/pkg/cobraopt"
	"github.com/yeetrun/optgroup/pkg/optgroup"
)

func main() {
	var listen, socket string
	root := &cobra.Command{Use: "serve", Short: "Serve hello world"}
	hello := func(cmd *cobra.Command, _ []string) error {
		addr := listen
		if socket != "" {
			addr = "unix:" + socket
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Hello, World! listening on %s\n", addr)
		return nil
	}
	tcpCmd := &cobra.Command{Use: "tcp", Short: "Serve over TCP", RunE: hello}
	unixCmd := &cobra.Command{Use: "unix", Short: "Serve over a unix socket", RunE: hello}
	root.AddCommand(tcpCmd, unixCmd)

	addr, err := optgroup.New("Address", optgroup.WithHelp("Exactly one address is required"),
		optgroup.WithPolicy(optgroup.RequiredMutuallyExclusive))
	if err != nil {
		log.Fatal(err)
	}
	// Each command only sees and validates the members added to it.
	if err := cobraopt.AddOption(tcpCmd, addr, &optgroup.Option{
		Decls: []string{"--listen", "-l"}, Help: "TCP address", Value: cobraopt.String(&listen, ""),
	}); err != nil {
		log.Fatal(err)
	}
	if err := cobraopt.AddOption(unixCmd, addr, &optgroup.Option{
		Decls: []string{"--socket", "-s"}, Help: "Unix socket path", Value: cobraopt.String(&socket, ""),
	}); err != nil {
		log.Fatal(err)
	}
	os.Exit(cobraopt.Execute(root))
}
