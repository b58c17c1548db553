// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command deploy declares its option groups with a cobraopt.Builder.
//
//	go run ./example/deploy --host web1 --image app -t 1
//	go run ./example/deploy --host web1 --fleet edge   # exit 2
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/yeetrun/optgroup/pkg/cobraopt"
	"github.com/yeetrun/optgroup/pkg/optgroup"
)

func main() {
	var (
		host, fleet, image, tag string
		timeout                 time.Duration
	)
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy an image to a host or a fleet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := host
			if fleet != "" {
				target = "fleet " + fleet
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deploying %s:%s to %s (timeout %s)\n", image, tag, target, timeout)
			return nil
		},
	}

	b := cobraopt.NewBuilder(cmd)
	check(b.Option(&optgroup.Option{Decls: []string{"--host"}, Help: "Host name", Value: cobraopt.String(&host, "")}))
	check(b.Option(&optgroup.Option{Decls: []string{"--fleet", "-F"}, Help: "Fleet name", Value: cobraopt.String(&fleet, "")}))
	_, err := b.Group("Target", optgroup.WithHelp("Where to deploy"), optgroup.WithPolicy(optgroup.RequiredMutuallyExclusive))
	check(err)

	check(b.Option(&optgroup.Option{Decls: []string{"--image"}, Help: "Image repository", Value: cobraopt.String(&image, "")}))
	check(b.Option(&optgroup.Option{Decls: []string{"--tag", "-t"}, Help: "Image tag", Value: cobraopt.String(&tag, "")}))
	_, err = b.Group("Image", optgroup.WithPolicy(optgroup.RequiredAll))
	check(err)

	// Defaults never count as present, so --timeout stays out of the groups.
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Rollout timeout")
	check(b.Finish())

	os.Exit(cobraopt.Execute(cmd))
}

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
