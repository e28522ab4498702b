// SPDX-License-Identifier: MPL-2.0

package main

import cmd "samplectl/cmd/samplectl"

func main() {
	cmd.Execute()
}
