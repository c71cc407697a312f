// SPDX-License-Identifier: Apache-2.0

package main

import "github.com/refactura/refactura/cmd"

func main() {
	cmd.Execute()
}
