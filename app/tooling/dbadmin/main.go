// This program inspects table definitions and runs statements against the
// database through the logged session layer.
package main

import "github.com/ardanlabs/chaindb/app/tooling/dbadmin/cmd"

func main() {
	cmd.Execute()
}
